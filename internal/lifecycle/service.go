package lifecycle

import (
	"context"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/ariefcatur/go-shop-orders.git/internal/shop"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

type StatusStore interface {
	UpdateStatus(ctx context.Context, orderID string, to shop.Status) (shop.StatusChange, error)
	GetOrder(ctx context.Context, orderID string) (shop.Order, error)
	ListOrders(ctx context.Context, userRef string) ([]shop.Order, error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

// DeliveredHook dipanggil tepat satu kali per transisi nyata ->Delivered.
// Retry admin / same-state no-op TIDAK memicu hook lagi.
type DeliveredHook func(ctx context.Context, orderID, userRef string)

type Service struct {
	Store       StatusStore
	Redis       *redis.Client // optional: refresh cache status
	Producer    Publisher     // optional: publish order.status
	OnDelivered DeliveredHook // optional
	ServiceName string
}

// SetStatus: validasi transisi ada di store (satu titik konsistensi,
// row di-lock); service ini yang mengurus efek setelahnya — cache,
// event, dan notification hook.
func (s *Service) SetStatus(ctx context.Context, orderID string, to shop.Status) (shop.StatusChange, error) {
	ch, err := s.Store.UpdateStatus(ctx, orderID, to)
	if err != nil {
		return ch, err
	}
	if !ch.Changed {
		return ch, nil // idempotent no-op
	}

	if s.Redis != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		_ = s.Redis.Set(ctx, statusKey, fmt.Sprintf(`{"status":%q}`, to), redisx.TTLStatusCache).Err()
	}

	if s.Producer != nil {
		ev := shop.Envelope{
			EventID:       uuid.NewString(),
			EventType:     shop.EventOrderStatus,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      s.ServiceName,
			CorrelationID: orderID,
			Payload: kafkax.MustMarshal(shop.OrderStatusPayload{
				OrderID: orderID, From: ch.From, To: ch.To,
			}),
		}
		s.Producer.Publish(shop.PartitionKey(orderID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderStatus)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	if ch.To == shop.StatusDelivered && s.OnDelivered != nil {
		s.OnDelivered(ctx, orderID, ch.UserRef)
	}
	return ch, nil
}

func (s *Service) Get(ctx context.Context, orderID string) (shop.Order, error) {
	return s.Store.GetOrder(ctx, orderID)
}

// History: terbaru dulu; userRef kosong = semua (admin view).
func (s *Service) History(ctx context.Context, userRef string) ([]shop.Order, error) {
	return s.Store.ListOrders(ctx, userRef)
}
