package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/ariefcatur/go-shop-orders.git/internal/shop"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// Sender ngirim notifikasi "pesananmu sudah sampai" ke user.
// Transport konkret (email/push) urusan deployment; default log saja.
type Sender interface {
	DeliveredNotice(ctx context.Context, orderID, userRef string) error
}

type LogSender struct{}

func (LogSender) DeliveredNotice(_ context.Context, orderID, userRef string) error {
	log.Printf("notify user=%s: order %s delivered", userRef, orderID)
	return nil
}

type Service struct {
	Redis       *redis.Client
	Sender      Sender
	ServiceName string
}

// HandleOrderDelivered: handler consumer topic order.delivered.
// Dedup per event_id via SETNX — consumer boleh redeliver, user tetap
// cuma dapat satu notifikasi per event.
func (s *Service) HandleOrderDelivered(ctx context.Context, m kafkago.Message) error {
	var env shop.Envelope
	if err := json.Unmarshal(m.Value, &env); err != nil {
		return err
	}
	if env.EventType != shop.EventOrderDelivered {
		return nil // ignore
	}

	dkey := fmt.Sprintf(redisx.KeyDedup, "notify", env.EventID)
	first, err := redisx.AcquireOnce(ctx, s.Redis, dkey, redisx.TTLDedup)
	if err != nil {
		return err
	}
	if !first {
		return nil // sudah pernah dikirim
	}

	p, err := kafkax.UnwrapPayload[shop.OrderDeliveredPayload](env.Payload)
	if err != nil {
		return err
	}
	return s.Sender.DeliveredNotice(ctx, p.OrderID, p.UserRef)
}
