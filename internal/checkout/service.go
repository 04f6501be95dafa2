package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	kafkax "github.com/ariefcatur/go-shop-orders.git/internal/kafka"
	"github.com/ariefcatur/go-shop-orders.git/internal/redisx"
	"github.com/ariefcatur/go-shop-orders.git/internal/shop"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	kafkago "github.com/segmentio/kafka-go"
)

// OrderStore menjalankan insert order + guarded decrement sebagai satu
// transaksi; implementasi production-nya shop.Repo.
type OrderStore interface {
	CreateOrderTx(ctx context.Context, in shop.NewOrder) (orderID string, err error)
}

type Publisher interface {
	Publish(key, value []byte, headers ...kafkago.Header)
}

type Service struct {
	Store       OrderStore
	Redis       *redis.Client // optional: cache status
	Producer    Publisher     // optional: publish order.placed
	ServiceName string
}

type Input struct {
	UserRef         string
	Cart            *shop.Cart
	Address         string
	Phone           string
	PaymentMethod   shop.PaymentMethod
	PaymentProofRef string
	TraceID         string
}

type Result struct {
	OrderID    string
	TotalCents int
}

// Checkout: cart -> order durable, all-or-nothing.
// Total dihitung dari harga snapshot cart, BUKAN harga katalog live —
// harga saat beli yang tercatat, repricing belakangan tidak ngaruh.
func (s *Service) Checkout(ctx context.Context, in Input) (Result, error) {
	var res Result

	if in.UserRef == "" {
		return res, shop.ErrNotAuthenticated
	}
	if in.Cart == nil || in.Cart.Len() == 0 {
		return res, shop.ErrEmptyCart
	}
	method := in.PaymentMethod
	if method == "" {
		method = shop.PaymentTransfer
	}
	if !method.Valid() {
		return res, fmt.Errorf("invalid payment method: %q", in.PaymentMethod)
	}
	// bukti transfer diupload duluan oleh collaborator upload; di sini
	// cuma referensinya yang wajib ada
	if method == shop.PaymentTransfer && in.PaymentProofRef == "" {
		return res, shop.ErrPaymentProofRequired
	}

	lines := in.Cart.Lines()
	total := in.Cart.TotalCents()

	orderID, err := s.Store.CreateOrderTx(ctx, shop.NewOrder{
		UserRef:       in.UserRef,
		Lines:         lines,
		TotalCents:    total,
		Address:       in.Address,
		Phone:         in.Phone,
		PaymentMethod: method,
		PaymentProof:  in.PaymentProofRef,
	})
	if err != nil {
		return res, classify(err)
	}

	// commit sukses: baru sekarang cart boleh dikosongkan
	in.Cart.Clear()

	if s.Redis != nil {
		statusKey := fmt.Sprintf(redisx.KeyOrderStatus, orderID)
		_ = s.Redis.Set(ctx, statusKey, `{"status":"Paid"}`, redisx.TTLStatusCache).Err()
	}

	if s.Producer != nil {
		ev := shop.Envelope{
			EventID:       uuid.NewString(),
			EventType:     shop.EventOrderPlaced,
			EventVersion:  1,
			OccurredAt:    time.Now().UTC(),
			Producer:      s.ServiceName,
			TraceID:       in.TraceID,
			CorrelationID: orderID,
			Payload: kafkax.MustMarshal(shop.OrderPlacedPayload{
				OrderID:       orderID,
				UserRef:       in.UserRef,
				Lines:         lines,
				TotalCents:    total,
				PaymentMethod: string(method),
			}),
		}
		s.Producer.Publish(shop.PartitionKey(orderID), kafkax.MustMarshal(ev),
			kafkago.Header{Key: "x-event-type", Value: []byte(shop.EventOrderPlaced)},
			kafkago.Header{Key: "x-event-version", Value: []byte("1")},
		)
	}

	res.OrderID = orderID
	res.TotalCents = total
	return res, nil
}

// classify: error domain lewat apa adanya, sisanya dianggap kegagalan
// storage. Caller wajib memperlakukan TxAborted sebagai "order tidak jadi".
func classify(err error) error {
	var insufficient *shop.InsufficientStockError
	var notFound *shop.ProductNotFoundError
	if errors.As(err, &insufficient) || errors.As(err, &notFound) {
		return err
	}
	return &shop.TxAbortedError{Err: err}
}
