package shop

import (
	"encoding/json"
	"time"
)

const (
	EventOrderPlaced    = "OrderPlaced"
	EventOrderStatus    = "OrderStatusChanged"
	EventOrderDelivered = "OrderDelivered"
)

type Envelope struct {
	EventID       string          `json:"event_id"`      // uuid
	EventType     string          `json:"event_type"`    // salah satu const di atas
	EventVersion  int             `json:"event_version"` // 1
	OccurredAt    time.Time       `json:"occurred_at"`   // RFC3339
	Producer      string          `json:"producer"`      // e.g., "shop-api"
	TraceID       string          `json:"trace_id,omitempty"`
	CorrelationID string          `json:"correlation_id,omitempty"` // biasanya order_id
	Payload       json.RawMessage `json:"payload"`
}

// ---- Payload tipe per event ----

type OrderPlacedPayload struct {
	OrderID       string      `json:"order_id"`
	UserRef       string      `json:"user_ref"`
	Lines         []OrderLine `json:"lines"`
	TotalCents    int         `json:"total_cents"`
	PaymentMethod string      `json:"payment_method"`
}

type OrderStatusPayload struct {
	OrderID string `json:"order_id"`
	From    Status `json:"from"`
	To      Status `json:"to"`
}

// OrderDeliveredPayload adalah isi notification hook: dikirim tepat satu
// kali per transisi ->Delivered.
type OrderDeliveredPayload struct {
	OrderID string `json:"order_id"`
	UserRef string `json:"user_ref"`
}
