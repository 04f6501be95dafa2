package shop

import "time"

type PaymentMethod string

const (
	PaymentTransfer PaymentMethod = "transfer"
	PaymentCOD      PaymentMethod = "cod"
)

func (m PaymentMethod) Valid() bool {
	return m == PaymentTransfer || m == PaymentCOD
}

type Product struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	PriceCents int       `json:"price_cents"`
	Stock      int       `json:"stock"`
	Img        string    `json:"img,omitempty"`
	Model3D    string    `json:"model,omitempty"`
	Category   string    `json:"category,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// OrderLine adalah snapshot beku: harga & nama dicopy saat checkout,
// edit katalog setelahnya tidak boleh mengubah order lama.
type OrderLine struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	PriceCents int    `json:"price_cents"`
	Qty        int    `json:"qty"`
}

func (l OrderLine) SubtotalCents() int { return l.PriceCents * l.Qty }

type Order struct {
	ID            string        `json:"id"`
	UserRef       string        `json:"user_ref"`
	Status        Status        `json:"status"`
	TotalCents    int           `json:"total_cents"`
	Lines         []OrderLine   `json:"lines"`
	Address       string        `json:"address"`
	Phone         string        `json:"phone"`
	PaymentMethod PaymentMethod `json:"payment_method"`
	PaymentProof  string        `json:"payment_proof,omitempty"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}
