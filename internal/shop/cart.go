package shop

// Cart hidup di sisi client (per sesi), tidak pernah dipersist server-side.
// Checkout menerima snapshot-nya; state global bersama sengaja dihindari.
type Cart struct {
	entries []CartEntry
}

type CartEntry struct {
	Product Product
	Qty     int
}

func NewCart() *Cart { return &Cart{} }

// Add merge ke entry yang sudah ada untuk produk yang sama (qty dijumlah),
// kalau belum ada di-append. Stok TIDAK dicek di sini; enforcement hanya
// saat checkout.
func (c *Cart) Add(p Product, qty int) {
	if qty < 1 {
		qty = 1
	}
	for i := range c.entries {
		if c.entries[i].Product.ID == p.ID {
			c.entries[i].Qty += qty
			return
		}
	}
	c.entries = append(c.entries, CartEntry{Product: p, Qty: qty})
}

// AdjustQty menerapkan delta ke qty entry. Hasil <= 0 di-clamp: entry
// dibiarkan apa adanya, tidak auto-remove (hapus harus lewat Remove,
// supaya decrement nyasar tidak menghilangkan barang).
func (c *Cart) AdjustQty(productID string, delta int) {
	for i := range c.entries {
		if c.entries[i].Product.ID == productID {
			if q := c.entries[i].Qty + delta; q > 0 {
				c.entries[i].Qty = q
			}
			return
		}
	}
}

func (c *Cart) Remove(productID string) {
	for i := range c.entries {
		if c.entries[i].Product.ID == productID {
			c.entries = append(c.entries[:i], c.entries[i+1:]...)
			return
		}
	}
}

// Clear dipanggil setelah checkout sukses atau saat logout.
func (c *Cart) Clear() { c.entries = nil }

func (c *Cart) Len() int { return len(c.entries) }

func (c *Cart) TotalCents() int {
	total := 0
	for _, e := range c.entries {
		total += e.Product.PriceCents * e.Qty
	}
	return total
}

// Lines membekukan isi cart jadi snapshot OrderLine untuk checkout.
func (c *Cart) Lines() []OrderLine {
	out := make([]OrderLine, 0, len(c.entries))
	for _, e := range c.entries {
		out = append(out, OrderLine{
			ProductID:  e.Product.ID,
			Name:       e.Product.Name,
			PriceCents: e.Product.PriceCents,
			Qty:        e.Qty,
		})
	}
	return out
}
