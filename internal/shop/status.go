package shop

import "fmt"

type Status string

// StatusPaid artinya "order masuk" (nama historis dari storefront lama);
// untuk COD belum tentu pembayaran terverifikasi.
const (
	StatusPaid      Status = "Paid"
	StatusConfirmed Status = "Confirmed"
	StatusDelivered Status = "Delivered"
)

// Linear, forward-only. Skip (Paid->Delivered) dan mundur ditolak;
// same-state ditangani sebagai no-op oleh lifecycle, bukan di sini.
var validNext = map[Status]map[Status]bool{
	StatusPaid:      {StatusConfirmed: true},
	StatusConfirmed: {StatusDelivered: true},
	StatusDelivered: {},
}

func CanTransition(from, to Status) bool {
	return validNext[from][to]
}

func ParseStatus(s string) (Status, error) {
	switch Status(s) {
	case StatusPaid, StatusConfirmed, StatusDelivered:
		return Status(s), nil
	}
	return "", fmt.Errorf("unknown status: %q", s)
}
