package domain

import "time"

// Gig is a seller's listing. Only the fields the order pipeline reads are
// modeled here; listing management lives elsewhere.
type Gig struct {
	ID           int64
	SellerID     int64
	Title        string
	Description  string
	Category     string
	DeliveryDays int
	Features     []string
	PriceCents   int64
	Currency     string
	CreatedAt    time.Time
}
