package domain

import "time"

// Order represents one buyer's purchase of one gig. The price is captured at
// creation time and does not follow later gig price changes.
type Order struct {
	ID         int64
	BuyerID    int64
	GigID      int64
	PriceCents int64
	Currency   string

	// PaymentHandle holds the stored core form of the handle: provider-issued,
	// or a surrogate with its client-side secret suffix stripped.
	PaymentHandle string

	// ConfirmationToken is issued at creation and must be presented on
	// confirmation. Knowledge of the payment handle alone is not enough.
	ConfirmationToken string

	Completed   bool
	CompletedAt *time.Time

	RepoName    string
	RepoURL     string
	RepoCreated bool

	CreatedAt time.Time
}
