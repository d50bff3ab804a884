package domain

// User is a marketplace account. HostingToken is the seller's code-hosting
// access token; empty when the account has not been connected.
type User struct {
	ID           int64
	Name         string
	HostingToken string
}
