package domain

import "errors"

var (
	ErrGigNotFound              = errors.New("gig not found")
	ErrUserNotFound             = errors.New("user not found")
	ErrOrderNotFound            = errors.New("order not found")
	ErrDuplicateOpenOrder       = errors.New("open order already exists for buyer and gig")
	ErrConfirmationRefRequired  = errors.New("order id or payment handle required")
	ErrInvalidConfirmationToken = errors.New("invalid confirmation token")
	ErrForbidden                = errors.New("forbidden")
	ErrRepositoryExists         = errors.New("repository already provisioned")
	ErrCredentialsMissing       = errors.New("seller has not connected hosting account")
	ErrProvisioningFailed       = errors.New("repository provisioning failed")
	ErrInvalidID                = errors.New("invalid id")
)
