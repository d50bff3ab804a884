package payment

import (
	"context"
	"log"
	"time"

	"github.com/cfblade77/Devforge-sub000/internal/clock"
)

const gatewayTimeout = 10 * time.Second

// Gateway creates a payment intent with an external provider and returns its
// opaque handle.
type Gateway interface {
	CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error)
}

// Issuer obtains a payment handle for an order. Gateway downtime is an
// expected condition, not an error: on any gateway failure a surrogate handle
// is synthesized so checkout is never blocked.
type Issuer struct {
	gateway Gateway
	timeout time.Duration
	clock   clock.Clock
	logger  *log.Logger
}

// NewIssuer returns an issuer backed by gw. A nil gateway means every handle
// is a surrogate.
func NewIssuer(gw Gateway, clk clock.Clock, logger *log.Logger) *Issuer {
	if logger == nil {
		logger = log.Default()
	}
	return &Issuer{
		gateway: gw,
		timeout: gatewayTimeout,
		clock:   clk,
		logger:  logger,
	}
}

// Issue returns a payment handle and whether it is a locally synthesized
// surrogate. It never fails.
func (i *Issuer) Issue(ctx context.Context, amountCents int64, currency string) (string, bool) {
	if i.gateway == nil {
		return NewSurrogate(i.clock.Now()), true
	}

	ctx, cancel := context.WithTimeout(ctx, i.timeout)
	defer cancel()

	handle, err := i.gateway.CreateIntent(ctx, amountCents, currency)
	if err != nil {
		i.logger.Printf("payment gateway unavailable, issuing surrogate handle: %v", err)
		return NewSurrogate(i.clock.Now()), true
	}
	return handle, false
}
