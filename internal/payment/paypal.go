package payment

import (
	"context"
	"fmt"
	"strings"

	"github.com/plutov/paypal/v4"
)

// PayPalGateway issues payment intents as PayPal CAPTURE orders.
type PayPalGateway struct {
	client *paypal.Client
}

// NewPayPalGateway builds a gateway client and verifies credentials by
// fetching an access token once.
func NewPayPalGateway(ctx context.Context, clientID, clientSecret, apiBase string) (*PayPalGateway, error) {
	if apiBase == "" {
		apiBase = paypal.APIBaseSandBox
	}
	client, err := paypal.NewClient(clientID, clientSecret, apiBase)
	if err != nil {
		return nil, fmt.Errorf("create paypal client: %w", err)
	}
	if _, err := client.GetAccessToken(ctx); err != nil {
		return nil, fmt.Errorf("paypal access token: %w", err)
	}
	return &PayPalGateway{client: client}, nil
}

// CreateIntent creates a CAPTURE order and returns its ID as the payment
// handle.
func (g *PayPalGateway) CreateIntent(ctx context.Context, amountCents int64, currency string) (string, error) {
	units := []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: strings.ToUpper(currency),
				Value:    fmt.Sprintf("%.2f", float64(amountCents)/100),
			},
			Description: "DevForge gig purchase",
		},
	}

	order, err := g.client.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		return "", fmt.Errorf("create paypal order: %w", err)
	}
	if order.ID == "" {
		return "", fmt.Errorf("paypal order has no id")
	}
	return order.ID, nil
}
