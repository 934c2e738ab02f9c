package payments

import (
	"context"
	"fmt"

	"github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/paymentintent"

	"github.com/shinedeck/shinedeck-api/internal/types"
)

// PaymentProvider creates charges with an external processor. The service
// depends on this interface so tests run without Stripe credentials.
type PaymentProvider interface {
	CreateDepositIntent(ctx context.Context, amountCents int64, idempotencyKey string, metadata map[string]string) (*types.DepositIntent, error)
}

var _ PaymentProvider = (*StripeProvider)(nil)

type StripeProvider struct {
	currency string
}

// NewStripeProvider configures the global stripe client key once.
func NewStripeProvider(secretKey, currency string) *StripeProvider {
	stripe.Key = secretKey
	if currency == "" {
		currency = string(stripe.CurrencyUSD)
	}
	return &StripeProvider{currency: currency}
}

func (p *StripeProvider) CreateDepositIntent(ctx context.Context, amountCents int64, idempotencyKey string, metadata map[string]string) (*types.DepositIntent, error) {
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amountCents),
		Currency: stripe.String(p.currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	if idempotencyKey != "" {
		params.SetIdempotencyKey(idempotencyKey)
	}
	for k, v := range metadata {
		params.AddMetadata(k, v)
	}

	pi, err := paymentintent.New(params)
	if err != nil {
		return nil, fmt.Errorf("create payment intent: %w", err)
	}
	return &types.DepositIntent{
		ProviderRef:  pi.ID,
		ClientSecret: pi.ClientSecret,
		AmountCents:  pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}
