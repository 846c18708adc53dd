// Package payment holds the adapters for the external payment providers:
// SSLCommerz hosted checkout and Stripe card payment intents.
package payment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/stripe/stripe-go/v74"
	"github.com/stripe/stripe-go/v74/client"
)

// CardProcessorInterface creates card payment intents the client confirms
// on its own.
type CardProcessorInterface interface {
	CreatePaymentIntent(ctx context.Context, amountMinor int64) (string, error)
}

// StripeService creates card PaymentIntents through the Stripe API.
type StripeService struct {
	api      *client.API
	currency string
}

// NewStripeService builds the Stripe client. backends may be nil to use the
// public Stripe endpoints.
func NewStripeService(apiKey, currency string, backends *stripe.Backends) *StripeService {
	return &StripeService{
		api:      client.New(apiKey, backends),
		currency: strings.ToLower(currency),
	}
}

// CreatePaymentIntent returns the client secret for a card-only intent of
// amountMinor in the configured currency.
func (s *StripeService) CreatePaymentIntent(ctx context.Context, amountMinor int64) (string, error) {
	if amountMinor <= 0 {
		return "", fmt.Errorf("invalid payment amount")
	}
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountMinor),
		Currency:           stripe.String(s.currency),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	pi, err := s.api.PaymentIntents.New(params)
	if err != nil {
		var stripeErr *stripe.Error
		if errors.As(err, &stripeErr) && stripeErr.Msg != "" {
			return "", fmt.Errorf("stripe: %s", stripeErr.Msg)
		}
		return "", fmt.Errorf("stripe: %w", err)
	}
	return pi.ClientSecret, nil
}
