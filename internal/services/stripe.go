package services

import (
	"context"
	"fmt"
	"math"
	"os"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"
)

// InitStripe configures the Stripe API key from the environment
func InitStripe() error {
	key := os.Getenv("STRIPE_SECRET_KEY")
	if key == "" {
		return fmt.Errorf("STRIPE_SECRET_KEY is not set")
	}
	stripe.Key = key
	return nil
}

// amountToCents converts a decimal amount to the currency's smallest
// unit, rounding to the nearest cent.
func amountToCents(amount float64) int64 {
	return int64(math.Round(amount * 100))
}

// CreatePaymentIntent asks Stripe for a payment intent covering the given
// amount and returns the client secret the frontend confirms against.
// Stripe expects the amount in the currency's smallest unit.
func CreatePaymentIntent(ctx context.Context, amount float64) (string, error) {
	params := &stripe.PaymentIntentParams{
		Amount:             stripe.Int64(amountToCents(amount)),
		Currency:           stripe.String(string(stripe.CurrencyUSD)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
	}
	params.Context = ctx

	intent, err := paymentintent.New(params)
	if err != nil {
		return "", err
	}

	return intent.ClientSecret, nil
}
