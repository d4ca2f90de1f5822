package utils

import (
	"fmt"
	"os"
	"strings"

	stripe "github.com/stripe/stripe-go/v82"
	"github.com/stripe/stripe-go/v82/balance"
	"github.com/stripe/stripe-go/v82/checkout/session"
	"github.com/stripe/stripe-go/v82/paymentintent"
	"github.com/stripe/stripe-go/v82/webhook"
)

func getStripeConfig() (secretKey, webhookSecret, successURL, cancelURL string, err error) {
	secretKey = os.Getenv("STRIPE_SECRET_KEY")
	webhookSecret = os.Getenv("STRIPE_WEBHOOK_SECRET")
	successURL = os.Getenv("STRIPE_SUCCESS_URL")
	cancelURL = os.Getenv("STRIPE_CANCEL_URL")

	if successURL == "" {
		successURL = "https://impactmarket.pl/dziekujemy?session_id={CHECKOUT_SESSION_ID}"
	}
	if cancelURL == "" {
		cancelURL = "https://impactmarket.pl/anulowano"
	}
	if secretKey == "" || webhookSecret == "" {
		return "", "", "", "", fmt.Errorf("STRIPE_SECRET_KEY and STRIPE_WEBHOOK_SECRET are required")
	}
	return secretKey, webhookSecret, successURL, cancelURL, nil
}

// StripePing checks that the gateway is reachable and the key is valid.
// Called before inserting a pending payment so we don't leave orphan rows
// when the gateway is down.
func StripePing() error {
	if _, _, _, _, err := getStripeConfig(); err != nil {
		return err
	}
	if _, err := balance.Get(&stripe.BalanceParams{}); err != nil {
		return fmt.Errorf("stripe unreachable: %w", err)
	}
	return nil
}

// CreateStripeCheckoutSession creates a hosted checkout session for a single
// PLN donation. Metadata carries our payment id and creator id so the webhook
// can correlate the completed session back to the pending row.
func CreateStripeCheckoutSession(paymentID uint, creatorID uint, displayName, payerEmail string, amount int64) (sessionID, checkoutURL string, err error) {
	_, _, successURL, cancelURL, err := getStripeConfig()
	if err != nil {
		return "", "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode: stripe.String(string(stripe.CheckoutSessionModePayment)),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(string(stripe.CurrencyPLN)),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String("Wsparcie dla " + displayName),
					},
					UnitAmount: stripe.Int64(amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		SuccessURL: stripe.String(successURL),
		CancelURL:  stripe.String(cancelURL),
	}
	if e := strings.TrimSpace(payerEmail); e != "" {
		params.CustomerEmail = stripe.String(e)
	}
	params.AddMetadata("payment_id", fmt.Sprintf("%d", paymentID))
	params.AddMetadata("creator_id", fmt.Sprintf("%d", creatorID))

	s, err := session.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create checkout session: %w", err)
	}
	return s.ID, s.URL, nil
}

// CreateStripePaymentIntent creates a payment intent for embedded (elements)
// payment forms and returns its id and client secret.
func CreateStripePaymentIntent(paymentID uint, creatorID uint, amount int64) (intentID, clientSecret string, err error) {
	if _, _, _, _, err := getStripeConfig(); err != nil {
		return "", "", err
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(amount),
		Currency: stripe.String(string(stripe.CurrencyPLN)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.AddMetadata("payment_id", fmt.Sprintf("%d", paymentID))
	params.AddMetadata("creator_id", fmt.Sprintf("%d", creatorID))

	pi, err := paymentintent.New(params)
	if err != nil {
		return "", "", fmt.Errorf("create payment intent: %w", err)
	}
	return pi.ID, pi.ClientSecret, nil
}

// ConstructStripeWebhookEvent verifies the Stripe-Signature header against the
// raw payload and returns the parsed event. Invalid signatures must be
// rejected with 400 by the caller.
func ConstructStripeWebhookEvent(payload []byte, sigHeader string) (stripe.Event, error) {
	_, webhookSecret, _, _, err := getStripeConfig()
	if err != nil {
		return stripe.Event{}, err
	}
	// Endpoints created on an older API version stamp that version into the
	// event envelope; the SDK would reject those despite a valid signature.
	event, err := webhook.ConstructEventWithOptions(payload, sigHeader, webhookSecret, webhook.ConstructEventOptions{
		IgnoreAPIVersionMismatch: true,
	})
	if err != nil {
		return stripe.Event{}, fmt.Errorf("webhook signature verification: %w", err)
	}
	return event, nil
}
