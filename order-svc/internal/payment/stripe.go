package payment

import (
	"context"
	"errors"
	"net/http"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"

	"savory-orders/internal/apperr"
	"savory-orders/internal/pricing"
)

// PaymentIntentAPI is the part of the Stripe client used here.
type PaymentIntentAPI interface {
	New(params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	Get(id string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type Stripe struct {
	intents PaymentIntentAPI
}

// NewStripe returns nil when no secret key is configured.
func NewStripe(secretKey string) *Stripe {
	if secretKey == "" {
		return nil
	}
	return NewStripeWithAPI(client.New(secretKey, nil).PaymentIntents)
}

func NewStripeWithAPI(intents PaymentIntentAPI) *Stripe {
	return &Stripe{intents: intents}
}

func (s *Stripe) CreateIntent(ctx context.Context, charge pricing.Charge, reference string) (Intent, error) {
	if s == nil {
		return Intent{}, apperr.External("stripe", ErrNotConfigured)
	}
	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(charge.MinorUnits),
		Currency: stripe.String(charge.Currency),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	params.Context = ctx
	params.AddMetadata("order_type", "restaurant_order")
	if charge.OrigCurr != "" && charge.OrigCurr != charge.Currency {
		params.AddMetadata("original_amount_"+charge.OrigCurr, charge.Original.String())
	}
	if reference != "" {
		params.SetIdempotencyKey(reference)
	}

	pi, err := s.intents.New(params)
	if err != nil {
		return Intent{}, stripeError(err, "")
	}
	return Intent{ID: pi.ID, ClientSecret: pi.ClientSecret}, nil
}

func (s *Stripe) Confirm(ctx context.Context, intentID string) (Outcome, error) {
	if s == nil {
		return Outcome{}, apperr.External("stripe", ErrNotConfigured)
	}
	params := &stripe.PaymentIntentParams{}
	params.Context = ctx

	pi, err := s.intents.Get(intentID, params)
	if err != nil {
		return Outcome{}, stripeError(err, intentID)
	}

	if pi.Status == stripe.PaymentIntentStatusSucceeded {
		return Outcome{Succeeded: true, ConfirmationID: pi.ID}, nil
	}
	message := "payment was not completed"
	if pi.LastPaymentError != nil && pi.LastPaymentError.Msg != "" {
		message = pi.LastPaymentError.Msg
	}
	return Outcome{Message: message}, nil
}

// stripeError keeps card declines readable and hides everything else.
func stripeError(err error, intentID string) error {
	var se *stripe.Error
	if errors.As(err, &se) {
		switch {
		case se.Type == stripe.ErrorTypeCard:
			return apperr.PaymentDeclinedError{Message: se.Msg}
		case se.HTTPStatusCode == http.StatusNotFound && intentID != "":
			return apperr.NotFound("payment intent", intentID)
		}
	}
	return apperr.External("stripe", err)
}
