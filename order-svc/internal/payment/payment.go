// Package payment talks to the card and wallet processors a checkout can
// be paid with.
package payment

import (
	"context"
	"errors"

	"savory-orders/internal/pricing"
)

var ErrNotConfigured = errors.New("payment processor is not configured")

// Intent is the processor-side handle a client completes payment against.
// Card flows get a ClientSecret, redirect flows an ApprovalURL.
type Intent struct {
	ID           string
	ClientSecret string
	ApprovalURL  string
}

// Outcome is what the processor reports for an intent. Message is the
// processor's own wording and is shown to the customer unchanged.
type Outcome struct {
	Succeeded      bool
	ConfirmationID string
	Message        string
}

type Processor interface {
	CreateIntent(ctx context.Context, charge pricing.Charge, reference string) (Intent, error)
	Confirm(ctx context.Context, intentID string) (Outcome, error)
}

var (
	_ Processor = (*Stripe)(nil)
	_ Processor = (*PayPal)(nil)
)
