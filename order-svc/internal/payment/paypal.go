package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"savory-orders/internal/apperr"
	"savory-orders/internal/pricing"
)

type HTTPClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type PayPalConfig struct {
	ClientID     string
	ClientSecret string
	BaseURL      string
	ReturnURL    string
	CancelURL    string
}

// PayPal drives the Orders v2 redirect flow: create an order, send the
// customer to its approve link, capture on return.
type PayPal struct {
	config PayPalConfig
	client HTTPClient

	mu      sync.Mutex
	token   string
	expires time.Time
	now     func() time.Time
}

// NewPayPal returns nil when credentials are missing.
func NewPayPal(config PayPalConfig, client HTTPClient) *PayPal {
	if config.ClientID == "" || config.ClientSecret == "" {
		return nil
	}
	config.BaseURL = strings.TrimSuffix(config.BaseURL, "/")
	return &PayPal{config: config, client: client, now: time.Now}
}

type paypalLink struct {
	Href string `json:"href"`
	Rel  string `json:"rel"`
}

type paypalOrder struct {
	ID     string       `json:"id"`
	Status string       `json:"status"`
	Links  []paypalLink `json:"links"`
}

type paypalError struct {
	Name    string `json:"name"`
	Message string `json:"message"`
	Details []struct {
		Issue       string `json:"issue"`
		Description string `json:"description"`
	} `json:"details"`
}

func (e paypalError) issue() string {
	if len(e.Details) > 0 {
		return e.Details[0].Issue
	}
	return e.Name
}

func (e paypalError) text() string {
	if len(e.Details) > 0 && e.Details[0].Description != "" {
		return e.Details[0].Description
	}
	return e.Message
}

func (p *PayPal) CreateIntent(ctx context.Context, charge pricing.Charge, reference string) (Intent, error) {
	if p == nil {
		return Intent{}, apperr.External("paypal", ErrNotConfigured)
	}
	body := map[string]any{
		"intent": "CAPTURE",
		"purchase_units": []map[string]any{{
			"reference_id": reference,
			"amount": map[string]string{
				"currency_code": strings.ToUpper(charge.Currency),
				"value":         charge.Amount.StringFixed(2),
			},
		}},
		"application_context": map[string]string{
			"return_url":  p.config.ReturnURL,
			"cancel_url":  p.config.CancelURL,
			"user_action": "PAY_NOW",
		},
	}

	var order paypalOrder
	status, perr, err := p.call(ctx, http.MethodPost, "/v2/checkout/orders", reference, body, &order)
	if err != nil {
		return Intent{}, apperr.External("paypal", err)
	}
	if status >= 300 {
		if status == http.StatusUnprocessableEntity {
			return Intent{}, apperr.PaymentDeclinedError{Message: perr.text()}
		}
		return Intent{}, apperr.External("paypal", fmt.Errorf("create order: %d %s", status, perr.text()))
	}

	intent := Intent{ID: order.ID}
	for _, link := range order.Links {
		if link.Rel == "approve" || link.Rel == "payer-action" {
			intent.ApprovalURL = link.Href
		}
	}
	return intent, nil
}

// Confirm captures an approved order. Capturing twice counts as success.
func (p *PayPal) Confirm(ctx context.Context, intentID string) (Outcome, error) {
	if p == nil {
		return Outcome{}, apperr.External("paypal", ErrNotConfigured)
	}
	var order paypalOrder
	status, perr, err := p.call(ctx, http.MethodPost, "/v2/checkout/orders/"+url.PathEscape(intentID)+"/capture", intentID, nil, &order)
	if err != nil {
		return Outcome{}, apperr.External("paypal", err)
	}

	switch {
	case status < 300 && order.Status == "COMPLETED":
		return Outcome{Succeeded: true, ConfirmationID: order.ID}, nil
	case status < 300:
		return Outcome{Message: "payment is " + strings.ToLower(order.Status)}, nil
	case status == http.StatusNotFound:
		return Outcome{}, apperr.NotFound("payment intent", intentID)
	case status == http.StatusUnprocessableEntity && perr.issue() == "ORDER_ALREADY_CAPTURED":
		return Outcome{Succeeded: true, ConfirmationID: intentID}, nil
	case status == http.StatusUnprocessableEntity:
		return Outcome{Message: perr.text()}, nil
	default:
		return Outcome{}, apperr.External("paypal", fmt.Errorf("capture order: %d %s", status, perr.text()))
	}
}

func (p *PayPal) call(ctx context.Context, method, path, requestID string, in, out any) (int, paypalError, error) {
	var perr paypalError
	token, err := p.accessToken(ctx)
	if err != nil {
		return 0, perr, err
	}

	payload := []byte("{}")
	if in != nil {
		if payload, err = json.Marshal(in); err != nil {
			return 0, perr, err
		}
	}
	req, err := http.NewRequestWithContext(ctx, method, p.config.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return 0, perr, err
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")
	if requestID != "" {
		req.Header.Set("PayPal-Request-Id", requestID)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, perr, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, perr, err
	}
	if resp.StatusCode >= 300 {
		_ = json.Unmarshal(raw, &perr)
		return resp.StatusCode, perr, nil
	}
	if out != nil && len(raw) > 0 {
		if err := json.Unmarshal(raw, out); err != nil {
			return resp.StatusCode, perr, fmt.Errorf("decode paypal response: %w", err)
		}
	}
	return resp.StatusCode, perr, nil
}

// accessToken reuses the OAuth token until a minute before it expires.
func (p *PayPal) accessToken(ctx context.Context) (string, error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.token != "" && p.now().Before(p.expires) {
		return p.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.config.BaseURL+"/v1/oauth2/token",
		strings.NewReader("grant_type=client_credentials"))
	if err != nil {
		return "", err
	}
	req.SetBasicAuth(p.config.ClientID, p.config.ClientSecret)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := p.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("paypal oauth: status %d", resp.StatusCode)
	}
	var token struct {
		AccessToken string `json:"access_token"`
		ExpiresIn   int    `json:"expires_in"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&token); err != nil {
		return "", fmt.Errorf("paypal oauth: %w", err)
	}

	p.token = token.AccessToken
	p.expires = p.now().Add(time.Duration(token.ExpiresIn)*time.Second - time.Minute)
	return p.token, nil
}
