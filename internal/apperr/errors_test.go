package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusCode(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{name: "validation", err: Validation("rating", "must be 1-5"), want: http.StatusBadRequest},
		{name: "wrapped not found", err: fmt.Errorf("load: %w", NotFound("order", "o-1")), want: http.StatusNotFound},
		{name: "transition", err: InvalidTransitionError{From: "delivered", To: "pending"}, want: http.StatusConflict},
		{name: "conflict", err: Conflict("duplicate"), want: http.StatusConflict},
		{name: "declined", err: PaymentDeclinedError{Message: "card declined"}, want: http.StatusPaymentRequired},
		{name: "unauthorized", err: ErrUnauthorized, want: http.StatusUnauthorized},
		{name: "forbidden", err: fmt.Errorf("remove review: %w", ErrForbidden), want: http.StatusForbidden},
		{name: "external", err: External("stripe", errors.New("timeout")), want: http.StatusBadGateway},
		{name: "unknown", err: errors.New("boom"), want: http.StatusInternalServerError},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			assert.Equal(t, testCase.want, StatusCode(testCase.err))
		})
	}
}

func TestWriteJSON_HidesExternalDetail(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, External("stripe", errors.New("api key sk_live_123 invalid")))

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.JSONEq(t, `{"error":"service temporarily unavailable, please retry"}`, w.Body.String())
}

func TestWriteJSON_PassesDeclineMessageVerbatim(t *testing.T) {
	w := httptest.NewRecorder()
	WriteJSON(w, PaymentDeclinedError{Message: "Your card has insufficient funds."})

	assert.Equal(t, http.StatusPaymentRequired, w.Code)
	assert.JSONEq(t, `{"error":"Your card has insufficient funds."}`, w.Body.String())
}

func TestExternalUnwraps(t *testing.T) {
	cause := errors.New("connection refused")
	err := External("postgres", cause)
	assert.ErrorIs(t, err, cause)
	assert.True(t, IsExternal(fmt.Errorf("save: %w", err)))
}
