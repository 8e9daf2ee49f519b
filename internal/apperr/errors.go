// Package apperr holds the error kinds shared by every service and their
// mapping onto HTTP responses.
package apperr

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// RetryMessage is what end users see when a dependency fails.
const RetryMessage = "service temporarily unavailable, please retry"

type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

type InvalidTransitionError struct {
	From string
	To   string
}

func (e InvalidTransitionError) Error() string {
	return fmt.Sprintf("cannot move order from %s to %s", e.From, e.To)
}

// ConflictError reports a write that clashes with one already made.
type ConflictError struct {
	Message string
}

func (e ConflictError) Error() string {
	return e.Message
}

// ExternalServiceError wraps failures of storage, brokers and payment
// processors. Err is logged, never shown to end users.
type ExternalServiceError struct {
	Service string
	Err     error
}

func (e ExternalServiceError) Error() string {
	return fmt.Sprintf("%s: %v", e.Service, e.Err)
}

func (e ExternalServiceError) Unwrap() error {
	return e.Err
}

// PaymentDeclinedError carries a processor's failure message, which is
// shown to the customer as-is.
type PaymentDeclinedError struct {
	Message string
}

func (e PaymentDeclinedError) Error() string {
	return e.Message
}

var (
	ErrUnauthorized = errors.New("authentication required")
	ErrForbidden    = errors.New("forbidden")
)

func Validation(field, message string) error {
	return ValidationError{Field: field, Message: message}
}

func NotFound(resource, id string) error {
	return NotFoundError{Resource: resource, ID: id}
}

func Conflict(message string) error {
	return ConflictError{Message: message}
}

func External(service string, err error) error {
	return ExternalServiceError{Service: service, Err: err}
}

func IsValidation(err error) bool {
	var target ValidationError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target NotFoundError
	return errors.As(err, &target)
}

func IsInvalidTransition(err error) bool {
	var target InvalidTransitionError
	return errors.As(err, &target)
}

func IsExternal(err error) bool {
	var target ExternalServiceError
	return errors.As(err, &target)
}

// StatusCode maps an error kind onto an HTTP status.
func StatusCode(err error) int {
	var (
		validation ValidationError
		notFound   NotFoundError
		transition InvalidTransitionError
		conflict   ConflictError
		declined   PaymentDeclinedError
		external   ExternalServiceError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation):
		return http.StatusBadRequest
	case errors.As(err, &notFound):
		return http.StatusNotFound
	case errors.As(err, &transition):
		return http.StatusConflict
	case errors.As(err, &conflict):
		return http.StatusConflict
	case errors.As(err, &declined):
		return http.StatusPaymentRequired
	case errors.Is(err, ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &external):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

// PublicMessage is the text safe to return to a client.
func PublicMessage(err error) string {
	switch StatusCode(err) {
	case http.StatusBadGateway, http.StatusInternalServerError:
		return RetryMessage
	default:
		return err.Error()
	}
}

// WriteJSON writes {"error": ...} with the mapped status.
func WriteJSON(w http.ResponseWriter, err error) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(StatusCode(err))
	json.NewEncoder(w).Encode(map[string]string{"error": PublicMessage(err)})
}
