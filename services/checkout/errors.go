package checkout

import (
	"errors"
	"fmt"
	"strings"
)

// Failure codes recorded on FAILED sessions and returned in API errors.
const (
	CodeInvalidSlot        = "invalid_slot"
	CodeMissingFields      = "missing_fields"
	CodeCartInitFailed     = "cart_init_failed"
	CodeBackendUnavailable = "backend_unavailable"
	CodeMissingCredentials = "missing_credentials"
	CodePaymentSetupFailed = "payment_setup_failed"
	CodePaymentFailed      = "payment_failed"
)

var (
	ErrPromotionAlreadyApplied = errors.New("a promotion code has already been applied to this checkout")
	// ErrUnknownPaymentOrder is returned when a reported result names an
	// order this checkout did not launch.
	ErrUnknownPaymentOrder = errors.New("payment order does not belong to this checkout")
)

// CheckoutError wraps a failed workflow step with a stable code.
type CheckoutError struct {
	Code       string
	Message    string
	// CheckoutID is set when the failed attempt was already persisted.
	CheckoutID string
	Err        error
}

func (e *CheckoutError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
}

func (e *CheckoutError) Unwrap() error { return e.Err }

func newCheckoutError(code, msg string, err error) *CheckoutError {
	return &CheckoutError{Code: code, Message: msg, Err: err}
}

// PreconditionError means required input was missing. It is always raised
// before any backend call.
type PreconditionError struct {
	Code    string
	Missing []string
}

func (e *PreconditionError) Error() string {
	return "missing required fields: " + strings.Join(e.Missing, ", ")
}
