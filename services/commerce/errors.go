package commerce

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPromotion marks a promotion code the backend refused. It is a
	// business-rule failure, distinct from the backend being unreachable.
	ErrInvalidPromotion = errors.New("invalid promotion code")
	// ErrUnavailable is returned while the circuit breaker is open.
	ErrUnavailable = errors.New("commerce backend unavailable")
)

// APIError is a non-2xx reply from the commerce backend.
type APIError struct {
	Status  int
	Type    string
	Message string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("commerce: status %d", e.Status)
	}
	return fmt.Sprintf("commerce: status %d: %s", e.Status, e.Message)
}

// IsClientError reports whether err is a 4xx reply from the backend.
func IsClientError(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500
}

// PromotionError wraps ErrInvalidPromotion with the backend's explanation.
type PromotionError struct {
	Codes  []string
	Reason string
}

func (e *PromotionError) Error() string {
	if e.Reason == "" {
		return fmt.Sprintf("invalid promotion code %v", e.Codes)
	}
	return e.Reason
}

func (e *PromotionError) Unwrap() error { return ErrInvalidPromotion }
