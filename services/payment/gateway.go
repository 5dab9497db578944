package payment

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"bookcheckout/config"

	"go.uber.org/zap"
)

var (
	// ErrMissingCredentials means the payment session came back without the
	// pair the drop-in checkout needs. It is a backend contract violation.
	ErrMissingCredentials = errors.New("payment session is missing vendor credentials")
	ErrNoCallback         = errors.New("no payment callback registered")
	ErrMissingOrderID     = errors.New("payment result has no order id")
	ErrInvalidSignature   = errors.New("invalid webhook signature")
	// ErrIgnoredEvent marks a well-formed webhook that carries no payment result.
	ErrIgnoredEvent = errors.New("webhook event ignored")
)

// DeclinedError is the error half of a Result: the vendor or the customer
// ended the payment without success.
type DeclinedError struct {
	Reason string
}

func (e *DeclinedError) Error() string {
	if e.Reason == "" {
		return "payment was not completed"
	}
	return "payment was not completed: " + e.Reason
}

// Session is the credential pair handed to the drop-in checkout.
type Session struct {
	SessionID   string `json:"session_id"`
	OrderID     string `json:"order_id"`
	Environment string `json:"environment"`
}

type Theme struct {
	NavigationBarBackgroundColor string `json:"navigation_bar_background_color"`
	NavigationBarTextColor       string `json:"navigation_bar_text_color"`
}

var DefaultTheme = Theme{
	NavigationBarBackgroundColor: "#000000",
	NavigationBarTextColor:       "#FFFFFF",
}

// Launch describes one drop-in checkout for the app to open. The result comes
// back later through Notify, never as a return value.
type Launch struct {
	Vendor         string `json:"vendor"`
	SessionID      string `json:"session_id"`
	OrderID        string `json:"order_id"`
	Environment    string `json:"environment"`
	Theme          Theme  `json:"theme"`
	PublishableKey string `json:"publishable_key,omitempty"`
}

// Result is one payment outcome. A nil Err means the payment was verified.
type Result struct {
	OrderID string
	Err     error
}

// Callback receives payment outcomes. Both functions must be set.
type Callback struct {
	OnVerified func(ctx context.Context, orderID string)
	OnError    func(ctx context.Context, err error, orderID string)
}

// Gateway wraps one payment vendor. It holds at most one callback;
// registering again replaces the previous one.
type Gateway interface {
	Vendor() string
	// Credentials extracts the session pair from a payment session's opaque data.
	Credentials(data map[string]any) (Session, error)
	RegisterCallback(cb Callback)
	UnregisterCallback()
	Launch(ctx context.Context, s Session) (*Launch, error)
	// Notify delivers a result to the registered callback.
	Notify(ctx context.Context, res Result) error
	// ParseWebhook verifies and decodes a vendor webhook into a Result.
	ParseWebhook(header http.Header, body []byte) (*Result, error)
}

// NewGateway builds the gateway for the configured vendor.
func NewGateway(cfg *config.Config, logger *zap.Logger) (Gateway, error) {
	switch cfg.PaymentVendor {
	case config.VendorCashfree:
		return NewCashfreeGateway(cfg, logger), nil
	case config.VendorStripe:
		return NewStripeGateway(cfg, logger), nil
	default:
		return nil, fmt.Errorf("payment: unsupported vendor %q", cfg.PaymentVendor)
	}
}

func stringField(data map[string]any, key string) string {
	s, _ := data[key].(string)
	return s
}

func missingCredentials(fields ...string) error {
	return fmt.Errorf("%w: missing %v", ErrMissingCredentials, fields)
}
