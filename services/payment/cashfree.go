package payment

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bookcheckout/config"

	"go.uber.org/zap"
)

const (
	cashfreeSignatureHeader = "x-webhook-signature"
	cashfreeTimestampHeader = "x-webhook-timestamp"

	cashfreePaymentSuccess = "PAYMENT_SUCCESS_WEBHOOK"
	cashfreePaymentFailed  = "PAYMENT_FAILED_WEBHOOK"
	cashfreeUserDropped    = "PAYMENT_USER_DROPPED_WEBHOOK"
)

type CashfreeGateway struct {
	registry
	environment   string
	webhookSecret string
	logger        *zap.Logger
}

var _ Gateway = (*CashfreeGateway)(nil)

func NewCashfreeGateway(cfg *config.Config, logger *zap.Logger) *CashfreeGateway {
	return &CashfreeGateway{
		environment:   cfg.PaymentEnvironment,
		webhookSecret: cfg.CashfreeWebhookSecret,
		logger:        logger.Named("cashfree"),
	}
}

func (g *CashfreeGateway) Vendor() string { return config.VendorCashfree }

func (g *CashfreeGateway) Credentials(data map[string]any) (Session, error) {
	s := Session{
		SessionID:   stringField(data, "payment_session_id"),
		OrderID:     stringField(data, "order_id"),
		Environment: g.environment,
	}
	var missing []string
	if s.SessionID == "" {
		missing = append(missing, "payment_session_id")
	}
	if s.OrderID == "" {
		missing = append(missing, "order_id")
	}
	if len(missing) > 0 {
		return Session{}, missingCredentials(missing...)
	}
	return s, nil
}

func (g *CashfreeGateway) Launch(ctx context.Context, s Session) (*Launch, error) {
	if s.SessionID == "" || s.OrderID == "" {
		return nil, missingCredentials("payment_session_id", "order_id")
	}
	env := s.Environment
	if env == "" {
		env = g.environment
	}
	g.logger.Info("launching drop-in checkout", zap.String("order_id", s.OrderID), zap.String("environment", env))
	return &Launch{
		Vendor:      config.VendorCashfree,
		SessionID:   s.SessionID,
		OrderID:     s.OrderID,
		Environment: env,
		Theme:       DefaultTheme,
	}, nil
}

type cashfreeWebhook struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID string `json:"order_id"`
		} `json:"order"`
		Payment struct {
			PaymentStatus  string `json:"payment_status"`
			PaymentMessage string `json:"payment_message"`
		} `json:"payment"`
		ErrorDetails *struct {
			ErrorDescription string `json:"error_description"`
		} `json:"error_details"`
	} `json:"data"`
}

// ParseWebhook checks the base64 HMAC-SHA256 of timestamp+body and maps
// payment events to results.
func (g *CashfreeGateway) ParseWebhook(header http.Header, body []byte) (*Result, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}
	signature := header.Get(cashfreeSignatureHeader)
	timestamp := header.Get(cashfreeTimestampHeader)
	if signature == "" || timestamp == "" {
		return nil, fmt.Errorf("%w: missing signature headers", ErrInvalidSignature)
	}
	if !hmac.Equal([]byte(signature), []byte(cashfreeSignature(g.webhookSecret, timestamp, body))) {
		return nil, ErrInvalidSignature
	}

	var event cashfreeWebhook
	if err := json.Unmarshal(body, &event); err != nil {
		return nil, fmt.Errorf("payment: failed to decode cashfree webhook: %w", err)
	}

	orderID := event.Data.Order.OrderID
	switch event.Type {
	case cashfreePaymentSuccess:
		return &Result{OrderID: orderID}, nil
	case cashfreePaymentFailed, cashfreeUserDropped:
		reason := event.Data.Payment.PaymentMessage
		if event.Data.ErrorDetails != nil && event.Data.ErrorDetails.ErrorDescription != "" {
			reason = event.Data.ErrorDetails.ErrorDescription
		}
		if reason == "" && event.Type == cashfreeUserDropped {
			reason = "checkout dismissed"
		}
		return &Result{OrderID: orderID, Err: &DeclinedError{Reason: reason}}, nil
	default:
		g.logger.Debug("ignoring cashfree webhook", zap.String("type", event.Type))
		return nil, fmt.Errorf("%w: %s", ErrIgnoredEvent, event.Type)
	}
}

func cashfreeSignature(secret, timestamp string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(timestamp))
	mac.Write(body)
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

// IsDeclined reports whether err came from a declined or abandoned payment.
func IsDeclined(err error) bool {
	var declined *DeclinedError
	return errors.As(err, &declined)
}
