package payment

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"bookcheckout/config"

	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/webhook"
	"go.uber.org/zap"
)

const stripeSignatureHeader = "Stripe-Signature"

// StripeGateway drives the Stripe payment sheet. The session pair is the
// PaymentIntent client secret and its id.
type StripeGateway struct {
	registry
	environment    string
	publishableKey string
	webhookSecret  string
	logger         *zap.Logger
}

var _ Gateway = (*StripeGateway)(nil)

func NewStripeGateway(cfg *config.Config, logger *zap.Logger) *StripeGateway {
	return &StripeGateway{
		environment:    cfg.PaymentEnvironment,
		publishableKey: cfg.StripePublishableKey,
		webhookSecret:  cfg.StripeWebhookSecret,
		logger:         logger.Named("stripe"),
	}
}

func (g *StripeGateway) Vendor() string { return config.VendorStripe }

func (g *StripeGateway) Credentials(data map[string]any) (Session, error) {
	s := Session{
		SessionID:   stringField(data, "client_secret"),
		OrderID:     stringField(data, "id"),
		Environment: g.environment,
	}
	var missing []string
	if s.SessionID == "" {
		missing = append(missing, "client_secret")
	}
	if s.OrderID == "" {
		missing = append(missing, "id")
	}
	if len(missing) > 0 {
		return Session{}, missingCredentials(missing...)
	}
	return s, nil
}

func (g *StripeGateway) Launch(ctx context.Context, s Session) (*Launch, error) {
	if s.SessionID == "" || s.OrderID == "" {
		return nil, missingCredentials("client_secret", "id")
	}
	env := s.Environment
	if env == "" {
		env = g.environment
	}
	g.logger.Info("launching payment sheet", zap.String("payment_intent", s.OrderID), zap.String("environment", env))
	return &Launch{
		Vendor:         config.VendorStripe,
		SessionID:      s.SessionID,
		OrderID:        s.OrderID,
		Environment:    env,
		Theme:          DefaultTheme,
		PublishableKey: g.publishableKey,
	}, nil
}

func (g *StripeGateway) ParseWebhook(header http.Header, body []byte) (*Result, error) {
	if g.webhookSecret == "" {
		return nil, fmt.Errorf("%w: webhook secret not configured", ErrInvalidSignature)
	}
	event, err := webhook.ConstructEventWithOptions(body, header.Get(stripeSignatureHeader), g.webhookSecret,
		webhook.ConstructEventOptions{IgnoreAPIVersionMismatch: true})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded, stripe.EventTypePaymentIntentPaymentFailed, stripe.EventTypePaymentIntentCanceled:
	default:
		g.logger.Debug("ignoring stripe webhook", zap.String("type", string(event.Type)))
		return nil, fmt.Errorf("%w: %s", ErrIgnoredEvent, event.Type)
	}
	if event.Data == nil {
		return nil, fmt.Errorf("payment: stripe event %s has no data", event.ID)
	}

	var intent stripe.PaymentIntent
	if err := json.Unmarshal(event.Data.Raw, &intent); err != nil {
		return nil, fmt.Errorf("payment: failed to decode payment intent: %w", err)
	}

	switch event.Type {
	case stripe.EventTypePaymentIntentSucceeded:
		return &Result{OrderID: intent.ID}, nil
	case stripe.EventTypePaymentIntentCanceled:
		return &Result{OrderID: intent.ID, Err: &DeclinedError{Reason: string(intent.CancellationReason)}}, nil
	default:
		reason := ""
		if intent.LastPaymentError != nil {
			reason = intent.LastPaymentError.Msg
		}
		return &Result{OrderID: intent.ID, Err: &DeclinedError{Reason: reason}}, nil
	}
}
