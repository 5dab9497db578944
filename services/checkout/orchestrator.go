package checkout

import (
	"context"
	"time"

	"bookcheckout/config"
	checkoutRepo "bookcheckout/database/repository/checkout"
	"bookcheckout/models"
	"bookcheckout/services/commerce"
	"bookcheckout/services/payment"

	"go.uber.org/zap"
)

// Settings are the catalog and payment values the workflow needs.
type Settings struct {
	ServiceVariantID string
	RegionCurrency   string
	Vendor           string
	FallbackProvider string
	Placeholder      models.Address
}

func SettingsFromConfig(cfg *config.Config) Settings {
	return Settings{
		ServiceVariantID: cfg.ServiceVariantID,
		RegionCurrency:   cfg.RegionCurrency,
		Vendor:           cfg.PaymentVendor,
		FallbackProvider: cfg.PaymentFallbackProvider,
		Placeholder: models.Address{
			Address1:    cfg.PlaceholderAddressLine,
			City:        cfg.PlaceholderCity,
			CountryCode: cfg.PlaceholderCountry,
			PostalCode:  cfg.PlaceholderPostalCode,
		},
	}
}

// Orchestrator sequences one checkout attempt against the commerce backend
// and the payment vendor. All workflow state lives in the repository, so any
// instance can pick up a checkout, including from the payment callback.
type Orchestrator struct {
	commerce commerce.CommerceService
	gateway  payment.Gateway
	repo     checkoutRepo.CheckoutRepository
	settings Settings
	logger   *zap.Logger
}

func NewOrchestrator(settings Settings, cs commerce.CommerceService, gw payment.Gateway, repo checkoutRepo.CheckoutRepository, logger *zap.Logger) *Orchestrator {
	return &Orchestrator{
		commerce: cs,
		gateway:  gw,
		repo:     repo,
		settings: settings,
		logger:   logger.Named("checkout"),
	}
}

// Attach registers the orchestrator as the gateway's payment callback.
// The callback finds the checkout by vendor order id, so one registration
// serves every checkout.
func (o *Orchestrator) Attach() {
	o.gateway.RegisterCallback(payment.Callback{
		OnVerified: o.handleVerified,
		OnError:    o.handleError,
	})
}

func (o *Orchestrator) Detach() {
	o.gateway.UnregisterCallback()
}

func (o *Orchestrator) Get(ctx context.Context, id string) (*models.CheckoutSession, error) {
	return o.repo.Get(ctx, id)
}

var nonTerminalStates = []models.CheckoutState{
	models.StateInitializing,
	models.StateCartReady,
	models.StateAwaitingPayment,
	models.StateReconciling,
	models.StateFailed,
}

// fail records a FAILED transition. The caller's error is returned as is.
func (o *Orchestrator) fail(ctx context.Context, id, code string, cause error) {
	_, err := o.repo.Update(ctx, id, nonTerminalStates, func(s *models.CheckoutSession) error {
		s.State = models.StateFailed
		s.Failure = &models.CheckoutFailure{Code: code, Message: cause.Error(), At: nowUTC()}
		return nil
	})
	if err != nil {
		o.logger.Error("failed to record checkout failure",
			zap.String("checkout_id", id),
			zap.String("code", code),
			zap.Error(err))
	}
}

func requirePrePayment(s *models.CheckoutSession) error {
	if !s.PrePayment() {
		return &checkoutRepo.StateConflictError{ID: s.ID, State: s.State}
	}
	return nil
}

func nowUTC() time.Time { return time.Now().UTC() }
