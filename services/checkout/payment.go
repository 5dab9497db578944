package checkout

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	checkoutRepo "bookcheckout/database/repository/checkout"
	"bookcheckout/models"
	"bookcheckout/services/commerce"
	"bookcheckout/services/payment"

	"go.uber.org/zap"
)

// InitiatePayment binds the contact to the cart, opens a payment collection
// and a session with the resolved provider, and returns the drop-in checkout
// descriptor. The contact is validated before any I/O. The session moves to
// AWAITING_PAYMENT up front so a second call cannot open another collection;
// any failure lands in FAILED, from which a new attempt is allowed.
func (o *Orchestrator) InitiatePayment(ctx context.Context, id string, contact models.Contact) (*payment.Launch, error) {
	contact = trimContact(contact)
	if err := ValidateContact(contact); err != nil {
		return nil, err
	}

	session, err := o.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requirePrePayment(session); err != nil {
		return nil, err
	}

	providerID := o.paymentProvider(session)
	session, err = o.repo.Update(ctx, id, models.PrePaymentStates, func(s *models.CheckoutSession) error {
		if err := requirePrePayment(s); err != nil {
			return err
		}
		s.State = models.StateAwaitingPayment
		s.Contact = contact
		s.ProviderID = providerID
		s.Failure = nil
		s.PaymentCollectionID = ""
		s.PaymentSessionID = ""
		s.PaymentOrderID = ""
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger := o.logger.With(zap.String("checkout_id", id), zap.String("cart_id", session.CartID), zap.String("provider_id", providerID))
	if providerID == o.settings.FallbackProvider {
		logger.Warn("no matching provider detected, using fallback provider")
	}

	launch, err := o.startPayment(ctx, session, logger)
	if err != nil {
		var ce *CheckoutError
		code := CodePaymentSetupFailed
		if errors.As(err, &ce) {
			code = ce.Code
		}
		logger.Error("payment initiation failed", zap.String("code", code), zap.Error(err))
		o.fail(ctx, id, code, err)
		return nil, err
	}
	return launch, nil
}

func (o *Orchestrator) startPayment(ctx context.Context, session *models.CheckoutSession, logger *zap.Logger) (*payment.Launch, error) {
	shipping := o.settings.Placeholder
	shipping.FirstName = session.Contact.FirstName
	shipping.LastName = session.Contact.LastName
	shipping.Phone = session.Contact.Phone

	_, err := o.commerce.UpdateCart(ctx, session.CartID, commerce.UpdateCartInput{
		Email:           session.Contact.Email,
		ShippingAddress: &shipping,
	})
	if err != nil {
		return nil, newCheckoutError(CodePaymentSetupFailed, "failed to bind contact to cart", err)
	}

	collection, err := o.commerce.CreatePaymentCollection(ctx, session.CartID)
	if err != nil {
		return nil, newCheckoutError(CodePaymentSetupFailed, "failed to create payment collection", err)
	}
	if _, err := o.commerce.CreatePaymentSession(ctx, collection.ID, session.ProviderID); err != nil {
		return nil, newCheckoutError(CodePaymentSetupFailed, "failed to create payment session", err)
	}

	cart, err := o.commerce.GetCart(ctx, session.CartID, commerce.FieldsCartPaymentSessions)
	if err != nil {
		return nil, newCheckoutError(CodePaymentSetupFailed, "failed to read payment session", err)
	}
	ps := findPaymentSession(cart, session.ProviderID)
	if ps == nil {
		return nil, newCheckoutError(CodeMissingCredentials, "payment session not found on cart",
			fmt.Errorf("%w: no session for %s", payment.ErrMissingCredentials, session.ProviderID))
	}
	creds, err := o.gateway.Credentials(ps.Data)
	if err != nil {
		return nil, newCheckoutError(CodeMissingCredentials, "payment session has no usable credentials", err)
	}

	_, err = o.repo.Update(ctx, session.ID, []models.CheckoutState{models.StateAwaitingPayment}, func(s *models.CheckoutSession) error {
		s.PaymentCollectionID = collection.ID
		s.PaymentSessionID = ps.ID
		s.PaymentOrderID = creds.OrderID
		return nil
	})
	if err != nil {
		return nil, err
	}

	launch, err := o.gateway.Launch(ctx, creds)
	if err != nil {
		return nil, newCheckoutError(CodeMissingCredentials, "failed to launch checkout", err)
	}
	logger.Info("awaiting payment", zap.String("payment_order_id", creds.OrderID))
	return launch, nil
}

func findPaymentSession(cart *models.Cart, providerID string) *models.PaymentSession {
	if cart == nil || cart.PaymentCollection == nil {
		return nil
	}
	for i := range cart.PaymentCollection.PaymentSessions {
		if cart.PaymentCollection.PaymentSessions[i].ProviderID == providerID {
			return &cart.PaymentCollection.PaymentSessions[i]
		}
	}
	return nil
}

// PaymentReport is the drop-in checkout result as relayed by the app.
type PaymentReport struct {
	OrderID string `json:"order_id"`
	Success bool   `json:"success"`
	Error   string `json:"error"`
}

// ReportPaymentResult forwards an app-reported result through the gateway
// callback and returns the session as it stands afterwards.
func (o *Orchestrator) ReportPaymentResult(ctx context.Context, id string, report PaymentReport) (*models.CheckoutSession, error) {
	if report.OrderID == "" {
		return nil, &PreconditionError{Code: CodeMissingFields, Missing: []string{"order_id"}}
	}
	session, err := o.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if session.PaymentOrderID != report.OrderID {
		return nil, ErrUnknownPaymentOrder
	}

	res := payment.Result{OrderID: report.OrderID}
	if !report.Success {
		res.Err = &payment.DeclinedError{Reason: report.Error}
	}
	if err := o.gateway.Notify(ctx, res); err != nil {
		return nil, err
	}
	return o.repo.Get(ctx, id)
}

// ProcessWebhook verifies a vendor webhook and delivers its result.
// Events without a payment result are acknowledged and dropped.
func (o *Orchestrator) ProcessWebhook(ctx context.Context, header http.Header, body []byte) error {
	res, err := o.gateway.ParseWebhook(header, body)
	if errors.Is(err, payment.ErrIgnoredEvent) {
		return nil
	}
	if err != nil {
		return err
	}
	if _, err := o.repo.FindByPaymentOrder(ctx, res.OrderID); errors.Is(err, checkoutRepo.ErrNotFound) {
		o.logger.Warn("webhook for unknown payment order", zap.String("payment_order_id", res.OrderID))
		return nil
	}
	return o.gateway.Notify(ctx, *res)
}
