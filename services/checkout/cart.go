package checkout

import (
	"context"
	"errors"
	"strings"

	"bookcheckout/models"
	"bookcheckout/services/commerce"

	"go.uber.org/zap"
)

// RefreshTotals re-reads the cart. It is the only way displayed totals change.
func (o *Orchestrator) RefreshTotals(ctx context.Context, id string) (*models.CheckoutSession, error) {
	session, err := o.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requirePrePayment(session); err != nil {
		return nil, err
	}
	return o.refresh(ctx, session)
}

func (o *Orchestrator) refresh(ctx context.Context, session *models.CheckoutSession) (*models.CheckoutSession, error) {
	cart, err := o.commerce.GetCart(ctx, session.CartID, commerce.FieldsCartProviders)
	if err != nil {
		return nil, newCheckoutError(CodeBackendUnavailable, "failed to read cart", err)
	}

	var providers []models.PaymentProvider
	if cart.Region != nil {
		providers = cart.Region.PaymentProviders
	}
	detected, found := matchProvider(providers, o.settings.Vendor)

	return o.repo.Update(ctx, session.ID, models.PrePaymentStates, func(s *models.CheckoutSession) error {
		if err := requirePrePayment(s); err != nil {
			return err
		}
		s.Totals = models.TotalsFromCart(cart)
		if found {
			s.ProviderID = detected
		}
		return nil
	})
}

type PromotionRequest struct {
	Code  string `json:"code"`
	Email string `json:"email"`
}

// ApplyPromotion applies one promotion code per attempt. The cart needs an
// email first, taken from the request or the contact on file. Totals are
// cleared once the cart may have changed and only come back from a fresh
// read. A failed call keeps the stored totals.
func (o *Orchestrator) ApplyPromotion(ctx context.Context, id string, req PromotionRequest) (*models.CheckoutSession, error) {
	code := strings.TrimSpace(req.Code)
	if code == "" {
		return nil, &PreconditionError{Code: CodeMissingFields, Missing: []string{"code"}}
	}

	session, err := o.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requirePrePayment(session); err != nil {
		return nil, err
	}
	if session.PromoCode != "" {
		return nil, ErrPromotionAlreadyApplied
	}
	email := strings.TrimSpace(req.Email)
	if email == "" {
		email = session.Contact.Email
	}
	if email == "" {
		return nil, &PreconditionError{Code: CodeMissingFields, Missing: []string{"email"}}
	}
	logger := o.logger.With(zap.String("checkout_id", id), zap.String("cart_id", session.CartID))

	if _, err := o.commerce.UpdateCart(ctx, session.CartID, commerce.UpdateCartInput{Email: email}); err != nil {
		return nil, newCheckoutError(CodeBackendUnavailable, "failed to set cart email", err)
	}

	if _, err := o.commerce.ApplyPromotion(ctx, session.CartID, []string{code}); err != nil {
		if errors.Is(err, commerce.ErrInvalidPromotion) {
			// Rejected codes leave the cart as it was.
			logger.Info("promotion rejected", zap.String("code", code), zap.Error(err))
			return nil, err
		}
		// The code may or may not have landed. Stored totals stay until a
		// cart read replaces them.
		logger.Error("promotion call failed", zap.Error(err))
		if _, rerr := o.refresh(ctx, session); rerr != nil {
			logger.Warn("cart read after failed promotion failed", zap.Error(rerr))
		}
		return nil, newCheckoutError(CodeBackendUnavailable, "failed to apply promotion", err)
	}

	session, err = o.repo.Update(ctx, id, models.PrePaymentStates, func(s *models.CheckoutSession) error {
		if err := requirePrePayment(s); err != nil {
			return err
		}
		if s.PromoCode != "" {
			return ErrPromotionAlreadyApplied
		}
		s.Contact.Email = email
		s.Totals = nil
		s.PromoCode = code
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("promotion applied", zap.String("code", code))

	refreshed, err := o.refresh(ctx, session)
	if err != nil {
		logger.Warn("cart read after promotion failed", zap.Error(err))
		return session, nil
	}
	return refreshed, nil
}
