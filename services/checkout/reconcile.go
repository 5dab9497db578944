package checkout

import (
	"context"
	"errors"
	"fmt"

	checkoutRepo "bookcheckout/database/repository/checkout"
	"bookcheckout/models"
	"bookcheckout/services/commerce"

	"go.uber.org/zap"
)

const (
	messageConfirmed  = "Your Order #%d has been created."
	messageProcessing = "Payment received. Order creation is pending."
	messageManual     = "Payment succeeded, but order creation failed. Please check My Orders."
)

// handleVerified completes the cart of the checkout that launched orderID.
// The AWAITING_PAYMENT -> RECONCILING compare-and-set makes completion run at
// most once per checkout; duplicates are dropped. A late success for a
// checkout already failed by that same order is still reconciled, because the
// customer has paid. Completion never surfaces an error: every branch ends in
// COMPLETE with a named outcome.
func (o *Orchestrator) handleVerified(ctx context.Context, orderID string) {
	logger := o.logger.With(zap.String("payment_order_id", orderID))
	session, err := o.repo.FindByPaymentOrder(ctx, orderID)
	if err != nil {
		logger.Error("verified payment for unknown checkout", zap.Error(err))
		return
	}
	logger = logger.With(zap.String("checkout_id", session.ID), zap.String("cart_id", session.CartID))

	allowed := []models.CheckoutState{models.StateAwaitingPayment, models.StateFailed}
	session, err = o.repo.Update(ctx, session.ID, allowed, func(s *models.CheckoutSession) error {
		if s.PaymentOrderID != orderID {
			return fmt.Errorf("payment order %s superseded by %s", orderID, s.PaymentOrderID)
		}
		if s.State == models.StateFailed && (s.Failure == nil || s.Failure.Code != CodePaymentFailed) {
			return &checkoutRepo.StateConflictError{ID: s.ID, State: s.State}
		}
		s.State = models.StateReconciling
		s.Failure = nil
		return nil
	})
	if err != nil {
		var conflict *checkoutRepo.StateConflictError
		if errors.As(err, &conflict) || errors.Is(err, checkoutRepo.ErrConcurrentUpdate) {
			logger.Info("duplicate payment verification ignored", zap.Error(err))
			return
		}
		logger.Error("verified payment not reconciled, needs manual review", zap.Error(err))
		return
	}

	// The customer has paid: finish even if the caller goes away.
	completeCtx := context.WithoutCancel(ctx)
	outcome := o.complete(completeCtx, session.CartID, logger)

	_, err = o.repo.Update(completeCtx, session.ID, []models.CheckoutState{models.StateReconciling}, func(s *models.CheckoutSession) error {
		s.State = models.StateComplete
		s.Outcome = outcome
		return nil
	})
	if err != nil {
		logger.Error("failed to record checkout outcome", zap.String("outcome", string(outcome.Kind)), zap.Error(err))
		return
	}
	logger.Info("checkout complete", zap.String("outcome", string(outcome.Kind)), zap.String("order_id", outcome.OrderID))
}

func (o *Orchestrator) complete(ctx context.Context, cartID string, logger *zap.Logger) *models.CheckoutOutcome {
	res, err := o.commerce.CompleteCart(ctx, cartID)
	if err != nil {
		logger.Error("cart completion failed after payment", zap.Error(err))
		return &models.CheckoutOutcome{
			Kind:             models.OutcomeManualReconciliation,
			Message:          messageManual,
			RedirectToOrders: true,
		}
	}
	if res.Type != commerce.CompletionOrder || res.Order == nil {
		logger.Info("cart completion pending", zap.String("message", res.Message))
		return &models.CheckoutOutcome{
			Kind:             models.OutcomeProcessing,
			Message:          messageProcessing,
			RedirectToOrders: true,
		}
	}
	return &models.CheckoutOutcome{
		Kind:             models.OutcomeConfirmed,
		OrderID:          res.Order.ID,
		DisplayID:        res.Order.DisplayID,
		Message:          fmt.Sprintf(messageConfirmed, res.Order.DisplayID),
		RedirectToOrders: true,
	}
}

// handleError returns the checkout to a pre-payment state. No completion is
// attempted.
func (o *Orchestrator) handleError(ctx context.Context, payErr error, orderID string) {
	logger := o.logger.With(zap.String("payment_order_id", orderID))
	session, err := o.repo.FindByPaymentOrder(ctx, orderID)
	if err != nil {
		logger.Error("payment error for unknown checkout", zap.Error(err))
		return
	}

	_, err = o.repo.Update(ctx, session.ID, []models.CheckoutState{models.StateAwaitingPayment}, func(s *models.CheckoutSession) error {
		if s.PaymentOrderID != orderID {
			return fmt.Errorf("payment order %s superseded by %s", orderID, s.PaymentOrderID)
		}
		s.State = models.StateFailed
		s.Failure = &models.CheckoutFailure{Code: CodePaymentFailed, Message: payErr.Error(), At: nowUTC()}
		return nil
	})
	if err != nil {
		logger.Info("payment error ignored", zap.String("checkout_id", session.ID), zap.Error(err))
		return
	}
	logger.Warn("payment failed", zap.String("checkout_id", session.ID), zap.Error(payErr))
}
