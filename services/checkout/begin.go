package checkout

import (
	"context"
	"strings"

	"bookcheckout/models"
	"bookcheckout/services/commerce"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type BeginRequest struct {
	Slot models.BookingSlot `json:"slot"`
}

// Begin starts a checkout attempt for the chosen slot: it creates a cart in
// the target region, attaches the service with the slot as metadata and
// reads the cart back for totals and provider detection. The session is
// persisted before the first backend call and the cart id right after the
// cart exists.
func (o *Orchestrator) Begin(ctx context.Context, req BeginRequest) (*models.CheckoutSession, error) {
	slot := models.BookingSlot{Date: strings.TrimSpace(req.Slot.Date), Time: strings.TrimSpace(req.Slot.Time)}
	var missing []string
	if slot.Date == "" {
		missing = append(missing, "slot.date")
	}
	if slot.Time == "" {
		missing = append(missing, "slot.time")
	}
	if len(missing) > 0 {
		return nil, &PreconditionError{Code: CodeInvalidSlot, Missing: missing}
	}

	customer, err := o.commerce.GetCustomerProfile(ctx)
	if err != nil {
		o.logger.Warn("customer profile unavailable, continuing as guest", zap.Error(err))
		customer = nil
	}

	now := nowUTC()
	session := &models.CheckoutSession{
		ID:        uuid.New().String(),
		State:     models.StateInitializing,
		Slot:      slot,
		Contact:   models.ContactFromCustomer(customer),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if customer != nil {
		session.CustomerID = customer.ID
	}
	if err := o.repo.Create(ctx, session); err != nil {
		return nil, err
	}
	logger := o.logger.With(zap.String("checkout_id", session.ID))

	regionID := o.resolveRegion(ctx, logger)
	cart, err := o.commerce.CreateCart(ctx, commerce.CreateCartInput{
		RegionID:   regionID,
		CustomerID: session.CustomerID,
		Email:      customerEmail(customer),
	})
	if err != nil {
		logger.Error("failed to create cart", zap.Error(err))
		o.fail(ctx, session.ID, CodeCartInitFailed, err)
		return nil, &CheckoutError{Code: CodeCartInitFailed, Message: "failed to create cart", CheckoutID: session.ID, Err: err}
	}

	session, err = o.repo.Update(ctx, session.ID, []models.CheckoutState{models.StateInitializing}, func(s *models.CheckoutSession) error {
		s.CartID = cart.ID
		s.RegionID = cart.RegionID
		if s.RegionID == "" {
			s.RegionID = regionID
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger = logger.With(zap.String("cart_id", cart.ID))

	_, err = o.commerce.AddLineItem(ctx, cart.ID, commerce.LineItemInput{
		VariantID: o.settings.ServiceVariantID,
		Quantity:  1,
		Metadata: map[string]any{
			models.MetadataBookingDate: slot.Date,
			models.MetadataBookingTime: slot.Time,
		},
	})
	if err != nil {
		logger.Error("failed to attach service to cart", zap.Error(err))
		o.fail(ctx, session.ID, CodeCartInitFailed, err)
		return nil, &CheckoutError{Code: CodeCartInitFailed, Message: "failed to add the booking to the cart", CheckoutID: session.ID, Err: err}
	}

	session, err = o.repo.Update(ctx, session.ID, []models.CheckoutState{models.StateInitializing}, func(s *models.CheckoutSession) error {
		s.State = models.StateCartReady
		s.ItemAttached = true
		return nil
	})
	if err != nil {
		return nil, err
	}
	logger.Info("cart ready", zap.String("date", slot.Date), zap.String("time", slot.Time))

	refreshed, err := o.refresh(ctx, session)
	if err != nil {
		// The cart is usable; totals stay empty until a refresh succeeds.
		logger.Warn("initial cart read failed", zap.Error(err))
		return session, nil
	}
	return refreshed, nil
}

// resolveRegion is best effort: without a match the backend's default region
// applies.
func (o *Orchestrator) resolveRegion(ctx context.Context, logger *zap.Logger) string {
	regions, err := o.commerce.ListRegions(ctx)
	if err != nil {
		logger.Warn("region lookup failed, using backend default", zap.Error(err))
		return ""
	}
	region := SelectRegion(regions, o.settings.RegionCurrency)
	if region == nil {
		logger.Warn("no region for currency, using backend default", zap.String("currency", o.settings.RegionCurrency))
		return ""
	}
	return region.ID
}

func customerEmail(c *models.Customer) string {
	if c == nil {
		return ""
	}
	return c.Email
}
