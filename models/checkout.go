package models

import "time"

// CheckoutState is the position of one checkout attempt in the workflow.
type CheckoutState string

const (
	StateInitializing    CheckoutState = "INITIALIZING"
	StateCartReady       CheckoutState = "CART_READY"
	StateAwaitingPayment CheckoutState = "AWAITING_PAYMENT"
	StateReconciling     CheckoutState = "RECONCILING"
	StateComplete        CheckoutState = "COMPLETE"
	StateFailed          CheckoutState = "FAILED"
)

// Terminal reports whether no further transition is possible.
func (s CheckoutState) Terminal() bool {
	return s == StateComplete
}

// OutcomeKind names how a paid checkout ended. Only OutcomeConfirmed means an
// order is known to exist; the other two defer the truth to the order list.
type OutcomeKind string

const (
	OutcomeConfirmed            OutcomeKind = "confirmed"
	OutcomeProcessing           OutcomeKind = "processing"
	OutcomeManualReconciliation OutcomeKind = "manual_reconciliation"
)

type CheckoutOutcome struct {
	Kind             OutcomeKind `json:"kind" bson:"kind"`
	OrderID          string      `json:"order_id,omitempty" bson:"order_id,omitempty"`
	DisplayID        int64       `json:"display_id,omitempty" bson:"display_id,omitempty"`
	Message          string      `json:"message" bson:"message"`
	RedirectToOrders bool        `json:"redirect_to_orders" bson:"redirect_to_orders"`
}

// CheckoutFailure records why an attempt sits in FAILED.
type CheckoutFailure struct {
	Code    string    `json:"code" bson:"code"`
	Message string    `json:"message" bson:"message"`
	At      time.Time `json:"at" bson:"at"`
}

// CartTotals are copied from the most recent cart read, never computed locally.
type CartTotals struct {
	CurrencyCode  string `json:"currency_code" bson:"currency_code"`
	Subtotal      int64  `json:"subtotal" bson:"subtotal"`
	DiscountTotal int64  `json:"discount_total" bson:"discount_total"`
	Total         int64  `json:"total" bson:"total"`
}

func TotalsFromCart(c *Cart) *CartTotals {
	return &CartTotals{
		CurrencyCode:  c.CurrencyCode,
		Subtotal:      c.Subtotal,
		DiscountTotal: c.DiscountTotal,
		Total:         c.Total,
	}
}

// CheckoutSession is the durable record of one checkout attempt. It outlives
// the hosted payment UI so the payment callback can find the cart again.
type CheckoutSession struct {
	ID                  string           `json:"id" bson:"_id"`
	State               CheckoutState    `json:"state" bson:"state"`
	Slot                BookingSlot      `json:"slot" bson:"slot"`
	CustomerID          string           `json:"customer_id,omitempty" bson:"customer_id,omitempty"`
	RegionID            string           `json:"region_id,omitempty" bson:"region_id,omitempty"`
	CartID              string           `json:"cart_id,omitempty" bson:"cart_id,omitempty"`
	ItemAttached        bool             `json:"item_attached" bson:"item_attached"`
	ProviderID          string           `json:"provider_id,omitempty" bson:"provider_id,omitempty"`
	Contact             Contact          `json:"contact" bson:"contact"`
	PromoCode           string           `json:"promo_code,omitempty" bson:"promo_code,omitempty"`
	Totals              *CartTotals      `json:"totals,omitempty" bson:"totals,omitempty"`
	PaymentCollectionID string           `json:"payment_collection_id,omitempty" bson:"payment_collection_id,omitempty"`
	PaymentSessionID    string           `json:"payment_session_id,omitempty" bson:"payment_session_id,omitempty"`
	PaymentOrderID      string           `json:"payment_order_id,omitempty" bson:"payment_order_id,omitempty"`
	Outcome             *CheckoutOutcome `json:"outcome,omitempty" bson:"outcome,omitempty"`
	Failure             *CheckoutFailure `json:"failure,omitempty" bson:"failure,omitempty"`
	Version             int              `json:"version" bson:"version"`
	CreatedAt           time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt           time.Time        `json:"updated_at" bson:"updated_at"`
}

// PrePayment reports whether a new payment attempt may start: the cart is
// ready, or an earlier attempt failed after the service was added to it.
func (s *CheckoutSession) PrePayment() bool {
	switch s.State {
	case StateCartReady:
		return true
	case StateFailed:
		return s.CartID != "" && s.ItemAttached
	}
	return false
}

// PrePaymentStates lists the states PrePayment may accept, for store updates.
var PrePaymentStates = []CheckoutState{StateCartReady, StateFailed}
