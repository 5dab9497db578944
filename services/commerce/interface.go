package commerce

import (
	"context"

	"bookcheckout/models"
)

// CommerceService is the set of storefront calls the checkout workflow makes.
type CommerceService interface {
	GetCustomerProfile(ctx context.Context) (*models.Customer, error)
	ListRegions(ctx context.Context) ([]models.Region, error)
	CreateCart(ctx context.Context, in CreateCartInput) (*models.Cart, error)
	AddLineItem(ctx context.Context, cartID string, in LineItemInput) (*models.Cart, error)
	GetCart(ctx context.Context, cartID, fields string) (*models.Cart, error)
	UpdateCart(ctx context.Context, cartID string, in UpdateCartInput) (*models.Cart, error)
	ApplyPromotion(ctx context.Context, cartID string, codes []string) (*models.Cart, error)
	CreatePaymentCollection(ctx context.Context, cartID string) (*models.PaymentCollection, error)
	CreatePaymentSession(ctx context.Context, collectionID, providerID string) (*models.PaymentCollection, error)
	CompleteCart(ctx context.Context, cartID string) (*CompletionResult, error)
	ListOrders(ctx context.Context, fields string) ([]models.Order, error)
}

// Field expansions. Relations are opt-in per request: anything not listed
// comes back undefined, not empty.
const (
	FieldsRegionProviders     = "+payment_providers.id"
	FieldsCartProviders       = "+region.payment_providers.id"
	FieldsCartPaymentSessions = "+payment_collection.payment_sessions"
	FieldsOrderDetails        = "+items.variant.product.title,+items.metadata,+shipping_address,+payment_collections.payments"
)

type CreateCartInput struct {
	RegionID   string `json:"region_id,omitempty"`
	CustomerID string `json:"customer_id,omitempty"`
	Email      string `json:"email,omitempty"`
}

type LineItemInput struct {
	VariantID string         `json:"variant_id"`
	Quantity  int64          `json:"quantity"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

type UpdateCartInput struct {
	Email           string          `json:"email,omitempty"`
	ShippingAddress *models.Address `json:"shipping_address,omitempty"`
}

// CompletionType is the discriminator of a cart completion reply.
type CompletionType string

const (
	CompletionOrder   CompletionType = "order"
	CompletionPending CompletionType = "pending"
)

// CompletionResult is either a placed order or a pending completion. Pending
// is a valid terminal reply, not a failure.
type CompletionResult struct {
	Type  CompletionType
	Order *models.Order
	// Message carries the backend's explanation for a pending reply, if any.
	Message string
}
