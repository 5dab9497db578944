package models

// Cart mirrors the commerce backend's cart. Relations (Region,
// PaymentCollection) are only populated when the request asked for them.
type Cart struct {
	ID                string             `json:"id"`
	RegionID          string             `json:"region_id,omitempty"`
	CurrencyCode      string             `json:"currency_code"`
	Email             string             `json:"email,omitempty"`
	ShippingAddress   *Address           `json:"shipping_address,omitempty"`
	Items             []LineItem         `json:"items,omitempty"`
	Subtotal          int64              `json:"subtotal"`
	DiscountTotal     int64              `json:"discount_total"`
	Total             int64              `json:"total"`
	Region            *Region            `json:"region,omitempty"`
	PaymentCollection *PaymentCollection `json:"payment_collection,omitempty"`
}

// LineItem is the booked service inside a cart or an order.
type LineItem struct {
	ID        string           `json:"id,omitempty"`
	Title     string           `json:"title,omitempty"`
	VariantID string           `json:"variant_id,omitempty"`
	Quantity  int64            `json:"quantity"`
	UnitPrice int64            `json:"unit_price"`
	Metadata  map[string]any   `json:"metadata,omitempty"`
	Variant   *LineItemVariant `json:"variant,omitempty"`
}

type LineItemVariant struct {
	ID      string `json:"id"`
	Product *struct {
		Title string `json:"title"`
	} `json:"product,omitempty"`
}

// Line item metadata keys carrying the booking slot.
const (
	MetadataBookingDate = "booking_date"
	MetadataBookingTime = "booking_time"
)

type Address struct {
	FirstName   string `json:"first_name,omitempty"`
	LastName    string `json:"last_name,omitempty"`
	Phone       string `json:"phone,omitempty"`
	Address1    string `json:"address_1,omitempty"`
	City        string `json:"city,omitempty"`
	CountryCode string `json:"country_code,omitempty"`
	PostalCode  string `json:"postal_code,omitempty"`
}

type Region struct {
	ID               string            `json:"id"`
	Name             string            `json:"name,omitempty"`
	CurrencyCode     string            `json:"currency_code"`
	PaymentProviders []PaymentProvider `json:"payment_providers,omitempty"`
}

type PaymentProvider struct {
	ID string `json:"id"`
}

type PaymentCollection struct {
	ID              string           `json:"id"`
	PaymentSessions []PaymentSession `json:"payment_sessions,omitempty"`
	Payments        []Payment        `json:"payments,omitempty"`
}

// PaymentSession carries provider specific credentials in Data.
type PaymentSession struct {
	ID         string         `json:"id"`
	ProviderID string         `json:"provider_id"`
	Status     string         `json:"status,omitempty"`
	Data       map[string]any `json:"data,omitempty"`
}

type Payment struct {
	ID         string `json:"id"`
	ProviderID string `json:"provider_id"`
	Amount     int64  `json:"amount"`
}
