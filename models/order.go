package models

import "time"

// Order is the terminal entity produced by cart completion. Read only.
type Order struct {
	ID                 string              `json:"id"`
	DisplayID          int64               `json:"display_id"`
	Status             string              `json:"status,omitempty"`
	PaymentStatus      string              `json:"payment_status"`
	Total              int64               `json:"total"`
	CurrencyCode       string              `json:"currency_code"`
	Email              string              `json:"email,omitempty"`
	Items              []LineItem          `json:"items,omitempty"`
	ShippingAddress    *Address            `json:"shipping_address,omitempty"`
	PaymentCollections []PaymentCollection `json:"payment_collections,omitempty"`
	CreatedAt          time.Time           `json:"created_at"`
}

// StatusLabel is the display form of an order's payment status.
type StatusLabel struct {
	Text  string `json:"text"`
	Color string `json:"color"`
}

// OrderView is the Order Viewer projection of one order.
type OrderView struct {
	ID            string          `json:"id"`
	DisplayID     int64           `json:"display_id"`
	CreatedAt     time.Time       `json:"created_at"`
	PaymentStatus string          `json:"payment_status"`
	Status        StatusLabel     `json:"status"`
	Total         string          `json:"total"`
	Items         []OrderItemView `json:"items"`
	Shipping      *Address        `json:"shipping,omitempty"`
	Payment       *PaymentView    `json:"payment,omitempty"`
}

type OrderItemView struct {
	Title       string `json:"title"`
	BookingDate string `json:"booking_date,omitempty"`
	BookingTime string `json:"booking_time,omitempty"`
	Quantity    int64  `json:"quantity"`
	Amount      string `json:"amount"`
}

type PaymentView struct {
	ProviderID string `json:"provider_id"`
	Amount     string `json:"amount"`
}
