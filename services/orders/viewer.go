package orders

import (
	"context"
	"fmt"

	"bookcheckout/models"
	"bookcheckout/services/commerce"
	"bookcheckout/utils"

	"go.uber.org/zap"
)

// OrderLister is the one commerce call the viewer needs.
type OrderLister interface {
	ListOrders(ctx context.Context, fields string) ([]models.Order, error)
}

// Viewer is a read-only projection of the customer's placed orders. It never
// touches checkout state.
type Viewer struct {
	orders OrderLister
	logger *zap.Logger
}

func NewViewer(orders OrderLister, logger *zap.Logger) *Viewer {
	return &Viewer{orders: orders, logger: logger.Named("orders")}
}

// List returns the orders in the order the backend sent them.
func (v *Viewer) List(ctx context.Context) ([]models.OrderView, error) {
	orders, err := v.orders.ListOrders(ctx, commerce.FieldsOrderDetails)
	if err != nil {
		v.logger.Warn("failed to list orders", zap.Error(err))
		return nil, fmt.Errorf("failed to list orders: %w", err)
	}
	views := make([]models.OrderView, 0, len(orders))
	for i := range orders {
		views = append(views, Project(&orders[i]))
	}
	return views, nil
}

// Project builds the display form of one order.
func Project(o *models.Order) models.OrderView {
	view := models.OrderView{
		ID:            o.ID,
		DisplayID:     o.DisplayID,
		CreatedAt:     o.CreatedAt,
		PaymentStatus: o.PaymentStatus,
		Status:        PaymentStatusLabel(o.PaymentStatus),
		Total:         utils.FormatMinor(o.Total, o.CurrencyCode),
		Items:         make([]models.OrderItemView, 0, len(o.Items)),
		Shipping:      o.ShippingAddress,
	}
	for _, item := range o.Items {
		view.Items = append(view.Items, models.OrderItemView{
			Title:       itemTitle(item),
			BookingDate: metadataString(item.Metadata, models.MetadataBookingDate),
			BookingTime: metadataString(item.Metadata, models.MetadataBookingTime),
			Quantity:    item.Quantity,
			Amount:      utils.FormatMinor(item.UnitPrice*item.Quantity, o.CurrencyCode),
		})
	}
	if len(o.PaymentCollections) > 0 && len(o.PaymentCollections[0].Payments) > 0 {
		p := o.PaymentCollections[0].Payments[0]
		view.Payment = &models.PaymentView{
			ProviderID: p.ProviderID,
			Amount:     utils.FormatMinor(p.Amount, o.CurrencyCode),
		}
	}
	return view
}

func itemTitle(item models.LineItem) string {
	if item.Variant != nil && item.Variant.Product != nil && item.Variant.Product.Title != "" {
		return item.Variant.Product.Title
	}
	return item.Title
}

func metadataString(meta map[string]any, key string) string {
	s, _ := meta[key].(string)
	return s
}
