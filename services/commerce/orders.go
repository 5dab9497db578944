package commerce

import (
	"context"
	"net/http"

	"bookcheckout/models"
)

// ListOrders returns the customer's orders in the order the backend sends
// them (newest first).
func (c *Client) ListOrders(ctx context.Context, fields string) ([]models.Order, error) {
	var out struct {
		Orders []models.Order `json:"orders"`
	}
	req := request{method: http.MethodGet, path: "/store/orders", query: fieldsQuery(fields)}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if out.Orders == nil {
		return []models.Order{}, nil
	}
	return out.Orders, nil
}
