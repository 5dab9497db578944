package commerce

import (
	"context"
	"errors"
	"net/http"

	"bookcheckout/models"
)

// GetCustomerProfile returns the authenticated customer, or nil for guest
// checkout (no token, or a token the backend does not accept).
func (c *Client) GetCustomerProfile(ctx context.Context) (*models.Customer, error) {
	if customerToken(ctx) == "" {
		return nil, nil
	}

	var out struct {
		Customer *models.Customer `json:"customer"`
	}
	err := c.do(ctx, request{method: http.MethodGet, path: "/store/customers/me"}, &out)
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Status == http.StatusUnauthorized || apiErr.Status == http.StatusForbidden) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return out.Customer, nil
}
