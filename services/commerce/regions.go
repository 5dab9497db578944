package commerce

import (
	"context"
	"net/http"

	"bookcheckout/models"
)

// ListRegions returns every region with its payment providers expanded.
func (c *Client) ListRegions(ctx context.Context) ([]models.Region, error) {
	var out struct {
		Regions []models.Region `json:"regions"`
	}
	req := request{method: http.MethodGet, path: "/store/regions", query: fieldsQuery(FieldsRegionProviders)}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.Regions, nil
}
