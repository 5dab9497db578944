package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"bookcheckout/models"
)

type cartEnvelope struct {
	Cart *models.Cart `json:"cart"`
}

func (e cartEnvelope) cart(path string) (*models.Cart, error) {
	if e.Cart == nil {
		return nil, fmt.Errorf("commerce: %s response has no cart", path)
	}
	return e.Cart, nil
}

func (c *Client) CreateCart(ctx context.Context, in CreateCartInput) (*models.Cart, error) {
	var out cartEnvelope
	req := request{method: http.MethodPost, path: "/store/carts", body: in}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.cart(req.path)
}

func (c *Client) AddLineItem(ctx context.Context, cartID string, in LineItemInput) (*models.Cart, error) {
	var out cartEnvelope
	req := request{method: http.MethodPost, path: "/store/carts/" + cartID + "/line-items", body: in}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.cart(req.path)
}

// GetCart always bypasses intermediate caches; totals shown to the customer
// must come from a fresh read.
func (c *Client) GetCart(ctx context.Context, cartID, fields string) (*models.Cart, error) {
	var out cartEnvelope
	req := request{
		method: http.MethodGet,
		path:   "/store/carts/" + cartID,
		query:  fieldsQuery(fields),
		header: http.Header{"Cache-Control": []string{"no-cache"}},
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.cart(req.path)
}

func (c *Client) UpdateCart(ctx context.Context, cartID string, in UpdateCartInput) (*models.Cart, error) {
	var out cartEnvelope
	req := request{method: http.MethodPost, path: "/store/carts/" + cartID, body: in}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.cart(req.path)
}

// ApplyPromotion attaches promotion codes. A 4xx reply becomes a
// PromotionError (errors.Is ErrInvalidPromotion); anything else stays a
// transport failure.
func (c *Client) ApplyPromotion(ctx context.Context, cartID string, codes []string) (*models.Cart, error) {
	var out cartEnvelope
	req := request{
		method: http.MethodPost,
		path:   "/store/carts/" + cartID + "/promotions",
		body:   map[string][]string{"promo_codes": codes},
	}
	err := c.do(ctx, req, &out)
	if IsClientError(err) {
		var apiErr *APIError
		errors.As(err, &apiErr)
		return nil, &PromotionError{Codes: codes, Reason: apiErr.Message}
	}
	if err != nil {
		return nil, err
	}
	return out.cart(req.path)
}

// CompleteCart turns the cart into an order. Any reply that is not an order
// is reported as pending.
func (c *Client) CompleteCart(ctx context.Context, cartID string) (*CompletionResult, error) {
	var out struct {
		Type  string          `json:"type"`
		Order json.RawMessage `json:"order"`
		Data  json.RawMessage `json:"data"`
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	req := request{method: http.MethodPost, path: "/store/carts/" + cartID + "/complete", body: struct{}{}}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}

	if out.Type != string(CompletionOrder) {
		res := &CompletionResult{Type: CompletionPending}
		if out.Error != nil {
			res.Message = out.Error.Message
		}
		return res, nil
	}

	raw := out.Order
	if len(raw) == 0 || string(raw) == "null" {
		raw = out.Data
	}
	var order models.Order
	if err := json.Unmarshal(raw, &order); err != nil {
		return nil, fmt.Errorf("commerce: failed to decode completed order: %w", err)
	}
	return &CompletionResult{Type: CompletionOrder, Order: &order}, nil
}
