package commerce

import (
	"context"
	"fmt"
	"net/http"

	"bookcheckout/models"
)

type collectionEnvelope struct {
	PaymentCollection *models.PaymentCollection `json:"payment_collection"`
}

func (c *Client) CreatePaymentCollection(ctx context.Context, cartID string) (*models.PaymentCollection, error) {
	var out collectionEnvelope
	req := request{method: http.MethodPost, path: "/store/payment-collections", body: map[string]string{"cart_id": cartID}}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	if out.PaymentCollection == nil || out.PaymentCollection.ID == "" {
		return nil, fmt.Errorf("commerce: %s response has no payment collection", req.path)
	}
	return out.PaymentCollection, nil
}

func (c *Client) CreatePaymentSession(ctx context.Context, collectionID, providerID string) (*models.PaymentCollection, error) {
	var out collectionEnvelope
	req := request{
		method: http.MethodPost,
		path:   "/store/payment-collections/" + collectionID + "/payment-sessions",
		body:   map[string]string{"provider_id": providerID},
	}
	if err := c.do(ctx, req, &out); err != nil {
		return nil, err
	}
	return out.PaymentCollection, nil
}
