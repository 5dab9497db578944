package commerce

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"bookcheckout/config"
	"bookcheckout/models"
	"bookcheckout/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	cfg := &config.Config{
		CommerceURL:            srv.URL,
		CommercePublishableKey: "pk_test",
		BreakerMaxFailures:     3,
		BreakerOpenTimeout:     time.Minute,
	}
	return NewClient(cfg, utils.NewHTTPClient(5*time.Second), zap.NewNop())
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func TestCreateCart_SendsKeyAndPayload(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/store/carts", r.URL.Path)
		assert.Equal(t, "pk_test", r.Header.Get("x-publishable-api-key"))
		assert.Equal(t, "Bearer tok_1", r.Header.Get("Authorization"))

		var body map[string]any
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "reg_inr", body["region_id"])
		assert.NotContains(t, body, "customer_id")

		writeJSON(w, http.StatusOK, map[string]any{"cart": map[string]any{"id": "cart_1", "currency_code": "inr"}})
	})

	ctx := WithCustomerToken(context.Background(), "tok_1")
	cart, err := client.CreateCart(ctx, CreateCartInput{RegionID: "reg_inr"})
	require.NoError(t, err)
	assert.Equal(t, "cart_1", cart.ID)
}

func TestAddLineItem_CarriesBookingMetadata(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/store/carts/cart_1/line-items", r.URL.Path)
		assert.Empty(t, r.Header.Get("Authorization"))

		var body LineItemInput
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "variant_1", body.VariantID)
		assert.Equal(t, int64(1), body.Quantity)
		assert.Equal(t, "2025-03-10", body.Metadata[models.MetadataBookingDate])
		assert.Equal(t, "14:30", body.Metadata[models.MetadataBookingTime])

		writeJSON(w, http.StatusOK, map[string]any{"cart": map[string]any{"id": "cart_1", "subtotal": 150000}})
	})

	cart, err := client.AddLineItem(context.Background(), "cart_1", LineItemInput{
		VariantID: "variant_1",
		Quantity:  1,
		Metadata:  map[string]any{models.MetadataBookingDate: "2025-03-10", models.MetadataBookingTime: "14:30"},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(150000), cart.Subtotal)
}

func TestGetCart_RequestsExpansionAndFreshRead(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/store/carts/cart_1", r.URL.Path)
		assert.Equal(t, FieldsCartProviders, r.URL.Query().Get("fields"))
		assert.Equal(t, "no-cache", r.Header.Get("Cache-Control"))
		writeJSON(w, http.StatusOK, map[string]any{"cart": map[string]any{
			"id": "cart_1",
			"region": map[string]any{
				"id":                "reg_inr",
				"currency_code":     "inr",
				"payment_providers": []map[string]string{{"id": "pp_cashfree_cashfree_in"}},
			},
		}})
	})

	cart, err := client.GetCart(context.Background(), "cart_1", FieldsCartProviders)
	require.NoError(t, err)
	require.NotNil(t, cart.Region)
	assert.Equal(t, "pp_cashfree_cashfree_in", cart.Region.PaymentProviders[0].ID)
}

func TestApplyPromotion_DistinguishesBadCodeFromOutage(t *testing.T) {
	t.Run("rejected code", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			var body map[string][]string
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Equal(t, []string{"BOGUS"}, body["promo_codes"])
			writeJSON(w, http.StatusBadRequest, map[string]string{"type": "invalid_data", "message": "The promotion code BOGUS is invalid"})
		})

		_, err := client.ApplyPromotion(context.Background(), "cart_1", []string{"BOGUS"})
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidPromotion)
		assert.Equal(t, "The promotion code BOGUS is invalid", err.Error())
	})

	t.Run("backend down", func(t *testing.T) {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			writeJSON(w, http.StatusBadGateway, map[string]string{"message": "upstream"})
		})

		_, err := client.ApplyPromotion(context.Background(), "cart_1", []string{"SAVE10"})
		require.Error(t, err)
		assert.False(t, errors.Is(err, ErrInvalidPromotion))
		var apiErr *APIError
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	})
}

func TestCompleteCart(t *testing.T) {
	tests := []struct {
		name      string
		reply     map[string]any
		wantType  CompletionType
		displayID int64
	}{
		{
			name:      "order",
			reply:     map[string]any{"type": "order", "order": map[string]any{"id": "order_1", "display_id": 42, "total": 135000}},
			wantType:  CompletionOrder,
			displayID: 42,
		},
		{
			name:      "legacy data envelope",
			reply:     map[string]any{"type": "order", "data": map[string]any{"id": "order_2", "display_id": 7}},
			wantType:  CompletionOrder,
			displayID: 7,
		},
		{
			name:     "cart reply is pending",
			reply:    map[string]any{"type": "cart", "cart": map[string]any{"id": "cart_1"}, "error": map[string]string{"message": "Payment authorization pending"}},
			wantType: CompletionPending,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/store/carts/cart_1/complete", r.URL.Path)
				writeJSON(w, http.StatusOK, tt.reply)
			})

			res, err := client.CompleteCart(context.Background(), "cart_1")
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, res.Type)
			if tt.wantType == CompletionOrder {
				require.NotNil(t, res.Order)
				assert.Equal(t, tt.displayID, res.Order.DisplayID)
			} else {
				assert.Nil(t, res.Order)
				assert.Equal(t, "Payment authorization pending", res.Message)
			}
		})
	}
}

func TestGetCustomerProfile_Guest(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusUnauthorized, map[string]string{"message": "Unauthorized"})
	})

	customer, err := client.GetCustomerProfile(context.Background())
	require.NoError(t, err)
	assert.Nil(t, customer)
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls), "no token means no call")

	customer, err = client.GetCustomerProfile(WithCustomerToken(context.Background(), "expired"))
	require.NoError(t, err)
	assert.Nil(t, customer)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestGetCustomerProfile_Authenticated(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/store/customers/me", r.URL.Path)
		writeJSON(w, http.StatusOK, map[string]any{"customer": map[string]string{
			"id": "cus_1", "email": "a@b.in", "first_name": "Asha", "phone": "9999999999",
		}})
	})

	customer, err := client.GetCustomerProfile(WithCustomerToken(context.Background(), "tok"))
	require.NoError(t, err)
	require.NotNil(t, customer)
	assert.Equal(t, "cus_1", customer.ID)
	assert.Equal(t, "Asha", customer.FirstName)
}

func TestPaymentCollectionAndSession(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		switch r.URL.Path {
		case "/store/payment-collections":
			assert.Equal(t, "cart_1", body["cart_id"])
			writeJSON(w, http.StatusOK, map[string]any{"payment_collection": map[string]string{"id": "pay_col_1"}})
		case "/store/payment-collections/pay_col_1/payment-sessions":
			assert.Equal(t, "pp_cashfree_cashfree", body["provider_id"])
			writeJSON(w, http.StatusOK, map[string]any{"payment_collection": map[string]string{"id": "pay_col_1"}})
		default:
			t.Errorf("unexpected path %s", r.URL.Path)
		}
	})

	col, err := client.CreatePaymentCollection(context.Background(), "cart_1")
	require.NoError(t, err)
	assert.Equal(t, "pay_col_1", col.ID)

	_, err = client.CreatePaymentSession(context.Background(), col.ID, "pp_cashfree_cashfree")
	require.NoError(t, err)
}

func TestListOrders_PreservesServerOrder(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, FieldsOrderDetails, r.URL.Query().Get("fields"))
		writeJSON(w, http.StatusOK, map[string]any{"orders": []map[string]any{
			{"id": "order_new", "display_id": 2},
			{"id": "order_old", "display_id": 1},
		}})
	})

	orders, err := client.ListOrders(context.Background(), FieldsOrderDetails)
	require.NoError(t, err)
	require.Len(t, orders, 2)
	assert.Equal(t, "order_new", orders[0].ID)
	assert.Equal(t, "order_old", orders[1].ID)
}

func TestBreakerOpensAfterRepeatedOutages(t *testing.T) {
	var calls int32
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"message": "down"})
	})

	for i := 0; i < 3; i++ {
		_, err := client.ListRegions(context.Background())
		require.Error(t, err)
	}
	_, err := client.ListRegions(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusBadRequest, map[string]string{"message": "nope"})
	})

	for i := 0; i < 5; i++ {
		_, err := client.ApplyPromotion(context.Background(), "cart_1", []string{"X"})
		assert.ErrorIs(t, err, ErrInvalidPromotion)
	}
}
