package checkout

import (
	"context"
	"fmt"
	"sync"

	"bookcheckout/config"
	checkoutRepo "bookcheckout/database/repository/checkout"
	"bookcheckout/models"
	"bookcheckout/services/commerce"
	"bookcheckout/services/payment"

	"go.uber.org/zap"
)

const (
	testVariant  = "variant_booking"
	testPrice    = int64(150000)
	testFallback = "pp_cashfree_cashfree"
)

// fakeCommerce is an in-memory commerce backend that counts every call.
type fakeCommerce struct {
	mu    sync.Mutex
	calls map[string]int

	customer  *models.Customer
	regions   []models.Region
	providers []models.PaymentProvider
	discounts map[string]int64

	// sessionData is returned as the payment session's data for any provider.
	sessionData map[string]any
	completion  *commerce.CompletionResult

	regionsErr    error
	createErr     error
	addErr        error
	getErr        error
	promoErr      error
	collectionErr error
	completeErr   error

	cart          *models.Cart
	lastCreate    commerce.CreateCartInput
	lastLineItem  commerce.LineItemInput
	lastUpdate    commerce.UpdateCartInput
	collections   int
	sessions      []string
	appliedPromos []string
}

func newFakeCommerce() *fakeCommerce {
	return &fakeCommerce{
		calls:     make(map[string]int),
		regions:   []models.Region{{ID: "reg_eur", CurrencyCode: "eur"}, {ID: "reg_inr", CurrencyCode: "inr"}},
		providers: []models.PaymentProvider{{ID: "pp_stripe_stripe"}, {ID: "pp_cashfree_cashfree_in"}},
		discounts: map[string]int64{"SAVE10": testPrice / 10},
		sessionData: map[string]any{
			"payment_session_id": "session_abc",
			"order_id":           "cf_order_1",
		},
		completion: &commerce.CompletionResult{
			Type:  commerce.CompletionOrder,
			Order: &models.Order{ID: "order_1", DisplayID: 1001, Total: testPrice},
		},
	}
}

func (f *fakeCommerce) record(name string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls[name]++
}

func (f *fakeCommerce) count(name string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[name]
}

func (f *fakeCommerce) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		n += c
	}
	return n
}

func (f *fakeCommerce) GetCustomerProfile(ctx context.Context) (*models.Customer, error) {
	f.record("GetCustomerProfile")
	return f.customer, nil
}

func (f *fakeCommerce) ListRegions(ctx context.Context) ([]models.Region, error) {
	f.record("ListRegions")
	if f.regionsErr != nil {
		return nil, f.regionsErr
	}
	return f.regions, nil
}

func (f *fakeCommerce) CreateCart(ctx context.Context, in commerce.CreateCartInput) (*models.Cart, error) {
	f.record("CreateCart")
	if f.createErr != nil {
		return nil, f.createErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCreate = in
	f.cart = &models.Cart{ID: "cart_1", RegionID: in.RegionID, CurrencyCode: "inr", Email: in.Email}
	return f.snapshot(), nil
}

func (f *fakeCommerce) AddLineItem(ctx context.Context, cartID string, in commerce.LineItemInput) (*models.Cart, error) {
	f.record("AddLineItem")
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLineItem = in
	f.cart.Items = append(f.cart.Items, models.LineItem{VariantID: in.VariantID, Quantity: in.Quantity, UnitPrice: testPrice, Metadata: in.Metadata})
	f.recalculate()
	return f.snapshot(), nil
}

func (f *fakeCommerce) GetCart(ctx context.Context, cartID, fields string) (*models.Cart, error) {
	f.record("GetCart")
	if f.getErr != nil {
		return nil, f.getErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.cart == nil || f.cart.ID != cartID {
		return nil, &commerce.APIError{Status: 404, Message: "cart not found"}
	}
	c := f.snapshot()
	switch fields {
	case commerce.FieldsCartProviders:
		c.Region = &models.Region{ID: c.RegionID, CurrencyCode: "inr", PaymentProviders: f.providers}
	case commerce.FieldsCartPaymentSessions:
		if f.collections > 0 {
			pc := &models.PaymentCollection{ID: fmt.Sprintf("paycol_%d", f.collections)}
			for i, provider := range f.sessions {
				pc.PaymentSessions = append(pc.PaymentSessions, models.PaymentSession{
					ID:         fmt.Sprintf("payses_%d", i+1),
					ProviderID: provider,
					Data:       f.sessionData,
				})
			}
			c.PaymentCollection = pc
		}
	}
	return c, nil
}

func (f *fakeCommerce) UpdateCart(ctx context.Context, cartID string, in commerce.UpdateCartInput) (*models.Cart, error) {
	f.record("UpdateCart")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastUpdate = in
	if in.Email != "" {
		f.cart.Email = in.Email
	}
	if in.ShippingAddress != nil {
		f.cart.ShippingAddress = in.ShippingAddress
	}
	return f.snapshot(), nil
}

func (f *fakeCommerce) ApplyPromotion(ctx context.Context, cartID string, codes []string) (*models.Cart, error) {
	f.record("ApplyPromotion")
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.promoErr != nil {
		return nil, f.promoErr
	}
	for _, code := range codes {
		if _, ok := f.discounts[code]; !ok {
			return nil, &commerce.PromotionError{Codes: codes, Reason: "The promotion code " + code + " is invalid"}
		}
	}
	f.appliedPromos = append(f.appliedPromos, codes...)
	f.recalculate()
	return f.snapshot(), nil
}

func (f *fakeCommerce) CreatePaymentCollection(ctx context.Context, cartID string) (*models.PaymentCollection, error) {
	f.record("CreatePaymentCollection")
	if f.collectionErr != nil {
		return nil, f.collectionErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.collections++
	f.sessions = nil
	return &models.PaymentCollection{ID: fmt.Sprintf("paycol_%d", f.collections)}, nil
}

func (f *fakeCommerce) CreatePaymentSession(ctx context.Context, collectionID, providerID string) (*models.PaymentCollection, error) {
	f.record("CreatePaymentSession")
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions = append(f.sessions, providerID)
	return &models.PaymentCollection{ID: collectionID}, nil
}

func (f *fakeCommerce) CompleteCart(ctx context.Context, cartID string) (*commerce.CompletionResult, error) {
	f.record("CompleteCart")
	if f.completeErr != nil {
		return nil, f.completeErr
	}
	return f.completion, nil
}

func (f *fakeCommerce) ListOrders(ctx context.Context, fields string) ([]models.Order, error) {
	f.record("ListOrders")
	return []models.Order{}, nil
}

// recalculate and snapshot expect f.mu held.
func (f *fakeCommerce) recalculate() {
	var subtotal int64
	for _, item := range f.cart.Items {
		subtotal += item.UnitPrice * item.Quantity
	}
	var discount int64
	for _, code := range f.appliedPromos {
		discount += f.discounts[code]
	}
	f.cart.Subtotal = subtotal
	f.cart.DiscountTotal = discount
	f.cart.Total = subtotal - discount
}

func (f *fakeCommerce) snapshot() *models.Cart {
	c := *f.cart
	c.Items = append([]models.LineItem(nil), f.cart.Items...)
	return &c
}

type harness struct {
	orch     *Orchestrator
	commerce *fakeCommerce
	gateway  *payment.CashfreeGateway
	repo     *checkoutRepo.MemoryCheckoutRepo
}

func testSettings() Settings {
	return Settings{
		ServiceVariantID: testVariant,
		RegionCurrency:   "inr",
		Vendor:           config.VendorCashfree,
		FallbackProvider: testFallback,
		Placeholder:      models.Address{Address1: "Online", City: "Online", CountryCode: "in", PostalCode: "110001"},
	}
}

func newHarness() *harness {
	fc := newFakeCommerce()
	gw := payment.NewCashfreeGateway(&config.Config{PaymentEnvironment: "SANDBOX", CashfreeWebhookSecret: "cf_secret"}, zap.NewNop())
	repo := checkoutRepo.NewMemoryCheckoutRepo()
	orch := NewOrchestrator(testSettings(), fc, gw, repo, zap.NewNop())
	orch.Attach()
	return &harness{orch: orch, commerce: fc, gateway: gw, repo: repo}
}

var testSlot = models.BookingSlot{Date: "2025-03-10", Time: "14:30"}

var testContact = models.Contact{Email: "asha@example.com", FirstName: "Asha", LastName: "Rao", Phone: "9999999999"}
