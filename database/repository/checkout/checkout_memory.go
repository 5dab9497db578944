package checkoutRepo

import (
	"context"
	"fmt"
	"sync"

	"bookcheckout/models"
)

// MemoryCheckoutRepo keeps sessions in process memory. Used by tests and
// single-instance local runs.
type MemoryCheckoutRepo struct {
	mu       sync.Mutex
	sessions map[string]*models.CheckoutSession
	orders   map[string]string
}

func NewMemoryCheckoutRepo() *MemoryCheckoutRepo {
	return &MemoryCheckoutRepo{
		sessions: make(map[string]*models.CheckoutSession),
		orders:   make(map[string]string),
	}
}

func (r *MemoryCheckoutRepo) Create(_ context.Context, s *models.CheckoutSession) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.sessions[s.ID]; exists {
		return fmt.Errorf("checkout session %s already exists", s.ID)
	}
	r.sessions[s.ID] = clone(s)
	if s.PaymentOrderID != "" {
		r.orders[s.PaymentOrderID] = s.ID
	}
	return nil
}

func (r *MemoryCheckoutRepo) Get(_ context.Context, id string) (*models.CheckoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(s), nil
}

func (r *MemoryCheckoutRepo) FindByPaymentOrder(_ context.Context, orderID string) (*models.CheckoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.orders[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	return clone(r.sessions[id]), nil
}

func (r *MemoryCheckoutRepo) Update(_ context.Context, id string, allowed []models.CheckoutState, mutate func(*models.CheckoutSession) error) (*models.CheckoutSession, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.sessions[id]
	if !ok {
		return nil, ErrNotFound
	}
	next, err := applyUpdate(current, allowed, mutate)
	if err != nil {
		return nil, err
	}
	r.sessions[id] = next
	if next.PaymentOrderID != "" {
		r.orders[next.PaymentOrderID] = id
	}
	return clone(next), nil
}
