package checkoutRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookcheckout/models"
)

var (
	ErrNotFound         = errors.New("checkout session not found")
	ErrConcurrentUpdate = errors.New("checkout session was modified concurrently")
)

// StateConflictError is returned by Update when the stored state is not one
// of the states the caller allowed.
type StateConflictError struct {
	ID    string
	State models.CheckoutState
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("checkout %s is in state %s", e.ID, e.State)
}

// CheckoutRepository persists checkout sessions outside any request or UI
// lifetime.
type CheckoutRepository interface {
	Create(ctx context.Context, s *models.CheckoutSession) error
	Get(ctx context.Context, id string) (*models.CheckoutSession, error)
	// FindByPaymentOrder resolves the session that launched the given vendor order.
	FindByPaymentOrder(ctx context.Context, orderID string) (*models.CheckoutSession, error)
	// Update loads the session, checks its state is in allowed (nil allows
	// any), applies mutate and stores the result with Version+1. It is a
	// compare-and-set: a concurrent writer yields ErrConcurrentUpdate.
	Update(ctx context.Context, id string, allowed []models.CheckoutState, mutate func(*models.CheckoutSession) error) (*models.CheckoutSession, error)
}

func applyUpdate(current *models.CheckoutSession, allowed []models.CheckoutState, mutate func(*models.CheckoutSession) error) (*models.CheckoutSession, error) {
	if allowed != nil && !stateIn(current.State, allowed) {
		return nil, &StateConflictError{ID: current.ID, State: current.State}
	}
	next := clone(current)
	if err := mutate(next); err != nil {
		return nil, err
	}
	next.ID = current.ID
	next.Version = current.Version + 1
	next.UpdatedAt = time.Now().UTC()
	return next, nil
}

func stateIn(s models.CheckoutState, states []models.CheckoutState) bool {
	for _, candidate := range states {
		if s == candidate {
			return true
		}
	}
	return false
}

// clone copies the pointer fields so a mutate callback cannot reach stored data.
func clone(s *models.CheckoutSession) *models.CheckoutSession {
	c := *s
	if s.Totals != nil {
		t := *s.Totals
		c.Totals = &t
	}
	if s.Outcome != nil {
		o := *s.Outcome
		c.Outcome = &o
	}
	if s.Failure != nil {
		f := *s.Failure
		c.Failure = &f
	}
	return &c
}
