package payment

import (
	"context"
	"sync"
)

// registry holds the single active callback. Gateways embed it.
type registry struct {
	mu sync.RWMutex
	cb *Callback
}

func (r *registry) RegisterCallback(cb Callback) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cb = &cb
}

func (r *registry) UnregisterCallback() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cb = nil
}

func (r *registry) Notify(ctx context.Context, res Result) error {
	if res.OrderID == "" {
		return ErrMissingOrderID
	}
	r.mu.RLock()
	cb := r.cb
	r.mu.RUnlock()
	if cb == nil {
		return ErrNoCallback
	}

	if res.Err == nil {
		cb.OnVerified(ctx, res.OrderID)
	} else {
		cb.OnError(ctx, res.Err, res.OrderID)
	}
	return nil
}
