package checkoutRepo

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"testing"
	"time"

	"bookcheckout/database"
	"bookcheckout/models"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRedisRepo(t *testing.T) (*RedisCheckoutRepo, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	return NewRedisCheckoutRepo(client, time.Hour), mr
}

// newMongoRepo runs against MONGO_TEST_URI in a throwaway database.
func newMongoRepo(t *testing.T) *MongoCheckoutRepo {
	t.Helper()
	uri := os.Getenv("MONGO_TEST_URI")
	if uri == "" {
		return nil
	}
	ctx := context.Background()
	client, err := database.Connect(ctx, uri)
	require.NoError(t, err)
	db := client.Database(fmt.Sprintf("bookcheckout_test_%d", time.Now().UnixNano()))
	t.Cleanup(func() {
		_ = db.Drop(context.Background())
		_ = client.Disconnect(context.Background())
	})
	repo, err := NewMongoCheckoutRepo(ctx, db)
	require.NoError(t, err)
	return repo
}

func repos(t *testing.T) map[string]CheckoutRepository {
	redisRepo, _ := newRedisRepo(t)
	all := map[string]CheckoutRepository{
		"memory": NewMemoryCheckoutRepo(),
		"redis":  redisRepo,
	}
	if mongoRepo := newMongoRepo(t); mongoRepo != nil {
		all["mongo"] = mongoRepo
	}
	return all
}

func newSession(id string) *models.CheckoutSession {
	now := time.Now().UTC()
	return &models.CheckoutSession{
		ID:        id,
		State:     models.StateInitializing,
		Slot:      models.BookingSlot{Date: "2025-03-10", Time: "14:30"},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestRepository_CreateAndGet(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, newSession("chk_1")))

			got, err := repo.Get(ctx, "chk_1")
			require.NoError(t, err)
			assert.Equal(t, models.StateInitializing, got.State)
			assert.Equal(t, "14:30", got.Slot.Time)

			assert.Error(t, repo.Create(ctx, newSession("chk_1")), "duplicate id must be rejected")

			_, err = repo.Get(ctx, "missing")
			assert.ErrorIs(t, err, ErrNotFound)
		})
	}
}

func TestRepository_UpdateChecksState(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, newSession("chk_2")))

			updated, err := repo.Update(ctx, "chk_2", []models.CheckoutState{models.StateInitializing}, func(s *models.CheckoutSession) error {
				s.State = models.StateCartReady
				s.CartID = "cart_1"
				return nil
			})
			require.NoError(t, err)
			assert.Equal(t, models.StateCartReady, updated.State)
			assert.Equal(t, 1, updated.Version)

			_, err = repo.Update(ctx, "chk_2", []models.CheckoutState{models.StateInitializing}, func(s *models.CheckoutSession) error {
				s.State = models.StateFailed
				return nil
			})
			var conflict *StateConflictError
			require.ErrorAs(t, err, &conflict)
			assert.Equal(t, models.StateCartReady, conflict.State)

			got, err := repo.Get(ctx, "chk_2")
			require.NoError(t, err)
			assert.Equal(t, models.StateCartReady, got.State)
			assert.Equal(t, "cart_1", got.CartID)
		})
	}
}

func TestRepository_MutateErrorLeavesSessionUntouched(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, newSession("chk_3")))

			boom := errors.New("boom")
			_, err := repo.Update(ctx, "chk_3", nil, func(s *models.CheckoutSession) error {
				s.CartID = "should_not_persist"
				return boom
			})
			assert.ErrorIs(t, err, boom)

			got, err := repo.Get(ctx, "chk_3")
			require.NoError(t, err)
			assert.Empty(t, got.CartID)
			assert.Equal(t, 0, got.Version)
		})
	}
}

func TestRepository_FindByPaymentOrder(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			require.NoError(t, repo.Create(ctx, newSession("chk_4")))

			_, err := repo.FindByPaymentOrder(ctx, "order_1")
			assert.ErrorIs(t, err, ErrNotFound)

			_, err = repo.Update(ctx, "chk_4", nil, func(s *models.CheckoutSession) error {
				s.PaymentOrderID = "order_1"
				s.State = models.StateAwaitingPayment
				return nil
			})
			require.NoError(t, err)

			got, err := repo.FindByPaymentOrder(ctx, "order_1")
			require.NoError(t, err)
			assert.Equal(t, "chk_4", got.ID)
			assert.Equal(t, models.StateAwaitingPayment, got.State)
		})
	}
}

func TestMemoryRepository_ReturnsCopies(t *testing.T) {
	ctx := context.Background()
	repo := NewMemoryCheckoutRepo()
	s := newSession("chk_5")
	s.Totals = &models.CartTotals{Total: 100}
	require.NoError(t, repo.Create(ctx, s))

	got, err := repo.Get(ctx, "chk_5")
	require.NoError(t, err)
	got.Totals.Total = 1

	again, err := repo.Get(ctx, "chk_5")
	require.NoError(t, err)
	assert.Equal(t, int64(100), again.Totals.Total)
}

func TestRedisRepository_Retention(t *testing.T) {
	repo, mr := newRedisRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newSession("chk_6")))

	assert.Equal(t, time.Hour, mr.TTL(sessionKey("chk_6")))

	mr.FastForward(2 * time.Hour)
	_, err := repo.Get(ctx, "chk_6")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRepository_ConcurrentTransition(t *testing.T) {
	for name, repo := range repos(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			s := newSession("chk_7")
			s.State = models.StateAwaitingPayment
			require.NoError(t, repo.Create(ctx, s))

			const workers = 20
			var (
				wg        sync.WaitGroup
				mu        sync.Mutex
				succeeded int
				rejected  int
			)
			for i := 0; i < workers; i++ {
				wg.Add(1)
				go func() {
					defer wg.Done()
					_, err := repo.Update(ctx, "chk_7", []models.CheckoutState{models.StateAwaitingPayment}, func(s *models.CheckoutSession) error {
						s.State = models.StateReconciling
						return nil
					})
					var conflict *StateConflictError
					mu.Lock()
					defer mu.Unlock()
					switch {
					case err == nil:
						succeeded++
					case errors.Is(err, ErrConcurrentUpdate), errors.As(err, &conflict):
						rejected++
					default:
						t.Errorf("unexpected error: %v", err)
					}
				}()
			}
			wg.Wait()

			assert.Equal(t, 1, succeeded)
			assert.Equal(t, workers-1, rejected)

			got, err := repo.Get(ctx, "chk_7")
			require.NoError(t, err)
			assert.Equal(t, models.StateReconciling, got.State)
			assert.Equal(t, 1, got.Version)
		})
	}
}

func TestRedisRepository_WatchConflict(t *testing.T) {
	repo, _ := newRedisRepo(t)
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, newSession("chk_8")))

	_, err := repo.Update(ctx, "chk_8", nil, func(s *models.CheckoutSession) error {
		// Another writer lands between the read and EXEC.
		_, err := repo.Update(ctx, "chk_8", nil, func(other *models.CheckoutSession) error {
			other.CartID = "cart_other"
			return nil
		})
		require.NoError(t, err)
		s.CartID = "cart_mine"
		return nil
	})
	assert.ErrorIs(t, err, ErrConcurrentUpdate)

	got, err := repo.Get(ctx, "chk_8")
	require.NoError(t, err)
	assert.Equal(t, "cart_other", got.CartID)
	assert.Equal(t, 1, got.Version)
}
