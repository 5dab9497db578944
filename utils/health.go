package utils

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
	"go.mongodb.org/mongo-driver/mongo"
)

// HealthStatus represents current status of the checkout store.
type HealthStatus struct {
	Status    string    `json:"status"`
	Store     string    `json:"store"`
	Redis     *bool     `json:"redis,omitempty"`
	Mongo     *bool     `json:"mongo,omitempty"`
	CheckedAt time.Time `json:"checkedAt"`
}

// Healthy reports whether every configured dependency answered.
func (h HealthStatus) Healthy() bool {
	return h.Status == "ok"
}

// HealthChecker pings whichever store clients are configured. Nil clients
// are skipped.
type HealthChecker struct {
	store string
	redis *redis.Client
	mongo *mongo.Client
}

func NewHealthChecker(store string, redisClient *redis.Client, mongoClient *mongo.Client) *HealthChecker {
	return &HealthChecker{store: store, redis: redisClient, mongo: mongoClient}
}

// Check runs the pings with a short deadline.
func (h *HealthChecker) Check(ctx context.Context) HealthStatus {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	status := HealthStatus{Status: "ok", Store: h.store, CheckedAt: time.Now().UTC()}
	if h.redis != nil {
		ok := h.redis.Ping(ctx).Err() == nil
		status.Redis = &ok
		if !ok {
			status.Status = "degraded"
		}
	}
	if h.mongo != nil {
		ok := h.mongo.Ping(ctx, nil) == nil
		status.Mongo = &ok
		if !ok {
			status.Status = "degraded"
		}
	}
	return status
}
