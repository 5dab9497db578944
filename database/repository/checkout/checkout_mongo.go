package checkoutRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"bookcheckout/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoCheckoutRepo stores sessions in the checkout_sessions collection and
// guards updates with the Version field.
type MongoCheckoutRepo struct {
	coll *mongo.Collection
}

// NewMongoCheckoutRepo constructs the repo and makes sure its indexes exist.
func NewMongoCheckoutRepo(ctx context.Context, db *mongo.Database) (*MongoCheckoutRepo, error) {
	repo := &MongoCheckoutRepo{coll: db.Collection("checkout_sessions")}
	if err := repo.ensureIndexes(ctx); err != nil {
		return nil, err
	}
	return repo, nil
}

func (r *MongoCheckoutRepo) ensureIndexes(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	indexModels := []mongo.IndexModel{
		{Keys: bson.D{{Key: "payment_order_id", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "cart_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	}
	if _, err := r.coll.Indexes().CreateMany(ctx, indexModels); err != nil {
		return fmt.Errorf("failed to create checkout indexes: %w", err)
	}
	return nil
}

func (r *MongoCheckoutRepo) Create(ctx context.Context, s *models.CheckoutSession) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := r.coll.InsertOne(ctx, s); err != nil {
		return fmt.Errorf("failed to insert checkout session: %w", err)
	}
	return nil
}

func (r *MongoCheckoutRepo) Get(ctx context.Context, id string) (*models.CheckoutSession, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *MongoCheckoutRepo) FindByPaymentOrder(ctx context.Context, orderID string) (*models.CheckoutSession, error) {
	return r.findOne(ctx, bson.M{"payment_order_id": orderID})
}

func (r *MongoCheckoutRepo) findOne(ctx context.Context, filter bson.M) (*models.CheckoutSession, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var s models.CheckoutSession
	err := r.coll.FindOne(ctx, filter).Decode(&s)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("error fetching checkout session: %w", err)
	}
	return &s, nil
}

func (r *MongoCheckoutRepo) Update(ctx context.Context, id string, allowed []models.CheckoutState, mutate func(*models.CheckoutSession) error) (*models.CheckoutSession, error) {
	current, err := r.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	next, err := applyUpdate(current, allowed, mutate)
	if err != nil {
		return nil, err
	}

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"_id": id, "version": current.Version}
	res, err := r.coll.ReplaceOne(ctx, filter, next)
	if err != nil {
		return nil, fmt.Errorf("failed to update checkout session %s: %w", id, err)
	}
	if res.MatchedCount == 0 {
		return nil, ErrConcurrentUpdate
	}
	return next, nil
}
