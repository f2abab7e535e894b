package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-storefront/models"
)

type mongoCartRepository struct {
	collection *mongo.Collection
}

// NewMongoCartRepository returns a CartRepository backed by the carts
// collection. The unique user_id index makes raced lazy creates surface as
// ErrCartExists instead of duplicate documents.
func NewMongoCartRepository(db *mongo.Database) CartRepository {
	return &mongoCartRepository{collection: db.Collection("carts")}
}

func (r *mongoCartRepository) FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error) {
	var cart models.Cart
	err := r.collection.FindOne(ctx, bson.M{"user_id": userID}).Decode(&cart)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrCartNotFound
		}
		return nil, fmt.Errorf("failed to find cart: %w", err)
	}
	return &cart, nil
}

func (r *mongoCartRepository) Insert(ctx context.Context, cart *models.Cart) error {
	now := time.Now().UTC()
	cart.CreatedAt = now
	cart.UpdatedAt = now

	result, err := r.collection.InsertOne(ctx, cart)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrCartExists
		}
		return fmt.Errorf("failed to insert cart: %w", err)
	}
	if id, ok := result.InsertedID.(primitive.ObjectID); ok {
		cart.ID = id
	}
	return nil
}

func (r *mongoCartRepository) ReplaceVersioned(ctx context.Context, cart *models.Cart) error {
	prev := cart.Version
	cart.Version = prev + 1
	cart.UpdatedAt = time.Now().UTC()

	filter := bson.M{"user_id": cart.UserID, "version": prev}
	result, err := r.collection.ReplaceOne(ctx, filter, cart)
	if err != nil {
		cart.Version = prev
		return fmt.Errorf("failed to replace cart: %w", err)
	}
	if result.MatchedCount == 0 {
		cart.Version = prev
		return ErrVersionConflict
	}
	return nil
}
