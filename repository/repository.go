package repository

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/models"
)

// Sentinel errors the Mongo implementations translate driver errors into.
// Controllers map these onto HTTP status codes.
var (
	ErrUserNotFound    = errors.New("user not found")
	ErrEmailTaken      = errors.New("email already registered")
	ErrProductNotFound = errors.New("product not found")
	ErrCartNotFound    = errors.New("cart not found")
	ErrCartExists      = errors.New("cart already exists")
	ErrVersionConflict = errors.New("cart version conflict")
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *models.User) error
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// ProductFilter describes the AND-combined catalog search predicates.
// Nil price bounds impose no constraint; bounds are inclusive.
type ProductFilter struct {
	Keyword  string
	Category string
	MinPrice *float64
	MaxPrice *float64
}

// ProductRepository persists catalog entries.
type ProductRepository interface {
	Find(ctx context.Context, filter ProductFilter) ([]models.Product, error)
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	Insert(ctx context.Context, product *models.Product) error
	Update(ctx context.Context, product *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// CartRepository persists carts, one per user. ReplaceVersioned is the only
// mutation path for existing carts: it replaces the document iff the stored
// version still matches, returning ErrVersionConflict otherwise.
type CartRepository interface {
	FindByUser(ctx context.Context, userID primitive.ObjectID) (*models.Cart, error)
	Insert(ctx context.Context, cart *models.Cart) error
	ReplaceVersioned(ctx context.Context, cart *models.Cart) error
}
