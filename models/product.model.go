package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ProductImage maps each resolution variant to the public path of its
// derived JPEG. All four variants are present once the product exists.
type ProductImage struct {
	Thumbnail string `bson:"thumbnail" json:"thumbnail"`
	Mobile    string `bson:"mobile" json:"mobile"`
	Tablet    string `bson:"tablet" json:"tablet"`
	Desktop   string `bson:"desktop" json:"desktop"`
}

// Paths returns the variant paths in a fixed order.
func (pi ProductImage) Paths() []string {
	return []string{pi.Thumbnail, pi.Mobile, pi.Tablet, pi.Desktop}
}

// Product represents a catalog entry.
type Product struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	Name      string             `bson:"name" json:"name"`
	Category  string             `bson:"category" json:"category"`
	Price     float64            `bson:"price" json:"price"`
	Image     ProductImage       `bson:"image" json:"image"`
	CreatedAt time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time          `bson:"updated_at" json:"updated_at"`
}
