package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is a line item embedded in a Cart. Price is captured at the time
// the product is added and is not re-synced to the current product price.
type CartItem struct {
	ProductID primitive.ObjectID `bson:"product_id" json:"product_id"`
	Quantity  int                `bson:"quantity" json:"quantity"`
	Price     float64            `bson:"price" json:"price"`
}

// Cart represents a user's shopping cart. TotalAmount is denormalized and
// recomputed after every mutation. Version backs optimistic concurrency on
// the read-modify-write cycle.
type Cart struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id,omitempty"`
	UserID      primitive.ObjectID `bson:"user_id" json:"user_id"`
	Items       []CartItem         `bson:"items" json:"items"`
	TotalAmount float64            `bson:"total_amount" json:"total_amount"`
	Version     int64              `bson:"version" json:"-"`
	CreatedAt   time.Time          `bson:"created_at" json:"created_at"`
	UpdatedAt   time.Time          `bson:"updated_at" json:"updated_at"`
}

// NewCart returns an empty cart for the given user.
func NewCart(userID primitive.ObjectID) *Cart {
	return &Cart{
		UserID:      userID,
		Items:       []CartItem{},
		TotalAmount: 0,
	}
}

// AddItem merges quantity into an existing line item for the product, or
// appends a new line item capturing the given price, then recomputes the
// total.
func (c *Cart) AddItem(productID primitive.ObjectID, price float64, quantity int) {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity += quantity
			c.Recalculate()
			return
		}
	}
	c.Items = append(c.Items, CartItem{
		ProductID: productID,
		Quantity:  quantity,
		Price:     price,
	})
	c.Recalculate()
}

// SetQuantity sets the absolute quantity of the line item for the product
// and recomputes the total. It reports whether the item was found.
func (c *Cart) SetQuantity(productID primitive.ObjectID, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ProductID == productID {
			c.Items[i].Quantity = quantity
			c.Recalculate()
			return true
		}
	}
	return false
}

// RemoveItem drops any line item matching the product and recomputes the
// total. Removing an absent product is a no-op.
func (c *Cart) RemoveItem(productID primitive.ObjectID) {
	items := c.Items[:0]
	for _, item := range c.Items {
		if item.ProductID != productID {
			items = append(items, item)
		}
	}
	c.Items = items
	c.Recalculate()
}

// Recalculate recomputes TotalAmount as the sum of price*quantity over all
// line items.
func (c *Cart) Recalculate() {
	total := 0.0
	for _, item := range c.Items {
		total += item.Price * float64(item.Quantity)
	}
	c.TotalAmount = total
}
