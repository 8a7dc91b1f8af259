package domain

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type User struct {
	ID       primitive.ObjectID `bson:"_id,omitempty"`
	Name     string             `bson:"name"`
	Email    string             `bson:"email"`
	Cart     []CartLine         `bson:"cart"`
	Wishlist []WishlistItem     `bson:"wishlist"`
}

// CartLine is one embedded cart entry. A cart holds at most one line per
// (product, size, color).
type CartLine struct {
	ID       primitive.ObjectID `bson:"_id"`
	Product  primitive.ObjectID `bson:"product"`
	Quantity int                `bson:"quantity"`
	Size     string             `bson:"size,omitempty"`
	Color    string             `bson:"color,omitempty"`
	AddedAt  time.Time          `bson:"addedAt"`
}

func (l CartLine) SameKey(product primitive.ObjectID, size, color string) bool {
	return l.Product == product && l.Size == size && l.Color == color
}

type WishlistItem struct {
	Product primitive.ObjectID `bson:"product"`
	AddedAt time.Time          `bson:"addedAt"`
}

func (u User) FindCartLine(id primitive.ObjectID) (int, bool) {
	for i, line := range u.Cart {
		if line.ID == id {
			return i, true
		}
	}
	return -1, false
}
