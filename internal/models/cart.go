package models

import (
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// CartItem is keyed by (sku, color, size). Price, name and image are
// snapshots taken when the item was added and are not re-synced with later
// product changes.
type CartItem struct {
	SKU      string `bson:"sku" json:"sku"`
	Color    string `bson:"color,omitempty" json:"color,omitempty"`
	Size     string `bson:"size,omitempty" json:"size,omitempty"`
	Quantity int    `bson:"quantity" json:"quantity"`
	Price    int64  `bson:"price" json:"price"`
	Name     string `bson:"name" json:"name"`
	Image    string `bson:"image,omitempty" json:"image,omitempty"`
}

// Key renders the composite key in the sku:color:size form used in URLs.
func (i CartItem) Key() string {
	return CartItemKey(i.SKU, i.Color, i.Size)
}

func CartItemKey(sku, color, size string) string {
	return sku + ":" + color + ":" + size
}

// ParseCartItemKey splits a sku:color:size path segment. Color and size may
// be empty; the sku may not.
func ParseCartItemKey(key string) (sku, color, size string, ok bool) {
	parts := strings.SplitN(key, ":", 3)
	if len(parts) != 3 || strings.TrimSpace(parts[0]) == "" {
		return "", "", "", false
	}
	return parts[0], parts[1], parts[2], true
}

// Cart holds one document per user.
type Cart struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Items     []CartItem         `bson:"items" json:"items"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updatedAt"`
}
