package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// OrderItem is an immutable snapshot of the product at order time.
type OrderItem struct {
	SKU      string `bson:"sku" json:"sku"`
	Name     string `bson:"name" json:"name"`
	Price    int64  `bson:"price" json:"price"`
	Quantity int    `bson:"quantity" json:"quantity"`
	Color    string `bson:"color,omitempty" json:"color,omitempty"`
	Size     string `bson:"size,omitempty" json:"size,omitempty"`
	Image    string `bson:"image,omitempty" json:"image,omitempty"`
}

// Address is a shipping destination embedded in orders and user profiles.
type Address struct {
	ID         string `bson:"id,omitempty" json:"id,omitempty"`
	FullName   string `bson:"fullName" json:"fullName"`
	Phone      string `bson:"phone,omitempty" json:"phone,omitempty"`
	Line1      string `bson:"line1" json:"line1"`
	Line2      string `bson:"line2,omitempty" json:"line2,omitempty"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postalCode,omitempty" json:"postalCode,omitempty"`
}

// Order is the persisted order document. Totals are computed once at
// creation and never recomputed on later status changes.
type Order struct {
	ID              primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID          primitive.ObjectID `bson:"userId" json:"userId"`
	Items           []OrderItem        `bson:"items" json:"items"`
	Subtotal        int64              `bson:"subtotal" json:"subtotal"`
	Shipping        int64              `bson:"shipping" json:"shipping"`
	Tax             int64              `bson:"tax" json:"tax"`
	Total           int64              `bson:"total" json:"total"`
	Status          OrderStatus        `bson:"status" json:"status"`
	ShippingAddress Address            `bson:"shippingAddress" json:"shippingAddress"`
	PaymentMethod   string             `bson:"paymentMethod" json:"paymentMethod"`
	CreatedAt       time.Time          `bson:"createdAt" json:"createdAt"`
	UpdatedAt       time.Time          `bson:"updatedAt" json:"updatedAt"`
}
