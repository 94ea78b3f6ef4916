package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

const (
	NotificationOrderCreated       = "order-created"
	NotificationOrderStatusChanged = "order-status-changed"
)

// Notification is persisted for every event regardless of live delivery.
// Only the read flag is ever updated; there is no expiry or deletion policy.
type Notification struct {
	ID        primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID `bson:"userId" json:"userId"`
	Type      string             `bson:"type" json:"type"`
	OrderID   primitive.ObjectID `bson:"orderId" json:"orderId"`
	Message   string             `bson:"message,omitempty" json:"message,omitempty"`
	Read      bool               `bson:"read" json:"read"`
	CreatedAt time.Time          `bson:"createdAt" json:"createdAt"`
}
