package handlers

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/models"
	"backend/internal/stream"
)

// The fan-out is deliberately best-effort and non-blocking: the primary
// request must succeed even when persisting or pushing a notification
// fails. Failures are logged and counted instead of being surfaced to the
// caller. If an order insert succeeds and the notification insert fails,
// the order simply has no notification.

// notifyUser persists one notification and pushes it to the user's live
// streams, if any.
func notifyUser(ctx context.Context, db *mongo.Database, hub *stream.Hub, userID, orderID primitive.ObjectID, typ, message string) {
	notification := models.Notification{
		UserID:    userID,
		Type:      typ,
		OrderID:   orderID,
		Message:   message,
		Read:      false,
		CreatedAt: time.Now(),
	}

	res, err := db.Collection("notifications").InsertOne(ctx, notification)
	if err != nil {
		logger.Error().
			Err(err).
			Str("userId", userID.Hex()).
			Str("orderId", orderID.Hex()).
			Str("type", typ).
			Msg("notification persist failed")
		metrics.NotificationsDropped.Inc()
		return
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		notification.ID = id
	}
	metrics.NotificationsCreated.Inc()

	hub.Publish(userID.Hex(), stream.Event{
		Type:  "notification",
		Items: []models.Notification{notification},
	})
}

// notifyStaff fans one event out to every admin and manager account.
func notifyStaff(ctx context.Context, db *mongo.Database, hub *stream.Hub, orderID primitive.ObjectID, typ, message string) {
	cursor, err := db.Collection("users").Find(ctx, bson.M{
		"role":     bson.M{"$in": []string{models.RoleAdmin, models.RoleManager}},
		"isActive": bson.M{"$ne": false},
	})
	if err != nil {
		logger.Error().Err(err).Str("orderId", orderID.Hex()).Msg("staff lookup failed")
		return
	}
	defer cursor.Close(ctx)

	var staff []models.User
	if err := cursor.All(ctx, &staff); err != nil {
		logger.Error().Err(err).Str("orderId", orderID.Hex()).Msg("staff decode failed")
		return
	}

	for _, user := range staff {
		notifyUser(ctx, db, hub, user.ID, orderID, typ, message)
	}
}
