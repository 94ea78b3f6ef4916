package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/stream"
)

// GET /notifications/my — newest first, optional ?unread=true filter.
func GetMyNotifications(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /notifications/my"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{"userId": userID}
		if strings.EqualFold(strings.TrimSpace(c.Query("unread")), "true") {
			filter["read"] = false
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		total, err := db.Collection("notifications").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("notifications").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		notifications := make([]models.Notification, 0)
		if err := cursor.All(ctx, &notifications); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": notifications,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

// PATCH /notifications/:id/read
func MarkNotificationRead(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /notifications/:id/read"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		notificationID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("notifications").UpdateOne(ctx,
			bson.M{"_id": notificationID, "userId": userID},
			bson.M{"$set": bson.M{"read": true}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "notification not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "marked as read"})
	}
}

// writeSSE renders one event in the wire format the SPA's EventSource
// expects: a single data line with a JSON payload.
func writeSSE(w io.Writer, ev stream.Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "data: %s\n\n", payload)
	return err
}

// GET /notifications/stream?token=...
//
// Long-lived half-duplex connection: hello on connect, pushed notification
// batches while open, comment heartbeat in between. The subscriber is
// removed from the hub when the client goes away; missed pushes are
// reconciled by the client through GET /notifications/my.
func NotificationStream(hub *stream.Hub, heartbeat time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /notifications/stream"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		c.Writer.Header().Set("Content-Type", "text/event-stream")
		c.Writer.Header().Set("Cache-Control", "no-cache")
		c.Writer.Header().Set("Connection", "keep-alive")
		c.Writer.Header().Set("X-Accel-Buffering", "no")
		c.Writer.WriteHeader(http.StatusOK)

		sub := hub.Subscribe(userID.Hex())
		defer hub.Unsubscribe(sub)

		if err := writeSSE(c.Writer, stream.Event{Type: "hello"}); err != nil {
			return
		}
		c.Writer.Flush()

		ticker := time.NewTicker(heartbeat)
		defer ticker.Stop()

		clientGone := c.Request.Context().Done()
		for {
			select {
			case <-clientGone:
				return
			case ev, open := <-sub.C:
				if !open {
					return
				}
				if err := writeSSE(c.Writer, ev); err != nil {
					return
				}
				c.Writer.Flush()
			case <-ticker.C:
				if _, err := fmt.Fprint(c.Writer, ": ping\n\n"); err != nil {
					return
				}
				c.Writer.Flush()
			}
		}
	}
}
