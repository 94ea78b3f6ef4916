package handlers

import (
	"crypto/subtle"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"backend/internal/metrics"
	"backend/internal/models"
	"backend/internal/stream"
)

type paymentWebhookRequest struct {
	OrderID   string `json:"orderId" binding:"required"`
	PaymentID string `json:"paymentId"`
}

// POST /payments/webhook
//
// Gateway callback: a confirmed payment forces the order from pending to
// processing. The provider's full signature handshake happens on their
// side; this endpoint only checks the shared secret it was configured with.
func PaymentWebhook(db *mongo.Database, hub *stream.Hub, secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /payments/webhook"
		defer handlePanic(c, route)

		provided := c.GetHeader("X-Webhook-Secret")
		if secret == "" || subtle.ConstantTimeCompare([]byte(provided), []byte(secret)) != 1 {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req paymentWebhookRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(req.OrderID)
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid orderId")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		var order models.Order
		err = db.Collection("orders").FindOne(ctx, bson.M{"_id": orderID}).Decode(&order)
		if err == mongo.ErrNoDocuments {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if order.Status != models.StatusPending {
			respondWithError(c, http.StatusConflict, route, "order not pending")
			return
		}

		now := time.Now()
		_, err = db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID},
			bson.M{"$set": bson.M{"status": models.StatusProcessing, "updatedAt": now}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		metrics.OrderStatusChanges.WithLabelValues(string(models.StatusProcessing)).Inc()

		notifyUser(ctx, db, hub, order.UserID, order.ID, models.NotificationOrderStatusChanged, "payment received")

		c.JSON(http.StatusOK, gin.H{"message": "payment recorded"})
	}
}
