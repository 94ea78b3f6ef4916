package handlers

import (
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

type orderStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// UpdateOrderStatus serves both PATCH /admin/orders/:id and
// PATCH /orders/:id/status (role-gated by the router).
//
// Stock moves only on the shipped boundary, and the transition table is the
// single guard against doing it twice: shipped -> shipped is rejected here.
// The stock writes and the status write are not in a transaction; two
// concurrent legal transitions on the same order can still interleave.
func UpdateOrderStatus(db *mongo.Database, hub *stream.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /orders/:id/status"
		defer handlePanic(c, route)

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
			return
		}

		var req orderStatusRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		next := models.OrderStatus(req.Status)
		if !next.Valid() {
			respondWithError(c, http.StatusBadRequest, route, "unknown status")
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

		if !order.Status.CanTransitionTo(next) {
			respondWithError(c, http.StatusBadRequest, route, "illegal status transition")
			return
		}

		if direction := models.StockDirection(order.Status, next); direction != 0 {
			if err := adjustOrderStock(ctx, db, order, direction); err != nil {
				respondWithError(c, http.StatusInternalServerError, route, "stock adjustment failed")
				return
			}
		}

		now := time.Now()
		_, err = db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID},
			bson.M{"$set": bson.M{"status": next, "updatedAt": now}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		order.Status = next
		order.UpdatedAt = now
		metrics.OrderStatusChanges.WithLabelValues(string(next)).Inc()

		// Best-effort customer notification; never fails the request.
		notifyUser(ctx, db, hub, order.UserID, order.ID, models.NotificationOrderStatusChanged, "order status: "+string(next))

		c.JSON(http.StatusOK, order)
	}
}
