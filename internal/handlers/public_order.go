package handlers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/metrics"
	"backend/internal/middleware"
	"backend/internal/models"
	"backend/internal/stream"
)

/* =========================
   REQUEST DTOs
========================= */

type createOrderItemRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Name     string `json:"name"`
	Price    int64  `json:"price"`
	Quantity int    `json:"quantity" binding:"required"`
	Color    string `json:"color"`
	Size     string `json:"size"`
	Image    string `json:"image"`
}

type createOrderAddressRequest struct {
	FullName   string `json:"fullName" binding:"required"`
	Phone      string `json:"phone"`
	Line1      string `json:"line1" binding:"required"`
	Line2      string `json:"line2"`
	City       string `json:"city" binding:"required"`
	PostalCode string `json:"postalCode"`
}

type createOrderRequest struct {
	Items           []createOrderItemRequest  `json:"items" binding:"required"`
	ShippingAddress createOrderAddressRequest `json:"shippingAddress" binding:"required"`
	PaymentMethod   string                    `json:"paymentMethod" binding:"required"`
	Shipping        *int64                    `json:"shipping"`
}

// buildOrderItems validates and converts the submitted cart lines. Items
// are trusted as sent: neither price nor quantity is re-checked against the
// live catalog at order time.
func buildOrderItems(reqs []createOrderItemRequest) ([]models.OrderItem, string) {
	if len(reqs) == 0 {
		return nil, "at least one item is required"
	}

	items := make([]models.OrderItem, 0, len(reqs))
	for _, req := range reqs {
		sku := strings.ToLower(strings.TrimSpace(req.SKU))
		if sku == "" {
			return nil, "item sku required"
		}
		if req.Quantity < 1 {
			return nil, "quantity must be at least 1"
		}
		if req.Price < 0 {
			return nil, "price must not be negative"
		}
		items = append(items, models.OrderItem{
			SKU:      sku,
			Name:     strings.TrimSpace(req.Name),
			Price:    req.Price,
			Quantity: req.Quantity,
			Color:    strings.TrimSpace(req.Color),
			Size:     strings.TrimSpace(req.Size),
			Image:    strings.TrimSpace(req.Image),
		})
	}
	return items, ""
}

/* =========================
   CREATE ORDER
========================= */

// POST /orders
func CreateOrder(db *mongo.Database, hub *stream.Hub, p Pricing) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders"
		defer handlePanic(c, route)

		if err := ensureDBConnection(c.Request.Context(), db); err != nil {
			respondWithError(c, http.StatusServiceUnavailable, route, "database unavailable")
			return
		}

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req createOrderRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		items, problem := buildOrderItems(req.Items)
		if problem != "" {
			respondWithError(c, http.StatusBadRequest, route, problem)
			return
		}

		totals := computeOrderTotals(items, req.Shipping, p)

		now := time.Now()
		order := models.Order{
			UserID:   userID,
			Items:    items,
			Subtotal: totals.Subtotal,
			Shipping: totals.Shipping,
			Tax:      totals.Tax,
			Total:    totals.Total,
			Status:   models.StatusPending,
			ShippingAddress: models.Address{
				FullName:   strings.TrimSpace(req.ShippingAddress.FullName),
				Phone:      strings.TrimSpace(req.ShippingAddress.Phone),
				Line1:      strings.TrimSpace(req.ShippingAddress.Line1),
				Line2:      strings.TrimSpace(req.ShippingAddress.Line2),
				City:       strings.TrimSpace(req.ShippingAddress.City),
				PostalCode: strings.TrimSpace(req.ShippingAddress.PostalCode),
			},
			PaymentMethod: strings.TrimSpace(req.PaymentMethod),
			CreatedAt:     now,
			UpdatedAt:     now,
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("orders").InsertOne(ctx, order)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			order.ID = id
		}

		metrics.OrdersCreated.Inc()

		// Best-effort: the order stands even if no admin ever hears of it.
		notifyStaff(ctx, db, hub, order.ID, models.NotificationOrderCreated, "new order received")

		c.JSON(http.StatusCreated, order)
	}
}

/* =========================
   READ ORDERS
========================= */

// GET /orders — own orders for customers, everything for staff.
func GetOrders(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}
		role := middleware.Role(c)

		filter := bson.M{}
		if role != models.RoleAdmin && role != models.RoleManager {
			filter["userId"] = userID
		}

		if status := strings.TrimSpace(c.Query("status")); status != "" {
			if !models.OrderStatus(status).Valid() {
				respondWithError(c, http.StatusBadRequest, route, "invalid status filter")
				return
			}
			filter["status"] = status
		}

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		total, err := db.Collection("orders").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("orders").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		orders := make([]models.Order, 0)
		if err := cursor.All(ctx, &orders); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": orders,
			"pagination": gin.H{
				"page":  page,
				"limit": limit,
				"total": total,
			},
		})
	}
}

// GET /orders/:id
func GetOrder(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /orders/:id"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
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

		role := middleware.Role(c)
		if order.UserID != userID && role != models.RoleAdmin && role != models.RoleManager {
			// Hide foreign orders rather than admitting they exist.
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		c.JSON(http.StatusOK, order)
	}
}

/* =========================
   CANCEL
========================= */

// POST /orders/:id/cancel — only valid from pending or processing.
func CancelOrder(db *mongo.Database, hub *stream.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /orders/:id/cancel"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		orderID, err := primitive.ObjectIDFromHex(c.Param("id"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid id")
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

		role := middleware.Role(c)
		if order.UserID != userID && role != models.RoleAdmin && role != models.RoleManager {
			respondWithError(c, http.StatusNotFound, route, "order not found")
			return
		}

		if order.Status != models.StatusPending && order.Status != models.StatusProcessing {
			respondWithError(c, http.StatusBadRequest, route, "order can no longer be cancelled")
			return
		}

		now := time.Now()
		_, err = db.Collection("orders").UpdateOne(ctx,
			bson.M{"_id": orderID},
			bson.M{"$set": bson.M{"status": models.StatusCancelled, "updatedAt": now}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		order.Status = models.StatusCancelled
		order.UpdatedAt = now
		metrics.OrderStatusChanges.WithLabelValues(string(models.StatusCancelled)).Inc()

		notifyStaff(ctx, db, hub, order.ID, models.NotificationOrderStatusChanged, "order cancelled by customer")

		c.JSON(http.StatusOK, order)
	}
}
