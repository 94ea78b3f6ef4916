package handlers

import (
	"context"
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
)

/* =========================
   REQUEST DTOs
========================= */

type cartItemRequest struct {
	SKU      string `json:"sku" binding:"required"`
	Color    string `json:"color"`
	Size     string `json:"size"`
	Quantity int    `json:"quantity" binding:"required"`
	Price    int64  `json:"price"`
	Name     string `json:"name"`
	Image    string `json:"image"`
}

type cartReplaceRequest struct {
	Items []cartItemRequest `json:"items" binding:"required"`
}

type cartQuantityRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

func cartItemFromRequest(req cartItemRequest) (models.CartItem, bool) {
	sku := strings.ToLower(strings.TrimSpace(req.SKU))
	if sku == "" || req.Quantity < 1 || req.Price < 0 {
		return models.CartItem{}, false
	}
	return models.CartItem{
		SKU:      sku,
		Color:    strings.TrimSpace(req.Color),
		Size:     strings.TrimSpace(req.Size),
		Quantity: req.Quantity,
		Price:    req.Price,
		Name:     strings.TrimSpace(req.Name),
		Image:    strings.TrimSpace(req.Image),
	}, true
}

/* =========================
   DOCUMENT ACCESS
========================= */

// loadCart returns the user's cart, or an empty one when none exists yet.
// Every mutation below is a read-modify-write on this single document.
func loadCart(ctx context.Context, db *mongo.Database, userID primitive.ObjectID) (models.Cart, error) {
	var cart models.Cart
	err := db.Collection("carts").FindOne(ctx, bson.M{"userId": userID}).Decode(&cart)
	if err == mongo.ErrNoDocuments {
		return models.Cart{UserID: userID, Items: []models.CartItem{}}, nil
	}
	if err != nil {
		return models.Cart{}, err
	}
	if cart.Items == nil {
		cart.Items = []models.CartItem{}
	}
	return cart, nil
}

func saveCartItems(ctx context.Context, db *mongo.Database, userID primitive.ObjectID, items []models.CartItem) error {
	if items == nil {
		items = []models.CartItem{}
	}
	_, err := db.Collection("carts").UpdateOne(ctx,
		bson.M{"userId": userID},
		bson.M{"$set": bson.M{"items": items, "updatedAt": time.Now()}},
		options.Update().SetUpsert(true),
	)
	return err
}

/* =========================
   HANDLERS
========================= */

// GET /cart
func GetCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /cart"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// PUT /cart — replace the item list wholesale.
func ReplaceCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /cart"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req cartReplaceRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		items := make([]models.CartItem, 0, len(req.Items))
		for _, itemReq := range req.Items {
			item, valid := cartItemFromRequest(itemReq)
			if !valid {
				respondWithError(c, http.StatusBadRequest, route, "invalid cart item")
				return
			}
			items = mergeCartItem(items, item)
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := saveCartItems(ctx, db, userID, items); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// POST /cart/items — add-or-update on the (sku, color, size) key.
func AddCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /cart/items"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		var req cartItemRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		item, valid := cartItemFromRequest(req)
		if !valid {
			respondWithError(c, http.StatusBadRequest, route, "invalid cart item")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		cart.Items = mergeCartItem(cart.Items, item)

		if err := saveCartItems(ctx, db, userID, cart.Items); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// PATCH /cart/items/:key/quantity
func UpdateCartItemQuantity(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PATCH /cart/items/:key/quantity"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		key := c.Param("key")
		if _, _, _, valid := models.ParseCartItemKey(key); !valid {
			respondWithError(c, http.StatusBadRequest, route, "invalid item key")
			return
		}

		var req cartQuantityRequest
		if err := c.ShouldBindJSON(&req); err != nil || req.Quantity < 1 {
			respondWithError(c, http.StatusBadRequest, route, "quantity must be at least 1")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if !setCartQuantity(cart.Items, key, req.Quantity) {
			respondWithError(c, http.StatusNotFound, route, "cart item not found")
			return
		}

		if err := saveCartItems(ctx, db, userID, cart.Items); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /cart/items/:key
func RemoveCartItem(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart/items/:key"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		key := c.Param("key")
		if _, _, _, valid := models.ParseCartItemKey(key); !valid {
			respondWithError(c, http.StatusBadRequest, route, "invalid item key")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		cart, err := loadCart(ctx, db, userID)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		items, removed := removeCartItem(cart.Items, key)
		if !removed {
			respondWithError(c, http.StatusNotFound, route, "cart item not found")
			return
		}
		cart.Items = items

		if err := saveCartItems(ctx, db, userID, cart.Items); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, cart)
	}
}

// DELETE /cart
func ClearCart(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /cart"
		defer handlePanic(c, route)

		userID, ok := middleware.UserID(c)
		if !ok {
			respondWithError(c, http.StatusUnauthorized, route, "unauthorized")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		if err := saveCartItems(ctx, db, userID, nil); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "cart cleared"})
	}
}
