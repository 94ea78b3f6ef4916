package handlers

import (
	"math"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/models"
)

/* =======================
   REQUEST MODELS
======================= */

type variantRequest struct {
	Color string `json:"color" binding:"required"`
	Size  string `json:"size" binding:"required"`
	Stock int    `json:"stock"`
}

type productCreateRequest struct {
	SKU         string           `json:"sku" binding:"required"`
	Name        string           `json:"name" binding:"required"`
	Price       *int64           `json:"price" binding:"required"`
	Description string           `json:"description"`
	Brand       string           `json:"brand"`
	ImageURL    string           `json:"imageUrl"`
	Category    []string         `json:"category"`
	Stock       int              `json:"stock"`
	Variants    []variantRequest `json:"variants"`
	IsActive    *bool            `json:"isActive"`
}

type productUpdateRequest struct {
	Name        *string           `json:"name"`
	Price       *int64            `json:"price"`
	Description *string           `json:"description"`
	Brand       *string           `json:"brand"`
	ImageURL    *string           `json:"imageUrl"`
	Category    *[]string         `json:"category"`
	Stock       *int              `json:"stock"`
	Variants    *[]variantRequest `json:"variants"`
	IsActive    *bool             `json:"isActive"`
}

func toVariants(reqs []variantRequest) []models.Variant {
	variants := make([]models.Variant, 0, len(reqs))
	for _, v := range reqs {
		stock := v.Stock
		if stock < 0 {
			stock = 0
		}
		variants = append(variants, models.Variant{
			Color: strings.TrimSpace(v.Color),
			Size:  strings.TrimSpace(v.Size),
			Stock: stock,
		})
	}
	return variants
}

/* =======================
   GET (ADMIN) – LIST
======================= */

func GetAllProducts(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "GET /admin/products"
		defer handlePanic(c, route)

		page, limit, err := parsePaginationParams(c.Query("page"), c.Query("limit"))
		if err != nil {
			respondWithError(c, http.StatusBadRequest, route, err.Error())
			return
		}

		filter := bson.M{
			"isDeleted": bson.M{"$ne": true},
		}

		if category := strings.TrimSpace(c.Query("category")); category != "" {
			filter["category"] = bson.M{"$in": []string{category}}
		}

		if search := strings.TrimSpace(c.Query("search")); search != "" {
			filter["$or"] = []bson.M{
				{"name": bson.M{"$regex": search, "$options": "i"}},
				{"sku": bson.M{"$regex": search, "$options": "i"}},
				{"brand": bson.M{"$regex": search, "$options": "i"}},
			}
		}

		if isActive := strings.TrimSpace(c.Query("isActive")); isActive != "" {
			filter["isActive"] = strings.EqualFold(isActive, "true")
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		total, err := db.Collection("products").CountDocuments(ctx, filter)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		totalPages := int64(0)
		if total > 0 {
			totalPages = int64(math.Ceil(float64(total) / float64(limit)))
		}

		opts := options.Find().
			SetSkip((page - 1) * limit).
			SetLimit(limit).
			SetSort(bson.D{{Key: "createdAt", Value: -1}})

		cursor, err := db.Collection("products").Find(ctx, filter, opts)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		defer cursor.Close(ctx)

		products, err := decodeProducts(ctx, cursor)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, gin.H{
			"data": products,
			"pagination": gin.H{
				"page":       page,
				"limit":      limit,
				"total":      total,
				"totalPages": totalPages,
			},
		})
	}
}

/* =======================
   CREATE
======================= */

func CreateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "POST /admin/products"
		defer handlePanic(c, route)

		var req productCreateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		sku := strings.ToLower(strings.TrimSpace(req.SKU))
		if sku == "" {
			respondWithError(c, http.StatusBadRequest, route, "sku required")
			return
		}
		if *req.Price < 0 {
			respondWithError(c, http.StatusBadRequest, route, "price must not be negative")
			return
		}

		stock := req.Stock
		if stock < 0 {
			stock = 0
		}

		isActive := true
		if req.IsActive != nil {
			isActive = *req.IsActive
		}

		now := time.Now()
		product := models.Product{
			SKU:         sku,
			Name:        strings.TrimSpace(req.Name),
			Price:       *req.Price,
			Description: strings.TrimSpace(req.Description),
			Brand:       strings.TrimSpace(req.Brand),
			ImageURL:    strings.TrimSpace(req.ImageURL),
			Category:    models.StringList(req.Category).Normalize(),
			Stock:       stock,
			Variants:    toVariants(req.Variants),
			IsActive:    isActive,
			CreatedAt:   now,
			UpdatedAt:   now,
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("products").InsertOne(ctx, product)
		if mongo.IsDuplicateKeyError(err) {
			respondWithError(c, http.StatusConflict, route, "sku already exists")
			return
		}
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}

		if id, ok := res.InsertedID.(primitive.ObjectID); ok {
			product.ID = id
		}
		product.InStock = product.TotalStock() > 0

		c.JSON(http.StatusCreated, product)
	}
}

/* =======================
   UPDATE (partial)
======================= */

func UpdateProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "PUT /admin/products/:sku"
		defer handlePanic(c, route)

		sku := strings.ToLower(strings.TrimSpace(c.Param("sku")))
		if sku == "" {
			respondWithError(c, http.StatusBadRequest, route, "sku required")
			return
		}

		var req productUpdateRequest
		if err := c.ShouldBindJSON(&req); err != nil {
			respondWithError(c, http.StatusBadRequest, route, "invalid request body")
			return
		}

		set := bson.M{"updatedAt": time.Now()}

		if req.Name != nil {
			name := strings.TrimSpace(*req.Name)
			if name == "" {
				respondWithError(c, http.StatusBadRequest, route, "name must not be empty")
				return
			}
			set["name"] = name
		}
		if req.Price != nil {
			if *req.Price < 0 {
				respondWithError(c, http.StatusBadRequest, route, "price must not be negative")
				return
			}
			set["price"] = *req.Price
		}
		if req.Description != nil {
			set["description"] = strings.TrimSpace(*req.Description)
		}
		if req.Brand != nil {
			set["brand"] = strings.TrimSpace(*req.Brand)
		}
		if req.ImageURL != nil {
			set["imageUrl"] = strings.TrimSpace(*req.ImageURL)
		}
		if req.Category != nil {
			set["category"] = models.StringList(*req.Category).Normalize()
		}
		if req.Stock != nil {
			stock := *req.Stock
			if stock < 0 {
				stock = 0
			}
			set["stock"] = stock
		}
		if req.Variants != nil {
			set["variants"] = toVariants(*req.Variants)
		}
		if req.IsActive != nil {
			set["isActive"] = *req.IsActive
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"sku": sku, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": set},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		var raw bson.M
		if err := db.Collection("products").FindOne(ctx, bson.M{"sku": sku}).Decode(&raw); err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		product, err := normalizeProductDocument(raw)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "decode error")
			return
		}

		c.JSON(http.StatusOK, product)
	}
}

/* =======================
   DELETE (soft)
======================= */

func DeleteProduct(db *mongo.Database) gin.HandlerFunc {
	return func(c *gin.Context) {
		const route = "DELETE /admin/products/:sku"
		defer handlePanic(c, route)

		sku := strings.ToLower(strings.TrimSpace(c.Param("sku")))
		if sku == "" {
			respondWithError(c, http.StatusBadRequest, route, "sku required")
			return
		}

		ctx, cancel := requestContext(c)
		defer cancel()

		now := time.Now()
		res, err := db.Collection("products").UpdateOne(ctx,
			bson.M{"sku": sku, "isDeleted": bson.M{"$ne": true}},
			bson.M{"$set": bson.M{"isDeleted": true, "deletedAt": now, "isActive": false, "updatedAt": now}},
		)
		if err != nil {
			respondWithError(c, http.StatusInternalServerError, route, "db error")
			return
		}
		if res.MatchedCount == 0 {
			respondWithError(c, http.StatusNotFound, route, "product not found")
			return
		}

		c.JSON(http.StatusOK, gin.H{"message": "product deleted"})
	}
}
