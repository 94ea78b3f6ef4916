package handlers

import (
	"context"
	"errors"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"backend/internal/logger"
	"backend/internal/metrics"
	"backend/internal/models"
)

// clampedStock applies a direction*quantity delta with a floor of zero.
// Clamping instead of rejecting means repeated transitions can silently
// lose oversell information; the clamp counter keeps that visible.
func clampedStock(stock, direction, quantity int) int {
	next := stock + direction*quantity
	if next < 0 {
		return 0
	}
	return next
}

// adjustOrderStock walks the order items and mutates product or variant
// stock. direction is -1 when the order enters shipped and +1 when it
// leaves shipped to anything except delivered. Items carrying both color
// and size address a variant bucket; all others address the flat count.
//
// The status write and these stock writes are not tied by a transaction;
// a crash between them leaves stock inconsistent. Known limitation.
func adjustOrderStock(ctx context.Context, db *mongo.Database, order models.Order, direction int) error {
	if direction != -1 && direction != 1 {
		return errors.New("direction must be -1 or +1")
	}

	products := db.Collection("products")

	for _, item := range order.Items {
		if item.Quantity <= 0 {
			continue
		}

		if item.Color != "" && item.Size != "" {
			if err := adjustVariantStock(ctx, products, item, direction); err != nil {
				return err
			}
			continue
		}

		if err := adjustFlatStock(ctx, products, item, direction); err != nil {
			return err
		}
	}

	return nil
}

func adjustVariantStock(ctx context.Context, products *mongo.Collection, item models.OrderItem, direction int) error {
	var product models.Product
	err := products.FindOne(ctx, bson.M{"sku": item.SKU}).Decode(&product)
	if err == mongo.ErrNoDocuments {
		logger.Warn().Str("sku", item.SKU).Msg("stock adjust: product missing")
		return nil
	}
	if err != nil {
		return err
	}

	idx := product.FindVariant(item.Color, item.Size)
	if idx < 0 {
		logger.Warn().
			Str("sku", item.SKU).
			Str("color", item.Color).
			Str("size", item.Size).
			Msg("stock adjust: variant missing")
		return nil
	}

	next := clampedStock(product.Variants[idx].Stock, direction, item.Quantity)
	if direction < 0 && next == 0 && product.Variants[idx].Stock < item.Quantity {
		metrics.StockClamps.Inc()
	}

	// The array filter must carry color and size together; split top-level
	// conditions would let the write land on a sibling variant.
	update := bson.M{"$set": bson.M{"variants.$[v].stock": next}}
	opts := options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"v.color": item.Color, "v.size": item.Size}},
	})

	_, err = products.UpdateOne(ctx, bson.M{"sku": item.SKU}, update, opts)
	return err
}

func adjustFlatStock(ctx context.Context, products *mongo.Collection, item models.OrderItem, direction int) error {
	if direction > 0 {
		_, err := products.UpdateOne(ctx,
			bson.M{"sku": item.SKU},
			bson.M{"$inc": bson.M{"stock": item.Quantity}},
		)
		return err
	}

	// Atomic decrement guarded by remaining stock; falls back to a clamp
	// at zero when the guard misses.
	res, err := products.UpdateOne(ctx,
		bson.M{"sku": item.SKU, "stock": bson.M{"$gte": item.Quantity}},
		bson.M{"$inc": bson.M{"stock": -item.Quantity}},
	)
	if err != nil {
		return err
	}
	if res.MatchedCount > 0 {
		return nil
	}

	metrics.StockClamps.Inc()
	logger.Warn().Str("sku", item.SKU).Int("quantity", item.Quantity).Msg("stock adjust: clamped at zero")

	_, err = products.UpdateOne(ctx,
		bson.M{"sku": item.SKU, "stock": bson.M{"$lt": item.Quantity, "$gt": 0}},
		bson.M{"$set": bson.M{"stock": 0}},
	)
	return err
}
