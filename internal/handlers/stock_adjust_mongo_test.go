package handlers

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"backend/internal/models"
)

type capturedUpdate struct {
	Updates []struct {
		Q            bson.Raw   `bson:"q"`
		U            bson.Raw   `bson:"u"`
		ArrayFilters []bson.Raw `bson:"arrayFilters"`
	} `bson:"updates"`
}

func decodeUpdateCommand(mt *mtest.T, raw bson.Raw) capturedUpdate {
	mt.Helper()
	var cmd capturedUpdate
	require.NoError(mt, bson.Unmarshal(raw, &cmd))
	require.Len(mt, cmd.Updates, 1)
	return cmd
}

func updateSuccess(n int) bson.D {
	return mtest.CreateSuccessResponse(
		bson.E{Key: "n", Value: n},
		bson.E{Key: "nModified", Value: n},
	)
}

// The product carries two variants sharing a color. The write must be bound
// to the one variant matching color and size together; a filter that splits
// the two conditions can resolve the positional target to the sibling.
func TestAdjustVariantStockTargetsExactVariant(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	product := bson.D{
		{Key: "sku", Value: "top-0001"},
		{Key: "variants", Value: bson.A{
			bson.D{{Key: "color", Value: "red"}, {Key: "size", Value: "L"}, {Key: "stock", Value: 5}},
			bson.D{{Key: "color", Value: "red"}, {Key: "size", Value: "M"}, {Key: "stock", Value: 2}},
		}},
	}

	item := models.OrderItem{SKU: "top-0001", Color: "red", Size: "M", Quantity: 2}

	mt.Run("shipped decrements the matching variant only", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "storefront.products", mtest.FirstBatch, product),
			updateSuccess(1),
		)

		require.NoError(mt, adjustVariantStock(context.Background(), mt.Coll, item, -1))

		find := mt.GetStartedEvent()
		require.NotNil(mt, find)
		assert.Equal(mt, "find", find.CommandName)

		update := mt.GetStartedEvent()
		require.NotNil(mt, update)
		require.Equal(mt, "update", update.CommandName)

		cmd := decodeUpdateCommand(mt, update.Command)
		assert.Equal(mt, "top-0001", cmd.Updates[0].Q.Lookup("sku").StringValue())

		set := cmd.Updates[0].U.Lookup("$set", "variants.$[v].stock")
		assert.EqualValues(mt, 0, set.AsInt64())

		require.Len(mt, cmd.Updates[0].ArrayFilters, 1)
		filter := cmd.Updates[0].ArrayFilters[0]
		assert.Equal(mt, "red", filter.Lookup("v.color").StringValue())
		assert.Equal(mt, "M", filter.Lookup("v.size").StringValue())
	})

	mt.Run("cancel restores the same variant", func(mt *mtest.T) {
		shipped := bson.D{
			{Key: "sku", Value: "top-0001"},
			{Key: "variants", Value: bson.A{
				bson.D{{Key: "color", Value: "red"}, {Key: "size", Value: "L"}, {Key: "stock", Value: 5}},
				bson.D{{Key: "color", Value: "red"}, {Key: "size", Value: "M"}, {Key: "stock", Value: 3}},
			}},
		}
		mt.AddMockResponses(
			mtest.CreateCursorResponse(0, "storefront.products", mtest.FirstBatch, shipped),
			updateSuccess(1),
		)

		require.NoError(mt, adjustVariantStock(context.Background(), mt.Coll, item, +1))

		_ = mt.GetStartedEvent() // find
		update := mt.GetStartedEvent()
		require.NotNil(mt, update)

		cmd := decodeUpdateCommand(mt, update.Command)
		set := cmd.Updates[0].U.Lookup("$set", "variants.$[v].stock")
		assert.EqualValues(mt, 5, set.AsInt64())

		require.Len(mt, cmd.Updates[0].ArrayFilters, 1)
		filter := cmd.Updates[0].ArrayFilters[0]
		assert.Equal(mt, "red", filter.Lookup("v.color").StringValue())
		assert.Equal(mt, "M", filter.Lookup("v.size").StringValue())
	})
}

func TestAdjustFlatStockCommands(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	item := models.OrderItem{SKU: "top-0002", Quantity: 2}

	mt.Run("decrement is guarded by remaining stock", func(mt *mtest.T) {
		mt.AddMockResponses(updateSuccess(1))

		require.NoError(mt, adjustFlatStock(context.Background(), mt.Coll, item, -1))

		update := mt.GetStartedEvent()
		require.NotNil(mt, update)
		require.Equal(mt, "update", update.CommandName)

		cmd := decodeUpdateCommand(mt, update.Command)
		assert.Equal(mt, "top-0002", cmd.Updates[0].Q.Lookup("sku").StringValue())
		assert.EqualValues(mt, 2, cmd.Updates[0].Q.Lookup("stock", "$gte").AsInt64())
		assert.EqualValues(mt, -2, cmd.Updates[0].U.Lookup("$inc", "stock").AsInt64())
	})

	mt.Run("missed guard falls back to a clamp at zero", func(mt *mtest.T) {
		mt.AddMockResponses(updateSuccess(0), updateSuccess(1))

		require.NoError(mt, adjustFlatStock(context.Background(), mt.Coll, item, -1))

		guarded := mt.GetStartedEvent()
		require.NotNil(mt, guarded)

		clamp := mt.GetStartedEvent()
		require.NotNil(mt, clamp)
		require.Equal(mt, "update", clamp.CommandName)

		cmd := decodeUpdateCommand(mt, clamp.Command)
		assert.EqualValues(mt, 2, cmd.Updates[0].Q.Lookup("stock", "$lt").AsInt64())
		assert.EqualValues(mt, 0, cmd.Updates[0].Q.Lookup("stock", "$gt").AsInt64())
		assert.EqualValues(mt, 0, cmd.Updates[0].U.Lookup("$set", "stock").AsInt64())
	})

	mt.Run("restore is an unguarded increment", func(mt *mtest.T) {
		mt.AddMockResponses(updateSuccess(1))

		require.NoError(mt, adjustFlatStock(context.Background(), mt.Coll, item, +1))

		update := mt.GetStartedEvent()
		require.NotNil(mt, update)

		cmd := decodeUpdateCommand(mt, update.Command)
		assert.EqualValues(mt, 2, cmd.Updates[0].U.Lookup("$inc", "stock").AsInt64())
		if _, err := cmd.Updates[0].Q.LookupErr("stock"); err == nil {
			mt.Fatal("restore must not be guarded by remaining stock")
		}
	})
}
