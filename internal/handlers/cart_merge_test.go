package handlers

import (
	"testing"

	"backend/internal/models"
)

func TestMergeCartItemSumsQuantities(t *testing.T) {
	item := func(qty int) models.CartItem {
		return models.CartItem{SKU: "top-0001", Color: "red", Size: "M", Quantity: qty, Price: 100000}
	}

	split := mergeCartItem(nil, item(2))
	split = mergeCartItem(split, item(3))

	single := mergeCartItem(nil, item(5))

	if len(split) != 1 || len(single) != 1 {
		t.Fatalf("expected one line, got %d and %d", len(split), len(single))
	}
	if split[0].Quantity != single[0].Quantity {
		t.Fatalf("add 2 then 3 should equal one add of 5, got %d vs %d", split[0].Quantity, single[0].Quantity)
	}
}

func TestMergeCartItemDistinctKeys(t *testing.T) {
	items := mergeCartItem(nil, models.CartItem{SKU: "top-0001", Color: "red", Size: "M", Quantity: 1})
	items = mergeCartItem(items, models.CartItem{SKU: "top-0001", Color: "red", Size: "L", Quantity: 1})
	items = mergeCartItem(items, models.CartItem{SKU: "top-0002", Quantity: 1})

	if len(items) != 3 {
		t.Fatalf("expected 3 distinct lines, got %d", len(items))
	}
}

func TestMergeCartItemKeepsSnapshot(t *testing.T) {
	items := mergeCartItem(nil, models.CartItem{SKU: "top-0001", Quantity: 1, Price: 100000, Name: "Top"})
	items = mergeCartItem(items, models.CartItem{SKU: "top-0001", Quantity: 1, Price: 90000, Name: "Top v2"})

	if items[0].Price != 100000 || items[0].Name != "Top" {
		t.Fatalf("existing snapshot must not be overwritten, got price=%d name=%q", items[0].Price, items[0].Name)
	}
}

func TestSetCartQuantity(t *testing.T) {
	items := []models.CartItem{{SKU: "top-0001", Color: "red", Size: "M", Quantity: 1}}

	if !setCartQuantity(items, "top-0001:red:M", 4) {
		t.Fatal("expected key match")
	}
	if items[0].Quantity != 4 {
		t.Fatalf("expected quantity 4, got %d", items[0].Quantity)
	}
	if setCartQuantity(items, "top-0001:blue:M", 2) {
		t.Fatal("expected no match for different color")
	}
}

func TestRemoveCartItem(t *testing.T) {
	items := []models.CartItem{
		{SKU: "top-0001", Quantity: 1},
		{SKU: "top-0002", Quantity: 2},
	}

	items, removed := removeCartItem(items, "top-0001::")
	if !removed || len(items) != 1 || items[0].SKU != "top-0002" {
		t.Fatalf("expected top-0001 removed, got %+v removed=%v", items, removed)
	}

	_, removed = removeCartItem(items, "top-0009::")
	if removed {
		t.Fatal("expected no removal for unknown key")
	}
}

func TestParseCartItemKey(t *testing.T) {
	sku, color, size, ok := models.ParseCartItemKey("top-0001:red:M")
	if !ok || sku != "top-0001" || color != "red" || size != "M" {
		t.Fatalf("unexpected parse result: %q %q %q %v", sku, color, size, ok)
	}

	sku, color, size, ok = models.ParseCartItemKey("top-0001::")
	if !ok || sku != "top-0001" || color != "" || size != "" {
		t.Fatalf("empty color/size must parse: %q %q %q %v", sku, color, size, ok)
	}

	if _, _, _, ok := models.ParseCartItemKey("no-separators"); ok {
		t.Fatal("expected parse failure without separators")
	}
	if _, _, _, ok := models.ParseCartItemKey(":red:M"); ok {
		t.Fatal("expected parse failure for empty sku")
	}
}
