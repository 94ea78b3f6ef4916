package handlers

import (
	"testing"

	"backend/internal/models"
)

func TestClampedStockNeverNegative(t *testing.T) {
	stock := 5
	for i := 0; i < 10; i++ {
		stock = clampedStock(stock, -1, 2)
		if stock < 0 {
			t.Fatalf("stock went negative after %d decrements: %d", i+1, stock)
		}
	}
	if stock != 0 {
		t.Fatalf("expected repeated decrements to settle at 0, got %d", stock)
	}
}

func TestClampedStockRoundTrip(t *testing.T) {
	// shipped then un-shipped nets zero when stock was sufficient.
	start := 5
	afterShip := clampedStock(start, -1, 2)
	afterRelease := clampedStock(afterShip, +1, 2)

	if afterShip != 3 {
		t.Fatalf("expected 3 after decrement, got %d", afterShip)
	}
	if afterRelease != start {
		t.Fatalf("expected round trip back to %d, got %d", start, afterRelease)
	}
}

func TestFindVariant(t *testing.T) {
	product := models.Product{
		SKU: "top-0001",
		Variants: []models.Variant{
			{Color: "red", Size: "M", Stock: 5},
			{Color: "red", Size: "L", Stock: 2},
		},
	}

	if idx := product.FindVariant("red", "M"); idx != 0 {
		t.Fatalf("expected index 0, got %d", idx)
	}
	if idx := product.FindVariant("red", "L"); idx != 1 {
		t.Fatalf("expected index 1, got %d", idx)
	}
	if idx := product.FindVariant("blue", "M"); idx != -1 {
		t.Fatalf("expected -1 for missing variant, got %d", idx)
	}
}

func TestTotalStock(t *testing.T) {
	flat := models.Product{Stock: 7}
	if flat.TotalStock() != 7 {
		t.Fatalf("expected flat stock 7, got %d", flat.TotalStock())
	}

	varied := models.Product{
		Stock: 99, // ignored once variants exist
		Variants: []models.Variant{
			{Color: "red", Size: "M", Stock: 3},
			{Color: "red", Size: "L", Stock: 4},
		},
	}
	if varied.TotalStock() != 7 {
		t.Fatalf("expected variant sum 7, got %d", varied.TotalStock())
	}
}
