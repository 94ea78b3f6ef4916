package handlers

import (
	"testing"

	"backend/internal/models"
)

var testPricing = Pricing{
	ShippingFee:     30000,
	FreeShippingMin: 500000,
	TaxRate:         0.10,
}

func TestComputeOrderTotalsBaseline(t *testing.T) {
	items := []models.OrderItem{
		{SKU: "top-0001", Price: 100000, Quantity: 2},
	}

	totals := computeOrderTotals(items, nil, testPricing)

	if totals.Subtotal != 200000 {
		t.Fatalf("expected subtotal 200000, got %d", totals.Subtotal)
	}
	if totals.Shipping != 30000 {
		t.Fatalf("expected shipping 30000 below free-shipping threshold, got %d", totals.Shipping)
	}
	if totals.Tax != 20000 {
		t.Fatalf("expected tax 20000, got %d", totals.Tax)
	}
	if totals.Total != 250000 {
		t.Fatalf("expected total 250000, got %d", totals.Total)
	}
}

func TestComputeOrderTotalsInvariant(t *testing.T) {
	cases := [][]models.OrderItem{
		{{SKU: "a", Price: 1, Quantity: 1}},
		{{SKU: "a", Price: 99999, Quantity: 3}, {SKU: "b", Price: 12345, Quantity: 7}},
		{{SKU: "a", Price: 500000, Quantity: 1}},
		{},
	}

	for _, items := range cases {
		totals := computeOrderTotals(items, nil, testPricing)
		if totals.Total != totals.Subtotal+totals.Shipping+totals.Tax {
			t.Fatalf("total %d != subtotal %d + shipping %d + tax %d",
				totals.Total, totals.Subtotal, totals.Shipping, totals.Tax)
		}
	}
}

func TestComputeShippingFreeAboveThreshold(t *testing.T) {
	if got := computeShipping(500000, nil, testPricing); got != 0 {
		t.Fatalf("expected free shipping at threshold, got %d", got)
	}
	if got := computeShipping(499999, nil, testPricing); got != 30000 {
		t.Fatalf("expected flat fee below threshold, got %d", got)
	}
}

func TestComputeShippingCallerOverride(t *testing.T) {
	override := int64(0)
	if got := computeShipping(100000, &override, testPricing); got != 0 {
		t.Fatalf("expected override 0, got %d", got)
	}

	negative := int64(-5)
	if got := computeShipping(100000, &negative, testPricing); got != 30000 {
		t.Fatalf("negative override must fall back to flat fee, got %d", got)
	}
}

func TestComputeTaxRounds(t *testing.T) {
	if got := computeTax(15, 0.10); got != 2 {
		t.Fatalf("expected 1.5 to round to 2, got %d", got)
	}
	if got := computeTax(14, 0.10); got != 1 {
		t.Fatalf("expected 1.4 to round to 1, got %d", got)
	}
}
