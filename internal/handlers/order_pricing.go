package handlers

import (
	"math"

	"backend/internal/models"
)

// Pricing carries the totals knobs. Totals are computed once at order
// creation and frozen on the document (price-lock); later status changes
// never recompute them.
type Pricing struct {
	ShippingFee     int64
	FreeShippingMin int64
	TaxRate         float64
}

type orderTotals struct {
	Subtotal int64
	Shipping int64
	Tax      int64
	Total    int64
}

func computeSubtotal(items []models.OrderItem) int64 {
	var subtotal int64
	for _, item := range items {
		subtotal += item.Price * int64(item.Quantity)
	}
	return subtotal
}

// computeShipping applies the caller override when present, otherwise the
// flat fee below the free-shipping threshold.
func computeShipping(subtotal int64, override *int64, p Pricing) int64 {
	if override != nil && *override >= 0 {
		return *override
	}
	if subtotal >= p.FreeShippingMin {
		return 0
	}
	return p.ShippingFee
}

func computeTax(subtotal int64, rate float64) int64 {
	return int64(math.Round(float64(subtotal) * rate))
}

func computeOrderTotals(items []models.OrderItem, shippingOverride *int64, p Pricing) orderTotals {
	subtotal := computeSubtotal(items)
	shipping := computeShipping(subtotal, shippingOverride, p)
	tax := computeTax(subtotal, p.TaxRate)
	return orderTotals{
		Subtotal: subtotal,
		Shipping: shipping,
		Tax:      tax,
		Total:    subtotal + shipping + tax,
	}
}
