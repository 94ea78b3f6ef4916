package handlers

import "backend/internal/models"

// mergeCartItem is the add-or-update rule: when an item with the same
// (sku, color, size) key exists, quantities are summed; otherwise the item
// is appended. The snapshot fields of an existing line are kept as-is.
func mergeCartItem(items []models.CartItem, item models.CartItem) []models.CartItem {
	key := item.Key()
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity += item.Quantity
			return items
		}
	}
	return append(items, item)
}

// setCartQuantity replaces the quantity of the keyed line. Returns false
// when no line matches.
func setCartQuantity(items []models.CartItem, key string, quantity int) bool {
	for i := range items {
		if items[i].Key() == key {
			items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// removeCartItem drops the keyed line. Returns the new slice and whether a
// line was removed.
func removeCartItem(items []models.CartItem, key string) ([]models.CartItem, bool) {
	for i := range items {
		if items[i].Key() == key {
			return append(items[:i], items[i+1:]...), true
		}
	}
	return items, false
}
