package ledger

import "backend/models"

// ToBaseUnits converts a purchase/transfer quantity expressed in "each",
// "box" or "basket" into base units using the product's conversion factors.
// Factors below 1 are treated as 1, matching how products are saved.
func ToBaseUnits(quantity int64, unit string, product *models.Product) (int64, error) {
	if quantity <= 0 {
		return 0, ErrInvalidInput
	}
	switch unit {
	case models.UnitEach:
		return quantity, nil
	case models.UnitBox:
		return quantity * factor(product.UnitsPerBox), nil
	case models.UnitBasket:
		return quantity * factor(product.UnitsPerBasket), nil
	default:
		return 0, ErrInvalidInput
	}
}

func factor(n int64) int64 {
	if n < 1 {
		return 1
	}
	return n
}
