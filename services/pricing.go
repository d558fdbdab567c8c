package services

import (
	"craftmarket/models"
	"craftmarket/utils"
)

// GrossTotal computes the gross amount for an offer or order.
// The discount is applied to the net total first (percent of net, or a fixed
// amount), the base is floored at zero, then tax is added and the result is
// rounded to cents. The stored gross_total is always this value, never a
// client-supplied one.
func GrossTotal(netTotal, taxRate float64, discountType string, discountValue float64) float64 {
	base := netTotal
	switch discountType {
	case models.DiscountPercent:
		base = netTotal * (1 - discountValue/100)
	case models.DiscountFixed:
		base = netTotal - discountValue
	}
	if base < 0 {
		base = 0
	}
	return utils.Round2(base * (1 + taxRate/100))
}
