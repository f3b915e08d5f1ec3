package handlers

import (
	"math"

	"backend/internal/models"
)

// mealLineTotal sums a meal's main dish plus every selected extra.
func mealLineTotal(main models.SelectedItem, addOns []models.SelectedItem, fruit, side *models.SelectedItem) float64 {
	total := main.Price
	for _, addOn := range addOns {
		total += addOn.Price
	}
	if fruit != nil {
		total += fruit.Price
	}
	if side != nil {
		total += side.Price
	}
	return roundCurrency(total)
}

// applyCoupon returns the discounted total and the discount taken. The
// total never drops below zero.
func applyCoupon(subtotal float64, coupon models.Coupon) (float64, float64) {
	var discount float64
	switch {
	case coupon.PercentOff > 0:
		discount = subtotal * coupon.PercentOff / 100
	case coupon.AmountOff > 0:
		discount = coupon.AmountOff
	}

	if discount > subtotal {
		discount = subtotal
	}

	discount = roundCurrency(discount)
	return roundCurrency(subtotal - discount), discount
}

// amountFromMinorUnits converts a processor amount (cents) into major
// currency units.
func amountFromMinorUnits(minor int64) float64 {
	return float64(minor) / 100
}

// toMinorUnits converts a major-unit amount into the cents the processor
// expects.
func toMinorUnits(major float64) int64 {
	return int64(math.Round(major * 100))
}

func roundCurrency(value float64) float64 {
	return math.Round(value*100) / 100
}
