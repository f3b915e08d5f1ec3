package handlers

import (
	"testing"

	"backend/internal/models"
)

func TestMealLineTotalSumsExtras(t *testing.T) {
	main := models.SelectedItem{Name: "Chicken Bento", Price: 12.5}
	addOns := []models.SelectedItem{
		{Name: "Miso Soup", Price: 2},
		{Name: "Edamame", Price: 2.5},
	}
	fruit := &models.SelectedItem{Name: "Apple Slices", Price: 1.5}

	if got := mealLineTotal(main, addOns, fruit, nil); got != 18.5 {
		t.Fatalf("expected 18.5, got %v", got)
	}
}

func TestMealLineTotalMainOnly(t *testing.T) {
	main := models.SelectedItem{Name: "Sushi Pack", Price: 10}
	if got := mealLineTotal(main, nil, nil, nil); got != 10 {
		t.Fatalf("expected 10, got %v", got)
	}
}

func TestApplyCouponPercent(t *testing.T) {
	total, discount := applyCoupon(30, models.Coupon{Code: "TEN", PercentOff: 10})
	if total != 27 || discount != 3 {
		t.Fatalf("expected total=27 discount=3, got total=%v discount=%v", total, discount)
	}
}

func TestApplyCouponFixedAmount(t *testing.T) {
	total, discount := applyCoupon(30, models.Coupon{Code: "FIVE", AmountOff: 5})
	if total != 25 || discount != 5 {
		t.Fatalf("expected total=25 discount=5, got total=%v discount=%v", total, discount)
	}
}

func TestApplyCouponNeverGoesNegative(t *testing.T) {
	total, discount := applyCoupon(4, models.Coupon{Code: "BIG", AmountOff: 10})
	if total != 0 || discount != 4 {
		t.Fatalf("expected total=0 discount=4, got total=%v discount=%v", total, discount)
	}
}

func TestAmountFromMinorUnits(t *testing.T) {
	tests := []struct {
		minor int64
		want  float64
	}{
		{2599, 25.99},
		{2700, 27},
		{0, 0},
		{5, 0.05},
	}

	for _, tc := range tests {
		if got := amountFromMinorUnits(tc.minor); got != tc.want {
			t.Fatalf("amountFromMinorUnits(%d) = %v, want %v", tc.minor, got, tc.want)
		}
	}
}

func TestToMinorUnitsRoundsFloatNoise(t *testing.T) {
	if got := toMinorUnits(25.99); got != 2599 {
		t.Fatalf("expected 2599, got %d", got)
	}
	// 0.1+0.2 style accumulation should still land on the right cent
	if got := toMinorUnits(0.1 + 0.2); got != 30 {
		t.Fatalf("expected 30, got %d", got)
	}
}
