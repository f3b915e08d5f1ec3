package orderid

import (
	"strings"
	"testing"
	"time"
)

func TestNewFormat(t *testing.T) {
	now := time.Date(2025, time.March, 14, 9, 30, 0, 0, time.UTC)

	id, err := New(now)
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}

	if !strings.HasPrefix(id, "ORD-20250314-") {
		t.Fatalf("expected prefix ORD-20250314-, got %s", id)
	}
	if len(id) != len("ORD-20250314-")+suffixLength {
		t.Fatalf("unexpected id length: %s", id)
	}
}

func TestNewSuffixUsesSafeAlphabet(t *testing.T) {
	for i := 0; i < 50; i++ {
		id, err := New(time.Now())
		if err != nil {
			t.Fatalf("New returned error: %v", err)
		}

		suffix := id[len(id)-suffixLength:]
		for _, r := range suffix {
			if !strings.ContainsRune(alphabet, r) {
				t.Fatalf("suffix %s contains %q outside the alphabet", suffix, r)
			}
		}
		for _, banned := range "IO01" {
			if strings.ContainsRune(suffix, banned) {
				t.Fatalf("suffix %s contains confusable character %q", suffix, banned)
			}
		}
	}
}

func TestMealIDDeterministicAndPadded(t *testing.T) {
	orderID := "ORD-20250314-ABCDEFGHJ"

	tests := []struct {
		position int
		want     string
	}{
		{1, "ORD-20250314-ABCDEFGHJ-001"},
		{2, "ORD-20250314-ABCDEFGHJ-002"},
		{10, "ORD-20250314-ABCDEFGHJ-010"},
		{123, "ORD-20250314-ABCDEFGHJ-123"},
	}

	for _, tc := range tests {
		if got := MealID(orderID, tc.position); got != tc.want {
			t.Fatalf("MealID(%d) = %s, want %s", tc.position, got, tc.want)
		}
		// same inputs, same id
		if again := MealID(orderID, tc.position); again != tc.want {
			t.Fatalf("MealID(%d) not stable: %s", tc.position, again)
		}
	}
}
