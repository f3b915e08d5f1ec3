// Package orderid generates the customer-facing order and meal identifiers.
package orderid

import (
	"crypto/rand"
	"fmt"
	"time"
)

// Suffix alphabet leaves out I, O, 0 and 1 so ids survive being read over
// the phone or written on a lunch bag.
const alphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const suffixLength = 9

// New returns an order id of the form ORD-YYYYMMDD-XXXXXXXXX.
func New(now time.Time) (string, error) {
	var buf [suffixLength]byte
	if _, err := rand.Read(buf[:]); err != nil {
		return "", err
	}

	suffix := make([]byte, suffixLength)
	for i, b := range buf {
		// len(alphabet) is 32, which divides 256 evenly, so the modulo
		// introduces no bias.
		suffix[i] = alphabet[int(b)%len(alphabet)]
	}

	return fmt.Sprintf("ORD-%s-%s", now.Format("20060102"), suffix), nil
}

// MealID derives the id for the meal at the given 1-based position within
// an order. The same order and position always yield the same id, which is
// what keeps webhook replays from minting duplicate meal documents.
func MealID(orderID string, position int) string {
	return fmt.Sprintf("%s-%03d", orderID, position)
}
