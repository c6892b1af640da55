package sqlite

import (
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// toCents converts a price to the integer cents stored in *_cents columns.
// Fractions of a cent are rounded half away from zero.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

// fromCents converts a stored cents value back to a decimal price.
func fromCents(cents int64) decimal.Decimal {
	return decimal.New(cents, -2)
}

// encodeList stores an ordered list (features, screenshots) as JSON text.
// A nil list is stored as "[]" so reads always return a non-nil slice.
func encodeList(items []string) (string, error) {
	if items == nil {
		items = []string{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("encoding list: %w", err)
	}
	return string(b), nil
}

func decodeList(raw string) ([]string, error) {
	items := []string{}
	if raw == "" {
		return items, nil
	}
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		return nil, fmt.Errorf("decoding list: %w", err)
	}
	return items, nil
}
