package settings

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rsprolipsi/compplan/internal/calculator"
)

// ErrUnknownField is returned by the draft Set methods for unsupported keys.
var ErrUnknownField = errors.New("unknown field")

// parseAmount reads a form number. Both "4.5" and "4,5" are accepted, as are
// currency strings ("R$ 1.350,00"). Negative values become 0, the way the
// admin forms coerce their inputs.
func parseAmount(s string) (decimal.Decimal, error) {
	d, err := calculator.ParseBRL(s)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, nil
	}
	return d, nil
}

// parseList reads "7, 8, 10" or "7/8/10" into percentages.
func parseList(s string) ([]decimal.Decimal, error) {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || r == '/' || r == ';' || r == ' '
	})
	out := make([]decimal.Decimal, 0, len(parts))
	for _, p := range parts {
		d, err := decimal.NewFromString(strings.TrimSuffix(p, "%"))
		if err != nil {
			return nil, fmt.Errorf("invalid number %q in list", p)
		}
		if d.IsNegative() {
			d = decimal.Zero
		}
		out = append(out, d)
	}
	return out, nil
}

func parseCount(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid whole number %q", s)
	}
	if n < 0 {
		return 0, nil
	}
	return n, nil
}

// indexedKey splits "level.3" into ("level", 2) with a 0-based index, and
// "pin.2.name" into ("pin", 1, "name").
func indexedKey(key string) (prefix string, index int, rest string, ok bool) {
	parts := strings.SplitN(key, ".", 3)
	if len(parts) < 2 {
		return "", 0, "", false
	}
	n, err := strconv.Atoi(parts[1])
	if err != nil || n < 1 {
		return "", 0, "", false
	}
	if len(parts) == 3 {
		rest = parts[2]
	}
	return parts[0], n - 1, rest, true
}

func setIndexed(values []decimal.Decimal, index int, raw string) error {
	if index >= len(values) {
		return fmt.Errorf("index %d out of range (have %d)", index+1, len(values))
	}
	d, err := parseAmount(raw)
	if err != nil {
		return err
	}
	values[index] = d
	return nil
}

func unknownField(page, key string) error {
	return fmt.Errorf("%s: %w %q", page, ErrUnknownField, key)
}
