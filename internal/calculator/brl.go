package calculator

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ParseBRL parses Brazilian currency strings such as "R$ 1.350,00", "13,50"
// or "-R$ 2,00". Without a comma, dots that split the digits into groups of
// three are thousands separators ("R$ 1.350" is 1350); any other single dot
// is a decimal point, so a plain "1350.5" is accepted too.
func ParseBRL(s string) (decimal.Decimal, error) {
	clean := strings.TrimSpace(s)
	clean = strings.ReplaceAll(clean, "R$", "")
	clean = strings.ReplaceAll(clean, " ", "")
	clean = strings.ReplaceAll(clean, "\u00a0", "")

	neg := strings.HasPrefix(clean, "-")
	clean = strings.TrimPrefix(clean, "-")

	switch {
	case strings.Contains(clean, ","):
		clean = strings.ReplaceAll(clean, ".", "")
		clean = strings.ReplaceAll(clean, ",", ".")
	case thousandsGrouped(clean):
		clean = strings.ReplaceAll(clean, ".", "")
	}
	if clean == "" || clean == "—" {
		return decimal.Zero, fmt.Errorf("invalid currency value %q", s)
	}

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid currency value %q: %w", s, err)
	}
	if neg {
		d = d.Neg()
	}
	return d, nil
}

// thousandsGrouped reports whether s looks like "1.350" or "105.300.000".
func thousandsGrouped(s string) bool {
	groups := strings.Split(s, ".")
	if len(groups) < 2 || len(groups[0]) == 0 || len(groups[0]) > 3 {
		return false
	}
	for i, g := range groups {
		if i > 0 && len(g) != 3 {
			return false
		}
		for _, r := range g {
			if r < '0' || r > '9' {
				return false
			}
		}
	}
	return true
}

// FormatBRL renders d as "R$ 1.350,00".
func FormatBRL(d decimal.Decimal) string {
	fixed := d.Abs().StringFixed(2)
	intPart, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(r)
	}

	sign := ""
	if d.IsNegative() {
		sign = "-"
	}
	return fmt.Sprintf("%sR$ %s,%s", sign, b.String(), frac)
}
