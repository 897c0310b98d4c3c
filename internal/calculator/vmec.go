package calculator

import (
	"strings"

	"github.com/shopspring/decimal"
)

// VMEC is the career "maximum volume per team and cycle" rule of a PIN: the
// number of active lines required and the per-line percentage caps.
type VMEC struct {
	RequiredLines int
	Percentages   []decimal.Decimal
}

// LineCycles is the cycle count produced by one direct line.
type LineCycles struct {
	Line   int
	Cycles int
}

// ParseVMEC reads the table notation used for PIN levels, e.g. "60 / 40" or
// "50|30|20". Separators are '/', '|' and ','. Unparseable parts are dropped,
// so "—" yields no percentages.
func ParseVMEC(s string) []decimal.Decimal {
	parts := strings.FieldsFunc(s, func(r rune) bool {
		return r == '/' || r == '|' || r == ','
	})
	var out []decimal.Decimal
	for _, p := range parts {
		p = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(p), "%"))
		d, err := decimal.NewFromString(p)
		if err != nil {
			continue
		}
		out = append(out, d)
	}
	return out
}

// ValidCycles counts the career cycles that qualify under the VMEC caps.
// Without VMEC every cycle counts. With fewer active lines than required
// nothing counts. Otherwise no line may contribute more than
// floor(total * max(percentages) / 100) cycles.
func ValidCycles(lines []LineCycles, vmec VMEC) int {
	total := 0
	active := 0
	for _, l := range lines {
		total += l.Cycles
		if l.Cycles > 0 {
			active++
		}
	}

	if vmec.RequiredLines == 0 || len(vmec.Percentages) == 0 {
		return total
	}
	if active < vmec.RequiredLines {
		return 0
	}

	maxPct := decimal.Max(vmec.Percentages[0], vmec.Percentages[1:]...)
	limit := int(decimal.NewFromInt(int64(total)).Mul(maxPct).Div(hundred).Floor().IntPart())

	valid := 0
	for _, l := range lines {
		if l.Cycles <= 0 {
			continue
		}
		if l.Cycles <= limit {
			valid += l.Cycles
		} else {
			valid += limit
		}
	}
	return valid
}

// CareerBonus is validCycles * valuePerCycle, rounded to cents.
func CareerBonus(validCycles int, valuePerCycle decimal.Decimal) decimal.Decimal {
	return valuePerCycle.Mul(decimal.NewFromInt(int64(validCycles))).Round(2)
}
