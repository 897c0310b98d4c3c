// Package calculator implements the percent-distribution model shared by the
// compensation settings: pools derived from a base value and a percentage, and
// ordered per-level shares of those pools.
package calculator

import (
	"fmt"
	"math"

	"github.com/shopspring/decimal"
)

var (
	hundred = decimal.NewFromInt(100)

	// DefaultExpectedTotal is the total the entry percentages must add up to.
	DefaultExpectedTotal = decimal.NewFromInt(100)

	// DefaultTolerance is the accepted absolute difference between the entry
	// total and the expected total.
	DefaultTolerance = decimal.New(1, -1)
)

// Entry is one level or rank of a distribution. Order is significant:
// entries[0] is level 1 (or rank 1).
type Entry struct {
	Label      string
	Percentage decimal.Decimal
}

// PercentDistribution is a pool taken from BaseValue and split across Entries.
type PercentDistribution struct {
	BaseValue      decimal.Decimal
	PoolPercentage decimal.Decimal
	Entries        []Entry
}

// SumCheck is the outcome of comparing the entry total with the expected total.
type SumCheck struct {
	Valid         bool
	ActualTotal   decimal.Decimal
	ExpectedTotal decimal.Decimal
	// Difference is ActualTotal - ExpectedTotal.
	Difference decimal.Decimal
}

// ComputePoolAmount returns baseValue * poolPercentage / 100.
// Callers coerce invalid input with Coerce before calling.
func ComputePoolAmount(baseValue, poolPercentage decimal.Decimal) decimal.Decimal {
	return baseValue.Mul(poolPercentage).Div(hundred)
}

// ComputeEntryAmounts returns poolAmount * entry.Percentage / 100 for each
// entry, in input order.
func ComputeEntryAmounts(poolAmount decimal.Decimal, entries []Entry) []decimal.Decimal {
	amounts := make([]decimal.Decimal, len(entries))
	for i, e := range entries {
		amounts[i] = poolAmount.Mul(e.Percentage).Div(hundred)
	}
	return amounts
}

// ValidateSum adds up the entry percentages and compares the total with
// expectedTotal. The result is advisory; SumRule decides whether a failed
// check blocks anything.
func ValidateSum(entries []Entry, expectedTotal, tolerance decimal.Decimal) SumCheck {
	total := Total(entries)
	diff := total.Sub(expectedTotal)
	return SumCheck{
		Valid:         diff.Abs().LessThanOrEqual(tolerance),
		ActualTotal:   total,
		ExpectedTotal: expectedTotal,
		Difference:    diff,
	}
}

// Total returns the sum of the entry percentages.
func Total(entries []Entry) decimal.Decimal {
	total := decimal.Zero
	for _, e := range entries {
		total = total.Add(e.Percentage)
	}
	return total
}

// PoolAmount is the derived pool of the distribution.
func (d PercentDistribution) PoolAmount() decimal.Decimal {
	return ComputePoolAmount(d.BaseValue, d.PoolPercentage)
}

// EntryAmounts is the derived monetary share of every entry.
func (d PercentDistribution) EntryAmounts() []decimal.Decimal {
	return ComputeEntryAmounts(d.PoolAmount(), d.Entries)
}

// Coerce converts a form value into a non-negative decimal. Negative values,
// NaN and infinities become zero.
func Coerce(v float64) decimal.Decimal {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return decimal.Zero
	}
	return decimal.NewFromFloat(v)
}

// Levels builds entries labelled L1..Ln from plain percentages.
func Levels(percentages ...float64) []Entry {
	return labelled("L", percentages)
}

// Ranks builds entries labelled #1..#n from plain percentages.
func Ranks(percentages ...float64) []Entry {
	return labelled("#", percentages)
}

func labelled(prefix string, percentages []float64) []Entry {
	entries := make([]Entry, len(percentages))
	for i, p := range percentages {
		entries[i] = Entry{
			Label:      fmt.Sprintf("%s%d", prefix, i+1),
			Percentage: Coerce(p),
		}
	}
	return entries
}

// Float converts a decimal back to float64 for wire payloads.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}
