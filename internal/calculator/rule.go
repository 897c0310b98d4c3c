package calculator

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Comparison selects how a total is compared with the expected total.
type Comparison int

const (
	// Exact requires |total - expected| <= tolerance.
	Exact Comparison = iota
	// AtMost requires total <= expected + tolerance.
	AtMost
)

func (c Comparison) String() string {
	switch c {
	case Exact:
		return "exact"
	case AtMost:
		return "at_most"
	default:
		return fmt.Sprintf("comparison(%d)", int(c))
	}
}

// Enforcement decides what a violated rule does to a save.
type Enforcement int

const (
	// Block stops the save and keeps the draft in editing.
	Block Enforcement = iota
	// Warn reports the violation and lets the save proceed.
	Warn
)

func (e Enforcement) String() string {
	switch e {
	case Block:
		return "block"
	case Warn:
		return "warn"
	default:
		return fmt.Sprintf("enforcement(%d)", int(e))
	}
}

// SumRule is the "shares must add up to a total" business rule with its
// enforcement policy made explicit.
type SumRule struct {
	Name        string
	Expected    decimal.Decimal
	Tolerance   decimal.Decimal
	Comparison  Comparison
	Enforcement Enforcement
}

// Violation describes a failed rule.
type Violation struct {
	Rule        string
	Enforcement Enforcement
	Check       SumCheck
	Message     string
}

func (v Violation) Error() string {
	return v.Message
}

// Blocking reports whether the violation must stop a save.
func (v Violation) Blocking() bool {
	return v.Enforcement == Block
}

// NewSumRule returns an Exact rule against 100 with the default tolerance.
func NewSumRule(name string, enforcement Enforcement) SumRule {
	return SumRule{
		Name:        name,
		Expected:    DefaultExpectedTotal,
		Tolerance:   DefaultTolerance,
		Comparison:  Exact,
		Enforcement: enforcement,
	}
}

// CapRule returns an AtMost rule against 100 with no tolerance.
func CapRule(name string, enforcement Enforcement) SumRule {
	return SumRule{
		Name:        name,
		Expected:    DefaultExpectedTotal,
		Tolerance:   decimal.Zero,
		Comparison:  AtMost,
		Enforcement: enforcement,
	}
}

// Evaluate checks entries against the rule. The returned violation is nil
// when the rule holds.
func (r SumRule) Evaluate(entries []Entry) (SumCheck, *Violation) {
	check := ValidateSum(entries, r.Expected, r.Tolerance)
	if r.Comparison == AtMost {
		check.Valid = check.Difference.LessThanOrEqual(r.Tolerance)
	}
	if check.Valid {
		return check, nil
	}

	var msg string
	switch r.Comparison {
	case AtMost:
		msg = fmt.Sprintf("%s: total %s%% exceeds %s%%",
			r.Name, check.ActualTotal.StringFixed(2), r.Expected.StringFixed(2))
	default:
		msg = fmt.Sprintf("%s: total %s%% must be %s%% (difference %s)",
			r.Name, check.ActualTotal.StringFixed(2), r.Expected.StringFixed(2), check.Difference.StringFixed(2))
	}
	return check, &Violation{
		Rule:        r.Name,
		Enforcement: r.Enforcement,
		Check:       check,
		Message:     msg,
	}
}
