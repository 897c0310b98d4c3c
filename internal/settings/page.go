package settings

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/rsprolipsi/compplan/internal/calculator"
)

// Page describes one settings screen: its draft type, how the draft is loaded,
// validated and saved, and the values derived from it.
type Page[D any] interface {
	// Name is used in banners and logs ("top sigma").
	Name() string

	// Defaults returns the built-in draft used when loading fails.
	Defaults() D

	// Clone returns a deep copy of d.
	Clone(d D) D

	// Load fetches the remote configuration and converts it into a draft.
	Load(ctx context.Context, remote Remote) (D, error)

	// Validate runs the range checks and sum rules of the page.
	Validate(d D) []Issue

	// Save writes d as a full replacement of the remote configuration.
	// Pages that write in several steps record each completed step in d, so
	// a retry after a partial failure resumes instead of repeating it.
	Save(ctx context.Context, remote Remote, d *D) error

	// Preview derives pools and shares from d.
	Preview(d D) Preview
}

// Issue is one validation finding.
type Issue struct {
	Field       string
	Message     string
	Enforcement calculator.Enforcement
}

// Blocking reports whether the issue prevents a save.
func (i Issue) Blocking() bool {
	return i.Enforcement == calculator.Block
}

func blockIssue(field, msg string) Issue {
	return Issue{Field: field, Message: msg, Enforcement: calculator.Block}
}

func ruleIssue(field string, v *calculator.Violation) Issue {
	return Issue{Field: field, Message: v.Message, Enforcement: v.Enforcement}
}

// checkRule evaluates rule and appends an issue when it is violated.
func checkRule(issues []Issue, field string, rule calculator.SumRule, entries []calculator.Entry) []Issue {
	if _, v := rule.Evaluate(entries); v != nil {
		issues = append(issues, ruleIssue(field, v))
	}
	return issues
}

// ValidationError is returned by Save when a blocking issue stops the write.
type ValidationError struct {
	Issues []Issue
}

func (e *ValidationError) Error() string {
	var msgs []string
	for _, i := range e.Issues {
		if i.Blocking() {
			msgs = append(msgs, i.Message)
		}
	}
	return "validation failed: " + strings.Join(msgs, "; ")
}

// PreviewEntry is one derived share.
type PreviewEntry struct {
	Label      string
	Percentage decimal.Decimal
	Amount     decimal.Decimal
}

// Section is one derived pool and its shares. Check is nil when the section
// has no sum rule.
type Section struct {
	Name    string
	Pool    decimal.Decimal
	Entries []PreviewEntry
	Check   *calculator.SumCheck
}

// Preview holds every derived value of a draft. It is recomputed on each call
// and never stored.
type Preview struct {
	Sections []Section
}

// Section returns the named section.
func (p Preview) Section(name string) (Section, bool) {
	for _, s := range p.Sections {
		if s.Name == name {
			return s, true
		}
	}
	return Section{}, false
}

// distributionSection builds a section from a distribution, with its column
// total checked against 100.
func distributionSection(name string, d calculator.PercentDistribution, withCheck bool) Section {
	pool := d.PoolAmount()
	amounts := calculator.ComputeEntryAmounts(pool, d.Entries)
	entries := make([]PreviewEntry, len(d.Entries))
	for i, e := range d.Entries {
		entries[i] = PreviewEntry{Label: e.Label, Percentage: e.Percentage, Amount: amounts[i]}
	}

	s := Section{Name: name, Pool: pool, Entries: entries}
	if withCheck {
		check := calculator.ValidateSum(d.Entries, calculator.DefaultExpectedTotal, calculator.DefaultTolerance)
		s.Check = &check
	}
	return s
}

func cloneDecimals(in []decimal.Decimal) []decimal.Decimal {
	if in == nil {
		return nil
	}
	out := make([]decimal.Decimal, len(in))
	copy(out, in)
	return out
}

func entriesOf(labeler func(...float64) []calculator.Entry, values []decimal.Decimal) []calculator.Entry {
	entries := labeler(make([]float64, len(values))...)
	for i, v := range values {
		entries[i].Percentage = v
	}
	return entries
}

var hundred = decimal.NewFromInt(100)

// fraction converts a whole percentage into the fraction stored on the wire.
func fraction(pct decimal.Decimal) float64 {
	return calculator.Float(pct.Div(hundred))
}

// percent converts a wire fraction into a whole percentage.
func percent(f float64) decimal.Decimal {
	return calculator.Coerce(f).Mul(hundred)
}
