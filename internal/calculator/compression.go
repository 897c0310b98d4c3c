package calculator

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Upline is a sponsor above the consultant who closed a cycle. Level 1 is the
// direct sponsor.
type Upline struct {
	ID    string
	Level int
}

// LevelWeight is the configured share of one depth level.
type LevelWeight struct {
	Level   int
	Percent decimal.Decimal
}

// RankWeight is the configured share of one Top SIGMA ranking position.
type RankWeight struct {
	Rank    int
	Percent decimal.Decimal
}

// RankedConsultant is a consultant at a ranking position.
type RankedConsultant struct {
	ID       string
	Position int
}

// Beneficiary is one paid share of a pool.
type Beneficiary struct {
	ConsultantID string
	Level        int
	Amount       decimal.Decimal
	Percent      decimal.Decimal
}

// Eligibility answers whether a consultant may receive a share, typically
// "active in the base matrix".
type Eligibility interface {
	Eligible(ctx context.Context, consultantID string) (bool, error)
}

// EligibilityFunc adapts a function to Eligibility.
type EligibilityFunc func(ctx context.Context, consultantID string) (bool, error)

// Eligible calls f.
func (f EligibilityFunc) Eligible(ctx context.Context, consultantID string) (bool, error) {
	return f(ctx, consultantID)
}

// Everyone treats every consultant as eligible.
var Everyone = EligibilityFunc(func(context.Context, string) (bool, error) { return true, nil })

// DistributeLevels splits pool across the configured levels with dynamic
// compression: each level is paid to the next eligible upline, skipping
// ineligible ones. Levels still unpaid when the upline chain runs out go to
// the last eligible upline. A level's amount is pool * weight / sum(weights),
// rounded to cents.
func DistributeLevels(ctx context.Context, pool decimal.Decimal, levels []LevelWeight, uplines []Upline, checker Eligibility) ([]Beneficiary, error) {
	sum := decimal.Zero
	for _, l := range levels {
		sum = sum.Add(l.Percent)
	}
	if sum.IsZero() {
		sum = decimal.NewFromInt(1)
	}

	weightFor := func(level int) decimal.Decimal {
		for _, l := range levels {
			if l.Level == level {
				return l.Percent
			}
		}
		return decimal.Zero
	}
	share := func(id string, level int) Beneficiary {
		w := weightFor(level)
		return Beneficiary{
			ConsultantID: id,
			Level:        level,
			Amount:       pool.Mul(w).Div(sum).Round(2),
			Percent:      w.Div(sum).Mul(hundred).Round(5),
		}
	}

	var (
		out    []Beneficiary
		last   *Upline
		target = 1
		next   = 0
	)
	for target <= len(levels) && next < len(uplines) {
		var chosen *Upline
		for next < len(uplines) {
			candidate := uplines[next]
			next++
			ok, err := checker.Eligible(ctx, candidate.ID)
			if err != nil {
				return nil, fmt.Errorf("failed to check eligibility of %s: %w", candidate.ID, err)
			}
			if ok {
				chosen = &candidate
				break
			}
		}
		if chosen == nil {
			target++
			continue
		}
		last = chosen
		out = append(out, share(chosen.ID, target))
		target++
	}

	for target <= len(levels) && last != nil {
		out = append(out, share(last.ID, target))
		target++
	}

	return out, nil
}

// DistributeRanks pays each eligible ranked consultant pool * rankPercent / 100,
// rounded to cents. Ineligible consultants are skipped and their share is not
// redistributed.
func DistributeRanks(ctx context.Context, pool decimal.Decimal, ranks []RankWeight, top []RankedConsultant, checker Eligibility) ([]Beneficiary, error) {
	byRank := make(map[int]decimal.Decimal, len(ranks))
	for _, r := range ranks {
		byRank[r.Rank] = r.Percent
	}

	var out []Beneficiary
	for _, c := range top {
		ok, err := checker.Eligible(ctx, c.ID)
		if err != nil {
			return nil, fmt.Errorf("failed to check eligibility of %s: %w", c.ID, err)
		}
		if !ok {
			continue
		}
		pct := byRank[c.Position]
		out = append(out, Beneficiary{
			ConsultantID: c.ID,
			Level:        c.Position,
			Amount:       pool.Mul(pct).Div(hundred).Round(2),
			Percent:      pct,
		})
	}
	return out, nil
}

// SumAmounts adds up the amounts paid to beneficiaries.
func SumAmounts(bs []Beneficiary) decimal.Decimal {
	total := decimal.Zero
	for _, b := range bs {
		total = total.Add(b.Amount)
	}
	return total
}
