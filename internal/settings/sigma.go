package settings

import (
	"context"
	"fmt"
	"strconv"

	"github.com/shopspring/decimal"

	"github.com/rsprolipsi/compplan/internal/calculator"
	"github.com/rsprolipsi/compplan/internal/models"
)

// SigmaDraft is the editable SIGMA settings form behind the "save all"
// action. Cycle payout value and percentage are kept consistent through the
// Set* methods.
type SigmaDraft struct {
	CycleValue         decimal.Decimal
	PayoutValue        decimal.Decimal
	PayoutPercent      decimal.Decimal
	AutoReentryEnabled bool
	ReentryLimit       int
	SpilloverMode      string

	DepthBasePercent decimal.Decimal
	DepthLevels      []decimal.Decimal

	TopSigmaPercent decimal.Decimal
	TopSigmaRanks   []decimal.Decimal

	// Fidelity and Career are carried through unchanged; their own pages
	// edit them.
	Fidelity models.FidelityBonusSettings
	Career   models.CareerSettings
}

// SetCycleValue changes the cycle value and recomputes the payout value.
func (d *SigmaDraft) SetCycleValue(v decimal.Decimal) {
	d.CycleValue = v
	d.PayoutValue = calculator.ComputePoolAmount(v, d.PayoutPercent)
}

// SetPayoutPercent changes the payout percentage and recomputes the value.
func (d *SigmaDraft) SetPayoutPercent(p decimal.Decimal) {
	d.PayoutPercent = p
	d.PayoutValue = calculator.ComputePoolAmount(d.CycleValue, p)
}

// SetPayoutValue changes the payout value and recomputes the percentage.
func (d *SigmaDraft) SetPayoutValue(v decimal.Decimal) {
	d.PayoutValue = v
	if d.CycleValue.IsPositive() {
		d.PayoutPercent = v.Div(d.CycleValue).Mul(hundred)
	} else {
		d.PayoutPercent = decimal.Zero
	}
}

// DepthDistribution is the depth bonus pool over the cycle value.
func (d SigmaDraft) DepthDistribution() calculator.PercentDistribution {
	return calculator.PercentDistribution{
		BaseValue:      d.CycleValue,
		PoolPercentage: d.DepthBasePercent,
		Entries:        entriesOf(calculator.Levels, d.DepthLevels),
	}
}

// TopSigmaDistribution is the Top SIGMA pool over the cycle value.
func (d SigmaDraft) TopSigmaDistribution() calculator.PercentDistribution {
	return calculator.PercentDistribution{
		BaseValue:      d.CycleValue,
		PoolPercentage: d.TopSigmaPercent,
		Entries:        entriesOf(calculator.Ranks, d.TopSigmaRanks),
	}
}

// Set changes one field from its text form. Keys: cycle-value, payout-value,
// payout-percent, auto-reentry, reentry-limit, spillover, depth-percent,
// depth-levels, depth.N, top-percent, top-ranks and rank.N.
func (d *SigmaDraft) Set(key, value string) error {
	switch key {
	case "cycle-value", "payout-value", "payout-percent":
		v, err := parseAmount(value)
		if err != nil {
			return err
		}
		switch key {
		case "cycle-value":
			d.SetCycleValue(v)
		case "payout-value":
			d.SetPayoutValue(v)
		default:
			d.SetPayoutPercent(v)
		}
		return nil
	case "auto-reentry":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("invalid boolean %q", value)
		}
		d.AutoReentryEnabled = b
		return nil
	case "reentry-limit":
		n, err := parseCount(value)
		d.ReentryLimit = n
		return err
	case "spillover":
		d.SpilloverMode = value
		return nil
	case "depth-percent":
		v, err := parseAmount(value)
		d.DepthBasePercent = v
		return err
	case "depth-levels":
		l, err := parseList(value)
		if err == nil {
			d.DepthLevels = l
		}
		return err
	case "top-percent":
		v, err := parseAmount(value)
		d.TopSigmaPercent = v
		return err
	case "top-ranks":
		l, err := parseList(value)
		if err == nil {
			d.TopSigmaRanks = l
		}
		return err
	}

	prefix, i, _, ok := indexedKey(key)
	switch {
	case ok && prefix == "depth":
		return setIndexed(d.DepthLevels, i, value)
	case ok && prefix == "rank":
		return setIndexed(d.TopSigmaRanks, i, value)
	}
	return unknownField("sigma settings", key)
}

// SigmaPage is the combined SIGMA settings page.
type SigmaPage struct{}

var _ Page[SigmaDraft] = SigmaPage{}

func (SigmaPage) Name() string { return "sigma settings" }

func (SigmaPage) Defaults() SigmaDraft {
	return sigmaDraftFrom(models.DefaultSigmaSettings())
}

func (SigmaPage) Clone(d SigmaDraft) SigmaDraft {
	d.DepthLevels = cloneDecimals(d.DepthLevels)
	d.TopSigmaRanks = cloneDecimals(d.TopSigmaRanks)
	d.Fidelity.Levels = append([]models.LevelPercent(nil), d.Fidelity.Levels...)
	d.Career.Pins = append([]models.PinLevel(nil), d.Career.Pins...)
	return d
}

func (SigmaPage) Load(ctx context.Context, remote Remote) (SigmaDraft, error) {
	s, err := remote.GetSigmaSettings(ctx)
	if err != nil {
		return SigmaDraft{}, err
	}
	return sigmaDraftFrom(*s), nil
}

func sigmaDraftFrom(s models.SigmaSettings) SigmaDraft {
	def := models.DefaultSigmaSettings()
	if s.Cycle.Value <= 0 {
		s.Cycle = def.Cycle
	}
	if s.Cycle.SpilloverMode == "" {
		s.Cycle.SpilloverMode = def.Cycle.SpilloverMode
	}
	if len(s.DepthBonus.Levels) == 0 {
		s.DepthBonus = def.DepthBonus
	}
	if len(s.TopSigma.Ranks) == 0 {
		s.TopSigma = def.TopSigma
	}

	d := SigmaDraft{
		CycleValue:         calculator.Coerce(s.Cycle.Value),
		PayoutValue:        calculator.Coerce(s.Cycle.PayoutValue),
		PayoutPercent:      calculator.Coerce(s.Cycle.PayoutPercent),
		AutoReentryEnabled: s.Cycle.AutoReentryEnabled,
		ReentryLimit:       s.Cycle.AutoReentryLimitPerMonth,
		SpilloverMode:      s.Cycle.SpilloverMode,
		DepthBasePercent:   calculator.Coerce(s.DepthBonus.BasePercent),
		TopSigmaPercent:    calculator.Coerce(s.TopSigma.PercentTotal),
		Fidelity:           s.FidelityBonus,
		Career:             s.Career,
	}
	for _, l := range s.DepthBonus.Levels {
		d.DepthLevels = append(d.DepthLevels, calculator.Coerce(l.Percent))
	}
	for _, r := range s.TopSigma.Ranks {
		d.TopSigmaRanks = append(d.TopSigmaRanks, calculator.Coerce(r.Percent))
	}
	return d
}

// Validate blocks a non-positive cycle value, a payout above 100% and an
// unknown spillover mode. Depth levels that do not add up to 100% only warn.
func (SigmaPage) Validate(d SigmaDraft) []Issue {
	var issues []Issue
	if !d.CycleValue.IsPositive() {
		issues = append(issues, blockIssue("cycle-value", "Cycle value must be greater than 0"))
	}
	if d.PayoutPercent.GreaterThan(hundred) {
		issues = append(issues, blockIssue("payout-percent", "Cycle payout must be between 0 and 100%"))
	}
	if d.DepthBasePercent.GreaterThan(hundred) {
		issues = append(issues, blockIssue("depth-percent", "Depth bonus percentage must be between 0 and 100"))
	}
	if d.SpilloverMode != models.SpilloverUpline && d.SpilloverMode != models.SpilloverGlobal {
		issues = append(issues, blockIssue("spillover",
			fmt.Sprintf("Spillover must be %q or %q", models.SpilloverUpline, models.SpilloverGlobal)))
	}
	issues = checkRule(issues, "depth-levels",
		calculator.NewSumRule("depth bonus levels", calculator.Warn),
		entriesOf(calculator.Levels, d.DepthLevels))
	return issues
}

func (SigmaPage) Save(ctx context.Context, remote Remote, d *SigmaDraft) error {
	_, err := remote.UpdateSigmaSettings(ctx, sigmaSettingsFrom(*d))
	return err
}

func sigmaSettingsFrom(d SigmaDraft) *models.SigmaSettings {
	s := &models.SigmaSettings{
		Cycle: models.CycleSettings{
			Value:                    calculator.Float(d.CycleValue),
			PayoutValue:              calculator.Float(d.PayoutValue.Round(2)),
			PayoutPercent:            calculator.Float(d.PayoutPercent.Round(2)),
			AutoReentryEnabled:       d.AutoReentryEnabled,
			AutoReentryLimitPerMonth: d.ReentryLimit,
			SpilloverMode:            d.SpilloverMode,
		},
		DepthBonus: models.DepthBonusSettings{
			BasePercent:   calculator.Float(d.DepthBasePercent),
			BaseOverValue: calculator.Float(d.CycleValue),
			Levels:        make([]models.LevelPercent, len(d.DepthLevels)),
		},
		FidelityBonus: d.Fidelity,
		TopSigma: models.TopSigmaSettings{
			PercentTotal: calculator.Float(d.TopSigmaPercent),
			Ranks:        make([]models.RankPercent, len(d.TopSigmaRanks)),
		},
		Career: d.Career,
	}
	for i, p := range d.DepthLevels {
		s.DepthBonus.Levels[i] = models.LevelPercent{Level: i + 1, Percent: calculator.Float(p)}
	}
	for i, p := range d.TopSigmaRanks {
		s.TopSigma.Ranks[i] = models.RankPercent{Rank: i + 1, Percent: calculator.Float(p)}
	}
	if s.FidelityBonus.Levels == nil {
		s.FidelityBonus.Levels = []models.LevelPercent{}
	}
	if s.Career.Pins == nil {
		s.Career.Pins = []models.PinLevel{}
	}
	return s
}

func (SigmaPage) Preview(d SigmaDraft) Preview {
	return Preview{Sections: []Section{
		{Name: "cycle_payout", Pool: d.PayoutValue},
		distributionSection("depth", d.DepthDistribution(), true),
		distributionSection("top_sigma", d.TopSigmaDistribution(), false),
	}}
}
