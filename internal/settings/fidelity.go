package settings

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/rsprolipsi/compplan/internal/calculator"
	"github.com/rsprolipsi/compplan/internal/models"
)

// FidelityDraft is the editable Fidelity Bonus form. Percentages are whole
// percentages.
type FidelityDraft struct {
	SourcePercentage decimal.Decimal
	SourceValue      decimal.Decimal
	Levels           []decimal.Decimal
}

// Distribution is the fidelity pool and its levels.
func (d FidelityDraft) Distribution() calculator.PercentDistribution {
	return calculator.PercentDistribution{
		BaseValue:      d.SourceValue,
		PoolPercentage: d.SourcePercentage,
		Entries:        entriesOf(calculator.Levels, d.Levels),
	}
}

// Set changes one field from its text form. Keys: percentage, base, levels
// (a list) and level.N.
func (d *FidelityDraft) Set(key, value string) error {
	var err error
	switch key {
	case "percentage":
		d.SourcePercentage, err = parseAmount(value)
	case "base":
		d.SourceValue, err = parseAmount(value)
	case "levels":
		d.Levels, err = parseList(value)
	default:
		prefix, i, _, ok := indexedKey(key)
		if !ok || prefix != "level" {
			return unknownField("fidelity", key)
		}
		err = setIndexed(d.Levels, i, value)
	}
	return err
}

// FidelityPage is the Fidelity Bonus settings page.
type FidelityPage struct{}

var _ Page[FidelityDraft] = FidelityPage{}

func (FidelityPage) Name() string { return "fidelity bonus" }

func (FidelityPage) Defaults() FidelityDraft {
	return fidelityDraftFrom(models.DefaultFidelityBonusConfig())
}

func (FidelityPage) Clone(d FidelityDraft) FidelityDraft {
	d.Levels = cloneDecimals(d.Levels)
	return d
}

func (FidelityPage) Load(ctx context.Context, remote Remote) (FidelityDraft, error) {
	cfg, err := remote.GetFidelityBonusConfig(ctx)
	if err != nil {
		return FidelityDraft{}, err
	}
	return fidelityDraftFrom(*cfg), nil
}

func fidelityDraftFrom(cfg models.FidelityBonusConfig) FidelityDraft {
	def := models.DefaultFidelityBonusConfig()

	d := FidelityDraft{
		SourcePercentage: percent(cfg.PercentualPool),
		SourceValue:      calculator.Coerce(cfg.ValorBase),
	}
	if d.SourcePercentage.IsZero() {
		d.SourcePercentage = percent(def.PercentualPool)
	}
	if d.SourceValue.IsZero() {
		d.SourceValue = calculator.Coerce(def.ValorBase)
	}

	levels := cfg.OrderedLevels()
	if len(levels) == 0 {
		levels = def.OrderedLevels()
	}
	for _, l := range levels {
		d.Levels = append(d.Levels, percent(l.Percentage))
	}
	return d
}

// Validate blocks a pool outside (0, 100] and levels adding up to more than
// 100%. Levels short of 100% only warn.
func (FidelityPage) Validate(d FidelityDraft) []Issue {
	var issues []Issue
	if !d.SourcePercentage.IsPositive() || d.SourcePercentage.GreaterThan(hundred) {
		issues = append(issues, blockIssue("percentage", "Fidelity percentage must be between 0 and 100"))
	}

	entries := entriesOf(calculator.Levels, d.Levels)
	before := len(issues)
	issues = checkRule(issues, "levels", calculator.CapRule("fidelity levels", calculator.Block), entries)
	if len(issues) == before {
		issues = checkRule(issues, "levels", calculator.NewSumRule("fidelity levels", calculator.Warn), entries)
	}
	return issues
}

func (FidelityPage) Save(ctx context.Context, remote Remote, d *FidelityDraft) error {
	_, err := remote.UpdateFidelityBonusConfig(ctx, fidelityConfigFrom(*d))
	return err
}

func fidelityConfigFrom(d FidelityDraft) *models.FidelityBonusConfig {
	dist := d.Distribution()
	pool := dist.PoolAmount()
	amounts := dist.EntryAmounts()

	cfg := &models.FidelityBonusConfig{
		Enabled:        true,
		PercentualPool: fraction(d.SourcePercentage),
		ValorBase:      calculator.Float(d.SourceValue),
		ValorPool:      calculator.Float(pool),
		MaxLevels:      len(d.Levels),
		Levels:         make(map[string]models.FidelityLevel, len(d.Levels)),
	}
	for i, p := range d.Levels {
		cfg.Levels[models.LevelKey(i+1)] = models.FidelityLevel{
			Percentage: fraction(p),
			Value:      calculator.Float(amounts[i]),
		}
	}
	return cfg
}

func (FidelityPage) Preview(d FidelityDraft) Preview {
	return Preview{Sections: []Section{
		distributionSection("fidelity", d.Distribution(), true),
	}}
}
