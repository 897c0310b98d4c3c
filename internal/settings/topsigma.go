package settings

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/rsprolipsi/compplan/internal/calculator"
	"github.com/rsprolipsi/compplan/internal/models"
)

// DefaultCycleValue is the SIGMA cycle value the Top SIGMA pool is shown
// against.
var DefaultCycleValue = decimal.NewFromInt(360)

// TopSigmaDraft is the editable Top SIGMA form. BaseValue only feeds the
// preview and is not saved.
type TopSigmaDraft struct {
	PoolPercentage decimal.Decimal
	TopCount       int
	Weights        []decimal.Decimal
	BaseValue      decimal.Decimal
}

// Distribution is the Top SIGMA pool and its ranking weights.
func (d TopSigmaDraft) Distribution() calculator.PercentDistribution {
	return calculator.PercentDistribution{
		BaseValue:      d.BaseValue,
		PoolPercentage: d.PoolPercentage,
		Entries:        entriesOf(calculator.Ranks, d.Weights),
	}
}

// Set changes one field from its text form. Keys: percentage, base,
// top-count, weights (a list) and weight.N.
func (d *TopSigmaDraft) Set(key, value string) error {
	var err error
	switch key {
	case "percentage":
		d.PoolPercentage, err = parseAmount(value)
	case "base":
		d.BaseValue, err = parseAmount(value)
	case "top-count":
		d.TopCount, err = parseCount(value)
	case "weights":
		d.Weights, err = parseList(value)
	default:
		prefix, i, _, ok := indexedKey(key)
		if !ok || prefix != "weight" {
			return unknownField("top sigma", key)
		}
		err = setIndexed(d.Weights, i, value)
	}
	return err
}

// TopSigmaPage is the Top SIGMA settings page.
type TopSigmaPage struct{}

var _ Page[TopSigmaDraft] = TopSigmaPage{}

func (TopSigmaPage) Name() string { return "top sigma" }

func (TopSigmaPage) Defaults() TopSigmaDraft {
	return topSigmaDraftFrom(models.DefaultTopSigmaConfig())
}

func (TopSigmaPage) Clone(d TopSigmaDraft) TopSigmaDraft {
	d.Weights = cloneDecimals(d.Weights)
	return d
}

func (TopSigmaPage) Load(ctx context.Context, remote Remote) (TopSigmaDraft, error) {
	cfg, err := remote.GetTopSigmaConfig(ctx)
	if err != nil {
		return TopSigmaDraft{}, err
	}
	return topSigmaDraftFrom(*cfg), nil
}

func topSigmaDraftFrom(cfg models.TopSigmaConfig) TopSigmaDraft {
	def := models.DefaultTopSigmaConfig()

	d := TopSigmaDraft{
		PoolPercentage: percent(cfg.PercentualPool),
		TopCount:       cfg.TopCount,
		BaseValue:      DefaultCycleValue,
	}
	// Saved documents are always enabled, so a zero pool there is a chosen
	// value. Only a document never saved falls back to the default.
	if d.PoolPercentage.IsZero() && !cfg.Enabled {
		d.PoolPercentage = percent(def.PercentualPool)
	}
	if d.TopCount == 0 {
		d.TopCount = def.TopCount
	}
	weights := cfg.LevelWeights
	if len(weights) == 0 {
		weights = def.LevelWeights
	}
	for _, w := range weights {
		d.Weights = append(d.Weights, calculator.Coerce(w))
	}
	return d
}

// Validate blocks weights that do not add up to 100 (within 0.1) and a top
// count that does not match the number of weights.
func (TopSigmaPage) Validate(d TopSigmaDraft) []Issue {
	var issues []Issue
	if d.PoolPercentage.GreaterThan(hundred) {
		issues = append(issues, blockIssue("percentage", "Top SIGMA percentage must be between 0 and 100"))
	}
	issues = checkRule(issues, "weights",
		calculator.NewSumRule("ranking weights", calculator.Block),
		entriesOf(calculator.Ranks, d.Weights))
	if d.TopCount != len(d.Weights) {
		issues = append(issues, blockIssue("top-count",
			fmt.Sprintf("Top count %d does not match %d ranking weights", d.TopCount, len(d.Weights))))
	}
	return issues
}

func (TopSigmaPage) Save(ctx context.Context, remote Remote, d *TopSigmaDraft) error {
	weights := make([]float64, len(d.Weights))
	for i, w := range d.Weights {
		weights[i] = calculator.Float(w)
	}
	_, err := remote.UpdateTopSigmaConfig(ctx, &models.TopSigmaConfig{
		Enabled:        true,
		PercentualPool: fraction(d.PoolPercentage),
		TopCount:       d.TopCount,
		LevelWeights:   weights,
	})
	return err
}

func (TopSigmaPage) Preview(d TopSigmaDraft) Preview {
	return Preview{Sections: []Section{
		distributionSection("top_sigma", d.Distribution(), true),
	}}
}
