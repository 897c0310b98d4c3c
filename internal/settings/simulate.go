package settings

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"github.com/rsprolipsi/compplan/internal/calculator"
)

// Plan is the full compensation plan as edited on the four pages.
type Plan struct {
	Sigma    SigmaDraft
	Fidelity FidelityDraft
	TopSigma TopSigmaDraft
	Career   CareerDraft
}

// DefaultPlan holds the defaults of every page.
func DefaultPlan() Plan {
	return Plan{
		Sigma:    SigmaPage{}.Defaults(),
		Fidelity: FidelityPage{}.Defaults(),
		TopSigma: TopSigmaPage{}.Defaults(),
		Career:   CareerPage{}.Defaults(),
	}
}

// LoadPlan loads the four pages concurrently. Unlike a Controller it does not
// fall back to defaults: a payout computed from defaults would look real.
func LoadPlan(ctx context.Context, remote Remote) (Plan, error) {
	var p Plan
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		p.Sigma, err = loadPage[SigmaDraft](ctx, SigmaPage{}, remote)
		return err
	})
	g.Go(func() (err error) {
		p.Fidelity, err = loadPage[FidelityDraft](ctx, FidelityPage{}, remote)
		return err
	})
	g.Go(func() (err error) {
		p.TopSigma, err = loadPage[TopSigmaDraft](ctx, TopSigmaPage{}, remote)
		return err
	})
	g.Go(func() (err error) {
		p.Career, err = loadPage[CareerDraft](ctx, CareerPage{}, remote)
		return err
	})
	if err := g.Wait(); err != nil {
		return Plan{}, err
	}
	return p, nil
}

func loadPage[D any](ctx context.Context, page Page[D], remote Remote) (D, error) {
	d, err := page.Load(ctx, remote)
	if err != nil {
		return d, fmt.Errorf("load %s: %w", page.Name(), err)
	}
	return d, nil
}

// Scenario is one hypothetical cycle close.
type Scenario struct {
	// Uplines are the sponsors of the consultant who cycled, direct
	// sponsor first.
	Uplines []calculator.Upline
	// Ranking is the Top SIGMA ranking, first position first.
	Ranking []calculator.RankedConsultant
	// Lines are the career cycles produced by each direct line.
	Lines []calculator.LineCycles
	// Eligible decides who may be paid. Nil pays everyone.
	Eligible calculator.Eligibility
}

// PayoutSection is one simulated bonus pool and who it pays.
type PayoutSection struct {
	Name          string
	Pool          decimal.Decimal
	Beneficiaries []calculator.Beneficiary
	Paid          decimal.Decimal
}

// PinStanding is the career result of the scenario against one PIN.
type PinStanding struct {
	Name        string
	Required    int
	ValidCycles int
	Qualified   bool
	// CycleBonus is ValidCycles at the net career bonus per cycle.
	CycleBonus decimal.Decimal
	// Reward is the PIN reward, zero when not qualified.
	Reward decimal.Decimal
}

// Payout is the outcome of SimulatePayout.
type Payout struct {
	CyclePayout decimal.Decimal
	Sections    []PayoutSection
	Career      []PinStanding
	// Pin is the highest PIN qualified for, if any.
	Pin string
}

// SimulatePayout distributes the pools of plan over sc: depth and fidelity
// by dynamic compression over the uplines, Top SIGMA over the ranking, and
// the career ladder by VMEC-capped cycles.
func SimulatePayout(ctx context.Context, plan Plan, sc Scenario) (Payout, error) {
	checker := sc.Eligible
	if checker == nil {
		checker = calculator.Everyone
	}

	out := Payout{CyclePayout: plan.Sigma.PayoutValue}

	depthPool := plan.Sigma.DepthDistribution().PoolAmount()
	depth, err := calculator.DistributeLevels(ctx, depthPool, levelWeights(plan.Sigma.DepthLevels), sc.Uplines, checker)
	if err != nil {
		return Payout{}, fmt.Errorf("depth bonus: %w", err)
	}
	out.Sections = append(out.Sections, payoutSection("depth", depthPool, depth))

	fidelityPool := plan.Fidelity.Distribution().PoolAmount()
	fidelity, err := calculator.DistributeLevels(ctx, fidelityPool, levelWeights(plan.Fidelity.Levels), sc.Uplines, checker)
	if err != nil {
		return Payout{}, fmt.Errorf("fidelity bonus: %w", err)
	}
	out.Sections = append(out.Sections, payoutSection("fidelity", fidelityPool, fidelity))

	topPool := plan.TopSigma.Distribution().PoolAmount()
	ranks := make([]calculator.RankWeight, len(plan.TopSigma.Weights))
	for i, w := range plan.TopSigma.Weights {
		ranks[i] = calculator.RankWeight{Rank: i + 1, Percent: w}
	}
	top, err := calculator.DistributeRanks(ctx, topPool, ranks, sc.Ranking, checker)
	if err != nil {
		return Payout{}, fmt.Errorf("top sigma: %w", err)
	}
	out.Sections = append(out.Sections, payoutSection("top_sigma", topPool, top))

	perCycle := plan.Career.NetBonusPerCycle()
	for _, row := range plan.Career.Pins {
		valid := calculator.ValidCycles(sc.Lines, row.VMECRule())
		s := PinStanding{
			Name:        row.Name,
			Required:    row.Cycles,
			ValidCycles: valid,
			Qualified:   row.Active && valid >= row.Cycles,
			CycleBonus:  calculator.CareerBonus(valid, perCycle),
			Reward:      decimal.Zero,
		}
		if s.Qualified {
			s.Reward = row.Bonus
			out.Pin = row.Name
		}
		out.Career = append(out.Career, s)
	}
	return out, nil
}

func payoutSection(name string, pool decimal.Decimal, bs []calculator.Beneficiary) PayoutSection {
	return PayoutSection{Name: name, Pool: pool, Beneficiaries: bs, Paid: calculator.SumAmounts(bs)}
}

func levelWeights(levels []decimal.Decimal) []calculator.LevelWeight {
	out := make([]calculator.LevelWeight, len(levels))
	for i, p := range levels {
		out[i] = calculator.LevelWeight{Level: i + 1, Percent: p}
	}
	return out
}
