package settings

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsprolipsi/compplan/internal/calculator"
)

func activeExcept(ids ...string) calculator.Eligibility {
	inactive := make(map[string]bool, len(ids))
	for _, id := range ids {
		inactive[id] = true
	}
	return calculator.EligibilityFunc(func(_ context.Context, id string) (bool, error) {
		return !inactive[id], nil
	})
}

func TestSimulatePayout(t *testing.T) {
	sc := Scenario{
		Uplines:  []calculator.Upline{{ID: "A", Level: 1}, {ID: "B", Level: 2}, {ID: "C", Level: 3}},
		Ranking:  []calculator.RankedConsultant{{ID: "R1", Position: 1}, {ID: "R2", Position: 2}, {ID: "R3", Position: 3}},
		Lines:    []calculator.LineCycles{{Line: 1, Cycles: 100}, {Line: 2, Cycles: 50}, {Line: 3, Cycles: 10}},
		Eligible: activeExcept("B", "R2"),
	}

	p, err := SimulatePayout(context.Background(), DefaultPlan(), sc)
	require.NoError(t, err)
	assert.True(t, p.CyclePayout.Equal(decimal.NewFromInt(108)))
	require.Len(t, p.Sections, 3)

	tests := []struct {
		section   string
		pool      string
		wantFirst calculator.Beneficiary
		wantLen   int
	}{
		{section: "depth", pool: "24.516", wantFirst: calculator.Beneficiary{ConsultantID: "A", Level: 1, Amount: decimal.RequireFromString("1.72")}, wantLen: 6},
		{section: "fidelity", pool: "4.5", wantFirst: calculator.Beneficiary{ConsultantID: "A", Level: 1, Amount: decimal.RequireFromString("0.32")}, wantLen: 6},
		{section: "top_sigma", pool: "16.2", wantFirst: calculator.Beneficiary{ConsultantID: "R1", Level: 1, Amount: decimal.RequireFromString("3.24")}, wantLen: 2},
	}
	for i, tt := range tests {
		t.Run(tt.section, func(t *testing.T) {
			s := p.Sections[i]
			assert.Equal(t, tt.section, s.Name)
			assert.True(t, s.Pool.Equal(decimal.RequireFromString(tt.pool)), "pool = %s", s.Pool)
			require.Len(t, s.Beneficiaries, tt.wantLen)

			first := s.Beneficiaries[0]
			assert.Equal(t, tt.wantFirst.ConsultantID, first.ConsultantID)
			assert.Equal(t, tt.wantFirst.Level, first.Level)
			assert.True(t, first.Amount.Equal(tt.wantFirst.Amount), "first amount = %s", first.Amount)
			assert.True(t, s.Paid.Equal(calculator.SumAmounts(s.Beneficiaries)))
			for _, b := range s.Beneficiaries {
				assert.NotContains(t, []string{"B", "R2"}, b.ConsultantID, "inactive consultants are skipped")
			}
		})
	}

	top := p.Sections[2].Beneficiaries
	assert.Equal(t, "R3", top[1].ConsultantID)
	assert.Equal(t, 3, top[1].Level)
	assert.True(t, p.Sections[2].Paid.Equal(decimal.RequireFromString("5.18")), "paid = %s", p.Sections[2].Paid)

	require.Len(t, p.Career, 14)
	assert.Equal(t, "Safira", p.Pin)
	safira := p.Career[4]
	assert.Equal(t, 156, safira.ValidCycles, "the 100-cycle line is capped at 60%")
	assert.True(t, safira.Qualified)
	assert.True(t, safira.Reward.Equal(decimal.NewFromInt(405)), "reward = %s", safira.Reward)
	assert.True(t, safira.CycleBonus.Equal(decimal.RequireFromString("3588.62")), "cycle bonus = %s", safira.CycleBonus)
	assert.False(t, p.Career[5].Qualified)
	assert.True(t, p.Career[5].Reward.IsZero())
}

func TestSimulatePayoutEligibilityError(t *testing.T) {
	boom := errors.New("matrix unavailable")
	failing := calculator.EligibilityFunc(func(context.Context, string) (bool, error) {
		return false, boom
	})
	_, err := SimulatePayout(context.Background(), DefaultPlan(), Scenario{
		Uplines:  []calculator.Upline{{ID: "A", Level: 1}},
		Eligible: failing,
	})
	require.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "depth bonus")
}

func TestLoadPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("loads every page", func(t *testing.T) {
		remote := newFakeRemote()
		p, err := LoadPlan(ctx, remote)
		require.NoError(t, err)
		assert.Len(t, p.Career.Pins, 14)
		assert.Len(t, p.TopSigma.Weights, 10)
		gets, _ := remote.counts()
		assert.Equal(t, 5, gets)
	})

	t.Run("no fallback to defaults", func(t *testing.T) {
		remote := newFakeRemote()
		remote.getErr = errors.New("connection refused")
		_, err := LoadPlan(ctx, remote)
		require.ErrorIs(t, err, remote.getErr)
	})
}
