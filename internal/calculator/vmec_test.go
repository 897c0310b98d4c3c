package calculator

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidCycles(t *testing.T) {
	tests := []struct {
		name  string
		lines []LineCycles
		vmec  VMEC
		want  int
	}{
		{
			name:  "two lines capped at 60",
			lines: []LineCycles{{Line: 1, Cycles: 100}, {Line: 2, Cycles: 50}},
			vmec:  VMEC{RequiredLines: 2, Percentages: []decimal.Decimal{dec("60"), dec("40")}},
			want:  140,
		},
		{
			name:  "three lines capped at 50",
			lines: []LineCycles{{Line: 1, Cycles: 60}, {Line: 2, Cycles: 30}, {Line: 3, Cycles: 10}},
			vmec:  VMEC{RequiredLines: 3, Percentages: []decimal.Decimal{dec("50"), dec("30"), dec("20")}},
			want:  90,
		},
		{
			name:  "not enough active lines",
			lines: []LineCycles{{Line: 1, Cycles: 100}, {Line: 2, Cycles: 0}},
			vmec:  VMEC{RequiredLines: 2, Percentages: []decimal.Decimal{dec("60"), dec("40")}},
			want:  0,
		},
		{
			name:  "no vmec counts everything",
			lines: []LineCycles{{Line: 1, Cycles: 5}, {Line: 2, Cycles: 3}},
			vmec:  VMEC{},
			want:  8,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ValidCycles(tt.lines, tt.vmec))
		})
	}
}

func TestParseVMEC(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "60 / 40", want: []string{"60", "40"}},
		{in: "50|30|20", want: []string{"50", "30", "20"}},
		{in: "100 %", want: []string{"100"}},
		{in: "—", want: nil},
		{in: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got := ParseVMEC(tt.in)
			require.Len(t, got, len(tt.want))
			for i, w := range tt.want {
				assert.True(t, got[i].Equal(dec(w)), "part %d = %s, want %s", i, got[i], w)
			}
		})
	}
}

func TestCareerBonus(t *testing.T) {
	got := CareerBonus(140, dec("23.004"))
	assert.True(t, got.Equal(dec("3220.56")), "got %s", got)
}
