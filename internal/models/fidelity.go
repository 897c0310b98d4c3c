package models

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FidelityLevel is the share of one fidelity level.
type FidelityLevel struct {
	// Percentage is a fraction of the pool (0.07 for 7%).
	Percentage float64 `json:"percentage" validate:"gte=0,lte=1"`
	// Value is the monetary share of the pool.
	Value float64 `json:"value" validate:"gte=0"`
}

// FidelityBonusConfig is the Fidelity Bonus document.
type FidelityBonusConfig struct {
	Enabled bool `json:"enabled"`
	// PercentualPool is a fraction of ValorBase (0.0125 for 1.25%).
	PercentualPool float64 `json:"percentualPool" validate:"gte=0,lte=1"`
	ValorBase      float64 `json:"valorBase" validate:"gte=0"`
	ValorPool      float64 `json:"valorPool" validate:"gte=0"`
	MaxLevels      int     `json:"maxLevels" validate:"gte=0"`
	// Levels is keyed L1..Ln.
	Levels map[string]FidelityLevel `json:"levels" validate:"dive"`
}

// LevelKey returns the key of the 1-based level n ("L3").
func LevelKey(n int) string {
	return fmt.Sprintf("L%d", n)
}

// OrderedLevels returns the levels sorted by level number. Keys that do not
// follow the Ln pattern sort last, by name.
func (c FidelityBonusConfig) OrderedLevels() []FidelityLevel {
	keys := make([]string, 0, len(c.Levels))
	for k := range c.Levels {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		ni, iok := levelNumber(keys[i])
		nj, jok := levelNumber(keys[j])
		switch {
		case iok && jok:
			return ni < nj
		case iok != jok:
			return iok
		default:
			return keys[i] < keys[j]
		}
	})

	out := make([]FidelityLevel, len(keys))
	for i, k := range keys {
		out[i] = c.Levels[k]
	}
	return out
}

func levelNumber(key string) (int, bool) {
	if !strings.HasPrefix(key, "L") {
		return 0, false
	}
	n, err := strconv.Atoi(key[1:])
	if err != nil {
		return 0, false
	}
	return n, true
}

// DefaultFidelityBonusConfig is 1.25% of a R$360 cycle split over six levels.
func DefaultFidelityBonusConfig() FidelityBonusConfig {
	pcts := []float64{0.07, 0.08, 0.10, 0.15, 0.25, 0.35}
	pool := 4.5
	levels := make(map[string]FidelityLevel, len(pcts))
	for i, p := range pcts {
		levels[LevelKey(i+1)] = FidelityLevel{Percentage: p, Value: pool * p}
	}
	return FidelityBonusConfig{
		Enabled:        true,
		PercentualPool: 0.0125,
		ValorBase:      360,
		ValorPool:      pool,
		MaxLevels:      len(pcts),
		Levels:         levels,
	}
}
