package models

// TopSigmaConfig is the Top SIGMA ranking document.
type TopSigmaConfig struct {
	Enabled bool `json:"enabled"`
	// PercentualPool is a fraction of the cycle value (0.045 for 4.5%).
	PercentualPool float64 `json:"percentualPool" validate:"gte=0,lte=1"`
	TopCount       int     `json:"topCount" validate:"gte=0"`
	// LevelWeights are whole percentages of the pool, rank 1 first.
	LevelWeights []float64 `json:"levelWeights" validate:"dive,gte=0"`
}

// DefaultTopSigmaConfig pays the top ten consultants 4.5% of the cycle.
func DefaultTopSigmaConfig() TopSigmaConfig {
	return TopSigmaConfig{
		Enabled:        true,
		PercentualPool: 0.045,
		TopCount:       10,
		LevelWeights:   []float64{20, 15, 12, 10, 9, 8, 7, 6, 6.5, 6.5},
	}
}
