package models

// Spillover modes of the SIGMA matrix.
const (
	SpilloverUpline = "ascendente"
	SpilloverGlobal = "global"
)

// SigmaSettings is the combined document saved by the SIGMA page "save all"
// action. Percentages in this document are whole percentages.
type SigmaSettings struct {
	Cycle         CycleSettings         `json:"cycle"`
	DepthBonus    DepthBonusSettings    `json:"depthBonus"`
	FidelityBonus FidelityBonusSettings `json:"fidelityBonus"`
	TopSigma      TopSigmaSettings      `json:"topSigma"`
	Career        CareerSettings        `json:"career"`
}

// CycleSettings describe one SIGMA cycle and its payout.
type CycleSettings struct {
	Value                    float64 `json:"value" validate:"gte=0"`
	PayoutValue              float64 `json:"payoutValue" validate:"gte=0"`
	PayoutPercent            float64 `json:"payoutPercent" validate:"gte=0,lte=100"`
	AutoReentryEnabled       bool    `json:"autoReentryEnabled"`
	AutoReentryLimitPerMonth int     `json:"autoReentryLimitPerMonth" validate:"gte=0"`
	SpilloverMode            string  `json:"spilloverMode" validate:"omitempty,oneof=ascendente global"`
}

// LevelPercent is the share of one depth or fidelity level.
type LevelPercent struct {
	Level   int     `json:"level" validate:"gte=1"`
	Percent float64 `json:"percent" validate:"gte=0,lte=100"`
}

// RankPercent is the share of one ranking position.
type RankPercent struct {
	Rank    int     `json:"rank" validate:"gte=1"`
	Percent float64 `json:"percent" validate:"gte=0,lte=100"`
}

// DepthBonusSettings take BasePercent of BaseOverValue and split it over Levels.
type DepthBonusSettings struct {
	BasePercent   float64        `json:"basePercent" validate:"gte=0,lte=100"`
	BaseOverValue float64        `json:"baseOverValue" validate:"gte=0"`
	Levels        []LevelPercent `json:"levels" validate:"dive"`
}

// FidelityBonusSettings is the fidelity section of the combined document.
type FidelityBonusSettings struct {
	PercentTotal float64        `json:"percentTotal" validate:"gte=0,lte=100"`
	Levels       []LevelPercent `json:"levels" validate:"dive"`
}

// TopSigmaSettings is the Top SIGMA section of the combined document.
type TopSigmaSettings struct {
	PercentTotal float64       `json:"percentTotal" validate:"gte=0,lte=100"`
	Ranks        []RankPercent `json:"ranks" validate:"dive"`
}

// CareerSettings is the career section of the combined document.
type CareerSettings struct {
	PercentTotal  float64    `json:"percentTotal" validate:"gte=0,lte=100"`
	ValuePerCycle float64    `json:"valuePerCycle" validate:"gte=0"`
	Pins          []PinLevel `json:"pins" validate:"dive"`
}

// DefaultSigmaSettings is a R$360 cycle paying 30%, with the standard depth and
// Top SIGMA tables.
func DefaultSigmaSettings() SigmaSettings {
	depth := []float64{7, 8, 10, 15, 25, 35}
	ranks := []float64{2.0, 1.5, 1.2, 1.0, 0.8, 0.7, 0.6, 0.5, 0.4, 0.3}

	s := SigmaSettings{
		Cycle: CycleSettings{
			Value:                    360,
			PayoutValue:              108,
			PayoutPercent:            30,
			AutoReentryEnabled:       true,
			AutoReentryLimitPerMonth: 10,
			SpilloverMode:            SpilloverUpline,
		},
		DepthBonus: DepthBonusSettings{
			BasePercent:   6.81,
			BaseOverValue: 360,
		},
		FidelityBonus: FidelityBonusSettings{Levels: []LevelPercent{}},
		TopSigma:      TopSigmaSettings{PercentTotal: 4.5},
		Career:        CareerSettings{Pins: []PinLevel{}},
	}
	for i, p := range depth {
		s.DepthBonus.Levels = append(s.DepthBonus.Levels, LevelPercent{Level: i + 1, Percent: p})
	}
	for i, p := range ranks {
		s.TopSigma.Ranks = append(s.TopSigma.Ranks, RankPercent{Rank: i + 1, Percent: p})
	}
	return s
}
