package models

import (
	"strings"

	"github.com/google/uuid"
)

// TemporaryIDPrefix marks PIN rows that exist only in an unsaved draft.
const TemporaryIDPrefix = "new_"

// MaxPinLevels is the largest ladder the Career Plan accepts.
const MaxPinLevels = 20

// PinLevel is one rank of the Career Plan ladder.
//
// The column names are historical: DisplayOrder carries the number of cycles
// required for the PIN, RequiredPersonalRecruits the minimum number of active
// lines, Benefits the VMEC notation ("60 / 40") and RequiredPV the reward in
// cents.
type PinLevel struct {
	ID                       string  `json:"id,omitempty"`
	Name                     string  `json:"name" validate:"required,max=80"`
	Code                     string  `json:"code"`
	DisplayOrder             int     `json:"display_order" validate:"gte=0"`
	RequiredPersonalRecruits int     `json:"required_personal_recruits" validate:"gte=0"`
	RequiredTeamVolume       float64 `json:"required_team_volume" validate:"gte=0"`
	Benefits                 string  `json:"benefits"`
	RequiredPV               int64   `json:"required_pv" validate:"gte=0"`
	BonusPercentage          float64 `json:"bonus_percentage" validate:"gte=0,lte=100"`
	PinImage                 *string `json:"pin_image"`
	IsActive                 bool    `json:"is_active"`
	CreatedAt                int64   `json:"created_at,omitempty"`
	UpdatedAt                int64   `json:"updated_at,omitempty"`
}

// CareerRules are the general Career Plan rules.
type CareerRules struct {
	// BonusFactorValue is the cycle value the career bonus is taken from.
	BonusFactorValue float64 `json:"bonusFactorValue" validate:"gte=0"`
	// BonusPercentage is a whole percentage (6.39).
	BonusPercentage float64 `json:"bonusPercentage" validate:"gte=0,lte=100"`
	// CalculationPeriod is one of Mensal, Trimestral, Semestral, Anual.
	CalculationPeriod string `json:"calculationPeriod" validate:"oneof=Mensal Trimestral Semestral Anual"`
}

// PinCode derives the code stored with a PIN from its name: lower case, every
// character outside [a-z0-9] replaced by '-'.
func PinCode(name string) string {
	return strings.Map(func(r rune) rune {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			return r
		}
		return '-'
	}, strings.ToLower(name))
}

// NewTemporaryID returns an ID for a PIN row that has not been saved yet.
func NewTemporaryID() string {
	return TemporaryIDPrefix + uuid.New().String()[:8]
}

// IsTemporaryID reports whether id was produced by NewTemporaryID.
func IsTemporaryID(id string) bool {
	return id == "" || strings.HasPrefix(id, TemporaryIDPrefix)
}

// DefaultCareerRules are used when no rules have been saved.
func DefaultCareerRules() CareerRules {
	return CareerRules{
		BonusFactorValue:  360,
		BonusPercentage:   6.39,
		CalculationPeriod: "Trimestral",
	}
}

// DefaultPinLevels is the official 14-row ladder, used when the server has no
// PIN rows or cannot be reached.
func DefaultPinLevels() []PinLevel {
	rows := []struct {
		name   string
		cycles int
		lines  int
		vmec   string
		reward int64
	}{
		{"Iniciante", 0, 0, "—", 0},
		{"Bronze", 5, 0, "—", 1350},
		{"Prata", 15, 1, "100 %", 4050},
		{"Ouro", 70, 1, "100 %", 18900},
		{"Safira", 150, 2, "60 / 40", 40500},
		{"Esmeralda", 300, 2, "60 / 40", 81000},
		{"Topázio", 500, 2, "60 / 40", 135000},
		{"Rubi", 750, 3, "50 / 30 / 20", 202500},
		{"Diamante", 1500, 3, "50 / 30 / 20", 405000},
		{"Duplo Diamante", 3000, 4, "40 / 30 / 20 / 10", 1845000},
		{"Triplo Diamante", 5000, 5, "35 / 25 / 20 / 10 / 10", 3645000},
		{"Diamante Red", 15000, 6, "30 / 20 / 18 / 12 / 10 / 10", 6750000},
		{"Diamante Blue", 25000, 6, "30 / 20 / 18 / 12 / 10 / 10", 10530000},
		{"Diamante Black", 50000, 6, "30 / 20 / 18 / 12 / 10 / 10", 13500000},
	}

	levels := make([]PinLevel, len(rows))
	for i, r := range rows {
		levels[i] = PinLevel{
			ID:                       NewTemporaryID(),
			Name:                     r.name,
			Code:                     PinCode(r.name),
			DisplayOrder:             r.cycles,
			RequiredPersonalRecruits: r.lines,
			Benefits:                 r.vmec,
			RequiredPV:               r.reward,
			IsActive:                 true,
		}
	}
	return levels
}
