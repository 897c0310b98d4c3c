package settings

import (
	"context"

	"github.com/rsprolipsi/compplan/internal/models"
)

// FidelityRemote reads and replaces the Fidelity Bonus document.
type FidelityRemote interface {
	GetFidelityBonusConfig(ctx context.Context) (*models.FidelityBonusConfig, error)
	UpdateFidelityBonusConfig(ctx context.Context, cfg *models.FidelityBonusConfig) (*models.FidelityBonusConfig, error)
}

// TopSigmaRemote reads and replaces the Top SIGMA document.
type TopSigmaRemote interface {
	GetTopSigmaConfig(ctx context.Context) (*models.TopSigmaConfig, error)
	UpdateTopSigmaConfig(ctx context.Context, cfg *models.TopSigmaConfig) (*models.TopSigmaConfig, error)
}

// SigmaRemote reads and replaces the combined SIGMA settings document.
type SigmaRemote interface {
	GetSigmaSettings(ctx context.Context) (*models.SigmaSettings, error)
	UpdateSigmaSettings(ctx context.Context, s *models.SigmaSettings) (*models.SigmaSettings, error)
}

// CareerRemote reads and writes the Career Plan rules and ladder.
type CareerRemote interface {
	GetCareerRules(ctx context.Context) (*models.CareerRules, error)
	UpdateCareerRules(ctx context.Context, r *models.CareerRules) (*models.CareerRules, error)
	ListPinLevels(ctx context.Context) ([]models.PinLevel, error)
	CreatePinLevel(ctx context.Context, level *models.PinLevel) (*models.PinLevel, error)
	UpdatePinLevel(ctx context.Context, level *models.PinLevel) (*models.PinLevel, error)
	DeletePinLevel(ctx context.Context, id string) error
}

// Remote is the configuration API the settings pages load from and save to.
type Remote interface {
	FidelityRemote
	TopSigmaRemote
	SigmaRemote
	CareerRemote
}
