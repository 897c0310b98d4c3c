package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"connectrpc.com/connect"
	"github.com/go-playground/validator/v10"

	"github.com/rsprolipsi/compplan/internal/auth"
	"github.com/rsprolipsi/compplan/internal/metrics"
	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/storage"
	"github.com/rsprolipsi/compplan/pkg/api"
)

// ConfigService implements the Connect ConfigService over a Store. Documents
// are replaced whole on every write; the last write wins.
type ConfigService struct {
	store    storage.Store
	validate *validator.Validate
	metrics  *metrics.Metrics
	logger   *slog.Logger
}

var _ api.ConfigServiceHandler = (*ConfigService)(nil)

// NewConfigService creates a ConfigService. m may be nil.
func NewConfigService(store storage.Store, m *metrics.Metrics, logger *slog.Logger) *ConfigService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ConfigService{
		store:    store,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		metrics:  m,
		logger:   logger,
	}
}

// loadDocument decodes the stored document of key into out and reports
// whether one was stored.
func (s *ConfigService) loadDocument(ctx context.Context, key models.DocumentKey, out any) (bool, error) {
	body, err := s.store.GetDocument(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		s.logger.Debug("Document not stored yet, serving defaults", "document", key)
		return false, nil
	}
	if err != nil {
		s.logger.Error("Failed to read document", "document", key, "error", err)
		return false, storeError(err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		s.logger.Error("Stored document is corrupt", "document", key, "error", err)
		return false, connect.NewError(connect.CodeDataLoss, fmt.Errorf("failed to decode %s: %w", key, err))
	}
	return true, nil
}

// saveDocument validates doc and replaces the stored document of key.
func (s *ConfigService) saveDocument(ctx context.Context, key models.DocumentKey, doc any, rules ...ruleCheck) error {
	if err := s.checkDocument(key, doc, rules...); err != nil {
		s.metrics.ObserveSave(key.String(), metrics.OutcomeRejected)
		s.logger.Info("Document rejected", "document", key, "error", err)
		return err
	}

	body, err := json.Marshal(doc)
	if err != nil {
		s.metrics.ObserveSave(key.String(), metrics.OutcomeError)
		return connect.NewError(connect.CodeInternal, fmt.Errorf("failed to encode %s: %w", key, err))
	}
	if err := s.store.PutDocument(ctx, key, body); err != nil {
		s.metrics.ObserveSave(key.String(), metrics.OutcomeError)
		s.logger.Error("Failed to save document", "document", key, "error", err)
		return storeError(err)
	}

	s.metrics.ObserveSave(key.String(), metrics.OutcomeOK)
	s.logger.Info("Document saved", "document", key, "user_id", callerID(ctx))
	return nil
}

func callerID(ctx context.Context) string {
	c, _ := auth.FromContext(ctx)
	return c.UserID
}

func (s *ConfigService) require(ctx context.Context, p auth.Permission) error {
	if _, err := auth.Require(ctx, p); err != nil {
		return authError(err)
	}
	return nil
}

func missingDocument() error {
	return connect.NewError(connect.CodeInvalidArgument, errors.New("config is required"))
}

// GetFidelityBonusConfig returns the stored Fidelity Bonus document, or the
// defaults when none has been saved.
func (s *ConfigService) GetFidelityBonusConfig(ctx context.Context, req *connect.Request[api.GetConfigRequest]) (*connect.Response[api.FidelityBonusConfigResponse], error) {
	if err := s.require(ctx, auth.PermViewCompensation); err != nil {
		return nil, err
	}
	var cfg models.FidelityBonusConfig
	found, err := s.loadDocument(ctx, models.DocFidelityBonus, &cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg = models.DefaultFidelityBonusConfig()
	}
	return connect.NewResponse(&api.FidelityBonusConfigResponse{Config: &cfg}), nil
}

// UpdateFidelityBonusConfig replaces the Fidelity Bonus document.
func (s *ConfigService) UpdateFidelityBonusConfig(ctx context.Context, req *connect.Request[api.FidelityBonusConfigRequest]) (*connect.Response[api.FidelityBonusConfigResponse], error) {
	if err := s.require(ctx, auth.PermEditCompensation); err != nil {
		return nil, err
	}
	cfg := req.Msg.Config
	if cfg == nil {
		return nil, missingDocument()
	}
	if err := s.saveDocument(ctx, models.DocFidelityBonus, cfg, fidelityRules(cfg)...); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.FidelityBonusConfigResponse{Config: cfg}), nil
}

func (s *ConfigService) GetTopSigmaConfig(ctx context.Context, req *connect.Request[api.GetConfigRequest]) (*connect.Response[api.TopSigmaConfigResponse], error) {
	if err := s.require(ctx, auth.PermViewCompensation); err != nil {
		return nil, err
	}
	var cfg models.TopSigmaConfig
	found, err := s.loadDocument(ctx, models.DocTopSigma, &cfg)
	if err != nil {
		return nil, err
	}
	if !found {
		cfg = models.DefaultTopSigmaConfig()
	}
	return connect.NewResponse(&api.TopSigmaConfigResponse{Config: &cfg}), nil
}

// UpdateTopSigmaConfig replaces the Top SIGMA document. The ranking weights
// must add up to 100 and match the top count.
func (s *ConfigService) UpdateTopSigmaConfig(ctx context.Context, req *connect.Request[api.TopSigmaConfigRequest]) (*connect.Response[api.TopSigmaConfigResponse], error) {
	if err := s.require(ctx, auth.PermEditCompensation); err != nil {
		return nil, err
	}
	cfg := req.Msg.Config
	if cfg == nil {
		return nil, missingDocument()
	}
	if cfg.TopCount != len(cfg.LevelWeights) {
		s.metrics.ObserveSave(models.DocTopSigma.String(), metrics.OutcomeRejected)
		return nil, connect.NewError(connect.CodeInvalidArgument,
			fmt.Errorf("topCount %d does not match %d level weights", cfg.TopCount, len(cfg.LevelWeights)))
	}
	if err := s.saveDocument(ctx, models.DocTopSigma, cfg, topSigmaRules(cfg)...); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.TopSigmaConfigResponse{Config: cfg}), nil
}

func (s *ConfigService) GetSigmaSettings(ctx context.Context, req *connect.Request[api.GetConfigRequest]) (*connect.Response[api.SigmaSettingsResponse], error) {
	if err := s.require(ctx, auth.PermViewCompensation); err != nil {
		return nil, err
	}
	var settings models.SigmaSettings
	found, err := s.loadDocument(ctx, models.DocSigmaSettings, &settings)
	if err != nil {
		return nil, err
	}
	if !found {
		settings = models.DefaultSigmaSettings()
	}
	return connect.NewResponse(&api.SigmaSettingsResponse{Config: &settings}), nil
}

// UpdateSigmaSettings replaces the combined SIGMA settings document.
func (s *ConfigService) UpdateSigmaSettings(ctx context.Context, req *connect.Request[api.SigmaSettingsRequest]) (*connect.Response[api.SigmaSettingsResponse], error) {
	if err := s.require(ctx, auth.PermEditCompensation); err != nil {
		return nil, err
	}
	settings := req.Msg.Config
	if settings == nil {
		return nil, missingDocument()
	}
	if settings.Cycle.Value <= 0 {
		s.metrics.ObserveSave(models.DocSigmaSettings.String(), metrics.OutcomeRejected)
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("cycle value must be greater than 0"))
	}
	if err := s.saveDocument(ctx, models.DocSigmaSettings, settings, sigmaRules(settings)...); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.SigmaSettingsResponse{Config: settings}), nil
}

func (s *ConfigService) GetCareerRules(ctx context.Context, req *connect.Request[api.GetConfigRequest]) (*connect.Response[api.CareerRulesResponse], error) {
	if err := s.require(ctx, auth.PermViewCompensation); err != nil {
		return nil, err
	}
	var rules models.CareerRules
	found, err := s.loadDocument(ctx, models.DocCareerRules, &rules)
	if err != nil {
		return nil, err
	}
	if !found {
		rules = models.DefaultCareerRules()
	}
	return connect.NewResponse(&api.CareerRulesResponse{Config: &rules}), nil
}

func (s *ConfigService) UpdateCareerRules(ctx context.Context, req *connect.Request[api.CareerRulesRequest]) (*connect.Response[api.CareerRulesResponse], error) {
	if err := s.require(ctx, auth.PermEditCompensation); err != nil {
		return nil, err
	}
	rules := req.Msg.Config
	if rules == nil {
		return nil, missingDocument()
	}
	if err := s.saveDocument(ctx, models.DocCareerRules, rules); err != nil {
		return nil, err
	}
	return connect.NewResponse(&api.CareerRulesResponse{Config: rules}), nil
}

// ListPinLevels returns the stored ladder. An empty ladder is returned as is;
// the Career Plan page substitutes the official one.
func (s *ConfigService) ListPinLevels(ctx context.Context, req *connect.Request[api.ListPinLevelsRequest]) (*connect.Response[api.ListPinLevelsResponse], error) {
	if err := s.require(ctx, auth.PermViewCompensation); err != nil {
		return nil, err
	}
	levels, err := s.store.ListPinLevels(ctx)
	if err != nil {
		s.logger.Error("Failed to list pin levels", "error", err)
		return nil, storeError(err)
	}
	return connect.NewResponse(&api.ListPinLevelsResponse{Levels: levels}), nil
}

// CreatePinLevel adds a PIN. The ladder holds at most models.MaxPinLevels.
func (s *ConfigService) CreatePinLevel(ctx context.Context, req *connect.Request[api.PinLevelRequest]) (*connect.Response[api.PinLevelResponse], error) {
	if err := s.require(ctx, auth.PermEditCompensation); err != nil {
		return nil, err
	}
	level := req.Msg.Level
	if level == nil {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("level is required"))
	}
	if err := s.checkDocument(models.DocPinLevels, level, pinRules(level)...); err != nil {
		return nil, err
	}

	existing, err := s.store.ListPinLevels(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	if len(existing) >= models.MaxPinLevels {
		return nil, connect.NewError(connect.CodeFailedPrecondition,
			fmt.Errorf("the career plan already has %d PINs", models.MaxPinLevels))
	}

	level.ID = ""
	level.Code = models.PinCode(level.Name)
	if err := s.store.CreatePinLevel(ctx, level); err != nil {
		s.logger.Error("Failed to create pin level", "name", level.Name, "error", err)
		return nil, storeError(err)
	}
	s.logger.Info("Pin level created", "pin_id", level.ID, "name", level.Name, "user_id", callerID(ctx))
	return connect.NewResponse(&api.PinLevelResponse{Level: level}), nil
}

// UpdatePinLevel replaces an existing PIN.
func (s *ConfigService) UpdatePinLevel(ctx context.Context, req *connect.Request[api.PinLevelRequest]) (*connect.Response[api.PinLevelResponse], error) {
	if err := s.require(ctx, auth.PermEditCompensation); err != nil {
		return nil, err
	}
	level := req.Msg.Level
	if level == nil || level.ID == "" || models.IsTemporaryID(level.ID) {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("a stored level id is required"))
	}
	if err := s.checkDocument(models.DocPinLevels, level, pinRules(level)...); err != nil {
		return nil, err
	}

	level.Code = models.PinCode(level.Name)
	if err := s.store.UpdatePinLevel(ctx, level); err != nil {
		s.logger.Warn("Failed to update pin level", "pin_id", level.ID, "error", err)
		return nil, storeError(err)
	}
	s.logger.Info("Pin level updated", "pin_id", level.ID, "user_id", callerID(ctx))
	return connect.NewResponse(&api.PinLevelResponse{Level: level}), nil
}

func (s *ConfigService) DeletePinLevel(ctx context.Context, req *connect.Request[api.DeletePinLevelRequest]) (*connect.Response[api.DeletePinLevelResponse], error) {
	if err := s.require(ctx, auth.PermEditCompensation); err != nil {
		return nil, err
	}
	if req.Msg.ID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errors.New("id is required"))
	}
	if err := s.store.DeletePinLevel(ctx, req.Msg.ID); err != nil {
		s.logger.Warn("Failed to delete pin level", "pin_id", req.Msg.ID, "error", err)
		return nil, storeError(err)
	}
	s.logger.Info("Pin level deleted", "pin_id", req.Msg.ID, "user_id", callerID(ctx))
	return connect.NewResponse(&api.DeletePinLevelResponse{}), nil
}
