package service

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rsprolipsi/compplan/internal/auth"
	"github.com/rsprolipsi/compplan/internal/metrics"
	"github.com/rsprolipsi/compplan/internal/middleware"
	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/storage/sqlite"
	"github.com/rsprolipsi/compplan/pkg/api"
)

const testPassword = "correct-horse-battery"

type testServer struct {
	config *api.ConfigServiceClient
	auth   *api.AuthServiceClient
	tokens map[models.Role]string
}

// setupTestServer serves both services over a temp sqlite database and
// returns clients plus one token per role.
func setupTestServer(t *testing.T) *testServer {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("service-test-secret-0123456789ab", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)

	ts := &testServer{tokens: make(map[models.Role]string)}
	for _, role := range []models.Role{models.RoleAdmin, models.RoleFinance, models.RoleViewer} {
		user, err := authenticator.Register(context.Background(), string(role)+"@example.com", string(role), testPassword, role)
		require.NoError(t, err)
		token, err := jwtManager.Generate(user)
		require.NoError(t, err)
		ts.tokens[role] = token
	}

	configPath, configHandler := api.NewConfigServiceHandler(
		NewConfigService(store, metrics.New(), nil),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	)
	authPath, authHandler := api.NewAuthServiceHandler(
		NewAuthService(authenticator, store, jwtManager, nil),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	)

	mux := http.NewServeMux()
	mux.Handle(configPath, configHandler)
	mux.Handle(authPath, authHandler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	ts.config = api.NewConfigServiceClient(server.Client(), server.URL)
	ts.auth = api.NewAuthServiceClient(server.Client(), server.URL)
	return ts
}

func withToken[T any](msg *T, token string) *connect.Request[T] {
	req := connect.NewRequest(msg)
	if token != "" {
		req.Header().Set("Authorization", "Bearer "+token)
	}
	return req
}

func TestConfigServiceDefaults(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	token := ts.tokens[models.RoleViewer]

	top, err := ts.config.GetTopSigmaConfig(ctx, withToken(&api.GetConfigRequest{}, token))
	require.NoError(t, err)
	assert.Equal(t, 10, top.Msg.Config.TopCount)
	assert.Len(t, top.Msg.Config.LevelWeights, 10)

	fidelity, err := ts.config.GetFidelityBonusConfig(ctx, withToken(&api.GetConfigRequest{}, token))
	require.NoError(t, err)
	assert.InDelta(t, 0.0125, fidelity.Msg.Config.PercentualPool, 1e-9)
	assert.Len(t, fidelity.Msg.Config.Levels, 6)

	sigma, err := ts.config.GetSigmaSettings(ctx, withToken(&api.GetConfigRequest{}, token))
	require.NoError(t, err)
	assert.Equal(t, models.SpilloverUpline, sigma.Msg.Config.Cycle.SpilloverMode)

	rules, err := ts.config.GetCareerRules(ctx, withToken(&api.GetConfigRequest{}, token))
	require.NoError(t, err)
	assert.Equal(t, "Trimestral", rules.Msg.Config.CalculationPeriod)

	levels, err := ts.config.ListPinLevels(ctx, withToken(&api.ListPinLevelsRequest{}, token))
	require.NoError(t, err)
	assert.Empty(t, levels.Msg.Levels)
}

func TestConfigServiceAuthorization(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	cfg := models.DefaultTopSigmaConfig()

	tests := []struct {
		name     string
		token    string
		wantCode connect.Code
	}{
		{name: "anonymous", token: "", wantCode: connect.CodeUnauthenticated},
		{name: "bad token", token: "not-a-jwt", wantCode: connect.CodeUnauthenticated},
		{name: "viewer", token: ts.tokens[models.RoleViewer], wantCode: connect.CodePermissionDenied},
		{name: "finance", token: ts.tokens[models.RoleFinance]},
		{name: "admin", token: ts.tokens[models.RoleAdmin]},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ts.config.UpdateTopSigmaConfig(ctx, withToken(&api.TopSigmaConfigRequest{Config: &cfg}, tt.token))
			if tt.wantCode == 0 {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantCode, connect.CodeOf(err))
		})
	}
}

func TestUpdateTopSigmaConfig(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	token := ts.tokens[models.RoleFinance]

	tests := []struct {
		name     string
		cfg      models.TopSigmaConfig
		wantCode connect.Code
	}{
		{
			name: "weights add up to 100",
			cfg:  models.TopSigmaConfig{Enabled: true, PercentualPool: 0.05, TopCount: 3, LevelWeights: []float64{50, 30, 20}},
		},
		{
			name:     "weights short of 100",
			cfg:      models.TopSigmaConfig{Enabled: true, PercentualPool: 0.05, TopCount: 3, LevelWeights: []float64{50, 30, 10}},
			wantCode: connect.CodeInvalidArgument,
		},
		{
			name:     "top count mismatch",
			cfg:      models.TopSigmaConfig{Enabled: true, PercentualPool: 0.05, TopCount: 10, LevelWeights: []float64{50, 50}},
			wantCode: connect.CodeInvalidArgument,
		},
		{
			name:     "pool above 100%",
			cfg:      models.TopSigmaConfig{Enabled: true, PercentualPool: 1.5, TopCount: 1, LevelWeights: []float64{100}},
			wantCode: connect.CodeInvalidArgument,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := tt.cfg
			_, err := ts.config.UpdateTopSigmaConfig(ctx, withToken(&api.TopSigmaConfigRequest{Config: &cfg}, token))
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, connect.CodeOf(err))
				return
			}
			require.NoError(t, err)
		})
	}

	got, err := ts.config.GetTopSigmaConfig(ctx, withToken(&api.GetConfigRequest{}, token))
	require.NoError(t, err)
	assert.Equal(t, []float64{50, 30, 20}, got.Msg.Config.LevelWeights, "rejected writes must not replace the stored document")
}

func TestUpdateFidelityBonusConfig(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	token := ts.tokens[models.RoleAdmin]

	cfg := models.FidelityBonusConfig{
		Enabled:        true,
		PercentualPool: 0.02,
		ValorBase:      360,
		ValorPool:      7.2,
		MaxLevels:      3,
		Levels: map[string]models.FidelityLevel{
			"L1": {Percentage: 0.5, Value: 3.6},
			"L2": {Percentage: 0.3, Value: 2.16},
			"L3": {Percentage: 0.1, Value: 0.72},
		},
	}
	_, err := ts.config.UpdateFidelityBonusConfig(ctx, withToken(&api.FidelityBonusConfigRequest{Config: &cfg}, token))
	require.NoError(t, err, "levels short of 100% only warn")

	got, err := ts.config.GetFidelityBonusConfig(ctx, withToken(&api.GetConfigRequest{}, token))
	require.NoError(t, err)
	assert.Len(t, got.Msg.Config.Levels, 3, "stored levels replace the defaults")
	assert.InDelta(t, 0.02, got.Msg.Config.PercentualPool, 1e-9)

	cfg.Levels["L4"] = models.FidelityLevel{Percentage: 0.2}
	_, err = ts.config.UpdateFidelityBonusConfig(ctx, withToken(&api.FidelityBonusConfigRequest{Config: &cfg}, token))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = ts.config.UpdateFidelityBonusConfig(ctx, withToken(&api.FidelityBonusConfigRequest{}, token))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestUpdateSigmaSettings(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	token := ts.tokens[models.RoleAdmin]

	settings := models.DefaultSigmaSettings()
	settings.Cycle.SpilloverMode = models.SpilloverGlobal
	settings.Cycle.AutoReentryLimitPerMonth = 4
	_, err := ts.config.UpdateSigmaSettings(ctx, withToken(&api.SigmaSettingsRequest{Config: &settings}, token))
	require.NoError(t, err)

	got, err := ts.config.GetSigmaSettings(ctx, withToken(&api.GetConfigRequest{}, token))
	require.NoError(t, err)
	assert.Equal(t, models.SpilloverGlobal, got.Msg.Config.Cycle.SpilloverMode)
	assert.Equal(t, 4, got.Msg.Config.Cycle.AutoReentryLimitPerMonth)

	bad := models.DefaultSigmaSettings()
	bad.Cycle.Value = 0
	_, err = ts.config.UpdateSigmaSettings(ctx, withToken(&api.SigmaSettingsRequest{Config: &bad}, token))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	bad = models.DefaultSigmaSettings()
	bad.Cycle.SpilloverMode = "sideways"
	_, err = ts.config.UpdateSigmaSettings(ctx, withToken(&api.SigmaSettingsRequest{Config: &bad}, token))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestUpdateCareerRules(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	token := ts.tokens[models.RoleFinance]

	rules := models.CareerRules{BonusFactorValue: 400, BonusPercentage: 7, CalculationPeriod: "Mensal"}
	_, err := ts.config.UpdateCareerRules(ctx, withToken(&api.CareerRulesRequest{Config: &rules}, token))
	require.NoError(t, err)

	got, err := ts.config.GetCareerRules(ctx, withToken(&api.GetConfigRequest{}, token))
	require.NoError(t, err)
	assert.Equal(t, rules, *got.Msg.Config)

	rules.CalculationPeriod = "Semanal"
	_, err = ts.config.UpdateCareerRules(ctx, withToken(&api.CareerRulesRequest{Config: &rules}, token))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))
}

func TestPinLevelLifecycle(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	token := ts.tokens[models.RoleAdmin]

	created, err := ts.config.CreatePinLevel(ctx, withToken(&api.PinLevelRequest{Level: &models.PinLevel{
		ID:                       models.NewTemporaryID(),
		Name:                     "Safira Real",
		DisplayOrder:             150,
		RequiredPersonalRecruits: 2,
		Benefits:                 "60 / 40",
		RequiredPV:               40500,
		IsActive:                 true,
	}}, token))
	require.NoError(t, err)
	level := created.Msg.Level
	assert.False(t, models.IsTemporaryID(level.ID))
	assert.Equal(t, "safira-real", level.Code)

	level.RequiredPV = 50000
	_, err = ts.config.UpdatePinLevel(ctx, withToken(&api.PinLevelRequest{Level: level}, token))
	require.NoError(t, err)

	list, err := ts.config.ListPinLevels(ctx, withToken(&api.ListPinLevelsRequest{}, token))
	require.NoError(t, err)
	require.Len(t, list.Msg.Levels, 1)
	assert.Equal(t, int64(50000), list.Msg.Levels[0].RequiredPV)

	level.Benefits = "70 / 40"
	_, err = ts.config.UpdatePinLevel(ctx, withToken(&api.PinLevelRequest{Level: level}, token))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "VMEC above 100% is rejected")

	_, err = ts.config.CreatePinLevel(ctx, withToken(&api.PinLevelRequest{Level: &models.PinLevel{Benefits: "—"}}, token))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err), "name is required")

	_, err = ts.config.UpdatePinLevel(ctx, withToken(&api.PinLevelRequest{Level: &models.PinLevel{ID: "new_x", Name: "X"}}, token))
	assert.Equal(t, connect.CodeInvalidArgument, connect.CodeOf(err))

	_, err = ts.config.DeletePinLevel(ctx, withToken(&api.DeletePinLevelRequest{ID: level.ID}, token))
	require.NoError(t, err)
	_, err = ts.config.DeletePinLevel(ctx, withToken(&api.DeletePinLevelRequest{ID: level.ID}, token))
	assert.Equal(t, connect.CodeNotFound, connect.CodeOf(err))
}

func TestCreatePinLevelLimit(t *testing.T) {
	ts := setupTestServer(t)
	ctx := context.Background()
	token := ts.tokens[models.RoleAdmin]

	for i := 0; i < models.MaxPinLevels; i++ {
		_, err := ts.config.CreatePinLevel(ctx, withToken(&api.PinLevelRequest{Level: &models.PinLevel{
			Name:         fmt.Sprintf("PIN %d", i+1),
			DisplayOrder: i * 10,
			Benefits:     "—",
		}}, token))
		require.NoError(t, err)
	}

	_, err := ts.config.CreatePinLevel(ctx, withToken(&api.PinLevelRequest{Level: &models.PinLevel{Name: "One more", Benefits: "—"}}, token))
	assert.Equal(t, connect.CodeFailedPrecondition, connect.CodeOf(err))
}
