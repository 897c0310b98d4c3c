package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/rsprolipsi/compplan/internal/auth"
	"github.com/rsprolipsi/compplan/internal/metrics"
	"github.com/rsprolipsi/compplan/internal/middleware"
	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/service"
	"github.com/rsprolipsi/compplan/internal/settings"
	"github.com/rsprolipsi/compplan/internal/storage/sqlite"
	"github.com/rsprolipsi/compplan/pkg/api"
)

const (
	testEmail    = "finance@example.com"
	testPassword = "correct-horse-battery"
)

type testEnv struct {
	url   string
	token string
}

func startServer(t *testing.T) *testEnv {
	t.Helper()
	t.Setenv("API_URL", "")
	t.Setenv("API_TOKEN", "")
	t.Setenv("LOG_LEVEL", "error")

	store, err := sqlite.New(filepath.Join(t.TempDir(), "rsadmin.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	jwtManager := auth.NewJWTManager("rsadmin-test-secret-0123456789abc", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store)
	user, err := authenticator.Register(context.Background(), testEmail, "Finance", testPassword, models.RoleFinance)
	require.NoError(t, err)
	token, err := jwtManager.Generate(user)
	require.NoError(t, err)

	configPath, configHandler := api.NewConfigServiceHandler(
		service.NewConfigService(store, metrics.New(), nil),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	)
	authPath, authHandler := api.NewAuthServiceHandler(
		service.NewAuthService(authenticator, store, jwtManager, nil),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	)
	mux := http.NewServeMux()
	mux.Handle(configPath, configHandler)
	mux.Handle(authPath, authHandler)
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	return &testEnv{url: server.URL, token: token}
}

// run executes rsadmin with args against the test server.
func (e *testEnv) run(t *testing.T, withToken bool, args ...string) (string, error) {
	t.Helper()
	args = append(args, "--api-url", e.url)
	if withToken {
		args = append(args, "--token", e.token)
	}

	cmd := newRootCmd(&app{})
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func decodeReports(t *testing.T, out string) []report {
	t.Helper()
	var reports []report
	require.NoError(t, yaml.Unmarshal([]byte(out), &reports))
	return reports
}

func TestRoutesCmd(t *testing.T) {
	e := startServer(t)

	out, err := e.run(t, false, "routes")
	require.NoError(t, err)
	assert.Contains(t, out, "#/career-plan")
	assert.Contains(t, out, "#/top-sigma")
	assert.Contains(t, out, "SIGMA Settings")
}

func TestLoginCmd(t *testing.T) {
	e := startServer(t)

	out, err := e.run(t, false, "login", "--email", testEmail, "--password", testPassword)
	require.NoError(t, err)
	assert.Contains(t, out, "Logged in as "+testEmail)
	assert.Contains(t, out, "export API_TOKEN=")

	_, err = e.run(t, false, "login", "--email", testEmail, "--password", "wrong")
	assert.Error(t, err)
}

func TestShowCmd(t *testing.T) {
	e := startServer(t)

	t.Run("one page", func(t *testing.T) {
		out, err := e.run(t, true, "show", "#/top-sigma", "-o", "yaml")
		require.NoError(t, err)

		reports := decodeReports(t, out)
		require.Len(t, reports, 1)
		assert.Equal(t, "Top SIGMA", reports[0].View)
		require.Len(t, reports[0].Sections, 1)
		assert.Equal(t, "R$ 16,20", reports[0].Sections[0].Pool)
		require.Len(t, reports[0].Sections[0].Entries, 10)
		assert.Equal(t, "R$ 3,24", reports[0].Sections[0].Entries[0].Amount)
	})

	t.Run("every page", func(t *testing.T) {
		out, err := e.run(t, true, "show", "-o", "yaml")
		require.NoError(t, err)
		reports := decodeReports(t, out)
		require.Len(t, reports, 4)
		assert.Equal(t, "Career Plan", reports[0].View)
		assert.Equal(t, "SIGMA Settings", reports[3].View)
	})

	t.Run("text output", func(t *testing.T) {
		out, err := e.run(t, true, "show", "fidelity-bonus")
		require.NoError(t, err)
		assert.Contains(t, out, "Fidelity Bonus (#/fidelity-bonus)")
		assert.Contains(t, out, "R$ 4,50")
	})

	t.Run("unknown route", func(t *testing.T) {
		_, err := e.run(t, true, "show", "#/marketplace-admin")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "unknown route")
	})

	t.Run("without a token defaults are shown", func(t *testing.T) {
		out, err := e.run(t, false, "show", "top-sigma", "-o", "yaml")
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))

		reports := decodeReports(t, out)
		require.Len(t, reports, 1)
		assert.Equal(t, "Failed to load top sigma. Using default values.", reports[0].Banner)
	})
}

func TestSetCmd(t *testing.T) {
	e := startServer(t)

	t.Run("dry run reports blocking issues", func(t *testing.T) {
		out, err := e.run(t, true, "set", "top-sigma", "weight.1=25", "--dry-run", "-o", "yaml")
		var verr *settings.ValidationError
		require.ErrorAs(t, err, &verr)

		reports := decodeReports(t, out)
		require.Len(t, reports, 1)
		require.NotEmpty(t, reports[0].Issues)
		assert.Equal(t, "weights", reports[0].Issues[0].Field)
		assert.Equal(t, "block", reports[0].Issues[0].Enforcement)
	})

	t.Run("save", func(t *testing.T) {
		out, err := e.run(t, true, "set", "top-sigma", "percentage=5", "-o", "yaml")
		require.NoError(t, err)
		reports := decodeReports(t, out)
		assert.Equal(t, "Top sigma saved.", reports[0].Banner)

		out, err = e.run(t, true, "show", "top-sigma", "-o", "yaml")
		require.NoError(t, err)
		assert.Equal(t, "R$ 18,00", decodeReports(t, out)[0].Sections[0].Pool)
	})

	t.Run("malformed pair", func(t *testing.T) {
		_, err := e.run(t, true, "set", "top-sigma", "percentage")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "key=value")
	})

	t.Run("unknown key", func(t *testing.T) {
		_, err := e.run(t, true, "set", "career-plan", "bogus=1")
		assert.ErrorIs(t, err, settings.ErrUnknownField)
	})
}

func TestSimulateCmd(t *testing.T) {
	e := startServer(t)
	scenario := filepath.Join(t.TempDir(), "scenario.yaml")
	require.NoError(t, os.WriteFile(scenario, []byte(`
uplines: [ana, bruno, carla]
ranking: [davi, eva, fabio]
lines: [100, 50, 10]
inactive: [bruno, eva]
`), 0o600))

	decode := func(t *testing.T, out string) payoutReport {
		t.Helper()
		var r payoutReport
		require.NoError(t, yaml.Unmarshal([]byte(out), &r))
		return r
	}

	t.Run("server plan", func(t *testing.T) {
		out, err := e.run(t, true, "simulate", "-f", scenario, "-o", "yaml")
		require.NoError(t, err)

		r := decode(t, out)
		assert.Equal(t, "R$ 108,00", r.CyclePayout)
		require.Len(t, r.Sections, 3)
		depth := r.Sections[0]
		assert.Equal(t, "R$ 24,52", depth.Pool)
		require.Len(t, depth.Beneficiaries, 6)
		assert.Equal(t, "ana", depth.Beneficiaries[0].Consultant)
		assert.Equal(t, "carla", depth.Beneficiaries[1].Consultant)

		top := r.Sections[2]
		require.Len(t, top.Beneficiaries, 2)
		assert.Equal(t, "fabio", top.Beneficiaries[1].Consultant)
		assert.Equal(t, "Safira", r.Pin)
	})

	t.Run("built-in plan needs no token", func(t *testing.T) {
		out, err := e.run(t, false, "simulate", "-f", scenario, "--defaults")
		require.NoError(t, err)
		assert.Contains(t, out, "Cycle payout R$ 108,00")
		assert.Contains(t, out, "PIN Safira")
	})

	t.Run("server plan needs a token", func(t *testing.T) {
		_, err := e.run(t, false, "simulate", "-f", scenario)
		assert.Equal(t, connect.CodeUnauthenticated, connect.CodeOf(err))
	})

	t.Run("unknown scenario key", func(t *testing.T) {
		bad := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(bad, []byte("sponsors: [ana]\n"), 0o600))
		_, err := e.run(t, true, "simulate", "-f", bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "decode scenario")
	})
}
