// Package client talks to the compensation configuration server over Connect.
// Client satisfies settings.Remote, so the settings pages can run against a
// live server.
package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"connectrpc.com/connect"

	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/settings"
	"github.com/rsprolipsi/compplan/pkg/api"
)

// ErrEmptyResponse is returned when the server answers without a document.
var ErrEmptyResponse = errors.New("server returned an empty response")

// Client is a settings.Remote backed by the ConfigService and AuthService.
// It is safe for concurrent use.
type Client struct {
	config *api.ConfigServiceClient
	auth   *api.AuthServiceClient

	mu    sync.RWMutex
	token string
}

var _ settings.Remote = (*Client)(nil)

// New creates a Client for the server at baseURL. token may be empty and set
// later by Login or SetToken.
func New(httpClient connect.HTTPClient, baseURL, token string) *Client {
	c := &Client{token: token}
	opts := connect.WithInterceptors(c.bearer())
	c.config = api.NewConfigServiceClient(httpClient, baseURL, opts)
	c.auth = api.NewAuthServiceClient(httpClient, baseURL, opts)
	return c
}

// bearer attaches the current token to every outgoing call.
func (c *Client) bearer() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			if token := c.Token(); token != "" && req.Spec().IsClient {
				req.Header().Set("Authorization", "Bearer "+token)
			}
			return next(ctx, req)
		}
	}
}

// Token returns the bearer token in use.
func (c *Client) Token() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// Login exchanges credentials for a token and keeps it for later calls.
func (c *Client) Login(ctx context.Context, email, password string) (*api.User, error) {
	resp, err := c.auth.Login(ctx, connect.NewRequest(&api.LoginRequest{Email: email, Password: password}))
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	c.SetToken(resp.Msg.Token)
	return resp.Msg.User, nil
}

// Me returns the account behind the current token.
func (c *Client) Me(ctx context.Context) (*api.User, error) {
	resp, err := c.auth.Me(ctx, connect.NewRequest(&api.MeRequest{}))
	if err != nil {
		return nil, fmt.Errorf("me: %w", err)
	}
	return resp.Msg.User, nil
}

func (c *Client) GetFidelityBonusConfig(ctx context.Context) (*models.FidelityBonusConfig, error) {
	resp, err := c.config.GetFidelityBonusConfig(ctx, connect.NewRequest(&api.GetConfigRequest{}))
	if err != nil {
		return nil, fmt.Errorf("get fidelity bonus config: %w", err)
	}
	return document(resp.Msg.Config)
}

func (c *Client) UpdateFidelityBonusConfig(ctx context.Context, cfg *models.FidelityBonusConfig) (*models.FidelityBonusConfig, error) {
	resp, err := c.config.UpdateFidelityBonusConfig(ctx, connect.NewRequest(&api.FidelityBonusConfigRequest{Config: cfg}))
	if err != nil {
		return nil, fmt.Errorf("update fidelity bonus config: %w", err)
	}
	return document(resp.Msg.Config)
}

func (c *Client) GetTopSigmaConfig(ctx context.Context) (*models.TopSigmaConfig, error) {
	resp, err := c.config.GetTopSigmaConfig(ctx, connect.NewRequest(&api.GetConfigRequest{}))
	if err != nil {
		return nil, fmt.Errorf("get top sigma config: %w", err)
	}
	return document(resp.Msg.Config)
}

func (c *Client) UpdateTopSigmaConfig(ctx context.Context, cfg *models.TopSigmaConfig) (*models.TopSigmaConfig, error) {
	resp, err := c.config.UpdateTopSigmaConfig(ctx, connect.NewRequest(&api.TopSigmaConfigRequest{Config: cfg}))
	if err != nil {
		return nil, fmt.Errorf("update top sigma config: %w", err)
	}
	return document(resp.Msg.Config)
}

func (c *Client) GetSigmaSettings(ctx context.Context) (*models.SigmaSettings, error) {
	resp, err := c.config.GetSigmaSettings(ctx, connect.NewRequest(&api.GetConfigRequest{}))
	if err != nil {
		return nil, fmt.Errorf("get sigma settings: %w", err)
	}
	return document(resp.Msg.Config)
}

func (c *Client) UpdateSigmaSettings(ctx context.Context, s *models.SigmaSettings) (*models.SigmaSettings, error) {
	resp, err := c.config.UpdateSigmaSettings(ctx, connect.NewRequest(&api.SigmaSettingsRequest{Config: s}))
	if err != nil {
		return nil, fmt.Errorf("update sigma settings: %w", err)
	}
	return document(resp.Msg.Config)
}

func (c *Client) GetCareerRules(ctx context.Context) (*models.CareerRules, error) {
	resp, err := c.config.GetCareerRules(ctx, connect.NewRequest(&api.GetConfigRequest{}))
	if err != nil {
		return nil, fmt.Errorf("get career rules: %w", err)
	}
	return document(resp.Msg.Config)
}

func (c *Client) UpdateCareerRules(ctx context.Context, r *models.CareerRules) (*models.CareerRules, error) {
	resp, err := c.config.UpdateCareerRules(ctx, connect.NewRequest(&api.CareerRulesRequest{Config: r}))
	if err != nil {
		return nil, fmt.Errorf("update career rules: %w", err)
	}
	return document(resp.Msg.Config)
}

func (c *Client) ListPinLevels(ctx context.Context) ([]models.PinLevel, error) {
	resp, err := c.config.ListPinLevels(ctx, connect.NewRequest(&api.ListPinLevelsRequest{}))
	if err != nil {
		return nil, fmt.Errorf("list pin levels: %w", err)
	}
	return resp.Msg.Levels, nil
}

func (c *Client) CreatePinLevel(ctx context.Context, level *models.PinLevel) (*models.PinLevel, error) {
	resp, err := c.config.CreatePinLevel(ctx, connect.NewRequest(&api.PinLevelRequest{Level: level}))
	if err != nil {
		return nil, fmt.Errorf("create pin level %q: %w", level.Name, err)
	}
	return document(resp.Msg.Level)
}

func (c *Client) UpdatePinLevel(ctx context.Context, level *models.PinLevel) (*models.PinLevel, error) {
	resp, err := c.config.UpdatePinLevel(ctx, connect.NewRequest(&api.PinLevelRequest{Level: level}))
	if err != nil {
		return nil, fmt.Errorf("update pin level %s: %w", level.ID, err)
	}
	return document(resp.Msg.Level)
}

func (c *Client) DeletePinLevel(ctx context.Context, id string) error {
	if _, err := c.config.DeletePinLevel(ctx, connect.NewRequest(&api.DeletePinLevelRequest{ID: id})); err != nil {
		return fmt.Errorf("delete pin level %s: %w", id, err)
	}
	return nil
}

func document[T any](doc *T) (*T, error) {
	if doc == nil {
		return nil, ErrEmptyResponse
	}
	return doc, nil
}
