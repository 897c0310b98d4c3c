package api

import (
	"context"
	"strings"

	"connectrpc.com/connect"
)

// ConfigServiceClient calls the configuration service.
type ConfigServiceClient struct {
	getFidelityBonusConfig    *connect.Client[GetConfigRequest, FidelityBonusConfigResponse]
	updateFidelityBonusConfig *connect.Client[FidelityBonusConfigRequest, FidelityBonusConfigResponse]
	getTopSigmaConfig         *connect.Client[GetConfigRequest, TopSigmaConfigResponse]
	updateTopSigmaConfig      *connect.Client[TopSigmaConfigRequest, TopSigmaConfigResponse]
	getSigmaSettings          *connect.Client[GetConfigRequest, SigmaSettingsResponse]
	updateSigmaSettings       *connect.Client[SigmaSettingsRequest, SigmaSettingsResponse]
	getCareerRules            *connect.Client[GetConfigRequest, CareerRulesResponse]
	updateCareerRules         *connect.Client[CareerRulesRequest, CareerRulesResponse]
	listPinLevels             *connect.Client[ListPinLevelsRequest, ListPinLevelsResponse]
	createPinLevel            *connect.Client[PinLevelRequest, PinLevelResponse]
	updatePinLevel            *connect.Client[PinLevelRequest, PinLevelResponse]
	deletePinLevel            *connect.Client[DeletePinLevelRequest, DeletePinLevelResponse]
}

// NewConfigServiceClient returns a client for the service at baseURL
// ("http://localhost:8080").
func NewConfigServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ConfigServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{withCodec()}, opts...)
	return &ConfigServiceClient{
		getFidelityBonusConfig:    connect.NewClient[GetConfigRequest, FidelityBonusConfigResponse](httpClient, baseURL+ConfigServiceGetFidelityBonusConfigProcedure, opts...),
		updateFidelityBonusConfig: connect.NewClient[FidelityBonusConfigRequest, FidelityBonusConfigResponse](httpClient, baseURL+ConfigServiceUpdateFidelityBonusConfigProcedure, opts...),
		getTopSigmaConfig:         connect.NewClient[GetConfigRequest, TopSigmaConfigResponse](httpClient, baseURL+ConfigServiceGetTopSigmaConfigProcedure, opts...),
		updateTopSigmaConfig:      connect.NewClient[TopSigmaConfigRequest, TopSigmaConfigResponse](httpClient, baseURL+ConfigServiceUpdateTopSigmaConfigProcedure, opts...),
		getSigmaSettings:          connect.NewClient[GetConfigRequest, SigmaSettingsResponse](httpClient, baseURL+ConfigServiceGetSigmaSettingsProcedure, opts...),
		updateSigmaSettings:       connect.NewClient[SigmaSettingsRequest, SigmaSettingsResponse](httpClient, baseURL+ConfigServiceUpdateSigmaSettingsProcedure, opts...),
		getCareerRules:            connect.NewClient[GetConfigRequest, CareerRulesResponse](httpClient, baseURL+ConfigServiceGetCareerRulesProcedure, opts...),
		updateCareerRules:         connect.NewClient[CareerRulesRequest, CareerRulesResponse](httpClient, baseURL+ConfigServiceUpdateCareerRulesProcedure, opts...),
		listPinLevels:             connect.NewClient[ListPinLevelsRequest, ListPinLevelsResponse](httpClient, baseURL+ConfigServiceListPinLevelsProcedure, opts...),
		createPinLevel:            connect.NewClient[PinLevelRequest, PinLevelResponse](httpClient, baseURL+ConfigServiceCreatePinLevelProcedure, opts...),
		updatePinLevel:            connect.NewClient[PinLevelRequest, PinLevelResponse](httpClient, baseURL+ConfigServiceUpdatePinLevelProcedure, opts...),
		deletePinLevel:            connect.NewClient[DeletePinLevelRequest, DeletePinLevelResponse](httpClient, baseURL+ConfigServiceDeletePinLevelProcedure, opts...),
	}
}

func (c *ConfigServiceClient) GetFidelityBonusConfig(ctx context.Context, req *connect.Request[GetConfigRequest]) (*connect.Response[FidelityBonusConfigResponse], error) {
	return c.getFidelityBonusConfig.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) UpdateFidelityBonusConfig(ctx context.Context, req *connect.Request[FidelityBonusConfigRequest]) (*connect.Response[FidelityBonusConfigResponse], error) {
	return c.updateFidelityBonusConfig.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) GetTopSigmaConfig(ctx context.Context, req *connect.Request[GetConfigRequest]) (*connect.Response[TopSigmaConfigResponse], error) {
	return c.getTopSigmaConfig.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) UpdateTopSigmaConfig(ctx context.Context, req *connect.Request[TopSigmaConfigRequest]) (*connect.Response[TopSigmaConfigResponse], error) {
	return c.updateTopSigmaConfig.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) GetSigmaSettings(ctx context.Context, req *connect.Request[GetConfigRequest]) (*connect.Response[SigmaSettingsResponse], error) {
	return c.getSigmaSettings.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) UpdateSigmaSettings(ctx context.Context, req *connect.Request[SigmaSettingsRequest]) (*connect.Response[SigmaSettingsResponse], error) {
	return c.updateSigmaSettings.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) GetCareerRules(ctx context.Context, req *connect.Request[GetConfigRequest]) (*connect.Response[CareerRulesResponse], error) {
	return c.getCareerRules.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) UpdateCareerRules(ctx context.Context, req *connect.Request[CareerRulesRequest]) (*connect.Response[CareerRulesResponse], error) {
	return c.updateCareerRules.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) ListPinLevels(ctx context.Context, req *connect.Request[ListPinLevelsRequest]) (*connect.Response[ListPinLevelsResponse], error) {
	return c.listPinLevels.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) CreatePinLevel(ctx context.Context, req *connect.Request[PinLevelRequest]) (*connect.Response[PinLevelResponse], error) {
	return c.createPinLevel.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) UpdatePinLevel(ctx context.Context, req *connect.Request[PinLevelRequest]) (*connect.Response[PinLevelResponse], error) {
	return c.updatePinLevel.CallUnary(ctx, req)
}

func (c *ConfigServiceClient) DeletePinLevel(ctx context.Context, req *connect.Request[DeletePinLevelRequest]) (*connect.Response[DeletePinLevelResponse], error) {
	return c.deletePinLevel.CallUnary(ctx, req)
}

// AuthServiceClient calls the authentication service.
type AuthServiceClient struct {
	login *connect.Client[LoginRequest, LoginResponse]
	me    *connect.Client[MeRequest, MeResponse]
}

// NewAuthServiceClient returns a client for the service at baseURL.
func NewAuthServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *AuthServiceClient {
	baseURL = strings.TrimRight(baseURL, "/")
	opts = append([]connect.ClientOption{withCodec()}, opts...)
	return &AuthServiceClient{
		login: connect.NewClient[LoginRequest, LoginResponse](httpClient, baseURL+AuthServiceLoginProcedure, opts...),
		me:    connect.NewClient[MeRequest, MeResponse](httpClient, baseURL+AuthServiceMeProcedure, opts...),
	}
}

func (c *AuthServiceClient) Login(ctx context.Context, req *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error) {
	return c.login.CallUnary(ctx, req)
}

func (c *AuthServiceClient) Me(ctx context.Context, req *connect.Request[MeRequest]) (*connect.Response[MeResponse], error) {
	return c.me.CallUnary(ctx, req)
}

var (
	_ ConfigServiceHandler = (*ConfigServiceClient)(nil)
	_ AuthServiceHandler   = (*AuthServiceClient)(nil)
)
