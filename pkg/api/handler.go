package api

import (
	"context"
	"net/http"

	"connectrpc.com/connect"
)

// ConfigServiceHandler is implemented by the configuration service.
type ConfigServiceHandler interface {
	GetFidelityBonusConfig(context.Context, *connect.Request[GetConfigRequest]) (*connect.Response[FidelityBonusConfigResponse], error)
	UpdateFidelityBonusConfig(context.Context, *connect.Request[FidelityBonusConfigRequest]) (*connect.Response[FidelityBonusConfigResponse], error)
	GetTopSigmaConfig(context.Context, *connect.Request[GetConfigRequest]) (*connect.Response[TopSigmaConfigResponse], error)
	UpdateTopSigmaConfig(context.Context, *connect.Request[TopSigmaConfigRequest]) (*connect.Response[TopSigmaConfigResponse], error)
	GetSigmaSettings(context.Context, *connect.Request[GetConfigRequest]) (*connect.Response[SigmaSettingsResponse], error)
	UpdateSigmaSettings(context.Context, *connect.Request[SigmaSettingsRequest]) (*connect.Response[SigmaSettingsResponse], error)
	GetCareerRules(context.Context, *connect.Request[GetConfigRequest]) (*connect.Response[CareerRulesResponse], error)
	UpdateCareerRules(context.Context, *connect.Request[CareerRulesRequest]) (*connect.Response[CareerRulesResponse], error)
	ListPinLevels(context.Context, *connect.Request[ListPinLevelsRequest]) (*connect.Response[ListPinLevelsResponse], error)
	CreatePinLevel(context.Context, *connect.Request[PinLevelRequest]) (*connect.Response[PinLevelResponse], error)
	UpdatePinLevel(context.Context, *connect.Request[PinLevelRequest]) (*connect.Response[PinLevelResponse], error)
	DeletePinLevel(context.Context, *connect.Request[DeletePinLevelRequest]) (*connect.Response[DeletePinLevelResponse], error)
}

// NewConfigServiceHandler builds an HTTP handler for svc and returns the path
// to mount it on.
func NewConfigServiceHandler(svc ConfigServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{withCodec()}, opts...)

	routes := map[string]http.Handler{
		ConfigServiceGetFidelityBonusConfigProcedure:    connect.NewUnaryHandler(ConfigServiceGetFidelityBonusConfigProcedure, svc.GetFidelityBonusConfig, opts...),
		ConfigServiceUpdateFidelityBonusConfigProcedure: connect.NewUnaryHandler(ConfigServiceUpdateFidelityBonusConfigProcedure, svc.UpdateFidelityBonusConfig, opts...),
		ConfigServiceGetTopSigmaConfigProcedure:         connect.NewUnaryHandler(ConfigServiceGetTopSigmaConfigProcedure, svc.GetTopSigmaConfig, opts...),
		ConfigServiceUpdateTopSigmaConfigProcedure:      connect.NewUnaryHandler(ConfigServiceUpdateTopSigmaConfigProcedure, svc.UpdateTopSigmaConfig, opts...),
		ConfigServiceGetSigmaSettingsProcedure:          connect.NewUnaryHandler(ConfigServiceGetSigmaSettingsProcedure, svc.GetSigmaSettings, opts...),
		ConfigServiceUpdateSigmaSettingsProcedure:       connect.NewUnaryHandler(ConfigServiceUpdateSigmaSettingsProcedure, svc.UpdateSigmaSettings, opts...),
		ConfigServiceGetCareerRulesProcedure:            connect.NewUnaryHandler(ConfigServiceGetCareerRulesProcedure, svc.GetCareerRules, opts...),
		ConfigServiceUpdateCareerRulesProcedure:         connect.NewUnaryHandler(ConfigServiceUpdateCareerRulesProcedure, svc.UpdateCareerRules, opts...),
		ConfigServiceListPinLevelsProcedure:             connect.NewUnaryHandler(ConfigServiceListPinLevelsProcedure, svc.ListPinLevels, opts...),
		ConfigServiceCreatePinLevelProcedure:            connect.NewUnaryHandler(ConfigServiceCreatePinLevelProcedure, svc.CreatePinLevel, opts...),
		ConfigServiceUpdatePinLevelProcedure:            connect.NewUnaryHandler(ConfigServiceUpdatePinLevelProcedure, svc.UpdatePinLevel, opts...),
		ConfigServiceDeletePinLevelProcedure:            connect.NewUnaryHandler(ConfigServiceDeletePinLevelProcedure, svc.DeletePinLevel, opts...),
	}
	return "/" + ConfigServiceName + "/", dispatch(routes)
}

// AuthServiceHandler is implemented by the authentication service.
type AuthServiceHandler interface {
	Login(context.Context, *connect.Request[LoginRequest]) (*connect.Response[LoginResponse], error)
	Me(context.Context, *connect.Request[MeRequest]) (*connect.Response[MeResponse], error)
}

// NewAuthServiceHandler builds an HTTP handler for svc and returns the path to
// mount it on.
func NewAuthServiceHandler(svc AuthServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{withCodec()}, opts...)

	routes := map[string]http.Handler{
		AuthServiceLoginProcedure: connect.NewUnaryHandler(AuthServiceLoginProcedure, svc.Login, opts...),
		AuthServiceMeProcedure:    connect.NewUnaryHandler(AuthServiceMeProcedure, svc.Me, opts...),
	}
	return "/" + AuthServiceName + "/", dispatch(routes)
}

func dispatch(routes map[string]http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		h, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}
