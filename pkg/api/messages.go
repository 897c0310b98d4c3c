// Package api holds the wire contract of the compensation configuration
// services: procedure names, request and response messages, and the Connect
// handler and client constructors. Messages are plain Go structs carried by
// JSONCodec.
package api

import "github.com/rsprolipsi/compplan/internal/models"

const (
	// ConfigServiceName is the fully-qualified name of the ConfigService.
	ConfigServiceName = "compplan.v1.ConfigService"
	// AuthServiceName is the fully-qualified name of the AuthService.
	AuthServiceName = "compplan.v1.AuthService"
)

// Procedure paths.
const (
	ConfigServiceGetFidelityBonusConfigProcedure    = "/compplan.v1.ConfigService/GetFidelityBonusConfig"
	ConfigServiceUpdateFidelityBonusConfigProcedure = "/compplan.v1.ConfigService/UpdateFidelityBonusConfig"
	ConfigServiceGetTopSigmaConfigProcedure         = "/compplan.v1.ConfigService/GetTopSigmaConfig"
	ConfigServiceUpdateTopSigmaConfigProcedure      = "/compplan.v1.ConfigService/UpdateTopSigmaConfig"
	ConfigServiceGetSigmaSettingsProcedure          = "/compplan.v1.ConfigService/GetSigmaSettings"
	ConfigServiceUpdateSigmaSettingsProcedure       = "/compplan.v1.ConfigService/UpdateSigmaSettings"
	ConfigServiceGetCareerRulesProcedure            = "/compplan.v1.ConfigService/GetCareerRules"
	ConfigServiceUpdateCareerRulesProcedure         = "/compplan.v1.ConfigService/UpdateCareerRules"
	ConfigServiceListPinLevelsProcedure             = "/compplan.v1.ConfigService/ListPinLevels"
	ConfigServiceCreatePinLevelProcedure            = "/compplan.v1.ConfigService/CreatePinLevel"
	ConfigServiceUpdatePinLevelProcedure            = "/compplan.v1.ConfigService/UpdatePinLevel"
	ConfigServiceDeletePinLevelProcedure            = "/compplan.v1.ConfigService/DeletePinLevel"

	AuthServiceLoginProcedure = "/compplan.v1.AuthService/Login"
	AuthServiceMeProcedure    = "/compplan.v1.AuthService/Me"
)

// GetConfigRequest is the empty request of every Get procedure.
type GetConfigRequest struct{}

type FidelityBonusConfigRequest struct {
	Config *models.FidelityBonusConfig `json:"config"`
}

type FidelityBonusConfigResponse struct {
	Config *models.FidelityBonusConfig `json:"config"`
}

type TopSigmaConfigRequest struct {
	Config *models.TopSigmaConfig `json:"config"`
}

type TopSigmaConfigResponse struct {
	Config *models.TopSigmaConfig `json:"config"`
}

type SigmaSettingsRequest struct {
	Config *models.SigmaSettings `json:"config"`
}

type SigmaSettingsResponse struct {
	Config *models.SigmaSettings `json:"config"`
}

type CareerRulesRequest struct {
	Config *models.CareerRules `json:"config"`
}

type CareerRulesResponse struct {
	Config *models.CareerRules `json:"config"`
}

type ListPinLevelsRequest struct{}

type ListPinLevelsResponse struct {
	Levels []models.PinLevel `json:"levels"`
}

// PinLevelRequest creates or updates one PIN. Updates take the ID from Level.
type PinLevelRequest struct {
	Level *models.PinLevel `json:"level"`
}

type PinLevelResponse struct {
	Level *models.PinLevel `json:"level"`
}

type DeletePinLevelRequest struct {
	ID string `json:"id"`
}

type DeletePinLevelResponse struct{}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type LoginResponse struct {
	User  *User  `json:"user"`
	Token string `json:"token"`
}

type MeRequest struct{}

type MeResponse struct {
	User *User `json:"user"`
}

// User is the public view of an admin account.
type User struct {
	ID          string   `json:"id"`
	Email       string   `json:"email"`
	DisplayName string   `json:"displayName,omitempty"`
	Role        string   `json:"role"`
	Permissions []string `json:"permissions,omitempty"`
	CreatedAt   int64    `json:"createdAt,omitempty"`
}
