// Package httpapi exposes ConfigService under the admin REST paths used by the
// existing admin clients. Every route goes through the same service methods as
// the Connect API, so authorization and validation are shared.
package httpapi

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"

	"github.com/rsprolipsi/compplan/internal/models"
	"github.com/rsprolipsi/compplan/internal/service"
	"github.com/rsprolipsi/compplan/pkg/api"
)

// Envelope is the body of every REST response.
type Envelope struct {
	Success bool              `json:"success"`
	Config  any               `json:"config,omitempty"`
	Levels  []models.PinLevel `json:"levels,omitempty"`
	Level   *models.PinLevel  `json:"level,omitempty"`
	Error   string            `json:"error,omitempty"`
}

// Handler serves the admin REST routes.
type Handler struct {
	svc    *service.ConfigService
	logger *slog.Logger
}

// NewHandler creates a Handler over svc.
func NewHandler(svc *service.ConfigService, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{svc: svc, logger: logger}
}

// Register mounts the routes on r.
func (h *Handler) Register(r *mux.Router) {
	admin := r.PathPrefix("/v1/admin").Subrouter()

	admin.HandleFunc("/sigma/fidelity/config", h.GetFidelityConfig).Methods(http.MethodGet)
	admin.HandleFunc("/sigma/fidelity/config", h.PutFidelityConfig).Methods(http.MethodPut)
	admin.HandleFunc("/sigma/top/config", h.GetTopSigmaConfig).Methods(http.MethodGet)
	admin.HandleFunc("/sigma/top/config", h.PutTopSigmaConfig).Methods(http.MethodPut)
	admin.HandleFunc("/sigma/settings", h.GetSigmaSettings).Methods(http.MethodGet)
	admin.HandleFunc("/sigma/settings", h.PutSigmaSettings).Methods(http.MethodPut)

	admin.HandleFunc("/career/rules", h.GetCareerRules).Methods(http.MethodGet)
	admin.HandleFunc("/career/rules", h.PutCareerRules).Methods(http.MethodPut)
	admin.HandleFunc("/career/levels", h.ListPinLevels).Methods(http.MethodGet)
	admin.HandleFunc("/career/levels", h.CreatePinLevel).Methods(http.MethodPost)
	admin.HandleFunc("/career/levels/{id}", h.UpdatePinLevel).Methods(http.MethodPut)
	admin.HandleFunc("/career/levels/{id}", h.DeletePinLevel).Methods(http.MethodDelete)
}

// Router returns a mux.Router with the admin routes mounted.
func (h *Handler) Router() *mux.Router {
	r := mux.NewRouter()
	h.Register(r)
	return r
}

func (h *Handler) GetFidelityConfig(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetFidelityBonusConfig(r.Context(), connect.NewRequest(&api.GetConfigRequest{}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Config: resp.Msg.Config})
}

func (h *Handler) PutFidelityConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.FidelityBonusConfig
	if !h.decode(w, r, &cfg) {
		return
	}
	resp, err := h.svc.UpdateFidelityBonusConfig(r.Context(), connect.NewRequest(&api.FidelityBonusConfigRequest{Config: &cfg}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Config: resp.Msg.Config})
}

func (h *Handler) GetTopSigmaConfig(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetTopSigmaConfig(r.Context(), connect.NewRequest(&api.GetConfigRequest{}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Config: resp.Msg.Config})
}

func (h *Handler) PutTopSigmaConfig(w http.ResponseWriter, r *http.Request) {
	var cfg models.TopSigmaConfig
	if !h.decode(w, r, &cfg) {
		return
	}
	resp, err := h.svc.UpdateTopSigmaConfig(r.Context(), connect.NewRequest(&api.TopSigmaConfigRequest{Config: &cfg}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Config: resp.Msg.Config})
}

func (h *Handler) GetSigmaSettings(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetSigmaSettings(r.Context(), connect.NewRequest(&api.GetConfigRequest{}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Config: resp.Msg.Config})
}

func (h *Handler) PutSigmaSettings(w http.ResponseWriter, r *http.Request) {
	var settings models.SigmaSettings
	if !h.decode(w, r, &settings) {
		return
	}
	resp, err := h.svc.UpdateSigmaSettings(r.Context(), connect.NewRequest(&api.SigmaSettingsRequest{Config: &settings}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Config: resp.Msg.Config})
}

func (h *Handler) GetCareerRules(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.GetCareerRules(r.Context(), connect.NewRequest(&api.GetConfigRequest{}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Config: resp.Msg.Config})
}

func (h *Handler) PutCareerRules(w http.ResponseWriter, r *http.Request) {
	var rules models.CareerRules
	if !h.decode(w, r, &rules) {
		return
	}
	resp, err := h.svc.UpdateCareerRules(r.Context(), connect.NewRequest(&api.CareerRulesRequest{Config: &rules}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Config: resp.Msg.Config})
}

// ListPinLevels always answers with a levels array, empty when nothing is
// stored.
func (h *Handler) ListPinLevels(w http.ResponseWriter, r *http.Request) {
	resp, err := h.svc.ListPinLevels(r.Context(), connect.NewRequest(&api.ListPinLevelsRequest{}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	levels := resp.Msg.Levels
	if levels == nil {
		levels = []models.PinLevel{}
	}
	writeLevels(w, levels)
}

func (h *Handler) CreatePinLevel(w http.ResponseWriter, r *http.Request) {
	var level models.PinLevel
	if !h.decode(w, r, &level) {
		return
	}
	resp, err := h.svc.CreatePinLevel(r.Context(), connect.NewRequest(&api.PinLevelRequest{Level: &level}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, Envelope{Success: true, Level: resp.Msg.Level})
}

// UpdatePinLevel takes the ID from the path; an ID in the body is ignored.
func (h *Handler) UpdatePinLevel(w http.ResponseWriter, r *http.Request) {
	var level models.PinLevel
	if !h.decode(w, r, &level) {
		return
	}
	level.ID = mux.Vars(r)["id"]
	resp, err := h.svc.UpdatePinLevel(r.Context(), connect.NewRequest(&api.PinLevelRequest{Level: &level}))
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true, Level: resp.Msg.Level})
}

func (h *Handler) DeletePinLevel(w http.ResponseWriter, r *http.Request) {
	id := mux.Vars(r)["id"]
	if _, err := h.svc.DeletePinLevel(r.Context(), connect.NewRequest(&api.DeletePinLevelRequest{ID: id})); err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, Envelope{Success: true})
}

// decode reads the JSON body into dst. On failure it answers 400 and returns
// false.
func (h *Handler) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(dst); err != nil {
		h.logger.Debug("Invalid request body", "path", r.URL.Path, "error", err)
		writeJSON(w, http.StatusBadRequest, Envelope{Error: "invalid JSON body"})
		return false
	}
	return true
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("Admin request failed", "method", r.Method, "path", r.URL.Path, "error", err)
	}
	msg := err.Error()
	var connectErr *connect.Error
	if errors.As(err, &connectErr) {
		msg = connectErr.Message()
	}
	writeJSON(w, status, Envelope{Error: msg})
}

// HTTPStatus maps the Connect code of err to an HTTP status.
func HTTPStatus(err error) int {
	switch connect.CodeOf(err) {
	case connect.CodeInvalidArgument, connect.CodeOutOfRange:
		return http.StatusBadRequest
	case connect.CodeUnauthenticated:
		return http.StatusUnauthorized
	case connect.CodePermissionDenied:
		return http.StatusForbidden
	case connect.CodeNotFound:
		return http.StatusNotFound
	case connect.CodeAlreadyExists, connect.CodeAborted, connect.CodeFailedPrecondition:
		return http.StatusConflict
	case connect.CodeResourceExhausted:
		return http.StatusTooManyRequests
	case connect.CodeCanceled:
		return 499
	case connect.CodeUnimplemented:
		return http.StatusNotImplemented
	case connect.CodeUnavailable:
		return http.StatusServiceUnavailable
	case connect.CodeDeadlineExceeded:
		return http.StatusGatewayTimeout
	default:
		return http.StatusInternalServerError
	}
}

// writeLevels is split out so an empty ladder is encoded as [] rather than
// dropped by omitempty.
func writeLevels(w http.ResponseWriter, levels []models.PinLevel) {
	writeJSON(w, http.StatusOK, struct {
		Success bool              `json:"success"`
		Levels  []models.PinLevel `json:"levels"`
	}{Success: true, Levels: levels})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
