package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"atelier/internal/auth/service"
	"atelier/pkg/config"
	apperrors "atelier/pkg/errors"
	httputil "atelier/pkg/http"
	"atelier/pkg/logger"

	"github.com/julienschmidt/httprouter"
)

type AuthHandler struct {
	service service.AuthService
	cfg     *config.Config
	log     *logger.Logger
}

func NewAuthHandler(service service.AuthService, cfg *config.Config) *AuthHandler {
	return &AuthHandler{
		service: service,
		cfg:     cfg,
		log:     cfg.Log,
	}
}

func (h *AuthHandler) RegisterRoutes(router *httprouter.Router) {
	router.POST("/api/v1/auth/code", h.SendCode)
	router.POST("/api/v1/auth/verify", h.VerifyCode)
	router.GET("/api/v1/auth/session/:id", h.ValidateSession)

	// Code readback is a development convenience only; the route does not
	// exist in production.
	if !h.cfg.IsProduction() {
		router.GET("/api/v1/auth/code", h.GetCode)
	}
}

type sendCodeRequest struct {
	Email string `json:"email"`
}

type sendCodeResponse struct {
	Email     string `json:"email"`
	ExpiresAt string `json:"expires_at"`
	Code      string `json:"code,omitempty"`
}

func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req sendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "SendCode", apperrors.InvalidInput("Invalid request body"))
		return
	}

	record, err := h.service.SendCode(r.Context(), req.Email)
	if err != nil {
		h.writeError(w, "SendCode", err)
		return
	}

	resp := sendCodeResponse{
		Email:     record.Email,
		ExpiresAt: record.ExpiresAt.Format(time.RFC3339),
	}
	if !h.cfg.IsProduction() {
		resp.Code = record.Code
	}

	if err := httputil.WriteSuccess(w, resp); err != nil {
		h.log.Error("failed to write success response", "handler", "SendCode", "error", err)
	}
}

func (h *AuthHandler) GetCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	email := r.URL.Query().Get("email")
	if email == "" {
		h.writeError(w, "GetCode", apperrors.InvalidInput("'email' query parameter is required"))
		return
	}

	record, err := h.service.GetCode(r.Context(), email)
	if err != nil {
		h.writeError(w, "GetCode", err)
		return
	}
	if record == nil {
		if err := httputil.WriteSuccess(w, nil); err != nil {
			h.log.Error("failed to write success response", "handler", "GetCode", "error", err)
		}
		return
	}

	if err := httputil.WriteSuccess(w, record); err != nil {
		h.log.Error("failed to write success response", "handler", "GetCode", "error", err)
	}
}

type verifyCodeRequest struct {
	Email string `json:"email"`
	Code  string `json:"code"`
}

func (h *AuthHandler) VerifyCode(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req verifyCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "VerifyCode", apperrors.InvalidInput("Invalid request body"))
		return
	}

	session, err := h.service.VerifyCode(r.Context(), req.Email, req.Code)
	if err != nil {
		h.writeError(w, "VerifyCode", err)
		return
	}

	if err := httputil.WriteCreated(w, session); err != nil {
		h.log.Error("failed to write created response", "handler", "VerifyCode", "error", err)
	}
}

// ValidateSession answers 200 with a null body for unknown or stale tokens;
// absence of a session is a normal outcome, not an error.
func (h *AuthHandler) ValidateSession(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	session, err := h.service.ValidateSession(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "ValidateSession", err)
		return
	}
	if session == nil {
		if err := httputil.WriteSuccess(w, nil); err != nil {
			h.log.Error("failed to write success response", "handler", "ValidateSession", "error", err)
		}
		return
	}

	if err := httputil.WriteSuccess(w, session); err != nil {
		h.log.Error("failed to write success response", "handler", "ValidateSession", "error", err)
	}
}

func (h *AuthHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
