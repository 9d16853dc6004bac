package handler

import (
	"encoding/json"
	"net/http"

	"atelier/internal/inquiries/service"
	apperrors "atelier/pkg/errors"
	httputil "atelier/pkg/http"
	"atelier/pkg/logger"
	"atelier/pkg/model"

	"github.com/julienschmidt/httprouter"
)

type InquiryHandler struct {
	service service.InquiryService
	log     *logger.Logger
}

func NewInquiryHandler(service service.InquiryService, log *logger.Logger) *InquiryHandler {
	return &InquiryHandler{
		service: service,
		log:     log,
	}
}

func (h *InquiryHandler) RegisterRoutes(router *httprouter.Router) {
	router.GET("/api/v1/inquiries/:id", h.Get)
	router.POST("/api/v1/inquiries", h.SaveProgress)
	router.POST("/api/v1/inquiries/:id/submit", h.Submit)
}

func (h *InquiryHandler) Get(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	inquiry, err := h.service.Get(r.Context(), ps.ByName("id"))
	if err != nil {
		h.writeError(w, "Get", err)
		return
	}
	if inquiry == nil {
		if err := httputil.WriteSuccess(w, nil); err != nil {
			h.log.Error("failed to write success response", "handler", "Get", "error", err)
		}
		return
	}

	if err := httputil.WriteSuccess(w, inquiry); err != nil {
		h.log.Error("failed to write success response", "handler", "Get", "error", err)
	}
}

// saveProgressRequest carries the optional draft id alongside the patch
// fields. Absent or stale ids start a fresh draft; the response always hands
// the id back for the client to retain.
type saveProgressRequest struct {
	ID string `json:"id,omitempty"`
	model.ProjectInquiryUpdate
}

type saveProgressResponse struct {
	ID string `json:"id"`
}

func (h *InquiryHandler) SaveProgress(w http.ResponseWriter, r *http.Request, _ httprouter.Params) {
	var req saveProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "SaveProgress", apperrors.InvalidInput("Invalid request body"))
		return
	}

	id, err := h.service.SaveProgress(r.Context(), req.ID, &req.ProjectInquiryUpdate)
	if err != nil {
		h.writeError(w, "SaveProgress", err)
		return
	}

	if err := httputil.WriteSuccess(w, saveProgressResponse{ID: id}); err != nil {
		h.log.Error("failed to write success response", "handler", "SaveProgress", "error", err)
	}
}

type submitRequest struct {
	Email    string `json:"email"`
	BookCall *bool  `json:"book_call,omitempty"`
}

func (h *InquiryHandler) Submit(w http.ResponseWriter, r *http.Request, ps httprouter.Params) {
	var req submitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, "Submit", apperrors.InvalidInput("Invalid request body"))
		return
	}

	if err := h.service.Submit(r.Context(), ps.ByName("id"), req.Email, req.BookCall); err != nil {
		h.writeError(w, "Submit", err)
		return
	}

	httputil.WriteNoContent(w)
}

func (h *InquiryHandler) writeError(w http.ResponseWriter, handler string, err error) {
	if writeErr := httputil.WriteError(w, err); writeErr != nil {
		h.log.Error("failed to write error response", "handler", handler, "error", writeErr)
	}
}
