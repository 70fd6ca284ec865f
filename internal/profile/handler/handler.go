package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldsync/internal/profile/models"
	"fieldsync/pkg/platform/httputil"
	"fieldsync/pkg/requestcontext"
)

// Service defines the profile operations the HTTP layer exposes.
type Service interface {
	Register(ctx context.Context, p models.ASHAProfile) (*models.ASHAProfile, error)
	Login(ctx context.Context, ashaID string) (*models.ASHAProfile, error)
	Current(ctx context.Context) (*models.ASHAProfile, error)
	Save(ctx context.Context, p models.ASHAProfile) (*models.ASHAProfile, error)
	SavePHC(ctx context.Context, p models.PHCProfile) (*models.PHCProfile, error)
	PHC(ctx context.Context) (*models.PHCProfile, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts profile and session endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Post("/profiles/asha", h.HandleRegister)
	r.Get("/profiles/asha/current", h.HandleCurrent)
	r.Put("/profiles/asha/current", h.HandleSave)
	r.Post("/session/login", h.HandleLogin)
	r.Get("/profiles/phc", h.HandlePHC)
	r.Put("/profiles/phc", h.HandleSavePHC)
}

type loginRequest struct {
	AshaID string `json:"ashaId"`
}

func (h *Handler) HandleRegister(w http.ResponseWriter, r *http.Request) {
	var req models.ASHAProfile
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Register(r.Context(), req)
	if err != nil {
		h.fail(w, r, "register asha profile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, p)
}

func (h *Handler) HandleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Login(r.Context(), req.AshaID)
	if err != nil {
		h.fail(w, r, "login failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleCurrent(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.Current(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleSave(w http.ResponseWriter, r *http.Request) {
	var req models.ASHAProfile
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.Save(r.Context(), req)
	if err != nil {
		h.fail(w, r, "save asha profile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandlePHC(w http.ResponseWriter, r *http.Request) {
	p, err := h.service.PHC(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) HandleSavePHC(w http.ResponseWriter, r *http.Request) {
	var req models.PHCProfile
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	p, err := h.service.SavePHC(r.Context(), req)
	if err != nil {
		h.fail(w, r, "save phc profile failed", err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, p)
}

func (h *Handler) fail(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.WarnContext(r.Context(), msg,
		"request_id", requestcontext.RequestID(r.Context()),
		"error", err,
	)
	httputil.WriteError(w, err)
}
