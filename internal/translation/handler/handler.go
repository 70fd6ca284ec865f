package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldsync/internal/translation/models"
	"fieldsync/pkg/platform/httputil"
	"fieldsync/pkg/requestcontext"
)

// Service defines the translation operations the HTTP layer exposes.
type Service interface {
	Download(ctx context.Context, code string) (*models.Dictionary, *models.DownloadReport, error)
	Resolve(ctx context.Context, code string) *models.Dictionary
	Activate(ctx context.Context, code string) (*models.Dictionary, error)
	ActiveLanguage(ctx context.Context) string
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Get("/strings", h.HandleStrings)
	r.Get("/languages", h.HandleLanguages)
	r.Post("/languages/{code}/download", h.HandleDownload)
	r.Put("/languages/active", h.HandleActivate)
}

type languagesResponse struct {
	Active    string            `json:"active"`
	Available []models.Language `json:"available"`
}

type downloadResponse struct {
	Dictionary *models.Dictionary     `json:"dictionary"`
	Report     *models.DownloadReport `json:"report"`
}

type activateRequest struct {
	Code string `json:"code"`
}

// HandleStrings resolves ?lang=, or the selected language when absent.
func (h *Handler) HandleStrings(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, h.service.Resolve(r.Context(), r.URL.Query().Get("lang")))
}

func (h *Handler) HandleLanguages(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSON(w, http.StatusOK, languagesResponse{
		Active:    h.service.ActiveLanguage(r.Context()),
		Available: models.Languages,
	})
}

func (h *Handler) HandleDownload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	dict, report, err := h.service.Download(ctx, chi.URLParam(r, "code"))
	if err != nil {
		h.logger.ErrorContext(ctx, "language download failed",
			"request_id", requestcontext.RequestID(ctx),
			"language", chi.URLParam(r, "code"),
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, downloadResponse{Dictionary: dict, Report: report})
}

func (h *Handler) HandleActivate(w http.ResponseWriter, r *http.Request) {
	var req activateRequest
	if err := httputil.DecodeJSON(w, r, &req); err != nil {
		httputil.WriteError(w, err)
		return
	}
	dict, err := h.service.Activate(r.Context(), req.Code)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dict)
}
