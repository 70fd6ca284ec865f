package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldsync/internal/records/models"
	"fieldsync/pkg/platform/httputil"
	"fieldsync/pkg/requestcontext"
)

//go:generate mockgen -source=handler.go -destination=mocks/records-mocks.go -package=mocks

// Service defines the record operations the HTTP layer exposes.
type Service interface {
	NextClientID(ctx context.Context, module models.Module) (string, error)
	AppendFields(ctx context.Context, module models.Module, fields map[string]string) (*models.Record, error)
	ListAll(ctx context.Context, module models.Module) ([]*models.Record, error)
	CountByStatus(ctx context.Context, module models.Module, status models.Status) (int, error)
	Summary(ctx context.Context) (*models.Summary, error)
}

// Handler wires record endpoints to the record service.
type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	return &Handler{service: service, logger: logger}
}

// Register mounts record endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Route("/modules/{module}", func(r chi.Router) {
		r.Get("/records", h.HandleList)
		r.Post("/records", h.HandleAppend)
		r.Get("/next-id", h.HandleNextID)
		r.Get("/count", h.HandleCount)
	})
	r.Get("/summary", h.HandleSummary)
}

type nextIDResponse struct {
	Module   models.Module `json:"module"`
	ClientID string        `json:"clientId"`
}

type countResponse struct {
	Module models.Module `json:"module"`
	Status models.Status `json:"status"`
	Count  int           `json:"count"`
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	m, err := models.ParseModule(chi.URLParam(r, "module"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	records, err := h.service.ListAll(ctx, m)
	if err != nil {
		h.logger.ErrorContext(ctx, "list records failed",
			"request_id", requestcontext.RequestID(ctx),
			"module", m,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, records)
}

// HandleAppend takes the module's form fields as a flat JSON object.
func (h *Handler) HandleAppend(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	m, err := models.ParseModule(chi.URLParam(r, "module"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	var body map[string]json.RawMessage
	if err := httputil.DecodeJSON(w, r, &body); err != nil {
		httputil.WriteError(w, err)
		return
	}
	fields, err := models.FormFields(body)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.service.AppendFields(ctx, m, fields)
	if err != nil {
		h.logger.WarnContext(ctx, "append record failed",
			"request_id", requestcontext.RequestID(ctx),
			"module", m,
			"error", err,
		)
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) HandleNextID(w http.ResponseWriter, r *http.Request) {
	m, err := models.ParseModule(chi.URLParam(r, "module"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	id, err := h.service.NextClientID(r.Context(), m)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, nextIDResponse{Module: m, ClientID: id})
}

// HandleCount counts by ?status=, defaulting to PENDING.
func (h *Handler) HandleCount(w http.ResponseWriter, r *http.Request) {
	m, err := models.ParseModule(chi.URLParam(r, "module"))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	status := models.StatusPending
	if q := r.URL.Query().Get("status"); q != "" {
		if status, err = models.ParseStatus(q); err != nil {
			httputil.WriteError(w, err)
			return
		}
	}
	n, err := h.service.CountByStatus(r.Context(), m, status)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, countResponse{Module: m, Status: status, Count: n})
}

func (h *Handler) HandleSummary(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Summary(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, summary)
}
