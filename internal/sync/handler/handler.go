package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"fieldsync/internal/sync/models"
	"fieldsync/pkg/platform/httputil"
	"fieldsync/pkg/requestcontext"
)

// Engine runs a sync.
type Engine interface {
	Run(ctx context.Context) *models.Report
}

type Handler struct {
	engine Engine
	logger *slog.Logger
}

func New(engine Engine, logger *slog.Logger) *Handler {
	return &Handler{engine: engine, logger: logger}
}

func (h *Handler) Register(r chi.Router) {
	r.Post("/sync", h.HandleSync)
}

// HandleSync always answers 200 with the run report; per-record failures
// live inside it.
func (h *Handler) HandleSync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	report := h.engine.Run(ctx)
	h.logger.InfoContext(ctx, "sync requested",
		"request_id", requestcontext.RequestID(ctx),
		"run_id", report.RunID,
		"failed", len(report.Failed),
	)
	httputil.WriteJSON(w, http.StatusOK, report)
}
