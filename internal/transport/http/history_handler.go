package http

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	apierrors "sidebyside/internal/errors"
	"sidebyside/internal/history"
	"sidebyside/internal/middleware"
	"sidebyside/pkg/contracts/domain"
)

const maxHistoryLimit = 500

// HistoryReader is satisfied by history.Store.
type HistoryReader interface {
	List(ctx context.Context, limit int) ([]domain.HistoryEntry, error)
	Get(ctx context.Context, id string) (domain.HistoryEntry, error)
}

// HistoryHandler serves recorded comparison runs.
type HistoryHandler struct {
	store        HistoryReader
	query        *middleware.QueryParamValidator
	errorHandler *apierrors.ErrorHandler
	defaultLimit int
	logger       *slog.Logger
}

// NewHistoryHandler creates a history handler. A nil store answers every
// request with a history-disabled problem.
func NewHistoryHandler(store HistoryReader, defaultLimit int, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *HistoryHandler {
	if defaultLimit <= 0 {
		defaultLimit = 50
	}
	return &HistoryHandler{
		store:        store,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		errorHandler: errorHandler,
		defaultLimit: defaultLimit,
		logger:       logger.With(slog.String("handler", "history")),
	}
}

// Routes returns the history routes, mounted at /api/comparisons.
func (h *HistoryHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))

	r.Get("/", h.List)
	r.Get("/{id}", h.Get)
	return r
}

// List handles GET /api/comparisons
func (h *HistoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrHistoryDisabled)
		return
	}

	limit, ok := h.query.ValidateInt(w, r, "limit", 1, maxHistoryLimit, h.defaultLimit)
	if !ok {
		return
	}

	entries, err := h.store.List(r.Context(), limit)
	if err != nil {
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to list comparisons", err))
		return
	}

	render.JSON(w, r, map[string]interface{}{
		"comparisons": entries,
		"count":       len(entries),
	})
}

// Get handles GET /api/comparisons/{id}
func (h *HistoryHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		h.errorHandler.HandleError(w, r, apierrors.ErrHistoryDisabled)
		return
	}

	id := chi.URLParam(r, "id")
	entry, err := h.store.Get(r.Context(), id)
	switch {
	case errors.Is(err, history.ErrNotFound):
		h.errorHandler.HandleError(w, r, apierrors.NewNotFoundError("comparison "+id))
		return
	case err != nil:
		h.errorHandler.HandleError(w, r, apierrors.NewStorageError("failed to load comparison", err))
		return
	}
	render.JSON(w, r, entry)
}
