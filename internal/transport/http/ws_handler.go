package http

import (
	"log/slog"
	"net/http"
	"slices"

	"github.com/gorilla/websocket"

	apierrors "sidebyside/internal/errors"
	"sidebyside/internal/infrastructure"
	"sidebyside/internal/middleware"
	ws "sidebyside/internal/websocket"
)

// WebSocketHandler upgrades connections and attaches them to the hub.
type WebSocketHandler struct {
	hub          *ws.Hub
	upgrader     websocket.Upgrader
	errorHandler *apierrors.ErrorHandler
	logger       *slog.Logger
}

// NewWebSocketHandler creates a websocket handler. An empty allowedOrigins
// accepts every origin.
func NewWebSocketHandler(hub *ws.Hub, readBuffer, writeBuffer int, allowedOrigins []string, errorHandler *apierrors.ErrorHandler, logger *slog.Logger) *WebSocketHandler {
	h := &WebSocketHandler{
		hub:          hub,
		errorHandler: errorHandler,
		logger:       logger.With(slog.String("handler", "websocket")),
	}
	h.upgrader = websocket.Upgrader{
		ReadBufferSize:  readBuffer,
		WriteBufferSize: writeBuffer,
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			// Same-origin requests and non-browser clients send no Origin.
			if origin == "" || len(allowedOrigins) == 0 {
				return true
			}
			if slices.Contains(allowedOrigins, origin) {
				return true
			}
			h.logger.WarnContext(r.Context(), "websocket origin rejected",
				slog.String("origin", origin))
			return false
		},
		Error: func(w http.ResponseWriter, r *http.Request, status int, reason error) {
			h.logger.WarnContext(r.Context(), "websocket upgrade failed",
				slog.Int("status", status),
				slog.String("reason", reason.Error()))
			h.errorHandler.HandleError(w, r, apierrors.NewWithDetails(status, apierrors.ErrWebSocketUpgrade.ErrorCode, apierrors.ErrWebSocketUpgrade.Message, reason.Error()))
		},
	}
	return h
}

// ServeHTTP handles GET /ws
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// The upgrader has already answered through its Error callback.
		return
	}

	traceID := infrastructure.GetTraceID(r.Context())
	if traceID == "" {
		traceID = middleware.GetReqID(r.Context())
	}
	client := ws.ServeWS(h.hub, conn, traceID, h.logger)
	h.logger.InfoContext(r.Context(), "websocket client connected",
		slog.String("client_id", client.ID()),
		slog.String("remote_addr", conn.RemoteAddr().String()))
}
