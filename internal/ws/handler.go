package ws

import (
	"context"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/smartstorage/smartstorage-backend/internal/auth"
	"github.com/smartstorage/smartstorage-backend/internal/auth/jwt"
	"github.com/smartstorage/smartstorage-backend/pkg/logger"
)

const writeTimeout = 10 * time.Second

// Handler upgrades dashboard connections and pumps hub messages to them
type Handler struct {
	hub        *Hub
	jwtManager *jwt.Manager
	logger     *logger.Logger
}

// NewHandler creates a new WebSocket handler
func NewHandler(hub *Hub, jwtManager *jwt.Manager, log *logger.Logger) *Handler {
	return &Handler{
		hub:        hub,
		jwtManager: jwtManager,
		logger:     log,
	}
}

// Serve handles GET /api/ws. Browsers cannot set an Authorization header on
// a WebSocket upgrade, so the token is also accepted as a query parameter.
func (h *Handler) Serve(w http.ResponseWriter, r *http.Request) {
	token := auth.ExtractToken(r)
	if token == "" {
		http.Error(w, "missing token", http.StatusUnauthorized)
		return
	}

	claims, err := h.jwtManager.ValidateToken(token)
	if err != nil {
		http.Error(w, "invalid token", http.StatusUnauthorized)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("websocket upgrade failed")
		return
	}

	client := h.hub.Register(claims.UserID)
	defer h.hub.Unregister(client)

	ctx := r.Context()

	// Inbound frames are not part of the protocol; reading them surfaces
	// close frames so the pump below can exit.
	readDone := make(chan struct{})
	go func() {
		defer close(readDone)
		for {
			if _, _, err := conn.Read(ctx); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case msg, ok := <-client.Send:
			if !ok {
				conn.Close(websocket.StatusNormalClosure, "")
				return
			}
			writeCtx, cancel := context.WithTimeout(ctx, writeTimeout)
			err := conn.Write(writeCtx, websocket.MessageText, msg)
			cancel()
			if err != nil {
				conn.Close(websocket.StatusAbnormalClosure, "write failed")
				return
			}
		case <-readDone:
			return
		case <-ctx.Done():
			conn.Close(websocket.StatusGoingAway, "server shutting down")
			return
		}
	}
}
