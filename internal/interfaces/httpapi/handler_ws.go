package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	sonic "github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"github.com/valyala/bytebufferpool"

	"github.com/squadscore/squadscore/internal/platform/realtime"
	"github.com/squadscore/squadscore/internal/usecase"
)

const (
	wsWriteTimeout = 10 * time.Second
	wsPongTimeout  = 60 * time.Second
	wsPingInterval = 30 * time.Second
)

var wsUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	// Browser origins are enforced by the CORS layer for the REST
	// surface; the socket relies on bearer auth instead.
	CheckOrigin: func(*http.Request) bool { return true },
}

type wsEventPayload struct {
	Topic   string `json:"topic"`
	Kind    string `json:"kind"`
	Payload any    `json:"payload,omitempty"`
}

// Subscribe upgrades the connection to a websocket and streams events
// for a single topic. The caller must be authorized for the topic's
// resource before the upgrade happens.
func (h *Handler) Subscribe(w http.ResponseWriter, r *http.Request) {
	ctx, span := startSpan(r.Context(), "httpapi.Handler.Subscribe")
	defer span.End()

	principal, ok := principalFromContext(ctx)
	if !ok {
		writeError(ctx, w, fmt.Errorf("%w: principal is missing from request context", usecase.ErrUnauthorized))
		return
	}

	topic := strings.TrimSpace(r.URL.Query().Get("topic"))
	if topic == "" {
		writeError(ctx, w, fmt.Errorf("%w: topic query parameter is required", usecase.ErrInvalidInput))
		return
	}

	if err := h.authorizeTopic(r, topic, principal.UserID); err != nil {
		h.logger.WarnContext(ctx, "subscribe rejected", "user_id", principal.UserID, "topic", topic, "error", err)
		writeError(ctx, w, err)
		return
	}

	conn, err := wsUpgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WarnContext(ctx, "websocket upgrade failed", "user_id", principal.UserID, "topic", topic, "error", err)
		return
	}
	defer conn.Close()

	sub := h.broker.Subscribe(topic)
	defer sub.Close()

	// Reader drains control frames and unblocks the loop below when
	// the client goes away.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		conn.SetReadLimit(512)
		_ = conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(wsPongTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ping := time.NewTicker(wsPingInterval)
	defer ping.Stop()

	for {
		select {
		case event, ok := <-sub.Events():
			if !ok {
				return
			}
			if err := h.writeEvent(conn, event); err != nil {
				return
			}
		case <-ping.C:
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		case <-closed:
			return
		case <-ctx.Done():
			return
		}
	}
}

func (h *Handler) writeEvent(conn *websocket.Conn, event realtime.Event) error {
	buf := bytebufferpool.Get()
	defer bytebufferpool.Put(buf)

	encoded, err := sonic.Marshal(wsEventPayload{
		Topic:   event.Topic,
		Kind:    event.Kind,
		Payload: event.Payload,
	})
	if err != nil {
		return err
	}
	_, _ = buf.Write(encoded)

	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
	return conn.WriteMessage(websocket.TextMessage, buf.B)
}

func (h *Handler) authorizeTopic(r *http.Request, topic, userID string) error {
	ctx := r.Context()

	kind, resourceID, found := strings.Cut(topic, ":")
	if !found || strings.TrimSpace(resourceID) == "" {
		return fmt.Errorf("%w: malformed topic %q", usecase.ErrInvalidInput, topic)
	}

	switch kind {
	case "chat":
		_, err := h.squadService.Get(ctx, resourceID, userID)
		return err
	case "leaderboard":
		_, err := h.leaderboardService.GetWithEntries(ctx, resourceID, userID)
		return err
	default:
		return fmt.Errorf("%w: unknown topic kind %q", usecase.ErrInvalidInput, kind)
	}
}
