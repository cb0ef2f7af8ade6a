package speech

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/coder/websocket"
	"github.com/codewriterrussian/voc-selftest/internal/identity"
)

const writeTimeout = 5 * time.Second

// Hub forwards utterances to the browser tab that asked for them. The
// browser plays them with its own speech synthesis.
type Hub struct {
	mu            sync.RWMutex
	active        map[string]map[string]*websocket.Conn
	allowedOrigin string
	isDev         bool
}

var _ Speaker = (*Hub)(nil)

// NewHub creates an empty connection registry.
func NewHub(allowedOrigin string, isDev bool) *Hub {
	return &Hub{
		active:        make(map[string]map[string]*websocket.Conn),
		allowedOrigin: allowedOrigin,
		isDev:         isDev,
	}
}

// GetActive returns the active connection for a user and session.
func (h *Hub) GetActive(userID, sessionID string) *websocket.Conn {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if sessions, ok := h.active[userID]; ok {
		return sessions[sessionID]
	}
	return nil
}

// Register adds a connection, replacing any previous one of the same tab.
func (h *Hub) Register(userID, sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.active[userID]; !exists {
		h.active[userID] = make(map[string]*websocket.Conn)
	}

	if existing, exists := h.active[userID][sessionID]; exists && existing != conn {
		_ = existing.Close(websocket.StatusNormalClosure, "session replaced")
	}

	h.active[userID][sessionID] = conn
	slog.Info("Speech client registered", "user_id", userID, "session_id", sessionID)
}

// Unregister removes conn if it is still the registered one.
func (h *Hub) Unregister(userID, sessionID string, conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if sessions, ok := h.active[userID]; ok {
		if current, exists := sessions[sessionID]; exists && current == conn {
			delete(sessions, sessionID)
			if len(sessions) == 0 {
				delete(h.active, userID)
			}
			slog.Info("Speech client unregistered", "user_id", userID, "session_id", sessionID)
		}
	}
}

type speakMessage struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Voice string `json:"voice"`
}

// Speak implements Speaker. Utterances for tabs without a connection are dropped.
func (h *Hub) Speak(u Utterance) {
	conn := h.GetActive(u.UserID, u.SessionID)
	if conn == nil {
		slog.Debug("No speech client connected", "user_id", u.UserID, "session_id", u.SessionID)
		return
	}

	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()
		if err := writeJSON(ctx, conn, speakMessage{Type: "speak", Text: u.Text, Voice: u.Voice}); err != nil {
			slog.Debug("Speech write failed", "error", err, "user_id", u.UserID)
		}
	}()
}

// ServeHTTP upgrades the request and keeps the connection registered until the client leaves.
func (h *Hub) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	userID := identity.UserIDFromContext(r.Context())
	sessionID := identity.SessionIDFromContext(r.Context())

	if !h.checkOrigin(r) {
		http.Error(w, "origin not allowed", http.StatusForbidden)
		return
	}

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: []string{"*"},
	})
	if err != nil {
		slog.Error("Failed to accept WebSocket", "error", err, "user_id", userID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "user_id", userID)
		}
	}()

	h.Register(userID, sessionID, ws)
	defer h.Unregister(userID, sessionID, ws)

	h.readLoop(r.Context(), ws, userID)
}

func (h *Hub) readLoop(ctx context.Context, ws *websocket.Conn, userID string) {
	for {
		_, message, err := ws.Read(ctx)
		if err != nil {
			if websocket.CloseStatus(err) != -1 {
				slog.Debug("WebSocket closed by client", "user_id", userID)
			} else {
				slog.Debug("WebSocket read error", "error", err, "user_id", userID)
			}
			return
		}

		var msg struct {
			Type string `json:"type"`
		}
		if err := json.Unmarshal(message, &msg); err != nil {
			continue
		}
		if msg.Type == "ping" {
			if err := writeJSON(ctx, ws, map[string]string{"type": "pong"}); err != nil {
				slog.Debug("Failed to send pong", "error", err)
			}
		}
	}
}

func (h *Hub) checkOrigin(r *http.Request) bool {
	if h.isDev {
		return true
	}
	origin := r.Header.Get("Origin")
	if origin == "" || h.allowedOrigin == "*" || origin == h.allowedOrigin {
		return true
	}
	// Same-origin pages served by this process.
	if origin == "http://"+r.Host || origin == "https://"+r.Host {
		return true
	}
	slog.Warn("WebSocket origin rejected", "origin", origin, "allowed", h.allowedOrigin)
	return false
}

func writeJSON(ctx context.Context, ws *websocket.Conn, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return ws.Write(ctx, websocket.MessageText, data)
}
