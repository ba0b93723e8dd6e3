package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/harudiary/haru-backend/internal/services"
)

var generateUpgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// CORS for WebSocket is handled at the HTTP layer already.
		return true
	},
}

// GenerateEvent is one message pushed to the client while a pipeline
// runs: progress updates per step, then a final result or error.
type GenerateEvent struct {
	Type      string                     `json:"type"` // "progress", "result", "error"
	Step      string                     `json:"step,omitempty"`
	Status    string                     `json:"status,omitempty"`
	Result    *services.GenerationResult `json:"result,omitempty"`
	Error     string                     `json:"error,omitempty"`
	Timestamp time.Time                  `json:"timestamp"`
}

// GenerateWebSocket runs the diary AI pipeline and streams per-step
// progress over the connection. Authentication uses the session token
// (Authorization: Bearer <token>), with a `token` query parameter
// fallback for browser WebSocket clients.
func GenerateWebSocket(w http.ResponseWriter, r *http.Request) {
	token := extractBearerToken(r)
	if token == "" {
		token = r.URL.Query().Get("token")
		if token == "" {
			http.Error(w, "missing session token", http.StatusUnauthorized)
			return
		}
	}

	userID, ok, err := services.ValidateSession(token)
	if err != nil || !ok {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}

	conn, err := generateUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn.SetReadLimit(64 * 1024)
	_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))

	// One generation per message; the connection stays open so the
	// client can regenerate without reconnecting
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			return
		}

		var req GenerateRequest
		if err := json.Unmarshal(data, &req); err != nil || req.RawText == "" {
			_ = conn.WriteJSON(GenerateEvent{
				Type:      "error",
				Error:     "raw_text is required",
				Timestamp: time.Now().UTC(),
			})
			continue
		}

		result := generationService.Generate(ctx, userID.String(), req.UserName, req.Gender, req.RawText, func(step, status string) {
			_ = conn.WriteJSON(GenerateEvent{
				Type:      "progress",
				Step:      step,
				Status:    status,
				Timestamp: time.Now().UTC(),
			})
		})

		_ = conn.WriteJSON(GenerateEvent{
			Type:      "result",
			Result:    result,
			Timestamp: time.Now().UTC(),
		})

		_ = conn.SetReadDeadline(time.Now().Add(90 * time.Second))
	}
}
