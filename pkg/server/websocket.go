package server

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type wsError struct {
	Error string `json:"error"`
}

// handleChatWebSocket resolves chat messages over a persistent connection:
// one JSON message in, one resolution out, in order.
func (s *Server) handleChatWebSocket(w http.ResponseWriter, r *http.Request) {
	actor, err := actorFromRequest(r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusUnauthorized)
		return
	}

	ws, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		slog.Error("Failed to upgrade websocket", "error", err)
		return
	}
	defer ws.Close()

	sid := sessionID(actor)
	for {
		var msg chatRequest
		if err := ws.ReadJSON(&msg); err != nil {
			if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				break
			}
			slog.Error("WebSocket read error", "error", err, "actor", actor.ID)
			break
		}
		if msg.Message == "" {
			if err := ws.WriteJSON(wsError{Error: "message must not be empty"}); err != nil {
				break
			}
			continue
		}

		res, err := s.agent.Resolve(r.Context(), msg.Message, sid, actor)
		if err != nil {
			slog.Error("Resolve failed", "error", err, "actor", actor.ID)
			if err := ws.WriteJSON(wsError{Error: "internal error"}); err != nil {
				break
			}
			continue
		}
		if err := ws.WriteJSON(res); err != nil {
			slog.Error("WebSocket write error", "error", err, "actor", actor.ID)
			break
		}
	}
}
