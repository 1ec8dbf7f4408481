package api

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

// wsMessage is one frame in either direction on the chat socket.
type wsMessage struct {
	Type    string `json:"type"` // "message", "reset", "error"
	Message string `json:"message,omitempty"`
	Stage   string `json:"stage,omitempty"`
	OrderID int    `json:"order_id,omitempty"`
}

func (s *Server) upgrader() *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			if len(s.allowedOrigins) == 0 {
				return true
			}
			origin := r.Header.Get("Origin")
			for _, allowed := range s.allowedOrigins {
				if allowed == "*" || allowed == origin {
					return true
				}
			}
			return false
		},
	}
}

// handleWebSocket runs one chat session over a socket. Each connection
// gets its own session unless the client passes ?session_id=.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader().Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()

	sessionID := r.URL.Query().Get("session_id")
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	conv := s.manager.Get(sessionID)
	logger := s.logger.With("session", sessionID)
	logger.Info("websocket session opened")

	for {
		var in wsMessage
		if err := conn.ReadJSON(&in); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		switch in.Type {
		case "reset":
			conv.Reset()
			if err := conn.WriteJSON(wsMessage{Type: "reset"}); err != nil {
				return
			}

		case "message":
			reply, err := conv.Turn(r.Context(), in.Message)
			if err != nil {
				logger.Error("turn failed", "error", err)
				if werr := conn.WriteJSON(wsMessage{Type: "error", Message: "internal error"}); werr != nil {
					return
				}
				continue
			}
			state := conv.State()
			out := wsMessage{
				Type:    "message",
				Message: reply,
				Stage:   state.Stage.String(),
				OrderID: state.OrderID,
			}
			if err := conn.WriteJSON(out); err != nil {
				return
			}

		default:
			if err := conn.WriteJSON(wsMessage{Type: "error", Message: "unknown message type"}); err != nil {
				return
			}
		}
	}
}
