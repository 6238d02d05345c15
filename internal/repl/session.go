package repl

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Message is a frame of the interactive session.
type Message struct {
	Type    string `json:"type"`
	Code    string `json:"code,omitempty"`
	Value   any    `json:"value,omitempty"`
	Message string `json:"message,omitempty"`
}

// handleSession upgrades to a websocket and evaluates each "eval" frame
// in order until the client disconnects.
func (s *Server) handleSession(c *gin.Context) {
	conn, err := s.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.logger.Warn("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	s.metrics.IncREPLSessions()
	defer s.metrics.DecREPLSessions()

	log := s.logger.With(zap.String("remote", conn.RemoteAddr().String()))
	log.Debug("session opened")

	if err := conn.WriteJSON(Message{Type: "system", Message: "connected"}); err != nil {
		return
	}

	for {
		var msg Message
		if err := conn.ReadJSON(&msg); err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Debug("session read failed", zap.Error(err))
			}
			break
		}

		var reply Message
		switch msg.Type {
		case "eval":
			reply = s.evalFrame(msg.Code)
		case "ping":
			reply = Message{Type: "pong"}
		default:
			reply = Message{Type: "error", Message: "unknown message type"}
		}

		_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
		if err := conn.WriteJSON(reply); err != nil {
			log.Debug("session write failed", zap.Error(err))
			break
		}
	}
	log.Debug("session closed")
}

func (s *Server) evalFrame(code string) Message {
	value, err := s.eval.Eval(code)
	if err != nil {
		return Message{Type: "error", Message: err.Error()}
	}
	return Message{Type: "result", Value: printable(value)}
}
