package server

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"dbizzy/internal/logger"
	"dbizzy/internal/preview"
)

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = 54 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

// wsMessage is the envelope of every websocket message. Clients send
// "sendText" with the new schema text or "parseAgain"; the server answers
// every change of the preview with "diagram", and a bad request with
// "error".
type wsMessage struct {
	Command  string            `json:"command"`
	Text     string            `json:"text,omitempty"`
	Error    string            `json:"error,omitempty"`
	Snapshot *preview.Snapshot `json:"snapshot,omitempty"`
}

func diagramMessage(snap preview.Snapshot) wsMessage {
	return wsMessage{Command: "diagram", Snapshot: &snap}
}

// handleWebSocket connects a client to the shared preview. The client gets
// the current snapshot at once and every later one as it is produced.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("websocket upgrade: %v", err)
		return
	}

	snaps, unsubscribe := s.preview.Subscribe()
	replies := make(chan wsMessage, 8)
	done := make(chan struct{})
	go s.readPump(conn, replies, done)

	defer func() {
		unsubscribe()
		conn.Close()
	}()

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	send := func(msg wsMessage) bool {
		conn.SetWriteDeadline(time.Now().Add(writeWait))
		if err := conn.WriteJSON(msg); err != nil {
			logger.Debug("websocket write: %v", err)
			return false
		}
		return true
	}

	if !send(diagramMessage(s.preview.Current())) {
		return
	}
	for {
		select {
		case <-done:
			return
		case snap := <-snaps:
			if !send(diagramMessage(snap)) {
				return
			}
		case msg := <-replies:
			if !send(msg) {
				return
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump applies client commands to the preview until the connection
// fails, then closes done.
func (s *Server) readPump(conn *websocket.Conn, replies chan<- wsMessage, done chan<- struct{}) {
	defer close(done)

	conn.SetReadLimit(maxBody)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	reply := func(text string) {
		select {
		case replies <- wsMessage{Command: "error", Error: text}:
		default:
		}
	}

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("websocket unexpected close: %v", err)
			}
			return
		}
		var msg wsMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			reply("invalid json: " + err.Error())
			continue
		}

		switch msg.Command {
		case "sendText":
			s.preview.SetText(msg.Text)
		case "parseAgain":
			s.preview.Reparse()
		default:
			reply("unknown command: " + msg.Command)
		}
	}
}
