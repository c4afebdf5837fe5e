package handlers

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/crisphq/crisp-interview/internal/interview"
)

// WSHandler streams live session snapshots (status changes and timer
// ticks) to the interviewee UI.
type WSHandler struct {
	engine   *interview.Engine
	log      *logrus.Logger
	upgrader websocket.Upgrader
}

func NewWSHandler(engine *interview.Engine, log *logrus.Logger) *WSHandler {
	return &WSHandler{
		engine: engine,
		log:    log,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true }, // TODO: restrict origin in prod
		},
	}
}

type wsConn struct {
	c  *websocket.Conn
	mu sync.Mutex
}

func (w *wsConn) writeJSON(v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.c.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return w.c.WriteMessage(websocket.TextMessage, b)
}

type wsSnapshotMsg struct {
	Type        string `json:"type"` // "snapshot"
	WelcomeBack bool   `json:"welcomeBack"`
	State       any    `json:"state"`
}

func (h *WSHandler) InterviewWS(c *gin.Context) {
	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		// upgrade already wrote response in most cases
		return
	}
	defer conn.Close()

	wc := &wsConn{c: conn}
	snapshots, cancel := h.engine.Subscribe()
	defer cancel()

	// initial state so the client does not wait for the next event
	initial := wsSnapshotMsg{
		Type:        "snapshot",
		WelcomeBack: h.engine.NeedsWelcomeBack(),
		State:       h.engine.Snapshot(),
	}
	if err := wc.writeJSON(initial); err != nil {
		return
	}

	// reader goroutine: only there to notice the peer going away
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case snap, ok := <-snapshots:
			if !ok {
				return
			}
			msg := wsSnapshotMsg{
				Type:        "snapshot",
				WelcomeBack: h.engine.NeedsWelcomeBack(),
				State:       snap,
			}
			if err := wc.writeJSON(msg); err != nil {
				h.log.WithError(err).Debug("ws write failed, dropping client")
				return
			}
		}
	}
}
