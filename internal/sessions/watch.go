package sessions

import (
	"context"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/JaimeStill/plagiat/internal/workflow"
	"github.com/JaimeStill/plagiat/pkg/handlers"
)

const (
	watchWriteWait = 10 * time.Second
	watchPongWait  = 60 * time.Second
	watchPingEvery = (watchPongWait * 9) / 10
	watchReadLimit = 512
)

// EventSnapshot is the type of the first message sent to a watcher. It
// carries the session state at the time the watch began.
const EventSnapshot workflow.EventKind = "snapshot"

// Watch upgrades the request to a websocket and streams session events
// until the client disconnects or the session closes. Inbound messages are
// discarded.
func (h *Handler) Watch(w http.ResponseWriter, r *http.Request) {
	sess, err := h.session(r)
	if err != nil {
		handlers.RespondError(w, h.logger, MapHTTPStatus(err), err)
		return
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed", "session", sess.ID, "error", err)
		return
	}
	defer conn.Close()

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	events := sess.Controller.Subscribe(ctx)

	conn.SetReadLimit(watchReadLimit)
	if err := conn.SetReadDeadline(time.Now().Add(watchPongWait)); err != nil {
		return
	}
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(watchPongWait))
	})

	go func() {
		defer cancel()
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	h.logger.Debug("watch started", "session", sess.ID)
	defer h.logger.Debug("watch ended", "session", sess.ID)

	snapshot := EventMessage{Type: EventSnapshot, Session: sess.View()}
	if err := writeJSON(conn, snapshot); err != nil {
		return
	}

	ticker := time.NewTicker(watchPingEvery)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, ErrClosed.Error())
				conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(watchWriteWait))
				return
			}
			if err := writeJSON(conn, newEventMessage(sess, ev)); err != nil {
				return
			}
		case <-ticker.C:
			if err := conn.SetWriteDeadline(time.Now().Add(watchWriteWait)); err != nil {
				return
			}
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

func writeJSON(conn *websocket.Conn, msg EventMessage) error {
	if err := conn.SetWriteDeadline(time.Now().Add(watchWriteWait)); err != nil {
		return err
	}
	return conn.WriteJSON(msg)
}
