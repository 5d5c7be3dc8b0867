package ws

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/wolfpen/backend/internal/directory"
	"github.com/wolfpen/backend/internal/protocol"
)

const writeTimeout = 3 * time.Second

// Handler upgrades the connection, greets the client, and pumps frames
// between the socket and the directory. The reader runs on this goroutine;
// a writer goroutine drains the session's outbox.
func Handler(d *directory.Directory, log *zap.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			InsecureSkipVerify: true, // clients are static pages on arbitrary origins
		})
		if err != nil {
			return
		}
		defer conn.Close(websocket.StatusNormalClosure, "bye")

		sess := directory.NewSession(uuid.NewString())
		defer sess.Close()
		defer d.HandleDisconnect(sess.ID)

		sess.Send(protocol.MsgSessionWelcome, protocol.SessionWelcome{
			SessionID:       sess.ID,
			ServerTime:      time.Now().UnixMilli(),
			ProtocolVersion: protocol.ProtocolVersion,
			AuthRequired:    false,
		})

		// Writer: ends when the session closes or a write fails.
		go func() {
			for b := range sess.Out() {
				wctx, cancel := context.WithTimeout(r.Context(), writeTimeout)
				err := conn.Write(wctx, websocket.MessageText, b)
				cancel()
				if err != nil {
					return
				}
			}
		}()

		log.Debug("session connected", zap.String("session", sess.ID))
		for {
			_, data, err := conn.Read(r.Context())
			if err != nil {
				switch websocket.CloseStatus(err) {
				case websocket.StatusNormalClosure, websocket.StatusGoingAway:
				default:
					log.Debug("session read ended",
						zap.String("session", sess.ID), zap.Error(err))
				}
				return
			}

			var env protocol.Envelope
			if err := json.Unmarshal(data, &env); err != nil || env.Type == "" {
				continue
			}
			d.HandleMessage(sess, env)
		}
	}
}
