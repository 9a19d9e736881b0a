package chat

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"VProject/logger"
	security "VProject/middleware/security"
	"VProject/tools/ids"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS upgrades the connection and runs its session to completion.
// The identity was bound by the auth middleware before this runs; an
// anonymous identity is rejected at Open, before any group join.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Infof("[ws] upgrade error: %v", err)
		return
	}

	user := security.UserFrom(c)
	var userID int64
	if user != nil {
		userID = user.ID
	}
	client := NewClient(ids.GenerateString(), userID, ws, s.deps.SendQueueSize)
	sess := NewSession(s, client, user)

	ctx := c.Request.Context()
	if err := sess.Open(ctx); err != nil {
		return // rejected: closed without joining anything
	}
	defer sess.Close(ctx)

	go client.WritePump()

	// Pong renews the presence TTL; ignore errors, the key re-arms on the
	// next pong anyway.
	group := GroupKey(user.ID)
	ws.SetPongHandler(func(string) error {
		_ = s.deps.Presence.Renew(ctx, group)
		return nil
	})

	// Read loop: frames of this connection are handled strictly in
	// arrival order, one at a time.
	for {
		mt, data, rerr := ws.ReadMessage()
		if rerr != nil {
			if websocket.IsCloseError(rerr,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s", client.ConnID)
			} else if ne, ok := rerr.(net.Error); ok && ne.Timeout() {
				logger.Infof("[ws] read timeout conn=%s err=%v", client.ConnID, rerr)
			} else {
				logger.Infof("[ws] read err conn=%s err=%v", client.ConnID, rerr)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}
		sess.HandleFrame(ctx, data)
	}
}
