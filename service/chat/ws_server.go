package chat

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"LoginChat/logger"
	"LoginChat/tools/ids"
	"LoginChat/tools/safe"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 1 << 20
)

// Origin policy is enforced by middleware in front of this route.
var upgrader = websocket.Upgrader{
	ReadBufferSize:  4096,
	WriteBufferSize: 4096,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// HandleWS upgrades the request and runs the connection's read loop.
// One read goroutine and one write pump per connection; the pump is the
// only websocket writer.
func (s *Server) HandleWS(c *gin.Context) {
	ws, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warnf("[ws] upgrade failed: %v", err)
		return
	}

	client := NewClient(ids.GenerateString(), ws, s.sendQueue)
	s.connMgr.Add(client)
	safe.Go(func() { s.writePump(client) })

	if ack, aerr := BuildConnAck(client.ConnID, s.nodeID); aerr == nil {
		client.TrySend(ack)
	}
	logger.Infof("[ws] connected conn=%s remote=%s", client.ConnID, ws.RemoteAddr())

	s.readLoop(client)
	s.teardown(client)
}

func (s *Server) readLoop(client *Client) {
	ws := client.WS
	ws.SetReadLimit(maxMessageSize)
	_ = ws.SetReadDeadline(time.Now().Add(pongWait))
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		mt, data, err := ws.ReadMessage()
		if err != nil {
			if websocket.IsCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseNoStatusReceived,
			) {
				logger.Infof("[ws] peer closed conn=%s", client.ConnID)
			} else {
				logger.Infof("[ws] read err conn=%s err=%v", client.ConnID, err)
			}
			return
		}
		if mt != websocket.TextMessage && mt != websocket.BinaryMessage {
			continue
		}

		frame, perr := ParseFrameJSON(data)
		if perr != nil {
			sample := data
			if len(sample) > 256 {
				sample = sample[:256]
			}
			logger.Warnf("[ws] bad frame conn=%s err=%v sample=%q", client.ConnID, perr, sample)
			continue
		}

		if frame.Type == FramePing {
			if pong, merr := MarshalFrame(FramePing, frame.TraceID, nil); merr == nil {
				client.TrySend(pong)
			}
			continue
		}

		h := s.disp.GetHandler(frame.Type)
		if h == nil {
			logger.Warnf("[ws] no handler conn=%s type=%s", client.ConnID, frame.Type)
			continue
		}
		// Handlers absorb their own failures; an error here is a bug,
		// not a client problem, so log and keep the connection.
		if herr := h.Handle(&Context{S: s}, frame, client); herr != nil {
			logger.Errorf("[ws] handler err conn=%s type=%s err=%v", client.ConnID, frame.Type, herr)
		}
	}
}

// teardown runs after the read loop exits, in the connection's own
// goroutine. The registry unregister is conn-id keyed, so a disconnect
// arriving after the user reconnected elsewhere changes nothing.
func (s *Server) teardown(client *Client) {
	s.connMgr.Remove(client.ConnID)
	client.Close()

	if client.Bound() {
		if e, ok := s.reg.Unregister(client.ConnID); ok {
			logger.Infof("[ws] offline user=%s conn=%s", e.UserID, client.ConnID)
			s.tracker.UserOffline(e.UserID)
		} else {
			logger.Debug("[ws] stale disconnect, newer connection kept ownership")
		}
	} else {
		logger.Infof("[ws] unbound conn closed conn=%s", client.ConnID)
	}
}

func (s *Server) writePump(client *Client) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = client.WS.Close()
	}()

	for {
		select {
		case data := <-client.Send:
			_ = client.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.WS.WriteMessage(websocket.TextMessage, data); err != nil {
				logger.Infof("[ws] write err conn=%s err=%v", client.ConnID, err)
				return
			}
		case <-ticker.C:
			_ = client.WS.SetWriteDeadline(time.Now().Add(writeWait))
			if err := client.WS.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(writeWait)); err != nil {
				return
			}
		case <-client.Done():
			_ = client.WS.SetWriteDeadline(time.Now().Add(writeWait))
			_ = client.WS.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return
		}
	}
}
