package server

import (
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/vango-dev/ripple/pkg/protocol"
)

const (
	writeWait  = 10 * time.Second
	maxMessage = 4096
)

// outbound is a frame queued for a client.
type outbound struct {
	data      []byte
	frameType protocol.FrameType
}

// client is one websocket connection. Frames are queued on send and
// written by writeLoop; a client whose queue is full is dropped.
type client struct {
	id     string
	conn   *websocket.Conn
	send   chan outbound
	logger *slog.Logger

	closeOnce sync.Once
	done      chan struct{}
	reason    protocol.CloseReason
}

func newClient(id string, conn *websocket.Conn, buffer int, logger *slog.Logger) *client {
	if buffer < 1 {
		buffer = 1
	}
	return &client{
		id:     id,
		conn:   conn,
		send:   make(chan outbound, buffer),
		logger: logger.With("client", id),
		done:   make(chan struct{}),
	}
}

// enqueue queues a frame without blocking. It reports false when the
// client is too slow to keep up.
func (c *client) enqueue(data []byte, ft protocol.FrameType) bool {
	select {
	case <-c.done:
		return false
	default:
	}
	select {
	case c.send <- outbound{data: data, frameType: ft}:
		return true
	default:
		return false
	}
}

// close stops the write loop, which then tells the client why. Only the
// first call's reason is kept.
func (c *client) close(reason protocol.CloseReason) {
	c.closeOnce.Do(func() {
		c.reason = reason
		close(c.done)
	})
}

// writeLoop writes queued frames and periodic pings until the client is
// closed or a write fails. It then sends a Close control frame carrying
// the close reason and closes the connection.
func (s *Server) writeLoop(c *client) {
	ticker := time.NewTicker(s.cfg.PingInterval())
	defer func() {
		ticker.Stop()
		c.close(protocol.CloseError)
		s.sendClose(c, c.reason)
		c.conn.Close()
	}()

	for {
		select {
		case <-c.done:
			return

		case msg := <-c.send:
			if err := s.write(c, msg.data, msg.frameType); err != nil {
				return
			}

		case <-ticker.C:
			ping := protocol.EncodeControl(protocol.NewPing(uint64(time.Now().UnixMilli())))
			data, err := protocol.NewFrame(protocol.FrameControl, ping).Encode()
			if err != nil {
				return
			}
			if err := s.write(c, data, protocol.FrameControl); err != nil {
				return
			}
		}
	}
}

func (s *Server) write(c *client, data []byte, ft protocol.FrameType) error {
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := c.conn.WriteMessage(websocket.BinaryMessage, data); err != nil {
		c.logger.Debug("write failed", "error", err)
		s.metrics.WebSocketError("write")
		return err
	}
	s.metrics.FrameSent(frameLabel(ft), len(data))
	return nil
}

func (s *Server) sendClose(c *client, reason protocol.CloseReason) {
	payload := protocol.EncodeControl(protocol.NewClose(reason, ""))
	data, err := protocol.NewFrame(protocol.FrameControl, payload).Encode()
	if err != nil {
		return
	}
	c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	if c.conn.WriteMessage(websocket.BinaryMessage, data) == nil {
		s.metrics.FrameSent(frameLabel(protocol.FrameControl), len(data))
	}
	c.conn.WriteMessage(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, reason.String()))
}

// readLoop consumes client frames: pings are answered, a Close control or
// a read error ends the connection. The read deadline is pushed forward by
// any frame, so a client must send something every two ping intervals.
func (s *Server) readLoop(c *client) {
	defer c.close(protocol.CloseNormal)

	c.conn.SetReadLimit(maxMessage)
	deadline := 2 * s.cfg.PingInterval()
	c.conn.SetReadDeadline(time.Now().Add(deadline))

	for {
		_, msg, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure,
				websocket.CloseNormalClosure) {
				c.logger.Warn("read error", "error", err)
				s.metrics.WebSocketError("read")
			}
			return
		}
		c.conn.SetReadDeadline(time.Now().Add(deadline))

		frame, err := protocol.DecodeFrame(msg)
		if err != nil {
			c.logger.Warn("frame decode error", "error", err)
			s.metrics.WebSocketError("decode")
			continue
		}
		if frame.Type != protocol.FrameControl {
			c.logger.Warn("unexpected frame type", "type", frame.Type)
			continue
		}

		ctrl, err := protocol.DecodeControl(frame.Payload)
		if err != nil {
			c.logger.Warn("control decode error", "error", err)
			s.metrics.WebSocketError("decode")
			continue
		}
		switch ctrl.Type {
		case protocol.ControlPing:
			pong, err := protocol.NewFrame(protocol.FrameControl,
				protocol.EncodeControl(protocol.NewPong(ctrl.Timestamp))).Encode()
			if err == nil && !c.enqueue(pong, protocol.FrameControl) {
				c.close(protocol.CloseError)
				return
			}
		case protocol.ControlPong:
			// Deadline already extended.
		case protocol.ControlClose:
			c.logger.Debug("client closed", "reason", ctrl.Reason)
			return
		}
	}
}

func frameLabel(ft protocol.FrameType) string {
	switch ft {
	case protocol.FrameInit:
		return "init"
	case protocol.FrameOps:
		return "ops"
	case protocol.FrameControl:
		return "control"
	default:
		return "unknown"
	}
}
