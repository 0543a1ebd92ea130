package bridge

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// socket serializes writes; gorilla allows one concurrent writer per conn.
type socket struct {
	conn         *websocket.Conn
	writeTimeout time.Duration

	mu     sync.Mutex
	closed bool
}

func newSocket(conn *websocket.Conn, writeTimeout time.Duration) *socket {
	return &socket{conn: conn, writeTimeout: writeTimeout}
}

func (s *socket) write(messageType int, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	_ = s.conn.SetWriteDeadline(time.Now().Add(s.writeTimeout))
	return s.conn.WriteMessage(messageType, data)
}

func (s *socket) text(data []byte) error { return s.write(websocket.TextMessage, data) }

func (s *socket) ping() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return websocket.ErrCloseSent
	}
	return s.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(s.writeTimeout))
}

// close sends a close frame then drops the connection. Safe to call twice.
func (s *socket) close(code int, reason string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	_ = s.conn.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(2*time.Second))
	_ = s.conn.Close()
}
