package websocket

import (
	"sync"

	"ai-research-be/internal/pkg/logger"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// Conn is the write side of a duplex connection. *websocket.Conn satisfies
// it; tests substitute fakes.
type Conn interface {
	WriteMessage(messageType int, data []byte) error
}

// heartbeat convention: a literal inbound "ping" is answered with a
// literal "pong" instead of being forwarded.
const (
	pingPayload = "ping"
	pongPayload = "pong"
)

// session is one registered connection: its outbox and the identity of
// its sender goroutine.
type session struct {
	id  uuid.UUID
	out *outbox
}

// Manager tracks active connections. Each connection gets exactly one
// outbox and one sender goroutine at Connect time; both are torn down at
// Disconnect. A connection is in the active set iff its sender is running.
type Manager struct {
	mu     sync.Mutex
	active map[Conn]*session
	logger logger.ILogger
}

func NewManager(log logger.ILogger) *Manager {
	return &Manager{
		active: make(map[Conn]*session),
		logger: log,
	}
}

// Connect registers the connection and starts its sender. Calling twice
// for the same physical connection creates two entries; callers must not.
func (m *Manager) Connect(conn Conn) {
	s := &session{id: uuid.New(), out: newOutbox()}

	m.mu.Lock()
	m.active[conn] = s
	m.mu.Unlock()

	go m.runSender(conn, s)

	m.logger.Info("Manager", "Connection registered", map[string]interface{}{"session_id": s.id})
}

// Disconnect removes the connection from the active set and stops its
// sender via the outbox sentinel, even if the sender is blocked waiting.
// Unknown connections are a no-op.
func (m *Manager) Disconnect(conn Conn) {
	m.mu.Lock()
	s, ok := m.active[conn]
	if ok {
		delete(m.active, conn)
	}
	m.mu.Unlock()

	if !ok {
		return
	}

	s.out.close()
	m.logger.Info("Manager", "Connection unregistered", map[string]interface{}{"session_id": s.id})
}

// Enqueue appends a payload to the connection's outbox. If the connection
// is no longer active the payload is silently dropped: the recipient is
// gone, which is not an error for the sender. Never blocks.
func (m *Manager) Enqueue(conn Conn, payload []byte) {
	m.mu.Lock()
	s, ok := m.active[conn]
	m.mu.Unlock()

	if !ok {
		return
	}
	s.out.push(payload)
}

// IsActive reports whether the connection is currently registered.
func (m *Manager) IsActive(conn Conn) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[conn]
	return ok
}

// runSender drains the outbox one item at a time and writes in enqueue
// order. Being the only writer for its connection it needs no further
// locking to guarantee ordering. Ends on the stop sentinel or the first
// write failure.
func (m *Manager) runSender(conn Conn, s *session) {
	for {
		payload, ok := s.out.pop()
		if !ok {
			return
		}

		if string(payload) == pingPayload {
			payload = []byte(pongPayload)
		}

		if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			m.logger.Warn("Manager", "Write failed, dropping connection", map[string]interface{}{
				"session_id": s.id,
				"error":      err.Error(),
			})
			m.Disconnect(conn)
			return
		}
	}
}
