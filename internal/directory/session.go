package directory

import (
	"encoding/json"
	"sync"

	"github.com/wolfpen/backend/internal/protocol"
)

// Session is the outbound half of one client connection. The directory
// enqueues frames without blocking; the transport's writer goroutine drains
// Out. A full buffer drops the frame rather than stall the game loop — the
// next full-state snapshot repairs whatever a dropped frame cost.
type Session struct {
	ID string

	mu     sync.Mutex
	out    chan []byte
	closed bool
}

func NewSession(id string) *Session {
	return &Session{
		ID:  id,
		out: make(chan []byte, 64),
	}
}

func (s *Session) Out() <-chan []byte { return s.out }

func (s *Session) Send(msgType string, payload any) {
	b, err := json.Marshal(protocol.Outbound{Type: msgType, Payload: payload})
	if err != nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.out <- b:
	default:
	}
}

// Close ends the outbound stream. Safe to call more than once; the
// transport owns the session's lifetime, the directory only enqueues.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.out)
}
