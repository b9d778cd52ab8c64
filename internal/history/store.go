// Package history keeps the bounded per-conversation message log.
package history

import (
	"context"
	"strings"
	"sync"
)

// MaxMessages bounds each conversation log; the oldest entries drop first.
const MaxMessages = 20

type Role string

const (
	RoleUser   Role = "user"
	RoleModel  Role = "model"
	RoleSystem Role = "system"
)

type Part struct {
	Text string `json:"text"`
}

// Message is one history entry. Timestamp is epoch milliseconds.
type Message struct {
	Role      Role   `json:"role"`
	Parts     []Part `json:"parts"`
	Timestamp int64  `json:"timestamp"`
}

// Text joins the message parts.
func (m Message) Text() string {
	parts := make([]string, 0, len(m.Parts))
	for _, p := range m.Parts {
		parts = append(parts, p.Text)
	}
	return strings.Join(parts, "\n")
}

// Store is the conversation log. Append writes a batch (usually the
// user/model pair for one request) atomically. Concurrent requests on one
// conversation are serialised per append, not per request: pairs never
// interleave internally, but cross-request ordering is wall-clock append
// order, not client-submission order.
type Store interface {
	History(ctx context.Context, conversationID string) ([]Message, error)
	Append(ctx context.Context, conversationID string, msgs ...Message) error
	Clear(ctx context.Context, conversationID string) error
	Conversations(ctx context.Context) ([]string, error)
}

// MemoryStore keeps conversation logs in process memory.
type MemoryStore struct {
	mu   sync.RWMutex
	logs map[string][]Message
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{logs: make(map[string][]Message)}
}

func (s *MemoryStore) History(_ context.Context, conversationID string) ([]Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	log := s.logs[conversationID]
	out := make([]Message, len(log))
	copy(out, log)
	return out, nil
}

func (s *MemoryStore) Append(_ context.Context, conversationID string, msgs ...Message) error {
	if len(msgs) == 0 {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	log := append(s.logs[conversationID], msgs...)
	if n := len(log); n > MaxMessages {
		log = log[n-MaxMessages:]
	}
	s.logs[conversationID] = log
	return nil
}

func (s *MemoryStore) Clear(_ context.Context, conversationID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.logs, conversationID)
	return nil
}

func (s *MemoryStore) Conversations(_ context.Context) ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]string, 0, len(s.logs))
	for id := range s.logs {
		ids = append(ids, id)
	}
	return ids, nil
}
