package api

import (
	"context"
	"sync"

	"github.com/diogo/chatpanel/internal/models"
)

// MockSender is a scripted stand-in for Client in tests of callers.
type MockSender struct {
	mu sync.Mutex

	// Reply and Err are returned when Replies is exhausted.
	Reply models.Message
	Err   error

	// Replies, when set, are returned in order, one per call.
	Replies []MockReply

	// Calls records the conversation passed to each Send.
	Calls [][]models.Message
}

// MockReply is one scripted result.
type MockReply struct {
	Message models.Message
	Err     error
}

// Send implements chat.Sender
func (m *MockSender) Send(_ context.Context, messages []models.Message) (models.Message, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.Calls = append(m.Calls, models.CloneMessages(messages))
	if len(m.Replies) > 0 {
		next := m.Replies[0]
		m.Replies = m.Replies[1:]
		return next.Message, next.Err
	}
	return m.Reply, m.Err
}

// CallCount returns how many times Send was called.
func (m *MockSender) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Calls)
}
