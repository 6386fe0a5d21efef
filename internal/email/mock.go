package email

import (
	"context"
	"fmt"
	"sync"
)

// MockSender records sent emails for tests.
type MockSender struct {
	mu sync.Mutex

	// SendFn overrides Send when set.
	SendFn func(ctx context.Context, email *Email) (string, error)

	// Sent records every delivered email.
	Sent []Email
}

var _ Sender = (*MockSender)(nil)

func NewMockSender() *MockSender {
	return &MockSender{}
}

func (m *MockSender) Send(ctx context.Context, email *Email) (string, error) {
	if m.SendFn != nil {
		return m.SendFn(ctx, email)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.Sent = append(m.Sent, *email)
	return fmt.Sprintf("mock-%d", len(m.Sent)), nil
}
