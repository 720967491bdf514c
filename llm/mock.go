package llm

import (
	"context"
	"sync"
)

// MockClient replays scripted responses in order and records every
// request it sees. Once the script is exhausted it repeats the last
// entry. Useful for deterministic engine tests.
type MockClient struct {
	mu        sync.Mutex
	responses []string
	errs      []error
	calls     []Request
}

func NewMockClient(responses ...string) *MockClient {
	return &MockClient{responses: responses}
}

// Fail makes the next calls return err instead of scripted text.
func (m *MockClient) Fail(err error) *MockClient {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs = append(m.errs, err)
	return m
}

func (m *MockClient) Complete(ctx context.Context, req Request) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, req)

	if len(m.errs) > 0 {
		err := m.errs[0]
		m.errs = m.errs[1:]
		return "", err
	}
	if len(m.responses) == 0 {
		return "", ErrEmptyCompletion
	}

	resp := m.responses[0]
	if len(m.responses) > 1 {
		m.responses = m.responses[1:]
	}
	return resp, nil
}

// Calls returns a copy of every request seen so far.
func (m *MockClient) Calls() []Request {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]Request(nil), m.calls...)
}
