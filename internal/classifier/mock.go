package classifier

import (
	"context"
	"sync"
)

// MockCompleter is a scripted Completer for tests.
type MockCompleter struct {
	mu sync.Mutex

	// Response is returned for every call unless Responses has an entry for the prompt.
	Response  string
	Responses map[string]string
	Err       error
	// Prompts records every prompt received, in order.
	Prompts []string
}

func (m *MockCompleter) Name() string { return "mock" }

// Complete returns the scripted answer.
func (m *MockCompleter) Complete(_ context.Context, _, prompt string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Prompts = append(m.Prompts, prompt)
	if m.Err != nil {
		return "", m.Err
	}
	if r, ok := m.Responses[prompt]; ok {
		return r, nil
	}
	return m.Response, nil
}

// Calls returns the number of Complete calls so far.
func (m *MockCompleter) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Prompts)
}
