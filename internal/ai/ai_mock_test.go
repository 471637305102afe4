package ai

import (
	"context"
	"sync"
)

// mockGenerator is a scriptable Generator for pipeline tests.
type mockGenerator struct {
	mu    sync.Mutex
	calls []mockCall

	// respond decides the outcome of each call, in order of arrival.
	respond func(call int, parts []Part) (string, error)
}

type mockCall struct {
	parts       []Part
	temperature float32
}

func (m *mockGenerator) Generate(ctx context.Context, parts []Part, temperature float32) (string, error) {
	m.mu.Lock()
	call := len(m.calls)
	m.calls = append(m.calls, mockCall{parts: parts, temperature: temperature})
	m.mu.Unlock()

	if m.respond == nil {
		return "", nil
	}
	return m.respond(call, parts)
}

func (m *mockGenerator) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

func (m *mockGenerator) call(i int) mockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls[i]
}
