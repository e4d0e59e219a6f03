package mocks

import (
	"context"
	"sync"
)

// GeneratorResponse is one queued result for MockGenerator.
type GeneratorResponse struct {
	Text string
	Err  error
}

// MockGenerator implements generation.Generator for testing
type MockGenerator struct {
	// GenerateFn allows test cases to mock the Generate behavior
	GenerateFn func(ctx context.Context, prompt string) (string, error)

	// Responses are returned in order, one per call, before falling back
	// to the default values.
	Responses []GeneratorResponse

	// Default response values
	Text string
	Err  error

	// Call tracking for verification
	GenerateCalls struct {
		// mu protects the call tracking state for concurrent test cases
		mu sync.Mutex

		// Count tracks how many times Generate was called
		Count int

		// Prompts contains all prompts passed to Generate calls
		Prompts []string
	}

	mu sync.Mutex
}

// Generate implements the generation.Generator interface
func (m *MockGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	m.GenerateCalls.mu.Lock()
	m.GenerateCalls.Count++
	m.GenerateCalls.Prompts = append(m.GenerateCalls.Prompts, prompt)
	m.GenerateCalls.mu.Unlock()

	if m.GenerateFn != nil {
		return m.GenerateFn(ctx, prompt)
	}

	m.mu.Lock()
	if len(m.Responses) > 0 {
		next := m.Responses[0]
		m.Responses = m.Responses[1:]
		m.mu.Unlock()
		return next.Text, next.Err
	}
	m.mu.Unlock()

	return m.Text, m.Err
}

// CallCount returns the number of Generate calls so far.
func (m *MockGenerator) CallCount() int {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	return m.GenerateCalls.Count
}

// Prompts returns a copy of the prompts received so far.
func (m *MockGenerator) Prompts() []string {
	m.GenerateCalls.mu.Lock()
	defer m.GenerateCalls.mu.Unlock()
	out := make([]string, len(m.GenerateCalls.Prompts))
	copy(out, m.GenerateCalls.Prompts)
	return out
}

// NewMockGeneratorWithText creates a MockGenerator that always returns text
func NewMockGeneratorWithText(text string) *MockGenerator {
	return &MockGenerator{Text: text}
}

// NewMockGeneratorWithError creates a MockGenerator that returns the specified error
func NewMockGeneratorWithError(err error) *MockGenerator {
	return &MockGenerator{Err: err}
}

// NewMockGeneratorWithResponses creates a MockGenerator that returns the
// given responses in order and then the zero default.
func NewMockGeneratorWithResponses(responses ...GeneratorResponse) *MockGenerator {
	return &MockGenerator{Responses: responses}
}
