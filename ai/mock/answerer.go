package mock

import (
	"context"
	"fmt"
)

// MockAnswerer is a test double for ai.Answerer.
// It allows custom behavior injection via a function field.
type MockAnswerer struct {
	// AnswerFunc is called by Answer if set.
	// If nil, uses default deterministic behavior.
	AnswerFunc func(ctx context.Context, question string, articleContext string) (string, error)

	callCount     int
	groundedCalls int
}

// NewMockAnswerer creates a mock answerer with default deterministic behavior.
// Note: Returns concrete type to allow behavior injection and call assertions.
func NewMockAnswerer() *MockAnswerer {
	return &MockAnswerer{}
}

// Answer returns a canned answer that echoes the question, marking whether
// grounding context was supplied so tests can tell the two phases apart.
func (m *MockAnswerer) Answer(ctx context.Context, question string, articleContext string) (string, error) {
	m.callCount++
	if articleContext != "" {
		m.groundedCalls++
	}

	if m.AnswerFunc != nil {
		return m.AnswerFunc(ctx, question, articleContext)
	}

	if articleContext != "" {
		return fmt.Sprintf("grounded answer to %q citing the provided articles", question), nil
	}
	return fmt.Sprintf("initial answer to %q", question), nil
}

// CallCount returns the number of times Answer was called.
func (m *MockAnswerer) CallCount() int {
	return m.callCount
}

// GroundedCallCount returns the number of Answer calls that carried context.
func (m *MockAnswerer) GroundedCallCount() int {
	return m.groundedCalls
}

// Reset clears the call counts and any injected behavior.
func (m *MockAnswerer) Reset() {
	m.callCount = 0
	m.groundedCalls = 0
	m.AnswerFunc = nil
}
