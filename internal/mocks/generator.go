package mocks

import (
	"context"
	"fmt"
	"sync"
)

// MockGenerator is a mock implementation of generator.Generator that records
// every call, so tests can assert how often the upstream engine was hit and
// with what instructions.
type MockGenerator struct {
	mu           sync.Mutex
	Calls        int
	Instructions []string

	// GenerateFunc overrides the default behavior when set
	GenerateFunc func(ctx context.Context, instruction, contentType string) (string, error)

	// Err is returned from every call when set
	Err error
}

// NewMockGenerator creates a MockGenerator producing deterministic content
// derived from the instruction.
func NewMockGenerator() *MockGenerator {
	return &MockGenerator{}
}

func (m *MockGenerator) Generate(ctx context.Context, instruction, contentType string) (string, error) {
	m.mu.Lock()
	m.Calls++
	m.Instructions = append(m.Instructions, instruction)
	m.mu.Unlock()

	if m.GenerateFunc != nil {
		return m.GenerateFunc(ctx, instruction, contentType)
	}
	if m.Err != nil {
		return "", m.Err
	}
	return fmt.Sprintf("<html><body><!-- %s --><h1>%s</h1></body></html>", contentType, instruction), nil
}

// CallCount returns the number of Generate calls made so far
func (m *MockGenerator) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Calls
}

// RecordedInstructions returns a copy of every instruction seen
func (m *MockGenerator) RecordedInstructions() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Instructions...)
}
