package testutils

import (
	"context"
	"errors"
)

// MockGenerator is a test generator that records prompts and returns a
// configurable answer.
type MockGenerator struct {
	// Answer is returned by every Generate call.
	Answer string

	// Prompts accumulates every prompt passed to Generate.
	Prompts []string

	// Temperatures accumulates the temperature of every call.
	Temperatures []float32

	// Fail causes Generate to return an error.
	Fail bool
}

func NewMockGenerator(answer string) *MockGenerator {
	return &MockGenerator{Answer: answer}
}

func (m *MockGenerator) Generate(_ context.Context, prompt string, temperature float32) (string, error) {
	if m.Fail {
		return "", errors.New("mock generation failure")
	}

	m.Prompts = append(m.Prompts, prompt)
	m.Temperatures = append(m.Temperatures, temperature)
	return m.Answer, nil
}
