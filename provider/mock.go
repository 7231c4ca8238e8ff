package provider

import (
	"context"

	"github.com/dawalabs/medglot"
)

// MockClient is a scripted generation client for testing.
type MockClient struct {
	// Respond produces the reply for a request. When nil, Responses is
	// consumed in order instead.
	Respond func(req GenerateRequest) (*GenerateResult, error)
	// Responses is a fixed reply sequence; the last entry repeats.
	Responses []GenerateResult
	// Err, when set, is returned for every call.
	Err error

	CallCount   int
	LastRequest *GenerateRequest
	Requests    []GenerateRequest
}

// Generate returns the scripted reply.
func (m *MockClient) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	m.CallCount++
	m.LastRequest = &req
	m.Requests = append(m.Requests, req)

	if m.Err != nil {
		return nil, m.Err
	}
	if m.Respond != nil {
		return m.Respond(req)
	}
	if len(m.Responses) == 0 {
		return &GenerateResult{Text: "", TotalTokens: 0}, nil
	}
	i := m.CallCount - 1
	if i >= len(m.Responses) {
		i = len(m.Responses) - 1
	}
	res := m.Responses[i]
	return &res, nil
}

// Reset clears the recorded calls.
func (m *MockClient) Reset() {
	m.CallCount = 0
	m.LastRequest = nil
	m.Requests = nil
}

// Verify MockClient implements Client
var _ medglot.Client = (*MockClient)(nil)
