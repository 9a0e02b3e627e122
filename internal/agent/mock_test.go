package agent

import (
	"context"

	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"

	"github.com/sells-group/lineguard/internal/incident"
	"github.com/sells-group/lineguard/internal/model"
	"github.com/sells-group/lineguard/pkg/anthropic"
)

func init() {
	// Keep step and cost logging quiet during tests.
	zap.ReplaceGlobals(zap.NewNop())
}

// --- Anthropic Mock ---

type mockAnthropicClient struct {
	mock.Mock
}

func (m *mockAnthropicClient) CreateMessage(ctx context.Context, req anthropic.MessageRequest) (*anthropic.MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*anthropic.MessageResponse), args.Error(1)
}

// textResponse wraps raw model text in a minimal response.
func textResponse(text string) *anthropic.MessageResponse {
	return &anthropic.MessageResponse{
		Content: []anthropic.ContentBlock{{Type: "text", Text: text}},
	}
}

// --- Store Mock ---

type mockStore struct {
	mock.Mock
}

func (m *mockStore) Append(ctx context.Context, inc model.Incident) (*model.Incident, error) {
	args := m.Called(ctx, inc)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Incident), args.Error(1)
}

func (m *mockStore) Query(ctx context.Context, daysBack int) ([]model.Incident, error) {
	args := m.Called(ctx, daysBack)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Incident), args.Error(1)
}

func (m *mockStore) Stats(ctx context.Context) (*model.IncidentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.IncidentStats), args.Error(1)
}

func (m *mockStore) Clear(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Migrate(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *mockStore) Close() error {
	args := m.Called()
	return args.Error(0)
}

// --- Ensure interface compliance ---
var (
	_ anthropic.Client = (*mockAnthropicClient)(nil)
	_ incident.Store   = (*mockStore)(nil)
)
