package anthropic

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockClient implements Client for testing.
type MockClient struct {
	mock.Mock
}

func (m *MockClient) CreateMessage(ctx context.Context, req MessageRequest) (*MessageResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*MessageResponse), args.Error(1)
}

var _ Client = (*MockClient)(nil)

func TestCreateMessage_MockClient(t *testing.T) {
	client := new(MockClient)
	req := MessageRequest{
		Model:     "claude-haiku-4-5-20251001",
		MaxTokens: 1024,
		Messages:  []Message{{Role: "user", Content: "hello"}},
	}
	client.On("CreateMessage", mock.Anything, req).Return(&MessageResponse{
		ID:      "msg_1",
		Content: []ContentBlock{{Type: "text", Text: "hi"}},
	}, nil)

	resp, err := client.CreateMessage(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "msg_1", resp.ID)
	client.AssertExpectations(t)
}

func TestSDKTypeConversion_toSDKMessages(t *testing.T) {
	msgs := toSDKMessages([]Message{
		{Role: "user", Content: "inspect this"},
		{Role: "assistant", Content: "ok"},
	})
	assert.Len(t, msgs, 2)
	assert.Equal(t, "user", string(msgs[0].Role))
	assert.Equal(t, "assistant", string(msgs[1].Role))
}

func TestSDKTypeConversion_ImageBlockOrdering(t *testing.T) {
	msgs := toSDKMessages([]Message{{
		Role:    "user",
		Content: "read the code date",
		Image: &ImageBlock{
			MediaType: "image/jpeg",
			Data:      "aGVsbG8=",
		},
	}})
	require.Len(t, msgs, 1)
	// The image block precedes the instruction text.
	require.Len(t, msgs[0].Content, 2)
	assert.NotNil(t, msgs[0].Content[0].OfImage)
	assert.NotNil(t, msgs[0].Content[1].OfText)
}

func TestSDKTypeConversion_toSDKSystemBlocks(t *testing.T) {
	blocks := toSDKSystemBlocks([]SystemBlock{
		{Text: "plain"},
		{Text: "cached", CacheControl: &CacheControl{TTL: "1h"}},
	})
	require.Len(t, blocks, 2)
	assert.Equal(t, "plain", blocks[0].Text)
	assert.Equal(t, "1h", string(blocks[1].CacheControl.TTL))
}

func TestEstimateCost_Haiku(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 4.80, usage.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
}

func TestEstimateCost_Sonnet(t *testing.T) {
	usage := TokenUsage{InputTokens: 1_000_000, OutputTokens: 1_000_000}
	assert.InDelta(t, 18.00, usage.EstimateCost("claude-sonnet-4-5-20250929"), 0.001)
}

func TestEstimateCost_WithCache(t *testing.T) {
	usage := TokenUsage{
		InputTokens:              100_000,
		OutputTokens:             10_000,
		CacheCreationInputTokens: 50_000,
		CacheReadInputTokens:     500_000,
	}
	// in: 0.1*0.8 + out: 0.01*4 + write: 0.05*0.8*1.25 + read: 0.5*0.8*0.1
	assert.InDelta(t, 0.21, usage.EstimateCost("claude-haiku-4-5-20251001"), 0.001)
}

func TestEstimateCost_UnknownModel(t *testing.T) {
	usage := TokenUsage{InputTokens: 1000, OutputTokens: 1000}
	assert.Zero(t, usage.EstimateCost("mystery-model"))
}

func TestEstimateCost_ZeroTokens(t *testing.T) {
	assert.Zero(t, TokenUsage{}.EstimateCost("claude-haiku-4-5-20251001"))
}

func TestLogCost_DoesNotPanic(t *testing.T) {
	TokenUsage{InputTokens: 10, OutputTokens: 5}.LogCost("claude-haiku-4-5-20251001", "test")
}

func TestBuildCachedSystemBlocks(t *testing.T) {
	blocks := BuildCachedSystemBlocks("you are an inspector")
	require.Len(t, blocks, 1)
	assert.Equal(t, "you are an inspector", blocks[0].Text)
	require.NotNil(t, blocks[0].CacheControl)
	assert.Equal(t, "1h", blocks[0].CacheControl.TTL)
}
