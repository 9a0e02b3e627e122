package agent

import (
	"context"
	"testing"

	"github.com/rotisserie/eris"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/lineguard/internal/model"
	"github.com/sells-group/lineguard/pkg/anthropic"
)

// pngImage is a minimal byte sequence that sniffs as image/png.
var pngImage = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\x0dIHDR")

const visionReply = `{
  "full_text": "22FEB2022 137133193 37 13:08",
  "date": "22FEB2022",
  "code_date_line": "137133193",
  "time": "13:08",
  "plant_code": "37",
  "line_number": "19",
  "positioning": "correct",
  "print_quality": "good"
}`

func TestParseExtraction(t *testing.T) {
	record, err := parseExtraction(visionReply)
	require.NoError(t, err)

	assert.Equal(t, "22FEB2022", record.Date)
	assert.Equal(t, "137133193", record.CodeDateLine)
	assert.Equal(t, "13:08", record.Time)
	assert.Equal(t, "37", record.PlantCode)
	assert.Equal(t, model.PositioningCorrect, record.Positioning)
	assert.Equal(t, model.PrintQualityGood, record.PrintQuality)
}

func TestParseExtractionNullComponents(t *testing.T) {
	record, err := parseExtraction(`{"full_text": "blur", "date": null, "time": null, "plant_code": null, "positioning": "off_mark", "print_quality": "faded"}`)
	require.NoError(t, err)

	assert.Empty(t, record.Date)
	assert.Empty(t, record.Time)
	assert.Empty(t, record.PlantCode)
	assert.Equal(t, model.PositioningOffMark, record.Positioning)
	assert.Equal(t, model.PrintQualityFaded, record.PrintQuality)
}

func TestParseExtractionNormalizesCase(t *testing.T) {
	record, err := parseExtraction(`{"positioning": "ON_MARK", "print_quality": "Unreadable"}`)
	require.NoError(t, err)

	assert.Equal(t, model.PositioningOnMark, record.Positioning)
	assert.Equal(t, model.PrintQualityUnreadable, record.PrintQuality)
}

func TestParseExtractionRejectsUnknownEnums(t *testing.T) {
	record, err := parseExtraction(`{"positioning": "sideways", "print_quality": "sparkly"}`)
	require.NoError(t, err)

	// Unknown classifications degrade to the zero value rather than erroring.
	assert.Empty(t, record.Positioning)
	assert.Empty(t, record.PrintQuality)
}

func TestParseExtractionGarbage(t *testing.T) {
	_, err := parseExtraction("the image shows a bag of chips")
	assert.Error(t, err)
}

func TestExtractVision(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, mock.MatchedBy(func(req anthropic.MessageRequest) bool {
		return len(req.Messages) == 1 &&
			req.Messages[0].Image != nil &&
			req.Messages[0].Image.MediaType == "image/png"
	})).Return(textResponse("```json\n"+visionReply+"\n```"), nil)

	record, err := ExtractVision(context.Background(), ai, testAnthropicConfig(), pngImage)
	require.NoError(t, err)

	assert.Equal(t, "37", record.PlantCode)
	assert.Equal(t, model.PositioningCorrect, record.Positioning)
	ai.AssertExpectations(t)
}

func TestExtractVisionRejectsNonImage(t *testing.T) {
	ai := new(mockAnthropicClient)

	_, err := ExtractVision(context.Background(), ai, testAnthropicConfig(), []byte("plain text payload"))
	assert.Error(t, err)
	ai.AssertNotCalled(t, "CreateMessage", mock.Anything, mock.Anything)
}

func TestExtractVisionRequestError(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(nil, eris.New("api unavailable"))

	_, err := ExtractVision(context.Background(), ai, testAnthropicConfig(), pngImage)
	assert.Error(t, err)
}

func TestExtractVisionUnparsableReply(t *testing.T) {
	ai := new(mockAnthropicClient)
	ai.On("CreateMessage", mock.Anything, mock.Anything).
		Return(textResponse("I cannot read this image."), nil)

	_, err := ExtractVision(context.Background(), ai, testAnthropicConfig(), pngImage)
	assert.Error(t, err)
}
