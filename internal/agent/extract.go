package agent

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/sells-group/lineguard/internal/config"
	"github.com/sells-group/lineguard/internal/model"
	"github.com/sells-group/lineguard/pkg/anthropic"
)

const visionSystemPrompt = `You are a packaging inspection system for a snack food production line. You read printed code dates from product bag images and return structured JSON. Use null for components that are not visible.`

const visionPrompt = `Analyze this product bag image. Extract ALL visible text and assess quality.

Code date format:
- Line 1: Date (e.g., "22FEB2022")
- Line 2: Day/Plant/Shift/Julian/Line - all concatenated (e.g., "137133193")
- Line 3: PMO number and Time (e.g., "37 13:08")

Quality checks:
- Position: The code date MUST sit directly below the quality seal, within about 0.5 inches. If it is significantly off-center or displaced vertically, mark "off_mark". If it overlaps the seal itself, mark "on_mark".
- Print quality: Clear and readable? Not faded?

Return JSON:
{
  "full_text": "all visible text",
  "date": "date string or null",
  "code_date_line": "day/plant/shift/julian/line string or null",
  "time": "time string or null",
  "plant_code": "2-digit plant code or null",
  "line_number": "line number or null",
  "positioning": "correct" | "off_mark" | "on_mark",
  "print_quality": "good" | "faded" | "unreadable"
}`

// ExtractVision sends the bag image with the extraction instruction to the
// vision model and parses the structured record out of the reply. A reply
// that yields no parsable JSON is a hard failure: there is no record to
// validate, so the run cannot proceed. No retry happens at this layer.
func ExtractVision(ctx context.Context, ai anthropic.Client, cfg config.AnthropicConfig, image []byte) (*model.ExtractedRecord, error) {
	mediaType := http.DetectContentType(image)
	if !strings.HasPrefix(mediaType, "image/") {
		return nil, eris.Errorf("extract: unsupported content type %s", mediaType)
	}

	resp, err := ai.CreateMessage(ctx, anthropic.MessageRequest{
		Model:     cfg.VisionModel,
		MaxTokens: cfg.MaxTokens,
		System:    anthropic.BuildCachedSystemBlocks(visionSystemPrompt),
		Messages: []anthropic.Message{
			{
				Role:    "user",
				Content: visionPrompt,
				Image: &anthropic.ImageBlock{
					MediaType: mediaType,
					Data:      base64.StdEncoding.EncodeToString(image),
				},
			},
		},
	})
	if err != nil {
		return nil, eris.Wrap(err, "extract: vision request")
	}
	resp.Usage.LogCost(cfg.VisionModel, "vision_extraction")

	record, err := parseExtraction(extractText(resp))
	if err != nil {
		zap.L().Error("extract: vision response not parsable",
			zap.String("raw", extractText(resp)),
			zap.Error(err),
		)
		return nil, err
	}
	return record, nil
}

// parseExtraction recovers the extracted record from raw model text.
func parseExtraction(text string) (*model.ExtractedRecord, error) {
	cleaned := cleanJSON(text)

	var raw struct {
		FullText     string `json:"full_text"`
		Date         string `json:"date"`
		CodeDateLine string `json:"code_date_line"`
		Time         string `json:"time"`
		PlantCode    string `json:"plant_code"`
		LineNumber   string `json:"line_number"`
		Positioning  string `json:"positioning"`
		PrintQuality string `json:"print_quality"`
		CodeType     string `json:"code_type"`
		PriceMarked  *bool  `json:"price_marked"`
	}
	if err := json.Unmarshal([]byte(cleaned), &raw); err != nil {
		return nil, eris.Wrap(err, "extract: parse vision JSON")
	}

	record := &model.ExtractedRecord{
		FullText:     raw.FullText,
		Date:         raw.Date,
		CodeDateLine: raw.CodeDateLine,
		Time:         raw.Time,
		PlantCode:    raw.PlantCode,
		LineNumber:   raw.LineNumber,
		CodeType:     raw.CodeType,
		PriceMarked:  raw.PriceMarked,
	}

	switch model.Positioning(strings.ToLower(raw.Positioning)) {
	case model.PositioningCorrect, model.PositioningOffMark, model.PositioningOnMark:
		record.Positioning = model.Positioning(strings.ToLower(raw.Positioning))
	}
	switch model.PrintQuality(strings.ToLower(raw.PrintQuality)) {
	case model.PrintQualityGood, model.PrintQualityFaded, model.PrintQualityUnreadable:
		record.PrintQuality = model.PrintQuality(strings.ToLower(raw.PrintQuality))
	}

	return record, nil
}
