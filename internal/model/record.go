package model

// Positioning classifies where the code date sits relative to the quality mark.
type Positioning string

const (
	PositioningCorrect Positioning = "correct"
	PositioningOffMark Positioning = "off_mark"
	PositioningOnMark  Positioning = "on_mark"
)

// PrintQuality classifies the legibility of the printed code date.
type PrintQuality string

const (
	PrintQualityGood       PrintQuality = "good"
	PrintQualityFaded      PrintQuality = "faded"
	PrintQualityUnreadable PrintQuality = "unreadable"
)

// ProductType identifies the expected code-date/price-marking combination
// for a SKU. Supplied by the caller; used only by the optional marking checks.
type ProductType string

const (
	Product84DayNoPrice ProductType = "84_day_no_price"
	Product84DayPrice   ProductType = "84_day_price"
	Product90DayNoPrice ProductType = "90_day_no_price"
	Product90DayPrice   ProductType = "90_day_price"
)

// CodeType returns the shelf-life code family ("84_day" or "90_day").
func (p ProductType) CodeType() string {
	switch p {
	case Product84DayNoPrice, Product84DayPrice:
		return "84_day"
	case Product90DayNoPrice, Product90DayPrice:
		return "90_day"
	}
	return ""
}

// PriceMarked reports whether the SKU carries a printed price.
func (p ProductType) PriceMarked() bool {
	return p == Product84DayPrice || p == Product90DayPrice
}

// ExtractedRecord is the structured output of vision extraction. Every field
// is optional: an empty string means the component was not visible, which is
// meaningful to the validator (a "missing" violation), not an error.
type ExtractedRecord struct {
	FullText     string       `json:"full_text,omitempty"`
	Date         string       `json:"date,omitempty"`
	CodeDateLine string       `json:"code_date_line,omitempty"`
	Time         string       `json:"time,omitempty"`
	PlantCode    string       `json:"plant_code,omitempty"`
	LineNumber   string       `json:"line_number,omitempty"`
	Positioning  Positioning  `json:"positioning,omitempty"`
	PrintQuality PrintQuality `json:"print_quality,omitempty"`
	CodeType     string       `json:"code_type,omitempty"`
	PriceMarked  *bool        `json:"price_marked,omitempty"`
}

// CallerMetadata carries optional context supplied with an inspection
// request. ExpectedProduct enables the marking checks; BagNumber tags the
// run for logging and incident records.
type CallerMetadata struct {
	BagNumber       int         `json:"bag_number,omitempty"`
	ExpectedProduct ProductType `json:"expected_product,omitempty"`
}
