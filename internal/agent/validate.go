package agent

import "github.com/sells-group/lineguard/internal/model"

// Validate applies the deterministic quality rules to an extracted record.
// Checks run in a fixed order: component completeness, positioning, print
// quality, then the optional marking checks when the caller supplied an
// expected product. Severity only ever upgrades within a pass.
func Validate(record *model.ExtractedRecord, meta model.CallerMetadata) ([]model.Violation, model.Severity) {
	var violations []model.Violation
	severity := model.SeverityMinor

	// Component completeness. Missing fields do not block further checks.
	if record.Date == "" {
		violations = append(violations, model.ViolationMissingDate)
	}
	if record.Time == "" {
		violations = append(violations, model.ViolationMissingTime)
	}
	if record.PlantCode == "" {
		violations = append(violations, model.ViolationMissingPMO)
	}

	// Positioning relative to the quality mark.
	switch record.Positioning {
	case model.PositioningOnMark:
		violations = append(violations, model.ViolationCodeDateOnMark)
		severity = severity.Upgrade(model.SeverityCritical)
	case model.PositioningOffMark:
		violations = append(violations, model.ViolationCodeDateOffMark)
		severity = severity.Upgrade(model.SeverityModerate)
	}

	// Print quality.
	switch record.PrintQuality {
	case model.PrintQualityUnreadable:
		violations = append(violations, model.ViolationFadedPrint)
		severity = severity.Upgrade(model.SeverityCritical)
	case model.PrintQualityFaded:
		violations = append(violations, model.ViolationFadedPrint)
		severity = severity.Upgrade(model.SeverityModerate)
	}

	// Optional marking checks; they never move the severity floor.
	if meta.ExpectedProduct != "" {
		if record.CodeType != "" && record.CodeType != meta.ExpectedProduct.CodeType() {
			violations = append(violations, model.ViolationWrongCodeType)
		}
		if record.PriceMarked != nil && *record.PriceMarked != meta.ExpectedProduct.PriceMarked() {
			violations = append(violations, model.ViolationWrongPriceMarking)
		}
	}

	return violations, severity
}
