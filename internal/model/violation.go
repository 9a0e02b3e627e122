package model

import "strings"

// Violation is one detected quality defect. The set is closed; a record's
// violation list is ordered by detection order (completeness checks, then
// positioning, then print quality, then marking checks).
type Violation string

const (
	ViolationMissingPMO        Violation = "missing_pmo"
	ViolationMissingDate       Violation = "missing_date"
	ViolationMissingTime       Violation = "missing_time"
	ViolationExpired           Violation = "expired"
	ViolationInvalidFormat     Violation = "invalid_format"
	ViolationFutureDate        Violation = "future_date"
	ViolationCodeDateOffMark   Violation = "code_date_off_mark"
	ViolationCodeDateOnMark    Violation = "code_date_on_mark"
	ViolationFadedPrint        Violation = "faded_print"
	ViolationWrongCodeType     Violation = "wrong_code_type"
	ViolationWrongPriceMarking Violation = "wrong_price_marking"
	ViolationNone              Violation = "none"
)

// Severity is the escalation tier derived from which violations are present.
type Severity string

const (
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeverityCritical Severity = "critical"
)

// severityRank orders severities for monotonic upgrades.
var severityRank = map[Severity]int{
	SeverityMinor:    0,
	SeverityModerate: 1,
	SeverityCritical: 2,
}

// Upgrade returns the higher of s and floor. A severity is never lowered
// once raised within a validation pass.
func (s Severity) Upgrade(floor Severity) Severity {
	if severityRank[floor] > severityRank[s] {
		return floor
	}
	return s
}

// Describe renders a violation as the fixed human-readable phrase used in
// decision reason strings. The faded_print phrasing depends on the observed
// print quality.
func Describe(v Violation, quality PrintQuality) string {
	switch v {
	case ViolationCodeDateOnMark:
		return "Code date overlapping quality seal"
	case ViolationCodeDateOffMark:
		return "Code date positioning off-center"
	case ViolationFadedPrint:
		if quality == PrintQualityUnreadable {
			return "Code date unreadable (severely faded)"
		}
		return "Code date faded (reduced legibility)"
	case ViolationMissingDate:
		return "Date line missing or unreadable"
	case ViolationMissingTime:
		return "Time stamp missing or unreadable"
	case ViolationMissingPMO:
		return "PMO number missing or unreadable"
	case ViolationWrongCodeType:
		return "Code date type does not match product"
	case ViolationWrongPriceMarking:
		return "Price marking does not match product"
	}
	return strings.ReplaceAll(string(v), "_", " ")
}
