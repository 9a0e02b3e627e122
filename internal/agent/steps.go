package agent

import "github.com/sells-group/lineguard/internal/model"

// Step identifiers, in pipeline order. The three tool steps are siblings
// under validation and always run sequentially.
const (
	StepVisionExtraction = "vision-extraction"
	StepValidation       = "validation"
	StepToolImpact       = "tool-impact"
	StepToolHistory      = "tool-history"
	StepToolLog          = "tool-log"
	StepDecision         = "decision"
)

// stepSpec is one entry of the fixed step catalog.
type stepSpec struct {
	ID          string
	Name        string
	Description string
	NodeType    model.NodeType
	ParentID    string
}

// stepCatalog is the fixed ordered catalog of pipeline steps. Steps are
// created once per run per entry; the catalog order is the execution order.
var stepCatalog = []stepSpec{
	{
		ID:          StepVisionExtraction,
		Name:        "Vision Extraction",
		Description: "Extracting code date data from the bag image",
		NodeType:    model.NodeTypeReasoning,
	},
	{
		ID:          StepValidation,
		Name:        "Rules Validation",
		Description: "Checking compliance with quality standards",
		NodeType:    model.NodeTypeReasoning,
		ParentID:    StepVisionExtraction,
	},
	{
		ID:          StepToolImpact,
		Name:        "Calculate Business Impact",
		Description: "Assess cost of line stop vs QA alert",
		NodeType:    model.NodeTypeTool,
		ParentID:    StepValidation,
	},
	{
		ID:          StepToolHistory,
		Name:        "Query Incident History",
		Description: "Check past violations for this line",
		NodeType:    model.NodeTypeTool,
		ParentID:    StepValidation,
	},
	{
		ID:          StepToolLog,
		Name:        "Log Violation",
		Description: "Record violation intent in the quality system",
		NodeType:    model.NodeTypeTool,
		ParentID:    StepValidation,
	},
	{
		ID:          StepDecision,
		Name:        "Agent Decision",
		Description: "Autonomous action selection based on context",
		NodeType:    model.NodeTypeDecision,
		ParentID:    StepValidation,
	},
}

// catalogSpec returns the catalog entry for id.
func catalogSpec(id string) stepSpec {
	for _, s := range stepCatalog {
		if s.ID == id {
			return s
		}
	}
	return stepSpec{ID: id}
}
