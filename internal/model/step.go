package model

import "time"

// StepStatus represents the lifecycle state of a pipeline step. Transitions
// move strictly forward: pending → running → one of completed, flagged,
// error. A flagged step signals that the stage found violations; it never
// aborts the run. Only an extraction-stage error aborts.
type StepStatus string

const (
	StepStatusPending   StepStatus = "pending"
	StepStatusRunning   StepStatus = "running"
	StepStatusCompleted StepStatus = "completed"
	StepStatusFlagged   StepStatus = "flagged"
	StepStatusError     StepStatus = "error"
)

// Terminal reports whether no further transitions are allowed from s.
func (s StepStatus) Terminal() bool {
	return s == StepStatusCompleted || s == StepStatusFlagged || s == StepStatusError
}

// NodeType distinguishes reasoning stages, tool invocations, and the final
// decision node for consumers rendering the step tree.
type NodeType string

const (
	NodeTypeReasoning NodeType = "reasoning"
	NodeTypeTool      NodeType = "tool"
	NodeTypeDecision  NodeType = "decision"
)

// Step is one unit of pipeline progress. Steps are created once per run per
// catalog entry; ParentID references another step's ID to form a shallow
// tree (extraction → validation → tools → decision).
type Step struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Status      StepStatus       `json:"status"`
	NodeType    NodeType         `json:"node_type"`
	ParentID    string           `json:"parent_id,omitempty"`
	Timestamp   time.Time        `json:"timestamp"`
	Reasoning   string           `json:"reasoning,omitempty"`
	Extracted   *ExtractedRecord `json:"extracted,omitempty"`
	ToolResult  any              `json:"tool_result,omitempty"`
	Duration    int64            `json:"duration_ms,omitempty"`
}

// StepNode is a step with its resolved children, produced by BuildStepTree.
type StepNode struct {
	Step
	Children []*StepNode `json:"children,omitempty"`
}

// BuildStepTree derives the parent/child structure from a flat ordered step
// list by parent-id lookup. Steps whose parent is absent become roots;
// insertion order is preserved at every level.
func BuildStepTree(steps []Step) []*StepNode {
	nodes := make(map[string]*StepNode, len(steps))
	var roots []*StepNode
	for _, s := range steps {
		nodes[s.ID] = &StepNode{Step: s}
	}
	for _, s := range steps {
		n := nodes[s.ID]
		if parent, ok := nodes[s.ParentID]; ok && s.ParentID != s.ID {
			parent.Children = append(parent.Children, n)
		} else {
			roots = append(roots, n)
		}
	}
	return roots
}
