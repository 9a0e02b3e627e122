package model

// StreamMessageType discriminates events on the streaming transport.
type StreamMessageType string

const (
	StreamMessageStep     StreamMessageType = "step"
	StreamMessageDecision StreamMessageType = "decision"
	StreamMessageError    StreamMessageType = "error"
)

// StreamMessage is one server-push event. It maps 1:1 onto the agent
// callbacks: every step transition becomes a step event, the terminal
// decision becomes a decision event, and a fatal run error becomes an error
// event with no decision.
type StreamMessage struct {
	Type      StreamMessageType `json:"type"`
	Step      *Step             `json:"step,omitempty"`
	Decision  *AgentDecision    `json:"decision,omitempty"`
	Error     string            `json:"error,omitempty"`
	BagNumber int               `json:"bag_number,omitempty"`
}
