package model

// Priority orders deferred generation work. Higher values drain first;
// requests of equal priority keep their arrival order.
type Priority int

const (
	PriorityLow    Priority = 0
	PriorityNormal Priority = 5
	PriorityHigh   Priority = 8
	PriorityUrgent Priority = 10
)

func (p Priority) String() string {
	switch p {
	case PriorityLow:
		return "low"
	case PriorityNormal:
		return "normal"
	case PriorityHigh:
		return "high"
	case PriorityUrgent:
		return "urgent"
	default:
		return "custom"
	}
}
