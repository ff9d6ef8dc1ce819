package domain

// State is the lifecycle phase of a document-processing request.
type State string

const (
	StateQueued     State = "queued"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
)

// Terminal reports whether the state accepts no further transitions.
func (s State) Terminal() bool {
	return s == StateCompleted || s == StateFailed
}

// CanTransition reports whether moving to next respects the
// queued -> processing -> completed|failed order. No state is skipped,
// no terminal state is re-entered.
func (s State) CanTransition(next State) bool {
	switch s {
	case StateQueued:
		return next == StateProcessing
	case StateProcessing:
		return next == StateCompleted || next == StateFailed
	default:
		return false
	}
}

// ProcessingStatus is the observable state of one ingestion request.
type ProcessingStatus struct {
	DocumentID string
	State      State
	Progress   int // 0..100, monotonically non-decreasing
	Error      string
}
