package approval

import (
	"time"
)

// State tracks the lifecycle of an approval request. PENDING is the only
// initial state; every other state is terminal.
type State string

const (
	StatePending  State = "pending"
	StateApproved State = "approved"
	StateDenied   State = "denied"
	StateTimedOut State = "timedOut"
)

// Terminal reports whether the state admits no further transition.
func (s State) Terminal() bool {
	return s == StateApproved || s == StateDenied || s == StateTimedOut
}

// Resolver identities recorded when the system, rather than a human, resolves
// a request.
const (
	ResolvedByTimeout  = "system:timeout"
	ResolvedByShutdown = "system:shutdown"
)

// Request tracks one pending human decision. The coordinator owns it while
// PENDING; once resolved it is read-only history.
type Request struct {
	ID          string     `json:"id"`
	OperationID string     `json:"operationId"`
	Summary     string     `json:"summary,omitempty"`
	State       State      `json:"state"`
	CreatedAt   time.Time  `json:"createdAt"`
	DeadlineAt  time.Time  `json:"deadlineAt"`
	ResolvedAt  *time.Time `json:"resolvedAt,omitempty"`
	ResolvedBy  string     `json:"resolvedBy,omitempty"`
}

// Event is published on every lifecycle change so listeners (dashboards,
// escalation bots) can observe the coordinator without polling.
type Event struct {
	Topic   string   `json:"topic"`
	Request *Request `json:"request"`
}

// Event topics.
const (
	TopicRequestCreated  = "request.created"
	TopicRequestResolved = "request.resolved"
	TopicRequestExpired  = "request.expired"
)
