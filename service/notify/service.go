// Package notify abstracts the messaging product used to reach human
// reviewers. The coordinator only depends on Send; responses flow back
// through a channel so transports can be polled, webhook-driven or
// in-process.
package notify

import (
	"context"
	"time"
)

// Notification carries one approval request to a human reviewer.
type Notification struct {
	ApprovalID  string    `json:"approvalId"`
	OperationID string    `json:"operationId"`
	Kind        string    `json:"kind"`
	Target      string    `json:"target"`
	Summary     string    `json:"summary"`
	Deadline    time.Time `json:"deadline"`
}

// Response represents a human decision, either from a structured interactive
// element or a parsed fallback text command.
type Response struct {
	ApprovalID string `json:"approvalId"`
	Approve    bool   `json:"approve"`
	Actor      string `json:"actor"`
}

// Service is the notification channel consumed by the approval coordinator.
type Service interface {
	// Send delivers the notification; a failure is non-fatal to the approval
	// lifecycle (the request still resolves via timeout if unanswered).
	Send(ctx context.Context, notification *Notification) error

	// Responses exposes human decisions as they arrive.
	Responses() <-chan *Response
}
