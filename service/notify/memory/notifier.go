// Package memory provides an in-process notification channel used by tests
// and embedders that wire their own UI. Sent notifications are retained for
// inspection; responses are injected via Respond/RespondDecision.
package memory

import (
	"context"
	"sync"

	"github.com/viant/warden/service/notify"
)

// Notifier is an in-memory notify.Service.
type Notifier struct {
	mu        sync.Mutex
	sent      []*notify.Notification
	sendErr   error
	responses chan *notify.Response
}

// Option customises the notifier.
type Option func(*Notifier)

// WithSendError makes every Send fail with err, to exercise the
// notification-failure path.
func WithSendError(err error) Option {
	return func(n *Notifier) { n.sendErr = err }
}

// New creates an in-memory notifier.
func New(options ...Option) *Notifier {
	ret := &Notifier{responses: make(chan *notify.Response, 16)}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Send records the notification.
func (n *Notifier) Send(_ context.Context, notification *notify.Notification) error {
	if n.sendErr != nil {
		return n.sendErr
	}
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, notification)
	return nil
}

// Responses exposes injected decisions.
func (n *Notifier) Responses() <-chan *notify.Response {
	return n.responses
}

// Sent returns a copy of all notifications delivered so far.
func (n *Notifier) Sent() []*notify.Notification {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]*notify.Notification, len(n.sent))
	copy(out, n.sent)
	return out
}

// Respond parses a fallback text command and injects the decision. Malformed
// commands are returned as errors without injecting anything.
func (n *Notifier) Respond(text, actor string) error {
	response, err := notify.ParseCommand(text, actor)
	if err != nil {
		return err
	}
	n.responses <- response
	return nil
}

// RespondDecision injects a structured (button-click style) decision.
func (n *Notifier) RespondDecision(approvalID string, approve bool, actor string) {
	n.responses <- &notify.Response{ApprovalID: approvalID, Approve: approve, Actor: actor}
}

var _ notify.Service = (*Notifier)(nil)
