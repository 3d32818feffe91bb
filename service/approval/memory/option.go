package memory

import (
	"time"

	"github.com/viant/warden/service/approval"
	"github.com/viant/warden/service/messaging"
)

// Option customises the coordinator.
type Option func(*service)

// WithTimeout sets the per-request decision window, measured from creation
// time (not from notification delivery).
func WithTimeout(timeout time.Duration) Option {
	return func(s *service) {
		if timeout > 0 {
			s.timeout = timeout
		}
	}
}

// WithEventQueue replaces the default in-memory lifecycle event queue.
func WithEventQueue(queue messaging.Queue[approval.Event]) Option {
	return func(s *service) { s.events = queue }
}
