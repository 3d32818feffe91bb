package approval

import (
	"context"

	"github.com/viant/warden/model"
	"github.com/viant/warden/service/messaging"
)

// Service owns the lifecycle of pending approval requests: creation, dispatch
// to the notification channel, resolution by decision or timeout, and
// exactly-once completion.
type Service interface {
	// RequestApproval creates a PENDING request for the operation, notifies
	// the channel and returns immediately. A notification delivery failure is
	// audited but does not fail creation – the request will resolve via
	// timeout if nobody sees it.
	RequestApproval(ctx context.Context, operation *model.Operation, summary string) (*Request, error)

	// AwaitResolution suspends the caller until the request leaves PENDING by
	// decision or timeout, whichever wins the race.
	AwaitResolution(ctx context.Context, id string) (State, error)

	// Resolve attempts the PENDING -> APPROVED/DENIED transition on behalf of
	// actor. It returns false when the request was already resolved – a late
	// response losing the race is expected, not an error. Unknown ids return
	// dao.ErrNotFound.
	Resolve(ctx context.Context, id string, approve bool, actor string) (bool, error)

	// ListPending returns all requests still awaiting a decision.
	ListPending(ctx context.Context) ([]*Request, error)

	// Queue exposes the lifecycle event fan-out.
	Queue() messaging.Queue[Event]

	// Shutdown resolves every remaining PENDING request as TIMED_OUT so the
	// audit trail has a definite terminal outcome for each request ever
	// created.
	Shutdown(ctx context.Context) error
}
