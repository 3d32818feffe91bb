package memory

import (
	"context"
	"log"
	"sync"
	"time"

	"github.com/viant/warden/internal/clock"
	"github.com/viant/warden/internal/idgen"
	"github.com/viant/warden/model"
	"github.com/viant/warden/service/approval"
	"github.com/viant/warden/service/audit"
	"github.com/viant/warden/service/dao"
	"github.com/viant/warden/service/messaging"
	qmem "github.com/viant/warden/service/messaging/memory"
	"github.com/viant/warden/service/notify"
)

// DefaultTimeout applies when no timeout is configured; it matches the
// five-minute reviewer window the notification text promises.
const DefaultTimeout = 5 * time.Minute

// entry pairs a request with its own transition lock so resolving one request
// never serialises unrelated ones. done is closed exactly once, on the single
// transition out of PENDING.
type entry struct {
	mu      sync.Mutex
	request *approval.Request
	done    chan struct{}
	timer   *time.Timer
}

type service struct {
	timeout  time.Duration
	auditor  audit.Service
	notifier notify.Service

	mu      sync.RWMutex
	entries map[string]*entry
	events  messaging.Queue[approval.Event]
}

// New creates an in-memory approval coordinator. Pending requests are not
// persisted: on restart history survives in the audit store while in-flight
// requests are drained to TIMED_OUT by Shutdown.
func New(auditor audit.Service, notifier notify.Service, options ...Option) approval.Service {
	ret := &service{
		timeout:  DefaultTimeout,
		auditor:  auditor,
		notifier: notifier,
		entries:  make(map[string]*entry),
		events:   qmem.NewQueue[approval.Event](qmem.DefaultConfig()),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

func (s *service) RequestApproval(ctx context.Context, operation *model.Operation, summary string) (*approval.Request, error) {
	if operation == nil {
		return nil, dao.ErrNilEntity
	}
	now := clock.Now()
	request := &approval.Request{
		ID:          idgen.Short(),
		OperationID: operation.ID,
		Summary:     summary,
		State:       approval.StatePending,
		CreatedAt:   now,
		DeadlineAt:  now.Add(s.timeout),
	}
	e := &entry{request: request, done: make(chan struct{})}

	// The creation entry is written before the id becomes resolvable, so the
	// audit trail can never show a resolution ahead of its request.
	err := s.auditor.Append(ctx, audit.New(audit.EntryApprovalRequested, operation.ID).
		WithApproval(request.ID).
		WithDetail("deadlineAt", request.DeadlineAt.UTC().Format(time.RFC3339)).
		WithDetail("summary", summary))
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.entries[request.ID] = e
	s.mu.Unlock()

	e.timer = time.AfterFunc(request.DeadlineAt.Sub(now), func() {
		s.expire(request.ID)
	})

	// Notification send happens outside any lock; failure is recorded and the
	// request is left to resolve via timeout.
	notification := &notify.Notification{
		ApprovalID:  request.ID,
		OperationID: operation.ID,
		Kind:        string(operation.Kind.Normalized()),
		Target:      operation.Target(),
		Summary:     summary,
		Deadline:    request.DeadlineAt,
	}
	if sendErr := s.notifier.Send(ctx, notification); sendErr != nil {
		appendErr := s.auditor.Append(ctx, audit.New(audit.EntryNotificationFailed, operation.ID).
			WithApproval(request.ID).
			WithOutcome(audit.OutcomeFailure).
			WithDetail("error", sendErr.Error()))
		if appendErr != nil {
			return nil, appendErr
		}
	}

	s.publish(ctx, &approval.Event{Topic: approval.TopicRequestCreated, Request: request})
	return request, nil
}

// publish emits a lifecycle event best effort. Nothing obliges an embedder to
// consume the queue, so a full buffer must never stall request creation,
// resolution or the timer goroutine: the in-memory queue is offered the event
// without blocking and drops the oldest message when full.
func (s *service) publish(ctx context.Context, event *approval.Event) {
	if queue, ok := s.events.(*qmem.Queue[approval.Event]); ok {
		_ = queue.TryPublish(event)
		return
	}
	_ = s.events.Publish(ctx, event)
}

func (s *service) lookup(id string) *entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.entries[id]
}

// transition performs the compare-and-set out of PENDING. Only the first
// caller wins; everyone else observes won=false. The entry lock guards only
// the state flip – audit, done-channel close and event publication happen in
// the caller, outside the lock, so the resolution is audited before any
// waiter resumes.
func (s *service) transition(e *entry, target approval.State, actor string) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.request.State != approval.StatePending {
		return false
	}
	resolvedAt := clock.Now()
	e.request.State = target
	e.request.ResolvedAt = &resolvedAt
	e.request.ResolvedBy = actor
	if e.timer != nil {
		e.timer.Stop()
	}
	return true
}

func (s *service) Resolve(ctx context.Context, id string, approve bool, actor string) (bool, error) {
	e := s.lookup(id)
	if e == nil {
		return false, dao.ErrNotFound
	}
	target := approval.StateDenied
	outcome := audit.OutcomeDenied
	if approve {
		target = approval.StateApproved
		outcome = audit.OutcomeSuccess
	}
	if !s.transition(e, target, actor) {
		return false, nil
	}
	err := s.auditor.Append(ctx, audit.New(audit.EntryApprovalResolved, e.request.OperationID).
		WithApproval(id).
		WithOutcome(outcome).
		WithDetail("actor", actor).
		WithDetail("decision", string(target)))
	close(e.done)
	if err != nil {
		return true, err
	}
	s.publish(ctx, &approval.Event{Topic: approval.TopicRequestResolved, Request: e.request})
	return true, nil
}

// expire drives the PENDING -> TIMED_OUT transition at DeadlineAt. It runs on
// the timer goroutine; a lost race against a human decision is a no-op.
func (s *service) expire(id string) {
	e := s.lookup(id)
	if e == nil {
		return
	}
	if !s.transition(e, approval.StateTimedOut, approval.ResolvedByTimeout) {
		return
	}
	ctx := context.Background()
	err := s.auditor.Append(ctx, audit.New(audit.EntryApprovalTimedOut, e.request.OperationID).
		WithApproval(id).
		WithOutcome(audit.OutcomeTimeout))
	if err != nil {
		log.Printf("approval: failed to audit timeout of %v: %v", id, err)
	}
	close(e.done)
	s.publish(ctx, &approval.Event{Topic: approval.TopicRequestExpired, Request: e.request})
}

func (s *service) AwaitResolution(ctx context.Context, id string) (approval.State, error) {
	e := s.lookup(id)
	if e == nil {
		return "", dao.ErrNotFound
	}
	select {
	case <-e.done:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.request.State, nil
}

func (s *service) ListPending(_ context.Context) ([]*approval.Request, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	pending := make([]*approval.Request, 0, len(s.entries))
	for _, e := range s.entries {
		e.mu.Lock()
		if e.request.State == approval.StatePending {
			pending = append(pending, e.request)
		}
		e.mu.Unlock()
	}
	return pending, nil
}

func (s *service) Queue() messaging.Queue[approval.Event] {
	return s.events
}

func (s *service) Shutdown(ctx context.Context) error {
	pending, _ := s.ListPending(ctx)
	var firstErr error
	for _, request := range pending {
		e := s.lookup(request.ID)
		if e == nil || !s.transition(e, approval.StateTimedOut, approval.ResolvedByShutdown) {
			continue
		}
		err := s.auditor.Append(ctx, audit.New(audit.EntryApprovalTimedOut, e.request.OperationID).
			WithApproval(request.ID).
			WithOutcome(audit.OutcomeTimeout).
			WithDetail("reason", "shutdown"))
		if err != nil && firstErr == nil {
			firstErr = err
		}
		close(e.done)
		s.publish(ctx, &approval.Event{Topic: approval.TopicRequestExpired, Request: e.request})
	}
	return firstErr
}

var _ approval.Service = (*service)(nil)
