package approval

import (
	"context"
	"time"
)

// DecisionFunc decides what to do with a pending request. Return true to
// approve or false to deny; actor identifies who made the decision and is
// recorded as the request's ResolvedBy.
type DecisionFunc func(r *Request) (approve bool, actor string)

// AutoDecider starts a goroutine that polls ListPending and applies fn to
// every request. It returns stop() – call it (or cancel ctx) to exit. Used by
// tests and unattended environments.
func AutoDecider(ctx context.Context, svc Service, fn DecisionFunc, interval time.Duration) (stop func()) {
	if interval <= 0 {
		interval = 20 * time.Millisecond
	}
	done := make(chan struct{})

	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-done:
				return
			case <-ticker.C:
				requests, _ := svc.ListPending(ctx)
				for _, r := range requests {
					approve, actor := fn(r)
					_, _ = svc.Resolve(ctx, r.ID, approve, actor)
				}
			}
		}
	}()
	return func() { close(done) }
}

// AutoApprove automatically approves all pending requests as actor.
func AutoApprove(ctx context.Context, svc Service, actor string, interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Request) (bool, string) { return true, actor }, interval)
}

// AutoDeny automatically denies all pending requests as actor.
func AutoDeny(ctx context.Context, svc Service, actor string, interval time.Duration) func() {
	return AutoDecider(ctx, svc,
		func(*Request) (bool, string) { return false, actor }, interval)
}
