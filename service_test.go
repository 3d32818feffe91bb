package warden

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/warden/model/types"
	amemory "github.com/viant/warden/service/approval/memory"
	"github.com/viant/warden/service/audit"
	audmemory "github.com/viant/warden/service/audit/memory"
	"github.com/viant/warden/service/gatekeeper"
	nmemory "github.com/viant/warden/service/notify/memory"
)

type fixture struct {
	service  *Service
	auditor  audit.Service
	notifier *nmemory.Notifier
	root     string
}

func newFixture(t *testing.T, options ...Option) *fixture {
	t.Helper()
	root := t.TempDir()
	auditor := audmemory.New()
	notifier := nmemory.New()
	options = append([]Option{
		WithConfig(&Config{SandboxRoot: root}),
		WithAuditService(auditor),
		WithNotifier(notifier),
	}, options...)
	service, err := New(options...)
	require.NoError(t, err)
	t.Cleanup(func() { _ = service.Shutdown(context.Background()) })
	return &fixture{service: service, auditor: auditor, notifier: notifier, root: root}
}

func (f *fixture) writeFile(t *testing.T, name, content string) string {
	t.Helper()
	location := filepath.Join(f.root, name)
	require.NoError(t, os.WriteFile(location, []byte(content), 0o644))
	return location
}

// respondWhenNotified waits for the next approval notification and injects a
// decision, simulating the human reviewer.
func (f *fixture) respondWhenNotified(t *testing.T, approve bool, actor string) {
	t.Helper()
	go func() {
		deadline := time.Now().Add(2 * time.Second)
		for time.Now().Before(deadline) {
			if sent := f.notifier.Sent(); len(sent) > 0 {
				f.notifier.RespondDecision(sent[len(sent)-1].ApprovalID, approve, actor)
				return
			}
			time.Sleep(5 * time.Millisecond)
		}
	}()
}

func entrySequence(t *testing.T, auditor audit.Service, operationID string) []audit.EntryType {
	t.Helper()
	entries, err := auditor.Query(context.Background(), audit.WithOperationID(operationID))
	require.NoError(t, err)
	out := make([]audit.EntryType, 0, len(entries))
	for _, entry := range entries {
		out = append(out, entry.Type)
	}
	return out
}

func TestProcessApprovedDelete(t *testing.T) {
	f := newFixture(t)
	location := f.writeFile(t, "old_notes.txt", "obsolete")
	f.respondWhenNotified(t, true, "alice")

	result, err := f.service.Process(context.Background(), "delete old_notes.txt")
	require.NoError(t, err)
	assert.Equal(t, gatekeeper.VariantPrimary, result.Variant)

	_, err = os.Stat(location)
	assert.True(t, os.IsNotExist(err))

	assert.Equal(t, []audit.EntryType{
		audit.EntryOperationPlanned,
		audit.EntryApprovalRequested,
		audit.EntryApprovalResolved,
		audit.EntryExecutionAttempt,
		audit.EntryExecutionOutcome,
	}, entrySequence(t, f.auditor, result.OperationID))
	assert.NoError(t, f.auditor.Verify(context.Background()))
}

func TestProcessDeniedDelete(t *testing.T) {
	f := newFixture(t)
	location := f.writeFile(t, "old_notes.txt", "obsolete")
	f.respondWhenNotified(t, false, "alice")

	_, err := f.service.Process(context.Background(), "delete old_notes.txt")
	require.Error(t, err)
	var authErr *types.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.Equal(t, "denied", authErr.Outcome)
	assert.False(t, authErr.TimedOut())

	_, err = os.Stat(location)
	assert.NoError(t, err, "denied delete must not touch the file")
}

func TestProcessApprovalTimeout(t *testing.T) {
	root := t.TempDir()
	auditor := audmemory.New()
	notifier := nmemory.New()
	service, err := New(
		WithConfig(&Config{SandboxRoot: root}),
		WithAuditService(auditor),
		WithNotifier(notifier),
		WithApprovalService(amemory.New(auditor, notifier, amemory.WithTimeout(30*time.Millisecond))),
	)
	require.NoError(t, err)
	defer service.Shutdown(context.Background())

	require.NoError(t, os.WriteFile(filepath.Join(root, "old_notes.txt"), []byte("x"), 0o644))

	_, err = service.Process(context.Background(), "delete old_notes.txt")
	require.Error(t, err)
	var authErr *types.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, authErr.TimedOut())

	// nobody answered, the file survives
	_, statErr := os.Stat(filepath.Join(root, "old_notes.txt"))
	assert.NoError(t, statErr)

	entries, qerr := auditor.Query(context.Background())
	require.NoError(t, qerr)
	entryTypes := make([]audit.EntryType, 0, len(entries))
	for _, entry := range entries {
		entryTypes = append(entryTypes, entry.Type)
	}
	assert.Contains(t, entryTypes, audit.EntryApprovalTimedOut)
	assert.Equal(t, audit.OutcomeTimeout, entries[len(entries)-1].Outcome)
}

func TestProcessLowRiskSkipsApproval(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "notes.txt", "hello")

	result, err := f.service.Process(context.Background(), "list files")
	require.NoError(t, err)
	require.Len(t, result.Assets, 1)
	assert.Equal(t, "notes.txt", result.Assets[0].Name)
	assert.Empty(t, f.notifier.Sent(), "low risk must not notify anyone")

	data, err := f.service.Process(context.Background(), "read notes.txt")
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data.Data))
}

func TestOperationHistory(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "notes.txt", "hello")

	result, err := f.service.Process(context.Background(), "read notes.txt")
	require.NoError(t, err)

	operation, err := f.service.Operations().Load(context.Background(), result.OperationID)
	require.NoError(t, err)
	require.NotNil(t, operation)
	assert.Equal(t, "read notes.txt", operation.OriginText)
}

func TestProcessSandboxViolation(t *testing.T) {
	f := newFixture(t)
	f.respondWhenNotified(t, true, "alice")

	_, err := f.service.Process(context.Background(), "delete ../etc/passwd")
	require.Error(t, err)
	assert.True(t, types.IsSandboxViolation(err))
}

func TestProcessWriteIncludesDiffPreview(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "notes.txt", "old content\n")
	f.respondWhenNotified(t, true, "alice")

	_, err := f.service.Process(context.Background(), `{"kind":"write","path":"notes.txt","content":"new content\n"}`)
	require.NoError(t, err)

	sent := f.notifier.Sent()
	require.Len(t, sent, 1)
	assert.Contains(t, sent[0].Summary, "Preview:")
	assert.Contains(t, sent[0].Summary, "+new content")
	assert.Contains(t, sent[0].Summary, "-old content")

	data, err := os.ReadFile(filepath.Join(f.root, "notes.txt"))
	require.NoError(t, err)
	assert.Equal(t, "new content\n", string(data))
}

func TestProcessPlanningFailure(t *testing.T) {
	f := newFixture(t)
	_, err := f.service.Process(context.Background(), "do something vague")
	require.Error(t, err)
	var planErr *types.PlanningError
	assert.ErrorAs(t, err, &planErr)
}

func TestMalformedResponseIsAudited(t *testing.T) {
	f := newFixture(t)
	f.notifier.RespondDecision("nope1234", true, "mallory")

	require.Eventually(t, func() bool {
		entries, err := f.auditor.Query(context.Background())
		if err != nil {
			return false
		}
		for _, entry := range entries {
			if entry.Type == audit.EntryMalformedResponse && entry.ApprovalID == "nope1234" {
				return true
			}
		}
		return false
	}, time.Second, 10*time.Millisecond)
}

func TestShutdownDrainsPendingApprovals(t *testing.T) {
	f := newFixture(t)
	f.writeFile(t, "notes.txt", "x")

	errCh := make(chan error, 1)
	go func() {
		_, err := f.service.Process(context.Background(), "delete notes.txt")
		errCh <- err
	}()

	require.Eventually(t, func() bool { return len(f.notifier.Sent()) > 0 }, time.Second, 5*time.Millisecond)
	require.NoError(t, f.service.Shutdown(context.Background()))

	err := <-errCh
	require.Error(t, err)
	var authErr *types.AuthorizationError
	require.ErrorAs(t, err, &authErr)
	assert.True(t, authErr.TimedOut())
}
