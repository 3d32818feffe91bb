package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/warden/service/audit"
)

func TestAppendAssignsSequenceAndChain(t *testing.T) {
	ctx := context.Background()
	service := New()

	first := audit.New(audit.EntryOperationPlanned, "op-1").WithDetail("kind", "delete")
	second := audit.New(audit.EntryExecutionOutcome, "op-1").WithOutcome(audit.OutcomeSuccess)

	require.NoError(t, service.Append(ctx, first))
	require.NoError(t, service.Append(ctx, second))

	assert.Equal(t, int64(1), first.Seq)
	assert.Equal(t, int64(2), second.Seq)
	assert.Empty(t, first.PrevDigest)
	assert.Equal(t, first.Digest, second.PrevDigest)
	assert.NotEmpty(t, second.Digest)
	assert.False(t, first.Timestamp.IsZero())

	assert.NoError(t, service.Verify(ctx))
}

func TestAppendNilEntry(t *testing.T) {
	service := New()
	assert.Error(t, service.Append(context.Background(), nil))
}

func TestQueryFilters(t *testing.T) {
	ctx := context.Background()
	service := New()

	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)
	entries := []*audit.Entry{
		audit.New(audit.EntryOperationPlanned, "op-1"),
		audit.New(audit.EntryOperationPlanned, "op-2"),
		audit.New(audit.EntryExecutionOutcome, "op-1").WithOutcome(audit.OutcomeSuccess),
	}
	for i, entry := range entries {
		entry.Timestamp = base.Add(time.Duration(i) * time.Minute)
		require.NoError(t, service.Append(ctx, entry))
	}

	byOperation, err := service.Query(ctx, audit.WithOperationID("op-1"))
	require.NoError(t, err)
	require.Len(t, byOperation, 2)
	assert.Equal(t, int64(1), byOperation[0].Seq)
	assert.Equal(t, int64(3), byOperation[1].Seq)

	byTime, err := service.Query(ctx, audit.WithTimeRange(base.Add(30*time.Second), base.Add(90*time.Second)))
	require.NoError(t, err)
	require.Len(t, byTime, 1)
	assert.Equal(t, "op-2", byTime[0].OperationID)

	all, err := service.Query(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestVerifyDetectsTampering(t *testing.T) {
	ctx := context.Background()
	service := New()

	for _, id := range []string{"op-1", "op-2", "op-3"} {
		require.NoError(t, service.Append(ctx, audit.New(audit.EntryOperationPlanned, id)))
	}
	require.NoError(t, service.Verify(ctx))

	entries, err := service.Query(ctx)
	require.NoError(t, err)

	// mutate a middle entry after the fact
	entries[1].OperationID = "op-evil"
	err = service.Verify(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "seq 2")
}
