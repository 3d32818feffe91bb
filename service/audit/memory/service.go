package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/viant/warden/internal/clock"
	"github.com/viant/warden/model/types"
	"github.com/viant/warden/service/audit"
	"github.com/viant/warden/service/dao"
)

// service keeps the audit chain in memory. Appends hold the write lock only
// long enough to stamp and link the entry; queries copy matching entries out
// under a read lock so readers never block the writer for long.
type service struct {
	mu         sync.RWMutex
	entries    []*audit.Entry
	lastDigest string
	nextSeq    int64
}

// New creates an in-memory audit service.
func New() audit.Service {
	return &service{nextSeq: 1}
}

func (s *service) Append(ctx context.Context, entry *audit.Entry) error {
	if entry == nil {
		return types.NewAuditWriteError(dao.ErrNilEntity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	entry.Seq = s.nextSeq
	if entry.Timestamp.IsZero() {
		entry.Timestamp = clock.Now()
	}
	entry.PrevDigest = s.lastDigest
	digest, err := entry.ComputeDigest(s.lastDigest)
	if err != nil {
		return types.NewAuditWriteError(err)
	}
	entry.Digest = digest
	s.entries = append(s.entries, entry)
	s.lastDigest = digest
	s.nextSeq++
	return nil
}

func (s *service) Query(_ context.Context, options ...audit.QueryOption) ([]*audit.Entry, error) {
	q := audit.NewQuery(options)
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*audit.Entry, 0, len(s.entries))
	for _, entry := range s.entries {
		if q.Matches(entry) {
			out = append(out, entry)
		}
	}
	// entries slice is already in append (ascending Seq/timestamp) order
	return out, nil
}

func (s *service) Verify(_ context.Context) error {
	s.mu.RLock()
	defer s.mu.RUnlock()
	prev := ""
	for _, entry := range s.entries {
		if entry.PrevDigest != prev {
			return fmt.Errorf("audit chain broken at seq %d: prev digest mismatch", entry.Seq)
		}
		digest, err := entry.ComputeDigest(prev)
		if err != nil {
			return err
		}
		if digest != entry.Digest {
			return fmt.Errorf("audit chain broken at seq %d: digest mismatch", entry.Seq)
		}
		prev = entry.Digest
	}
	return nil
}

var _ audit.Service = (*service)(nil)
