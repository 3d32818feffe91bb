// Package fs persists the audit chain as one JSON document per entry under a
// base URL, using viant/afs so the log can live on local disk or any
// supported object store. File names embed the zero-padded sequence so a
// plain listing is already in append order.
package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/url"
	"github.com/viant/warden/internal/clock"
	"github.com/viant/warden/model/types"
	"github.com/viant/warden/service/audit"
	"github.com/viant/warden/service/dao"
)

type service struct {
	fs      afs.Service
	baseURL string

	mu         sync.Mutex // serialises writers; readers go through afs listing
	lastDigest string
	nextSeq    int64
	loaded     bool
}

// New creates a file-backed audit service rooted at baseURL.
func New(baseURL string) audit.Service {
	return &service{fs: afs.New(), baseURL: baseURL, nextSeq: 1}
}

func (s *service) entryURL(seq int64) string {
	return url.Join(s.baseURL, fmt.Sprintf("%020d.json", seq))
}

// recover restores sequence and chain tail from an existing log directory so
// the store can resume appending after a restart.
func (s *service) recover(ctx context.Context) error {
	if s.loaded {
		return nil
	}
	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	if n := len(entries); n > 0 {
		s.nextSeq = entries[n-1].Seq + 1
		s.lastDigest = entries[n-1].Digest
	}
	s.loaded = true
	return nil
}

func (s *service) Append(ctx context.Context, entry *audit.Entry) error {
	if entry == nil {
		return types.NewAuditWriteError(dao.ErrNilEntity)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.recover(ctx); err != nil {
		return types.NewAuditWriteError(err)
	}
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
	data, err := json.Marshal(entry)
	if err != nil {
		return types.NewAuditWriteError(err)
	}
	if err = s.fs.Upload(ctx, s.entryURL(entry.Seq), file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return types.NewAuditWriteError(err)
	}
	s.lastDigest = digest
	s.nextSeq++
	return nil
}

func (s *service) load(ctx context.Context) ([]*audit.Entry, error) {
	exists, err := s.fs.Exists(ctx, s.baseURL)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, nil
	}
	objects, err := s.fs.List(ctx, s.baseURL)
	if err != nil {
		return nil, err
	}
	entries := make([]*audit.Entry, 0, len(objects))
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		data, err := s.fs.DownloadWithURL(ctx, object.URL())
		if err != nil {
			return nil, err
		}
		entry := &audit.Entry{}
		if err = json.Unmarshal(data, entry); err != nil {
			return nil, fmt.Errorf("malformed audit entry %s: %w", object.URL(), err)
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Seq < entries[j].Seq })
	return entries, nil
}

func (s *service) Query(ctx context.Context, options ...audit.QueryOption) ([]*audit.Entry, error) {
	q := audit.NewQuery(options)
	entries, err := s.load(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*audit.Entry, 0, len(entries))
	for _, entry := range entries {
		if q.Matches(entry) {
			out = append(out, entry)
		}
	}
	return out, nil
}

func (s *service) Verify(ctx context.Context) error {
	entries, err := s.load(ctx)
	if err != nil {
		return err
	}
	prev := ""
	for _, entry := range entries {
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
