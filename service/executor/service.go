// Package executor performs the literal file-system actions behind the
// gatekeeper, built on viant/afs. It assumes paths have already been
// sandbox-validated – containment is the gatekeeper's job, not this
// package's.
package executor

import (
	"bytes"
	"context"
	"fmt"
	"path"
	"time"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/warden/internal/clock"
)

// Asset describes a file or directory returned by List.
type Asset struct {
	URL     string    `json:"url"`
	Name    string    `json:"name"`
	IsDir   bool      `json:"isDir"`
	Mode    string    `json:"mode,omitempty"`
	Size    int64     `json:"size,omitempty"`
	ModTime time.Time `json:"modTime,omitempty"`
}

// Service is the underlying operation executor consumed by the gatekeeper.
type Service interface {
	List(ctx context.Context, location string) ([]*Asset, error)
	Read(ctx context.Context, location string) ([]byte, error)
	Write(ctx context.Context, location string, data []byte) error
	Move(ctx context.Context, source, destination string) error
	Delete(ctx context.Context, location string) error
	// MoveToTrash relocates the target under the trash directory instead of
	// removing it; the returned path names the trashed copy.
	MoveToTrash(ctx context.Context, location string) (string, error)
	// Patch applies a unified diff to the target file.
	Patch(ctx context.Context, location string, patchText string) error
}

type service struct {
	fs       afs.Service
	trashDir string
}

// Option customises the executor.
type Option func(*service)

// WithTrashDir sets the destination directory for trash moves.
func WithTrashDir(dir string) Option {
	return func(s *service) { s.trashDir = dir }
}

// New creates an afs-backed executor.
func New(options ...Option) Service {
	ret := &service{fs: afs.New()}
	for _, opt := range options {
		opt(ret)
	}
	return ret
}

func (s *service) List(ctx context.Context, location string) ([]*Asset, error) {
	objects, err := s.fs.List(ctx, location, option.NewRecursive(false))
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", location, err)
	}
	assets := make([]*Asset, 0, len(objects))
	for _, object := range objects {
		if object.URL() == location || url.Path(object.URL()) == url.Path(location) {
			continue // afs returns the parent itself as first element
		}
		assets = append(assets, &Asset{
			URL:     object.URL(),
			Name:    path.Base(object.URL()),
			IsDir:   object.IsDir(),
			Mode:    object.Mode().String(),
			Size:    object.Size(),
			ModTime: object.ModTime(),
		})
	}
	return assets, nil
}

func (s *service) Read(ctx context.Context, location string) ([]byte, error) {
	data, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", location, err)
	}
	return data, nil
}

func (s *service) Write(ctx context.Context, location string, data []byte) error {
	if err := s.fs.Upload(ctx, location, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to write %s: %w", location, err)
	}
	return nil
}

func (s *service) Move(ctx context.Context, source, destination string) error {
	exists, err := s.fs.Exists(ctx, source)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("source does not exist: %s", source)
	}
	if err = s.fs.Move(ctx, source, destination); err != nil {
		return fmt.Errorf("failed to move %s to %s: %w", source, destination, err)
	}
	return nil
}

func (s *service) Delete(ctx context.Context, location string) error {
	exists, err := s.fs.Exists(ctx, location)
	if err != nil {
		return err
	}
	if !exists {
		return fmt.Errorf("target does not exist: %s", location)
	}
	if err = s.fs.Delete(ctx, location); err != nil {
		return fmt.Errorf("failed to delete %s: %w", location, err)
	}
	return nil
}

func (s *service) MoveToTrash(ctx context.Context, location string) (string, error) {
	if s.trashDir == "" {
		return "", fmt.Errorf("trash directory not configured")
	}
	trashed := url.Join(s.trashDir, fmt.Sprintf("%s_%s", clock.Now().Format("20060102T150405"), path.Base(location)))
	if err := s.Move(ctx, location, trashed); err != nil {
		return "", err
	}
	return trashed, nil
}

func (s *service) Patch(ctx context.Context, location string, patchText string) error {
	original, err := s.fs.DownloadWithURL(ctx, location)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", location, err)
	}
	patched, err := Apply(original, patchText)
	if err != nil {
		return fmt.Errorf("failed to patch %s: %w", location, err)
	}
	return s.Write(ctx, location, patched)
}

var _ Service = (*service)(nil)
