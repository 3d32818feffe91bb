package idgen

import (
	"strings"

	"github.com/google/uuid"
)

// NewFunc returns a new globally unique identifier as string. It is a
// variable so tests can stub it.
var NewFunc = func() string { return uuid.New().String() }

// New returns a new globally unique identifier.
func New() string { return NewFunc() }

// Short returns an 8-character identifier derived from a full UUID. Short ids
// are used for approval requests so that a reviewer can type them back in a
// chat reply without copy-pasting the full UUID.
func Short() string {
	id := NewFunc()
	id = strings.ReplaceAll(id, "-", "")
	if len(id) > 8 {
		id = id[:8]
	}
	return id
}
