// Package extension lets embedders register custom operation kinds beyond the
// built-in file operations. Each kind carries a typed input descriptor so the
// gatekeeper can convert the operation's opaque parameter map into the
// handler's input struct.
package extension

import (
	"context"
	"sync"

	"github.com/viant/warden/model"
	"github.com/viant/x"
)

// Handler executes a custom operation kind. paths are the sandbox-resolved
// target paths; input is a pointer to the kind's registered input type
// populated from the operation parameters.
type Handler func(ctx context.Context, input interface{}, paths []string) (string, error)

// Kind describes one custom operation kind.
type Kind struct {
	Name     model.Kind
	Input    *x.Type
	Handler  Handler
	HighRisk bool
}

// Kinds is a registry of custom operation kinds.
type Kinds struct {
	registry map[model.Kind]*Kind
	types    *x.Registry
	mux      sync.RWMutex
}

// NewKinds creates an empty registry.
func NewKinds() *Kinds {
	return &Kinds{
		registry: make(map[model.Kind]*Kind),
		types:    x.NewRegistry(),
	}
}

// Register adds a kind to the registry, replacing any previous registration
// under the same normalized name.
func (k *Kinds) Register(kind *Kind) {
	k.mux.Lock()
	defer k.mux.Unlock()
	if kind.Input != nil {
		k.types.Register(kind.Input)
	}
	k.registry[kind.Name.Normalized()] = kind
}

// Lookup returns the kind registered under name, or nil.
func (k *Kinds) Lookup(name model.Kind) *Kind {
	k.mux.RLock()
	defer k.mux.RUnlock()
	return k.registry[name.Normalized()]
}

// Names returns all registered kind names.
func (k *Kinds) Names() []model.Kind {
	k.mux.RLock()
	defer k.mux.RUnlock()
	out := make([]model.Kind, 0, len(k.registry))
	for name := range k.registry {
		out = append(out, name)
	}
	return out
}
