// Package risk maps operation descriptors to a risk tier. Classification is
// pure and deterministic: the high-risk set is fixed at construction so there
// is no global mutable state to reason about.
package risk

import (
	"github.com/viant/warden/model"
)

// Tier classifies an operation as auto-executable or approval-gated.
type Tier string

const (
	// Low operations execute without human approval.
	Low Tier = "low"
	// High operations require an approved resolution before execution.
	High Tier = "high"
)

// DefaultHighRisk returns the default approval-gated kinds.
func DefaultHighRisk() []model.Kind {
	return []model.Kind{model.KindWrite, model.KindMove, model.KindDelete, model.KindPatch}
}

// Classifier decides the risk tier of an operation. The zero value is not
// usable – construct with New.
type Classifier struct {
	highRisk map[model.Kind]struct{}
	known    map[model.Kind]struct{}
}

// New creates a classifier gating the supplied kinds; when none are given the
// default set applies. Matching is case-insensitive.
func New(highRisk ...model.Kind) *Classifier {
	if len(highRisk) == 0 {
		highRisk = DefaultHighRisk()
	}
	ret := &Classifier{
		highRisk: make(map[model.Kind]struct{}, len(highRisk)),
		known: map[model.Kind]struct{}{
			model.KindList: {},
			model.KindRead: {},
		},
	}
	for _, kind := range highRisk {
		normalized := kind.Normalized()
		ret.highRisk[normalized] = struct{}{}
		ret.known[normalized] = struct{}{}
	}
	return ret
}

// AddKnown marks extension kinds as recognised low-risk unless they are in
// the high-risk set. Called once during setup, before any classification.
func (c *Classifier) AddKnown(kinds ...model.Kind) {
	for _, kind := range kinds {
		c.known[kind.Normalized()] = struct{}{}
	}
}

// Classify returns the risk tier for the operation. Unknown kinds are HIGH –
// fail safe rather than fail open.
func (c *Classifier) Classify(operation *model.Operation) Tier {
	kind := operation.Kind.Normalized()
	if _, ok := c.highRisk[kind]; ok {
		return High
	}
	if _, ok := c.known[kind]; !ok {
		return High
	}
	return Low
}
