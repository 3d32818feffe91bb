package model

import (
	"strings"

	"github.com/viant/toolbox"
	"github.com/viant/warden/internal/idgen"
)

// Kind identifies a file-system operation type. The set is open – custom
// kinds can be registered through the extension package.
type Kind string

// Built-in operation kinds.
const (
	KindList   Kind = "list"
	KindRead   Kind = "read"
	KindWrite  Kind = "write"
	KindMove   Kind = "move"
	KindDelete Kind = "delete"
	KindPatch  Kind = "patch"
)

// Normalized returns the lower-cased kind so that lookups are
// case-insensitive.
func (k Kind) Normalized() Kind {
	return Kind(strings.ToLower(strings.TrimSpace(string(k))))
}

// Operation represents one proposed file operation. Instances are immutable
// once created – downstream components reference them, they never copy and
// mutate.
type Operation struct {
	ID          string                 `json:"id"`
	Kind        Kind                   `json:"kind"`
	TargetPaths []string               `json:"targetPaths"`
	Parameters  map[string]interface{} `json:"parameters,omitempty"`
	OriginText  string                 `json:"originText,omitempty"` // provenance only
}

// NewOperation creates an operation with a generated id.
func NewOperation(kind Kind, targetPaths []string, parameters map[string]interface{}, originText string) *Operation {
	return &Operation{
		ID:          idgen.New(),
		Kind:        kind,
		TargetPaths: targetPaths,
		Parameters:  parameters,
		OriginText:  originText,
	}
}

// Target returns the first target path or an empty string.
func (o *Operation) Target() string {
	if len(o.TargetPaths) == 0 {
		return ""
	}
	return o.TargetPaths[0]
}

// Destination returns the second target path (move destination) falling back
// to the "destination" parameter.
func (o *Operation) Destination() string {
	if len(o.TargetPaths) > 1 {
		return o.TargetPaths[1]
	}
	return o.StringParam("destination")
}

// StringParam coerces the named parameter to string; empty when absent.
func (o *Operation) StringParam(name string) string {
	value, ok := o.Parameters[name]
	if !ok || value == nil {
		return ""
	}
	return toolbox.AsString(value)
}

// BoolParam coerces the named parameter to bool; false when absent.
func (o *Operation) BoolParam(name string) bool {
	value, ok := o.Parameters[name]
	if !ok || value == nil {
		return false
	}
	return toolbox.AsBoolean(value)
}
