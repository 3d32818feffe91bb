package gatekeeper

import (
	"github.com/viant/warden/model"
)

// Variant names one way to carry out an operation kind; the execution result
// reports which variant actually ran.
type Variant string

const (
	// VariantPrimary is the literal operation as requested.
	VariantPrimary Variant = "primary"
	// VariantTrash substitutes a move into the trash directory for a failed
	// delete.
	VariantTrash Variant = "trash"
)

// FallbackRule pairs an operation kind with the safer substitute attempted
// once when the primary action fails. Expressing fallbacks as data keeps the
// gatekeeper's control flow free of kind-specific branches.
type FallbackRule struct {
	Kind     model.Kind
	Fallback Variant
}

// DefaultFallbacks returns the built-in policy table: a failed DELETE is
// retried as a move to trash.
func DefaultFallbacks() []FallbackRule {
	return []FallbackRule{
		{Kind: model.KindDelete, Fallback: VariantTrash},
	}
}

func fallbackTable(rules []FallbackRule) map[model.Kind]Variant {
	table := make(map[model.Kind]Variant, len(rules))
	for _, rule := range rules {
		table[rule.Kind.Normalized()] = rule.Fallback
	}
	return table
}
