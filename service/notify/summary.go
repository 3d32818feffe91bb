package notify

import (
	"fmt"
	"strings"

	"github.com/viant/warden/model"
)

// Summarize renders a reviewer-facing description of the operation: the
// originating request, its structured translation and a kind-specific warning
// line. An optional diff preview (for content-changing kinds) is appended
// verbatim.
func Summarize(operation *model.Operation, preview string) string {
	var parts []string
	if operation.OriginText != "" {
		parts = append(parts, fmt.Sprintf("User requested: %q", operation.OriginText))
	}
	parts = append(parts, fmt.Sprintf("This translates to: %s operation", operation.Kind.Normalized()))
	parts = append(parts, fmt.Sprintf("Target path: %s", operation.Target()))
	if destination := operation.Destination(); destination != "" {
		parts = append(parts, fmt.Sprintf("Destination: %s", destination))
	}
	if warning := warningFor(operation.Kind.Normalized()); warning != "" {
		parts = append(parts, "Warning: "+warning)
	}
	if preview != "" {
		parts = append(parts, "Preview:\n"+preview)
	}
	return strings.Join(parts, "\n")
}

func warningFor(kind model.Kind) string {
	switch kind {
	case model.KindDelete:
		return "this will permanently delete the file/directory"
	case model.KindMove:
		return "this will move the file to a new location"
	case model.KindWrite:
		return "this will overwrite any existing content"
	case model.KindPatch:
		return "this will modify the file content in place"
	}
	return ""
}

// Instructions renders the reply help included with every notification so
// reviewers can answer via plain text when interactive elements are
// unavailable.
func Instructions(approvalID string) string {
	return fmt.Sprintf("To approve, reply: approve %s\nTo deny, reply: deny %s", approvalID, approvalID)
}
