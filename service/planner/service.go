// Package planner turns natural-language intent into a structured operation.
// The default implementation is deliberately offline: it accepts a structured
// JSON request verbatim and otherwise falls back to keyword heuristics, so an
// LLM-backed planner can be swapped in through the Service interface without
// touching the rest of the pipeline.
package planner

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/viant/warden/model"
	"github.com/viant/warden/model/types"
)

// Service plans one operation from free-form text.
type Service interface {
	Plan(ctx context.Context, text string) (*model.Operation, error)
}

// request is the structured form accepted verbatim when the input parses as
// JSON.
type request struct {
	Kind        string `json:"kind"`
	Type        string `json:"type"` // accepted alias for kind
	Path        string `json:"path"`
	Destination string `json:"destination,omitempty"`
	Content     string `json:"content,omitempty"`
	Patch       string `json:"patch,omitempty"`
}

type heuristic struct{}

// New creates the heuristic planner.
func New() Service {
	return &heuristic{}
}

// Plan parses text into an operation. Structured JSON wins; otherwise keyword
// matching picks the kind and the last path-looking token picks the target.
func (h *heuristic) Plan(_ context.Context, text string) (*model.Operation, error) {
	trimmed := strings.TrimSpace(text)
	if trimmed == "" {
		return nil, types.NewPlanningError(text, fmt.Errorf("empty request"))
	}
	if strings.HasPrefix(trimmed, "{") {
		return h.planStructured(text, trimmed)
	}
	return h.planKeywords(text, trimmed)
}

func (h *heuristic) planStructured(origin, trimmed string) (*model.Operation, error) {
	var req request
	if err := json.Unmarshal([]byte(trimmed), &req); err != nil {
		return nil, types.NewPlanningError(origin, fmt.Errorf("invalid request: %w", err))
	}
	kind := req.Kind
	if kind == "" {
		kind = req.Type
	}
	if kind == "" || req.Path == "" {
		return nil, types.NewPlanningError(origin, fmt.Errorf("kind and path are required"))
	}
	paths := []string{req.Path}
	if req.Destination != "" {
		paths = append(paths, req.Destination)
	}
	parameters := map[string]interface{}{}
	if req.Content != "" {
		parameters["content"] = req.Content
	}
	if req.Patch != "" {
		parameters["patch"] = req.Patch
	}
	return model.NewOperation(model.Kind(kind).Normalized(), paths, parameters, origin), nil
}

func (h *heuristic) planKeywords(origin, trimmed string) (*model.Operation, error) {
	lower := strings.ToLower(trimmed)
	var kind model.Kind
	switch {
	case containsAny(lower, "delete", "remove", "rm "):
		kind = model.KindDelete
	case containsAny(lower, "move", "rename", "mv "):
		kind = model.KindMove
	case containsAny(lower, "write", "create", "save"):
		kind = model.KindWrite
	case containsAny(lower, "patch", "apply diff"):
		kind = model.KindPatch
	case containsAny(lower, "read", "show", "cat ", "open"):
		kind = model.KindRead
	case containsAny(lower, "list", "ls", "dir", "files"):
		kind = model.KindList
	default:
		return nil, types.NewPlanningError(origin, fmt.Errorf("unable to determine operation kind"))
	}

	paths := pathTokens(trimmed)
	if len(paths) == 0 {
		if kind != model.KindList {
			return nil, types.NewPlanningError(origin, fmt.Errorf("no target path in request"))
		}
		paths = []string{"."}
	}
	if kind == model.KindMove && len(paths) < 2 {
		return nil, types.NewPlanningError(origin, fmt.Errorf("move needs a source and a destination"))
	}
	return model.NewOperation(kind, paths, nil, origin), nil
}

func containsAny(text string, fragments ...string) bool {
	for _, fragment := range fragments {
		if strings.Contains(text, fragment) {
			return true
		}
	}
	return false
}

// pathTokens extracts tokens that look like file paths: containing a slash or
// a dot-extension, with surrounding quotes and punctuation stripped.
func pathTokens(text string) []string {
	var out []string
	for _, token := range strings.Fields(text) {
		token = strings.Trim(token, `"'`)
		token = strings.TrimRight(token, `.,;:`)
		if token == "" {
			continue
		}
		hasSlash := strings.Contains(token, "/")
		if len(token) > 1 {
			token = strings.TrimSuffix(token, "/")
		}
		if hasSlash || looksLikeFile(token) {
			out = append(out, token)
		}
	}
	return out
}

func looksLikeFile(token string) bool {
	idx := strings.LastIndex(token, ".")
	if idx <= 0 || idx == len(token)-1 {
		return false
	}
	ext := token[idx+1:]
	for _, r := range ext {
		if (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') && (r < '0' || r > '9') {
			return false
		}
	}
	return true
}
