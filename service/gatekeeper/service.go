// Package gatekeeper validates and executes planned operations. Nothing
// reaches the underlying executor unless every target path stays inside the
// sandbox root and, for high-risk operations, an APPROVED resolution is
// present.
package gatekeeper

import (
	"context"
	"fmt"
	"reflect"

	"github.com/viant/structology/conv"
	"github.com/viant/warden/extension"
	"github.com/viant/warden/model"
	"github.com/viant/warden/model/types"
	"github.com/viant/warden/service/approval"
	"github.com/viant/warden/service/audit"
	"github.com/viant/warden/service/executor"
	"github.com/viant/warden/service/risk"
)

// Result reports what actually ran.
type Result struct {
	OperationID string            `json:"operationId"`
	Variant     Variant           `json:"variant"`
	Output      string            `json:"output,omitempty"`
	Assets      []*executor.Asset `json:"assets,omitempty"`
	Data        []byte            `json:"data,omitempty"`
	TrashedTo   string            `json:"trashedTo,omitempty"`
}

// Service enforces the execution preconditions and applies the fallback
// policy table.
type Service struct {
	sandbox   *Sandbox
	executor  executor.Service
	auditor   audit.Service
	fallbacks map[model.Kind]Variant
	kinds     *extension.Kinds
	converter *conv.Converter
}

// Option customises the gatekeeper.
type Option func(*Service)

// WithFallbacks replaces the default fallback policy table.
func WithFallbacks(rules []FallbackRule) Option {
	return func(s *Service) { s.fallbacks = fallbackTable(rules) }
}

// WithExtensionKinds attaches custom operation kinds.
func WithExtensionKinds(kinds *extension.Kinds) Option {
	return func(s *Service) { s.kinds = kinds }
}

// New creates a gatekeeper.
func New(sandbox *Sandbox, exec executor.Service, auditor audit.Service, options ...Option) *Service {
	convOptions := conv.DefaultOptions()
	convOptions.IgnoreUnmapped = true
	ret := &Service{
		sandbox:   sandbox,
		executor:  exec,
		auditor:   auditor,
		fallbacks: fallbackTable(DefaultFallbacks()),
		converter: conv.NewConverter(convOptions),
	}
	for _, option := range options {
		option(ret)
	}
	return ret
}

// Execute runs the operation when its preconditions hold. The audit trail
// receives one entry for the attempt and one for the outcome; precondition
// failures are recorded as a single outcome entry since no attempt is made.
func (s *Service) Execute(ctx context.Context, operation *model.Operation, tier risk.Tier, outcome approval.State) (*Result, error) {
	paths, err := s.resolvePaths(operation)
	if err != nil {
		appendErr := s.auditor.Append(ctx, audit.New(audit.EntryExecutionOutcome, operation.ID).
			WithOutcome(audit.OutcomeFailure).
			WithDetail("reason", "sandbox violation").
			WithDetail("error", err.Error()))
		if appendErr != nil {
			return nil, appendErr
		}
		return nil, err
	}

	if tier == risk.High && outcome != approval.StateApproved {
		reason := "missing"
		auditOutcome := audit.OutcomeDenied
		switch outcome {
		case approval.StateDenied:
			reason = "denied"
		case approval.StateTimedOut:
			reason = "timedOut"
			auditOutcome = audit.OutcomeTimeout
		}
		appendErr := s.auditor.Append(ctx, audit.New(audit.EntryExecutionOutcome, operation.ID).
			WithOutcome(auditOutcome).
			WithDetail("reason", "authorization "+reason))
		if appendErr != nil {
			return nil, appendErr
		}
		return nil, types.NewAuthorizationError(operation.ID, "", reason)
	}

	err = s.auditor.Append(ctx, audit.New(audit.EntryExecutionAttempt, operation.ID).
		WithDetail("kind", string(operation.Kind.Normalized())).
		WithDetail("paths", paths).
		WithDetail("variant", string(VariantPrimary)))
	if err != nil {
		return nil, err
	}

	result, execErr := s.dispatch(ctx, operation, paths, VariantPrimary)
	if execErr != nil {
		fallback, ok := s.fallbacks[operation.Kind.Normalized()]
		if !ok {
			return nil, s.concludeFailure(ctx, operation, execErr)
		}
		err = s.auditor.Append(ctx, audit.New(audit.EntryFallbackInvoked, operation.ID).
			WithDetail("variant", string(fallback)).
			WithDetail("error", execErr.Error()))
		if err != nil {
			return nil, err
		}
		result, execErr = s.dispatch(ctx, operation, paths, fallback)
		if execErr != nil {
			return nil, s.concludeFailure(ctx, operation, execErr)
		}
		result.Variant = fallback
	}
	result.OperationID = operation.ID

	err = s.auditor.Append(ctx, audit.New(audit.EntryExecutionOutcome, operation.ID).
		WithOutcome(audit.OutcomeSuccess).
		WithDetail("variant", string(result.Variant)))
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *Service) concludeFailure(ctx context.Context, operation *model.Operation, execErr error) error {
	appendErr := s.auditor.Append(ctx, audit.New(audit.EntryExecutionOutcome, operation.ID).
		WithOutcome(audit.OutcomeFailure).
		WithDetail("error", execErr.Error()))
	if appendErr != nil {
		return appendErr
	}
	return types.NewExecutionError(operation.ID, execErr)
}

func (s *Service) resolvePaths(operation *model.Operation) ([]string, error) {
	if len(operation.TargetPaths) == 0 {
		return nil, types.NewSandboxViolationError(operation.ID, "")
	}
	resolved := make([]string, 0, len(operation.TargetPaths))
	for _, path := range operation.TargetPaths {
		location, err := s.sandbox.Resolve(path)
		if err != nil {
			return nil, types.NewSandboxViolationError(operation.ID, path)
		}
		resolved = append(resolved, location)
	}
	return resolved, nil
}

func (s *Service) dispatch(ctx context.Context, operation *model.Operation, paths []string, variant Variant) (*Result, error) {
	kind := operation.Kind.Normalized()
	result := &Result{Variant: variant}
	switch kind {
	case model.KindList:
		assets, err := s.executor.List(ctx, paths[0])
		if err != nil {
			return nil, err
		}
		result.Assets = assets
		result.Output = fmt.Sprintf("%d entries", len(assets))
	case model.KindRead:
		data, err := s.executor.Read(ctx, paths[0])
		if err != nil {
			return nil, err
		}
		result.Data = data
		result.Output = fmt.Sprintf("%d bytes", len(data))
	case model.KindWrite:
		content := operation.StringParam("content")
		if err := s.executor.Write(ctx, paths[0], []byte(content)); err != nil {
			return nil, err
		}
		result.Output = "written"
	case model.KindMove:
		if len(paths) < 2 {
			return nil, fmt.Errorf("move requires source and destination")
		}
		if err := s.executor.Move(ctx, paths[0], paths[1]); err != nil {
			return nil, err
		}
		result.Output = "moved"
	case model.KindDelete:
		if variant == VariantTrash {
			trashed, err := s.executor.MoveToTrash(ctx, paths[0])
			if err != nil {
				return nil, err
			}
			result.TrashedTo = trashed
			result.Output = "moved to trash"
			break
		}
		if err := s.executor.Delete(ctx, paths[0]); err != nil {
			return nil, err
		}
		result.Output = "deleted"
	case model.KindPatch:
		patchText := operation.StringParam("patch")
		if patchText == "" {
			return nil, fmt.Errorf("patch requires a patch parameter")
		}
		if err := s.executor.Patch(ctx, paths[0], patchText); err != nil {
			return nil, err
		}
		result.Output = "patched"
	default:
		return s.dispatchExtension(ctx, operation, paths, result)
	}
	return result, nil
}

// dispatchExtension routes unknown kinds to the extension registry,
// converting the opaque parameter map into the kind's typed input.
func (s *Service) dispatchExtension(ctx context.Context, operation *model.Operation, paths []string, result *Result) (*Result, error) {
	if s.kinds == nil {
		return nil, fmt.Errorf("unsupported operation kind %q", operation.Kind)
	}
	kind := s.kinds.Lookup(operation.Kind)
	if kind == nil {
		return nil, fmt.Errorf("unsupported operation kind %q", operation.Kind)
	}
	var input interface{}
	if kind.Input != nil {
		input = reflect.New(kind.Input.Type).Interface()
		if len(operation.Parameters) > 0 {
			if err := s.converter.Convert(operation.Parameters, input); err != nil {
				return nil, fmt.Errorf("invalid parameters for %q: %w", operation.Kind, err)
			}
		}
	}
	output, err := kind.Handler(ctx, input, paths)
	if err != nil {
		return nil, err
	}
	result.Output = output
	return result, nil
}
