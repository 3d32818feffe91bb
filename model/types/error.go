package types

import (
	"errors"
	"fmt"
)

// PlanningError indicates the planner could not turn natural-language intent
// into a structured operation. It is surfaced to the caller without invoking
// the gatekeeper.
type PlanningError struct {
	Text  string
	Cause error
}

func (e *PlanningError) Error() string {
	return fmt.Sprintf("planning failed for %q: %v", e.Text, e.Cause)
}

func (e *PlanningError) Unwrap() error { return e.Cause }

// NewPlanningError creates a PlanningError.
func NewPlanningError(text string, cause error) error {
	return &PlanningError{Text: text, Cause: cause}
}

// SandboxViolationError indicates a target path resolved outside the sandbox
// root. The operation is never invoked and the violation is always audited.
type SandboxViolationError struct {
	OperationID string
	Path        string
}

func (e *SandboxViolationError) Error() string {
	return fmt.Sprintf("operation %s: path %q escapes sandbox root", e.OperationID, e.Path)
}

// NewSandboxViolationError creates a SandboxViolationError.
func NewSandboxViolationError(operationID, path string) error {
	return &SandboxViolationError{OperationID: operationID, Path: path}
}

// AuthorizationError indicates a high-risk operation lacked an APPROVED
// resolution.
type AuthorizationError struct {
	OperationID string
	ApprovalID  string
	Outcome     string // denied, timedOut or missing
}

func (e *AuthorizationError) Error() string {
	return fmt.Sprintf("operation %s not authorized: %s", e.OperationID, e.Outcome)
}

// TimedOut reports whether the authorization failed because the approval
// request expired.
func (e *AuthorizationError) TimedOut() bool { return e.Outcome == "timedOut" }

// NewAuthorizationError creates an AuthorizationError.
func NewAuthorizationError(operationID, approvalID, outcome string) error {
	return &AuthorizationError{OperationID: operationID, ApprovalID: approvalID, Outcome: outcome}
}

// NotificationError wraps a notification channel delivery failure. It is
// non-fatal to the approval lifecycle – an unanswered request still resolves
// via timeout.
type NotificationError struct {
	ApprovalID string
	Cause      error
}

func (e *NotificationError) Error() string {
	return fmt.Sprintf("notification for approval %s failed: %v", e.ApprovalID, e.Cause)
}

func (e *NotificationError) Unwrap() error { return e.Cause }

// ExecutionError wraps an underlying executor failure after any fallback
// substitution has been exhausted.
type ExecutionError struct {
	OperationID string
	Cause       error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("operation %s execution failed: %v", e.OperationID, e.Cause)
}

func (e *ExecutionError) Unwrap() error { return e.Cause }

// NewExecutionError creates an ExecutionError.
func NewExecutionError(operationID string, cause error) error {
	return &ExecutionError{OperationID: operationID, Cause: cause}
}

// AuditWriteError indicates an audit append failed. A lost audit record for a
// high-risk action is a correctness failure so this error always propagates.
type AuditWriteError struct {
	Cause error
}

func (e *AuditWriteError) Error() string { return fmt.Sprintf("audit write failed: %v", e.Cause) }

func (e *AuditWriteError) Unwrap() error { return e.Cause }

// NewAuditWriteError creates an AuditWriteError.
func NewAuditWriteError(cause error) error {
	if cause == nil {
		return nil
	}
	return &AuditWriteError{Cause: cause}
}

// IsSandboxViolation reports whether err is a SandboxViolationError.
func IsSandboxViolation(err error) bool {
	var target *SandboxViolationError
	return errors.As(err, &target)
}

// IsAuthorization reports whether err is an AuthorizationError.
func IsAuthorization(err error) bool {
	var target *AuthorizationError
	return errors.As(err, &target)
}
