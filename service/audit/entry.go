package audit

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/crypto/blake2b"
)

// EntryType identifies the lifecycle event an entry records.
type EntryType string

// Entry types written over an operation's lifetime.
const (
	EntryOperationPlanned   EntryType = "operation.planned"
	EntryApprovalRequested  EntryType = "approval.requested"
	EntryApprovalResolved   EntryType = "approval.resolved"
	EntryApprovalTimedOut   EntryType = "approval.timedOut"
	EntryNotificationFailed EntryType = "notification.failed"
	EntryMalformedResponse  EntryType = "response.malformed"
	EntryExecutionAttempt   EntryType = "execution.attempt"
	EntryExecutionOutcome   EntryType = "execution.outcome"
	EntryFallbackInvoked    EntryType = "fallback.invoked"
)

// Outcome classifies how the recorded event concluded.
type Outcome string

const (
	OutcomeSuccess Outcome = "success"
	OutcomeFailure Outcome = "failure"
	OutcomeDenied  Outcome = "denied"
	OutcomeTimeout Outcome = "timeout"
)

// Entry is an immutable record of one event. Entries are chained: each digest
// covers the entry content plus the previous entry's digest, so any edit or
// removal after the fact breaks verification.
type Entry struct {
	Seq         int64                  `json:"seq"`
	Timestamp   time.Time              `json:"timestamp"`
	Type        EntryType              `json:"type"`
	OperationID string                 `json:"operationId,omitempty"`
	ApprovalID  string                 `json:"approvalId,omitempty"`
	Outcome     Outcome                `json:"outcome,omitempty"`
	Detail      map[string]interface{} `json:"detail,omitempty"`
	PrevDigest  string                 `json:"prevDigest,omitempty"`
	Digest      string                 `json:"digest"`
}

// New creates an entry stamped by the caller's audit service on append.
func New(entryType EntryType, operationID string) *Entry {
	return &Entry{Type: entryType, OperationID: operationID}
}

// WithApproval links the entry to an approval request.
func (e *Entry) WithApproval(approvalID string) *Entry {
	e.ApprovalID = approvalID
	return e
}

// WithOutcome records how the event concluded.
func (e *Entry) WithOutcome(outcome Outcome) *Entry {
	e.Outcome = outcome
	return e
}

// WithDetail attaches one key/value pair to the structured payload.
func (e *Entry) WithDetail(key string, value interface{}) *Entry {
	if e.Detail == nil {
		e.Detail = map[string]interface{}{}
	}
	e.Detail[key] = value
	return e
}

// ComputeDigest derives the chained digest for this entry given the previous
// entry's digest. Map keys are serialised in sorted order by encoding/json so
// the digest is deterministic.
func (e *Entry) ComputeDigest(prevDigest string) (string, error) {
	detail, err := json.Marshal(e.Detail)
	if err != nil {
		return "", err
	}
	payload := fmt.Sprintf("%d|%s|%s|%s|%s|%s|%s|%s",
		e.Seq,
		e.Timestamp.UTC().Format(time.RFC3339Nano),
		e.Type,
		e.OperationID,
		e.ApprovalID,
		e.Outcome,
		detail,
		prevDigest,
	)
	digest := blake2b.Sum256([]byte(payload))
	return hex.EncodeToString(digest[:]), nil
}
