// Package types defines the error taxonomy shared across the orchestration
// pipeline. Callers detect conditions with errors.As/Is rather than string
// comparison.
package types
