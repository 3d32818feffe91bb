// Package audit implements the append-only, tamper-evident record store for
// every request, decision and outcome handled by the orchestrator. Entries
// form a blake2b hash chain so compliance reviews can detect edits after the
// fact.
package audit
