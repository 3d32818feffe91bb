// Package warden provides a human-in-the-loop approval orchestrator for
// agent-proposed file operations.
//
// An operation flows through a fixed pipeline: planning, risk
// classification, human approval (for high-risk kinds), sandboxed execution
// and tamper-evident auditing. Pluggable service layers cover each stage:
//
//   - planner    – natural-language intent to structured operation
//   - risk       – LOW/HIGH tier classification
//   - approval   – pending request lifecycle with timeout racing
//   - gatekeeper – sandbox containment, authorization and fallback policy
//   - audit      – append-only hash-chained trail
//
// Warden is designed to be embedded in host applications. End-users
// typically interact via the high-level Service façade exposed by the root
// package:
//
//	srv, _ := warden.New(warden.WithConfig(&warden.Config{SandboxRoot: "ws"}))
//	defer srv.Shutdown(ctx)
//	result, err := srv.Process(ctx, "delete old_notes.txt")
//
// For more details see the README and individual sub-packages.
package warden
