// Package approval implements the human-in-the-loop decision layer. A
// high-risk operation pauses until an explicit approve/deny decision is
// recorded or its deadline passes; each request resolves exactly once.
package approval
