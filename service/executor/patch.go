package executor

import (
	"bytes"
	"fmt"
	"io"
	"strings"

	sgdiff "github.com/sourcegraph/go-diff/diff"
)

// Apply applies a single-file unified diff to original and returns the new
// content. Context lines must match the original exactly; a mismatch aborts
// with an error rather than producing a partial result.
func Apply(original []byte, patchText string) ([]byte, error) {
	fileDiff, err := sgdiff.ParseFileDiff([]byte(patchText))
	if err != nil {
		return nil, fmt.Errorf("parse patch: %w", err)
	}
	var buf bytes.Buffer
	if err = applyHunks(original, fileDiff.Hunks, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func applyHunks(oldData []byte, hunks []*sgdiff.Hunk, w io.Writer) error {
	// SplitAfter preserves the original newline layout.
	oldLines := strings.SplitAfter(string(oldData), "\n")
	origIdx := 0 // 0-based index into oldLines

	linesEqual := func(a, b string) bool {
		if a == b {
			return true
		}
		// Newline-at-EOF equivalence: SplitAfter leaves an empty string as
		// the last element whereas the diff encodes it as a "\n" context line.
		return (a == "" && b == "\n") || (a == "\n" && b == "")
	}

	for _, h := range hunks {
		// Copy untouched lines that appear before this hunk; OrigStartLine is
		// 1-based.
		targetIdx := int(h.OrigStartLine) - 1
		for origIdx < targetIdx && origIdx < len(oldLines) {
			if _, err := io.WriteString(w, oldLines[origIdx]); err != nil {
				return err
			}
			origIdx++
		}

		for _, hl := range strings.SplitAfter(string(h.Body), "\n") {
			if hl == "" { // final split can be empty
				continue
			}
			tag := hl[0]
			line := hl[1:] // includes trailing newline when present

			switch tag {
			case ' ':
				if origIdx >= len(oldLines) || !linesEqual(oldLines[origIdx], line) {
					return fmt.Errorf("patch failed: context mismatch at original line %d", origIdx+1)
				}
				if oldLines[origIdx] == "" && line == "\n" {
					// implicit newline terminating the file was already
					// emitted with the previous line
					origIdx++
					continue
				}
				if _, err := io.WriteString(w, oldLines[origIdx]); err != nil {
					return err
				}
				origIdx++
			case '-':
				if origIdx >= len(oldLines) || !linesEqual(oldLines[origIdx], line) {
					return fmt.Errorf("patch failed: removal mismatch at original line %d", origIdx+1)
				}
				origIdx++
			case '+':
				if _, err := io.WriteString(w, line); err != nil {
					return err
				}
			case '\\':
				// "\ No newline at end of file" – metadata only
			default:
				return fmt.Errorf("patch failed: unsupported hunk line %q", hl)
			}
		}
	}

	// Copy the remainder of the original.
	for ; origIdx < len(oldLines); origIdx++ {
		if _, err := io.WriteString(w, oldLines[origIdx]); err != nil {
			return err
		}
	}
	return nil
}
