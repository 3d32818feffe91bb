package executor

import (
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// DiffStats captures basic statistics about a unified-diff output.
type DiffStats struct {
	Added   int // number of lines starting with '+' (excluding +++)
	Removed int // number of lines starting with '-' (excluding ---)
}

// Preview produces a GNU unified diff between current and proposed file
// contents, used in approval notifications so reviewers see exactly what a
// WRITE or PATCH would change. Identical inputs yield an empty diff.
func Preview(current, proposed []byte, filePath string, contextLines int) (string, DiffStats, error) {
	if contextLines <= 0 {
		contextLines = 3
	}
	if string(current) == string(proposed) {
		return "", DiffStats{}, nil
	}

	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(string(current)),
		B:        difflib.SplitLines(string(proposed)),
		FromFile: filePath + " (current)",
		ToFile:   filePath + " (proposed)",
		Context:  contextLines,
	}

	patch, err := difflib.GetUnifiedDiffString(ud)
	if err != nil {
		return "", DiffStats{}, err
	}

	var stats DiffStats
	for _, line := range strings.Split(patch, "\n") {
		switch {
		case strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++"):
			stats.Added++
		case strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---"):
			stats.Removed++
		}
	}
	return patch, stats, nil
}
