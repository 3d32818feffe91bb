package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/warden/model"
)

func TestSummarize(t *testing.T) {
	operation := model.NewOperation(model.KindDelete, []string{"old_notes.txt"}, nil, "delete the old notes")
	summary := Summarize(operation, "")
	assert.Contains(t, summary, `User requested: "delete the old notes"`)
	assert.Contains(t, summary, "This translates to: delete operation")
	assert.Contains(t, summary, "Target path: old_notes.txt")
	assert.Contains(t, summary, "permanently delete")
}

func TestSummarizeWithPreview(t *testing.T) {
	operation := model.NewOperation(model.KindWrite, []string{"a.txt"}, map[string]interface{}{"content": "hello"}, "")
	summary := Summarize(operation, "--- a.txt (current)\n+++ a.txt (proposed)")
	assert.Contains(t, summary, "overwrite any existing content")
	assert.Contains(t, summary, "Preview:\n--- a.txt (current)")
}

func TestInstructions(t *testing.T) {
	text := Instructions("a1b2c3d4")
	assert.Contains(t, text, "approve a1b2c3d4")
	assert.Contains(t, text, "deny a1b2c3d4")
}
