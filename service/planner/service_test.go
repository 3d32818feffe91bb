package planner

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/warden/model"
	"github.com/viant/warden/model/types"
)

func TestPlanKeywords(t *testing.T) {
	testCases := []struct {
		name      string
		text      string
		expectErr bool
		kind      model.Kind
		paths     []string
	}{
		{name: "delete", text: "delete old_notes.txt", kind: model.KindDelete, paths: []string{"old_notes.txt"}},
		{name: "remove alias", text: "please remove docs/draft.md", kind: model.KindDelete, paths: []string{"docs/draft.md"}},
		{name: "read", text: "show me config.yaml", kind: model.KindRead, paths: []string{"config.yaml"}},
		{name: "list with path", text: "list files in docs/", kind: model.KindList, paths: []string{"docs"}},
		{name: "list defaults to cwd", text: "list files", kind: model.KindList, paths: []string{"."}},
		{name: "move", text: "move a.txt to archive/a.txt", kind: model.KindMove, paths: []string{"a.txt", "archive/a.txt"}},
		{name: "write", text: "create notes.txt", kind: model.KindWrite, paths: []string{"notes.txt"}},
		{name: "move missing destination", text: "move a.txt", expectErr: true},
		{name: "no path", text: "delete it", expectErr: true},
		{name: "no verb", text: "hello there friend", expectErr: true},
		{name: "empty", text: "  ", expectErr: true},
	}
	service := New()
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			operation, err := service.Plan(context.Background(), tc.text)
			if tc.expectErr {
				require.Error(t, err)
				var planErr *types.PlanningError
				assert.ErrorAs(t, err, &planErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.kind, operation.Kind)
			assert.Equal(t, tc.paths, operation.TargetPaths)
			assert.Equal(t, tc.text, operation.OriginText)
		})
	}
}

func TestPlanStructured(t *testing.T) {
	service := New()
	operation, err := service.Plan(context.Background(), `{"kind":"write","path":"notes.txt","content":"hello"}`)
	require.NoError(t, err)
	assert.Equal(t, model.KindWrite, operation.Kind)
	assert.Equal(t, []string{"notes.txt"}, operation.TargetPaths)
	assert.Equal(t, "hello", operation.StringParam("content"))
}

func TestPlanStructuredTypeAlias(t *testing.T) {
	service := New()
	operation, err := service.Plan(context.Background(), `{"type":"move","path":"a.txt","destination":"b.txt"}`)
	require.NoError(t, err)
	assert.Equal(t, model.KindMove, operation.Kind)
	assert.Equal(t, []string{"a.txt", "b.txt"}, operation.TargetPaths)
}

func TestPlanStructuredInvalid(t *testing.T) {
	service := New()
	testCases := []string{
		`{"kind":"write"}`,
		`{"path":"notes.txt"}`,
		`{not json`,
	}
	for _, text := range testCases {
		_, err := service.Plan(context.Background(), text)
		assert.Error(t, err, text)
	}
}
