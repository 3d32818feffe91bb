package slack

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/warden/service/notify"
)

func testNotification() *notify.Notification {
	return &notify.Notification{
		ApprovalID:  "a1b2c3d4",
		OperationID: "op-1",
		Kind:        "delete",
		Target:      "old_notes.txt",
		Summary:     "This translates to: delete operation",
		Deadline:    time.Date(2025, 6, 1, 10, 5, 0, 0, time.UTC),
	}
}

func TestNewRequiresWebhook(t *testing.T) {
	_, err := New(nil)
	assert.Error(t, err)
	_, err = New(&Config{})
	assert.Error(t, err)
}

func TestSendPostsBlocks(t *testing.T) {
	var body map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, _ := io.ReadAll(r.Body)
		_ = json.Unmarshal(data, &body)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	notifier, err := New(&Config{WebhookURL: server.URL, Channel: "#approvals"})
	require.NoError(t, err)

	require.NoError(t, notifier.Send(context.Background(), testNotification()))
	require.NotNil(t, body)
	assert.Equal(t, "#approvals", body["channel"])

	blocks, ok := body["blocks"].([]interface{})
	require.True(t, ok)
	require.Len(t, blocks, 4)

	actions := blocks[3].(map[string]interface{})
	elements := actions["elements"].([]interface{})
	require.Len(t, elements, 2)
	assert.Equal(t, "approve_a1b2c3d4", elements[0].(map[string]interface{})["value"])
	assert.Equal(t, "deny_a1b2c3d4", elements[1].(map[string]interface{})["value"])
}

func TestSendReportsHTTPFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	notifier, err := New(&Config{WebhookURL: server.URL})
	require.NoError(t, err)

	err = notifier.Send(context.Background(), testNotification())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "403")
}

func TestHandleInteraction(t *testing.T) {
	notifier, err := New(&Config{WebhookURL: "https://hooks.slack.invalid/services/x"})
	require.NoError(t, err)

	require.NoError(t, notifier.HandleInteraction("approve_a1b2c3d4", "alice"))
	response := <-notifier.Responses()
	assert.True(t, response.Approve)
	assert.Equal(t, "a1b2c3d4", response.ApprovalID)
	assert.Equal(t, "alice", response.Actor)

	require.NoError(t, notifier.HandleInteraction("deny_a1b2c3d4", "bob"))
	response = <-notifier.Responses()
	assert.False(t, response.Approve)

	assert.Error(t, notifier.HandleInteraction("snooze_a1b2c3d4", "alice"))
}

func TestHandleMessage(t *testing.T) {
	notifier, err := New(&Config{WebhookURL: "https://hooks.slack.invalid/services/x"})
	require.NoError(t, err)

	require.NoError(t, notifier.HandleMessage("deny a1b2c3d4", "alice"))
	response := <-notifier.Responses()
	assert.False(t, response.Approve)
	assert.Equal(t, "a1b2c3d4", response.ApprovalID)

	assert.Error(t, notifier.HandleMessage("looks fine", "alice"))
}
