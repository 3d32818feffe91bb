// Package slack delivers approval notifications to a Slack channel. Messages
// mirror the interactive layout reviewers expect: a header, the request
// summary, approve/deny buttons and the plain-text reply fallback. Responses
// (interaction payloads or channel messages) are fed back through
// HandleInteraction and HandleMessage by whatever transport hosts the app.
package slack

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/viant/scy"
	"github.com/viant/warden/service/notify"
)

// Config describes the Slack destination. Token material is referenced
// indirectly through a scy resource URL so credentials never live in plain
// configuration.
type Config struct {
	WebhookURL string `json:"webhookURL,omitempty" yaml:"webhookURL,omitempty"`
	Channel    string `json:"channel,omitempty" yaml:"channel,omitempty"`
	// TokenURL is a scy secret resource holding a bearer token; optional for
	// plain incoming webhooks.
	TokenURL string `json:"tokenURL,omitempty" yaml:"tokenURL,omitempty"`
	// TokenKey is the scy encryption key reference, e.g. "blowfish://default".
	TokenKey string `json:"tokenKey,omitempty" yaml:"tokenKey,omitempty"`
	// Timeout bounds one delivery attempt.
	TimeoutMs int `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// Notifier is a Slack-backed notify.Service.
type Notifier struct {
	config    *Config
	client    *http.Client
	secrets   *scy.Service
	responses chan *notify.Response
}

// New creates a Slack notifier.
func New(config *Config) (*Notifier, error) {
	if config == nil || config.WebhookURL == "" {
		return nil, fmt.Errorf("slack: webhookURL is required")
	}
	timeout := time.Duration(config.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	return &Notifier{
		config:    config,
		client:    &http.Client{Timeout: timeout},
		secrets:   scy.New(),
		responses: make(chan *notify.Response, 16),
	}, nil
}

type block struct {
	Type     string                   `json:"type"`
	Text     *text                    `json:"text,omitempty"`
	Elements []map[string]interface{} `json:"elements,omitempty"`
}

type text struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

func (n *Notifier) payload(notification *notify.Notification) map[string]interface{} {
	blocks := []block{
		{Type: "header", Text: &text{Type: "plain_text", Text: "Agent Approval Request"}},
		{Type: "section", Text: &text{Type: "mrkdwn", Text: fmt.Sprintf(
			"*Request ID:* `%s`\n*Operation:* `%s`\n*Target:* `%s`\n%s",
			notification.ApprovalID, notification.Kind, notification.Target, notification.Summary)}},
		{Type: "section", Text: &text{Type: "mrkdwn", Text: fmt.Sprintf(
			"*Deadline:* %s\n%s",
			notification.Deadline.Format(time.RFC3339), notify.Instructions(notification.ApprovalID))}},
		{Type: "actions", Elements: []map[string]interface{}{
			{
				"type":  "button",
				"style": "primary",
				"text":  map[string]string{"type": "plain_text", "text": "Approve"},
				"value": "approve_" + notification.ApprovalID,
			},
			{
				"type":  "button",
				"style": "danger",
				"text":  map[string]string{"type": "plain_text", "text": "Deny"},
				"value": "deny_" + notification.ApprovalID,
			},
		}},
	}
	ret := map[string]interface{}{
		"text":   fmt.Sprintf("Approval request %s: %s %s", notification.ApprovalID, notification.Kind, notification.Target),
		"blocks": blocks,
	}
	if n.config.Channel != "" {
		ret["channel"] = n.config.Channel
	}
	return ret
}

// Send posts the notification to the configured webhook.
func (n *Notifier) Send(ctx context.Context, notification *notify.Notification) error {
	data, err := json.Marshal(n.payload(notification))
	if err != nil {
		return err
	}
	request, err := http.NewRequestWithContext(ctx, http.MethodPost, n.config.WebhookURL, bytes.NewReader(data))
	if err != nil {
		return err
	}
	request.Header.Set("Content-Type", "application/json")
	if n.config.TokenURL != "" {
		token, err := n.bearerToken(ctx)
		if err != nil {
			return fmt.Errorf("slack: failed to resolve token: %w", err)
		}
		request.Header.Set("Authorization", "Bearer "+token)
	}
	response, err := n.client.Do(request)
	if err != nil {
		return err
	}
	defer response.Body.Close()
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("slack: delivery failed with status %d", response.StatusCode)
	}
	return nil
}

func (n *Notifier) bearerToken(ctx context.Context) (string, error) {
	resource := scy.NewResource(nil, n.config.TokenURL, n.config.TokenKey)
	secret, err := n.secrets.Load(ctx, resource)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(secret.String()), nil
}

// Responses exposes decisions fed in by the hosting transport.
func (n *Notifier) Responses() <-chan *notify.Response {
	return n.responses
}

// HandleInteraction processes a button-click value of the form
// "approve_<id>" or "deny_<id>".
func (n *Notifier) HandleInteraction(value, actor string) error {
	var approve bool
	var id string
	switch {
	case strings.HasPrefix(value, "approve_"):
		approve, id = true, strings.TrimPrefix(value, "approve_")
	case strings.HasPrefix(value, "deny_"):
		approve, id = false, strings.TrimPrefix(value, "deny_")
	default:
		return fmt.Errorf("slack: malformed interaction value %q", value)
	}
	n.responses <- &notify.Response{ApprovalID: id, Approve: approve, Actor: actor}
	return nil
}

// HandleMessage processes a plain channel message as a fallback text command.
func (n *Notifier) HandleMessage(message, actor string) error {
	response, err := notify.ParseCommand(message, actor)
	if err != nil {
		return err
	}
	n.responses <- response
	return nil
}

var _ notify.Service = (*Notifier)(nil)
