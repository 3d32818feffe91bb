package warden

import (
	"context"
	"fmt"
	"time"

	"github.com/viant/afs"
	"github.com/viant/warden/service/notify/slack"
	"gopkg.in/yaml.v3"
)

// Config is a serialisable representation of the orchestrator configuration.
// The zero-value is useful: all nested fields inherit their package defaults.
type Config struct {
	// SandboxRoot is the only directory tree operations may touch.
	SandboxRoot string `json:"sandboxRoot" yaml:"sandboxRoot"`
	// TrashDir overrides the default <sandboxRoot>/.trash fallback location.
	TrashDir string `json:"trashDir,omitempty" yaml:"trashDir,omitempty"`

	Approval     ApprovalConfig     `json:"approval" yaml:"approval"`
	Risk         RiskConfig         `json:"risk" yaml:"risk"`
	Audit        AuditConfig        `json:"audit" yaml:"audit"`
	Notification NotificationConfig `json:"notification" yaml:"notification"`
}

// ApprovalConfig controls the approval request lifecycle.
type ApprovalConfig struct {
	// TimeoutSec bounds how long a request stays PENDING; zero keeps the
	// coordinator default.
	TimeoutSec int `json:"timeoutSec,omitempty" yaml:"timeoutSec,omitempty"`
}

// Timeout returns the configured timeout or zero when unset.
func (c *ApprovalConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSec) * time.Second
}

// RiskConfig overrides the set of approval-gated operation kinds.
type RiskConfig struct {
	HighRisk []string `json:"highRisk,omitempty" yaml:"highRisk,omitempty"`
}

// AuditConfig selects the audit store backend. When BaseURL is empty entries
// stay in memory.
type AuditConfig struct {
	BaseURL string `json:"baseURL,omitempty" yaml:"baseURL,omitempty"`
}

// NotificationConfig selects the notification channel. When Slack is nil the
// in-process notifier is used.
type NotificationConfig struct {
	Slack *slack.Config `json:"slack,omitempty" yaml:"slack,omitempty"`
}

// DefaultConfig returns a Config with the same defaults the constructors use.
func DefaultConfig() *Config {
	return &Config{
		SandboxRoot: "agent-workspace",
	}
}

// Validate returns an error describing invalid settings or nil.
func (c *Config) Validate() error {
	if c == nil {
		return nil
	}
	if c.SandboxRoot == "" {
		return fmt.Errorf("sandboxRoot is required")
	}
	if c.Approval.TimeoutSec < 0 {
		return fmt.Errorf("approval.timeoutSec must be >= 0")
	}
	if c.Notification.Slack != nil && c.Notification.Slack.WebhookURL == "" {
		return fmt.Errorf("notification.slack.webhookURL is required")
	}
	return nil
}

// LoadConfig reads a YAML config from URL (any scheme afs understands).
func LoadConfig(ctx context.Context, URL string) (*Config, error) {
	fs := afs.New()
	data, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, fmt.Errorf("failed to load config %s: %w", URL, err)
	}
	config := DefaultConfig()
	if err = yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config %s: %w", URL, err)
	}
	return config, nil
}
