package warden

import (
	"github.com/viant/warden/extension"
	"github.com/viant/warden/model"
	"github.com/viant/warden/service/approval"
	"github.com/viant/warden/service/audit"
	"github.com/viant/warden/service/dao"
	"github.com/viant/warden/service/executor"
	"github.com/viant/warden/service/notify"
	"github.com/viant/warden/service/planner"
	"github.com/viant/warden/service/risk"
	"github.com/viant/warden/tracing"
)

// Option customises the orchestrator service.
type Option func(s *Service)

// WithConfig sets the configuration.
func WithConfig(config *Config) Option {
	return func(s *Service) { s.config = config }
}

// WithPlanner sets the planner service.
func WithPlanner(svc planner.Service) Option {
	return func(s *Service) { s.planner = svc }
}

// WithClassifier sets the risk classifier.
func WithClassifier(classifier *risk.Classifier) Option {
	return func(s *Service) { s.classifier = classifier }
}

// WithAuditService sets the audit store.
func WithAuditService(svc audit.Service) Option {
	return func(s *Service) { s.auditService = svc }
}

// WithNotifier sets the notification channel.
func WithNotifier(svc notify.Service) Option {
	return func(s *Service) { s.notifier = svc }
}

// WithApprovalService sets the approval coordinator.
func WithApprovalService(svc approval.Service) Option {
	return func(s *Service) { s.approvalService = svc }
}

// WithExecutor sets the underlying operation executor.
func WithExecutor(svc executor.Service) Option {
	return func(s *Service) { s.executor = svc }
}

// WithOperationDAO sets the store recording planned operations.
func WithOperationDAO(svc dao.Service[string, model.Operation]) Option {
	return func(s *Service) { s.operations = svc }
}

// WithExtensionKinds registers custom operation kinds.
func WithExtensionKinds(kinds *extension.Kinds) Option {
	return func(s *Service) { s.kinds = kinds }
}

// WithTracing configures OpenTelemetry tracing for the service. If outputFile
// is empty the stdout exporter is used; otherwise traces are written to the
// supplied file path. Safe to call multiple times.
func WithTracing(serviceName, serviceVersion, outputFile string) Option {
	return func(s *Service) {
		_ = tracing.Init(serviceName, serviceVersion, outputFile)
	}
}
