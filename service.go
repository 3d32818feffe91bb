package warden

import (
	"context"
	"errors"
	"log"

	"github.com/viant/afs/url"
	"github.com/viant/warden/extension"
	"github.com/viant/warden/model"
	"github.com/viant/warden/service/approval"
	amemory "github.com/viant/warden/service/approval/memory"
	"github.com/viant/warden/service/audit"
	afsaudit "github.com/viant/warden/service/audit/fs"
	audmemory "github.com/viant/warden/service/audit/memory"
	"github.com/viant/warden/service/dao"
	"github.com/viant/warden/service/dao/store"
	"github.com/viant/warden/service/executor"
	"github.com/viant/warden/service/gatekeeper"
	"github.com/viant/warden/service/notify"
	nmemory "github.com/viant/warden/service/notify/memory"
	"github.com/viant/warden/service/notify/slack"
	"github.com/viant/warden/service/planner"
	"github.com/viant/warden/service/risk"
	"github.com/viant/warden/tracing"
)

// Service is the approval orchestrator: it plans an operation from user
// intent, classifies its risk, gates high-risk operations on a human decision
// and executes through the sandboxed gatekeeper, auditing every step.
type Service struct {
	config          *Config
	planner         planner.Service
	classifier      *risk.Classifier
	auditService    audit.Service
	notifier        notify.Service
	approvalService approval.Service
	executor        executor.Service
	gatekeeper      *gatekeeper.Service
	sandbox         *gatekeeper.Sandbox
	kinds           *extension.Kinds
	operations      dao.Service[string, model.Operation]

	ctx    context.Context
	cancel context.CancelFunc
}

// New creates the orchestrator, wiring package defaults for anything not
// supplied through options.
func New(options ...Option) (*Service, error) {
	ret := &Service{}
	for _, option := range options {
		option(ret)
	}
	if err := ret.init(); err != nil {
		return nil, err
	}
	ret.ctx, ret.cancel = context.WithCancel(context.Background())
	go ret.routeResponses()
	return ret, nil
}

func (s *Service) init() error {
	if s.config == nil {
		s.config = DefaultConfig()
	}
	if err := s.config.Validate(); err != nil {
		return err
	}
	sandbox, err := gatekeeper.NewSandbox(s.config.SandboxRoot)
	if err != nil {
		return err
	}
	s.sandbox = sandbox

	if s.auditService == nil {
		if s.config.Audit.BaseURL != "" {
			s.auditService = afsaudit.New(s.config.Audit.BaseURL)
		} else {
			s.auditService = audmemory.New()
		}
	}
	if s.notifier == nil {
		if s.config.Notification.Slack != nil {
			notifier, err := slack.New(s.config.Notification.Slack)
			if err != nil {
				return err
			}
			s.notifier = notifier
		} else {
			s.notifier = nmemory.New()
		}
	}
	if s.classifier == nil {
		highRisk := make([]model.Kind, 0, len(s.config.Risk.HighRisk))
		for _, kind := range s.config.Risk.HighRisk {
			highRisk = append(highRisk, model.Kind(kind))
		}
		if s.kinds != nil {
			for _, name := range s.kinds.Names() {
				if kind := s.kinds.Lookup(name); kind != nil && kind.HighRisk {
					if len(highRisk) == 0 {
						highRisk = risk.DefaultHighRisk()
					}
					highRisk = append(highRisk, name)
				}
			}
		}
		s.classifier = risk.New(highRisk...)
	}
	if s.kinds != nil {
		s.classifier.AddKnown(s.kinds.Names()...)
	}
	if s.executor == nil {
		trashDir := s.config.TrashDir
		if trashDir == "" {
			trashDir = url.Join(s.sandbox.Root(), ".trash")
		}
		s.executor = executor.New(executor.WithTrashDir(trashDir))
	}
	if s.approvalService == nil {
		var approvalOptions []amemory.Option
		if timeout := s.config.Approval.Timeout(); timeout > 0 {
			approvalOptions = append(approvalOptions, amemory.WithTimeout(timeout))
		}
		s.approvalService = amemory.New(s.auditService, s.notifier, approvalOptions...)
	}
	if s.planner == nil {
		s.planner = planner.New()
	}
	if s.operations == nil {
		s.operations = store.NewMemoryStore[string, model.Operation](func(o *model.Operation) string { return o.ID })
	}
	var gateOptions []gatekeeper.Option
	if s.kinds != nil {
		gateOptions = append(gateOptions, gatekeeper.WithExtensionKinds(s.kinds))
	}
	s.gatekeeper = gatekeeper.New(s.sandbox, s.executor, s.auditService, gateOptions...)
	return nil
}

// routeResponses forwards human decisions from the notification channel to
// the coordinator. A response naming an unknown approval id is recorded as
// malformed and otherwise ignored.
func (s *Service) routeResponses() {
	responses := s.notifier.Responses()
	for {
		select {
		case <-s.ctx.Done():
			return
		case response, ok := <-responses:
			if !ok {
				return
			}
			_, err := s.approvalService.Resolve(s.ctx, response.ApprovalID, response.Approve, response.Actor)
			if errors.Is(err, dao.ErrNotFound) {
				appendErr := s.auditService.Append(s.ctx, audit.New(audit.EntryMalformedResponse, "").
					WithApproval(response.ApprovalID).
					WithOutcome(audit.OutcomeFailure).
					WithDetail("actor", response.Actor))
				if appendErr != nil {
					log.Printf("warden: failed to audit malformed response: %v", appendErr)
				}
				continue
			}
			if err != nil {
				log.Printf("warden: failed to resolve approval %v: %v", response.ApprovalID, err)
			}
		}
	}
}

// Process plans an operation from free-form text and executes it through the
// approval pipeline.
func (s *Service) Process(ctx context.Context, text string) (*gatekeeper.Result, error) {
	ctx, span := tracing.StartSpan(ctx, "warden.Process", "SERVER")
	operation, err := s.planner.Plan(ctx, text)
	if err != nil {
		tracing.EndSpan(span, err)
		return nil, err
	}
	result, err := s.Execute(ctx, operation)
	tracing.EndSpan(span, err)
	return result, err
}

// Execute runs one planned operation: audit the plan, classify, gate on human
// approval when high risk, then hand over to the gatekeeper.
func (s *Service) Execute(ctx context.Context, operation *model.Operation) (*gatekeeper.Result, error) {
	tier := s.classifier.Classify(operation)
	ctx, span := tracing.StartSpan(ctx, "warden.Execute", "INTERNAL")
	span.WithAttributes(map[string]string{
		"operation.id":   operation.ID,
		"operation.kind": string(operation.Kind.Normalized()),
		"risk.tier":      string(tier),
	})
	result, err := s.execute(ctx, operation, tier)
	tracing.EndSpan(span, err)
	return result, err
}

func (s *Service) execute(ctx context.Context, operation *model.Operation, tier risk.Tier) (*gatekeeper.Result, error) {
	if err := s.operations.Save(ctx, operation); err != nil {
		return nil, err
	}
	err := s.auditService.Append(ctx, audit.New(audit.EntryOperationPlanned, operation.ID).
		WithDetail("kind", string(operation.Kind.Normalized())).
		WithDetail("paths", operation.TargetPaths).
		WithDetail("tier", string(tier)))
	if err != nil {
		return nil, err
	}

	var outcome approval.State
	if tier == risk.High {
		summary := notify.Summarize(operation, s.preview(ctx, operation))
		request, err := s.approvalService.RequestApproval(ctx, operation, summary)
		if err != nil {
			return nil, err
		}
		outcome, err = s.approvalService.AwaitResolution(ctx, request.ID)
		if err != nil {
			return nil, err
		}
	}
	return s.gatekeeper.Execute(ctx, operation, tier, outcome)
}

// preview renders a unified diff of what a content-changing operation would
// do, for inclusion in the approval summary. Best effort: a preview failure
// never blocks the request.
func (s *Service) preview(ctx context.Context, operation *model.Operation) string {
	switch operation.Kind.Normalized() {
	case model.KindWrite:
		location, err := s.sandbox.Resolve(operation.Target())
		if err != nil {
			return ""
		}
		current, _ := s.executor.Read(ctx, location)
		diff, _, err := executor.Preview(current, []byte(operation.StringParam("content")), operation.Target(), 3)
		if err != nil {
			return ""
		}
		return diff
	case model.KindPatch:
		return operation.StringParam("patch")
	}
	return ""
}

// Auditor exposes the audit store for queries and verification.
func (s *Service) Auditor() audit.Service { return s.auditService }

// Operations exposes the history of planned operations, keyed by id.
func (s *Service) Operations() dao.Service[string, model.Operation] { return s.operations }

// Approvals exposes the approval coordinator.
func (s *Service) Approvals() approval.Service { return s.approvalService }

// Sandbox returns the execution sandbox.
func (s *Service) Sandbox() *gatekeeper.Sandbox { return s.sandbox }

// Shutdown stops response routing and resolves any remaining PENDING
// approvals as TIMED_OUT.
func (s *Service) Shutdown(ctx context.Context) error {
	s.cancel()
	return s.approvalService.Shutdown(ctx)
}
