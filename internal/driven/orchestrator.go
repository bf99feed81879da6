package driven

import (
	"context"
	"fmt"
	"log"
	"runtime/debug"
	"strings"
	"time"

	"github.com/BetterCallFirewall/SecurityCenter/internal/config"
	"github.com/BetterCallFirewall/SecurityCenter/internal/llm"
	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
)

// Orchestrator fans an analysis request out to the category flows, then
// runs the report and premium enrichment stages and assembles the result.
// All flow calls are sequential; the orchestrator holds no per-request state.
type Orchestrator struct {
	invokers    Invokers
	credentials func() config.CredentialStatus
	notifier    Notifier
	recorder    Recorder
	prefetcher  PageContextProvider
}

type Option func(*Orchestrator)

// WithCredentials sets the source of the credential status used in error messages
func WithCredentials(fn func() config.CredentialStatus) Option {
	return func(o *Orchestrator) { o.credentials = fn }
}

func WithNotifier(n Notifier) Option {
	return func(o *Orchestrator) { o.notifier = n }
}

func WithRecorder(r Recorder) Option {
	return func(o *Orchestrator) { o.recorder = r }
}

// WithPrefetcher enables page-context prefetch for the URL flow
func WithPrefetcher(p PageContextProvider) Option {
	return func(o *Orchestrator) { o.prefetcher = p }
}

func NewOrchestrator(invokers Invokers, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		invokers:    invokers,
		credentials: config.Credentials,
		notifier:    nopNotifier{},
		recorder:    nopRecorder{},
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// PerformAnalysis runs the whole analysis. It never panics and never returns
// nil: every failure ends up in the result's Error field.
func (o *Orchestrator) PerformAnalysis(ctx context.Context, req models.AnalysisRequest, isPremium bool) (result *models.AnalysisResult) {
	outcome := OutcomeFailed

	defer func() {
		if r := recover(); r != nil {
			log.Printf("❌ Analysis panicked: %v\n%s", r, debug.Stack())
			result = models.NewFailedResult(classifyFatal(fmt.Errorf("internal error: %v", r), o.credentials()))
			outcome = OutcomeFailed
		}
		o.recorder.ObserveAnalysis(outcome)
		o.notify(ctx, StepAnalysis, outcome, len(result.AllFindings), result.ErrorMessage())
	}()

	// STEP 0: Validation
	if req.IsEmpty() {
		log.Printf("⚪ Analysis rejected: no target provided")
		outcome = OutcomeRejected
		return models.NewFailedResult(MsgNoTarget)
	}

	result, outcome, err := o.analyze(ctx, &req, isPremium)
	if err != nil {
		msg := classifyFatal(err, o.credentials())
		log.Printf("❌ Analysis aborted: %v", err)
		return models.NewFailedResult(msg)
	}
	return result
}

// analyze returns an error only for failures that invalidate the whole
// analysis (bad credentials, cancelled context)
func (o *Orchestrator) analyze(ctx context.Context, req *models.AnalysisRequest, isPremium bool) (*models.AnalysisResult, string, error) {
	b := newResultBuilder()

	// STEP 1: Category fan-out (sequential, fixed order)
	for _, step := range o.categorySteps() {
		if !req.Targets(step.category) {
			continue
		}
		if err := o.runCategory(ctx, step, req, b); err != nil {
			return nil, OutcomeFailed, err
		}
	}

	if b.attempted == 0 {
		log.Printf("⚪ Analysis rejected: targets present but none is complete")
		return models.NewFailedResult(MsgNoRunnableTarget), OutcomeRejected, nil
	}

	// STEP 2: Total failure short-circuit
	if b.allFailed() {
		log.Printf("❌ All %d analyses failed", b.failed)
		return models.NewFailedResult(PrefixAllFailed + b.errors()), OutcomeFailed, nil
	}

	vulnerable := b.vulnerable()
	log.Printf("💡 Category analyses done: %d/%d succeeded, %d findings (%d vulnerable)",
		b.attempted-b.failed, b.attempted, len(b.result.AllFindings), len(vulnerable))

	// STEP 3: Report
	if err := o.runReport(ctx, req, b, vulnerable); err != nil {
		return nil, OutcomeFailed, err
	}

	// STEP 4: Premium enrichment
	if isPremium && len(vulnerable) > 0 {
		if err := o.runAttackVectors(ctx, b, vulnerable); err != nil {
			return nil, OutcomeFailed, err
		}
		if err := o.runPlaybooks(ctx, b, vulnerable); err != nil {
			return nil, OutcomeFailed, err
		}
	}

	// STEP 5: Assemble
	return b.build(), b.outcome(), nil
}

func (o *Orchestrator) runCategory(ctx context.Context, step categoryStep, req *models.AnalysisRequest, b *resultBuilder) error {
	o.notify(ctx, string(step.category), StatusStarted, 0, "")

	start := time.Now()
	out, err := step.run(ctx, req, b.result)
	o.observe(step.flow, err, start)

	if err != nil {
		if fatal(ctx, err) {
			return err
		}
		log.Printf("⚠️ %s analysis failed: %v", step.category.Label(), err)
		b.failCategory(step.category, err)
		o.notify(ctx, string(step.category), StatusFailed, 0, err.Error())
		return nil
	}

	b.addCategory(out)
	o.notify(ctx, string(step.category), StatusCompleted, len(out.CategoryFindings()), "")
	return nil
}

func (o *Orchestrator) runReport(ctx context.Context, req *models.AnalysisRequest, b *resultBuilder, vulnerable []models.VulnerabilityFinding) error {
	o.notify(ctx, StepReport, StatusStarted, 0, "")

	start := time.Now()
	out, err := invoke(ctx, llm.FlowReport, o.invokers.Report, reportInput(req, b.result, vulnerable))
	o.observe(llm.FlowReport, err, start)

	if err != nil {
		if fatal(ctx, err) {
			return err
		}
		log.Printf("⚠️ Report generation failed: %v", err)
		text := DefaultReportText
		b.result.ReportText = &text
		b.failReport(err)
		o.notify(ctx, StepReport, StatusFailed, 0, err.Error())
		return nil
	}

	b.result.ReportText = &out.Report
	o.notify(ctx, StepReport, StatusCompleted, 0, "")
	return nil
}

func (o *Orchestrator) runAttackVectors(ctx context.Context, b *resultBuilder, vulnerable []models.VulnerabilityFinding) error {
	o.notify(ctx, StepAttackVectors, StatusStarted, 0, "")

	start := time.Now()
	out, err := invoke(ctx, llm.FlowAttack, o.invokers.Attack, &models.AttackVectorsInput{Findings: vulnerable})
	o.observe(llm.FlowAttack, err, start)

	if err != nil {
		if fatal(ctx, err) {
			return err
		}
		log.Printf("⚠️ Attack vector generation failed: %v", err)
		b.failMinor(LabelAttack, err.Error())
		o.notify(ctx, StepAttackVectors, StatusFailed, 0, err.Error())
		return nil
	}

	b.result.AttackVectors = out.AttackVectors
	if b.result.AttackVectors == nil {
		b.result.AttackVectors = []models.AttackVector{}
	}
	o.notify(ctx, StepAttackVectors, StatusCompleted, len(out.AttackVectors), "")
	return nil
}

// runPlaybooks requests one playbook per vulnerable finding. Each call is
// isolated; failures are collected and recorded as a single message.
func (o *Orchestrator) runPlaybooks(ctx context.Context, b *resultBuilder, vulnerable []models.VulnerabilityFinding) error {
	o.notify(ctx, StepPlaybooks, StatusStarted, 0, "")

	var (
		playbooks []models.RemediationPlaybook
		failures  []string
	)
	for _, finding := range vulnerable {
		start := time.Now()
		pb, err := invoke(ctx, llm.FlowPlaybook, o.invokers.Playbook, &models.RemediationPlaybookInput{VulnerabilityFinding: finding})
		o.observe(llm.FlowPlaybook, err, start)

		if err != nil {
			if fatal(ctx, err) {
				return err
			}
			log.Printf("⚠️ Playbook for %q failed: %v", finding.Vulnerability, err)
			failures = append(failures, fmt.Sprintf("%s: %v", finding.Vulnerability, err))
			continue
		}
		playbooks = append(playbooks, *pb)
	}

	if len(playbooks) > 0 {
		b.result.RemediationPlaybooks = playbooks
	}

	if len(failures) > 0 {
		msg := fmt.Sprintf("%d of %d failed (%s)", len(failures), len(vulnerable), strings.Join(failures, "; "))
		b.failMinor(LabelPlaybooks, msg)
		o.notify(ctx, StepPlaybooks, StatusFailed, len(playbooks), msg)
		return nil
	}

	o.notify(ctx, StepPlaybooks, StatusCompleted, len(playbooks), "")
	return nil
}

// fatal errors abort the analysis instead of being recorded per step
func fatal(ctx context.Context, err error) bool {
	return ctx.Err() != nil || llm.KindOf(err) == llm.KindCredential
}

func (o *Orchestrator) observe(flow string, err error, start time.Time) {
	outcome := "success"
	if err != nil {
		outcome = string(llm.KindOf(err))
	}
	o.recorder.ObserveFlow(flow, outcome, time.Since(start))
}

func (o *Orchestrator) notify(ctx context.Context, step, status string, findings int, errMsg string) {
	o.notifier.NotifyStep(StepEvent{
		AnalysisID: AnalysisIDFrom(ctx),
		Channel:    ProgressChannelFrom(ctx),
		Step:       step,
		Status:     status,
		Findings:   findings,
		Error:      errMsg,
		Timestamp:  time.Now(),
	})
}
