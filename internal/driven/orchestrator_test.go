package driven

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/BetterCallFirewall/SecurityCenter/internal/config"
	"github.com/BetterCallFirewall/SecurityCenter/internal/llm"
	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeFlows is a deterministic stand-in for the genkit flows
type fakeFlows struct {
	mu    sync.Mutex
	calls map[string]int
	// errs makes a flow fail with the given error
	errs map[string]error
	// playbookErr fails single playbook calls
	playbookErr func(models.VulnerabilityFinding) error
	// vulnerable lists categories whose finding is vulnerable
	vulnerable map[models.Category]bool
	// panicOn makes a flow panic
	panicOn string
}

func newFakeFlows() *fakeFlows {
	return &fakeFlows{
		calls:      map[string]int{},
		errs:       map[string]error{},
		vulnerable: map[models.Category]bool{},
	}
}

func (f *fakeFlows) count(flow string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[flow]
}

func (f *fakeFlows) totalCalls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	total := 0
	for _, n := range f.calls {
		total += n
	}
	return total
}

func (f *fakeFlows) enter(flow string) error {
	f.mu.Lock()
	f.calls[flow]++
	f.mu.Unlock()

	if f.panicOn == flow {
		panic("boom in " + flow)
	}
	return f.errs[flow]
}

func (f *fakeFlows) finding(c models.Category) []models.VulnerabilityFinding {
	return []models.VulnerabilityFinding{{
		Source:        c,
		IsVulnerable:  f.vulnerable[c],
		Vulnerability: c.Label() + " issue",
		Severity:      models.SeverityHigh,
	}}
}

func categoryFake[In, Out any](f *fakeFlows, flow string, c models.Category, build func([]models.VulnerabilityFinding) *Out) Invoker[In, Out] {
	return func(ctx context.Context, _ *In) (*Out, error) {
		if err := f.enter(flow); err != nil {
			return nil, err
		}
		return build(f.finding(c)), nil
	}
}

func (f *fakeFlows) invokers() Invokers {
	return Invokers{
		URL: categoryFake[models.URLAnalysisInput](f, llm.FlowURL, models.CategoryURL,
			func(v []models.VulnerabilityFinding) *models.URLAnalysisOutput {
				return &models.URLAnalysisOutput{Findings: v}
			}),
		Server: categoryFake[models.ServerConfigInput](f, llm.FlowServer, models.CategoryServer,
			func(v []models.VulnerabilityFinding) *models.ServerSecurityAnalysisOutput {
				return &models.ServerSecurityAnalysisOutput{Findings: v}
			}),
		Database: categoryFake[models.DatabaseConfigInput](f, llm.FlowDatabase, models.CategoryDatabase,
			func(v []models.VulnerabilityFinding) *models.DatabaseSecurityAnalysisOutput {
				return &models.DatabaseSecurityAnalysisOutput{Findings: v}
			}),
		SAST: categoryFake[models.SASTAnalysisInput](f, llm.FlowSAST, models.CategorySAST,
			func(v []models.VulnerabilityFinding) *models.SASTAnalysisOutput {
				return &models.SASTAnalysisOutput{Findings: v}
			}),
		DAST: categoryFake[models.DASTAnalysisInput](f, llm.FlowDAST, models.CategoryDAST,
			func(v []models.VulnerabilityFinding) *models.DASTAnalysisOutput {
				return &models.DASTAnalysisOutput{Findings: v}
			}),
		Cloud: categoryFake[models.CloudConfigInput](f, llm.FlowCloud, models.CategoryCloud,
			func(v []models.VulnerabilityFinding) *models.CloudConfigAnalysisOutput {
				return &models.CloudConfigAnalysisOutput{Findings: v}
			}),
		Container: categoryFake[models.ContainerAnalysisInput](f, llm.FlowContainer, models.CategoryContainer,
			func(v []models.VulnerabilityFinding) *models.ContainerAnalysisOutput {
				return &models.ContainerAnalysisOutput{Findings: v}
			}),
		Dependency: categoryFake[models.DependencyAnalysisInput](f, llm.FlowDependency, models.CategoryDependency,
			func(v []models.VulnerabilityFinding) *models.DependencyAnalysisOutput {
				return &models.DependencyAnalysisOutput{Findings: v}
			}),
		Network: categoryFake[models.NetworkSecurityAnalysisInput](f, llm.FlowNetwork, models.CategoryNetwork,
			func(v []models.VulnerabilityFinding) *models.NetworkSecurityAnalysisOutput {
				return &models.NetworkSecurityAnalysisOutput{Findings: v}
			}),

		Report: func(ctx context.Context, in *models.SecurityReportInput) (*models.SecurityReportOutput, error) {
			if err := f.enter(llm.FlowReport); err != nil {
				return nil, err
			}
			return &models.SecurityReportOutput{Report: "# Report\n" + in.AnalyzedTargetDescription}, nil
		},
		Attack: func(ctx context.Context, in *models.AttackVectorsInput) (*models.AttackVectorsOutput, error) {
			if err := f.enter(llm.FlowAttack); err != nil {
				return nil, err
			}
			out := &models.AttackVectorsOutput{}
			for _, finding := range in.Findings {
				out.AttackVectors = append(out.AttackVectors, models.AttackVector{VulnerabilityName: finding.Vulnerability})
			}
			return out, nil
		},
		Playbook: func(ctx context.Context, in *models.RemediationPlaybookInput) (*models.RemediationPlaybook, error) {
			if err := f.enter(llm.FlowPlaybook); err != nil {
				return nil, err
			}
			if f.playbookErr != nil {
				if err := f.playbookErr(in.VulnerabilityFinding); err != nil {
					return nil, err
				}
			}
			return &models.RemediationPlaybook{
				PlaybookTitle:     "Fix " + in.VulnerabilityFinding.Vulnerability,
				VulnerabilityName: in.VulnerabilityFinding.Vulnerability,
			}, nil
		},
		Query: func(ctx context.Context, in *models.GeneralQueryInput) (*models.GeneralQueryOutput, error) {
			if err := f.enter(llm.FlowGeneralChat); err != nil {
				return nil, err
			}
			return &models.GeneralQueryOutput{AIResponse: "answer to " + in.UserQuery}, nil
		},
	}
}

func configured() config.CredentialStatus {
	return config.CredentialStatus{Name: config.GeminiAPIKeyEnv, Configured: true}
}

func newTestOrchestrator(f *fakeFlows, opts ...Option) *Orchestrator {
	return NewOrchestrator(f.invokers(), append([]Option{WithCredentials(configured)}, opts...)...)
}

func fullRequest() models.AnalysisRequest {
	return models.AnalysisRequest{
		URL:                    "https://shop.example.com/?q=1",
		ServerDescription:      "Ubuntu 18.04, OpenSSH 7.6, Apache 2.4.29",
		DatabaseDescription:    "MySQL 5.7 listening on 0.0.0.0",
		CodeSnippet:            "eval(req.query.x)",
		SASTLanguage:           "javascript",
		DASTTargetURL:          "https://app.example.com",
		CloudProvider:          "AWS",
		CloudConfigDescription: "S3 bucket with public-read ACL",
		CloudRegion:            "us-east-1",
		ContainerImageName:     "nginx:latest",
		DependencyFileContent:  `{"dependencies":{"lodash":"4.17.4"}}`,
		DependencyFileType:     "npm",
		NetworkFirewallRules:   "allow any any",
	}
}

func assertAllSlotsNil(t *testing.T, res *models.AnalysisResult) {
	t.Helper()
	for _, c := range models.Categories {
		assert.Nil(t, res.CategoryOutput(c), "slot %s must be nil", c)
	}
	assert.Nil(t, res.ReportText)
	assert.Nil(t, res.AttackVectors)
	assert.Nil(t, res.RemediationPlaybooks)
	assert.NotNil(t, res.AllFindings)
	assert.Empty(t, res.AllFindings)
}

func TestPerformAnalysis_EmptyRequest(t *testing.T) {
	f := newFakeFlows()
	o := newTestOrchestrator(f)

	tests := []struct {
		name string
		req  models.AnalysisRequest
	}{
		{"zero value", models.AnalysisRequest{}},
		{"whitespace only", models.AnalysisRequest{URL: "  ", ServerDescription: "\n"}},
		{"secondary fields only", models.AnalysisRequest{SASTLanguage: "go", CloudRegion: "eu-west-1", ContainerAdditionalContext: "prod", DependencyFileType: "npm"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := o.PerformAnalysis(context.Background(), tt.req, true)

			assertAllSlotsNil(t, res)
			assert.Equal(t, MsgNoTarget, res.ErrorMessage())
		})
	}
	assert.Zero(t, f.totalCalls(), "no flow may be invoked")
}

func TestPerformAnalysis_IncompleteTargets(t *testing.T) {
	f := newFakeFlows()
	o := newTestOrchestrator(f)

	// Description without provider, content without type
	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{
		CloudConfigDescription: "public bucket",
		DependencyFileContent:  "lodash==1",
	}, false)

	assertAllSlotsNil(t, res)
	assert.Equal(t, MsgNoRunnableTarget, res.ErrorMessage())
	assert.Zero(t, f.totalCalls())
}

func TestPerformAnalysis_SingleCategory(t *testing.T) {
	f := newFakeFlows()
	o := newTestOrchestrator(f)

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{ServerDescription: "nginx 1.14"}, false)

	require.NotNil(t, res.ServerAnalysis)
	assert.Equal(t, res.ServerAnalysis.Findings, res.AllFindings)
	assert.Nil(t, res.Error)
	assert.Equal(t, 1, f.count(llm.FlowServer))
	assert.Equal(t, 1, f.count(llm.FlowReport))
	require.NotNil(t, res.ReportText)
	assert.Equal(t, "# Report\nAnalysis for General Server", *res.ReportText)

	for _, c := range models.Categories {
		if c != models.CategoryServer {
			assert.Nil(t, res.CategoryOutput(c))
		}
	}
}

func TestPerformAnalysis_FixedOrder(t *testing.T) {
	f := newFakeFlows()
	o := newTestOrchestrator(f)

	res := o.PerformAnalysis(context.Background(), fullRequest(), false)
	require.Nil(t, res.Error)

	var sources []models.Category
	for _, finding := range res.AllFindings {
		sources = append(sources, finding.Source)
	}
	assert.Equal(t, models.Categories, sources)

	var stepOrder []models.Category
	for _, s := range o.categorySteps() {
		stepOrder = append(stepOrder, s.category)
	}
	assert.Equal(t, models.Categories, stepOrder)
}

func TestPerformAnalysis_TotalFailure(t *testing.T) {
	f := newFakeFlows()
	f.errs[llm.FlowURL] = errors.New("url flow exploded")
	f.errs[llm.FlowServer] = errors.New("server flow exploded.")
	o := newTestOrchestrator(f)

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{
		URL:               "https://a.example",
		ServerDescription: "x",
	}, true)

	assertAllSlotsNil(t, res)
	assert.Equal(t,
		PrefixAllFailed+"URL: url flow exploded. Server: server flow exploded. ",
		res.ErrorMessage())
	assert.Zero(t, f.count(llm.FlowReport), "report must not run after total failure")
}

func TestPerformAnalysis_PartialFailure(t *testing.T) {
	f := newFakeFlows()
	f.errs[llm.FlowDatabase] = errors.New("db flow down")
	o := newTestOrchestrator(f)

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{
		ServerDescription:   "x",
		DatabaseDescription: "y",
	}, false)

	assert.NotNil(t, res.ServerAnalysis)
	assert.Nil(t, res.DatabaseAnalysis)
	assert.Len(t, res.AllFindings, 1)
	assert.Equal(t, PrefixPartial+"Database: db flow down. ", res.ErrorMessage())
	assert.Equal(t, 1, f.count(llm.FlowReport))
}

func TestPerformAnalysis_ReportFailure(t *testing.T) {
	f := newFakeFlows()
	f.errs[llm.FlowReport] = errors.New("report model overloaded")
	o := newTestOrchestrator(f)

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{ServerDescription: "x"}, false)

	require.NotNil(t, res.ServerAnalysis)
	require.NotNil(t, res.ReportText)
	assert.Equal(t, DefaultReportText, *res.ReportText)
	assert.Equal(t, PrefixPartial+"Report: report model overloaded. ", res.ErrorMessage())
}

func TestPerformAnalysis_Idempotent(t *testing.T) {
	f := newFakeFlows()
	f.vulnerable[models.CategorySAST] = true
	f.errs[llm.FlowNetwork] = errors.New("network flow failed")
	o := newTestOrchestrator(f)

	first := o.PerformAnalysis(context.Background(), fullRequest(), true)
	second := o.PerformAnalysis(context.Background(), fullRequest(), true)

	assert.Equal(t, first, second)
}

func TestPerformAnalysis_PremiumGating(t *testing.T) {
	req := models.AnalysisRequest{CodeSnippet: "eval(x)"}

	t.Run("free", func(t *testing.T) {
		f := newFakeFlows()
		f.vulnerable[models.CategorySAST] = true

		res := newTestOrchestrator(f).PerformAnalysis(context.Background(), req, false)

		assert.Nil(t, res.AttackVectors)
		assert.Nil(t, res.RemediationPlaybooks)
		assert.Zero(t, f.count(llm.FlowAttack))
		assert.Zero(t, f.count(llm.FlowPlaybook))
	})

	t.Run("premium", func(t *testing.T) {
		f := newFakeFlows()
		f.vulnerable[models.CategorySAST] = true

		res := newTestOrchestrator(f).PerformAnalysis(context.Background(), req, true)

		require.Len(t, res.AttackVectors, 1)
		require.Len(t, res.RemediationPlaybooks, 1)
		assert.Equal(t, "SAST issue", res.RemediationPlaybooks[0].VulnerabilityName)
		assert.Nil(t, res.Error)
	})

	t.Run("premium without vulnerable findings", func(t *testing.T) {
		f := newFakeFlows()

		res := newTestOrchestrator(f).PerformAnalysis(context.Background(), req, true)

		assert.Nil(t, res.AttackVectors)
		assert.Nil(t, res.RemediationPlaybooks)
		assert.Zero(t, f.count(llm.FlowAttack))
	})
}

func TestPerformAnalysis_OnePlaybookPerVulnerableFinding(t *testing.T) {
	f := newFakeFlows()
	f.vulnerable[models.CategoryServer] = true
	f.vulnerable[models.CategoryDatabase] = true
	f.vulnerable[models.CategoryNetwork] = true

	res := newTestOrchestrator(f).PerformAnalysis(context.Background(), fullRequest(), true)

	require.Len(t, res.RemediationPlaybooks, 3)
	assert.Equal(t, 3, f.count(llm.FlowPlaybook))
	assert.Equal(t, "Server issue", res.RemediationPlaybooks[0].VulnerabilityName)
	assert.Equal(t, "Database issue", res.RemediationPlaybooks[1].VulnerabilityName)
	assert.Equal(t, "Network issue", res.RemediationPlaybooks[2].VulnerabilityName)
}

func TestPerformAnalysis_PlaybookFailureIsolated(t *testing.T) {
	f := newFakeFlows()
	f.vulnerable[models.CategoryServer] = true
	f.vulnerable[models.CategoryDatabase] = true
	f.vulnerable[models.CategoryNetwork] = true
	f.playbookErr = func(finding models.VulnerabilityFinding) error {
		if finding.Source == models.CategoryDatabase {
			return errors.New("model refused")
		}
		return nil
	}

	res := newTestOrchestrator(f).PerformAnalysis(context.Background(), fullRequest(), true)

	assert.Equal(t, 3, f.count(llm.FlowPlaybook), "later findings still get playbooks")
	require.Len(t, res.RemediationPlaybooks, 2)
	assert.Equal(t, "Server issue", res.RemediationPlaybooks[0].VulnerabilityName)
	assert.Equal(t, "Network issue", res.RemediationPlaybooks[1].VulnerabilityName)

	msg := res.ErrorMessage()
	assert.Equal(t, PrefixMinor+"Remediation playbooks: 1 of 3 failed (Database issue: model refused). ", msg)
	assert.Equal(t, 1, strings.Count(msg, LabelPlaybooks), "recorded once")
}

func TestPerformAnalysis_AttackVectorFailureIsMinor(t *testing.T) {
	f := newFakeFlows()
	f.vulnerable[models.CategoryServer] = true
	f.errs[llm.FlowAttack] = errors.New("quota exceeded")

	res := newTestOrchestrator(f).PerformAnalysis(context.Background(), models.AnalysisRequest{ServerDescription: "x"}, true)

	assert.Nil(t, res.AttackVectors)
	assert.Len(t, res.RemediationPlaybooks, 1, "playbooks still generated")
	assert.Equal(t, PrefixMinor+"Attack vectors: quota exceeded. ", res.ErrorMessage())
}

func TestPerformAnalysis_ContainerSkipped(t *testing.T) {
	f := newFakeFlows()
	o := newTestOrchestrator(f)

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{
		ServerDescription:          "x",
		ContainerAdditionalContext: "runs in prod",
		DockerfileContent:          "   ",
	}, false)

	assert.Zero(t, f.count(llm.FlowContainer))
	assert.Nil(t, res.ContainerAnalysis)
	assert.Nil(t, res.Error)
}

func TestPerformAnalysis_PermissionDeniedIsNotFatal(t *testing.T) {
	f := newFakeFlows()
	f.errs[llm.FlowDatabase] = errors.New("Error 403, Message: The caller does not have permission, Status: PERMISSION_DENIED")
	o := newTestOrchestrator(f)

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{
		ServerDescription:   "x",
		DatabaseDescription: "y",
		NetworkDescription:  "flat /16",
	}, false)

	assert.NotNil(t, res.ServerAnalysis)
	assert.NotNil(t, res.NetworkAnalysis)
	assert.Equal(t, 1, f.count(llm.FlowNetwork), "later categories still run")
	assert.True(t, strings.HasPrefix(res.ErrorMessage(), PrefixPartial+"Database: Error 403"), res.ErrorMessage())
	assert.NotContains(t, res.ErrorMessage(), "API key")
}

func TestPerformAnalysis_InvalidCredential(t *testing.T) {
	f := newFakeFlows()
	f.errs[llm.FlowServer] = errors.New("Error 400, Message: API key not valid. Status: INVALID_ARGUMENT, reason: API_KEY_INVALID")
	o := newTestOrchestrator(f)

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{
		URL:                "https://a.example",
		ServerDescription:  "x",
		NetworkDescription: "flat /16",
	}, true)

	assertAllSlotsNil(t, res)
	assert.Equal(t, msgInvalidCredential(config.GeminiAPIKeyEnv), res.ErrorMessage())
	assert.Contains(t, res.ErrorMessage(), config.GeminiAPIKeyEnv)
	assert.Zero(t, f.count(llm.FlowNetwork), "credential errors abort the analysis")
}

func TestPerformAnalysis_MissingCredential(t *testing.T) {
	f := newFakeFlows()
	f.errs[llm.FlowURL] = &llm.FlowError{Flow: llm.FlowURL, Kind: llm.KindCredential, Err: errors.New("permission denied")}
	o := NewOrchestrator(f.invokers(), WithCredentials(func() config.CredentialStatus {
		return config.CredentialStatus{Name: config.GoogleAPIKeyEnv, Configured: false}
	}))

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{URL: "https://a.example"}, false)

	assert.Equal(t, msgMissingCredential(config.GoogleAPIKeyEnv), res.ErrorMessage())
}

func TestPerformAnalysis_Cancelled(t *testing.T) {
	f := newFakeFlows()
	f.errs[llm.FlowServer] = context.Canceled
	o := newTestOrchestrator(f)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := o.PerformAnalysis(ctx, models.AnalysisRequest{ServerDescription: "x", DatabaseDescription: "y"}, false)

	assertAllSlotsNil(t, res)
	assert.Equal(t, MsgCancelled, res.ErrorMessage())
	assert.Zero(t, f.count(llm.FlowDatabase))
}

func TestPerformAnalysis_RecoversPanic(t *testing.T) {
	f := newFakeFlows()
	f.panicOn = llm.FlowServer
	o := newTestOrchestrator(f)

	var res *models.AnalysisResult
	require.NotPanics(t, func() {
		res = o.PerformAnalysis(context.Background(), models.AnalysisRequest{ServerDescription: "x"}, false)
	})

	assertAllSlotsNil(t, res)
	assert.True(t, strings.HasPrefix(res.ErrorMessage(), "Analysis failed catastrophically: internal error: boom in"))
}

func TestPerformAnalysis_NilOutputIsMalformed(t *testing.T) {
	f := newFakeFlows()
	inv := f.invokers()
	inv.Database = func(context.Context, *models.DatabaseConfigInput) (*models.DatabaseSecurityAnalysisOutput, error) {
		return nil, nil
	}
	o := NewOrchestrator(inv, WithCredentials(configured))

	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{ServerDescription: "x", DatabaseDescription: "y"}, false)

	assert.Nil(t, res.DatabaseAnalysis)
	assert.NotNil(t, res.ServerAnalysis)
	assert.True(t, strings.HasPrefix(res.ErrorMessage(), PrefixPartial+"Database: model returned malformed output"))
}

func TestPerformAnalysis_UsesPrefetcher(t *testing.T) {
	var gotContext string
	f := newFakeFlows()
	inv := f.invokers()
	inv.URL = func(_ context.Context, in *models.URLAnalysisInput) (*models.URLAnalysisOutput, error) {
		gotContext = in.PageContext
		return &models.URLAnalysisOutput{Findings: []models.VulnerabilityFinding{}}, nil
	}

	o := NewOrchestrator(inv, WithCredentials(configured), WithPrefetcher(stubPrefetcher{ctx: "[STATUS] 200"}))
	o.PerformAnalysis(context.Background(), models.AnalysisRequest{URL: "https://a.example"}, false)
	assert.Equal(t, "[STATUS] 200", gotContext)

	o = NewOrchestrator(inv, WithCredentials(configured), WithPrefetcher(stubPrefetcher{err: errors.New("dns")}))
	res := o.PerformAnalysis(context.Background(), models.AnalysisRequest{URL: "https://a.example"}, false)
	assert.Empty(t, gotContext)
	assert.Nil(t, res.Error, "prefetch failure is not an analysis error")
}

type stubPrefetcher struct {
	ctx string
	err error
}

func (s stubPrefetcher) PageContext(context.Context, string) (string, error) {
	return s.ctx, s.err
}

type recordingNotifier struct {
	events []StepEvent
}

func (r *recordingNotifier) NotifyStep(e StepEvent) {
	r.events = append(r.events, e)
}

type recordingRecorder struct {
	flows    map[string][]string
	analyses []string
}

func (r *recordingRecorder) ObserveFlow(flow, outcome string, _ time.Duration) {
	r.flows[flow] = append(r.flows[flow], outcome)
}

func (r *recordingRecorder) ObserveAnalysis(outcome string) {
	r.analyses = append(r.analyses, outcome)
}

func TestPerformAnalysis_NotifiesAndRecords(t *testing.T) {
	f := newFakeFlows()
	f.errs[llm.FlowDatabase] = errors.New("quota exceeded")
	n := &recordingNotifier{}
	r := &recordingRecorder{flows: map[string][]string{}}
	o := newTestOrchestrator(f, WithNotifier(n), WithRecorder(r))

	ctx := WithAnalysisID(context.Background(), "a-1")
	ctx = WithProgressChannel(ctx, "tab-7")
	o.PerformAnalysis(ctx, models.AnalysisRequest{ServerDescription: "x", DatabaseDescription: "y"}, false)

	var trail []string
	for _, e := range n.events {
		assert.Equal(t, "a-1", e.AnalysisID)
		assert.Equal(t, "tab-7", e.Channel)
		trail = append(trail, fmt.Sprintf("%s:%s", e.Step, e.Status))
	}
	assert.Equal(t, []string{
		"server:started", "server:completed",
		"database:started", "database:failed",
		"report:started", "report:completed",
		"analysis:partial",
	}, trail)

	assert.Equal(t, []string{"success"}, r.flows[llm.FlowServer])
	assert.Equal(t, []string{string(llm.KindQuota)}, r.flows[llm.FlowDatabase])
	assert.Equal(t, []string{OutcomePartial}, r.analyses)
}

func TestTargetDescription(t *testing.T) {
	assert.Equal(t,
		"Analysis for URL (https://shop.example.com/?q=1), General Server, Database, Code Snippet (SAST), "+
			"DAST Application URL (https://app.example.com), Cloud Configuration (AWS/us-east-1), Container/K8s, "+
			"Software Dependencies (npm), Network Configuration",
		targetDescription(&models.AnalysisRequest{
			URL:                       "https://shop.example.com/?q=1",
			ServerDescription:         "x",
			DatabaseDescription:       "x",
			CodeSnippet:               "x",
			DASTTargetURL:             "https://app.example.com",
			CloudProvider:             "AWS",
			CloudConfigDescription:    "x",
			CloudRegion:               "us-east-1",
			KubernetesManifestContent: "kind: Pod",
			DependencyFileContent:     "x",
			DependencyFileType:        "npm",
			NetworkScanResults:        "x",
		}))

	assert.Equal(t, "Analysis for Cloud Configuration (GCP)", targetDescription(&models.AnalysisRequest{
		CloudProvider:          "GCP",
		CloudConfigDescription: "x",
	}))
}

func TestClassifyFatal(t *testing.T) {
	ok := configured()

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"network", errors.New("dial tcp: connection refused"), MsgNetwork},
		{"quota", errors.New("429: quota exceeded"), MsgQuota},
		{"malformed", errors.New("Unexpected token < in JSON"), msgMalformed("Unexpected token < in JSON")},
		{"timeout", fmt.Errorf("flow: %w", context.DeadlineExceeded), MsgTimeout},
		{"other", errors.New("weird"), msgCatastrophic("weird")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, classifyFatal(tt.err, ok))
		})
	}
}
