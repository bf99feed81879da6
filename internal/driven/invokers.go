package driven

import (
	"context"
	"fmt"

	"github.com/BetterCallFirewall/SecurityCenter/internal/llm"
	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
)

// Invoker is one flow call
type Invoker[In, Out any] func(context.Context, *In) (*Out, error)

// Invokers are the flow calls the orchestrator depends on.
// In production they are genkit flows, in tests plain functions.
type Invokers struct {
	URL        Invoker[models.URLAnalysisInput, models.URLAnalysisOutput]
	Server     Invoker[models.ServerConfigInput, models.ServerSecurityAnalysisOutput]
	Database   Invoker[models.DatabaseConfigInput, models.DatabaseSecurityAnalysisOutput]
	SAST       Invoker[models.SASTAnalysisInput, models.SASTAnalysisOutput]
	DAST       Invoker[models.DASTAnalysisInput, models.DASTAnalysisOutput]
	Cloud      Invoker[models.CloudConfigInput, models.CloudConfigAnalysisOutput]
	Container  Invoker[models.ContainerAnalysisInput, models.ContainerAnalysisOutput]
	Dependency Invoker[models.DependencyAnalysisInput, models.DependencyAnalysisOutput]
	Network    Invoker[models.NetworkSecurityAnalysisInput, models.NetworkSecurityAnalysisOutput]

	Report   Invoker[models.SecurityReportInput, models.SecurityReportOutput]
	Attack   Invoker[models.AttackVectorsInput, models.AttackVectorsOutput]
	Playbook Invoker[models.RemediationPlaybookInput, models.RemediationPlaybook]
	Query    Invoker[models.GeneralQueryInput, models.GeneralQueryOutput]
}

// NewInvokers binds registered genkit flows
func NewInvokers(f *llm.Flows) Invokers {
	return Invokers{
		URL:        f.URL.Run,
		Server:     f.Server.Run,
		Database:   f.Database.Run,
		SAST:       f.SAST.Run,
		DAST:       f.DAST.Run,
		Cloud:      f.Cloud.Run,
		Container:  f.Container.Run,
		Dependency: f.Dependency.Run,
		Network:    f.Network.Run,
		Report:     f.Report.Run,
		Attack:     f.Attack.Run,
		Playbook:   f.Playbook.Run,
		Query:      f.Query.Run,
	}
}

// invoke calls fn; a nil output without an error counts as malformed.
// A missing invoker means the AI backend could not be initialised
// (no credential), which aborts the analysis like a rejected key.
func invoke[In, Out any](ctx context.Context, flow string, fn Invoker[In, Out], in *In) (*Out, error) {
	if fn == nil {
		return nil, &llm.FlowError{Flow: flow, Kind: llm.KindCredential, Err: fmt.Errorf("flow %s is not configured", flow)}
	}
	out, err := fn(ctx, in)
	if err != nil {
		return nil, err
	}
	if out == nil {
		return nil, &llm.FlowError{Flow: flow, Kind: llm.KindMalformedOutput, Err: fmt.Errorf("%w: %s returned no output", llm.ErrMalformedOutput, flow)}
	}
	return out, nil
}
