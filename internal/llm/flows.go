package llm

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	"github.com/firebase/genkit/go/ai"
	genkitcore "github.com/firebase/genkit/go/core"
	"github.com/firebase/genkit/go/genkit"
)

// Flow names as registered in genkit (visible in DevUI traces)
const (
	FlowURL         = "analyzeUrlVulnerabilitiesFlow"
	FlowServer      = "analyzeServerSecurityFlow"
	FlowDatabase    = "analyzeDatabaseSecurityFlow"
	FlowSAST        = "analyzeSastSecurityFlow"
	FlowDAST        = "analyzeDastSecurityFlow"
	FlowCloud       = "analyzeCloudConfigFlow"
	FlowContainer   = "analyzeContainerSecurityFlow"
	FlowDependency  = "analyzeDependenciesFlow"
	FlowNetwork     = "analyzeNetworkSecurityFlow"
	FlowReport      = "generateSecurityReportFlow"
	FlowAttack      = "generateAttackVectorsFlow"
	FlowPlaybook    = "generateRemediationPlaybookFlow"
	FlowGeneralChat = "generalQueryAssistantFlow"
)

// Flow is a genkit flow without streaming
type Flow[In, Out any] = genkitcore.Flow[*In, *Out, struct{}]

// Flows holds every flow invoker registered in one genkit app
type Flows struct {
	URL        *Flow[models.URLAnalysisInput, models.URLAnalysisOutput]
	Server     *Flow[models.ServerConfigInput, models.ServerSecurityAnalysisOutput]
	Database   *Flow[models.DatabaseConfigInput, models.DatabaseSecurityAnalysisOutput]
	SAST       *Flow[models.SASTAnalysisInput, models.SASTAnalysisOutput]
	DAST       *Flow[models.DASTAnalysisInput, models.DASTAnalysisOutput]
	Cloud      *Flow[models.CloudConfigInput, models.CloudConfigAnalysisOutput]
	Container  *Flow[models.ContainerAnalysisInput, models.ContainerAnalysisOutput]
	Dependency *Flow[models.DependencyAnalysisInput, models.DependencyAnalysisOutput]
	Network    *Flow[models.NetworkSecurityAnalysisInput, models.NetworkSecurityAnalysisOutput]

	Report   *Flow[models.SecurityReportInput, models.SecurityReportOutput]
	Attack   *Flow[models.AttackVectorsInput, models.AttackVectorsOutput]
	Playbook *Flow[models.RemediationPlaybookInput, models.RemediationPlaybook]
	Query    *Flow[models.GeneralQueryInput, models.GeneralQueryOutput]
}

// DefineFlows registers all flows on g using modelName ("provider/model")
func DefineFlows(g *genkit.Genkit, modelName string) *Flows {
	return &Flows{
		URL: defineCategoryFlow(g, modelName, FlowURL, models.CategoryURL,
			BuildURLAnalysisPrompt,
			func(_ *models.URLAnalysisInput, out *models.URLAnalysisOutput) {
				nonNil(&out.Findings)
			},
		),
		Server: defineCategoryFlow(g, modelName, FlowServer, models.CategoryServer,
			BuildServerSecurityPrompt,
			func(_ *models.ServerConfigInput, out *models.ServerSecurityAnalysisOutput) {
				nonNil(&out.Findings)
			},
		),
		Database: defineCategoryFlow(g, modelName, FlowDatabase, models.CategoryDatabase,
			BuildDatabaseSecurityPrompt,
			func(_ *models.DatabaseConfigInput, out *models.DatabaseSecurityAnalysisOutput) {
				nonNil(&out.Findings)
			},
		),
		SAST: defineCategoryFlow(g, modelName, FlowSAST, models.CategorySAST,
			BuildSASTPrompt,
			func(in *models.SASTAnalysisInput, out *models.SASTAnalysisOutput) {
				nonNil(&out.Findings)
				if out.AnalyzedLanguage == "" {
					out.AnalyzedLanguage = in.Language
				}
			},
		),
		DAST: defineCategoryFlow(g, modelName, FlowDAST, models.CategoryDAST,
			BuildDASTPrompt,
			func(in *models.DASTAnalysisInput, out *models.DASTAnalysisOutput) {
				nonNil(&out.Findings)
				out.ScanProfile = in.ScanProfile
			},
		),
		Cloud: defineCategoryFlow(g, modelName, FlowCloud, models.CategoryCloud,
			BuildCloudConfigPrompt,
			func(in *models.CloudConfigInput, out *models.CloudConfigAnalysisOutput) {
				nonNil(&out.Findings)
				out.Provider = in.Provider
			},
		),
		Container: defineCategoryFlow(g, modelName, FlowContainer, models.CategoryContainer,
			BuildContainerPrompt,
			func(_ *models.ContainerAnalysisInput, out *models.ContainerAnalysisOutput) {
				nonNil(&out.Findings)
			},
		),
		Dependency: defineCategoryFlow(g, modelName, FlowDependency, models.CategoryDependency,
			BuildDependencyPrompt,
			func(in *models.DependencyAnalysisInput, out *models.DependencyAnalysisOutput) {
				nonNil(&out.Findings)
				out.FileType = in.FileType
			},
		),
		Network: defineCategoryFlow(g, modelName, FlowNetwork, models.CategoryNetwork,
			BuildNetworkSecurityPrompt,
			func(_ *models.NetworkSecurityAnalysisInput, out *models.NetworkSecurityAnalysisOutput) {
				nonNil(&out.Findings)
			},
		),

		Report:   defineReportFlow(g, modelName),
		Attack:   defineAttackVectorsFlow(g, modelName),
		Playbook: definePlaybookFlow(g, modelName),
		Query:    defineGeneralQueryFlow(g, modelName),
	}
}

// defineCategoryFlow registers one analysis flow. Findings are stamped with
// their category so the merged list keeps provenance.
func defineCategoryFlow[In, Out any, PO interface {
	*Out
	models.CategoryOutput
}](
	g *genkit.Genkit,
	modelName string,
	name string,
	category models.Category,
	buildPrompt func(*In) string,
	finalize func(*In, *Out),
) *Flow[In, Out] {
	return genkit.DefineFlow(
		g,
		name,
		func(ctx context.Context, in *In) (*Out, error) {
			if err := ctx.Err(); err != nil {
				return nil, wrapFlowError(name, fmt.Errorf("context cancelled before %s: %w", category, err))
			}
			if in == nil {
				return nil, wrapFlowError(name, fmt.Errorf("nil input"))
			}

			log.Printf("🔍 %s analysis started", category.Label())

			out, err := generate[Out](ctx, g, modelName, buildPrompt(in))
			if err != nil {
				log.Printf("❌ %s analysis failed: %v", category.Label(), err)
				return nil, wrapFlowError(name, fmt.Errorf("%s analysis failed: %w", category, err))
			}

			finalize(in, out)
			findings := PO(out).CategoryFindings()
			for i := range findings {
				findings[i].Source = category
			}

			log.Printf("✅ %s analysis complete: %d findings (%d vulnerable)",
				category.Label(), len(findings), len(models.VulnerableFindings(findings)))
			return out, nil
		},
	)
}

func defineReportFlow(g *genkit.Genkit, modelName string) *Flow[models.SecurityReportInput, models.SecurityReportOutput] {
	return genkit.DefineFlow(
		g,
		FlowReport,
		func(ctx context.Context, in *models.SecurityReportInput) (*models.SecurityReportOutput, error) {
			log.Printf("📝 Generating report: %s", in.AnalyzedTargetDescription)

			out, err := generate[models.SecurityReportOutput](ctx, g, modelName, BuildSecurityReportPrompt(in))
			if err != nil {
				return nil, wrapFlowError(FlowReport, fmt.Errorf("report generation failed: %w", err))
			}
			if strings.TrimSpace(out.Report) == "" {
				return nil, wrapFlowError(FlowReport, malformed("empty report"))
			}
			return out, nil
		},
	)
}

func defineAttackVectorsFlow(g *genkit.Genkit, modelName string) *Flow[models.AttackVectorsInput, models.AttackVectorsOutput] {
	return genkit.DefineFlow(
		g,
		FlowAttack,
		func(ctx context.Context, in *models.AttackVectorsInput) (*models.AttackVectorsOutput, error) {
			log.Printf("🗡️ Generating attack vectors for %d findings", len(in.Findings))

			out, err := generate[models.AttackVectorsOutput](ctx, g, modelName, BuildAttackVectorsPrompt(in))
			if err != nil {
				return nil, wrapFlowError(FlowAttack, fmt.Errorf("attack vector generation failed: %w", err))
			}
			nonNil(&out.AttackVectors)
			return out, nil
		},
	)
}

func definePlaybookFlow(g *genkit.Genkit, modelName string) *Flow[models.RemediationPlaybookInput, models.RemediationPlaybook] {
	return genkit.DefineFlow(
		g,
		FlowPlaybook,
		func(ctx context.Context, in *models.RemediationPlaybookInput) (*models.RemediationPlaybook, error) {
			out, err := generate[models.RemediationPlaybook](ctx, g, modelName, BuildRemediationPlaybookPrompt(in))
			if err != nil {
				return nil, wrapFlowError(FlowPlaybook, fmt.Errorf("playbook for %q failed: %w", in.VulnerabilityFinding.Vulnerability, err))
			}
			if out.VulnerabilityName == "" {
				out.VulnerabilityName = in.VulnerabilityFinding.Vulnerability
			}
			if out.Severity == "" {
				out.Severity = in.VulnerabilityFinding.Severity
			}
			return out, nil
		},
	)
}

func defineGeneralQueryFlow(g *genkit.Genkit, modelName string) *Flow[models.GeneralQueryInput, models.GeneralQueryOutput] {
	return genkit.DefineFlow(
		g,
		FlowGeneralChat,
		func(ctx context.Context, in *models.GeneralQueryInput) (*models.GeneralQueryOutput, error) {
			out, err := generate[models.GeneralQueryOutput](ctx, g, modelName, BuildGeneralQueryPrompt(in))
			if err != nil {
				return nil, wrapFlowError(FlowGeneralChat, fmt.Errorf("assistant failed: %w", err))
			}
			return out, nil
		},
	)
}

// generate runs a structured generation; a missing output is malformed
func generate[Out any](ctx context.Context, g *genkit.Genkit, modelName, prompt string) (*Out, error) {
	result, _, err := genkit.GenerateData[Out](
		ctx,
		g,
		ai.WithModelName(modelName),
		ai.WithPrompt(prompt),
		ai.WithMiddleware(getMiddlewares()...),
	)
	if err != nil {
		return nil, err
	}
	if result == nil {
		return nil, malformed("model returned no output")
	}
	return result, nil
}

func nonNil[T any](s *[]T) {
	if *s == nil {
		*s = []T{}
	}
}
