package driven

import (
	"context"
	"log"
	"strings"

	"github.com/BetterCallFirewall/SecurityCenter/internal/llm"
	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
)

// categoryStep runs one category flow and stores its output in the result slot
type categoryStep struct {
	category models.Category
	flow     string
	run      func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error)
}

// categorySteps returns the steps in the fixed invocation order:
// URL, Server, Database, SAST, DAST, Cloud, Container, Dependency, Network
func (o *Orchestrator) categorySteps() []categoryStep {
	inv := o.invokers

	return []categoryStep{
		{models.CategoryURL, llm.FlowURL, func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error) {
			in := &models.URLAnalysisInput{
				URL:         strings.TrimSpace(req.URL),
				PageContext: o.pageContext(ctx, strings.TrimSpace(req.URL)),
			}
			out, err := invoke(ctx, llm.FlowURL, inv.URL, in)
			if err != nil {
				return nil, err
			}
			res.URLAnalysis = out
			return out, nil
		}},
		{models.CategoryServer, llm.FlowServer, func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error) {
			out, err := invoke(ctx, llm.FlowServer, inv.Server, &models.ServerConfigInput{
				ServerDescription: req.ServerDescription,
			})
			if err != nil {
				return nil, err
			}
			res.ServerAnalysis = out
			return out, nil
		}},
		{models.CategoryDatabase, llm.FlowDatabase, func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error) {
			out, err := invoke(ctx, llm.FlowDatabase, inv.Database, &models.DatabaseConfigInput{
				DatabaseDescription: req.DatabaseDescription,
			})
			if err != nil {
				return nil, err
			}
			res.DatabaseAnalysis = out
			return out, nil
		}},
		{models.CategorySAST, llm.FlowSAST, func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error) {
			out, err := invoke(ctx, llm.FlowSAST, inv.SAST, &models.SASTAnalysisInput{
				CodeSnippet: req.CodeSnippet,
				Language:    strings.TrimSpace(req.SASTLanguage),
			})
			if err != nil {
				return nil, err
			}
			res.SASTAnalysis = out
			return out, nil
		}},
		{models.CategoryDAST, llm.FlowDAST, func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error) {
			out, err := invoke(ctx, llm.FlowDAST, inv.DAST, &models.DASTAnalysisInput{
				TargetURL:   strings.TrimSpace(req.DASTTargetURL),
				ScanProfile: models.ScanProfileQuick,
			})
			if err != nil {
				return nil, err
			}
			res.DASTAnalysis = out
			return out, nil
		}},
		{models.CategoryCloud, llm.FlowCloud, func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error) {
			out, err := invoke(ctx, llm.FlowCloud, inv.Cloud, &models.CloudConfigInput{
				Provider:          strings.TrimSpace(req.CloudProvider),
				ConfigDescription: req.CloudConfigDescription,
				Region:            strings.TrimSpace(req.CloudRegion),
			})
			if err != nil {
				return nil, err
			}
			res.CloudAnalysis = out
			return out, nil
		}},
		{models.CategoryContainer, llm.FlowContainer, func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error) {
			out, err := invoke(ctx, llm.FlowContainer, inv.Container, &models.ContainerAnalysisInput{
				ImageName:                 strings.TrimSpace(req.ContainerImageName),
				DockerfileContent:         req.DockerfileContent,
				KubernetesManifestContent: req.KubernetesManifestContent,
				AdditionalContext:         req.ContainerAdditionalContext,
			})
			if err != nil {
				return nil, err
			}
			res.ContainerAnalysis = out
			return out, nil
		}},
		{models.CategoryDependency, llm.FlowDependency, func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error) {
			out, err := invoke(ctx, llm.FlowDependency, inv.Dependency, &models.DependencyAnalysisInput{
				DependencyFileContent: req.DependencyFileContent,
				FileType:              strings.TrimSpace(req.DependencyFileType),
			})
			if err != nil {
				return nil, err
			}
			res.DependencyAnalysis = out
			return out, nil
		}},
		{models.CategoryNetwork, llm.FlowNetwork, func(ctx context.Context, req *models.AnalysisRequest, res *models.AnalysisResult) (models.CategoryOutput, error) {
			out, err := invoke(ctx, llm.FlowNetwork, inv.Network, &models.NetworkSecurityAnalysisInput{
				NetworkDescription: req.NetworkDescription,
				ScanResults:        req.NetworkScanResults,
				FirewallRules:      req.NetworkFirewallRules,
			})
			if err != nil {
				return nil, err
			}
			res.NetworkAnalysis = out
			return out, nil
		}},
	}
}

// pageContext is best effort: prefetch failures leave the context empty
func (o *Orchestrator) pageContext(ctx context.Context, url string) string {
	if o.prefetcher == nil {
		return ""
	}
	pc, err := o.prefetcher.PageContext(ctx, url)
	if err != nil {
		log.Printf("⚠️ URL prefetch failed, analysing without page context: %v", err)
		return ""
	}
	return pc
}

// targetDescription lists the analysed targets for the report flow
func targetDescription(req *models.AnalysisRequest) string {
	var parts []string
	if req.Targets(models.CategoryURL) {
		parts = append(parts, "URL ("+strings.TrimSpace(req.URL)+")")
	}
	if req.Targets(models.CategoryServer) {
		parts = append(parts, "General Server")
	}
	if req.Targets(models.CategoryDatabase) {
		parts = append(parts, "Database")
	}
	if req.Targets(models.CategorySAST) {
		parts = append(parts, "Code Snippet (SAST)")
	}
	if req.Targets(models.CategoryDAST) {
		parts = append(parts, "DAST Application URL ("+strings.TrimSpace(req.DASTTargetURL)+")")
	}
	if req.Targets(models.CategoryCloud) {
		cloud := strings.TrimSpace(req.CloudProvider)
		if region := strings.TrimSpace(req.CloudRegion); region != "" {
			cloud += "/" + region
		}
		parts = append(parts, "Cloud Configuration ("+cloud+")")
	}
	if req.Targets(models.CategoryContainer) {
		parts = append(parts, "Container/K8s")
	}
	if req.Targets(models.CategoryDependency) {
		parts = append(parts, "Software Dependencies ("+strings.TrimSpace(req.DependencyFileType)+")")
	}
	if req.Targets(models.CategoryNetwork) {
		parts = append(parts, "Network Configuration")
	}
	return strings.TrimSuffix("Analysis for "+strings.Join(parts, ", "), ", ")
}

// reportInput passes present category outputs; absent ones are omitted
func reportInput(req *models.AnalysisRequest, res *models.AnalysisResult, vulnerable []models.VulnerabilityFinding) *models.SecurityReportInput {
	return &models.SecurityReportInput{
		AnalyzedTargetDescription: targetDescription(req),
		URLAnalysis:               res.URLAnalysis,
		ServerAnalysis:            res.ServerAnalysis,
		DatabaseAnalysis:          res.DatabaseAnalysis,
		SASTAnalysis:              res.SASTAnalysis,
		DASTAnalysis:              res.DASTAnalysis,
		CloudAnalysis:             res.CloudAnalysis,
		ContainerAnalysis:         res.ContainerAnalysis,
		DependencyAnalysis:        res.DependencyAnalysis,
		NetworkAnalysis:           res.NetworkAnalysis,
		OverallVulnerableFindings: vulnerable,
	}
}
