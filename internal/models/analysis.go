package models

import "strings"

// AnalysisRequest - sparse bag of optional analysis targets, one group per category
type AnalysisRequest struct {
	URL string `json:"url,omitempty"`

	ServerDescription   string `json:"server_description,omitempty"`
	DatabaseDescription string `json:"database_description,omitempty"`

	CodeSnippet  string `json:"code_snippet,omitempty"`
	SASTLanguage string `json:"sast_language,omitempty"`

	DASTTargetURL string `json:"dast_target_url,omitempty"`

	CloudProvider          string `json:"cloud_provider,omitempty"`
	CloudConfigDescription string `json:"cloud_config_description,omitempty"`
	CloudRegion            string `json:"cloud_region,omitempty"`

	ContainerImageName         string `json:"container_image_name,omitempty"`
	DockerfileContent          string `json:"dockerfile_content,omitempty"`
	KubernetesManifestContent  string `json:"kubernetes_manifest_content,omitempty"`
	ContainerAdditionalContext string `json:"container_additional_context,omitempty"`

	DependencyFileContent string `json:"dependency_file_content,omitempty"`
	DependencyFileType    string `json:"dependency_file_type,omitempty"`

	NetworkDescription   string `json:"network_description,omitempty"`
	NetworkScanResults   string `json:"network_scan_results,omitempty"`
	NetworkFirewallRules string `json:"network_firewall_rules,omitempty"`
}

func present(s string) bool {
	return strings.TrimSpace(s) != ""
}

// HasContainerTarget reports whether any of image name, Dockerfile or manifest is set
func (r *AnalysisRequest) HasContainerTarget() bool {
	return present(r.ContainerImageName) || present(r.DockerfileContent) || present(r.KubernetesManifestContent)
}

// HasNetworkTarget reports whether any network input is set
func (r *AnalysisRequest) HasNetworkTarget() bool {
	return present(r.NetworkDescription) || present(r.NetworkScanResults) || present(r.NetworkFirewallRules)
}

// HasCloudTarget requires both provider and configuration description
func (r *AnalysisRequest) HasCloudTarget() bool {
	return present(r.CloudProvider) && present(r.CloudConfigDescription)
}

// HasDependencyTarget requires both manifest content and its type
func (r *AnalysisRequest) HasDependencyTarget() bool {
	return present(r.DependencyFileContent) && present(r.DependencyFileType)
}

// Targets reports whether the required inputs of a category are present
func (r *AnalysisRequest) Targets(c Category) bool {
	switch c {
	case CategoryURL:
		return present(r.URL)
	case CategoryServer:
		return present(r.ServerDescription)
	case CategoryDatabase:
		return present(r.DatabaseDescription)
	case CategorySAST:
		return present(r.CodeSnippet)
	case CategoryDAST:
		return present(r.DASTTargetURL)
	case CategoryCloud:
		return r.HasCloudTarget()
	case CategoryContainer:
		return r.HasContainerTarget()
	case CategoryDependency:
		return r.HasDependencyTarget()
	case CategoryNetwork:
		return r.HasNetworkTarget()
	default:
		return false
	}
}

// IsEmpty is true when no analysis target is supplied at all.
// Secondary fields (language, region, provider alone, file type alone,
// container context) do not count as targets.
func (r *AnalysisRequest) IsEmpty() bool {
	return !present(r.URL) &&
		!present(r.ServerDescription) &&
		!present(r.DatabaseDescription) &&
		!present(r.CodeSnippet) &&
		!present(r.DASTTargetURL) &&
		!present(r.CloudConfigDescription) &&
		!r.HasContainerTarget() &&
		!present(r.DependencyFileContent) &&
		!r.HasNetworkTarget()
}

// SecurityReportInput - input of the report flow. Absent categories are omitted.
type SecurityReportInput struct {
	AnalyzedTargetDescription string                          `json:"analyzed_target_description" jsonschema:"description=Human-readable list of analysed targets"`
	URLAnalysis               *URLAnalysisOutput              `json:"url_analysis,omitempty"`
	ServerAnalysis            *ServerSecurityAnalysisOutput   `json:"server_analysis,omitempty"`
	DatabaseAnalysis          *DatabaseSecurityAnalysisOutput `json:"database_analysis,omitempty"`
	SASTAnalysis              *SASTAnalysisOutput             `json:"sast_analysis,omitempty"`
	DASTAnalysis              *DASTAnalysisOutput             `json:"dast_analysis,omitempty"`
	CloudAnalysis             *CloudConfigAnalysisOutput      `json:"cloud_analysis,omitempty"`
	ContainerAnalysis         *ContainerAnalysisOutput        `json:"container_analysis,omitempty"`
	DependencyAnalysis        *DependencyAnalysisOutput       `json:"dependency_analysis,omitempty"`
	NetworkAnalysis           *NetworkSecurityAnalysisOutput  `json:"network_analysis,omitempty"`
	OverallVulnerableFindings []VulnerabilityFinding          `json:"overall_vulnerable_findings"`
}

// SecurityReportOutput - output of the report flow
type SecurityReportOutput struct {
	Report string `json:"report" jsonschema:"description=Consolidated security report in Markdown"`
}

// GeneralQueryInput - input of the general assistant flow
type GeneralQueryInput struct {
	UserQuery string `json:"user_query" jsonschema:"description=Free-form security question"`
	Context   string `json:"context,omitempty" jsonschema:"description=Optional extra context (e.g. current findings summary)"`
}

// GeneralQueryOutput - output of the general assistant flow
type GeneralQueryOutput struct {
	AIResponse string `json:"ai_response" jsonschema:"description=Assistant answer"`
}

// AnalysisResult - root response of one analysis. Built once per request.
type AnalysisResult struct {
	URLAnalysis        *URLAnalysisOutput              `json:"url_analysis"`
	ServerAnalysis     *ServerSecurityAnalysisOutput   `json:"server_analysis"`
	DatabaseAnalysis   *DatabaseSecurityAnalysisOutput `json:"database_analysis"`
	SASTAnalysis       *SASTAnalysisOutput             `json:"sast_analysis"`
	DASTAnalysis       *DASTAnalysisOutput             `json:"dast_analysis"`
	CloudAnalysis      *CloudConfigAnalysisOutput      `json:"cloud_analysis"`
	ContainerAnalysis  *ContainerAnalysisOutput        `json:"container_analysis"`
	DependencyAnalysis *DependencyAnalysisOutput       `json:"dependency_analysis"`
	NetworkAnalysis    *NetworkSecurityAnalysisOutput  `json:"network_analysis"`

	ReportText           *string               `json:"report_text"`
	AttackVectors        []AttackVector        `json:"attack_vectors"`
	RemediationPlaybooks []RemediationPlaybook `json:"remediation_playbooks"`

	AllFindings []VulnerabilityFinding `json:"all_findings"`
	Error       *string                `json:"error"`
}

// NewFailedResult returns a result with every output empty and the given error
func NewFailedResult(message string) *AnalysisResult {
	return &AnalysisResult{
		AllFindings: []VulnerabilityFinding{},
		Error:       &message,
	}
}

// CategoryOutput returns the slot of a category (nil when absent)
func (r *AnalysisResult) CategoryOutput(c Category) CategoryOutput {
	switch c {
	case CategoryURL:
		if r.URLAnalysis != nil {
			return r.URLAnalysis
		}
	case CategoryServer:
		if r.ServerAnalysis != nil {
			return r.ServerAnalysis
		}
	case CategoryDatabase:
		if r.DatabaseAnalysis != nil {
			return r.DatabaseAnalysis
		}
	case CategorySAST:
		if r.SASTAnalysis != nil {
			return r.SASTAnalysis
		}
	case CategoryDAST:
		if r.DASTAnalysis != nil {
			return r.DASTAnalysis
		}
	case CategoryCloud:
		if r.CloudAnalysis != nil {
			return r.CloudAnalysis
		}
	case CategoryContainer:
		if r.ContainerAnalysis != nil {
			return r.ContainerAnalysis
		}
	case CategoryDependency:
		if r.DependencyAnalysis != nil {
			return r.DependencyAnalysis
		}
	case CategoryNetwork:
		if r.NetworkAnalysis != nil {
			return r.NetworkAnalysis
		}
	}
	return nil
}

// ErrorMessage returns the error text or "" when the analysis had no issues
func (r *AnalysisResult) ErrorMessage() string {
	if r.Error == nil {
		return ""
	}
	return *r.Error
}
