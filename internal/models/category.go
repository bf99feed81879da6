package models

// Category identifies one of the nine analysis domains
type Category string

const (
	CategoryURL        Category = "url"
	CategoryServer     Category = "server"
	CategoryDatabase   Category = "database"
	CategorySAST       Category = "sast"
	CategoryDAST       Category = "dast"
	CategoryCloud      Category = "cloud"
	CategoryContainer  Category = "container"
	CategoryDependency Category = "dependency"
	CategoryNetwork    Category = "network"
)

// Categories lists all categories in their fixed invocation order
var Categories = []Category{
	CategoryURL,
	CategoryServer,
	CategoryDatabase,
	CategorySAST,
	CategoryDAST,
	CategoryCloud,
	CategoryContainer,
	CategoryDependency,
	CategoryNetwork,
}

// Label returns the human-readable prefix used in error messages
func (c Category) Label() string {
	switch c {
	case CategoryURL:
		return "URL"
	case CategoryServer:
		return "Server"
	case CategoryDatabase:
		return "Database"
	case CategorySAST:
		return "SAST"
	case CategoryDAST:
		return "DAST"
	case CategoryCloud:
		return "Cloud"
	case CategoryContainer:
		return "Container"
	case CategoryDependency:
		return "Dependencies"
	case CategoryNetwork:
		return "Network"
	default:
		return string(c)
	}
}

// CategoryOutput is implemented by every per-category flow output
type CategoryOutput interface {
	CategoryFindings() []VulnerabilityFinding
}

// ═══════════════════════════════════════════════════════════════════════════════
// Per-category flow inputs
// ═══════════════════════════════════════════════════════════════════════════════

// URLAnalysisInput - input of the URL vulnerability flow
type URLAnalysisInput struct {
	URL         string `json:"url" jsonschema:"description=Target URL"`
	PageContext string `json:"page_context,omitempty" jsonschema:"description=Pre-fetched security-relevant page elements and headers"`
}

// ServerConfigInput - input of the server security flow
type ServerConfigInput struct {
	ServerDescription string `json:"server_description" jsonschema:"description=Free-form server description (OS / services / versions / config)"`
}

// DatabaseConfigInput - input of the database security flow
type DatabaseConfigInput struct {
	DatabaseDescription string `json:"database_description" jsonschema:"description=Database engine and version with auth and network exposure"`
}

// SASTAnalysisInput - input of the static code analysis flow
type SASTAnalysisInput struct {
	CodeSnippet string `json:"code_snippet" jsonschema:"description=Source code to analyse"`
	Language    string `json:"language,omitempty" jsonschema:"description=Programming language hint"`
}

// DAST scan profiles
const (
	ScanProfileQuick = "Quick"
	ScanProfileFull  = "Full"
)

// DASTAnalysisInput - input of the dynamic application testing flow
type DASTAnalysisInput struct {
	TargetURL   string `json:"target_url" jsonschema:"description=Application URL to assess"`
	ScanProfile string `json:"scan_profile" jsonschema:"enum=Quick,enum=Full,description=Depth of the simulated scan"`
}

// CloudConfigInput - input of the cloud configuration flow
type CloudConfigInput struct {
	Provider          string `json:"provider" jsonschema:"enum=AWS,enum=Azure,enum=GCP,enum=Other,description=Cloud provider"`
	ConfigDescription string `json:"config_description" jsonschema:"description=Description of the cloud configuration"`
	Region            string `json:"region,omitempty" jsonschema:"description=Cloud region"`
}

// ContainerAnalysisInput - input of the container / Kubernetes flow
type ContainerAnalysisInput struct {
	ImageName                 string `json:"image_name,omitempty" jsonschema:"description=Container image reference"`
	DockerfileContent         string `json:"dockerfile_content,omitempty" jsonschema:"description=Dockerfile content"`
	KubernetesManifestContent string `json:"kubernetes_manifest_content,omitempty" jsonschema:"description=Kubernetes manifest YAML"`
	AdditionalContext         string `json:"additional_context,omitempty" jsonschema:"description=Extra context about the deployment"`
}

// DependencyAnalysisInput - input of the dependency manifest flow
type DependencyAnalysisInput struct {
	DependencyFileContent string `json:"dependency_file_content" jsonschema:"description=Dependency manifest content"`
	FileType              string `json:"file_type" jsonschema:"enum=npm,enum=pip,enum=maven,enum=gem,enum=other,description=Manifest ecosystem"`
}

// NetworkSecurityAnalysisInput - input of the network configuration flow
type NetworkSecurityAnalysisInput struct {
	NetworkDescription string `json:"network_description,omitempty" jsonschema:"description=Network topology description"`
	ScanResults        string `json:"scan_results,omitempty" jsonschema:"description=Port/service scan output (e.g. nmap)"`
	FirewallRules      string `json:"firewall_rules,omitempty" jsonschema:"description=Firewall rule set"`
}

// ═══════════════════════════════════════════════════════════════════════════════
// Per-category flow outputs
// ═══════════════════════════════════════════════════════════════════════════════

// URLAnalysisOutput - output of the URL vulnerability flow
type URLAnalysisOutput struct {
	Findings              []VulnerabilityFinding `json:"findings" jsonschema:"description=Findings for the URL"`
	OverallRiskAssessment string                 `json:"overall_risk_assessment,omitempty" jsonschema:"description=Overall risk summary"`
}

func (o *URLAnalysisOutput) CategoryFindings() []VulnerabilityFinding { return o.Findings }

// ServerSecurityAnalysisOutput - output of the server security flow
type ServerSecurityAnalysisOutput struct {
	Findings              []VulnerabilityFinding `json:"findings" jsonschema:"description=Findings for the server"`
	OverallRiskAssessment string                 `json:"overall_risk_assessment,omitempty" jsonschema:"description=Overall risk summary"`
	ExposedServices       []string               `json:"exposed_services,omitempty" jsonschema:"description=Services identified from the description"`
}

func (o *ServerSecurityAnalysisOutput) CategoryFindings() []VulnerabilityFinding { return o.Findings }

// DatabaseSecurityAnalysisOutput - output of the database security flow
type DatabaseSecurityAnalysisOutput struct {
	Findings              []VulnerabilityFinding `json:"findings" jsonschema:"description=Findings for the database"`
	OverallRiskAssessment string                 `json:"overall_risk_assessment,omitempty" jsonschema:"description=Overall risk summary"`
	DatabaseEngine        string                 `json:"database_engine,omitempty" jsonschema:"description=Detected database engine"`
}

func (o *DatabaseSecurityAnalysisOutput) CategoryFindings() []VulnerabilityFinding { return o.Findings }

// SASTAnalysisOutput - output of the static code analysis flow
type SASTAnalysisOutput struct {
	Findings              []VulnerabilityFinding `json:"findings" jsonschema:"description=Findings in the code snippet"`
	OverallRiskAssessment string                 `json:"overall_risk_assessment,omitempty" jsonschema:"description=Overall risk summary"`
	AnalyzedLanguage      string                 `json:"analyzed_language,omitempty" jsonschema:"description=Language the snippet was analysed as"`
}

func (o *SASTAnalysisOutput) CategoryFindings() []VulnerabilityFinding { return o.Findings }

// DASTAnalysisOutput - output of the dynamic application testing flow
type DASTAnalysisOutput struct {
	Findings              []VulnerabilityFinding `json:"findings" jsonschema:"description=Findings for the application"`
	OverallRiskAssessment string                 `json:"overall_risk_assessment,omitempty" jsonschema:"description=Overall risk summary"`
	ScanProfile           string                 `json:"scan_profile,omitempty" jsonschema:"description=Scan profile that was simulated"`
}

func (o *DASTAnalysisOutput) CategoryFindings() []VulnerabilityFinding { return o.Findings }

// CloudConfigAnalysisOutput - output of the cloud configuration flow
type CloudConfigAnalysisOutput struct {
	Findings              []VulnerabilityFinding `json:"findings" jsonschema:"description=Findings for the cloud configuration"`
	OverallRiskAssessment string                 `json:"overall_risk_assessment,omitempty" jsonschema:"description=Overall risk summary"`
	Provider              string                 `json:"provider,omitempty" jsonschema:"description=Analysed cloud provider"`
}

func (o *CloudConfigAnalysisOutput) CategoryFindings() []VulnerabilityFinding { return o.Findings }

// ContainerAnalysisOutput - output of the container / Kubernetes flow
type ContainerAnalysisOutput struct {
	Findings              []VulnerabilityFinding `json:"findings" jsonschema:"description=Findings for the container setup"`
	OverallRiskAssessment string                 `json:"overall_risk_assessment,omitempty" jsonschema:"description=Overall risk summary"`
	AnalyzedComponents    []string               `json:"analyzed_components,omitempty" jsonschema:"description=Which of image/Dockerfile/manifest were analysed"`
}

func (o *ContainerAnalysisOutput) CategoryFindings() []VulnerabilityFinding { return o.Findings }

// DependencyAnalysisOutput - output of the dependency manifest flow
type DependencyAnalysisOutput struct {
	Findings              []VulnerabilityFinding `json:"findings" jsonschema:"description=Findings for the dependencies"`
	OverallRiskAssessment string                 `json:"overall_risk_assessment,omitempty" jsonschema:"description=Overall risk summary"`
	FileType              string                 `json:"file_type,omitempty" jsonschema:"description=Manifest ecosystem analysed"`
}

func (o *DependencyAnalysisOutput) CategoryFindings() []VulnerabilityFinding { return o.Findings }

// NetworkSecurityAnalysisOutput - output of the network configuration flow
type NetworkSecurityAnalysisOutput struct {
	Findings              []VulnerabilityFinding `json:"findings" jsonschema:"description=Findings for the network"`
	OverallRiskAssessment string                 `json:"overall_risk_assessment,omitempty" jsonschema:"description=Overall risk summary"`
}

func (o *NetworkSecurityAnalysisOutput) CategoryFindings() []VulnerabilityFinding { return o.Findings }
