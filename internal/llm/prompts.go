package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
)

const maxPromptInput = 30000

// findingRules is appended to every category prompt
const findingRules = `
Rules for findings:
- Report each distinct issue once. Set "is_vulnerable" to true only when the input shows the issue is present;
  use false for informational observations and checks that passed.
- "severity" must be one of: Critical, High, Medium, Low, Informational.
- Fill "cvss_score" (0.0-10.0) and "cvss_vector" (CVSS:3.1/...) for vulnerable findings when you can justify them.
- "references" should cite CWE / OWASP / CVE identifiers where applicable.
- Base every finding on the provided input. Do not invent services, files or versions that are not mentioned.
- If nothing relevant can be assessed, return an empty "findings" array.`

// BuildURLAnalysisPrompt creates prompt for the URL vulnerability flow
func BuildURLAnalysisPrompt(in *models.URLAnalysisInput) string {
	return fmt.Sprintf(`You are a web application security analyst.
Assess the URL below for likely vulnerabilities: injection points in parameters, open redirects,
insecure transport, sensitive data exposure in the path or query, and issues visible in the page context.

URL: %s

Page context (pre-fetched, may be empty):
%s
%s

Return JSON with "findings" and a short "overall_risk_assessment".`,
		in.URL,
		orNone(TruncateString(in.PageContext, maxPromptInput)),
		findingRules,
	)
}

// BuildServerSecurityPrompt creates prompt for the server security flow
func BuildServerSecurityPrompt(in *models.ServerConfigInput) string {
	return fmt.Sprintf(`You are a server hardening specialist.
Analyse the server description for outdated software, risky exposed services, weak authentication,
missing hardening and misconfiguration.

Server description:
%s
%s

Return JSON with "findings", "overall_risk_assessment" and "exposed_services" (services you identified).`,
		TruncateString(in.ServerDescription, maxPromptInput),
		findingRules,
	)
}

// BuildDatabaseSecurityPrompt creates prompt for the database security flow
func BuildDatabaseSecurityPrompt(in *models.DatabaseConfigInput) string {
	return fmt.Sprintf(`You are a database security specialist.
Analyse the database description for weak or default credentials, network exposure, missing encryption
(in transit / at rest), excessive privileges, missing auditing and unpatched versions.

Database description:
%s
%s

Return JSON with "findings", "overall_risk_assessment" and "database_engine".`,
		TruncateString(in.DatabaseDescription, maxPromptInput),
		findingRules,
	)
}

// BuildSASTPrompt creates prompt for the static code analysis flow
func BuildSASTPrompt(in *models.SASTAnalysisInput) string {
	language := in.Language
	if strings.TrimSpace(language) == "" {
		language = "auto-detect"
	}

	return fmt.Sprintf(`You are a static application security testing (SAST) engine.
Review the code for injection (SQL, command, template), XSS, insecure deserialization, hardcoded secrets,
weak cryptography, path traversal, SSRF, broken access control and unsafe error handling.
Use "affected_component" for the function or line and quote the vulnerable code in "evidence".

Language: %s

Code:
`+"```"+`
%s
`+"```"+`
%s

Return JSON with "findings", "overall_risk_assessment" and "analyzed_language".`,
		language,
		TruncateString(in.CodeSnippet, maxPromptInput),
		findingRules,
	)
}

// BuildDASTPrompt creates prompt for the dynamic application testing flow
func BuildDASTPrompt(in *models.DASTAnalysisInput) string {
	depth := "Focus on the most common and high-impact issues (OWASP Top 10 quick checks)."
	if in.ScanProfile == models.ScanProfileFull {
		depth = "Cover the full OWASP Top 10 and business logic issues in depth."
	}

	return fmt.Sprintf(`You are simulating a dynamic application security test (DAST) against a running web application.
You cannot send requests; reason about what a scanner would most likely detect for this kind of target,
and mark speculative items as is_vulnerable=false with severity Informational.

Target URL: %s
Scan profile: %s
%s
%s

Return JSON with "findings", "overall_risk_assessment" and "scan_profile".`,
		in.TargetURL,
		in.ScanProfile,
		depth,
		findingRules,
	)
}

// BuildCloudConfigPrompt creates prompt for the cloud configuration flow
func BuildCloudConfigPrompt(in *models.CloudConfigInput) string {
	return fmt.Sprintf(`You are a cloud security posture specialist.
Analyse the cloud configuration for public storage, over-permissive IAM, open security groups, missing logging,
missing encryption and weak network segmentation.

Provider: %s
Region: %s

Configuration:
%s
%s

Return JSON with "findings", "overall_risk_assessment" and "provider".`,
		in.Provider,
		orNone(in.Region),
		TruncateString(in.ConfigDescription, maxPromptInput),
		findingRules,
	)
}

// BuildContainerPrompt creates prompt for the container / Kubernetes flow
func BuildContainerPrompt(in *models.ContainerAnalysisInput) string {
	prompt := `You are a container and Kubernetes security specialist.
Analyse the supplied artifacts for running as root, privileged containers, missing resource limits,
secrets in images or env, unpinned or vulnerable base images, host mounts and missing network policies.
`

	if in.ImageName != "" {
		prompt += fmt.Sprintf("\nImage: %s\n", in.ImageName)
	}
	if in.DockerfileContent != "" {
		prompt += fmt.Sprintf("\nDockerfile:\n```\n%s\n```\n", TruncateString(in.DockerfileContent, maxPromptInput))
	}
	if in.KubernetesManifestContent != "" {
		prompt += fmt.Sprintf("\nKubernetes manifest:\n```yaml\n%s\n```\n", TruncateString(in.KubernetesManifestContent, maxPromptInput))
	}
	if in.AdditionalContext != "" {
		prompt += fmt.Sprintf("\nAdditional context:\n%s\n", in.AdditionalContext)
	}

	prompt += findingRules
	prompt += `

Return JSON with "findings", "overall_risk_assessment" and "analyzed_components" (which artifacts you analysed).`
	return prompt
}

// BuildDependencyPrompt creates prompt for the dependency manifest flow
func BuildDependencyPrompt(in *models.DependencyAnalysisInput) string {
	return fmt.Sprintf(`You are a software composition analysis (SCA) engine.
Identify dependencies with known vulnerabilities (cite CVE/GHSA ids), abandoned or typosquatted packages,
and risky version ranges in the manifest below. Put the package@version in "affected_component".

Manifest type: %s

Manifest:
`+"```"+`
%s
`+"```"+`
%s

Return JSON with "findings", "overall_risk_assessment" and "file_type".`,
		in.FileType,
		TruncateString(in.DependencyFileContent, maxPromptInput),
		findingRules,
	)
}

// BuildNetworkSecurityPrompt creates prompt for the network configuration flow
func BuildNetworkSecurityPrompt(in *models.NetworkSecurityAnalysisInput) string {
	return fmt.Sprintf(`You are a network security engineer.
Analyse the network data for exposed management ports, insecure protocols, overly permissive firewall rules,
missing segmentation and services that should not be reachable.

Network description:
%s

Scan results:
%s

Firewall rules:
%s
%s

Return JSON with "findings" and "overall_risk_assessment".`,
		orNone(TruncateString(in.NetworkDescription, maxPromptInput)),
		orNone(TruncateString(in.ScanResults, maxPromptInput)),
		orNone(TruncateString(in.FirewallRules, maxPromptInput)),
		findingRules,
	)
}

// BuildSecurityReportPrompt creates prompt for the consolidated report flow
func BuildSecurityReportPrompt(in *models.SecurityReportInput) string {
	sections := ""
	addSection := func(title string, out models.CategoryOutput, risk string) {
		if out == nil {
			return
		}
		sections += fmt.Sprintf("\n### %s\nOverall risk: %s\nFindings:\n%s\n", title, orNone(risk), FormatFindings(out.CategoryFindings()))
	}

	if in.URLAnalysis != nil {
		addSection("URL", in.URLAnalysis, in.URLAnalysis.OverallRiskAssessment)
	}
	if in.ServerAnalysis != nil {
		addSection("Server", in.ServerAnalysis, in.ServerAnalysis.OverallRiskAssessment)
	}
	if in.DatabaseAnalysis != nil {
		addSection("Database", in.DatabaseAnalysis, in.DatabaseAnalysis.OverallRiskAssessment)
	}
	if in.SASTAnalysis != nil {
		addSection("SAST", in.SASTAnalysis, in.SASTAnalysis.OverallRiskAssessment)
	}
	if in.DASTAnalysis != nil {
		addSection("DAST", in.DASTAnalysis, in.DASTAnalysis.OverallRiskAssessment)
	}
	if in.CloudAnalysis != nil {
		addSection("Cloud", in.CloudAnalysis, in.CloudAnalysis.OverallRiskAssessment)
	}
	if in.ContainerAnalysis != nil {
		addSection("Container", in.ContainerAnalysis, in.ContainerAnalysis.OverallRiskAssessment)
	}
	if in.DependencyAnalysis != nil {
		addSection("Dependencies", in.DependencyAnalysis, in.DependencyAnalysis.OverallRiskAssessment)
	}
	if in.NetworkAnalysis != nil {
		addSection("Network", in.NetworkAnalysis, in.NetworkAnalysis.OverallRiskAssessment)
	}

	return fmt.Sprintf(`You are a lead security consultant writing a consolidated security report.

Scope: %s

Per-category results:
%s

Vulnerable findings across all categories (%d):
%s

Write the report in Markdown with these sections:
1. Executive Summary (non-technical, 1-2 paragraphs)
2. Overall Risk Rating
3. Key Findings (ordered by severity, reference the category of each)
4. Recommendations (prioritised)
5. Conclusion

Return JSON: {"report": "<markdown>"}`,
		in.AnalyzedTargetDescription,
		orNone(sections),
		len(in.OverallVulnerableFindings),
		FormatFindings(in.OverallVulnerableFindings),
	)
}

// BuildAttackVectorsPrompt creates prompt for the attack vector flow
func BuildAttackVectorsPrompt(in *models.AttackVectorsInput) string {
	return fmt.Sprintf(`You are an offensive security expert preparing an authorised penetration test.
For each vulnerable finding below describe at least one realistic attack vector: the scenario step by step,
an illustrative payload or technique, and the expected outcome if successful.
Payloads must be illustrative and non-destructive.

Vulnerable findings (%d):
%s

Return JSON:
{
  "attack_vectors": [
    {
      "vulnerability_name": "...",
      "attack_scenario_description": "...",
      "example_payload_or_technique": "...",
      "expected_outcome_if_successful": "..."
    }
  ]
}`,
		len(in.Findings),
		FormatFindings(in.Findings),
	)
}

// BuildRemediationPlaybookPrompt creates prompt for the playbook flow (one finding)
func BuildRemediationPlaybookPrompt(in *models.RemediationPlaybookInput) string {
	return fmt.Sprintf(`You are a senior security engineer writing a remediation playbook for ONE vulnerability.

Finding:
%s

Produce an actionable playbook: an overview, ordered steps with concrete commands, configuration or code
changes, verification steps confirming the fix, and references.

Return JSON with "playbook_title", "vulnerability_name", "severity", "overview", "steps"
(each with "title", "description", "command_or_code"), "verification_steps" and "references".`,
		FormatFinding(in.VulnerabilityFinding),
	)
}

// BuildGeneralQueryPrompt creates prompt for the security assistant
func BuildGeneralQueryPrompt(in *models.GeneralQueryInput) string {
	prompt := `You are a helpful cybersecurity assistant. Answer clearly and concisely.
Do not help with attacks against systems the user is not authorised to test.

Question:
` + in.UserQuery + "\n"

	if strings.TrimSpace(in.Context) != "" {
		prompt += "\nContext:\n" + TruncateString(in.Context, maxPromptInput) + "\n"
	}

	prompt += `
Return JSON: {"ai_response": "<answer in Markdown>"}`
	return prompt
}

// FormatFindings renders findings as compact text for prompts
func FormatFindings(findings []models.VulnerabilityFinding) string {
	if len(findings) == 0 {
		return "(none)"
	}

	var sb strings.Builder
	for i, f := range findings {
		fmt.Fprintf(&sb, "%d. %s\n", i+1, FormatFinding(f))
	}
	return sb.String()
}

// FormatFinding renders one finding as a single JSON line
func FormatFinding(f models.VulnerabilityFinding) string {
	data, err := json.Marshal(f)
	if err != nil {
		return fmt.Sprintf("[%s] %s: %s", f.Severity, f.Vulnerability, f.Description)
	}
	return string(data)
}
