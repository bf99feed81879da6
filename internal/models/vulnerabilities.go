package models

import "strings"

// Severity levels reported by the analysis flows
const (
	SeverityCritical      = "Critical"
	SeverityHigh          = "High"
	SeverityMedium        = "Medium"
	SeverityLow           = "Low"
	SeverityInformational = "Informational"
)

// VulnerabilityFinding - single (non-)vulnerability reported by an analysis flow.
// Created by a flow invoker and read-only afterwards.
type VulnerabilityFinding struct {
	Source            Category `json:"source" jsonschema:"description=Analysis category that produced this finding"`
	IsVulnerable      bool     `json:"is_vulnerable" jsonschema:"description=True when the analysed target is actually vulnerable"`
	Vulnerability     string   `json:"vulnerability" jsonschema:"description=Short vulnerability title (e.g. 'Reflected XSS')"`
	Severity          string   `json:"severity" jsonschema:"enum=Critical,enum=High,enum=Medium,enum=Low,enum=Informational,description=Severity assessment"`
	Description       string   `json:"description" jsonschema:"description=What was found and why it matters"`
	AffectedComponent string   `json:"affected_component,omitempty" jsonschema:"description=Affected parameter / file / resource / service"`
	Evidence          string   `json:"evidence,omitempty" jsonschema:"description=Snippet or observation supporting the finding"`
	Remediation       string   `json:"remediation,omitempty" jsonschema:"description=How to fix the issue"`
	CVSSScore         float64  `json:"cvss_score,omitempty" jsonschema:"description=CVSS 3.1 base score (0.0-10.0),minimum=0,maximum=10"`
	CVSSVector        string   `json:"cvss_vector,omitempty" jsonschema:"description=CVSS 3.1 vector string"`
	BusinessImpact    string   `json:"business_impact,omitempty" jsonschema:"description=Potential business impact if exploited"`
	References        []string `json:"references,omitempty" jsonschema:"description=CWE / OWASP / CVE references"`
}

// VulnerableFindings returns the subset of findings flagged as vulnerable, preserving order
func VulnerableFindings(findings []VulnerabilityFinding) []VulnerabilityFinding {
	vulnerable := make([]VulnerabilityFinding, 0, len(findings))
	for _, f := range findings {
		if f.IsVulnerable {
			vulnerable = append(vulnerable, f)
		}
	}
	return vulnerable
}

// SeverityRank orders severities from most to least critical (unknown last)
func SeverityRank(severity string) int {
	switch strings.ToLower(strings.TrimSpace(severity)) {
	case "critical":
		return 0
	case "high":
		return 1
	case "medium":
		return 2
	case "low":
		return 3
	case "informational", "info":
		return 4
	default:
		return 5
	}
}

// AttackVector describes how a vulnerable finding could be exploited
type AttackVector struct {
	VulnerabilityName         string `json:"vulnerability_name" jsonschema:"description=Name of the vulnerability this vector targets"`
	AttackScenarioDescription string `json:"attack_scenario_description" jsonschema:"description=Step-by-step attack scenario"`
	ExamplePayloadOrTechnique string `json:"example_payload_or_technique" jsonschema:"description=Illustrative payload or technique"`
	ExpectedOutcome           string `json:"expected_outcome_if_successful" jsonschema:"description=What the attacker gains if successful"`
}

// AttackVectorsOutput wraps the attack vector list (structured output must be an object)
type AttackVectorsOutput struct {
	AttackVectors []AttackVector `json:"attack_vectors" jsonschema:"description=One or more attack vectors per vulnerable finding"`
}

// AttackVectorsInput - input of the attack vector flow
type AttackVectorsInput struct {
	Findings []VulnerabilityFinding `json:"findings" jsonschema:"description=Vulnerable findings to derive attack vectors from"`
}

// RemediationStep - a single remediation action
type RemediationStep struct {
	Title         string `json:"title" jsonschema:"description=Short step title"`
	Description   string `json:"description" jsonschema:"description=What to do and why"`
	CommandOrCode string `json:"command_or_code,omitempty" jsonschema:"description=Command / config / code change to apply"`
}

// RemediationPlaybook - remediation guide for exactly one vulnerable finding
type RemediationPlaybook struct {
	PlaybookTitle     string            `json:"playbook_title" jsonschema:"description=Title of the playbook"`
	VulnerabilityName string            `json:"vulnerability_name" jsonschema:"description=Vulnerability being remediated"`
	Severity          string            `json:"severity" jsonschema:"description=Severity of the vulnerability"`
	Overview          string            `json:"overview" jsonschema:"description=Summary of the issue and the fix strategy"`
	Steps             []RemediationStep `json:"steps" jsonschema:"description=Ordered remediation steps"`
	VerificationSteps []string          `json:"verification_steps,omitempty" jsonschema:"description=How to confirm the fix"`
	References        []string          `json:"references,omitempty" jsonschema:"description=Further reading"`
}

// RemediationPlaybookInput - input of the playbook flow (one finding per call)
type RemediationPlaybookInput struct {
	VulnerabilityFinding VulnerabilityFinding `json:"vulnerability_finding" jsonschema:"description=The vulnerable finding to remediate"`
}
