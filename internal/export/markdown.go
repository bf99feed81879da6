package export

import (
	"fmt"
	"sort"
	"strings"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
)

// MarkdownFormatter renders findings grouped by severity
type MarkdownFormatter struct{}

func (MarkdownFormatter) Name() string { return "markdown" }

var severityOrder = []string{
	models.SeverityCritical,
	models.SeverityHigh,
	models.SeverityMedium,
	models.SeverityLow,
	models.SeverityInformational,
	"Other",
}

func severityGroup(s string) string {
	rank := models.SeverityRank(s)
	if rank >= len(severityOrder)-1 {
		return "Other"
	}
	return severityOrder[rank]
}

func (MarkdownFormatter) Format(findings []models.VulnerabilityFinding) ([]byte, error) {
	var b strings.Builder

	b.WriteString("# Security Findings\n\n")
	if len(findings) == 0 {
		b.WriteString(msgNothingToExport + "\n")
		return []byte(b.String()), nil
	}

	groups := make(map[string][]models.VulnerabilityFinding)
	for _, f := range findings {
		g := severityGroup(f.Severity)
		groups[g] = append(groups[g], f)
	}

	// Summary
	b.WriteString("## Summary\n\n")
	b.WriteString("| Severity | Count |\n")
	b.WriteString("|----------|-------|\n")
	for _, sev := range severityOrder {
		if n := len(groups[sev]); n > 0 {
			fmt.Fprintf(&b, "| %s | %d |\n", sev, n)
		}
	}
	fmt.Fprintf(&b, "\n**Total findings:** %d | **Vulnerable:** %d\n\n",
		len(findings), len(models.VulnerableFindings(findings)))

	for _, sev := range severityOrder {
		group := groups[sev]
		if len(group) == 0 {
			continue
		}
		// Vulnerable first, original order otherwise
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].IsVulnerable && !group[j].IsVulnerable
		})

		fmt.Fprintf(&b, "## %s (%d)\n\n", sev, len(group))
		for _, f := range group {
			writeFinding(&b, f)
		}
	}

	return []byte(b.String()), nil
}

func writeFinding(b *strings.Builder, f models.VulnerabilityFinding) {
	status := "not vulnerable"
	if f.IsVulnerable {
		status = "vulnerable"
	}

	fmt.Fprintf(b, "### %s\n\n", f.Vulnerability)
	fmt.Fprintf(b, "- **Status:** %s\n", status)
	if f.Source != "" {
		fmt.Fprintf(b, "- **Category:** %s\n", f.Source.Label())
	}
	if f.AffectedComponent != "" {
		fmt.Fprintf(b, "- **Affected component:** `%s`\n", f.AffectedComponent)
	}
	if f.CVSSScore > 0 {
		fmt.Fprintf(b, "- **CVSS:** %.1f", f.CVSSScore)
		if f.CVSSVector != "" {
			fmt.Fprintf(b, " (`%s`)", f.CVSSVector)
		}
		b.WriteString("\n")
	}
	b.WriteString("\n")

	if f.Description != "" {
		b.WriteString(f.Description + "\n\n")
	}
	if f.Evidence != "" {
		fmt.Fprintf(b, "**Evidence:**\n\n```\n%s\n```\n\n", f.Evidence)
	}
	if f.BusinessImpact != "" {
		fmt.Fprintf(b, "**Business impact:** %s\n\n", f.BusinessImpact)
	}
	if f.Remediation != "" {
		fmt.Fprintf(b, "**Remediation:** %s\n\n", f.Remediation)
	}
	if len(f.References) > 0 {
		b.WriteString("**References:**\n\n")
		for _, r := range f.References {
			fmt.Fprintf(b, "- %s\n", r)
		}
		b.WriteString("\n")
	}
}
