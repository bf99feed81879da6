package export

import (
	"encoding/json"
	"math"
	"strings"
	"testing"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleFindings() []models.VulnerabilityFinding {
	return []models.VulnerabilityFinding{
		{
			Source:        models.CategoryServer,
			IsVulnerable:  false,
			Vulnerability: "Banner disclosure",
			Severity:      models.SeverityLow,
		},
		{
			Source:            models.CategorySAST,
			IsVulnerable:      true,
			Vulnerability:     "SQL Injection",
			Severity:          models.SeverityCritical,
			Description:       "User input concatenated into query.",
			AffectedComponent: "GetUser",
			Evidence:          `"SELECT * FROM users WHERE id = " + id`,
			CVSSScore:         9.8,
			CVSSVector:        "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H",
			References:        []string{"CWE-89"},
		},
	}
}

func TestExportFindings_Empty(t *testing.T) {
	for _, in := range [][]models.VulnerabilityFinding{nil, {}} {
		out := ExportFindings(in)
		assert.Equal(t, "{\n  \"message\": \"No findings to export.\"\n}", out)
	}
}

func TestExportFindings_JSON(t *testing.T) {
	findings := sampleFindings()
	out := ExportFindings(findings)

	assert.True(t, strings.HasPrefix(out, "[\n  {\n    \"source\": \"server\""), "two-space indentation")

	var back []models.VulnerabilityFinding
	require.NoError(t, json.Unmarshal([]byte(out), &back))
	assert.Equal(t, findings, back)
}

func TestExportFindings_Failure(t *testing.T) {
	out := ExportFindings([]models.VulnerabilityFinding{{Vulnerability: "x", CVSSScore: math.NaN()}})

	var envelope map[string]string
	require.NoError(t, json.Unmarshal([]byte(out), &envelope))
	assert.Equal(t, "Failed to generate the JSON file.", envelope["error"])
	assert.Contains(t, envelope["details"], "NaN")
}

func TestGet(t *testing.T) {
	f, err := Get("")
	require.NoError(t, err)
	assert.Equal(t, "json", f.Name())

	f, err = Get("Markdown")
	require.NoError(t, err)
	assert.Equal(t, "markdown", f.Name())

	_, err = Get("pdf")
	assert.ErrorContains(t, err, "supported: json, markdown")
}

func TestMarkdownFormatter(t *testing.T) {
	out, err := MarkdownFormatter{}.Format(sampleFindings())
	require.NoError(t, err)
	md := string(out)

	assert.Contains(t, md, "| Critical | 1 |")
	assert.Contains(t, md, "| Low | 1 |")
	assert.NotContains(t, md, "| High |")
	assert.Contains(t, md, "**Total findings:** 2 | **Vulnerable:** 1")
	assert.Contains(t, md, "- **CVSS:** 9.8 (`CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H`)")
	assert.Contains(t, md, "- **Category:** SAST")
	assert.Contains(t, md, "- CWE-89")
	assert.Less(t, strings.Index(md, "## Critical"), strings.Index(md, "## Low"), "critical section comes first")
}

func TestMarkdownFormatter_Empty(t *testing.T) {
	out, err := MarkdownFormatter{}.Format(nil)
	require.NoError(t, err)
	assert.Contains(t, string(out), "No findings to export.")
}

func TestMarkdownFormatter_UnknownSeverity(t *testing.T) {
	out, err := MarkdownFormatter{}.Format([]models.VulnerabilityFinding{{Vulnerability: "odd", Severity: "Severe-ish"}})
	require.NoError(t, err)
	assert.Contains(t, string(out), "## Other (1)")
}
