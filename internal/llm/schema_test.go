package llm

import (
	"encoding/json"
	"testing"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	"github.com/invopop/jsonschema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Output schemas are what genkit sends to the model, so the field names
// there must match the prompts.
func TestFlowOutputSchemas(t *testing.T) {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}

	tests := []struct {
		name   string
		target any
		fields []string
	}{
		{"url", &models.URLAnalysisOutput{}, []string{"findings", "overall_risk_assessment"}},
		{"server", &models.ServerSecurityAnalysisOutput{}, []string{"findings", "exposed_services"}},
		{"container", &models.ContainerAnalysisOutput{}, []string{"findings", "analyzed_components"}},
		{"report", &models.SecurityReportOutput{}, []string{"report"}},
		{"attack vectors", &models.AttackVectorsOutput{}, []string{"attack_vectors"}},
		{"playbook", &models.RemediationPlaybook{}, []string{"playbook_title", "steps", "verification_steps"}},
		{"assistant", &models.GeneralQueryOutput{}, []string{"ai_response"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			schema := reflector.Reflect(tt.target)
			require.NotNil(t, schema.Properties)
			for _, f := range tt.fields {
				_, ok := schema.Properties.Get(f)
				assert.True(t, ok, "schema must have %q", f)
			}
		})
	}
}

func TestFindingSchema_SeverityEnum(t *testing.T) {
	reflector := jsonschema.Reflector{DoNotReference: true}
	schema := reflector.Reflect(&models.VulnerabilityFinding{})

	severity, ok := schema.Properties.Get("severity")
	require.True(t, ok)
	assert.ElementsMatch(t, []any{"Critical", "High", "Medium", "Low", "Informational"}, severity.Enum)

	_, ok = schema.Properties.Get("is_vulnerable")
	assert.True(t, ok)
}

func TestFindingIgnoresExtraFields(t *testing.T) {
	raw := `{
		"is_vulnerable": true,
		"vulnerability": "SQL Injection",
		"severity": "Critical",
		"description": "String concatenation in query",
		"exploit_confidence": "high"
	}`

	var f models.VulnerabilityFinding
	require.NoError(t, json.Unmarshal([]byte(raw), &f))
	assert.True(t, f.IsVulnerable)

	remarshaled, err := json.Marshal(f)
	require.NoError(t, err)

	var m map[string]any
	require.NoError(t, json.Unmarshal(remarshaled, &m))
	assert.NotContains(t, m, "exploit_confidence")
}
