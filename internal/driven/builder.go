package driven

import (
	"fmt"
	"strings"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
)

// resultBuilder accumulates one analysis. It is local to a single
// PerformAnalysis call and never shared.
type resultBuilder struct {
	result *models.AnalysisResult
	errs   strings.Builder

	attempted int
	failed    int

	// category or report failure (partial); enrichment failures are minor
	stepFailed bool
}

func newResultBuilder() *resultBuilder {
	return &resultBuilder{
		result: &models.AnalysisResult{
			AllFindings: []models.VulnerabilityFinding{},
		},
	}
}

// addCategory merges a successful category output
func (b *resultBuilder) addCategory(out models.CategoryOutput) {
	b.attempted++
	b.result.AllFindings = append(b.result.AllFindings, out.CategoryFindings()...)
}

// failCategory records a failed category; its slot stays nil
func (b *resultBuilder) failCategory(c models.Category, err error) {
	b.attempted++
	b.failed++
	b.stepFailed = true
	b.record(c.Label(), err.Error())
}

func (b *resultBuilder) failReport(err error) {
	b.stepFailed = true
	b.record(LabelReport, err.Error())
}

// failMinor records an enrichment failure
func (b *resultBuilder) failMinor(label, message string) {
	b.record(label, message)
}

func (b *resultBuilder) record(label, message string) {
	message = strings.TrimRight(strings.TrimSpace(message), ".")
	fmt.Fprintf(&b.errs, "%s: %s. ", label, message)
}

// allFailed is true when categories were attempted and none succeeded
func (b *resultBuilder) allFailed() bool {
	return b.attempted > 0 && b.failed == b.attempted
}

func (b *resultBuilder) vulnerable() []models.VulnerabilityFinding {
	return models.VulnerableFindings(b.result.AllFindings)
}

func (b *resultBuilder) errors() string {
	return b.errs.String()
}

// outcome classifies the finished analysis
func (b *resultBuilder) outcome() string {
	switch {
	case b.stepFailed:
		return OutcomePartial
	case b.errs.Len() > 0:
		return OutcomeMinor
	default:
		return OutcomeSuccess
	}
}

// build finalises the error field
func (b *resultBuilder) build() *models.AnalysisResult {
	if b.errs.Len() > 0 {
		prefix := PrefixMinor
		if b.stepFailed {
			prefix = PrefixPartial
		}
		msg := prefix + b.errs.String()
		b.result.Error = &msg
	}
	return b.result
}
