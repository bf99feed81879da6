package export

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"
	"strings"

	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
)

const (
	msgNothingToExport = "No findings to export."
	msgExportFailed    = "Failed to generate the JSON file."
)

// ExportFindings serialises findings as indented JSON. It never fails:
// an empty list yields a message object, a serialisation error an error object.
func ExportFindings(findings []models.VulnerabilityFinding) string {
	if len(findings) == 0 {
		return mustIndent(map[string]string{"message": msgNothingToExport})
	}

	data, err := json.MarshalIndent(findings, "", "  ")
	if err != nil {
		log.Printf("❌ Failed to export findings as JSON: %v", err)
		return mustIndent(map[string]string{
			"error":   msgExportFailed,
			"details": err.Error(),
		})
	}
	return string(data)
}

// string maps cannot fail to marshal
func mustIndent(v map[string]string) string {
	data, _ := json.MarshalIndent(v, "", "  ")
	return string(data)
}

// Formatter renders a list of findings
type Formatter interface {
	Name() string
	Format(findings []models.VulnerabilityFinding) ([]byte, error)
}

var formatters = map[string]Formatter{
	"json":     JSONFormatter{},
	"markdown": MarkdownFormatter{},
}

// Get returns the formatter registered under name ("" means json)
func Get(name string) (Formatter, error) {
	if name == "" {
		name = "json"
	}
	f, ok := formatters[strings.ToLower(name)]
	if !ok {
		return nil, fmt.Errorf("unknown export format %q (supported: %s)", name, strings.Join(Names(), ", "))
	}
	return f, nil
}

// Names lists the supported formats
func Names() []string {
	names := make([]string, 0, len(formatters))
	for n := range formatters {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// JSONFormatter wraps ExportFindings
type JSONFormatter struct{}

func (JSONFormatter) Name() string { return "json" }

func (JSONFormatter) Format(findings []models.VulnerabilityFinding) ([]byte, error) {
	return []byte(ExportFindings(findings)), nil
}
