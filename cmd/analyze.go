package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/BetterCallFirewall/SecurityCenter/internal/config"
	"github.com/BetterCallFirewall/SecurityCenter/internal/export"
	"github.com/BetterCallFirewall/SecurityCenter/internal/models"
	"github.com/spf13/cobra"
)

func analyzeCmd() *cobra.Command {
	var (
		inputFlag   string
		premiumFlag bool
		formatFlag  string
	)

	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run one analysis from a JSON request file",
		Long: `Run a single analysis and print the result. The input is a JSON
AnalysisRequest (see GET /api/schema/analysis_request); "-" reads stdin.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := export.Get(formatFlag)
			if err != nil {
				return err
			}

			var req models.AnalysisRequest
			if err := readJSON(inputFlag, cmd.InOrStdin(), &req); err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			orchestrator, err := buildOrchestrator(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			result := orchestrator.PerformAnalysis(cmd.Context(), req, premiumFlag)
			return printResult(cmd.OutOrStdout(), formatter, result)
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "-", "analysis request JSON file (- for stdin)")
	cmd.Flags().BoolVar(&premiumFlag, "premium", false, "run premium enrichment (attack vectors, playbooks)")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "json", "output format: "+strings.Join(export.Names(), ", "))
	return cmd
}

// printResult writes the whole result as JSON, or report plus findings as markdown
func printResult(w io.Writer, formatter export.Formatter, result *models.AnalysisResult) error {
	if formatter.Name() == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	}

	if msg := result.ErrorMessage(); msg != "" {
		fmt.Fprintf(w, "> **Error:** %s\n\n", msg)
	}
	if result.ReportText != nil {
		fmt.Fprintf(w, "%s\n\n", *result.ReportText)
	}
	data, err := formatter.Format(result.AllFindings)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

func askCmd() *cobra.Command {
	var contextFlag string

	cmd := &cobra.Command{
		Use:   "ask <question>",
		Short: "Ask the security assistant a question",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
			orchestrator, err := buildOrchestrator(cmd.Context(), cfg)
			if err != nil {
				return err
			}

			reply := orchestrator.AskAssistant(cmd.Context(), models.GeneralQueryInput{
				UserQuery: strings.Join(args, " "),
				Context:   contextFlag,
			})
			fmt.Fprintln(cmd.OutOrStdout(), reply)
			return nil
		},
	}

	cmd.Flags().StringVar(&contextFlag, "context", "", "extra context for the question")
	return cmd
}

func exportCmd() *cobra.Command {
	var (
		inputFlag  string
		formatFlag string
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export findings to JSON or Markdown",
		Long: `Export a list of findings. The input is either a JSON array of findings
or a full analysis result, in which case all_findings is exported.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			formatter, err := export.Get(formatFlag)
			if err != nil {
				return err
			}

			var raw json.RawMessage
			if err := readJSON(inputFlag, cmd.InOrStdin(), &raw); err != nil {
				return err
			}
			findings, err := decodeFindings(raw)
			if err != nil {
				return err
			}

			data, err := formatter.Format(findings)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(data))
			return err
		},
	}

	cmd.Flags().StringVarP(&inputFlag, "input", "i", "-", "findings or analysis result JSON file (- for stdin)")
	cmd.Flags().StringVarP(&formatFlag, "format", "f", "json", "output format: "+strings.Join(export.Names(), ", "))
	return cmd
}

func decodeFindings(raw json.RawMessage) ([]models.VulnerabilityFinding, error) {
	trimmed := strings.TrimSpace(string(raw))
	if strings.HasPrefix(trimmed, "[") {
		var findings []models.VulnerabilityFinding
		if err := json.Unmarshal(raw, &findings); err != nil {
			return nil, fmt.Errorf("decoding findings: %w", err)
		}
		return findings, nil
	}

	var result models.AnalysisResult
	if err := json.Unmarshal(raw, &result); err != nil {
		return nil, fmt.Errorf("decoding analysis result: %w", err)
	}
	return result.AllFindings, nil
}
