package main

import (
	"os"

	"github.com/spf13/cobra"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "security-center",
		Short: "AI-assisted security analysis service",
		Long: `Security Center runs AI security analyses over URLs, servers, databases,
code, cloud and container configurations, dependencies and networks, and
produces a consolidated report with optional premium enrichment.`,
		SilenceUsage: true,
	}

	cmd.AddCommand(serveCmd(), analyzeCmd(), askCmd(), exportCmd())
	return cmd
}
