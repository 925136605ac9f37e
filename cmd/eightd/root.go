package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eightd/internal/audit"
	"eightd/internal/config"
	"eightd/internal/logging"
	"eightd/internal/report"
)

// version is set at build time via -ldflags.
var version = "dev"

var rootFlags struct {
	configPath string
	logLevel   string
	logFormat  string
}

// cfg is resolved once per invocation by the root PersistentPreRunE.
var cfg = config.Default()

var rootCmd = &cobra.Command{
	Use:   "eightd",
	Short: "Deterministic review of 8D corrective-action reports",
	Long: "eightd audits 8D reports (D1-D8) against fixed D3-D7 criteria,\n" +
		"renders Markdown review reports and serves the review tools over MCP.",
	CompletionOptions: cobra.CompletionOptions{
		HiddenDefaultCmd: true,
	},
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setup,
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&rootFlags.configPath, "config", "", "config file (YAML or JSON); defaults to $"+config.EnvConfig)
	pf.StringVar(&rootFlags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&rootFlags.logFormat, "log-format", "", "log format: text, json")

	rootCmd.AddCommand(readCmd)
	rootCmd.AddCommand(reviewCmd)
	rootCmd.AddCommand(reportCmd)
	rootCmd.AddCommand(packetCmd)
	rootCmd.AddCommand(experienceCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.Version = version
}

func setup(cmd *cobra.Command, _ []string) error {
	c, err := config.Resolve(config.PathFromEnv(rootFlags.configPath))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if rootFlags.logLevel != "" {
		c.Log.Level = rootFlags.logLevel
	}
	if rootFlags.logFormat != "" {
		c.Log.Format = rootFlags.logFormat
	}
	level, err := logging.ParseLevel(c.Log.Level)
	if err != nil {
		return err
	}
	if !logging.ValidFormat(c.Log.Format) {
		return fmt.Errorf("unknown log format %q", c.Log.Format)
	}
	logging.Init(level, c.Log.Format, cmd.ErrOrStderr())
	cfg = c
	return nil
}

func newAuditor() *audit.Auditor {
	return audit.New(cfg.Mode())
}

func newRenderer(title string) *report.Renderer {
	if title == "" {
		title = cfg.Report.Title
	}
	return &report.Renderer{
		Title:                title,
		MaxLength:            cfg.Evidence.MaxLength,
		ContainmentMaxLength: cfg.Evidence.ContainmentMaxLength,
	}
}
