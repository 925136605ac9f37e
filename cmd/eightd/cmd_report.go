package main

import (
	"fmt"
	"os"

	"github.com/charmbracelet/glamour"
	"github.com/spf13/cobra"

	"eightd/internal/report"
)

var reportFlags struct {
	output     string
	title      string
	logicAudit string
	save       bool
	pretty     bool
}

var reportCmd = &cobra.Command{
	Use:   "report <file>",
	Short: "Render the Markdown review report for a report",
	Long: `Renders the review report. By default the Markdown is printed to stdout.

With --save the report is written as 8D_Review_<name>_<timestamp>.md next to the
source (or in report.output_dir). When report.require_logic_audit is set and
no --logic-audit file is given, nothing is written and the logic-audit packet
is printed instead.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func init() {
	f := reportCmd.Flags()
	f.StringVarP(&reportFlags.output, "output", "o", "", "write the report to this file instead of stdout")
	f.StringVar(&reportFlags.title, "title", "", "report title (default report.title from config)")
	f.StringVar(&reportFlags.logicAudit, "logic-audit", "", "Markdown file with the Stage-2 logic audit to merge")
	f.BoolVar(&reportFlags.save, "save", false, "save as 8D_Review_<name>_<timestamp>.md")
	f.BoolVar(&reportFlags.pretty, "pretty", false, "render the Markdown for the terminal")
}

func runReport(cmd *cobra.Command, args []string) error {
	outcome, err := newAuditor().Review(args[0])
	if err != nil {
		return err
	}
	logic := ""
	if reportFlags.logicAudit != "" {
		data, err := os.ReadFile(reportFlags.logicAudit)
		if err != nil {
			return fmt.Errorf("read logic audit: %w", err)
		}
		logic = string(data)
	}

	r := newRenderer(reportFlags.title)
	out := cmd.OutOrStdout()

	if reportFlags.save {
		res, err := r.Save(outcome, report.SaveOptions{
			LogicAudit:        logic,
			RequireLogicAudit: cfg.Report.RequireLogicAudit,
			OutputDir:         cfg.Report.OutputDir,
		})
		if err != nil {
			return err
		}
		if res.Status == report.StatusNeedsLogicAudit {
			fmt.Fprintln(cmd.ErrOrStderr(), res.Message)
			return writeJSON(out, res.Packet)
		}
		fmt.Fprintf(out, "Saved %s\n", res.SavedPath)
		return nil
	}

	md := r.Render(outcome)
	if logic != "" {
		md = report.MergeLogicAudit(md, logic)
	}
	if reportFlags.output != "" {
		if err := os.WriteFile(reportFlags.output, []byte(md), 0o644); err != nil {
			return fmt.Errorf("write report: %w", err)
		}
		fmt.Fprintf(out, "Wrote %s\n", reportFlags.output)
		return nil
	}
	if reportFlags.pretty {
		tr, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(80),
		)
		if err != nil {
			return fmt.Errorf("terminal renderer: %w", err)
		}
		if md, err = tr.Render(md); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
	}
	fmt.Fprint(out, md)
	return nil
}
