package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"eightd/internal/format"
	"eightd/internal/inbox"
	"eightd/internal/logging"
)

var watchFlags struct {
	debounce  time.Duration
	outputDir string
}

var watchCmd = &cobra.Command{
	Use:   "watch <dir>",
	Short: "Review reports dropped into a directory and save review reports",
	Long: `Watches a directory for new or changed .docx, .txt and .md reports.
Each settled file is reviewed and an 8D_Review_<name>_<timestamp>.md report is saved
next to it (or in --output-dir). Unattended saves never wait for a logic audit.
Runs until interrupted.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.DurationVar(&watchFlags.debounce, "debounce", 0, "settle time after the last write (default watch.debounce from config)")
	f.StringVar(&watchFlags.outputDir, "output-dir", "", "directory for review reports (default report.output_dir)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	debounce := watchFlags.debounce
	if debounce <= 0 {
		debounce = cfg.Watch.Debounce.Std()
	}
	outputDir := watchFlags.outputDir
	if outputDir == "" {
		outputDir = cfg.Report.OutputDir
	}

	handler := inbox.ReviewAndSave(newAuditor(), newRenderer(""), outputDir)
	w, err := inbox.New(args[0], debounce, handler)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	start := time.Now()
	if err := w.Start(ctx); err != nil {
		w.Stop()
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl-C to stop)\n", args[0])

	select {
	case <-ctx.Done():
	case <-w.Done():
	}
	w.Stop()

	st := w.Stats()
	logging.New("watch").Info("watch stopped", "uptime", format.FmtDuration(time.Since(start)), "reviewed", st.Reviewed)
	fmt.Fprintf(cmd.OutOrStdout(), "Reviewed %d (approved %d, rejected %d, errors %d)\n",
		st.Reviewed, st.Approved, st.Rejected, st.Errors)
	return nil
}
