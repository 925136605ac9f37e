package main

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"eightd/internal/report"
)

var packetCmd = &cobra.Command{
	Use:   "packet <file>",
	Short: "Print the Stage-2 logic-audit packet (D3-D7 text, gate result, instructions) as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runPacket,
}

func runPacket(cmd *cobra.Command, args []string) error {
	outcome, err := newAuditor().Review(args[0])
	if err != nil {
		return err
	}
	return writeJSON(cmd.OutOrStdout(), report.NewPacket(outcome))
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
