package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eightd/internal/display"
	"eightd/internal/format"
	"eightd/internal/sections"
)

var readFlags struct {
	json bool
}

var readCmd = &cobra.Command{
	Use:   "read <file>",
	Short: "Flatten a report and show its D1-D8 sections",
	Args:  cobra.ExactArgs(1),
	RunE:  runRead,
}

func init() {
	readCmd.Flags().BoolVar(&readFlags.json, "json", false, "print the document as JSON")
}

func runRead(cmd *cobra.Command, args []string) error {
	doc, err := newAuditor().Read(args[0])
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if readFlags.json {
		return writeJSON(out, doc)
	}

	fmt.Fprintf(out, "File:       %s\n", doc.FilePath)
	fmt.Fprintf(out, "Paragraphs: %d\n\n", doc.ParagraphCount)
	tb := format.NewTable(format.ASCII, "Section", "Chars", "Content")
	tb.AlignRight(2)
	for _, l := range sections.Labels {
		text := doc.Sections.Get(l)
		content := "-"
		if text != "" {
			content = format.Truncate(format.Cell(text), 60)
		}
		tb.Row(display.SectionWithCode(string(l)), len([]rune(text)), content)
	}
	fmt.Fprintln(out, tb.String())
	return nil
}
