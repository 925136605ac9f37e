package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"eightd/internal/format"
	"eightd/internal/knowledge"
	mcpserver "eightd/internal/mcp"
)

var experienceCmd = &cobra.Command{
	Use:   "experience",
	Short: "Manage the review experience knowledge base",
}

var experienceListCmd = &cobra.Command{
	Use:   "list [keyword]",
	Short: "List saved experiences, optionally filtered by keyword",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runExperienceList,
}

var experienceSaveFlags struct {
	key     string
	summary string
	note    string
}

var experienceSaveCmd = &cobra.Command{
	Use:   "save",
	Short: "Save a review experience",
	Args:  cobra.NoArgs,
	RunE:  runExperienceSave,
}

var experienceGuideCmd = &cobra.Command{
	Use:   "guide",
	Short: "Print the review guide: golden prompt, recent history and process",
	Args:  cobra.NoArgs,
	RunE:  runExperienceGuide,
}

func init() {
	f := experienceSaveCmd.Flags()
	f.StringVar(&experienceSaveFlags.key, "key", "", "experience id (generated when empty)")
	f.StringVar(&experienceSaveFlags.summary, "summary", "", "review conclusion summary (required)")
	f.StringVar(&experienceSaveFlags.note, "note", "", "expert note")
	_ = experienceSaveCmd.MarkFlagRequired("summary")

	experienceCmd.AddCommand(experienceListCmd)
	experienceCmd.AddCommand(experienceSaveCmd)
	experienceCmd.AddCommand(experienceGuideCmd)
}

func withStore(fn func(knowledge.Store) error) error {
	store, closeFn, err := cfg.OpenKnowledge()
	if err != nil {
		return err
	}
	defer closeFn()
	return fn(store)
}

func runExperienceList(cmd *cobra.Command, args []string) error {
	return withStore(func(store knowledge.Store) error {
		entries, err := store.Load()
		if err != nil {
			return fmt.Errorf("load experience: %w", err)
		}
		if len(args) == 1 {
			entries = knowledge.Search(entries, args[0])
		}
		out := cmd.OutOrStdout()
		if len(entries) == 0 {
			fmt.Fprintln(out, "No history found")
			return nil
		}
		tb := format.NewTable(format.ASCII, "Key", "Saved", "Summary", "Note")
		for _, e := range knowledge.Sorted(entries) {
			tb.Row(e.Key, e.Timestamp, format.Truncate(format.Cell(e.Summary), 50), format.Truncate(format.Cell(e.ExpertNote), 40))
		}
		fmt.Fprintln(out, tb.String())
		return nil
	})
}

func runExperienceSave(cmd *cobra.Command, _ []string) error {
	return withStore(func(store knowledge.Store) error {
		key, total, err := knowledge.Put(store, experienceSaveFlags.key, experienceSaveFlags.summary, experienceSaveFlags.note)
		if err != nil {
			return fmt.Errorf("save experience: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Experience saved: %s (%d total)\n", key, total)
		return nil
	})
}

func runExperienceGuide(cmd *cobra.Command, _ []string) error {
	golden, err := knowledge.LoadGoldenPrompt(cfg.Knowledge.GoldenPrompt)
	if err != nil {
		return err
	}
	return withStore(func(store knowledge.Store) error {
		text, err := mcpserver.ReviewPrompt(golden, store)
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), text)
		return nil
	})
}
