// Snapshot library commands: list, show, export, delete.
package main

import (
	"fmt"
	"os"
	"strconv"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"cotreflect/internal/snapshot"
)

var (
	snapshotsSearch string
	exportOut       string

	listHeader = lipgloss.NewStyle().Bold(true).Underline(true)
	listDim    = lipgloss.NewStyle().Faint(true)
)

var snapshotsCmd = &cobra.Command{
	Use:   "snapshots",
	Short: "List saved snapshots",
	RunE:  runSnapshotsList,
}

var snapshotCmd = &cobra.Command{
	Use:   "snapshot",
	Short: "Inspect or manage a single snapshot",
}

var snapshotShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a snapshot in full",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotShow,
}

var snapshotExportCmd = &cobra.Command{
	Use:   "export <id>",
	Short: "Export a snapshot as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotExport,
}

var snapshotDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a snapshot",
	Args:  cobra.ExactArgs(1),
	RunE:  runSnapshotDelete,
}

func init() {
	snapshotsCmd.Flags().StringVar(&snapshotsSearch, "search", "", "filter by substring over name, question, and tags")
	snapshotExportCmd.Flags().StringVar(&exportOut, "out", "", "write JSON to a file instead of stdout")

	snapshotCmd.AddCommand(snapshotShowCmd)
	snapshotCmd.AddCommand(snapshotExportCmd)
	snapshotCmd.AddCommand(snapshotDeleteCmd)
}

func openStore() (*snapshot.Store, error) {
	return snapshot.NewStore(cfg.DBPath)
}

func parseID(arg string) (int64, error) {
	id, err := strconv.ParseInt(arg, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid snapshot id %q: expected a numeric id", arg)
	}
	return id, nil
}

func runSnapshotsList(cmd *cobra.Command, args []string) error {
	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	summaries, err := store.List(snapshotsSearch)
	if err != nil {
		return err
	}

	if len(summaries) == 0 {
		fmt.Println("No snapshots found.")
		return nil
	}

	fmt.Println(listHeader.Render(fmt.Sprintf("%-5s %-24s %-26s %-18s %-53s %s",
		"ID", "Name", "Created At", "Model", "Prompt", "Tags")))
	for _, s := range summaries {
		fmt.Printf("%-5d %-24s %-26s %-18s %-53s %s\n",
			s.ID, clip(s.Name, 24), clip(s.CreatedAt, 26), clip(s.ModelName, 18), s.Preview, s.Tags)
	}
	fmt.Println(listDim.Render(fmt.Sprintf("Total: %d", len(summaries))))
	return nil
}

func runSnapshotShow(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	snap, found, err := store.GetByID(id)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("Snapshot %d not found.\n", id)
		return nil
	}

	fmt.Println(listHeader.Render(fmt.Sprintf("Snapshot %d: %s", snap.ID, snap.Name)))
	fmt.Printf("Created:  %s\nModel:    %s\nTags:     %s\n\n", snap.CreatedAt, snap.ModelName, snap.Tags)
	printSection("Question", snap.UserPrompt, false)
	if snap.InitialResponse != "" {
		printSection("Initial Response", snap.InitialResponse, false)
	}
	if snap.Thinking != "" {
		printSection("Thinking", snap.Thinking, false)
	}
	if snap.Reflection != "" {
		printSection("Reflection", snap.Reflection, false)
	}
	printSection("Final Answer", snap.FinalResponse, true)
	return nil
}

func runSnapshotExport(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	data, found, err := store.Export(id)
	if err != nil {
		return err
	}
	if !found {
		fmt.Printf("Snapshot %d not found.\n", id)
		return nil
	}

	if exportOut != "" {
		if err := os.WriteFile(exportOut, data, 0644); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Printf("Exported snapshot %d to %s\n", id, exportOut)
		return nil
	}
	fmt.Println(string(data))
	return nil
}

func runSnapshotDelete(cmd *cobra.Command, args []string) error {
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	store, err := openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	deleted, err := store.Delete(id)
	if err != nil {
		return err
	}
	if !deleted {
		fmt.Printf("Snapshot %d not found.\n", id)
		return nil
	}
	fmt.Printf("Deleted snapshot %d\n", id)
	return nil
}

func clip(text string, limit int) string {
	runes := []rune(text)
	if len(runes) <= limit {
		return text
	}
	return string(runes[:limit-1]) + "…"
}
