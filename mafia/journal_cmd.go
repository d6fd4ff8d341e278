package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/gosuda/portal-mafia/mafia/journal"
)

var flagJournalLimit int

var journalCmd = &cobra.Command{
	Use:   "journal",
	Short: "Print recent room journal entries",
	RunE:  runJournal,
}

func init() {
	journalCmd.Flags().IntVar(&flagJournalLimit, "limit", 50, "number of newest entries to print (0 for all)")
}

func runJournal(cmd *cobra.Command, args []string) error {
	if flagDataPath == "" {
		return fmt.Errorf("--data-path is required")
	}
	store, err := journal.Open(flagDataPath, nil)
	if err != nil {
		return err
	}
	defer store.Close()

	entries, err := store.LoadRecent(flagJournalLimit)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	for _, e := range entries {
		at := time.UnixMilli(e.TS).UTC().Format(time.RFC3339)
		fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", at, e.Room, e.Kind, e.Detail)
	}
	return nil
}
