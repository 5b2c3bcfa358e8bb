package main

import (
	"fmt"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"leadgen-engine/internal/export"
	"leadgen-engine/internal/store"
)

var historyFlags struct {
	limit int
	days  int
}

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Browse past runs",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent runs",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		db, err := a.openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := store.ListRuns(cmd.Context(), db.Pool, historyFlags.limit)
		if err != nil {
			return err
		}

		t := table.NewWriter()
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"id", "started", "query", "status", "attempts", "leads"})
		for _, r := range runs {
			t.AppendRow(table.Row{r.ID, r.StartedAt.Local().Format(time.DateTime), r.Query, r.Status, r.Attempts, r.Leads})
		}
		fmt.Fprintln(cmd.OutOrStdout(), t.Render())
		return nil
	},
}

var historyShowCmd = &cobra.Command{
	Use:   "show <run-id>",
	Short: "Print the leads of a past run",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		db, err := a.openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		set, err := store.GetLeads(cmd.Context(), db.Pool, args[0])
		if err != nil {
			return fmt.Errorf("run %s: %w", args[0], err)
		}
		return export.RenderTable(cmd.OutOrStdout(), set, export.ASCII)
	},
}

var historyPruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete runs older than --days",
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp()
		if err != nil {
			return err
		}
		db, err := a.openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		cutoff := time.Now().AddDate(0, 0, -historyFlags.days)
		n, err := store.CleanupOldRuns(cmd.Context(), db.Pool, cutoff)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "deleted %d runs\n", n)
		return nil
	},
}

func init() {
	historyListCmd.Flags().IntVar(&historyFlags.limit, "limit", 20, "runs to show")
	historyPruneCmd.Flags().IntVar(&historyFlags.days, "days", 90, "keep runs from the last N days")

	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyShowCmd)
	historyCmd.AddCommand(historyPruneCmd)
}
