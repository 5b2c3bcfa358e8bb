package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"leadgen-engine/internal/export"
	"leadgen-engine/internal/runner"
)

var runFlags struct {
	target    int
	output    string
	json      bool
	markdown  bool
	noHistory bool
}

var runCmd = &cobra.Command{
	Use:   "run <query>",
	Short: "Acquire leads for one query and write them to CSV",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRun,
}

func init() {
	f := runCmd.Flags()
	f.IntVarP(&runFlags.target, "count", "n", 0, "number of leads wanted (default pipeline.target_count)")
	f.StringVarP(&runFlags.output, "output", "o", "", "CSV output path (default leads_<timestamp>.csv)")
	f.BoolVar(&runFlags.json, "json", false, "print leads as JSON instead of a table")
	f.BoolVar(&runFlags.markdown, "markdown", false, "print the table as Markdown")
	f.BoolVar(&runFlags.noHistory, "no-history", false, "do not record the run in the history db")
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	query := strings.TrimSpace(strings.Join(args, " "))
	target := runFlags.target
	if target == 0 {
		target = a.cfg.Pipeline.TargetCount
	}

	r := runner.New(nil, nil)
	if !runFlags.noHistory {
		db, err := a.openDB()
		if err != nil {
			return err
		}
		defer db.Close()
		r.DB = db.Pool
	}

	out, err := r.Run(cmd.Context(), a.cfg, runner.Request{Query: query, Target: target}, nil)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if runFlags.json {
		if err := export.WriteJSON(w, out.Leads); err != nil {
			return err
		}
	} else {
		mode := export.ASCII
		if runFlags.markdown {
			mode = export.Markdown
		}
		if err := export.RenderTable(w, out.Leads, mode); err != nil {
			return err
		}
	}

	path := runFlags.output
	if path == "" {
		path = export.Filename(time.Now())
	}
	if err := export.SaveCSV(path, out.Leads); err != nil {
		return fmt.Errorf("write csv: %w", err)
	}

	s := export.Summarize(out.Leads)
	fmt.Fprintf(cmd.ErrOrStderr(), "%d/%d leads (relevant %d, avg confidence %.2f, %d attempts) -> %s\n",
		s.Total, target, s.Relevant, s.MeanConfidence, out.Run.Attempts, path)
	return nil
}
