package main

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"leadgen-engine/internal/config"
	"leadgen-engine/internal/export"
	"leadgen-engine/internal/logging"
	"leadgen-engine/internal/runner"
)

var batchFlags struct {
	file     string
	parallel int
	outDir   string
	target   int
}

var batchCmd = &cobra.Command{
	Use:   "batch",
	Short: "Run one isolated acquisition per query in a file",
	Long: `Reads one query per line (blank lines and # comments are skipped) and
runs each through its own pipeline and browser session. Up to --parallel
queries run at once; one failing query does not stop the others.`,
	RunE: runBatch,
}

func init() {
	f := batchCmd.Flags()
	f.StringVarP(&batchFlags.file, "file", "f", "", "file with one query per line (required)")
	f.IntVar(&batchFlags.parallel, "parallel", 1, "queries to run concurrently")
	f.StringVarP(&batchFlags.outDir, "out-dir", "d", ".", "directory for the CSV files")
	f.IntVarP(&batchFlags.target, "count", "n", 0, "leads wanted per query (default pipeline.target_count)")
	_ = batchCmd.MarkFlagRequired("file")
}

type batchResult struct {
	query string
	path  string
	leads int
	err   error
}

func runBatch(cmd *cobra.Command, _ []string) error {
	a, err := loadApp()
	if err != nil {
		return err
	}

	queries, err := readQueriesFile(batchFlags.file)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(batchFlags.outDir, 0o755); err != nil {
		return err
	}

	db, err := a.openDB()
	if err != nil {
		return err
	}
	defer db.Close()

	target := batchFlags.target
	if target == 0 {
		target = a.cfg.Pipeline.TargetCount
	}
	parallel := max(batchFlags.parallel, 1)

	log := logging.New("batch")
	r := runner.New(db.Pool, nil)

	var mu sync.Mutex
	results := make([]batchResult, len(queries))

	g, gctx := errgroup.WithContext(cmd.Context())
	g.SetLimit(parallel)
	for i, q := range queries {
		g.Go(func() error {
			cfg := isolate(a.cfg, i, parallel)
			res := batchResult{query: q}

			out, err := r.Run(gctx, cfg, runner.Request{Query: q, Target: target}, nil)
			if err != nil {
				log.Warn("query failed", "query", q, "err", err)
				res.err = err
			} else {
				res.path = filepath.Join(batchFlags.outDir, batchFilename(i, q))
				res.leads = out.Leads.Len()
				if err := export.SaveCSV(res.path, out.Leads); err != nil {
					res.err = fmt.Errorf("write csv: %w", err)
				}
			}

			mu.Lock()
			results[i] = res
			mu.Unlock()
			// a failed query is reported, not propagated
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	failed := 0
	for _, res := range results {
		if res.err != nil {
			failed++
			fmt.Fprintf(w, "FAIL  %-40s %s: %v\n", res.query, label(res.err), res.err)
			continue
		}
		fmt.Fprintf(w, "OK    %-40s %d leads -> %s\n", res.query, res.leads, res.path)
	}
	if err := cmd.Context().Err(); err != nil {
		return err
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d queries failed", failed, len(queries))
	}
	return nil
}

func readQueriesFile(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	queries, err := readQueries(f)
	if err != nil {
		return nil, err
	}
	if len(queries) == 0 {
		return nil, fmt.Errorf("%s has no queries", path)
	}
	return queries, nil
}

func readQueries(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		out = append(out, line)
	}
	return out, sc.Err()
}

// isolate gives each concurrent query its own browser profile so runs never
// contend for one profile lock.
func isolate(cfg config.Config, i, parallel int) config.Config {
	if parallel > 1 && cfg.Fetch.ProfileDir != "" {
		cfg.Fetch.ProfileDir = filepath.Join(cfg.Fetch.ProfileDir, fmt.Sprintf("query-%02d", i+1))
	}
	return cfg
}

var nonSlug = regexp.MustCompile(`[^a-z0-9]+`)

func batchFilename(i int, query string) string {
	slug := strings.Trim(nonSlug.ReplaceAllString(strings.ToLower(query), "-"), "-")
	if len(slug) > 40 {
		slug = strings.TrimRight(slug[:40], "-")
	}
	if slug == "" {
		slug = "query"
	}
	return fmt.Sprintf("leads_%02d_%s.csv", i+1, slug)
}
