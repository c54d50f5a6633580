package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"syscall"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/use-agent/founderscope/loader"
	"github.com/use-agent/founderscope/pipeline"
	"github.com/use-agent/founderscope/store"
)

var (
	scrapeInputs   []string
	scrapeOut      string
	scrapeSQLite   string
	scrapeStrategy string
	scrapePick     string
	scrapeLimit    int
)

var scrapeCmd = &cobra.Command{
	Use:   "scrape",
	Short: "Scrape founder profiles for every company in the input files",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		applyScrapeFlags()

		records, err := loader.LoadFiles(scrapeInputs...)
		if err != nil {
			return eris.Wrap(err, "scrape: load input")
		}
		if scrapeLimit > 0 && len(records) > scrapeLimit {
			records = records[:scrapeLimit]
		}
		if len(records) == 0 {
			zap.L().Warn("no usable rows in input", zap.Strings("inputs", scrapeInputs))
			return nil
		}

		st, err := store.Load(cfg.Store.Path)
		if err != nil {
			return eris.Wrap(err, "scrape: load store")
		}

		save := func(res pipeline.Result) {
			if err := st.Save(cfg.Store.Path); err != nil {
				slog.Error("saving store failed", "company", res.Company.Name, "error", err)
			}
		}

		env, err := startLive(ctx, cfg, st, save)
		if err != nil {
			return eris.Wrap(err, "scrape: start session")
		}
		defer env.Close()

		sum := env.Scraper.Run(ctx, records)

		if err := st.Save(cfg.Store.Path); err != nil {
			return eris.Wrap(err, "scrape: save store")
		}
		if cfg.Store.SQLitePath != "" {
			if err := st.ExportSQLite(cmd.Context(), cfg.Store.SQLitePath); err != nil {
				return eris.Wrap(err, "scrape: sqlite export")
			}
		}

		fmt.Fprintf(cmd.OutOrStdout(), "run %s: %d companies, %d/%d founders resolved, %d session failures, %d skipped\n",
			sum.RunID, sum.Companies, sum.FoundersResolved, sum.Founders, sum.SessionFailures, sum.Skipped)
		if sum.Canceled {
			return eris.New("scrape: interrupted")
		}
		return nil
	},
}

// applyScrapeFlags overrides the loaded config with explicitly set flags.
func applyScrapeFlags() {
	if scrapeOut != "" {
		cfg.Store.Path = scrapeOut
	}
	if scrapeSQLite != "" {
		cfg.Store.SQLitePath = scrapeSQLite
	}
	if scrapeStrategy != "" {
		cfg.Navigation.Strategy = scrapeStrategy
	}
	if scrapePick != "" {
		cfg.Navigation.Pick = scrapePick
	}
}

func init() {
	scrapeCmd.Flags().StringArrayVar(&scrapeInputs, "input", nil, "input .csv or .xlsx file (repeatable)")
	scrapeCmd.Flags().StringVar(&scrapeOut, "out", "", "JSON store path (default from config)")
	scrapeCmd.Flags().StringVar(&scrapeSQLite, "sqlite", "", "also export the store to this SQLite file")
	scrapeCmd.Flags().StringVar(&scrapeStrategy, "strategy", "", "navigation strategy: roster or global")
	scrapeCmd.Flags().StringVar(&scrapePick, "pick", "", "result pick: first or best")
	scrapeCmd.Flags().IntVar(&scrapeLimit, "limit", 0, "scrape at most N companies (0 = all)")
	_ = scrapeCmd.MarkFlagRequired("input")
	rootCmd.AddCommand(scrapeCmd)
}
