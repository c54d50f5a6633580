package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/use-agent/founderscope/extract"
	"github.com/use-agent/founderscope/models"
	"github.com/use-agent/founderscope/snapshot"
)

var (
	extractHTML string
	extractName string
)

var extractCmd = &cobra.Command{
	Use:   "extract",
	Short: "Extract a founder from a saved profile page",
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(extractHTML)
		if err != nil {
			return eris.Wrapf(err, "extract: open %s", extractHTML)
		}
		defer f.Close()

		doc, err := snapshot.Parse(f)
		if err != nil {
			return eris.Wrap(err, "extract: parse html")
		}

		cfg.Extract.LazyLoadPause = 0
		cfg.Extract.LazyLoadTimeout = 0
		ex, err := extract.New(cfg.Extract)
		if err != nil {
			return eris.Wrap(err, "extract: layout")
		}

		founder, report := ex.Profile(cmd.Context(), doc, extractName)
		out := struct {
			Founder *models.Founder `json:"founder"`
			Missing []string        `json:"missing,omitempty"`
		}{Founder: founder}
		for _, m := range report.Misses {
			out.Missing = append(out.Missing, string(m.Field))
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	},
}

func init() {
	extractCmd.Flags().StringVar(&extractHTML, "html", "", "saved profile HTML file")
	extractCmd.Flags().StringVar(&extractName, "name", "", "founder name to record")
	_ = extractCmd.MarkFlagRequired("html")
	_ = extractCmd.MarkFlagRequired("name")
	rootCmd.AddCommand(extractCmd)
}
