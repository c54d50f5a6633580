package main

import (
	"io"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/use-agent/founderscope/models"
	"github.com/use-agent/founderscope/store"
)

var showData string

var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored companies as a table",
	RunE: func(cmd *cobra.Command, args []string) error {
		if showData != "" {
			cfg.Store.Path = showData
		}
		st, err := store.Load(cfg.Store.Path)
		if err != nil {
			return eris.Wrap(err, "show: load store")
		}
		renderCompanies(cmd.OutOrStdout(), st)
		return nil
	},
}

// renderCompanies writes one row per founder, grouped by company name.
func renderCompanies(w io.Writer, st *store.Store) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.AppendHeader(table.Row{"Company", "Stage", "Founder", "Connections", "Location", "Education", "Experience"})

	for _, name := range st.Names() {
		c, _ := st.Get(name)
		if len(c.Founders) == 0 {
			t.AppendRow(table.Row{name, c.LastStage, "", "", "", "", ""})
			continue
		}
		for _, f := range c.Founders {
			t.AppendRow(table.Row{
				name,
				c.LastStage,
				f.Name,
				deref(f.Connections),
				deref(f.Location),
				schools(f.Education),
				positions(f.Experience),
			})
		}
		t.AppendSeparator()
	}

	t.SetStyle(table.StyleRounded)
	t.Render()
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func schools(ed []models.Education) string {
	out := make([]string, len(ed))
	for i, e := range ed {
		out[i] = e.School
	}
	return strings.Join(out, "\n")
}

func positions(ex []models.Experience) string {
	out := make([]string, len(ex))
	for i, e := range ex {
		if e.Title != nil {
			out[i] = *e.Title + " @ " + e.CompanyName
		} else {
			out[i] = e.CompanyName
		}
	}
	return strings.Join(out, "\n")
}

func init() {
	showCmd.Flags().StringVar(&showData, "data", "", "JSON store path (default from config)")
	rootCmd.AddCommand(showCmd)
}
