package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/autodoc/internal/model"
)

var statsJSON bool

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregate statistics over the run log",
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck
		if err := st.Migrate(ctx); err != nil {
			return err
		}

		stats, err := st.Stats(ctx)
		if err != nil {
			return eris.Wrap(err, "compute stats")
		}

		if statsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(stats)
		}

		formatStats(os.Stdout, stats)
		return nil
	},
}

func init() {
	statsCmd.Flags().BoolVar(&statsJSON, "json", false, "print stats as JSON")
	rootCmd.AddCommand(statsCmd)
}

// formatStats writes aggregate stats to w.
func formatStats(out io.Writer, s *model.Stats) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintf(w, "Total reports:\t%d\n", s.TotalReports)
	_, _ = fmt.Fprintf(w, "Succeeded:\t%d\n", s.Succeeded)
	_, _ = fmt.Fprintf(w, "Failed:\t%d\n", s.Failed)
	_, _ = fmt.Fprintf(w, "Success rate:\t%.1f%%\n", s.SuccessRate*100)
	_, _ = fmt.Fprintf(w, "Components documented:\t%d\n", s.TotalComponents)

	if len(s.ByProject) > 0 {
		_, _ = fmt.Fprintln(w, "\nBy project:")
		for _, p := range s.ByProject {
			_, _ = fmt.Fprintf(w, "  %s:\t%d\n", p.Project, p.Reports)
		}
	}

	if len(s.ByDay) > 0 {
		_, _ = fmt.Fprintln(w, "\nBy day:")
		for _, d := range s.ByDay {
			_, _ = fmt.Fprintf(w, "  %s:\t%d\n", d.Day, d.Reports)
		}
	}

	_ = w.Flush()
}
