package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"

	"github.com/sells-group/autodoc/internal/model"
)

var (
	logsJSON    bool
	logsProject string
	logsStatus  string
	logsLimit   int
)

var logsCmd = &cobra.Command{
	Use:   "logs",
	Short: "List report generation log entries",
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

		entries, err := st.ReadAll(ctx)
		if err != nil {
			return eris.Wrap(err, "read log")
		}

		entries = filterEntries(entries, logsProject, logsStatus, logsLimit)

		if logsJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(entries)
		}

		if len(entries) == 0 {
			fmt.Fprintln(os.Stderr, "No log entries found.")
			return nil
		}

		formatLogEntries(os.Stdout, entries)
		return nil
	},
}

func init() {
	logsCmd.Flags().BoolVar(&logsJSON, "json", false, "print entries as JSON")
	logsCmd.Flags().StringVar(&logsProject, "project", "", "filter by project name")
	logsCmd.Flags().StringVar(&logsStatus, "status", "", "filter by status (success, failure)")
	logsCmd.Flags().IntVar(&logsLimit, "limit", 0, "show only the most recent N entries")
	rootCmd.AddCommand(logsCmd)
}

// filterEntries applies project and status filters, then keeps the most
// recent limit entries when limit > 0. Order is preserved.
func filterEntries(entries []model.LogEntry, project, status string, limit int) []model.LogEntry {
	filtered := make([]model.LogEntry, 0, len(entries))
	for _, e := range entries {
		if project != "" && e.Project != project {
			continue
		}
		if status != "" && string(e.Status) != status {
			continue
		}
		filtered = append(filtered, e)
	}

	if limit > 0 && len(filtered) > limit {
		filtered = filtered[len(filtered)-limit:]
	}
	return filtered
}

// formatLogEntries writes a tabular list of log entries to w.
func formatLogEntries(out io.Writer, entries []model.LogEntry) {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	_, _ = fmt.Fprintln(w, "REPORT_ID\tPROJECT\tENGINEER\tCOMPONENTS\tSTATUS\tGENERATED\tOUTPUT")
	_, _ = fmt.Fprintln(w, "---------\t-------\t--------\t----------\t------\t---------\t------")

	for _, e := range entries {
		project := e.Project
		if len(project) > 30 {
			project = project[:27] + "..."
		}

		_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\t%s\t%s\n",
			e.ReportID,
			project,
			e.Engineer,
			e.ComponentCount,
			e.Status,
			e.GeneratedAt.Format("2006-01-02 15:04"),
			displayPath(e.OutputPath),
		)
	}
	_ = w.Flush()
}

// displayPath shows just the file name; failure entries have no output.
func displayPath(path string) string {
	if path == "" {
		return "-"
	}
	return filepath.Base(path)
}
