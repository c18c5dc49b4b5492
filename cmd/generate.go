package main

import (
	"encoding/json"
	"os"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/autodoc/internal/pipeline"
	"github.com/sells-group/autodoc/internal/render"
)

var (
	generateFile     string
	generateProject  string
	generateEngineer string
	generateReportID string
	generateStrict   bool
)

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Generate a PDF report from a single component spec",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		if err := st.Migrate(ctx); err != nil {
			return eris.Wrap(err, "migrate store")
		}

		strict := cfg.Pipeline.Strict()
		if cmd.Flags().Changed("strict") {
			strict = generateStrict
		}

		p := pipeline.New(st, render.New(cfg.Output.Dir), pipeline.Options{Strict: strict})

		result, err := p.Run(ctx, pipeline.Request{
			SpecPath: generateFile,
			Project:  generateProject,
			Engineer: generateEngineer,
			ReportID: generateReportID,
		})
		if err != nil {
			return eris.Wrap(err, "generate report")
		}

		zap.L().Info("report generated",
			zap.String("report_id", result.ReportID),
			zap.Int("components", result.ComponentCount),
			zap.String("total_cost", result.TotalCost.StringFixed(2)),
			zap.String("output", result.OutputPath),
		)

		// Print result JSON to stdout
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(result)
	},
}

func init() {
	generateCmd.Flags().StringVar(&generateFile, "file", "", "component spec file, .csv or .xlsx (required)")
	generateCmd.Flags().StringVar(&generateProject, "project", "", "project name (required)")
	generateCmd.Flags().StringVar(&generateEngineer, "engineer", "", "engineer name stamped on the report")
	generateCmd.Flags().StringVar(&generateReportID, "report-id", "", "override the generated report id")
	generateCmd.Flags().BoolVar(&generateStrict, "strict", false, "abort the run when any row fails validation")
	_ = generateCmd.MarkFlagRequired("file")
	_ = generateCmd.MarkFlagRequired("project")
	rootCmd.AddCommand(generateCmd)
}
