package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/autodoc/internal/reader"
)

var sampleOut string

var sampleCmd = &cobra.Command{
	Use:   "sample",
	Short: "Write a sample component spec to get started",
	RunE: func(cmd *cobra.Command, _ []string) error {
		switch strings.ToLower(filepath.Ext(sampleOut)) {
		case ".csv":
			f, err := os.Create(sampleOut)
			if err != nil {
				return eris.Wrapf(err, "create %s", sampleOut)
			}
			if err := reader.SampleCSV(f); err != nil {
				f.Close() //nolint:errcheck
				return err
			}
			if err := f.Close(); err != nil {
				return eris.Wrapf(err, "close %s", sampleOut)
			}
		case ".xlsx":
			if err := reader.WriteSample(sampleOut); err != nil {
				return err
			}
		default:
			return eris.Errorf("unsupported sample format %q, use .csv or .xlsx", filepath.Ext(sampleOut))
		}

		zap.L().Info("sample spec written", zap.String("path", sampleOut))
		return nil
	},
}

func init() {
	sampleCmd.Flags().StringVar(&sampleOut, "out", "sample_components.xlsx", "output path (.csv or .xlsx)")
	rootCmd.AddCommand(sampleCmd)
}
