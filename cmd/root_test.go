package main

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_HasSubcommands(t *testing.T) {
	cmds := rootCmd.Commands()

	// Collect subcommand names.
	names := make(map[string]bool)
	for _, c := range cmds {
		names[c.Name()] = true
	}

	// Verify expected subcommands are registered.
	expected := []string{"generate", "batch", "serve", "logs", "stats", "sample"}
	for _, name := range expected {
		assert.True(t, names[name], "expected subcommand %q not found", name)
	}
}

func TestRootCommand_Metadata(t *testing.T) {
	assert.Equal(t, "autodoc", rootCmd.Use)
	assert.NotEmpty(t, rootCmd.Short)
	assert.NotEmpty(t, rootCmd.Long)

	flag := rootCmd.PersistentFlags().Lookup("config")
	require.NotNil(t, flag, "root command should have --config flag")
}

func TestGenerateCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"file", "project", "engineer", "report-id", "strict"} {
		flag := generateCmd.Flags().Lookup(flagName)
		require.NotNil(t, flag, "generate command should have --%s flag", flagName)
	}
}

func TestBatchCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"dir", "project", "engineer"} {
		flag := batchCmd.Flags().Lookup(flagName)
		require.NotNil(t, flag, "batch command should have --%s flag", flagName)
	}

	conc := batchCmd.Flags().Lookup("concurrency")
	require.NotNil(t, conc, "batch command should have --concurrency flag")
	assert.Equal(t, "0", conc.DefValue)
}

func TestServeCommand_Flags(t *testing.T) {
	flag := serveCmd.Flags().Lookup("port")
	require.NotNil(t, flag, "serve command should have --port flag")
	assert.Equal(t, "0", flag.DefValue)
}

func TestLogsCommand_Flags(t *testing.T) {
	for _, flagName := range []string{"json", "project", "status", "limit"} {
		flag := logsCmd.Flags().Lookup(flagName)
		assert.NotNil(t, flag, "logs command should have --%s flag", flagName)
	}
}

func TestStatsCommand_Flags(t *testing.T) {
	flag := statsCmd.Flags().Lookup("json")
	require.NotNil(t, flag, "stats command should have --json flag")
}

func TestSampleCommand_Flags(t *testing.T) {
	flag := sampleCmd.Flags().Lookup("out")
	require.NotNil(t, flag, "sample command should have --out flag")
	assert.Equal(t, "sample_components.xlsx", flag.DefValue)
}
