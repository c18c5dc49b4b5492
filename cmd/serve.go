package main

import (
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/autodoc/internal/pipeline"
	"github.com/sells-group/autodoc/internal/server"
)

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the report generation HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		st, err := initStore(ctx)
		if err != nil {
			return err
		}
		defer st.Close() //nolint:errcheck

		serverCfg := cfg.Server
		if servePort != 0 {
			serverCfg.Port = servePort
		}

		srv := server.New(serverCfg, st, pipeline.Options{Strict: cfg.Pipeline.Strict()}, cfg.Uploads.Dir, cfg.Output.Dir)

		// Start migrates the store and binds the listener before returning.
		if err := srv.Start(ctx); err != nil {
			return err
		}

		zap.L().Info("server started", zap.Int("port", serverCfg.Port))

		<-ctx.Done()

		return srv.Stop()
	},
}

func init() {
	serveCmd.Flags().IntVar(&servePort, "port", 0, "server port (default from config)")
	rootCmd.AddCommand(serveCmd)
}
