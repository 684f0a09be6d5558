package cmd

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/entrepeneur4lyf/buildpilot/internal/api"
	"github.com/entrepeneur4lyf/buildpilot/internal/app"
	"github.com/entrepeneur4lyf/buildpilot/internal/metrics"
	"github.com/spf13/cobra"
)

const shutdownTimeout = 10 * time.Second

var servePort int

var serveCmd = &cobra.Command{
	Use:         "serve",
	Short:       "Run the web API",
	Long:        `Serve the plan generation API and Prometheus metrics until interrupted.`,
	Args:        cobra.NoArgs,
	Annotations: map[string]string{logToStderr: "true"},
	RunE:        runServe,
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to listen on (overrides server.port)")
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	recorder := metrics.NewPrometheusRecorder()

	a, err := loadApp(&app.AppConfig{Recorder: recorder})
	if err != nil {
		return err
	}
	if err := a.CheckCredentials(); err != nil {
		// Requests report the missing key; the server still starts
		log.Warn("Provider credentials missing", "error", err)
	}

	port := a.Config.Server.Port
	if cmd.Flags().Changed("port") {
		port = servePort
	}

	server := api.NewServer(api.Options{
		Generator:        a.Pipeline,
		CheckCredentials: a.CheckCredentials,
		Store:            a.Store,
		SavePlans:        a.Config.Server.SavePlans,
		GenerateTimeout:  a.Config.Server.GenerateTimeout,
		AllowedOrigins:   a.Config.Server.AllowedOrigins,
		MetricsHandler:   recorder.Handler(),
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(port)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutting down gracefully")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return server.Stop(shutdownCtx)
}
