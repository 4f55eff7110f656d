package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/shaiso/daxgen/internal/api"
	"github.com/shaiso/daxgen/internal/worker"
)

const shutdownTimeout = 10 * time.Second

// NewServeCmd создаёт команду serve.
func NewServeCmd(r *runner) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Long: `Serve exposes the generator over HTTP:

  POST   /api/v1/workflows               compile a graph from the request body
  POST   /api/v1/requests                enqueue a generate request
  GET    /api/v1/formats                 list graph formats
  GET    /api/v1/graphs                  list stored graphs
  PUT    /api/v1/graphs/{name}           store a graph
  GET    /api/v1/graphs/{name}           show a stored graph (?export=FORMAT)
  DELETE /api/v1/graphs/{name}           delete a stored graph
  GET    /api/v1/graphs/{name}/workflow  compile a stored graph
  GET    /healthz, /readyz, /metrics`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App, out *Output) error {
				if cmd.Flags().Changed("port") {
					app.Config.APIPort = port
				}
				app.Metrics.RegisterRuntime()

				svc, err := app.Service(ctx)
				if err != nil {
					return err
				}

				cfg := api.Config{Service: svc, Logger: app.Logger}
				if app.Config.DatabaseURL != "" {
					graphs, err := app.GraphRepo(ctx)
					if err != nil {
						return err
					}
					cfg.Graphs = graphs
				}
				publisher, err := app.Publisher(ctx)
				if err != nil {
					return err
				}
				if publisher != nil {
					cfg.Enqueuer = publisher
				}

				mux := http.NewServeMux()
				api.NewHandler(cfg).RegisterRoutes(mux)

				server := &http.Server{
					Addr:              ":" + app.Config.APIPort,
					Handler:           mux,
					ReadHeaderTimeout: 10 * time.Second,
				}

				ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				errCh := make(chan error, 1)
				go func() {
					app.Logger.Info("listening", "addr", server.Addr)
					if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
						errCh <- err
					}
					close(errCh)
				}()

				select {
				case err := <-errCh:
					return err
				case <-ctx.Done():
				}
				app.Logger.Info("shutting down")

				shutdownCtx, shutdownCancel := context.WithTimeout(context.WithoutCancel(ctx), shutdownTimeout)
				defer shutdownCancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return err
				}

				app.Logger.Info("stopped")
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&port, "port", "", "Listen port (default from API_PORT)")

	return cmd
}

// NewWorkerCmd создаёт команду worker.
func NewWorkerCmd(r *runner) *cobra.Command {
	var (
		prefetch int
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "worker",
		Short: "Process generate requests from RabbitMQ",
		Long: `Worker consumes workflow.generate requests from the daxgen.requests
queue, writes both artifacts and publishes workflow.generated or
workflow.failed events. Requests that cannot succeed on retry go to
the dead-letter queue.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return r.run(cmd, func(ctx context.Context, app *App, out *Output) error {
				svc, err := app.Service(ctx)
				if err != nil {
					return err
				}
				conn, _, err := app.Connection(ctx)
				if err != nil {
					return err
				}

				ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
				defer cancel()

				w := worker.New(worker.Config{
					Conn:     conn,
					Handler:  svc.HandleGenerate,
					Tag:      workerTag(),
					Prefetch: prefetch,
					Timeout:  timeout,
					Logger:   app.Logger,
				})
				if err := w.Start(ctx); err != nil {
					return err
				}

				<-ctx.Done()
				w.Stop()
				return nil
			})
		},
	}

	cmd.Flags().IntVar(&prefetch, "prefetch", 0, "Unacknowledged messages per worker")
	cmd.Flags().DurationVar(&timeout, "timeout", 0, "Time limit for one request")

	return cmd
}

// workerTag — consumer tag вида daxgen-worker-<host>-<pid>.
func workerTag() string {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown"
	}
	return fmt.Sprintf("daxgen-worker-%s-%d", host, os.Getpid())
}
