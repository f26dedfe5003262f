package cli

import (
	"context"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/m-mizutani/goerr/v2"
	httpctrl "github.com/secmon-lab/talentbridge/pkg/controller/http"
	"github.com/secmon-lab/talentbridge/pkg/service/activity"
	"github.com/secmon-lab/talentbridge/pkg/service/worker"
	"github.com/secmon-lab/talentbridge/pkg/utils/async"
	"github.com/secmon-lab/talentbridge/pkg/utils/logging"
	"github.com/urfave/cli/v3"
)

func cmdServe(version string) *cli.Command {
	var addr string
	var dashboardURL string
	var refreshInterval time.Duration
	var refreshWindow time.Duration
	var app appConfig

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "addr",
			Usage:       "HTTP server address",
			Value:       ":3000",
			Sources:     cli.EnvVars("TALENTBRIDGE_ADDR"),
			Destination: &addr,
		},
		&cli.StringFlag{
			Name:        "dashboard-url",
			Usage:       "Where the OAuth callback redirects the browser",
			Value:       "/dashboard",
			Sources:     cli.EnvVars("TALENTBRIDGE_DASHBOARD_URL"),
			Destination: &dashboardURL,
		},
		&cli.DurationFlag{
			Name:        "token-refresh-interval",
			Usage:       "Interval of the background CRM token refresh (0 disables it)",
			Category:    "CRM",
			Value:       5 * time.Minute,
			Sources:     cli.EnvVars("TALENTBRIDGE_TOKEN_REFRESH_INTERVAL"),
			Destination: &refreshInterval,
		},
		&cli.DurationFlag{
			Name:        "token-refresh-window",
			Usage:       "Tokens expiring within this window are refreshed in the background",
			Category:    "CRM",
			Value:       10 * time.Minute,
			Sources:     cli.EnvVars("TALENTBRIDGE_TOKEN_REFRESH_WINDOW"),
			Destination: &refreshWindow,
		},
	}
	flags = append(flags, app.Flags()...)

	return &cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Start HTTP server",
		Flags:   flags,
		Action: func(ctx context.Context, c *cli.Command) error {
			hub := activity.NewHub()

			built, err := app.build(ctx, hub)
			if err != nil {
				return err
			}
			defer built.close()
			uc := built.uc

			// Start token refresh worker when the CRM is configured
			var refreshWorker *worker.TokenRefreshWorker
			if uc.OAuth != nil && refreshInterval > 0 {
				refreshWorker = worker.NewTokenRefreshWorker(uc.OAuth, refreshInterval, refreshWindow)
				if err := refreshWorker.Start(ctx); err != nil {
					return goerr.Wrap(err, "failed to start token refresh worker")
				}
			}

			handler := httpctrl.New(uc,
				httpctrl.WithActivityHub(hub),
				httpctrl.WithDashboardURL(dashboardURL),
				httpctrl.WithVersion(version),
			)

			// Request contexts are cancelled on shutdown so event streams end
			baseCtx, cancelBase := context.WithCancel(ctx)
			defer cancelBase()

			server := &http.Server{
				Addr:              addr,
				Handler:           handler,
				ReadHeaderTimeout: 30 * time.Second,
				BaseContext:       func(net.Listener) context.Context { return baseCtx },
			}

			// Setup signal handling for graceful shutdown
			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)

			// Start server in goroutine
			errCh := make(chan error, 1)
			go func() {
				logging.Default().Info("Starting HTTP server",
					"addr", addr,
					"crm", uc.OAuth != nil,
					"data_source", dataSourceName(built),
				)
				if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					errCh <- goerr.Wrap(err, "failed to start server")
				}
			}()

			// Wait for shutdown signal or server error
			select {
			case err := <-errCh:
				return err
			case sig := <-sigCh:
				logging.Default().Info("Received shutdown signal", "signal", sig)

				if refreshWorker != nil {
					refreshWorker.Stop()
				}
				cancelBase()

				shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
				defer cancel()

				if err := server.Shutdown(shutdownCtx); err != nil {
					return goerr.Wrap(err, "failed to shutdown server gracefully")
				}

				if err := async.Wait(shutdownCtx); err != nil {
					logging.Default().Warn("Pending notifications were not delivered", "error", err)
				}

				logging.Default().Info("Server shutdown completed")
				return nil
			}
		},
	}
}

func dataSourceName(b *builtApp) string {
	if b.uc.Remote == nil {
		return "none"
	}
	return b.uc.Remote.Source()
}
