package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/AlexZinkM/xrp-genie/internal/api"
	"github.com/AlexZinkM/xrp-genie/internal/config"
)

const shutdownTimeout = 10 * time.Second

// @title        XRP Genie API
// @version      1.0
// @description  XRPL wallet API: ledger queries, test wallet generation and Xaman signing requests.
// @BasePath     /
func newServeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Serve the HTTP API on PORT",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			// --timeout does not apply to the server
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			router, err := api.SetupRouter(config.Get())
			if err != nil {
				return errors.Wrap(err, "failed to set up router")
			}

			srv := &http.Server{
				Addr:              ":" + config.GetPort(),
				Handler:           router,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				log.Info().Str("addr", srv.Addr).Msg("Server starting")
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if !errors.Is(err, http.ErrServerClosed) {
					return errors.Wrap(err, "server failed")
				}
				return nil
			case <-ctx.Done():
			}

			log.Info().Msg("Server shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
}
