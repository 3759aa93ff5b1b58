package main

import (
	"context"
	"errors"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/rushteam/bookrec/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP recommendation server",
	Long: `Load the configuration, build the first snapshot from the configured
data source and serve the recommendation API until SIGINT or SIGTERM.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := newApp(ctx, true)
	if err != nil {
		return err
	}
	defer a.close(context.Background())

	srv := &http.Server{
		Addr:         net.JoinHostPort(a.cfg.Server.Host, strconv.Itoa(a.cfg.Server.Port)),
		Handler:      api.NewRouter(a.engine, a.log, api.WithLimits(a.cfg.Recommend.DefaultN, a.cfg.Recommend.MaxN)),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		BaseContext:  func(net.Listener) context.Context { return a.log.WithContext(context.Background()) },
	}

	errc := make(chan error, 1)
	go func() {
		stats := a.engine.Stats()
		a.log.Info().
			Str("addr", srv.Addr).
			Int("books", stats.Books).
			Int("users", stats.Users).
			Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	a.log.Info().Msg("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		a.log.Error().Err(err).Msg("shutdown")
		return err
	}
	return nil
}
