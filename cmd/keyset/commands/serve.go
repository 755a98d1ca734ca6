package commands

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ncobase/keyset/config"
	"github.com/ncobase/keyset/log"
	"github.com/ncobase/keyset/server"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

func newServeCommand(global *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Args:  cobra.NoArgs,
		Short: "Serve pages of collections over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			a, err := newApp(ctx, global)
			if err != nil {
				return err
			}
			defer a.Close()

			if a.conf.Viper.ConfigFileUsed() != "" {
				a.conf.Watch(func(c *config.Config) {
					log.StandardLogger().SetLevel(logrus.Level(c.Logger.Level))
					log.Infof(context.Background(), "config reloaded")
				}, func(err error) {
					log.Errorf(context.Background(), "%v", err)
				})
			}

			h := server.NewHandler(a.src, a.conf.Paging, log.StandardLogger())
			srv := &http.Server{
				Addr:         a.conf.Address(),
				Handler:      server.NewRouter(h, a.conf.RunMode),
				ReadTimeout:  15 * time.Second,
				WriteTimeout: 15 * time.Second,
				IdleTimeout:  60 * time.Second,
			}

			errc := make(chan error, 1)
			go func() {
				log.Infof(ctx, "Starting server on %s", srv.Addr)
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errc <- err
				}
				close(errc)
			}()

			quit := make(chan os.Signal, 1)
			signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
			defer signal.Stop(quit)

			select {
			case err := <-errc:
				return err
			case <-quit:
			}

			log.Infof(ctx, "Shutting down server...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				return err
			}

			log.Infof(ctx, "Server exited")
			return nil
		},
	}
}
