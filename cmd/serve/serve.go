// Package serve implements the serve command.
package serve

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"fjacquet/statement-ledger/cmd/root"
	"fjacquet/statement-ledger/internal/api"
	"fjacquet/statement-ledger/internal/logging"

	"github.com/spf13/cobra"
)

var addr string

// Cmd represents the serve command
var Cmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the ledger over HTTP",
	Long:  `Start the HTTP API used by the dashboard. Stops on SIGINT or SIGTERM.`,
	RunE:  serveFunc,
}

func init() {
	Cmd.Flags().StringVar(&addr, "addr", "", "Listen address (default: server.addr from the configuration)")
}

func serveFunc(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	c, err := root.OpenContainer(ctx)
	if err != nil {
		return err
	}
	defer c.Close()

	listen := addr
	if listen == "" {
		listen = c.GetConfig().Server.Addr
	}

	srv := api.NewServer(c.GetIngestService(), c.GetStore(), c.GetArchive(), c.GetLogger())
	httpServer := &http.Server{
		Addr:              listen,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		c.GetLogger().Info("Listening",
			logging.Field{Key: "addr", Value: listen},
			logging.Field{Key: "archive", Value: c.GetArchive().Dir()})
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	c.GetLogger().Info("Shutting down")
	return httpServer.Shutdown(shutdownCtx)
}
