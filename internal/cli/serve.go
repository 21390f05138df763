package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long in-flight requests may run after a shutdown signal.
const ShutdownTimeout = 5 * time.Second

// Serve runs the HTTP server on port until ctx is cancelled, then shuts it down gracefully.
func Serve(ctx context.Context, app *App, port int, out io.Writer) error {
	ln, err := net.Listen("tcp", ":"+strconv.Itoa(port))
	if err != nil {
		return fmt.Errorf("could not listen on port %d: %w", port, err)
	}
	return serve(ctx, app, ln, out)
}

func serve(ctx context.Context, app *App, ln net.Listener, out io.Writer) error {
	srv := &http.Server{
		Handler:           app.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	printSystemMessage(out, "Math solver listening on %s", ln.Addr())
	app.Logger.Info("HTTP server started", "address", ln.Addr().String(),
		"gemini", app.Services().Gemini, "newton", app.Services().Newton)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		if ctx.Err() == nil {
			// Serve failed on its own; nothing left to drain.
			return nil
		}
		app.Logger.Info("Shutdown requested", "cause", shutdownCause(ctx))
		printSystemMessage(out, "Shutting down...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			app.Logger.Error("Graceful shutdown did not complete", "timeout", ShutdownTimeout, "error", err)
			if err := srv.Close(); err != nil {
				return fmt.Errorf("error killing server: %w", err)
			}
		}
		printSystemMessage(out, "Server stopped gracefully")
		return nil
	})

	return g.Wait()
}
