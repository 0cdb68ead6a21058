package workers

import (
	"context"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"
)

const DefaultShutdownTimeout = 10 * time.Second

// HTTPServer serves handler until the context is cancelled, then drains
// in-flight requests for at most the shutdown timeout.
type HTTPServer struct {
	log             *slog.Logger
	addr            string
	handler         http.Handler
	shutdownTimeout time.Duration
	listen          func(network, address string) (net.Listener, error)
}

func NewHTTPServer(log *slog.Logger, addr string, handler http.Handler) *HTTPServer {
	return &HTTPServer{
		log:             log,
		addr:            addr,
		handler:         handler,
		shutdownTimeout: DefaultShutdownTimeout,
		listen:          net.Listen,
	}
}

func (w *HTTPServer) Run(ctx context.Context) error {
	listener, err := w.listen("tcp", w.addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", w.addr, err)
	}
	server := &http.Server{
		Handler:           w.handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	errChan := make(chan error, 1)
	go func() {
		w.log.Info("Starting HTTP server", "address", listener.Addr().String())
		errChan <- server.Serve(listener)
	}()

	select {
	case err := <-errChan:
		if stderrors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("http server error: %w", err)
	case <-ctx.Done():
	}

	w.log.Info("Shutting down HTTP server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), w.shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		// Streams outliving the grace period are cut
		_ = server.Close()
		w.log.Warn("HTTP server forced to close", "error", err)
	}
	<-errChan
	return nil
}
