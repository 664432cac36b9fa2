package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/piisweep/piisweep/internal/config"
	"github.com/piisweep/piisweep/internal/storage"
)

// Start initializes and starts the review API server. It returns the actual
// address being listened on (useful for testing with port 0) and the
// WebSocketHub for wiring scan progress broadcasts. The server shuts down
// when ctx is cancelled.
func Start(ctx context.Context, cfg *config.Config, store storage.ScanStore) (string, *WebSocketHub, error) {
	mux := http.NewServeMux()

	wsHub := NewWebSocketHub()
	go wsHub.Run()

	rateLimiter := NewRateLimiter(cfg.Server.RateLimitPerSecond, cfg.Server.RateLimitBurst)
	apiHandlers := NewHandlers(store)

	apiMux := http.NewServeMux()
	apiMux.HandleFunc("GET /api/runs", apiHandlers.ListRuns)
	apiMux.HandleFunc("GET /api/runs/{id}", apiHandlers.GetRun)
	apiMux.HandleFunc("GET /api/resolution", apiHandlers.GetResolution)
	apiMux.HandleFunc("GET /api/conflicts", apiHandlers.GetConflicts)

	// Health endpoint stays outside the auth-required prefix.
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"healthy","version":"1.0.0"}`))
	})

	mux.Handle("/api/", RequireAuth(apiMux, cfg))

	// WebSocket endpoint; origin validation handles security.
	mux.Handle("/ws", wsHub)

	handler := RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	listener, err := net.Listen("tcp", addr)
	if err != nil {
		wsHub.Stop()
		return "", nil, fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	actualAddr := listener.Addr().String()

	go func() {
		if err := srv.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("server: %v", err)
		}
	}()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Printf("server: shutdown: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub, nil
}
