// Command embedphp-demo is a thin net/http façade over the embedphp
// core, demonstrating that a Handler (or a workerpool.Pool wrapping
// several of them) can sit behind an arbitrary host process. It is not
// part of the embeddable library — see phpengine.New and workerpool.New
// for the actual entrypoints.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/lmittmann/tint"

	"github.com/embedphp/embedphp/httpvalue"
	"github.com/embedphp/embedphp/internal/config"
	"github.com/embedphp/embedphp/internal/workerpool"
	"github.com/embedphp/embedphp/phpengine"
)

var version = "0.1.0-dev"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	switch os.Args[1] {
	case "serve", "start":
		serve()
	case "version":
		fmt.Printf("embedphp-demo v%s\n", version)
	case "help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

func serve() {
	cfgPath := "embedphp.yaml"
	if len(os.Args) > 2 {
		cfgPath = os.Args[2]
	}

	logger := setupLogger("info", "tint", "stderr")
	logger.Info("embedphp-demo starting", "version", version)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		logger.Error("failed to load config", "path", cfgPath, "error", err)
		os.Exit(1)
	}
	logger = setupLogger(cfg.Logging.Level, cfg.Logging.Format, cfg.Logging.Output)

	var opts []phpengine.Option
	if len(cfg.App.Argv) > 0 {
		opts = append(opts, phpengine.WithArgv(cfg.App.Argv))
	}
	if cfg.PHP.ThrowRequestErrors {
		opts = append(opts, phpengine.WithThrowRequestErrors(true))
	}
	if len(cfg.PHP.IniOverrides) > 0 {
		opts = append(opts, phpengine.WithIniOverrides(cfg.PHP.IniOverrides))
	}

	pool := workerpool.New(cfg.Pool, cfg.App.Root, logger, opts...)
	if err := pool.Start(); err != nil {
		logger.Error("failed to start workerpool", "error", err)
		os.Exit(1)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		stats := pool.Stats()
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"total_workers":%d,"busy_workers":%d}`, stats.TotalWorkers, stats.BusyWorkers)
	})
	mux.Handle("/", newPHPHandler(pool, logger))

	srv := &http.Server{
		Addr:    envOr("EMBEDPHP_DEMO_ADDR", "127.0.0.1:8080"),
		Handler: mux,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		logger.Info("embedphp-demo ready", "address", srv.Addr, "docroot", cfg.App.Root)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	<-quit
	logger.Info("shutdown signal received")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server shutdown error", "error", err)
	}
	pool.Stop()
	logger.Info("embedphp-demo stopped")
}

// newPHPHandler bridges net/http onto the pool's httpvalue-shaped Exec,
// the way sadewadee-maboo/internal/server/router.go's newPHPHandler
// bridges net/http onto its frame protocol.
func newPHPHandler(pool *workerpool.Pool, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body []byte
		if r.Body != nil {
			var err error
			body, err = io.ReadAll(r.Body)
			if err != nil {
				logger.Error("reading request body", "error", err)
				http.Error(w, "Failed to read request body", http.StatusBadRequest)
				return
			}
			defer r.Body.Close()
		}

		headers := httpvalue.NewHeaders()
		for name, values := range r.Header {
			for _, v := range values {
				_ = headers.Add(name, v)
			}
		}

		req := httpvalue.NewRequestBuilder(httpvalue.NewRequest(r.Method, r.URL, headers, body)).
			RemoteSocket(socketFromAddr(r.RemoteAddr)).
			Build()

		resp, err := pool.Exec(r.Context(), req)
		if err != nil {
			logger.Error("workerpool exec", "error", err)
			http.Error(w, "Internal Server Error: "+err.Error(), http.StatusBadGateway)
			return
		}

		resp.Headers.Each(func(name, value string) {
			w.Header().Add(name, value)
		})
		w.WriteHeader(resp.Status)
		_, _ = w.Write(resp.Body)
	})
}

func socketFromAddr(addr string) *httpvalue.Socket {
	host, portStr, err := net.SplitHostPort(addr)
	if err != nil {
		return &httpvalue.Socket{Address: addr}
	}
	port, _ := strconv.Atoi(portStr)
	return &httpvalue.Socket{Address: host, Port: port}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func setupLogger(level, format, output string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	writer := resolveLogOutput(output)

	var handler slog.Handler
	switch format {
	case "text":
		handler = slog.NewTextHandler(writer, &slog.HandlerOptions{Level: lvl})
	case "json":
		handler = slog.NewJSONHandler(writer, &slog.HandlerOptions{Level: lvl})
	default:
		handler = tint.NewHandler(writer, &tint.Options{Level: lvl, TimeFormat: time.Kitchen})
	}

	return slog.New(handler)
}

func resolveLogOutput(output string) io.Writer {
	switch output {
	case "", "stdout":
		return os.Stdout
	case "stderr":
		return os.Stderr
	default:
		f, err := os.OpenFile(output, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return os.Stdout
		}
		return f
	}
}

func printUsage() {
	fmt.Println(strings.TrimSpace(`
embedphp-demo - illustrative host for the embedphp handler core

Usage:
  embedphp-demo <command> [options]

Commands:
  serve [config]   Start the demo server (default config: embedphp.yaml)
  start [config]   Alias for serve
  version          Show version
  help             Show this help
`))
}
