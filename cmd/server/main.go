package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/DoyleJ11/ti-helper/internal/config"
	"github.com/DoyleJ11/ti-helper/internal/gateway"
	"github.com/DoyleJ11/ti-helper/internal/httpapi"
	"github.com/DoyleJ11/ti-helper/internal/hub"
	"github.com/DoyleJ11/ti-helper/internal/logging"
	"github.com/DoyleJ11/ti-helper/internal/observability"
	"github.com/DoyleJ11/ti-helper/internal/session"
	"github.com/DoyleJ11/ti-helper/internal/store/backend"
	"github.com/DoyleJ11/ti-helper/internal/ws"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "server:", err)
		os.Exit(1)
	}
}

func run() (err error) {
	if err := config.LoadDotEnv(); err != nil {
		return err
	}
	cfg, err := config.Load("server", os.Args[1:])
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.Development)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := backend.Open(ctx, cfg, log.Named("store"))
	if err != nil {
		return err
	}
	defer func() { err = multierr.Append(err, st.Close()) }()

	metrics := observability.NewMetrics("")

	dataURL := cfg.DataServiceURL
	if dataURL == "" {
		dataURL = selfURL(cfg.Addr)
	}
	gw := gateway.New(dataURL,
		gateway.WithLogger(log.Named("gateway")),
		gateway.WithMetrics(metrics),
		gateway.WithTimeout(cfg.HTTPTimeout),
	)

	h := hub.NewHub(ctx, session.Config{
		Gateway: gw,
		Logger:  log.Named("session"),
		Metrics: metrics,
	})

	origins := cfg.AllowedOrigins
	if cfg.Development && len(origins) == 0 {
		origins = []string{"localhost:*", "127.0.0.1:*"}
	}

	srv := &http.Server{
		Addr: cfg.Addr,
		Handler: httpapi.SetupRoutes(httpapi.Deps{
			Hub:     h,
			Catalog: st,
			Metrics: metrics,
			Logger:  log,
			WS:      ws.Options{Logger: log.Named("ws"), OriginPatterns: origins},
		}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening", zap.String("addr", cfg.Addr), zap.String("data_service", dataURL), zap.String("store", cfg.StoreDriver))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		select {
		case h.Inbox() <- hub.ShutdownHub{}:
		case <-h.Done():
		}
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}

// selfURL points the gateway at this process's own data service.
func selfURL(addr string) string {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return "http://127.0.0.1:8080"
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port)
}
