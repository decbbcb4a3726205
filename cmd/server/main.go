package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/DoyleJ11/territory-backend/internal/config"
	"github.com/DoyleJ11/territory-backend/internal/graph"
	"github.com/DoyleJ11/territory-backend/internal/httpapi"
	"github.com/DoyleJ11/territory-backend/internal/hub"
	"github.com/DoyleJ11/territory-backend/internal/lobby"
	"github.com/DoyleJ11/territory-backend/internal/store"
	"github.com/alecthomas/kong"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

const (
	defaultGame     = "MAIN"
	shutdownTimeout = 10 * time.Second
)

var cli struct {
	EnvFile string `help:"Path to a .env file." default:".env" type:"path"`
	Debug   bool   `help:"Enable development logging."`
	Addr    string `help:"Listen address, overrides TERRITORY_ADDR."`
}

func main() {
	kong.Parse(&cli,
		kong.Name("territory-server"),
		kong.Description("Authoritative server for the territory game."),
	)

	log, err := newLogger(cli.Debug)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}

	if err := run(log); err != nil {
		log.Error("server exited", zap.Error(err))
		_ = log.Sync()
		os.Exit(1)
	}
	_ = log.Sync()
}

func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

func run(log *zap.Logger) (err error) {
	cfg, err := config.Load(cli.EnvFile)
	if err != nil {
		return err
	}
	if cli.Addr != "" {
		cfg.Addr = cli.Addr
	}

	var rec store.Recorder = store.Nop{}
	if cfg.DatabaseURL != "" {
		db, err := store.Open(cfg.DatabaseURL)
		if err != nil {
			return err
		}
		defer func() { err = multierr.Append(err, db.Close()) }()
		rec = db
	} else {
		log.Info("no database configured, results are not kept")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	h := hub.NewHub(ctx, lobby.Options{
		Graph:      graph.Reference(),
		Rules:      cfg.Rules(),
		TickPeriod: cfg.TickPeriod,
		Recorder:   rec,
		Logger:     log,
	})
	if h.Ensure(ctx, defaultGame) == nil {
		return errors.New("create default game")
	}

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           httpapi.SetupRoutes(h, rec, log, cfg.AllowedOrigins),
		ReadHeaderTimeout: 5 * time.Second,
	}

	serveErr := make(chan error, 1)
	go func() {
		log.Info("listening",
			zap.String("addr", cfg.Addr),
			zap.Int("seats", cfg.Seats),
			zap.Duration("tick", cfg.TickPeriod),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	select {
	case err := <-serveErr:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	err = srv.Shutdown(shutdownCtx)

	select {
	case h.Inbox() <- hub.ShutdownHub{}:
	case <-h.Done():
	}
	<-h.Done()
	return multierr.Append(err, <-serveErr)
}
