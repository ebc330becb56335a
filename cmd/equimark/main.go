// Command equimark runs the equine bodywork session tracker: a local
// drawing page over the two horse diagrams, an append-only CSV record
// store, and an optional emailed summary with the marked diagrams
// attached.
package main

import (
	"context"
	"errors"
	"flag"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"golang.org/x/net/netutil"

	"github.com/benoitkugler/equimark/internal/config"
	"github.com/benoitkugler/equimark/internal/diagram"
	"github.com/benoitkugler/equimark/internal/mail"
	"github.com/benoitkugler/equimark/internal/session"
	"github.com/benoitkugler/equimark/internal/web"
)

// maxConns bounds concurrent connections; this is a single-user tool.
const maxConns = 16

const shutdownTimeout = 5 * time.Second

func main() {
	godotenv.Load() // a missing .env file is fine

	cfg := config.FromEnv()
	flag.StringVar(&cfg.Addr, "addr", cfg.Addr, "HTTP listen address")
	flag.StringVar(&cfg.DataDir, "data", cfg.DataDir, "directory for session records and annotated images")
	flag.StringVar(&cfg.ImagesDir, "images", cfg.ImagesDir, "directory with horse_left.png and horse_right.png")
	flag.BoolVar(&cfg.Debug, "debug", cfg.Debug, "verbose logging")
	flag.Parse()

	log := newLogger(cfg.Debug)
	defer log.Sync()

	if err := run(cfg, log); err != nil {
		log.Fatal("Tracker failed", zap.Error(err))
	}
}

func newLogger(debug bool) *zap.Logger {
	conf := zap.NewProductionConfig()
	if debug {
		conf = zap.NewDevelopmentConfig()
		conf.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	}
	log, err := conf.Build()
	if err != nil {
		panic(err)
	}
	return log
}

func run(cfg config.Config, log *zap.Logger) error {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return err
	}
	// Both backgrounds must be present before anything is served.
	diagrams, err := diagram.Load(cfg.ImagesDir)
	if err != nil {
		return err
	}
	store := session.NewStore(cfg.CSVPath())
	sender := mail.NewSendGridSender(cfg.Mail)
	if cfg.Mail.APIKey == "" {
		log.Warn("SENDGRID_API_KEY is not set, summary emails will fail")
	}
	srv, err := web.NewServer(log, cfg, store, diagrams, sender)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", cfg.Addr)
	if err != nil {
		return err
	}
	ln = netutil.LimitListener(ln, maxConns)

	httpSrv := &http.Server{Handler: srv.Handler()}
	errc := make(chan error, 1)
	go func() { errc <- httpSrv.Serve(ln) }()
	log.Info("Tracker running", zap.String("url", "http://"+cfg.Addr))

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	select {
	case err := <-errc:
		return err
	case sig := <-stop:
		log.Info("Shutting down", zap.Stringer("signal", sig))
	}

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := httpSrv.Shutdown(ctx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
