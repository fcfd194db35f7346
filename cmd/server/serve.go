package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/iliyamo/book-lending/internal/config"
	"github.com/iliyamo/book-lending/internal/database"
	"github.com/iliyamo/book-lending/internal/queue"
	"github.com/iliyamo/book-lending/internal/server"
	"github.com/iliyamo/book-lending/internal/service"
)

func newServeCmd() *cobra.Command {
	var withConsumer bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(withConsumer)
		},
	}
	cmd.Flags().BoolVar(&withConsumer, "with-consumer", false, "also run the book.reserved log consumer in-process")
	return cmd
}

func serve(withConsumer bool) error {
	cfg := config.Load()
	cacheCfg := config.LoadCacheConfig()
	rlCfg := config.LoadRateLimitConfig()

	db, err := openDB(cfg)
	if err != nil {
		return err
	}
	defer db.Close()

	var rdb *redis.Client
	if cacheCfg.Enabled || rlCfg.Enabled || cfg.Revocations == "redis" {
		if rdb = config.NewRedisClient(config.LoadRedisConfig()); rdb == nil {
			log.Printf("redis unavailable: cache and rate limit disabled, revocations in %s", cfg.DBDriver)
		} else {
			defer rdb.Close()
		}
	}

	var events service.EventPublisher = queue.NopPublisher{}
	if cfg.EventsEnabled {
		events = queue.NewPublisher(cfg.RabbitURL)
	}

	app := server.NewApp(cfg, db, rdb, events)
	e := server.New(cfg, app, rdb, cacheCfg, rlCfg)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go pruneRevocations(ctx, app.Auth, cfg.PruneEvery)
	if withConsumer {
		go func() {
			if err := queue.NewConsumer(cfg.RabbitURL, cfg.EventLogDir).Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("consumer: %v", err)
			}
		}()
	}

	addr := ":" + cfg.Port
	log.Printf("listening on %s (env=%s, db=%s)", addr, cfg.Env, cfg.DBDriver)
	errCh := make(chan error, 1)
	go func() { errCh <- e.Start(addr) }()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("shutdown: %v", err)
	}
	app.Bookings.Wait()
	log.Printf("stopped")
	return nil
}

// openDB connects and applies pending migrations when DB_AUTO_MIGRATE is on.
func openDB(cfg config.Config) (*sqlx.DB, error) {
	db, err := database.Open(cfg.DBDriver, cfg.DSN())
	if err != nil {
		return nil, err
	}
	if cfg.AutoMigrate {
		if err := database.Migrate(db); err != nil {
			_ = db.Close()
			return nil, err
		}
	}
	return db, nil
}

func pruneRevocations(ctx context.Context, auth *service.AuthService, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := auth.PruneRevocations(ctx)
			if err != nil {
				log.Printf("prune revocations: %v", err)
			} else if n > 0 {
				log.Printf("pruned %d expired revocations", n)
			}
		}
	}
}
