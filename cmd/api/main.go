package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/suar-net/pixel-exchange/internal/config"
	"github.com/suar-net/pixel-exchange/internal/database"
	"github.com/suar-net/pixel-exchange/internal/handler"
	"github.com/suar-net/pixel-exchange/internal/logger"
	"github.com/suar-net/pixel-exchange/internal/metrics"
	"github.com/suar-net/pixel-exchange/internal/moderation"
	"github.com/suar-net/pixel-exchange/internal/ratelimit"
	"github.com/suar-net/pixel-exchange/internal/repository"
	"github.com/suar-net/pixel-exchange/internal/service"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:          "pixel-exchange",
		Short:        "Edge proxy for the pixel art exchange",
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			// Load .env file
			if err := godotenv.Load(envFile); err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "No %s file found, using environment variables from OS\n", envFile)
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve()
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file to load before reading the environment")

	root.AddCommand(&cobra.Command{
		Use:   "words",
		Short: "Print how many moderation words would be loaded",
		RunE: func(cmd *cobra.Command, args []string) error {
			log := logger.New(cmd.ErrOrStderr(), os.Getenv("LOG_LEVEL"), "text")
			ws := moderation.FromFile(os.Getenv("MODERATION_WORDS_FILE"), log)
			fmt.Fprintln(cmd.OutOrStdout(), ws.Len())
			return nil
		},
	})

	return root
}

func serve() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	log := logger.New(os.Stdout, cfg.Log.Level, cfg.Log.Format)
	m := metrics.New()
	words := moderation.FromFile(cfg.Moderation.WordsFile, log)

	var (
		upstream service.Upstream
		pinger   handler.Pinger
	)
	if cfg.Upstream.DatabaseURL != "" {
		pool := database.DefaultPoolOptions()
		pool.MaxOpenConns = cfg.Database.MaxOpenConns
		pool.MaxIdleConns = cfg.Database.MaxIdleConns
		pool.ConnMaxLifetime = cfg.Database.ConnMaxLifetime
		db, err := database.ConnectDB(context.Background(), cfg.Upstream.DatabaseURL, pool)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer db.Close()
		log.Info("Succesfully connected to database")

		repo := repository.NewExchangeRepository(db)
		upstream, pinger = repo, repo
	} else {
		if role := cfg.Upstream.KeyRole(); role == "service_role" {
			log.Warn("UPSTREAM_KEY is a service_role key; the proxy only needs an anon key")
		}
		upstream = service.NewRESTUpstream(cfg.Upstream.URL, cfg.Upstream.Key, cfg.Upstream.Timeout)
	}

	limiter, closeLimiter, err := newLimiter(cfg.RateLimit, log)
	if err != nil {
		return err
	}
	defer closeLimiter()

	if len(cfg.CORS.AllowedOrigins) == 0 {
		log.Warn("ALLOWED_ORIGINS is empty; origin enforcement is disabled")
	}

	router := handler.SetupRouter(handler.RouterDeps{
		Exchange:       service.NewExchangeService(upstream, log, m),
		Words:          words,
		Limiter:        limiter,
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		IPHeader:       cfg.RateLimit.IPHeader,
		Logger:         log,
		Metrics:        m,
	})

	servers := []*http.Server{{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}}
	if cfg.Server.AdminPort != "" {
		servers = append(servers, &http.Server{
			Addr:         ":" + cfg.Server.AdminPort,
			Handler:      handler.SetupAdminRouter(handler.NewHealthHandler(pinger, log), m),
			ReadTimeout:  cfg.Server.ReadTimeout,
			WriteTimeout: cfg.Server.WriteTimeout,
		})
	}

	errCh := make(chan error, len(servers))
	for _, srv := range servers {
		go func(srv *http.Server) {
			log.WithField("addr", srv.Addr).Info("Server starting")
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				errCh <- fmt.Errorf("cannot run server on %s: %w", srv.Addr, err)
			}
		}(srv)
	}

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	var runErr error
	select {
	case <-stop:
	case runErr = <-errCh:
	}

	log.Info("Shut down the server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	for _, srv := range servers {
		if err := srv.Shutdown(ctx); err != nil {
			log.WithError(err).WithField("addr", srv.Addr).Error("Server shutdown failed")
		}
	}
	log.Info("Server successfully shut down")
	return runErr
}

func newLimiter(cfg config.RateLimitConfig, log *logrus.Logger) (ratelimit.Limiter, func(), error) {
	if cfg.RedisURL == "" {
		log.WithFields(logrus.Fields{"requests": cfg.Requests, "window": cfg.Window.String()}).
			Info("using in-memory rate limiter")
		return ratelimit.NewMemory(cfg.Requests, cfg.Window), func() {}, nil
	}

	client, err := ratelimit.ConnectRedis(context.Background(), cfg.RedisURL)
	if err != nil {
		return nil, nil, err
	}
	log.WithFields(logrus.Fields{"requests": cfg.Requests, "window": cfg.Window.String()}).
		Info("using redis rate limiter")
	return ratelimit.NewRedis(client, cfg.Requests, cfg.Window), func() { client.Close() }, nil
}
