package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/readpref"
	"go.uber.org/zap"

	"github.com/vnkhanh/e-storybook-backend/config"
	"github.com/vnkhanh/e-storybook-backend/controllers"
	"github.com/vnkhanh/e-storybook-backend/logger"
	"github.com/vnkhanh/e-storybook-backend/metrics"
	"github.com/vnkhanh/e-storybook-backend/repository"
	"github.com/vnkhanh/e-storybook-backend/routes"
	"github.com/vnkhanh/e-storybook-backend/services"
	"github.com/vnkhanh/e-storybook-backend/utils"
	"github.com/vnkhanh/e-storybook-backend/ws"
)

const shutdownTimeout = 15 * time.Second

var configFile string

func main() {
	// Load .env
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "Không tìm thấy file .env")
	}

	rootCmd := &cobra.Command{
		Use:           "storybook",
		Short:         "Storybook generation backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path (default ./config.yaml)")

	rootCmd.AddCommand(
		&cobra.Command{
			Use:   "serve",
			Short: "Run the HTTP server",
			RunE: func(cmd *cobra.Command, args []string) error {
				return serve(cmd.Context())
			},
		},
		&cobra.Command{
			Use:   "migrate",
			Short: "Create tables (postgres) or indexes (mongo) and exit",
			RunE: func(cmd *cobra.Command, args []string) error {
				return migrate(cmd.Context())
			},
		},
	)
	// chạy không tham số thì serve như bản cũ
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func setup() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load(configFile)
	if err != nil {
		return nil, nil, fmt.Errorf("config.Load() > %w", err)
	}
	log := logger.New(logger.Options{
		File:       cfg.Log.File,
		Level:      cfg.Log.Level,
		MaxSizeMB:  cfg.Log.MaxSizeMB,
		MaxBackups: cfg.Log.MaxBackups,
		MaxAgeDays: cfg.Log.MaxAgeDays,
	})
	return cfg, log, nil
}

// store gom repository và hàm dọn dẹp của driver đang dùng
type store struct {
	repo  repository.StorybookRepository
	ping  controllers.Pinger
	close func()
}

func openStore(ctx context.Context, cfg *config.Config, log *zap.Logger, migrate bool) (*store, error) {
	switch cfg.Database.Driver {
	case "mongo":
		client, err := config.ConnectMongo(ctx, cfg.Mongo, log)
		if err != nil {
			return nil, err
		}
		db := client.Database(cfg.Mongo.Database)
		if migrate {
			if err := repository.EnsureIndexes(ctx, db); err != nil {
				_ = client.Disconnect(context.Background())
				return nil, err
			}
		}
		return &store{
			repo: repository.NewMongoStorybookRepository(db),
			ping: func(ctx context.Context) error { return client.Ping(ctx, readpref.Primary()) },
			close: func() {
				if err := client.Disconnect(context.Background()); err != nil && !errors.Is(err, mongo.ErrClientDisconnected) {
					log.Warn("mongo disconnect failed", zap.Error(err))
				}
			},
		}, nil
	default:
		db, err := config.OpenPostgres(ctx, cfg.Database, log)
		if err != nil {
			return nil, err
		}
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		if migrate {
			if err := config.MigratePostgres(db); err != nil {
				_ = sqlDB.Close()
				return nil, err
			}
		}
		return &store{
			repo:  repository.NewGormStorybookRepository(db),
			ping:  sqlDB.PingContext,
			close: func() { _ = sqlDB.Close() },
		}, nil
	}
}

func migrate(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()

	st, err := openStore(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	st.close()
	log.Info("migration finished", zap.String("driver", cfg.Database.Driver))
	return nil
}

func serve(ctx context.Context) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync()
	gin.SetMode(cfg.Server.Mode)

	st, err := openStore(ctx, cfg, log, true)
	if err != nil {
		return err
	}
	defer st.close()

	rdb := config.NewRedis(ctx, cfg.Redis, log)
	if rdb != nil {
		defer rdb.Close()
	}

	suna := services.NewSunaClient(cfg.Suna.BaseURL, cfg.Suna.Timeout)
	defer suna.Close()

	auth := services.NewSupabaseAuth(services.SupabaseAuthConfig{
		URL:        cfg.Supabase.URL,
		AnonKey:    cfg.Supabase.AnonKey,
		ServiceKey: cfg.Supabase.ServiceKey,
		JWTSecret:  cfg.Supabase.JWTSecret,
		RedirectTo: suna.BaseURL() + "/auth/callback",
		CacheTTL:   cfg.Auth.CacheTTL,
	}, services.NewRedisTokenCache(rdb, log), log)
	defer auth.Close()

	storage := utils.NewSupabaseStorage(cfg.Supabase.URL, cfg.Supabase.ServiceKey, cfg.Supabase.StorageBucket)
	m := metrics.New()

	var opts []services.FactoryOption
	if cfg.Gemini.Enabled {
		writer, err := services.NewGeminiStoryWriter(ctx, cfg.Gemini.APIKey, cfg.Gemini.Model, log)
		if err != nil {
			return err
		}
		defer writer.Close()
		opts = append(opts, services.WithStoryWriter(writer))
	}
	if cfg.Google.Enabled {
		narrator, err := services.NewGoogleTTSNarrator(ctx, cfg.Google.CredentialsFile, storage, log)
		if err != nil {
			return err
		}
		defer narrator.Close()
		opts = append(opts, services.WithNarrator(narrator))
	}
	log.Info("generation providers",
		zap.String("story", cfg.Generation.StoryProvider),
		zap.String("image", "suna"),
		zap.String("audio", cfg.Generation.AudioProvider))

	hub := ws.NewHub(log)
	deps := routes.Deps{
		Books: controllers.NewBookController(
			st.repo,
			services.NewPipelineFactory(auth, suna, m, log, opts...),
			storage,
			services.NewEpubExporter(log),
			hub,
			log,
		),
		Stats:          controllers.NewStatsController(st.repo),
		Relay:          controllers.NewRelayController(services.NewRelay(auth, auth, suna, m, log)),
		Health:         controllers.NewHealthController(st.ping, hub),
		WS:             ws.NewHandler(hub, auth, st.repo, cfg.Server.AllowedOrigins, log),
		Verifier:       auth,
		Metrics:        m,
		AllowedOrigins: cfg.Server.AllowedOrigins,
		Log:            log,
	}
	r := routes.SetupRouter(gin.New(), deps)

	srv := &http.Server{
		Addr:              ":" + cfg.Server.Port,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server running", zap.String("port", cfg.Server.Port))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("Shutdown signal received, initiating graceful shutdown")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn("graceful shutdown failed", zap.Error(err))
	}
	log.Info("Server gracefully stopped")
	return nil
}
