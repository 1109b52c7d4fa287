package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"

	"github.com/juantovo/task-manager-api/internal/auth"
	"github.com/juantovo/task-manager-api/internal/config"
	"github.com/juantovo/task-manager-api/internal/database"
	"github.com/juantovo/task-manager-api/internal/email"
	httpServer "github.com/juantovo/task-manager-api/internal/http"
	"github.com/juantovo/task-manager-api/internal/logging"
	"github.com/juantovo/task-manager-api/internal/task"
	"github.com/juantovo/task-manager-api/internal/user"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Application error: %v", err)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	logger := logging.NewLogger(cfg.Server.IsDevelopment())
	logger.Info("starting application",
		"env", cfg.Server.Env,
		"port", cfg.Server.Port,
	)

	db, err := database.Open(cfg.Database.ConnectionString())
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer db.Close()

	if err := database.Migrate(context.Background(), db.DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	redisClient, err := initRedis(cfg.Redis)
	if err != nil {
		return fmt.Errorf("failed to initialize Redis: %w", err)
	}
	defer redisClient.Close()

	tokenService, err := newTokenService(cfg.Auth)
	if err != nil {
		return fmt.Errorf("failed to initialize token service: %w", err)
	}

	userRepo := user.NewPostgresRepository(db)
	taskRepo := task.NewPostgresRepository(db)
	sessionRepo := auth.NewRedisSessionRepository(redisClient)

	var welcomeMailer auth.WelcomeMailer
	var goodbyeMailer user.GoodbyeMailer
	if cfg.Email.Enabled {
		mailer := email.NewService(
			cfg.Email.SMTPHost,
			cfg.Email.SMTPPort,
			cfg.Email.SMTPUser,
			cfg.Email.SMTPPassword,
		)
		welcomeMailer = mailer
		goodbyeMailer = mailer
	} else {
		logger.Info("SMTP not configured, email notifications disabled")
	}

	authService := auth.NewService(userRepo, sessionRepo, tokenService, welcomeMailer, logger, cfg.Auth.TokenDuration)
	userService := user.NewService(userRepo, taskRepo, sessionRepo, goodbyeMailer, logger)
	taskService := task.NewService(taskRepo)

	authHandler := auth.NewHandler(authService)
	authMiddleware := auth.NewMiddleware(tokenService, userRepo, sessionRepo)
	userHandler := user.NewHandler(userService)
	taskHandler := task.NewHandler(taskService)

	router := httpServer.NewRouter(cfg, authHandler, authMiddleware, userHandler, taskHandler, logger)

	server := httpServer.NewServer(
		":"+cfg.Server.Port,
		router,
		cfg.Server.ReadTimeout,
		cfg.Server.WriteTimeout,
	)

	serverErrors := make(chan error, 1)
	go func() {
		serverErrors <- server.Start()
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-serverErrors:
		return fmt.Errorf("server error: %w", err)
	case sig := <-shutdown:
		log.Printf("Received signal: %v", sig)

		ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			return fmt.Errorf("graceful shutdown failed: %w", err)
		}
	}

	return nil
}

// newTokenService selects the configured token backend.
func newTokenService(cfg config.AuthConfig) (auth.TokenService, error) {
	switch cfg.TokenBackend {
	case config.TokenBackendJWT:
		return auth.NewJWTService(cfg.JWTSecret), nil
	default:
		return auth.NewPasetoService(cfg.PasetoKey)
	}
}

func initRedis(cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Address(),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(context.Background()).Err(); err != nil {
		return nil, fmt.Errorf("failed to ping Redis: %w", err)
	}
	return client, nil
}
