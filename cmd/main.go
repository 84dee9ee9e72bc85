package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"personal_blog/internal/config"
	"personal_blog/internal/handlers"
	"personal_blog/internal/logger"
	"personal_blog/internal/repository"
	"personal_blog/internal/repository/db"
	"personal_blog/internal/server"
	"personal_blog/internal/service"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

func main() {
	configPath := flag.String("config", "configs/config.yml", "path to the YAML config file")
	flag.Parse()

	// load config
	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Get(logger.InfoLevel).Fatalw("error reading config", "path", *configPath, "err", err)
	}

	// init logger
	log := logger.Get(cfg.Log.Level)
	defer func() { _ = log.Sync() }()

	// open DB
	conn, err := db.InitDB(cfg.DB.Path)
	if err != nil {
		log.Fatalw("failed to init sqlite", "path", cfg.DB.Path, "err", err)
	}
	defer func() {
		if cerr := conn.Close(); cerr != nil {
			log.Errorw("failed to close sqlite", "err", cerr)
		}
	}()

	avatarDir := filepath.Join(cfg.Static.Dir, service.ProfilePicsDir)
	if err := os.MkdirAll(avatarDir, 0o755); err != nil {
		log.Fatalw("failed to create avatar dir", "dir", avatarDir, "err", err)
	}

	// wire dependencies
	if cfg.Server.Mode != "" {
		gin.SetMode(cfg.Server.Mode)
	}
	repos := repository.NewRepository(conn)
	services := service.NewService(repos, cfg, log)
	h := handlers.NewHandler(services, log.Named("http"), handlers.Options{
		StaticDir:    cfg.Static.Dir,
		CookieSecure: cfg.Session.CookieSecure,
		MaxUploadMB:  cfg.Avatar.MaxUploadMB,
		CSRFKey:      cfg.Session.CSRFKey(),
	})

	// start HTTP server
	srv := server.New(cfg.Server.Port, h.InitRoutes())
	go func() {
		log.Infow("http_server_started", "addr", srv.Addr(), "mode", gin.Mode())
		if err := srv.Run(); err != nil {
			log.Fatalw("error starting server", "err", err)
		}
	}()

	waitForShutdown(srv, log)
}

// waitForShutdown listens for termination signals and performs graceful shutdown.
func waitForShutdown(srv *server.Server, log *logger.Logger) {
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Infow("shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Errorw("server forced to shutdown", "err", err)
	}
}
