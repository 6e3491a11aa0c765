package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"

	"stratlab/internal/api"
	"stratlab/internal/config"
	"stratlab/internal/logging"
	"stratlab/internal/runner"

	"github.com/gin-gonic/gin"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := loadConfig(config.Path(*configPath))
	if err != nil {
		log.Fatal(err)
	}
	logger := logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	r, cleanup, err := runner.FromConfig(context.Background(), cfg, logger, nil)
	if err != nil {
		log.Fatal(err)
	}
	defer cleanup()

	if os.Getenv("API_ENV") == "production" {
		gin.SetMode(gin.ReleaseMode)
	}
	router := api.NewRouter(r, logger, cfg.Server.AllowedOrigins)

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	logger.Info("starting API server", "addr", addr)
	if err := router.Run(addr); err != nil {
		logger.Error("server stopped", "err", err)
		cleanup()
		os.Exit(1)
	}
}

// loadConfig falls back to defaults plus environment when the file is
// missing, so the server can run from env alone.
func loadConfig(path string) (*config.Config, error) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		cfg := config.Default()
		return cfg, cfg.Validate()
	}
	return config.Load(path)
}
