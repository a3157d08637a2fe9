package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"chefgenie/internal/api"
	"chefgenie/internal/config"
	"chefgenie/internal/logging"
	"chefgenie/internal/platform/spoonacular"
	"chefgenie/internal/recipe"
	"chefgenie/internal/resolver"
)

func main() {
	envErr := godotenv.Load()

	configPath := os.Getenv("CONFIG_FILE")
	if configPath == "" {
		configPath = "config.json"
	}
	cfg, err := config.Load(configPath)
	if err != nil {
		panic(fmt.Errorf("failed to load configuration: %w", err))
	}

	if err := logging.Setup(cfg.LogLevel); err != nil {
		panic(fmt.Errorf("failed to set up logging: %w", err))
	}
	if envErr != nil {
		logrus.Debug("no .env file found, using system environment variables")
	}

	dataset, err := loadDataset(context.Background(), cfg)
	if err != nil {
		panic(fmt.Errorf("failed to load local recipes: %w", err))
	}
	logrus.WithField("keys", dataset.Keys()).Info("local recipes loaded")

	if cfg.SpoonacularAPIKey == "" {
		logrus.Warn("SPOONACULAR_API_KEY not set, serving local recipes only")
	}

	gin.SetMode(gin.ReleaseMode)
	r := buildRouter(cfg, dataset)

	if err := serve(r, ":"+cfg.Port); err != nil {
		logrus.WithError(err).Fatal("server stopped")
	}
}

// loadDataset reads the local recipes from Postgres when a database is
// configured and from the JSON file otherwise.
func loadDataset(ctx context.Context, cfg *config.Config) (*recipe.Dataset, error) {
	if cfg.DatabaseURL == "" {
		return recipe.LoadDatasetFile(cfg.RecipesPath())
	}

	store, err := recipe.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		return nil, err
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	return store.LoadDataset(ctx)
}

func buildRouter(cfg *config.Config, dataset *recipe.Dataset) *gin.Engine {
	client := spoonacular.NewClient(cfg.SpoonacularAPIKey,
		spoonacular.WithBaseURL(cfg.SpoonacularBaseURL),
		spoonacular.WithTimeout(cfg.RemoteTimeout.Duration),
	)
	handler := api.NewHandler(resolver.New(client, dataset), dataset, cfg.StaticDir)
	return api.NewRouter(handler, logrus.StandardLogger())
}

// serve runs the server until SIGINT or SIGTERM, then shuts it down
// gracefully.
func serve(handler http.Handler, addr string) error {
	srv := &http.Server{
		Addr:    addr,
		Handler: handler,
	}

	errCh := make(chan error, 1)
	go func() {
		logrus.WithField("addr", addr).Info("listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		return err
	case <-quit:
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	logrus.Info("shutting down")
	return srv.Shutdown(ctx)
}
