package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"chefgenie/internal/config"
	"chefgenie/internal/logging"
	"chefgenie/internal/recipe"
)

// seed_recipes imports a recipes.json file into the local_recipes table.
func main() {
	_ = godotenv.Load()

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

	file := flag.String("file", cfg.RecipesPath(), "recipes JSON file to import")
	flag.Parse()

	if cfg.DatabaseURL == "" {
		logrus.Fatal("DATABASE_URL is required")
	}

	dataset, err := recipe.LoadDatasetFile(*file)
	if err != nil {
		logrus.WithError(err).Fatal("failed to load recipes")
	}

	store, err := recipe.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		logrus.WithError(err).Fatal("failed to open store")
	}
	defer store.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := store.SaveDataset(ctx, dataset); err != nil {
		logrus.WithError(err).Fatal("failed to seed recipes")
	}
	logrus.WithField("count", dataset.Len()).WithField("file", *file).Info("seeded local recipes")
}
