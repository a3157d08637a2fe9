package recipe

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresStore holds the local dataset in PostgreSQL. It is read once at
// startup and written only by the seed command.
type PostgresStore struct {
	db *sqlx.DB
}

type localRecipeRow struct {
	Key         string `db:"key"`
	Name        string `db:"name"`
	Ingredients []byte `db:"ingredients"`
	Steps       []byte `db:"steps"`
	Nutrition   []byte `db:"nutrition"`
}

// NewPostgresStore creates a new PostgresStore.
func NewPostgresStore(dataSourceName string) (*PostgresStore, error) {
	db, err := sqlx.Connect("postgres", dataSourceName)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// position keeps insertion order for the dataset scan
	schema := `
	CREATE TABLE IF NOT EXISTS local_recipes (
		position BIGSERIAL,
		key TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		ingredients JSONB NOT NULL,
		steps JSONB NOT NULL,
		nutrition JSONB NOT NULL
	);
	`
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to create local_recipes table: %w", err)
	}

	return &PostgresStore{db: db}, nil
}

// LoadDataset reads every stored recipe in insertion order.
func (s *PostgresStore) LoadDataset(ctx context.Context) (*Dataset, error) {
	var rows []localRecipeRow
	err := s.db.SelectContext(ctx, &rows, "SELECT key, name, ingredients, steps, nutrition FROM local_recipes ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to load recipes: %w", err)
	}

	entries := make([]Entry, 0, len(rows))
	for _, row := range rows {
		lr := LocalRecipe{Name: row.Name}
		if err := json.Unmarshal(row.Ingredients, &lr.Ingredients); err != nil {
			return nil, fmt.Errorf("failed to unmarshal ingredients of %q: %w", row.Key, err)
		}
		if err := json.Unmarshal(row.Steps, &lr.Steps); err != nil {
			return nil, fmt.Errorf("failed to unmarshal steps of %q: %w", row.Key, err)
		}
		if err := json.Unmarshal(row.Nutrition, &lr.Nutrition); err != nil {
			return nil, fmt.Errorf("failed to unmarshal nutrition of %q: %w", row.Key, err)
		}
		entries = append(entries, Entry{Key: row.Key, Recipe: lr})
	}

	return NewDataset(entries...), nil
}

// SaveDataset upserts every entry of d in one transaction. Existing keys keep
// their position.
func (s *PostgresStore) SaveDataset(ctx context.Context, d *Dataset) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, e := range d.Entries() {
		row, err := toRow(e)
		if err != nil {
			return err
		}
		_, err = tx.NamedExecContext(ctx,
			`INSERT INTO local_recipes (key, name, ingredients, steps, nutrition)
			VALUES (:key, :name, :ingredients, :steps, :nutrition)
			ON CONFLICT (key) DO UPDATE SET name = EXCLUDED.name, ingredients = EXCLUDED.ingredients, steps = EXCLUDED.steps, nutrition = EXCLUDED.nutrition`,
			row,
		)
		if err != nil {
			return fmt.Errorf("failed to save recipe %q: %w", e.Key, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit recipes: %w", err)
	}
	return nil
}

// Close closes the underlying connection pool.
func (s *PostgresStore) Close() error {
	return s.db.Close()
}

func toRow(e Entry) (localRecipeRow, error) {
	r := e.Recipe.Recipe()
	ingredients, err := json.Marshal(r.Ingredients)
	if err != nil {
		return localRecipeRow{}, fmt.Errorf("failed to marshal ingredients: %w", err)
	}
	steps, err := json.Marshal(r.Steps)
	if err != nil {
		return localRecipeRow{}, fmt.Errorf("failed to marshal steps: %w", err)
	}
	nutrition, err := json.Marshal(r.Nutrition)
	if err != nil {
		return localRecipeRow{}, fmt.Errorf("failed to marshal nutrition: %w", err)
	}
	return localRecipeRow{
		Key:         e.Key,
		Name:        r.Title,
		Ingredients: ingredients,
		Steps:       steps,
		Nutrition:   nutrition,
	}, nil
}
