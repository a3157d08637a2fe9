package recipe

import (
	"encoding/json"
	"errors"
)

// Recipe is the payload returned to callers regardless of which source
// resolved it.
type Recipe struct {
	Title       string            `json:"title"`
	Ingredients []string          `json:"ingredients"`
	Steps       []string          `json:"steps"`
	Nutrition   map[string]string `json:"nutrition"`
}

// Normalized returns r with nil collections replaced by empty ones so the
// JSON encoding always carries arrays and an object.
func (r Recipe) Normalized() Recipe {
	if r.Ingredients == nil {
		r.Ingredients = []string{}
	}
	if r.Steps == nil {
		r.Steps = []string{}
	}
	if r.Nutrition == nil {
		r.Nutrition = map[string]string{}
	}
	return r
}

// LocalRecipe is one entry of the local dataset.
type LocalRecipe struct {
	Name        string            `json:"name"`
	Ingredients []string          `json:"ingredients"`
	Steps       []string          `json:"steps"`
	Nutrition   map[string]string `json:"nutrition"`
}

var errMissingName = errors.New("recipe entry has no name")

// UnmarshalJSON implements the json.Unmarshaler interface for LocalRecipe.
// Entries without a name are rejected at load time.
func (l *LocalRecipe) UnmarshalJSON(data []byte) error {
	type Alias LocalRecipe // avoid infinite recursion
	aux := (*Alias)(l)
	if err := json.Unmarshal(data, aux); err != nil {
		return err
	}
	if l.Name == "" {
		return errMissingName
	}
	return nil
}

// Recipe converts the stored entry to the response shape, field for field.
func (l LocalRecipe) Recipe() Recipe {
	return Recipe{
		Title:       l.Name,
		Ingredients: l.Ingredients,
		Steps:       l.Steps,
		Nutrition:   l.Nutrition,
	}.Normalized()
}
