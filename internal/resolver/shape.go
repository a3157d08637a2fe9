package resolver

import (
	"errors"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"chefgenie/internal/platform/spoonacular"
	"chefgenie/internal/recipe"
)

// maxNutrients caps how many nutrients a remote recipe reports.
const maxNutrients = 3

// ErrNoInstructions is returned when a remote recipe carries an empty or null
// instruction group list.
var ErrNoInstructions = errors.New("recipe has no instruction groups")

// ShapeRemote maps a Spoonacular recipe into the response shape. An empty API
// title counts as missing and falls back to the title-cased dish.
func ShapeRemote(dish string, info *spoonacular.Information) (recipe.Recipe, error) {
	r := recipe.Recipe{
		Title:       info.Title,
		Ingredients: make([]string, 0, len(info.ExtendedIngredients)),
		Steps:       []string{},
		Nutrition:   map[string]string{},
	}
	if r.Title == "" {
		r.Title = cases.Title(language.English).String(dish)
	}

	for _, ing := range info.ExtendedIngredients {
		r.Ingredients = append(r.Ingredients, ing.Original)
	}

	// only the first instruction group is used
	if info.AnalyzedInstructions.Present {
		groups := info.AnalyzedInstructions.Groups
		if len(groups) == 0 {
			return recipe.Recipe{}, ErrNoInstructions
		}
		for _, s := range groups[0].Steps {
			r.Steps = append(r.Steps, s.Step)
		}
	}

	if info.Nutrition != nil {
		nutrients := info.Nutrition.Nutrients
		if len(nutrients) > maxNutrients {
			nutrients = nutrients[:maxNutrients]
		}
		for _, n := range nutrients {
			r.Nutrition[n.Name] = n.Amount.String() + " " + n.Unit
		}
	}

	return r, nil
}
