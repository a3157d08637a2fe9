package main

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"chefgenie/internal/config"
)

const localRecipes = `{
	"pasta": {
		"name": "Local Pasta",
		"ingredients": ["200g pasta", "salt"],
		"steps": ["Boil water", "Cook pasta"],
		"nutrition": {"Calories": "350 kcal"}
	},
	"pancakes": {
		"name": "Pancakes",
		"ingredients": ["flour", "milk", "egg"],
		"steps": ["Whisk", "Fry"],
		"nutrition": {"Calories": "220 kcal"}
	}
}`

const carbonaraInformation = `{
	"id": 716429,
	"title": "Spaghetti Carbonara",
	"extendedIngredients": [
		{"name": "spaghetti", "original": "200g spaghetti"},
		{"name": "guanciale", "original": "100g guanciale"}
	],
	"analyzedInstructions": [
		{"name": "", "steps": [{"number": 1, "step": "Boil the pasta."}, {"number": 2, "step": "Fry the guanciale."}]},
		{"name": "Serving", "steps": [{"number": 1, "step": "Plate it."}]}
	],
	"nutrition": {"nutrients": [
		{"name": "Calories", "amount": 584.23, "unit": "kcal"},
		{"name": "Fat", "amount": 25, "unit": "g"},
		{"name": "Saturated Fat", "amount": 9.5, "unit": "g"},
		{"name": "Carbohydrates", "amount": 60, "unit": "g"}
	]}
}`

// fakeSpoonacular records the queries it receives and answers according to
// its mode.
type fakeSpoonacular struct {
	mu      sync.Mutex
	mode    string
	queries []string
	calls   int
}

func (f *fakeSpoonacular) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	f.calls++
	mode := f.mode
	if r.URL.Path == "/recipes/complexSearch" {
		f.queries = append(f.queries, r.URL.Query().Get("query"))
	}
	f.mu.Unlock()

	switch mode {
	case "down":
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	case "empty":
		w.Write([]byte(`{"results": [], "totalResults": 0}`))
		return
	case "detail-error":
		if strings.HasSuffix(r.URL.Path, "/information") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
	case "slow":
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
		return
	}

	if r.URL.Path == "/recipes/complexSearch" {
		w.Write([]byte(`{"results": [{"id": 716429, "title": "Spaghetti Carbonara"}], "totalResults": 1}`))
		return
	}
	w.Write([]byte(carbonaraInformation))
}

func (f *fakeSpoonacular) searchQueries() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.queries...)
}

func (f *fakeSpoonacular) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func setup(t *testing.T, mode string) (*gin.Engine, *fakeSpoonacular) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	logrus.SetOutput(&bytes.Buffer{})
	t.Cleanup(func() { logrus.SetOutput(os.Stderr) })

	fake := &fakeSpoonacular{mode: mode}
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)

	static := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(static, "recipes.json"), []byte(localRecipes), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(static, "index.html"), []byte("<h1>ChefGenie</h1>"), 0o644))

	cfg := config.Default()
	cfg.SpoonacularAPIKey = "test-key"
	cfg.SpoonacularBaseURL = srv.URL
	cfg.RemoteTimeout = config.Duration{Duration: 100 * time.Millisecond}
	cfg.StaticDir = static

	dataset, err := loadDataset(context.Background(), cfg)
	require.NoError(t, err)

	return buildRouter(cfg, dataset), fake
}

func process(r http.Handler, text string) *httptest.ResponseRecorder {
	body := `{"text": "` + text + `"}`
	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	return rr
}

func TestProcess_RemoteRecipe(t *testing.T) {
	r, fake := setup(t, "ok")
	rr := process(r, "Hey ChefGenie, recipe for Pasta Carbonara")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []string{"pasta carbonara"}, fake.searchQueries())
	assert.JSONEq(t, `{"recipe": {
		"title": "Spaghetti Carbonara",
		"ingredients": ["200g spaghetti", "100g guanciale"],
		"steps": ["Boil the pasta.", "Fry the guanciale."],
		"nutrition": {"Calories": "584.23 kcal", "Fat": "25 g", "Saturated Fat": "9.5 g"}
	}}`, rr.Body.String())
}

func TestProcess_FallsBackToLocal(t *testing.T) {
	for _, mode := range []string{"down", "empty", "detail-error", "slow"} {
		t.Run(mode, func(t *testing.T) {
			r, _ := setup(t, mode)
			rr := process(r, "Hey ChefGenie, recipe for Pasta Carbonara")

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.JSONEq(t, `{"recipe": {
				"title": "Local Pasta",
				"ingredients": ["200g pasta", "salt"],
				"steps": ["Boil water", "Cook pasta"],
				"nutrition": {"Calories": "350 kcal"}
			}}`, rr.Body.String())
		})
	}
}

func TestProcess_DishInKey(t *testing.T) {
	r, _ := setup(t, "down")
	rr := process(r, "how to make pan")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"title":"Pancakes"`)
}

func TestProcess_NotFound(t *testing.T) {
	r, _ := setup(t, "empty")
	rr := process(r, "Recipe for Tiramisu")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"error": "No recipe found for 'tiramisu'"}`, rr.Body.String())
}

func TestProcess_StopMakesNoCalls(t *testing.T) {
	r, fake := setup(t, "ok")
	for _, text := range []string{"stop", "Cancel", "EXIT", "Quit"} {
		rr := process(r, text)

		assert.Equal(t, http.StatusOK, rr.Code)
		assert.JSONEq(t, `{"stopped": true, "message": "ChefGenie conversation stopped."}`, rr.Body.String())
	}
	assert.Zero(t, fake.callCount())
}

func TestProcess_MalformedBody(t *testing.T) {
	r, _ := setup(t, "ok")
	req := httptest.NewRequest(http.MethodPost, "/process", bytes.NewBufferString(`not json`))
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	assert.Contains(t, rr.Body.String(), `"error"`)
}

func TestIndex(t *testing.T) {
	r, _ := setup(t, "ok")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "text/html; charset=utf-8", rr.Header().Get("Content-Type"))
	assert.Equal(t, "<h1>ChefGenie</h1>", rr.Body.String())
}

func TestLoadDataset_File(t *testing.T) {
	cfg := config.Default()
	cfg.RecipesFile = filepath.Join(t.TempDir(), "recipes.json")
	require.NoError(t, os.WriteFile(cfg.RecipesFile, []byte(localRecipes), 0o644))

	d, err := loadDataset(context.Background(), cfg)
	require.NoError(t, err)
	assert.Equal(t, []string{"pasta", "pancakes"}, d.Keys())
}
