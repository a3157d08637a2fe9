package spoonacular

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

// DefaultBaseURL is the public Spoonacular API endpoint.
const DefaultBaseURL = "https://api.spoonacular.com"

// DefaultTimeout bounds each request made by the client.
const DefaultTimeout = 5 * time.Second

var (
	// ErrMissingAPIKey is returned when the client has no API key configured.
	ErrMissingAPIKey = errors.New("spoonacular api key not configured")
	// ErrNoResults is returned when a search matches nothing.
	ErrNoResults = errors.New("spoonacular search returned no results")
)

// StatusError is returned for any non-200 response.
type StatusError struct {
	Op         string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("spoonacular %s: received non-OK status code: %d", e.Op, e.StatusCode)
}

// Client is a client for the Spoonacular recipe API.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	timeout    time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL points the client at another API host.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) { c.baseURL = baseURL }
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// NewClient creates a new Spoonacular client.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		baseURL:    DefaultBaseURL,
		apiKey:     apiKey,
		timeout:    DefaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// SearchResponse is the body of /recipes/complexSearch.
type SearchResponse struct {
	Results      []SearchResult `json:"results"`
	TotalResults int            `json:"totalResults"`
}

// SearchResult is one hit of a search.
type SearchResult struct {
	ID    int    `json:"id"`
	Title string `json:"title"`
}

// Information is the body of /recipes/{id}/information.
type Information struct {
	ID                  int          `json:"id"`
	Title               string       `json:"title"`
	ExtendedIngredients  []Ingredient `json:"extendedIngredients"`
	AnalyzedInstructions Instructions `json:"analyzedInstructions"`
	Nutrition            *Nutrition   `json:"nutrition"`
}

// Instructions is the analyzedInstructions field. Present is set whenever the
// key appears in the payload, including as null.
type Instructions struct {
	Present bool
	Groups  []InstructionGroup
}

func (in *Instructions) UnmarshalJSON(data []byte) error {
	in.Present = true
	return json.Unmarshal(data, &in.Groups)
}

// Ingredient is one entry of extendedIngredients.
type Ingredient struct {
	Name     string `json:"name"`
	Original string `json:"original"`
}

// InstructionGroup is a named list of steps.
type InstructionGroup struct {
	Name  string `json:"name"`
	Steps []Step `json:"steps"`
}

// Step is a single instruction.
type Step struct {
	Number int    `json:"number"`
	Step   string `json:"step"`
}

// Nutrition holds the nutrient breakdown of a recipe.
type Nutrition struct {
	Nutrients []Nutrient `json:"nutrients"`
}

// Nutrient is one nutrient amount. Amount keeps the number as sent.
type Nutrient struct {
	Name   string      `json:"name"`
	Amount json.Number `json:"amount"`
	Unit   string      `json:"unit"`
}

// Search returns the first recipe matching query.
func (c *Client) Search(ctx context.Context, query string) (*SearchResult, error) {
	params := url.Values{}
	params.Set("query", query)
	params.Set("number", "1")

	var resp SearchResponse
	if err := c.get(ctx, "search", "/recipes/complexSearch", params, &resp); err != nil {
		return nil, err
	}
	if len(resp.Results) == 0 {
		return nil, ErrNoResults
	}
	return &resp.Results[0], nil
}

// Information fetches full recipe details, including nutrition.
func (c *Client) Information(ctx context.Context, id int) (*Information, error) {
	params := url.Values{}
	params.Set("includeNutrition", "true")

	var info Information
	path := "/recipes/" + strconv.Itoa(id) + "/information"
	if err := c.get(ctx, "information", path, params, &info); err != nil {
		return nil, err
	}
	return &info, nil
}

func (c *Client) get(ctx context.Context, op, path string, params url.Values, v any) error {
	if c.apiKey == "" {
		return ErrMissingAPIKey
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params.Set("apiKey", c.apiKey)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path+"?"+params.Encode(), nil)
	if err != nil {
		return fmt.Errorf("failed to create %s request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send %s request: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{Op: op, StatusCode: resp.StatusCode}
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode %s response: %w", op, err)
	}
	return nil
}
