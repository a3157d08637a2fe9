package resolver

import (
	"context"
	"fmt"

	"chefgenie/internal/command"
	"chefgenie/internal/logging"
	"chefgenie/internal/platform/spoonacular"
	"chefgenie/internal/recipe"
)

// State is a step of the per-request resolution state machine.
type State int

const (
	StateReceived State = iota
	StateNormalized
	StateStopped
	StateRemoteAttempted
	StateRemoteResolved
	StateLocalAttempted
	StateLocalResolved
	StateNotFound
	StateInternalError
)

var stateNames = map[State]string{
	StateReceived:        "received",
	StateNormalized:      "normalized",
	StateStopped:         "stopped",
	StateRemoteAttempted: "remote_attempted",
	StateRemoteResolved:  "remote_resolved",
	StateLocalAttempted:  "local_attempted",
	StateLocalResolved:   "local_resolved",
	StateNotFound:        "not_found",
	StateInternalError:   "internal_error",
}

func (s State) String() string {
	if name, ok := stateNames[s]; ok {
		return name
	}
	return fmt.Sprintf("state(%d)", int(s))
}

// Terminal reports whether s ends a request.
func (s State) Terminal() bool {
	switch s {
	case StateStopped, StateRemoteResolved, StateLocalResolved, StateNotFound, StateInternalError:
		return true
	}
	return false
}

// NotFoundError reports that no source had a recipe for Dish.
type NotFoundError struct {
	Dish string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("No recipe found for '%s'", e.Dish)
}

// Outcome is the terminal result of processing one command.
type Outcome struct {
	State  State
	Dish   string
	Recipe *recipe.Recipe
	Err    error
}

// RemoteResult is the result of the remote lookup step: either a shaped
// recipe or the reason the remote could not provide one.
type RemoteResult struct {
	Recipe *recipe.Recipe
	Err    error
}

// OK reports whether the remote lookup produced a recipe.
func (r RemoteResult) OK() bool {
	return r.Err == nil && r.Recipe != nil
}

// RecipeAPI is the remote search and detail API.
type RecipeAPI interface {
	Search(ctx context.Context, query string) (*spoonacular.SearchResult, error)
	Information(ctx context.Context, id int) (*spoonacular.Information, error)
}

// LocalSource is the read-only local dataset.
type LocalSource interface {
	Match(dish string) (recipe.Entry, bool)
}

// Resolver finds a recipe for a dish, trying the remote API before the local
// dataset.
type Resolver struct {
	API   RecipeAPI
	Local LocalSource
}

// New creates a new Resolver.
func New(api RecipeAPI, local LocalSource) *Resolver {
	return &Resolver{API: api, Local: local}
}

// Process parses a raw command and resolves it. Stop commands return
// without touching any source.
func (r *Resolver) Process(ctx context.Context, text string) Outcome {
	log := logging.FromContext(ctx)
	log.WithField("state", StateReceived).Debug("command received")

	cmd := command.Parse(text)
	if cmd.Stop {
		log.WithField("state", StateStopped).Info("conversation stopped")
		return Outcome{State: StateStopped}
	}
	log.WithField("state", StateNormalized).WithField("dish", cmd.Dish).Debug("command normalized")
	return r.Resolve(ctx, cmd.Dish)
}

// Resolve returns the first recipe found for dish, in source priority order.
func (r *Resolver) Resolve(ctx context.Context, dish string) Outcome {
	log := logging.FromContext(ctx).WithField("dish", dish)
	log.Info("requested dish")

	log.WithField("state", StateRemoteAttempted).Debug("trying remote api")
	remote := r.LookupRemote(ctx, dish)
	if remote.OK() {
		log.WithField("state", StateRemoteResolved).WithField("title", remote.Recipe.Title).Info("resolved remote recipe")
		return Outcome{State: StateRemoteResolved, Dish: dish, Recipe: remote.Recipe}
	}
	log.WithError(remote.Err).Warn("remote recipe lookup failed")

	log.WithField("state", StateLocalAttempted).Debug("trying local dataset")
	if r.Local != nil {
		if e, ok := r.Local.Match(dish); ok {
			log.WithField("state", StateLocalResolved).WithField("recipe", e.Recipe.Name).Info("matched local recipe")
			lr := e.Recipe.Recipe()
			return Outcome{State: StateLocalResolved, Dish: dish, Recipe: &lr}
		}
	}

	log.WithField("state", StateNotFound).Info("no recipe found")
	return Outcome{State: StateNotFound, Dish: dish, Err: &NotFoundError{Dish: dish}}
}

// LookupRemote searches the API for dish and shapes the details of the first
// hit. Any failure is reported in the result, never returned as an error.
func (r *Resolver) LookupRemote(ctx context.Context, dish string) RemoteResult {
	if r.API == nil {
		return RemoteResult{Err: spoonacular.ErrMissingAPIKey}
	}

	hit, err := r.API.Search(ctx, dish)
	if err != nil {
		return RemoteResult{Err: fmt.Errorf("search: %w", err)}
	}

	info, err := r.API.Information(ctx, hit.ID)
	if err != nil {
		return RemoteResult{Err: fmt.Errorf("information for %d: %w", hit.ID, err)}
	}

	shaped, err := ShapeRemote(dish, info)
	if err != nil {
		return RemoteResult{Err: fmt.Errorf("shape %d: %w", hit.ID, err)}
	}
	return RemoteResult{Recipe: &shaped}
}
