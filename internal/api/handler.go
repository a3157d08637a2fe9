package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"path/filepath"

	"github.com/gin-gonic/gin"

	"chefgenie/internal/resolver"
)

// StopMessage acknowledges a stop command.
const StopMessage = "ChefGenie conversation stopped."

// CommandProcessor turns a raw command into a resolution outcome.
type CommandProcessor interface {
	Process(ctx context.Context, text string) resolver.Outcome
}

// Catalog reports the size of the local dataset.
type Catalog interface {
	Len() int
}

// Handler handles HTTP requests.
type Handler struct {
	Processor CommandProcessor
	Catalog   Catalog
	StaticDir string
}

// NewHandler creates a new Handler.
func NewHandler(processor CommandProcessor, catalog Catalog, staticDir string) *Handler {
	return &Handler{Processor: processor, Catalog: catalog, StaticDir: staticDir}
}

var errNullText = errors.New("text must be a string, got null")

// ProcessRequest is the body of POST /process. A missing text is treated as
// empty, a null one is rejected.
type ProcessRequest struct {
	Text json.RawMessage `json:"text"`
}

// Command returns the text to process.
func (r ProcessRequest) Command() (string, error) {
	if len(r.Text) == 0 {
		return "", nil
	}
	var text *string
	if err := json.Unmarshal(r.Text, &text); err != nil {
		return "", err
	}
	if text == nil {
		return "", errNullText
	}
	return *text, nil
}

// Process handles a voice or text command and responds with a recipe, a stop
// acknowledgment, or an error payload.
func (h *Handler) Process(c *gin.Context) {
	var out resolver.Outcome
	var req ProcessRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		out = resolver.Outcome{State: resolver.StateInternalError, Err: err}
	} else if text, err := req.Command(); err != nil {
		out = resolver.Outcome{State: resolver.StateInternalError, Err: err}
	} else {
		out = h.Processor.Process(c.Request.Context(), text)
	}
	h.respond(c, out)
}

func (h *Handler) respond(c *gin.Context, out resolver.Outcome) {
	switch out.State {
	case resolver.StateStopped:
		c.JSON(http.StatusOK, gin.H{"stopped": true, "message": StopMessage})
	case resolver.StateRemoteResolved, resolver.StateLocalResolved:
		c.JSON(http.StatusOK, gin.H{"recipe": out.Recipe.Normalized()})
	case resolver.StateNotFound:
		c.JSON(http.StatusOK, gin.H{"error": out.Err.Error()})
	default:
		err := out.Err
		if err == nil {
			err = errors.New("unexpected resolution state " + out.State.String())
		}
		Logger(c).WithError(err).WithField("state", resolver.StateInternalError).Error("internal error")
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

// Health reports liveness and the number of local recipes.
func (h *Handler) Health(c *gin.Context) {
	n := 0
	if h.Catalog != nil {
		n = h.Catalog.Len()
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "recipes": n})
}

// StaticFile serves one file from the static directory with a fixed media
// type.
func (h *Handler) StaticFile(name, contentType string) gin.HandlerFunc {
	path := filepath.Join(h.StaticDir, name)
	return func(c *gin.Context) {
		c.Header("Content-Type", contentType)
		c.File(path)
	}
}
