package draftsmith

import (
	"time"

	"github.com/draftsmith/draftsmith/bridge"
	"github.com/draftsmith/draftsmith/generators"
	"github.com/draftsmith/draftsmith/models"
	"github.com/draftsmith/draftsmith/stores"
)

// Config holds configuration for the diagram agent
type Config struct {
	ModelName       string
	Model           models.Model
	MaxRetries      int
	RouteTimeout    time.Duration
	GenerateTimeout time.Duration
	RenderTimeout   time.Duration
	Store           stores.MessageStore
	Traces          stores.TraceStore
	Renderer        bridge.ToolCaller
}

// NewConfig creates a new configuration with default values
func NewConfig() *Config {
	return &Config{
		ModelName:       "gemini-2.0-flash",
		MaxRetries:      generators.DefaultMaxRetries,
		RouteTimeout:    30 * time.Second,
		GenerateTimeout: 60 * time.Second,
		RenderTimeout:   120 * time.Second,
		Renderer:        bridge.NewHTTPToolCaller(""),
	}
}

// WithModelName sets the model name for the configuration
func (c *Config) WithModelName(modelName string) *Config {
	c.ModelName = modelName
	return c
}

// WithModel sets the backing model, overriding ModelName
func (c *Config) WithModel(model models.Model) *Config {
	c.Model = model
	return c
}

// WithMaxRetries sets the per-dialect validation retry bound
func (c *Config) WithMaxRetries(maxRetries int) *Config {
	c.MaxRetries = maxRetries
	return c
}

// WithStore sets the message store for the configuration
func (c *Config) WithStore(store stores.MessageStore) *Config {
	c.Store = store
	return c
}

// WithSQLiteStore sets a SQLite store with the specified database path
func (c *Config) WithSQLiteStore(dbPath string) *Config {
	store, err := stores.NewSQLiteStoreSimple(dbPath)
	if err != nil {
		panic("Failed to create SQLite store: " + err.Error())
	}
	c.Store = store
	return c
}

// WithPostgresStore sets a PostgreSQL store with the specified connection parameters
func (c *Config) WithPostgresStore(host, user, password, dbname string, port int) *Config {
	store, err := stores.NewPostgresStoreDefault(host, user, password, dbname, port)
	if err != nil {
		panic("Failed to create PostgreSQL store: " + err.Error())
	}
	c.Store = store
	return c
}

// WithTraceStore sets the trace store for the configuration
func (c *Config) WithTraceStore(traces stores.TraceStore) *Config {
	c.Traces = traces
	return c
}

// WithRenderer sets the tool caller used to reach the render service
func (c *Config) WithRenderer(renderer bridge.ToolCaller) *Config {
	c.Renderer = renderer
	return c
}

// WithRenderService points the default HTTP tool caller at the given base URL
func (c *Config) WithRenderService(baseURL string) *Config {
	c.Renderer = bridge.NewHTTPToolCaller(baseURL)
	return c
}

// WithTimeouts sets the per-stage timeouts
func (c *Config) WithTimeouts(route, generate, render time.Duration) *Config {
	c.RouteTimeout = route
	c.GenerateTimeout = generate
	c.RenderTimeout = render
	return c
}
