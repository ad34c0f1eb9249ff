package limits

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/emiliopalmerini/mclaude-statusline/internal/domain"
)

// CatalogFileName is the file name LiteLLM publishes its model table under.
const CatalogFileName = "model_prices_and_context_window.json"

// DefaultCatalogTTL is how long a catalog file stays trusted after it was written.
const DefaultCatalogTTL = 7 * 24 * time.Hour

// catalogEntry is the subset of a LiteLLM model entry that matters here.
type catalogEntry struct {
	MaxInputTokens float64 `json:"max_input_tokens"`
	MaxTokens      float64 `json:"max_tokens"`
}

func (e catalogEntry) limit() int64 {
	if e.MaxInputTokens > 0 {
		return int64(e.MaxInputTokens)
	}
	if e.MaxTokens > 0 {
		return int64(e.MaxTokens)
	}
	return 0
}

// Catalog resolves limits from a local LiteLLM-format JSON file. The file is
// loaded at most once; a stale or unreadable file resolves nothing.
type Catalog struct {
	path   string
	ttl    time.Duration
	now    func() time.Time
	logger domain.Logger

	mu      sync.Mutex
	loaded  bool
	loadErr error
	limits  map[string]int64
	keys    []string
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithTTL overrides DefaultCatalogTTL. A non-positive ttl disables the check.
func WithTTL(ttl time.Duration) CatalogOption {
	return func(c *Catalog) { c.ttl = ttl }
}

// WithClock sets the time source used for the freshness check.
func WithClock(now func() time.Time) CatalogOption {
	return func(c *Catalog) { c.now = now }
}

// WithLogger sets the logger for load failures.
func WithLogger(logger domain.Logger) CatalogOption {
	return func(c *Catalog) { c.logger = logger }
}

// NewCatalog creates a resolver over the catalog file at path.
func NewCatalog(path string, opts ...CatalogOption) *Catalog {
	c := &Catalog{path: path, ttl: DefaultCatalogTTL, now: time.Now}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load reads the catalog file. It is safe to call from a warm-up goroutine
// while Resolve runs elsewhere; only the first call does any work.
func (c *Catalog) Load(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.loaded {
		return c.loadErr
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	c.loaded = true

	limits, err := c.read()
	if err != nil {
		c.loadErr = err
		if c.logger != nil {
			c.logger.Debug("model catalog unavailable", "path", c.path, "error", err)
		}
		return err
	}
	c.limits = limits
	for k := range limits {
		c.keys = append(c.keys, k)
	}
	sort.Slice(c.keys, func(i, j int) bool {
		if len(c.keys[i]) != len(c.keys[j]) {
			return len(c.keys[i]) > len(c.keys[j])
		}
		return c.keys[i] < c.keys[j]
	})
	return nil
}

var errStaleCatalog = errors.New("model catalog is stale")

func (c *Catalog) read() (map[string]int64, error) {
	if c.path == "" {
		return nil, fs.ErrNotExist
	}
	info, err := os.Stat(c.path)
	if err != nil {
		return nil, err
	}
	if c.ttl > 0 && c.now().Sub(info.ModTime()) > c.ttl {
		return nil, errStaleCatalog
	}

	data, err := os.ReadFile(c.path)
	if err != nil {
		return nil, err
	}
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse model catalog: %w", err)
	}

	limits := make(map[string]int64, len(raw))
	for id, body := range raw {
		var entry catalogEntry
		// Entries with non-numeric limits (the catalog's own sample_spec) are skipped
		if err := json.Unmarshal(body, &entry); err != nil {
			continue
		}
		if limit := entry.limit(); limit > 0 {
			limits[strings.ToLower(id)] = limit
		}
	}
	return limits, nil
}

// Resolve looks the model up by exact id, then by the longest catalog key
// contained in the id.
func (c *Catalog) Resolve(ctx context.Context, modelID string) (int64, error) {
	if err := c.Load(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, domain.ErrUnresolvedModelLimit
	}

	id := strings.ToLower(strings.TrimSpace(modelID))
	if id == "" {
		return 0, domain.ErrUnresolvedModelLimit
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if limit, ok := c.limits[id]; ok {
		return limit, nil
	}
	for _, k := range c.keys {
		if strings.Contains(id, k) {
			return c.limits[k], nil
		}
	}
	return 0, domain.ErrUnresolvedModelLimit
}
