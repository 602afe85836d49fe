// Package dist resolves and caches build distributions.
//
// A distribution is an immutable, pre-built toolchain tree (a CPython
// build, say) identified by name, version and target triple. Resolving one
// is expensive, so a [Cache] loads each location at most once and hands the
// same value to every caller; sessions evaluating different configs are
// expected to share a single Cache.
package dist

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"

	"go.uber.org/multierr"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// ErrCacheClosed is returned by Resolve after Close.
var ErrCacheClosed = errors.New("distribution cache is closed")

// Location identifies a distribution to resolve.
type Location struct {
	Name    string
	Version string
	Triple  string

	// Path points at a local archive or unpacked tree. URL and SHA256
	// describe a remote archive for loaders that fetch.
	Path   string
	URL    string
	SHA256 string
}

func (l Location) key() string {
	return l.Name + "\x00" + l.Version + "\x00" + l.Triple + "\x00" + l.Path + "\x00" + l.URL
}

// Distribution is a resolved distribution. Values are immutable after
// construction and safe to share across sessions and goroutines.
type Distribution struct {
	name    string
	version string
	triple  string
	root    string
}

// NewDistribution constructs a resolved distribution. Loaders call this;
// nothing mutates the value afterwards.
func NewDistribution(name, version, triple, root string) *Distribution {
	return &Distribution{name: name, version: version, triple: triple, root: root}
}

func (d *Distribution) Name() string    { return d.name }
func (d *Distribution) Version() string { return d.version }
func (d *Distribution) Triple() string  { return d.triple }

// Root returns the directory or archive the distribution resolved to.
func (d *Distribution) Root() string { return d.root }

// Loader materializes a distribution, using storageDir for anything it
// needs to write.
type Loader func(ctx context.Context, loc Location, storageDir string) (*Distribution, error)

// Option configures a Cache.
type Option func(*Cache)

// WithLoader replaces the default local-path loader.
func WithLoader(l Loader) Option {
	return func(c *Cache) { c.loader = l }
}

// WithLogger sets the logger the cache reports loads through.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Cache) { c.logger = logger }
}

// Cache resolves each Location at most once. Concurrent resolves of the
// same location share one load; failed loads are not cached and a later
// resolve retries. Safe for concurrent use.
type Cache struct {
	storageDir string
	loader     Loader
	logger     *zap.Logger

	group singleflight.Group

	mu      sync.Mutex
	closed  bool
	entries map[string]*Distribution
	pending map[string]Location
}

func NewCache(storageDir string, opts ...Option) *Cache {
	c := &Cache{
		storageDir: storageDir,
		loader:     loadLocal,
		logger:     zap.NewNop(),
		entries:    make(map[string]*Distribution),
		pending:    make(map[string]Location),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// StorageDir returns the directory loads materialize into. It is fixed at
// construction; callers that change their build layout afterwards keep
// resolving against the original directory.
func (c *Cache) StorageDir() string { return c.storageDir }

// Len reports how many distributions have resolved.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// Resolve returns the distribution for loc, loading it on first use.
func (c *Cache) Resolve(ctx context.Context, loc Location) (*Distribution, error) {
	key := loc.key()

	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil, ErrCacheClosed
	}
	if d, ok := c.entries[key]; ok {
		c.mu.Unlock()
		return d, nil
	}
	c.mu.Unlock()

	v, err, _ := c.group.Do(key, func() (any, error) {
		c.mu.Lock()
		if d, ok := c.entries[key]; ok {
			c.mu.Unlock()
			return d, nil
		}
		c.pending[key] = loc
		c.mu.Unlock()
		defer func() {
			c.mu.Lock()
			delete(c.pending, key)
			c.mu.Unlock()
		}()

		c.logger.Debug("loading distribution",
			zap.String("name", loc.Name),
			zap.String("version", loc.Version),
			zap.String("triple", loc.Triple))

		d, err := c.loader(ctx, loc, c.storageDir)
		if err != nil {
			return nil, fmt.Errorf("load distribution %s %s (%s): %w", loc.Name, loc.Version, loc.Triple, err)
		}

		c.mu.Lock()
		c.entries[key] = d
		c.mu.Unlock()
		return d, nil
	})
	if err != nil {
		return nil, err
	}
	return v.(*Distribution), nil
}

// Close marks the cache closed; further Resolve calls fail with
// ErrCacheClosed. Resolved distributions hold no resources to release, but
// Close reports any loads still in flight, aggregated per location: a
// pending load means a session is shutting down before its resolutions
// finished. Closing twice is a no-op.
func (c *Cache) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return nil
	}
	c.closed = true

	var errs error
	for _, loc := range c.pending {
		errs = multierr.Append(errs,
			fmt.Errorf("load of %s %s (%s) still in flight", loc.Name, loc.Version, loc.Triple))
	}
	return errs
}

// loadLocal is the default loader: loc.Path must name an existing archive
// or unpacked tree. Remote locations need a fetching loader.
func loadLocal(ctx context.Context, loc Location, storageDir string) (*Distribution, error) {
	if loc.Path == "" {
		if loc.URL != "" {
			return nil, fmt.Errorf("location %q is remote and no fetching loader is configured", loc.URL)
		}
		return nil, fmt.Errorf("location for %q names no local path", loc.Name)
	}
	if _, err := os.Stat(loc.Path); err != nil {
		return nil, err
	}
	return NewDistribution(loc.Name, loc.Version, loc.Triple, loc.Path), nil
}
