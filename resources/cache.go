// Package resources lazily constructs and memoizes shared singleton resources such as
// fonts and reusable textures.
package resources

import (
	"fmt"
	"log/slog"
	"reflect"
	"sort"
	"sync"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"golang.org/x/sync/singleflight"
)

// Context is handed to resource constructors.
type Context struct {
	Storage *ecs.Storage
	Loader  assets.Loader
	Logger  *slog.Logger
}

// Resource is a value type R whose pointer knows how to fill it in.
// Load must not call Fetch for its own type.
type Resource[R any] interface {
	*R
	Load(ctx *Context) error
}

// Cache keeps at most one instance of every resource type in the storage singletons.
// Fetch is safe to call from several goroutines; other code must not mutate the
// storage's singletons concurrently with it.
type Cache struct {
	ctx   *Context
	group singleflight.Group

	mu            sync.RWMutex
	constructions map[reflect.Type]int
}

// NewCache creates a cache storing resources in storage. A nil logger discards output.
func NewCache(storage *ecs.Storage, loader assets.Loader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Cache{
		ctx: &Context{
			Storage: storage,
			Loader:  loader,
			Logger:  logger,
		},
		constructions: make(map[reflect.Type]int),
	}
}

// Context returns the construction context shared by every resource.
func (c *Cache) Context() *Context {
	return c.ctx
}

func lookup[R any](c *Cache) (R, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	var ptr *R
	if !c.ctx.Storage.ReadSingleton(&ptr) {
		var zero R
		return zero, false
	}
	return *ptr, true
}

// Fetch returns a copy of the R resource, constructing and storing it first if it
// does not exist yet. Concurrent first calls share one construction.
func Fetch[R any, P Resource[R]](c *Cache) (R, error) {
	if r, ok := lookup[R](c); ok {
		return r, nil
	}

	t := reflect.TypeFor[R]()
	v, err, _ := c.group.Do(t.PkgPath()+" "+t.String(), func() (any, error) {
		if r, ok := lookup[R](c); ok {
			return r, nil
		}

		var r R
		if err := P(&r).Load(c.ctx); err != nil {
			return nil, fmt.Errorf("load resource %s: %w", t, err)
		}

		c.mu.Lock()
		c.ctx.Storage.AddSingleton(r)
		c.constructions[t]++
		c.mu.Unlock()

		c.ctx.Logger.Debug("resource constructed", slog.String("type", t.String()))
		return r, nil
	})
	if err != nil {
		var zero R
		return zero, err
	}
	// the constructed value is returned even if a Reset raced with the construction
	return v.(R), nil
}

// MustFetch is Fetch for setup code, where a failing constructor is fatal.
func MustFetch[R any, P Resource[R]](c *Cache) R {
	r, err := Fetch[R, P](c)
	if err != nil {
		panic(err)
	}
	return r
}

// Reset drops the R resource so the next Fetch constructs it again.
// Returns false if it was not constructed.
func Reset[R any](c *Cache) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.ctx.Storage.RemoveSingleton(reflect.TypeFor[R]())
}

// Constructions returns how many times each resource type was constructed, keyed by type name.
func (c *Cache) Constructions() map[string]int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	out := make(map[string]int, len(c.constructions))
	for t, n := range c.constructions {
		out[t.String()] = n
	}
	return out
}

// Constructed lists the names of resource types constructed at least once, sorted.
func (c *Cache) Constructed() []string {
	names := make([]string, 0)
	for name := range c.Constructions() {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
