package resources_test

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DoumanAsh/vn/assets"
	"github.com/DoumanAsh/vn/ecs"
	"github.com/DoumanAsh/vn/resources"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var loads atomic.Int32

type Palette struct {
	Background assets.TextureHandle
	Font       assets.FontHandle
}

func (p *Palette) Load(ctx *resources.Context) error {
	loads.Add(1)
	// widen the window in which concurrent fetches overlap
	time.Sleep(10 * time.Millisecond)

	var err error
	if p.Background, err = ctx.Loader.SolidTexture(assets.White); err != nil {
		return err
	}
	p.Font, err = ctx.Loader.LoadFont([]byte("font"))
	return err
}

type Broken struct{}

var errBroken = errors.New("no such texture")

func (b *Broken) Load(*resources.Context) error {
	return errBroken
}

func newCache() (*resources.Cache, *assets.MemoryLoader) {
	loader := assets.NewMemoryLoader()
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	return resources.NewCache(storage, loader, nil), loader
}

func TestFetchConstructsOnce(t *testing.T) {
	loads.Store(0)
	cache, loader := newCache()

	first, err := resources.Fetch[Palette](cache)
	require.NoError(t, err)
	second, err := resources.Fetch[Palette](cache)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.True(t, first.Background.Valid())
	assert.Equal(t, int32(1), loads.Load())
	assert.Equal(t, 2, loader.Len())
	assert.Equal(t, map[string]int{"resources_test.Palette": 1}, cache.Constructions())
}

func TestFetchConcurrent(t *testing.T) {
	loads.Store(0)
	cache, _ := newCache()

	var wg sync.WaitGroup
	results := make([]Palette, 16)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results[i] = resources.MustFetch[Palette](cache)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), loads.Load())
	for _, r := range results {
		assert.Equal(t, results[0], r)
	}
}

func TestFetchPropagatesFailure(t *testing.T) {
	cache, _ := newCache()

	_, err := resources.Fetch[Broken](cache)
	assert.ErrorIs(t, err, errBroken)
	assert.Empty(t, cache.Constructed())

	assert.Panics(t, func() { resources.MustFetch[Broken](cache) })
}

func TestFetchLoaderFailure(t *testing.T) {
	cache, loader := newCache()
	loader.FailOn(assets.KindSolid, errors.New("gpu lost"))

	_, err := resources.Fetch[Palette](cache)
	assert.ErrorContains(t, err, "gpu lost")
}

func TestReset(t *testing.T) {
	loads.Store(0)
	cache, _ := newCache()

	assert.False(t, resources.Reset[Palette](cache))

	first := resources.MustFetch[Palette](cache)
	assert.True(t, resources.Reset[Palette](cache))
	second := resources.MustFetch[Palette](cache)

	assert.Equal(t, int32(2), loads.Load())
	assert.NotEqual(t, first.Background, second.Background)
	assert.Equal(t, []string{"resources_test.Palette"}, cache.Constructed())
	assert.Equal(t, 2, cache.Constructions()["resources_test.Palette"])
}

type Slot[T any] struct {
	Value T
}

func (s *Slot[T]) Load(*resources.Context) error {
	var zero T
	s.Value = zero
	return nil
}

func TestFetchKeepsInstantiationsApart(t *testing.T) {
	cache, _ := newCache()

	resources.MustFetch[Slot[int]](cache)
	resources.MustFetch[Slot[string]](cache)

	assert.Equal(t, []string{"resources_test.Slot[int]", "resources_test.Slot[string]"}, cache.Constructed())
}

// resetOnConstruct drops every resource as soon as the cache logs its construction.
type resetOnConstruct struct {
	slog.Handler
	cache *resources.Cache
}

func (h *resetOnConstruct) Enabled(context.Context, slog.Level) bool { return true }

func (h *resetOnConstruct) Handle(_ context.Context, r slog.Record) error {
	if r.Message == "resource constructed" {
		resources.Reset[Palette](h.cache)
	}
	return nil
}

func TestFetchSurvivesConcurrentReset(t *testing.T) {
	handler := &resetOnConstruct{Handler: slog.DiscardHandler}
	storage := ecs.NewStorage(ecs.NewComponentRegistry())
	cache := resources.NewCache(storage, assets.NewMemoryLoader(), slog.New(handler))
	handler.cache = cache

	palette, err := resources.Fetch[Palette](cache)
	require.NoError(t, err)
	assert.True(t, palette.Background.Valid())
	assert.True(t, palette.Font.Valid())
}
