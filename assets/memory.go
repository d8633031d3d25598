package assets

import (
	"errors"
	"fmt"
	"sync"
)

// Kind names what a MemoryLoader entry was created from.
type Kind int

const (
	KindSolid Kind = iota + 1
	KindEncoded
	KindFile
	KindFont
	KindSpriteSheet
)

func (k Kind) String() string {
	switch k {
	case KindSolid:
		return "solid"
	case KindEncoded:
		return "encoded"
	case KindFile:
		return "file"
	case KindFont:
		return "font"
	case KindSpriteSheet:
		return "sprite_sheet"
	}
	return fmt.Sprintf("Kind(%d)", int(k))
}

// Entry records one load performed by a MemoryLoader.
type Entry struct {
	Kind   Kind
	Color  Color
	Path   string
	Size   int
	Frames int
}

// MemoryLoader is a Loader that decodes nothing and only hands out handles.
// It backs headless runs and tests.
type MemoryLoader struct {
	mu       sync.Mutex
	next     uint32
	entries  map[uint32]Entry
	failures map[Kind]error
}

func NewMemoryLoader() *MemoryLoader {
	return &MemoryLoader{entries: make(map[uint32]Entry)}
}

// FailOn makes every subsequent load of the given kind return err.
func (m *MemoryLoader) FailOn(kind Kind, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failures == nil {
		m.failures = make(map[Kind]error)
	}
	m.failures[kind] = err
}

func (m *MemoryLoader) add(e Entry) (uint32, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.failures[e.Kind]; err != nil {
		return 0, err
	}
	m.next++
	m.entries[m.next] = e
	return m.next, nil
}

func (m *MemoryLoader) SolidTexture(c Color) (TextureHandle, error) {
	h, err := m.add(Entry{Kind: KindSolid, Color: c})
	return TextureHandle(h), err
}

func (m *MemoryLoader) DecodeTexture(data []byte) (TextureHandle, error) {
	if len(data) == 0 {
		return 0, &TextureError{Source: "memory", Err: errors.New("empty image data")}
	}
	h, err := m.add(Entry{Kind: KindEncoded, Size: len(data)})
	return TextureHandle(h), err
}

func (m *MemoryLoader) LoadTextureFile(path string) (TextureHandle, error) {
	h, err := m.add(Entry{Kind: KindFile, Path: path})
	return TextureHandle(h), err
}

func (m *MemoryLoader) LoadFont(data []byte) (FontHandle, error) {
	h, err := m.add(Entry{Kind: KindFont, Size: len(data)})
	return FontHandle(h), err
}

func (m *MemoryLoader) LoadSpriteSheet(path string, frames int) (SpriteSheetHandle, error) {
	if frames <= 0 {
		return 0, fmt.Errorf("sprite sheet %s: frame count must be positive, got %d", path, frames)
	}
	h, err := m.add(Entry{Kind: KindSpriteSheet, Path: path, Frames: frames})
	return SpriteSheetHandle(h), err
}

// Lookup returns the entry behind a raw handle value.
func (m *MemoryLoader) Lookup(handle uint32) (Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[handle]
	if !ok {
		return Entry{}, fmt.Errorf("handle %d: %w", handle, ErrNotFound)
	}
	return e, nil
}

// Count returns how many loads of the given kind succeeded.
func (m *MemoryLoader) Count(kind Kind) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, e := range m.entries {
		if e.Kind == kind {
			n++
		}
	}
	return n
}

// Len returns the number of successful loads.
func (m *MemoryLoader) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
