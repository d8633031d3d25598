package ecs

import (
	"iter"
	"reflect"
	"sort"
	"unsafe"
)

// Storage is the main ECS storage interface. Entities live in a slot arena and every
// component type gets its own table indexed by slot.
type Storage struct {
	registry *ComponentRegistry
	tables   map[reflect.Type]iComponentStorage

	// generations[i] is the current generation of slot i; alive[i] marks occupied slots.
	// Slot 0 is reserved so that the zero EntityId never resolves.
	generations []uint32
	alive       []bool
	freeSlots   []uint32
	entityCount int

	singletons map[reflect.Type]*singletonEntry
}

type singletonEntry struct {
	value   reflect.Value // pointer to the stored value
	dataPtr unsafe.Pointer
}

// NewStorage creates a new ECS storage system with the given component registry
func NewStorage(registry *ComponentRegistry) *Storage {
	return &Storage{
		registry:    registry,
		tables:      make(map[reflect.Type]iComponentStorage),
		generations: []uint32{0},
		alive:       []bool{false},
		singletons:  make(map[reflect.Type]*singletonEntry),
	}
}

// Registry returns the component registry backing this storage.
func (s *Storage) Registry() *ComponentRegistry {
	return s.registry
}

// table returns the table for a component type, creating it on first use.
func (s *Storage) table(compType reflect.Type) iComponentStorage {
	if t, ok := s.tables[compType]; ok {
		return t
	}
	factory := s.registry.getFactory(compType)
	if factory == nil {
		panic("component type " + compType.String() + " not registered")
	}
	t := factory()
	s.tables[compType] = t
	return t
}

// lookupTable returns an existing table without creating one. Safe for concurrent readers.
func (s *Storage) lookupTable(compType reflect.Type) iComponentStorage {
	return s.tables[compType]
}

func (s *Storage) allocate() EntityId {
	if n := len(s.freeSlots); n > 0 {
		index := s.freeSlots[n-1]
		s.freeSlots = s.freeSlots[:n-1]
		s.alive[index] = true
		return NewEntityId(s.generations[index], index)
	}

	index := uint32(len(s.generations))
	s.generations = append(s.generations, 1)
	s.alive = append(s.alive, true)
	return NewEntityId(1, index)
}

// Spawn creates a new entity with the provided components
func (s *Storage) Spawn(components ...any) EntityId {
	types := extractComponentTypes(components)
	for _, t := range types {
		// fail before allocating so a bad spawn leaves no half-built entity behind
		s.table(t)
	}

	id := s.allocate()
	s.entityCount++
	for i, comp := range components {
		s.table(types[i]).Set(int(id.Index()), comp)
	}
	return id
}

// Alive reports whether the id names a live entity.
func (s *Storage) Alive(id EntityId) bool {
	index := id.Index()
	if index == 0 || int(index) >= len(s.generations) {
		return false
	}
	return s.alive[index] && s.generations[index] == id.Generation()
}

// idAt returns the live id currently occupying a slot.
func (s *Storage) idAt(index int) EntityId {
	return NewEntityId(s.generations[index], uint32(index))
}

// Delete removes all data related to the entity ID. Returns false if the id was not alive.
func (s *Storage) Delete(id EntityId) bool {
	if !s.Alive(id) {
		return false
	}

	index := id.Index()
	for _, t := range s.tables {
		t.Delete(int(index))
	}

	s.alive[index] = false
	s.generations[index]++
	s.freeSlots = append(s.freeSlots, index)
	s.entityCount--
	return true
}

// AddComponent attaches a component to a live entity, replacing any component of the same type.
// Returns false if the entity is not alive.
func (s *Storage) AddComponent(id EntityId, component any) bool {
	if !s.Alive(id) {
		return false
	}
	compType := componentType(component)
	return s.table(compType).Set(int(id.Index()), component)
}

// RemoveComponent detaches the component of the given type. Returns false if it was absent.
func (s *Storage) RemoveComponent(id EntityId, compType reflect.Type) bool {
	if !s.Alive(id) {
		return false
	}
	t := s.lookupTable(compType)
	if t == nil {
		return false
	}
	return t.Delete(int(id.Index()))
}

// GetComponent returns the component for the given entity ID and component type
func (s *Storage) GetComponent(id EntityId, compType reflect.Type) any {
	if !s.Alive(id) {
		return nil
	}
	t := s.lookupTable(compType)
	if t == nil {
		return nil
	}
	return t.Get(int(id.Index()))
}

// HasComponent checks if an entity has a specific component type
func (s *Storage) HasComponent(id EntityId, compType reflect.Type) bool {
	if !s.Alive(id) {
		return false
	}
	t := s.lookupTable(compType)
	if t == nil {
		return false
	}
	return t.Has(int(id.Index()))
}

// EntityCount returns the number of live entities.
func (s *Storage) EntityCount() int {
	return s.entityCount
}

// Entities iterates every live entity id in slot order.
func (s *Storage) Entities() iter.Seq[EntityId] {
	return func(yield func(EntityId) bool) {
		for index := 1; index < len(s.alive); index++ {
			if !s.alive[index] {
				continue
			}
			if !yield(s.idAt(index)) {
				return
			}
		}
	}
}

// ComponentTypes returns the types of every component attached to the entity, sorted by name.
func (s *Storage) ComponentTypes(id EntityId) []reflect.Type {
	if !s.Alive(id) {
		return nil
	}
	types := make([]reflect.Type, 0)
	for t, table := range s.tables {
		if table.Has(int(id.Index())) {
			types = append(types, t)
		}
	}
	sort.Sort(byTypeName(types))
	return types
}

// AddSingleton stores value as the singleton for its type, replacing any previous instance.
func (s *Storage) AddSingleton(value any) {
	valueType := reflect.TypeOf(value)
	if valueType == nil {
		panic("cannot add nil singleton")
	}

	if entry, ok := s.singletons[valueType]; ok {
		// overwrite in place so pointers handed out earlier stay valid
		entry.value.Elem().Set(reflect.ValueOf(value))
		return
	}

	ptr := reflect.New(valueType)
	ptr.Elem().Set(reflect.ValueOf(value))
	s.singletons[valueType] = &singletonEntry{
		value:   ptr,
		dataPtr: ptr.UnsafePointer(),
	}
}

func (s *Storage) getSingletonEntry(t reflect.Type) *singletonEntry {
	return s.singletons[t]
}

// HasSingleton reports whether a singleton of the given type exists.
func (s *Storage) HasSingleton(t reflect.Type) bool {
	_, ok := s.singletons[t]
	return ok
}

// RemoveSingleton drops the singleton of the given type. Returns false if none existed.
// Singleton accessors created earlier observe the removal on their next Get.
func (s *Storage) RemoveSingleton(t reflect.Type) bool {
	if _, ok := s.singletons[t]; !ok {
		return false
	}
	delete(s.singletons, t)
	return true
}

// ReadSingleton fills target, which must be a **T, with a pointer to the stored singleton.
// Returns false (leaving target untouched) when no singleton of type T exists.
func (s *Storage) ReadSingleton(target any) bool {
	rv := reflect.ValueOf(target)
	if rv.Kind() != reflect.Ptr || rv.Elem().Kind() != reflect.Ptr {
		panic("ReadSingleton target must be a pointer to a pointer")
	}

	entry := s.getSingletonEntry(rv.Elem().Type().Elem())
	if entry == nil {
		return false
	}
	rv.Elem().Set(entry.value)
	return true
}

func componentType(component any) reflect.Type {
	compType := reflect.TypeOf(component)
	if compType == nil {
		panic("components cannot be nil")
	}

	// If it's a pointer, get the underlying type
	if compType.Kind() == reflect.Ptr {
		compType = compType.Elem()
	}

	// Components can be structs or primitives (int, string, etc.)
	// But not pointers, maps, channels, or functions (those aren't value types)
	if compType.Kind() == reflect.Ptr || compType.Kind() == reflect.Map ||
		compType.Kind() == reflect.Chan || compType.Kind() == reflect.Func {
		panic("components cannot be pointers, maps, channels, or functions")
	}
	return compType
}

// extractComponentTypes extracts component types from a slice of components, keeping order
func extractComponentTypes(components []any) []reflect.Type {
	types := make([]reflect.Type, 0, len(components))
	for _, comp := range components {
		types = append(types, componentType(comp))
	}
	return types
}

type byTypeName []reflect.Type

func (a byTypeName) Len() int           { return len(a) }
func (a byTypeName) Swap(i, j int)      { a[i], a[j] = a[j], a[i] }
func (a byTypeName) Less(i, j int) bool { return a[i].String() < a[j].String() }

type ComponentReader interface {
	GetComponent(EntityId, reflect.Type) any
}

// ReadComponent returns a typed pointer to the entity's component, or nil if absent.
func ReadComponent[T any](reader ComponentReader, entityId EntityId) *T {
	comp, _ := reader.GetComponent(entityId, reflect.TypeFor[T]()).(*T)
	return comp
}

// HasComponentOf reports whether the entity carries a component of type T.
func HasComponentOf[T any](storage *Storage, entityId EntityId) bool {
	return storage.HasComponent(entityId, reflect.TypeFor[T]())
}

// RemoveComponentOf detaches the component of type T from the entity.
func RemoveComponentOf[T any](storage *Storage, entityId EntityId) bool {
	return storage.RemoveComponent(entityId, reflect.TypeFor[T]())
}
