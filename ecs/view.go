package ecs

import (
	"iter"
	"reflect"
	"unsafe"
)

var entityIdType = reflect.TypeFor[EntityId]()

// View represents a query for entities with a specific combination of components
// The type T should be a struct with embedded pointer fields for each component type
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
// A field of type EntityId (embedded or named) receives the id of the matched entity
type View[T any] struct {
	storage     *Storage
	types       []reflect.Type
	optional    []bool
	isId        []bool
	fieldOffset []uintptr
}

// NewView creates a new view for the given struct type
// The struct T should have embedded or named fields that are pointers to component types
// Embedded fields are always required
// Named fields can be marked as optional using the `ecs:"optional"` struct tag
func NewView[T any](storage *Storage) *View[T] {
	var zero T
	structType := reflect.TypeOf(zero)

	if structType.Kind() != reflect.Struct {
		panic("View type parameter must be a struct")
	}

	v := &View[T]{
		storage:     storage,
		types:       make([]reflect.Type, 0, structType.NumField()),
		optional:    make([]bool, 0, structType.NumField()),
		isId:        make([]bool, 0, structType.NumField()),
		fieldOffset: make([]uintptr, 0, structType.NumField()),
	}

	for i := 0; i < structType.NumField(); i++ {
		field := structType.Field(i)
		fieldType := field.Type

		if fieldType == entityIdType {
			v.types = append(v.types, entityIdType)
			v.optional = append(v.optional, false)
			v.isId = append(v.isId, true)
			v.fieldOffset = append(v.fieldOffset, field.Offset)
			continue
		}

		if fieldType.Kind() != reflect.Ptr {
			panic("View struct fields must be pointer types or EntityId")
		}

		// Parse struct tag to check if component is optional
		// Embedded fields (field.Anonymous) are always required
		isOptional := false
		if !field.Anonymous {
			tag := field.Tag.Get("ecs")
			if tag != "" {
				if tag == "optional" {
					isOptional = true
				} else {
					panic("invalid ecs tag value: \"" + tag + "\" (only \"optional\" is supported)")
				}
			}
		}

		v.types = append(v.types, fieldType.Elem())
		v.optional = append(v.optional, isOptional)
		v.isId = append(v.isId, false)
		v.fieldOffset = append(v.fieldOffset, field.Offset)
	}

	return v
}

// componentTypes returns every component type the view touches, optional ones included
func (v *View[T]) componentTypes() []reflect.Type {
	types := make([]reflect.Type, 0, len(v.types))
	for i, typ := range v.types {
		if !v.isId[i] {
			types = append(types, typ)
		}
	}
	return types
}

// populateResult writes component pointers for the entity in slot index into the struct at
// resultPtr. Returns false if a required component is missing.
func (v *View[T]) populateResult(resultPtr unsafe.Pointer, index int) bool {
	for i, componentType := range v.types {
		fieldPtr := unsafe.Pointer(uintptr(resultPtr) + v.fieldOffset[i])

		if v.isId[i] {
			*(*EntityId)(fieldPtr) = v.storage.idAt(index)
			continue
		}

		var component any
		if table := v.storage.lookupTable(componentType); table != nil {
			component = table.Get(index)
		}

		if component == nil {
			// If this is a required component, fail
			if !v.optional[i] {
				return false
			}
			// Optional component is missing, set field to nil
			*(*unsafe.Pointer)(fieldPtr) = nil
			continue
		}

		// Component found, set the field to point to the component
		// We need to extract the pointer from the interface{}
		componentPtr := (*iface)(unsafe.Pointer(&component)).data
		*(*unsafe.Pointer)(fieldPtr) = componentPtr
	}
	return true
}

// Fill populates the provided struct pointer with component data for the given entity
// Returns false if the entity is missing any required components
// Optional components are set to nil if not present
func (v *View[T]) Fill(id EntityId, ptr *T) bool {
	if !v.storage.Alive(id) {
		return false
	}
	return v.populateResult(unsafe.Pointer(ptr), int(id.Index()))
}

// Get returns a populated view struct for the given entity, or nil if the entity
// doesn't have all the required components
func (v *View[T]) Get(id EntityId) *T {
	var result T
	if !v.Fill(id, &result) {
		return nil
	}
	return &result
}

// driver picks the smallest required table to iterate. ok is false when a required
// table does not exist yet, meaning nothing can match.
func (v *View[T]) driver() (driver iComponentStorage, ok bool) {
	for i, typ := range v.types {
		if v.optional[i] || v.isId[i] {
			continue
		}
		table := v.storage.lookupTable(typ)
		if table == nil {
			return nil, false
		}
		if driver == nil || table.Len() < driver.Len() {
			driver = table
		}
	}
	return driver, true
}

// Iter returns an iterator over all entities that have all the required components for this view
// The iterator yields (EntityId, T) pairs where T is the populated view struct
// Optional components are set to nil if not present
func (v *View[T]) Iter() iter.Seq2[EntityId, T] {
	return func(yield func(EntityId, T) bool) {
		driver, ok := v.driver()
		if !ok {
			return
		}

		var result T
		resultPtr := unsafe.Pointer(&result)

		visit := func(index int) bool {
			if !v.storage.alive[index] {
				return true
			}
			if !v.populateResult(resultPtr, index) {
				return true
			}
			return yield(v.storage.idAt(index), result)
		}

		if driver == nil {
			// only optional fields: every live entity matches
			for index := 1; index < len(v.storage.alive); index++ {
				if !visit(index) {
					return
				}
			}
			return
		}

		for index := range driver.Iter() {
			if !visit(index) {
				return
			}
		}
	}
}

// Values returns an iterator over just the view structs (without entity IDs)
// This is useful when you only care about the component data, not which entity it belongs to
func (v *View[T]) Values() iter.Seq[T] {
	return func(yield func(T) bool) {
		for _, value := range v.Iter() {
			if !yield(value) {
				return
			}
		}
	}
}

// Spawn creates a new entity with components extracted from the view struct
func (v *View[T]) Spawn(data T) EntityId {
	structPtr := unsafe.Pointer(&data)

	components := make([]any, 0, len(v.types))
	for i := 0; i < len(v.types); i++ {
		if v.isId[i] {
			continue
		}

		fieldPtr := unsafe.Pointer(uintptr(structPtr) + v.fieldOffset[i])
		componentPtr := *(*unsafe.Pointer)(fieldPtr)

		if componentPtr == nil {
			if !v.optional[i] {
				panic("required component is nil in View.Spawn")
			}
			continue
		}

		component := reflect.NewAt(v.types[i], componentPtr).Elem().Interface()
		components = append(components, component)
	}

	return v.storage.Spawn(components...)
}
