package ecs

import (
	"reflect"
	"slices"
	"strings"
)

// System represents a behavior that operates on entities with specific components.
// User-defined systems should implement this interface and can include Query fields
// for accessing entities, as well as custom state fields that persist between frames.
type System interface {
	Execute(frame *UpdateFrame)
}

// Access describes the component and singleton types a system touches.
// Systems that share a stage never conflict: no type is written by one and read or
// written by another, and no member is exclusive.
type Access struct {
	Reads     []reflect.Type
	Writes    []reflect.Type
	Exclusive bool
}

// AccessDeclarer lets a system declare access that its Query and Singleton fields
// don't reveal, for example components touched through frame.Storage directly.
// The declared access is merged with the access derived from fields.
type AccessDeclarer interface {
	Access() Access
}

// ReadOf returns the access of a system reading T. Combine with Merge.
func ReadOf[T any]() Access {
	return Access{Reads: []reflect.Type{reflect.TypeFor[T]()}}
}

// WriteOf returns the access of a system writing T. Combine with Merge.
func WriteOf[T any]() Access {
	return Access{Writes: []reflect.Type{reflect.TypeFor[T]()}}
}

// Exclusive is the access of a system that must run alone in its stage.
var Exclusive = Access{Exclusive: true}

// IsEmpty reports whether the access names no types and is not exclusive.
func (a Access) IsEmpty() bool {
	return !a.Exclusive && len(a.Reads) == 0 && len(a.Writes) == 0
}

// Merge returns the union of a and other.
func (a Access) Merge(other Access) Access {
	return Access{
		Reads:     append(slices.Clone(a.Reads), other.Reads...),
		Writes:    append(slices.Clone(a.Writes), other.Writes...),
		Exclusive: a.Exclusive || other.Exclusive,
	}
}

// Conflicts reports whether two systems with these access sets may not run concurrently.
func (a Access) Conflicts(other Access) bool {
	if a.Exclusive || other.Exclusive {
		return true
	}
	for _, w := range a.Writes {
		if slices.Contains(other.Writes, w) || slices.Contains(other.Reads, w) {
			return true
		}
	}
	for _, w := range other.Writes {
		if slices.Contains(a.Reads, w) {
			return true
		}
	}
	return false
}

type accessReporter interface {
	componentTypes() []reflect.Type
}

type singletonReporter interface {
	singletonType() reflect.Type
}

type queryExecutor interface {
	Execute()
}

// bindSystem initializes the Query and Singleton fields of a system and derives its access.
// Only exported fields are considered.
func bindSystem(system System, storage *Storage) (Access, []queryExecutor) {
	var access Access
	var queries []queryExecutor

	systemValue := reflect.ValueOf(system)
	if systemValue.Kind() == reflect.Ptr {
		systemValue = systemValue.Elem()
	}

	if systemValue.Kind() == reflect.Struct {
		systemType := systemValue.Type()

		for i := 0; i < systemValue.NumField(); i++ {
			field := systemValue.Field(i)
			fieldType := systemType.Field(i)

			if !field.CanSet() || field.Kind() != reflect.Struct {
				continue
			}

			typeName := field.Type().Name()
			isQuery := strings.HasPrefix(typeName, "Query[")
			isSingleton := strings.HasPrefix(typeName, "Singleton[")
			if !isQuery && !isSingleton {
				continue
			}

			initMethod := field.Addr().MethodByName("Init")
			if !initMethod.IsValid() {
				panic("Init method not found on field: " + fieldType.Name)
			}
			initMethod.Call([]reflect.Value{reflect.ValueOf(storage)})

			readOnly := false
			switch tag := fieldType.Tag.Get("access"); tag {
			case "":
			case "read":
				readOnly = true
			case "write":
			default:
				panic("invalid access tag value: \"" + tag + "\" on field " + fieldType.Name)
			}

			var types []reflect.Type
			switch f := field.Addr().Interface().(type) {
			case accessReporter:
				types = f.componentTypes()
				if q, ok := f.(queryExecutor); ok {
					queries = append(queries, q)
				}
			case singletonReporter:
				types = []reflect.Type{f.singletonType()}
			}

			if readOnly {
				access.Reads = append(access.Reads, types...)
			} else {
				access.Writes = append(access.Writes, types...)
			}
		}
	}

	if declarer, ok := system.(AccessDeclarer); ok {
		access = access.Merge(declarer.Access())
	}
	if access.IsEmpty() {
		access.Exclusive = true
	}
	return access, queries
}
