package panel

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidSchema is returned when a component type declares a
	// record that can't be promoted into a Schema: the record isn't a
	// struct, or a SubComponent field holds something that isn't a Node.
	// It always indicates a programming error in the component's
	// declaration.
	ErrInvalidSchema = errors.New("invalid record schema")

	// ErrTypeNotDefined is returned when a Type is used before it has
	// been passed to Define.
	ErrTypeNotDefined = errors.New("component type was never defined")

	// ErrNotImplemented is returned, wrapped in a NotImplementedError,
	// when a component type never supplied its Input to Data transform.
	// It's only surfaced when the transform is called, not when the
	// type is defined.
	ErrNotImplemented = errors.New("not implemented")

	// ErrNoEnvironment is returned when a component is constructed and
	// no Environment can be found for it: none was passed explicitly,
	// the Type has none, the parent has none, and no default
	// Environment was initialized.
	ErrNoEnvironment = errors.New("no template environment configured")

	// ErrDefaultEnvironmentSet is returned when InitDefaultEnvironment
	// is called more than once.
	ErrDefaultEnvironmentSet = errors.New("default template environment already initialized")

	// ErrUnbound is returned when a component is rendered at the top
	// level before its Input and SubComponent records were assigned.
	ErrUnbound = errors.New("record not bound")

	// ErrUnboundSubcomponent is returned when a declared SubComponent
	// field doesn't hold a component at render time. Children are never
	// silently skipped.
	ErrUnboundSubcomponent = errors.New("subcomponent not bound")

	// ErrUnknownField is returned when a record is built from named
	// values and one of the names isn't a declared field.
	ErrUnknownField = errors.New("unknown field")

	// ErrMissingField is returned when a record is built from named
	// values and a field tagged as required has no value.
	ErrMissingField = errors.New("missing required field")

	// ErrFieldType is returned when a record is built from named values
	// and a value can't be assigned to the field's declared type. Values
	// are never converted.
	ErrFieldType = errors.New("value does not match field type")

	// ErrSubcomponentCycle is returned when a component is asked to
	// render while it's already being rendered further up the same
	// tree, meaning it includes itself as a subcomponent.
	ErrSubcomponentCycle = errors.New("subcomponent cycle detected")

	// ErrSubcomponentDepth is returned when subcomponents are nested
	// more than MaxDepth deep. Types whose default subcomponents are new
	// instances of themselves fail with it, as does any tree that's
	// simply too deep.
	ErrSubcomponentDepth = errors.New("subcomponents nested too deeply")

	// ErrTemplateNotFound is returned by an Environment when the
	// requested template path doesn't exist in any of its file systems.
	ErrTemplateNotFound = errors.New("template not found")
)

// NotImplementedError is returned when a required method was never
// supplied. Method names the method that's missing.
type NotImplementedError struct {
	Method string
}

func (e *NotImplementedError) Error() string {
	return fmt.Sprintf("the method %s is abstract and must be overridden", e.Method)
}

// Is reports whether target is ErrNotImplemented, so callers can check
// for the error with errors.Is.
func (e *NotImplementedError) Is(target error) bool {
	return target == ErrNotImplemented
}
