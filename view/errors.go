package view

import "errors"

var (
	// ErrIncompleteView is returned when a view is added to a
	// RouteRegistrar without a component type, a pattern, a name, or
	// any methods.
	ErrIncompleteView = errors.New("view is missing its component type or endpoint")

	// ErrUnknownMethod is returned when parsing a string that isn't an
	// HTTP method.
	ErrUnknownMethod = errors.New("unknown HTTP method")

	// ErrDuplicateEndpoint is returned when two views are registered
	// with the same endpoint name.
	ErrDuplicateEndpoint = errors.New("endpoint name already registered")

	// ErrConflictingPattern is returned when a view's pattern is
	// malformed, or matches the same requests as a pattern already
	// registered.
	ErrConflictingPattern = errors.New("invalid or conflicting endpoint pattern")
)
