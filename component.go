package panel

import (
	"context"
	"fmt"
	"html/template"
	"reflect"
)

// None is the record for a component that declares nothing: no Inputs,
// no Data, or no SubComponents.
type None struct{}

// Node is a component that can be rendered as a child of another
// component. Every *Instance is a Node.
type Node interface {
	// TypeName returns the name of the component's Type.
	TypeName() string

	// Environment returns the Environment the component renders with.
	Environment() Environment

	// RenderSubcomponent renders the component as the child of another
	// component. Its Input record is built fresh from overrides, which
	// may be empty, and its SubComponent record is rebuilt from the
	// Type's defaults; whatever was bound before is replaced.
	RenderSubcomponent(ctx context.Context, overrides map[string]any) (template.HTML, error)
}

// Type is a kind of component: a template and the three records it's
// rendered from. I is the Input record, the values a caller supplies. D
// is the Data record, the values the template displays, derived from
// I. S is the SubComponent record, whose fields each hold a child Node.
//
// Records are structs. Use None for a record that declares nothing.
//
// A Type must be passed to Define before it's used.
type Type[I, D, S any] struct {
	// Name identifies the component in logs, traces, and errors.
	Name string

	// Template is the path of the template the component renders,
	// relative to its Environment.
	Template string

	// Environment, if set, is used by every instance of the Type that
	// isn't constructed with its own.
	Environment Environment

	// Transform derives the Data record from the Input record. If it's
	// nil, D's own FromInputs(context.Context, I) (D, error) method is
	// used if D has one. If neither exists, rendering fails with a
	// NotImplementedError.
	Transform func(ctx context.Context, in I) (D, error)

	// Subcomponents builds the default SubComponent record for an
	// instance. It's called every time the component renders as a
	// subcomponent, so it should build new children each call. If it's
	// nil, the zero S is used.
	Subcomponents func(parent Node) (S, error)

	inputs *Schema
	data   *Schema
	subs   *Schema
}

// Define promotes a Type's records into Schemas, validating them. It
// must be called once, before the Type is used, and returns the Type
// it was passed for convenience.
//
// Every field of the SubComponent record must be a Node.
func Define[I, D, S any](t *Type[I, D, S]) (*Type[I, D, S], error) {
	if t.Name == "" {
		t.Name = t.Template
	}
	inputs, err := SchemaFor[I](t.Name + ".Inputs")
	if err != nil {
		return nil, err
	}
	data, err := SchemaFor[D](t.Name + ".Data")
	if err != nil {
		return nil, err
	}
	subs, err := SchemaFor[S](t.Name + ".SubComponents")
	if err != nil {
		return nil, err
	}
	for _, field := range subs.fields {
		if !field.Type.Implements(nodeType) {
			return nil, fmt.Errorf("error promoting %s: field %q is a %s, not a Node: %w", subs.name, field.Name, field.Type, ErrInvalidSchema)
		}
	}
	t.inputs, t.data, t.subs = inputs, data, subs
	return t, nil
}

// MustDefine is Define, but panics on error. It's meant for
// package-level component declarations.
func MustDefine[I, D, S any](t *Type[I, D, S]) *Type[I, D, S] {
	t, err := Define(t)
	if err != nil {
		panic(err)
	}
	return t
}

var nodeType = reflect.TypeFor[Node]()

func (t *Type[I, D, S]) defined() error {
	if t.inputs == nil {
		return fmt.Errorf("%s: %w", t.Name, ErrTypeNotDefined)
	}
	return nil
}

// InputSchema returns the promoted Input record. It's nil until the Type
// is defined.
func (t *Type[I, D, S]) InputSchema() *Schema {
	return t.inputs
}

// DataSchema returns the promoted Data record. It's nil until the Type
// is defined.
func (t *Type[I, D, S]) DataSchema() *Schema {
	return t.data
}

// SubSchema returns the promoted SubComponent record. It's nil until the
// Type is defined.
func (t *Type[I, D, S]) SubSchema() *Schema {
	return t.subs
}

type inputTransformer[I, D any] interface {
	FromInputs(ctx context.Context, in I) (D, error)
}

// FromInputs derives a Data record from an Input record, using the
// Type's Transform, or D's FromInputs method if there's no Transform.
func (t *Type[I, D, S]) FromInputs(ctx context.Context, in I) (D, error) {
	if t.Transform != nil {
		return t.Transform(ctx, in)
	}
	var zero D
	if transformer, ok := any(zero).(inputTransformer[I, D]); ok {
		return transformer.FromInputs(ctx, in)
	}
	return zero, &NotImplementedError{Method: t.Name + ".Data.FromInputs"}
}

// NewInputs builds an Input record from overrides, keyed by field name.
// Fields without an override keep their zero value.
func (t *Type[I, D, S]) NewInputs(overrides map[string]any) (I, error) {
	var zero I
	if err := t.defined(); err != nil {
		return zero, err
	}
	record, err := t.inputs.Build(overrides)
	if err != nil {
		return zero, err
	}
	in, ok := record.Interface().(I)
	if !ok {
		return zero, fmt.Errorf("error building %s: unexpected record %s: %w", t.inputs.name, record.Type(), ErrInvalidSchema)
	}
	return in, nil
}

// NewSubcomponents builds the default SubComponent record for a
// component whose parent, for environment purposes, is parent.
func (t *Type[I, D, S]) NewSubcomponents(parent Node) (S, error) {
	if t.Subcomponents == nil {
		var zero S
		return zero, nil
	}
	return t.Subcomponents(parent)
}

// EmptyData is a Transform for components whose Data record declares
// nothing. It ignores its inputs and always succeeds.
func EmptyData[I, D any](_ context.Context, _ I) (D, error) {
	var zero D
	return zero, nil
}

// State is where a component is in its lifecycle.
type State int

const (
	// StateConstructed components have been created but not had both
	// their Input and SubComponent records assigned.
	StateConstructed State = iota

	// StateInputsBound components have both records assigned and are
	// ready to render at the top level.
	StateInputsBound

	// StateDataDerived components have derived their Data record during
	// a render.
	StateDataDerived

	// StateRendered components have produced HTML. They can render
	// again; every render derives Data anew.
	StateRendered
)

func (s State) String() string {
	switch s {
	case StateConstructed:
		return "constructed"
	case StateInputsBound:
		return "inputs-bound"
	case StateDataDerived:
		return "data-derived"
	case StateRendered:
		return "rendered"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Instance is a single component of a Type, holding its records.
//
// An Instance isn't safe for concurrent use: rendering replaces its
// Data record, and rendering it as a subcomponent replaces its Input
// and SubComponent records too.
type Instance[I, D, S any] struct {
	typ    *Type[I, D, S]
	env    Environment
	parent Node
	state  State

	inputs *I
	data   *D
	subs   *S
}

var _ Node = (*Instance[None, None, None])(nil)

// InstanceOption configures a new Instance.
type InstanceOption func(*instanceConfig)

type instanceConfig struct {
	env    Environment
	parent Node
}

// WithEnvironment sets the Environment the Instance renders with,
// overriding its Type's.
func WithEnvironment(env Environment) InstanceOption {
	return func(cfg *instanceConfig) {
		cfg.env = env
	}
}

// WithParent records the component the Instance is a child of. An
// Instance with no Environment of its own and none on its Type renders
// with its parent's.
func WithParent(parent Node) InstanceOption {
	return func(cfg *instanceConfig) {
		cfg.parent = parent
	}
}

// New constructs an Instance of the Type. Its Environment is resolved
// now: the one passed with WithEnvironment, then the Type's, then the
// parent's, then the default Environment. If none is found, New returns
// ErrNoEnvironment.
func (t *Type[I, D, S]) New(opts ...InstanceOption) (*Instance[I, D, S], error) {
	if err := t.defined(); err != nil {
		return nil, err
	}
	var cfg instanceConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	env := resolveEnvironment(cfg.env, t.Environment, cfg.parent)
	if env == nil {
		return nil, fmt.Errorf("error constructing %s: %w", t.Name, ErrNoEnvironment)
	}
	return &Instance[I, D, S]{
		typ:    t,
		env:    env,
		parent: cfg.parent,
	}, nil
}

// MustNew is New, but panics on error.
func (t *Type[I, D, S]) MustNew(opts ...InstanceOption) *Instance[I, D, S] {
	c, err := t.New(opts...)
	if err != nil {
		panic(err)
	}
	return c
}

// Type returns the component's Type.
func (c *Instance[I, D, S]) Type() *Type[I, D, S] {
	return c.typ
}

// TypeName returns the name of the component's Type.
func (c *Instance[I, D, S]) TypeName() string {
	return c.typ.Name
}

// Environment returns the Environment the component renders with.
func (c *Instance[I, D, S]) Environment() Environment {
	return c.env
}

// Parent returns the component's parent, or nil if it has none.
func (c *Instance[I, D, S]) Parent() Node {
	return c.parent
}

// State returns where the component is in its lifecycle.
func (c *Instance[I, D, S]) State() State {
	return c.state
}

// SetInputs assigns the component's Input record.
func (c *Instance[I, D, S]) SetInputs(in I) {
	c.inputs = &in
	c.bound()
}

// SetSubcomponents assigns the component's SubComponent record.
func (c *Instance[I, D, S]) SetSubcomponents(subs S) {
	c.subs = &subs
	c.bound()
}

// Bind assigns both of the component's records.
func (c *Instance[I, D, S]) Bind(in I, subs S) {
	c.inputs = &in
	c.subs = &subs
	c.bound()
}

func (c *Instance[I, D, S]) bound() {
	if c.inputs != nil && c.subs != nil {
		c.state = StateInputsBound
	}
}

// Inputs returns the component's Input record, and whether one has been
// assigned.
func (c *Instance[I, D, S]) Inputs() (I, bool) {
	if c.inputs == nil {
		var zero I
		return zero, false
	}
	return *c.inputs, true
}

// Data returns the component's Data record, and whether one has been
// derived. There's only a Data record once the component has rendered.
func (c *Instance[I, D, S]) Data() (D, bool) {
	if c.data == nil {
		var zero D
		return zero, false
	}
	return *c.data, true
}

// Subcomponents returns the component's SubComponent record, and whether
// one has been assigned.
func (c *Instance[I, D, S]) Subcomponents() (S, bool) {
	if c.subs == nil {
		var zero S
		return zero, false
	}
	return *c.subs, true
}
