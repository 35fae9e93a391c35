// Package view connects components to web servers. A View renders a
// component for each request to its Endpoint, and a RouteRegistrar
// adds Views to a particular server's router.
package view

import (
	"context"
	"fmt"
	"html/template"
	"strings"

	"impractical.co/panel"
)

// Endpoint is where a View can be reached.
type Endpoint struct {
	// Pattern is the URL path of the view. Segments written as {name}
	// are path parameters, passed to the view by name.
	Pattern string

	// Name uniquely identifies the endpoint.
	Name string

	// Methods are the HTTP methods the view responds to.
	Methods []Method
}

// Params returns the names of the path parameters in the Endpoint's
// Pattern, in the order they appear.
func (e Endpoint) Params() []string {
	return PatternParams(e.Pattern)
}

// PatternParams returns the names of the {name} path parameters in
// pattern, in the order they appear. A trailing "..." on a name, which
// matches the rest of the path, isn't part of the name.
func PatternParams(pattern string) []string {
	var names []string
	for _, segment := range strings.Split(pattern, "/") {
		if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
			continue
		}
		name := strings.TrimSuffix(strings.Trim(segment, "{}"), "...")
		if name == "" || name == "$" {
			continue
		}
		names = append(names, name)
	}
	return names
}

// Handler renders a response from the path parameters of a request.
type Handler func(ctx context.Context, params map[string]string) (template.HTML, error)

// RouteRegistrar adds handlers to a web server's router.
type RouteRegistrar interface {
	// Register routes requests matching the Endpoint's pattern and
	// methods to the Handler, with the pattern's path parameters.
	Register(endpoint Endpoint, handler Handler) error
}

// Route is a view of any component type. Every *View is a Route.
type Route interface {
	// Name returns the name of the Route's endpoint.
	Name() string

	// Render renders the Route for the passed path parameters.
	Render(ctx context.Context, params map[string]string) (template.HTML, error)

	// AddTo registers the Route with r.
	AddTo(r RouteRegistrar) error
}

// Find returns the Route whose endpoint is named name.
func Find(routes []Route, name string) (Route, bool) {
	for _, route := range routes {
		if route.Name() == name {
			return route, true
		}
	}
	return nil, false
}

var _ Route = (*View[panel.None, panel.None, panel.None])(nil)

// View renders a component of Type for every request to its Endpoint.
type View[I, D, S any] struct {
	// Type is the component rendered for each request.
	Type *panel.Type[I, D, S]

	// Endpoint is where the View can be reached.
	Endpoint Endpoint

	// Inputs builds the component's Input record for a request. If it's
	// nil, each path parameter is assigned to the Input field of the same
	// name.
	Inputs func(ctx context.Context, params map[string]string) (I, error)

	// Subcomponents builds the component's SubComponent record for a
	// request. If it's nil, the Type's defaults are used.
	Subcomponents func(ctx context.Context, parent panel.Node) (S, error)

	// Options are passed to the Type when constructing each component.
	Options []panel.InstanceOption
}

// Name returns the name of the View's endpoint.
func (v *View[I, D, S]) Name() string {
	return v.Endpoint.Name
}

// Render constructs a new component, binds its records for the passed
// path parameters, and renders it.
func (v *View[I, D, S]) Render(ctx context.Context, params map[string]string) (template.HTML, error) {
	if v.Type == nil {
		return "", ErrIncompleteView
	}
	component, err := v.Type.New(v.Options...)
	if err != nil {
		return "", fmt.Errorf("error constructing %s for %s: %w", v.Type.Name, v.Endpoint.Name, err)
	}
	inputs, err := v.inputs(ctx, params)
	if err != nil {
		return "", fmt.Errorf("error building inputs for %s: %w", v.Endpoint.Name, err)
	}
	subs, err := v.subcomponents(ctx, component)
	if err != nil {
		return "", fmt.Errorf("error building subcomponents for %s: %w", v.Endpoint.Name, err)
	}
	component.Bind(inputs, subs)
	return component.Render(ctx)
}

func (v *View[I, D, S]) inputs(ctx context.Context, params map[string]string) (I, error) {
	if v.Inputs != nil {
		return v.Inputs(ctx, params)
	}
	overrides := make(map[string]any, len(params))
	for key, value := range params {
		overrides[key] = value
	}
	return v.Type.NewInputs(overrides)
}

func (v *View[I, D, S]) subcomponents(ctx context.Context, parent panel.Node) (S, error) {
	if v.Subcomponents != nil {
		return v.Subcomponents(ctx, parent)
	}
	return v.Type.NewSubcomponents(parent)
}

// AddTo registers the View with r. The View must have a Type and a
// complete Endpoint, or ErrIncompleteView is returned.
func (v *View[I, D, S]) AddTo(r RouteRegistrar) error {
	if v.Type == nil || v.Endpoint.Pattern == "" || v.Endpoint.Name == "" || len(v.Endpoint.Methods) < 1 {
		return fmt.Errorf("error adding view %q: %w", v.Endpoint.Name, ErrIncompleteView)
	}
	return r.Register(v.Endpoint, v.Render)
}

// AddAll adds every Route to r, stopping at the first error.
func AddAll(r RouteRegistrar, routes ...Route) error {
	for _, route := range routes {
		if err := route.AddTo(r); err != nil {
			return err
		}
	}
	return nil
}
