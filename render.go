package panel

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"io"
	"reflect"
	"slices"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const tracerName = "impractical.co/panel"

// Renderer is anything that renders itself to HTML at the top level,
// like a bound *Instance.
type Renderer interface {
	Render(ctx context.Context) (template.HTML, error)
}

// Render renders the component at the top level, using the Input and
// SubComponent records assigned to it. Both must be assigned, or
// ErrUnbound is returned.
//
// Data is derived from the Input record, then each subcomponent is
// rendered in the order its field is declared, then the component's
// template is executed with the Data and the rendered subcomponents in
// scope. Any failure stops the render and is returned; partial output
// is never returned.
func (c *Instance[I, D, S]) Render(ctx context.Context) (template.HTML, error) {
	return c.render(ctx, false, nil)
}

// RenderSubcomponent renders the component as the child of another
// component. A new Input record is built from overrides, and the
// SubComponent record is reset to the Type's defaults, before rendering
// as Render does.
func (c *Instance[I, D, S]) RenderSubcomponent(ctx context.Context, overrides map[string]any) (template.HTML, error) {
	return c.render(ctx, true, overrides)
}

func (c *Instance[I, D, S]) render(ctx context.Context, asSubcomponent bool, overrides map[string]any) (_ template.HTML, err error) {
	name := c.typ.Name
	ctx, span := otel.Tracer(tracerName).Start(ctx, "panel.Render "+name, trace.WithAttributes(
		attribute.String("panel.component", name),
		attribute.String("panel.template", c.typ.Template),
		attribute.Bool("panel.as_subcomponent", asSubcomponent),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	ctx, err = enterRenderPath(ctx, c)
	if err != nil {
		return "", fmt.Errorf("error rendering %s: %w", name, err)
	}

	if asSubcomponent {
		inputs, err := c.typ.NewInputs(overrides)
		if err != nil {
			return "", fmt.Errorf("error rendering %s: %w", name, err)
		}
		c.inputs = &inputs
	}
	if c.inputs == nil {
		return "", fmt.Errorf("error rendering %s: inputs: %w", name, ErrUnbound)
	}
	if !asSubcomponent && c.subs == nil {
		return "", fmt.Errorf("error rendering %s: subcomponents: %w", name, ErrUnbound)
	}

	data, err := c.typ.FromInputs(ctx, *c.inputs)
	if err != nil {
		return "", fmt.Errorf("error deriving data for %s: %w", name, err)
	}
	c.data = &data
	c.state = StateDataDerived

	if asSubcomponent {
		subs, err := c.typ.NewSubcomponents(c)
		if err != nil {
			return "", fmt.Errorf("error building subcomponents for %s: %w", name, err)
		}
		c.subs = &subs
	}

	tmpl, err := c.env.Template(ctx, c.typ.Template)
	if err != nil {
		return "", fmt.Errorf("error loading template for %s: %w", name, err)
	}

	rendered, names, err := renderSubcomponents(ctx, c.typ.subs, *c.subs)
	if err != nil {
		return "", fmt.Errorf("error rendering %s: %w", name, err)
	}

	rc := &RenderContext{
		Subcomponents: rendered,
		Data:          c.typ.data.Map(data),
		names:         names,
	}
	var buf bytes.Buffer
	err = tmpl.Execute(ctx, &buf, map[string]any{ContextKey: rc})
	if err != nil {
		return "", fmt.Errorf("error executing template %q for %s: %w", c.typ.Template, name, err)
	}
	c.state = StateRendered

	Logger(ctx).DebugContext(ctx, "rendered component",
		"component", name,
		"template", c.typ.Template,
		"as_subcomponent", asSubcomponent,
		"subcomponents", len(names),
	)
	return template.HTML(buf.String()), nil //nolint:gosec // the template escaped everything it output
}

// renderSubcomponents renders every field of a SubComponent record, in
// declaration order.
func renderSubcomponents(ctx context.Context, schema *Schema, record any) (map[string]template.HTML, []string, error) {
	results := make(map[string]template.HTML, len(schema.fields))
	names := make([]string, 0, len(schema.fields))
	val := reflect.ValueOf(record)
	for _, field := range schema.fields {
		child, _ := val.FieldByIndex(field.index).Interface().(Node)
		if isNilNode(child) {
			return nil, nil, fmt.Errorf("subcomponent %q: %w", field.Name, ErrUnboundSubcomponent)
		}
		html, err := child.RenderSubcomponent(ctx, nil)
		if err != nil {
			return nil, nil, fmt.Errorf("error rendering subcomponent %q: %w", field.Name, err)
		}
		results[field.Name] = html
		names = append(names, field.Name)
	}
	return results, names, nil
}

func isNilNode(node Node) bool {
	if node == nil {
		return true
	}
	val := reflect.ValueOf(node)
	switch val.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return val.IsNil()
	}
	return false
}

// MaxDepth is how many components can be on a single render path, the
// top-level component included. Rendering a deeper tree fails with
// ErrSubcomponentDepth; this is what stops components that build new
// instances of each other forever.
const MaxDepth = 128

// enterRenderPath records that node is being rendered, failing if it's
// already being rendered higher up the tree.
func enterRenderPath(ctx context.Context, node Node) (context.Context, error) {
	path, _ := ctx.Value(renderPathCtxKey).([]Node)
	if slices.Contains(path, node) {
		return ctx, fmt.Errorf("%s includes itself: %w", node.TypeName(), ErrSubcomponentCycle)
	}
	if len(path) >= MaxDepth {
		return ctx, fmt.Errorf("%s is nested more than %d deep: %w", node.TypeName(), MaxDepth, ErrSubcomponentDepth)
	}
	return context.WithValue(ctx, renderPathCtxKey, append(slices.Clip(path), node)), nil
}

// RenderTo renders the Renderer to out. If it can't, the error is logged
// and a short server error message is written instead, so out always
// receives a complete response. If out is an io.Closer, it's closed
// after writing.
func RenderTo(ctx context.Context, out io.Writer, r Renderer) {
	defer func() {
		// if the writer can be closed, let's try to close it
		if closer, ok := out.(io.Closer); ok {
			err := closer.Close()
			// if there's an error closing it, logging it's about all we can do
			if err != nil {
				Logger(ctx).ErrorContext(ctx, "error closing writer", "error", err)
			}
		}
	}()

	html, err := r.Render(ctx)
	if err == nil {
		_, err = io.WriteString(out, string(html))
		if err != nil {
			Logger(ctx).ErrorContext(ctx, "error writing rendered component", "error", err)
		}
		return
	}

	Logger(ctx).ErrorContext(ctx, "error rendering component", "error", err)

	_, err = io.WriteString(out, "Server error.")
	if err != nil {
		Logger(ctx).ErrorContext(ctx, "error writing server error message", "error", err)
	}
}
