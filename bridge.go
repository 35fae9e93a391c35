package panel

import (
	"html/template"
	"slices"
)

// ContextKey is the name a component's RenderContext is bound to in the
// scope its template executes with.
const ContextKey = "panel"

// RenderContext is everything a component's template can see: its
// flattened Data record and the HTML of each of its rendered
// subcomponents, both keyed by field name.
type RenderContext struct {
	// Subcomponents maps each SubComponent field name to the HTML that
	// subcomponent rendered. Every declared field has an entry.
	Subcomponents map[string]template.HTML

	// Data maps each Data field name to its value.
	Data map[string]any

	names []string
}

// SubcomponentNames returns the names of the rendered subcomponents, in
// the order they were rendered.
func (rc *RenderContext) SubcomponentNames() []string {
	if rc == nil {
		return nil
	}
	return slices.Clone(rc.names)
}

// Subcomponent returns the rendered HTML of the named subcomponent. It
// returns an empty string if there's no subcomponent by that name.
func (rc *RenderContext) Subcomponent(key string) template.HTML {
	if rc == nil {
		return ""
	}
	return rc.Subcomponents[key]
}

// Value returns the value of the named Data field. It returns an empty
// string if there's no field by that name.
func (rc *RenderContext) Value(key string) any {
	if rc == nil {
		return ""
	}
	val, ok := rc.Data[key]
	if !ok {
		return ""
	}
	return val
}

func renderContextFrom(scope any) *RenderContext {
	switch s := scope.(type) {
	case *RenderContext:
		return s
	case map[string]any:
		rc, _ := s[ContextKey].(*RenderContext)
		return rc
	}
	return nil
}

// Subcomponent is the "subcomponent" template function. Templates call
// it with their scope and a field name:
//
//	{{ subcomponent . "my_hello" }}
//
// A missing name renders as nothing. The HTML isn't escaped again.
func Subcomponent(scope any, key string) template.HTML {
	return renderContextFrom(scope).Subcomponent(key)
}

// DataValue is the "data" template function. Templates call it with
// their scope and a field name:
//
//	{{ data . "full_name" }}
//
// A missing name renders as nothing.
func DataValue(scope any, key string) any {
	return renderContextFrom(scope).Value(key)
}

// BridgeFuncs returns the functions templates use to reach their
// component's Data and subcomponents. Every HTMLEnvironment includes
// them.
func BridgeFuncs() template.FuncMap {
	return template.FuncMap{
		"subcomponent": Subcomponent,
		"data":         DataValue,
	}
}
