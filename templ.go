package panel

import (
	"context"
	"io"

	"github.com/a-h/templ"
)

// Templ wraps a Renderer as a templ.Component, so panel components can
// be used from templ templates and anything else that renders
// templ.Components.
func Templ(r Renderer) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := r.Render(ctx)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, string(html))
		return err
	})
}

// TemplSubcomponent wraps a Node as a templ.Component that renders it as
// a subcomponent with the passed overrides.
func TemplSubcomponent(n Node, overrides map[string]any) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := n.RenderSubcomponent(ctx, overrides)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, string(html))
		return err
	})
}
