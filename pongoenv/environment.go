// Package pongoenv provides a panel.Environment backed by pongo2, for
// components whose templates are written in a Django/Jinja-like syntax.
//
// Templates reach their component's Data and subcomponents by calling
// data and subcomponent with a field name:
//
//	<p>Hello, {{ data("full_name") }}!</p>
//	{{ subcomponent("my_hello") }}
//
// Subcomponent HTML is marked safe, so autoescaping doesn't escape it
// again.
package pongoenv

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/flosch/pongo2/v6"

	"impractical.co/panel"
)

var _ panel.Environment = (*Environment)(nil)

// Environment is a panel.Environment that loads pongo2 templates from
// an fs.FS. Loaded templates are cached until Reset is called.
//
// It can safely be used by multiple goroutines.
type Environment struct {
	mu sync.RWMutex

	fsys        fs.FS
	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
	noCache     bool
}

// Option configures an Environment.
type Option func(*Environment)

// WithGlobals makes values available to every template the Environment
// loads. The "data" and "subcomponent" names are reserved and can't be
// replaced.
func WithGlobals(globals pongo2.Context) Option {
	return func(env *Environment) {
		env.templateSet.Globals.Update(globals)
	}
}

// WithoutCache loads templates every time they're requested.
func WithoutCache() Option {
	return func(env *Environment) {
		env.noCache = true
	}
}

// New returns an Environment that loads templates from fsys.
func New(fsys fs.FS, opts ...Option) *Environment {
	set := pongo2.NewSet("panel", pongo2.NewFSLoader(fsys))
	if set.Globals == nil {
		set.Globals = make(pongo2.Context)
	}
	env := &Environment{
		fsys:        fsys,
		templateSet: set,
		templates:   make(map[string]*pongo2.Template),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt(env)
	}
	return env
}

// Template returns the pongo2 template at path.
func (e *Environment) Template(_ context.Context, path string) (panel.Template, error) {
	tmpl, err := e.getTemplate(path)
	if err != nil {
		return nil, err
	}
	return pongoTemplate{tmpl: tmpl}, nil
}

func (e *Environment) getTemplate(path string) (*pongo2.Template, error) {
	e.mu.RLock()
	if tmpl, ok := e.templates[path]; ok {
		e.mu.RUnlock()
		return tmpl, nil
	}
	e.mu.RUnlock()

	if !fs.ValidPath(path) || path == "." {
		return nil, fmt.Errorf("pongoenv: load template %q: %w", path, panel.ErrTemplateNotFound)
	}
	if _, err := fs.Stat(e.fsys, path); errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("pongoenv: load template %q: %w", path, panel.ErrTemplateNotFound)
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if tmpl, ok := e.templates[path]; ok {
		return tmpl, nil
	}

	tmpl, err := e.templateSet.FromFile(path)
	if err != nil {
		return nil, fmt.Errorf("pongoenv: load template %q: %w", path, err)
	}

	if !e.noCache {
		e.templates[path] = tmpl
	}
	return tmpl, nil
}

// Reset drops every loaded template.
func (e *Environment) Reset() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.templates = make(map[string]*pongo2.Template)
}

type pongoTemplate struct {
	tmpl *pongo2.Template
}

func (t pongoTemplate) Execute(_ context.Context, w io.Writer, scope map[string]any) error {
	rc, _ := scope[panel.ContextKey].(*panel.RenderContext)
	viewContext := make(pongo2.Context, len(scope)+2)
	for key, value := range scope {
		viewContext[key] = value
	}
	viewContext["data"] = func(key string) any {
		return rc.Value(key)
	}
	viewContext["subcomponent"] = func(key string) *pongo2.Value {
		return pongo2.AsSafeValue(string(rc.Subcomponent(key)))
	}
	if err := t.tmpl.ExecuteWriter(viewContext, w); err != nil {
		return fmt.Errorf("pongoenv: execute template: %w", err)
	}
	return nil
}
