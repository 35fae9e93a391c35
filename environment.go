package panel

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"strings"
	"sync"
	"sync/atomic"
)

// Environment is a source of templates. Components look their template
// up by path in their Environment each time they render.
type Environment interface {
	// Template returns the template at path. It should return an error
	// wrapping ErrTemplateNotFound if there's no template at path.
	Template(ctx context.Context, path string) (Template, error)
}

// Template is a template an Environment loaded, ready to execute.
type Template interface {
	// Execute renders the template to w. scope binds ContextKey to the
	// component's *RenderContext.
	Execute(ctx context.Context, w io.Writer, scope map[string]any) error
}

type environmentHolder struct {
	env Environment
}

var defaultEnvironment atomic.Pointer[environmentHolder]

// InitDefaultEnvironment sets the Environment used by components that
// have no other. It can only be called once per process; later calls
// return ErrDefaultEnvironmentSet and leave the first Environment in
// place.
func InitDefaultEnvironment(env Environment) error {
	if env == nil {
		return ErrNoEnvironment
	}
	if !defaultEnvironment.CompareAndSwap(nil, &environmentHolder{env: env}) {
		return ErrDefaultEnvironmentSet
	}
	return nil
}

// DefaultEnvironment returns the Environment set by
// InitDefaultEnvironment, or nil if it hasn't been called.
func DefaultEnvironment() Environment {
	holder := defaultEnvironment.Load()
	if holder == nil {
		return nil
	}
	return holder.env
}

func resolveEnvironment(explicit, typeEnv Environment, parent Node) Environment {
	if explicit != nil {
		return explicit
	}
	if typeEnv != nil {
		return typeEnv
	}
	if !isNilNode(parent) {
		if env := parent.Environment(); env != nil {
			return env
		}
	}
	return DefaultEnvironment()
}

var _ Environment = &HTMLEnvironment{}

// HTMLEnvironment is an Environment of html/template templates, read
// from one or more fs.FS layers. Parsed templates are cached in memory
// until invalidated.
//
// Templates have the "data" and "subcomponent" functions from
// BridgeFuncs. By default, a single trailing newline is trimmed from
// each template file, so a file ending in a newline doesn't render one.
//
// An HTMLEnvironment must be instantiated through NewEnvironment, its
// empty value is not usable. It can safely be used by multiple
// goroutines.
type HTMLEnvironment struct {
	// cache our templates to avoid re-parsing them for every render
	templateCache   map[string]*template.Template
	templateCacheMu sync.RWMutex

	// generation counts invalidations, so a parse that raced with one
	// isn't cached
	generation uint64

	// layers are searched in order for each template path
	layers []fs.FS

	funcs               template.FuncMap
	noCache             bool
	keepTrailingNewline bool
}

// EnvironmentOption configures an HTMLEnvironment.
type EnvironmentOption func(*HTMLEnvironment)

// WithOverlay adds fsys as another source of templates, searched after
// the ones already added. It lets a library ship default templates that
// an application's own templates override.
func WithOverlay(fsys fs.FS) EnvironmentOption {
	return func(env *HTMLEnvironment) {
		env.layers = append(env.layers, fsys)
	}
}

// WithFuncs adds functions to every template. Functions with the same
// name as one already added replace it; the bridge functions can't be
// replaced.
func WithFuncs(funcs template.FuncMap) EnvironmentOption {
	return func(env *HTMLEnvironment) {
		env.funcs = mergeFuncMaps(env.funcs, funcs)
	}
}

// WithMarkdown adds the "markdown" function, which renders Markdown to
// sanitized HTML.
func WithMarkdown() EnvironmentOption {
	return WithFuncs(template.FuncMap{
		"markdown": Markdown,
	})
}

// WithoutCache parses templates every time they're requested.
func WithoutCache() EnvironmentOption {
	return func(env *HTMLEnvironment) {
		env.noCache = true
	}
}

// KeepTrailingNewline stops the trailing newline of template files from
// being trimmed.
func KeepTrailingNewline() EnvironmentOption {
	return func(env *HTMLEnvironment) {
		env.keepTrailingNewline = true
	}
}

// NewEnvironment returns an HTMLEnvironment that reads templates from
// templates, and any overlays, and is ready to be used.
func NewEnvironment(templates fs.FS, opts ...EnvironmentOption) *HTMLEnvironment {
	env := &HTMLEnvironment{
		templateCache: map[string]*template.Template{},
		layers:        []fs.FS{templates},
		funcs:         template.FuncMap{},
	}
	for _, opt := range opts {
		opt(env)
	}
	env.funcs = mergeFuncMaps(env.funcs, BridgeFuncs())
	return env
}

// Template returns the template at path, parsing it if it isn't cached.
func (e *HTMLEnvironment) Template(_ context.Context, path string) (Template, error) {
	e.templateCacheMu.RLock()
	cached, ok := e.templateCache[path]
	generation := e.generation
	e.templateCacheMu.RUnlock()
	if ok {
		return htmlTemplate{tmpl: cached}, nil
	}
	parsed, err := e.parse(path)
	if err != nil {
		return nil, err
	}
	if !e.noCache {
		e.templateCacheMu.Lock()
		if e.generation == generation {
			e.templateCache[path] = parsed
		}
		e.templateCacheMu.Unlock()
	}
	return htmlTemplate{tmpl: parsed}, nil
}

func (e *HTMLEnvironment) parse(path string) (*template.Template, error) {
	contents, err := e.readFile(path)
	if err != nil {
		return nil, err
	}
	src := string(contents)
	if !e.keepTrailingNewline {
		src = strings.TrimSuffix(src, "\n")
	}
	tmpl, err := template.New(path).Funcs(e.funcs).Parse(src)
	if err != nil {
		return nil, fmt.Errorf("error parsing %q: %w", path, err)
	}
	return tmpl, nil
}

func (e *HTMLEnvironment) readFile(path string) ([]byte, error) {
	if !fs.ValidPath(path) || path == "." {
		return nil, fmt.Errorf("error reading %q: %w", path, ErrTemplateNotFound)
	}
	for _, layer := range e.layers {
		contents, err := fs.ReadFile(layer, path)
		if errors.Is(err, fs.ErrNotExist) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("error reading %q: %w", path, err)
		}
		return contents, nil
	}
	return nil, fmt.Errorf("error reading %q: %w", path, ErrTemplateNotFound)
}

// GetCachedTemplate returns the cached template for the passed path, if
// one exists. If no template is cached for that path, it returns nil.
func (e *HTMLEnvironment) GetCachedTemplate(_ context.Context, path string) *template.Template {
	e.templateCacheMu.RLock()
	defer e.templateCacheMu.RUnlock()
	res, ok := e.templateCache[path]
	if !ok {
		return nil
	}
	return res
}

// SetCachedTemplate caches a template for the passed path.
func (e *HTMLEnvironment) SetCachedTemplate(_ context.Context, path string, tmpl *template.Template) {
	e.templateCacheMu.Lock()
	defer e.templateCacheMu.Unlock()
	e.templateCache[path] = tmpl
}

// Invalidate drops the cached template for path, so the next request
// for it parses it again.
func (e *HTMLEnvironment) Invalidate(path string) {
	e.templateCacheMu.Lock()
	defer e.templateCacheMu.Unlock()
	delete(e.templateCache, path)
	e.generation++
}

// Reset drops every cached template.
func (e *HTMLEnvironment) Reset() {
	e.templateCacheMu.Lock()
	defer e.templateCacheMu.Unlock()
	e.templateCache = map[string]*template.Template{}
	e.generation++
}

type htmlTemplate struct {
	tmpl *template.Template
}

func (t htmlTemplate) Execute(_ context.Context, w io.Writer, scope map[string]any) error {
	return t.tmpl.Execute(w, scope)
}

// mergeFuncMaps flattens two FuncMaps into one, with the values in
// `override` replacing the values in `in` if they have the same keys.
func mergeFuncMaps(in template.FuncMap, override template.FuncMap) template.FuncMap {
	res := template.FuncMap{}
	for k, v := range in {
		res[k] = v
	}
	for k, v := range override {
		res[k] = v
	}
	return res
}
