// Package echoview registers panel views with an Echo router.
//
//	e := echo.New()
//	err := view.AddAll(echoview.New(e), routes...)
package echoview

import (
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/labstack/echo/v4"

	"impractical.co/panel"
	"impractical.co/panel/view"
)

// Router is the part of an *echo.Echo or *echo.Group views are added
// to.
type Router interface {
	Match(methods []string, path string, handler echo.HandlerFunc, middleware ...echo.MiddlewareFunc) []*echo.Route
}

var (
	_ Router              = (*echo.Echo)(nil)
	_ Router              = (*echo.Group)(nil)
	_ view.RouteRegistrar = (*Registrar)(nil)
)

// Registrar is a view.RouteRegistrar for Echo.
type Registrar struct {
	router     Router
	middleware []echo.MiddlewareFunc

	mu    sync.Mutex
	names map[string]struct{}
}

// New returns a Registrar that adds views to router, wrapped in
// middleware.
func New(router Router, middleware ...echo.MiddlewareFunc) *Registrar {
	return &Registrar{
		router:     router,
		middleware: middleware,
		names:      map[string]struct{}{},
	}
}

// Register adds the Handler to the router for each of the Endpoint's
// methods. The Endpoint's {name} path parameters become Echo's :name
// parameters, and its name becomes the name of each route, for use with
// Echo's Reverse.
func (r *Registrar) Register(endpoint view.Endpoint, handler view.Handler) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.names[endpoint.Name]; ok {
		return fmt.Errorf("error registering %q: %w", endpoint.Name, view.ErrDuplicateEndpoint)
	}
	methods := make([]string, 0, len(endpoint.Methods))
	for _, method := range endpoint.Methods {
		methods = append(methods, method.String())
	}
	names := paramNames(endpoint.Pattern)
	routes := r.router.Match(methods, Path(endpoint.Pattern), func(c echo.Context) error {
		ctx := c.Request().Context()
		params := make(map[string]string, len(names))
		for name, param := range names {
			params[name] = c.Param(param)
		}
		html, err := handler(ctx, params)
		if err != nil {
			panel.Logger(ctx).ErrorContext(ctx, "error rendering view",
				"endpoint", endpoint.Name,
				"path", c.Request().URL.Path,
				"error", err,
			)
			return echo.NewHTTPError(http.StatusInternalServerError, "Server error.").SetInternal(err)
		}
		return c.HTML(http.StatusOK, string(html))
	}, r.middleware...)
	for _, route := range routes {
		route.Name = endpoint.Name
	}
	r.names[endpoint.Name] = struct{}{}
	return nil
}

// paramNames maps each path parameter of pattern to the name Echo knows
// it by.
func paramNames(pattern string) map[string]string {
	names := map[string]string{}
	for _, segment := range strings.Split(pattern, "/") {
		if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
			continue
		}
		name := strings.Trim(segment, "{}")
		switch {
		case name == "$" || name == "":
		case strings.HasSuffix(name, "..."):
			names[strings.TrimSuffix(name, "...")] = "*"
		default:
			names[name] = name
		}
	}
	return names
}

// Path converts a pattern with {name} path parameters to an Echo path
// with :name parameters. A {name...} parameter becomes Echo's trailing
// wildcard.
func Path(pattern string) string {
	segments := strings.Split(pattern, "/")
	for pos, segment := range segments {
		if !strings.HasPrefix(segment, "{") || !strings.HasSuffix(segment, "}") {
			continue
		}
		name := strings.Trim(segment, "{}")
		switch {
		case name == "$":
			segments[pos] = ""
		case strings.HasSuffix(name, "..."):
			segments[pos] = "*"
		default:
			segments[pos] = ":" + name
		}
	}
	return strings.Join(segments, "/")
}
