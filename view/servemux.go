package view

import (
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"

	"impractical.co/panel"
)

var _ RouteRegistrar = (*ServeMux)(nil)

// ServeMux is a RouteRegistrar for a net/http ServeMux. Endpoint
// patterns use the ServeMux's {name} wildcards.
type ServeMux struct {
	mux    *http.ServeMux
	logger *slog.Logger

	mu        sync.Mutex
	endpoints map[string]Endpoint
	patterns  []string
}

// NewServeMux returns a ServeMux that registers views on mux. Errors
// rendering views are logged to logger, which may be nil.
func NewServeMux(mux *http.ServeMux, logger *slog.Logger) *ServeMux {
	return &ServeMux{
		mux:       mux,
		logger:    logger,
		endpoints: map[string]Endpoint{},
	}
}

// Register routes each of the Endpoint's methods on its pattern to the
// Handler. Endpoint names must be unique, and the patterns must be valid
// and not conflict with any registered through the ServeMux; otherwise
// nothing is registered.
func (s *ServeMux) Register(endpoint Endpoint, handler Handler) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.endpoints[endpoint.Name]; ok {
		return fmt.Errorf("error registering %q: %w", endpoint.Name, ErrDuplicateEndpoint)
	}
	patterns := make([]string, 0, len(endpoint.Methods))
	for _, method := range endpoint.Methods {
		patterns = append(patterns, method.String()+" "+endpoint.Pattern)
	}
	if err := s.checkPatterns(patterns); err != nil {
		return fmt.Errorf("error registering %q: %w", endpoint.Name, err)
	}
	h := HTTPHandler(endpoint, handler, s.logger)
	for _, pattern := range patterns {
		s.mux.Handle(pattern, h)
	}
	s.endpoints[endpoint.Name] = endpoint
	s.patterns = append(s.patterns, patterns...)
	return nil
}

// checkPatterns registers every pattern already added, then patterns, on
// a scratch http.ServeMux, turning its panics into ErrConflictingPattern.
func (s *ServeMux) checkPatterns(patterns []string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%v: %w", r, ErrConflictingPattern)
		}
	}()
	scratch := http.NewServeMux()
	for _, pattern := range s.patterns {
		scratch.Handle(pattern, http.NotFoundHandler())
	}
	for _, pattern := range patterns {
		scratch.Handle(pattern, http.NotFoundHandler())
	}
	return nil
}

// Endpoint returns the registered Endpoint with the passed name.
func (s *ServeMux) Endpoint(name string) (Endpoint, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	endpoint, ok := s.endpoints[name]
	return endpoint, ok
}

// HTTPHandler adapts a Handler to an http.Handler served by a Go 1.22+
// http.ServeMux, which supplies the endpoint's path parameters. If the
// Handler fails, the error is logged and a 500 response is written.
func HTTPHandler(endpoint Endpoint, handler Handler, logger *slog.Logger) http.Handler {
	names := endpoint.Params()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		if logger != nil {
			ctx = panel.LoggingContext(ctx, logger)
		}
		params := make(map[string]string, len(names))
		for _, name := range names {
			params[name] = r.PathValue(name)
		}
		html, err := handler(ctx, params)
		if err != nil {
			panel.Logger(ctx).ErrorContext(ctx, "error rendering view",
				"endpoint", endpoint.Name,
				"path", r.URL.Path,
				"error", err,
			)
			http.Error(w, "Server error.", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, err = io.WriteString(w, string(html))
		if err != nil {
			panel.Logger(ctx).ErrorContext(ctx, "error writing response", "endpoint", endpoint.Name, "error", err)
		}
	})
}
