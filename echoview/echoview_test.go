package echoview_test

import (
	"context"
	"errors"
	"html/template"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"impractical.co/panel/echoview"
	"impractical.co/panel/view"
)

func TestPath(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"/hello":                          "/hello",
		"/hello/{first_name}/{last_name}": "/hello/:first_name/:last_name",
		"/files/{path...}":                "/files/*",
		"/exact/{$}":                      "/exact/",
		"/{id}/static":                    "/:id/static",
	}
	for pattern, expected := range tests {
		if got := echoview.Path(pattern); got != expected {
			t.Errorf("Expected %q to become %q, got %q", pattern, expected, got)
		}
	}
}

func greet(_ context.Context, params map[string]string) (template.HTML, error) {
	if params["first_name"] == "fail" {
		return "", errors.New("refusing to greet")
	}
	return template.HTML("<p>Hello, " + template.HTMLEscapeString(params["first_name"]+" "+params["last_name"]) + "!</p>"), nil //nolint:gosec // escaped
}

func files(_ context.Context, params map[string]string) (template.HTML, error) {
	return template.HTML(template.HTMLEscapeString(params["path"])), nil //nolint:gosec // escaped
}

func TestRegister(t *testing.T) {
	t.Parallel()

	e := echo.New()
	registrar := echoview.New(e)
	err := registrar.Register(view.Endpoint{
		Pattern: "/hello/{first_name}/{last_name}",
		Name:    "hello_name",
		Methods: []view.Method{view.MethodGet, view.MethodPost},
	}, greet)
	if err != nil {
		t.Fatalf("Unexpected error registering: %s", err)
	}
	err = registrar.Register(view.Endpoint{
		Pattern: "/files/{path...}",
		Name:    "files",
		Methods: []view.Method{view.MethodGet},
	}, files)
	if err != nil {
		t.Fatalf("Unexpected error registering: %s", err)
	}

	tests := map[string]struct {
		method string
		path   string
		status int
		body   string
	}{
		"get":       {method: http.MethodGet, path: "/hello/Justin/Rushin", status: http.StatusOK, body: "<p>Hello, Justin Rushin!</p>"},
		"post":      {method: http.MethodPost, path: "/hello/Ada/Lovelace", status: http.StatusOK, body: "<p>Hello, Ada Lovelace!</p>"},
		"wildcard":  {method: http.MethodGet, path: "/files/a/b.txt", status: http.StatusOK, body: "a/b.txt"},
		"error":     {method: http.MethodGet, path: "/hello/fail/Rushin", status: http.StatusInternalServerError, body: "{\"message\":\"Server error.\"}\n"},
		"not-found": {method: http.MethodGet, path: "/goodbye", status: http.StatusNotFound},
	}
	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			t.Parallel()

			resp := httptest.NewRecorder()
			e.ServeHTTP(resp, httptest.NewRequest(tc.method, tc.path, nil))
			if resp.Code != tc.status {
				t.Errorf("Expected status %d, got %d", tc.status, resp.Code)
			}
			if tc.body != "" && resp.Body.String() != tc.body {
				t.Errorf("Expected body %q, got %q", tc.body, resp.Body.String())
			}
		})
	}

	if got := e.Reverse("hello_name", "Justin", "Rushin"); got != "/hello/Justin/Rushin" {
		t.Errorf("Expected reversed route %q, got %q", "/hello/Justin/Rushin", got)
	}
}

func TestRegisterDuplicate(t *testing.T) {
	t.Parallel()

	registrar := echoview.New(echo.New())
	endpoint := view.Endpoint{
		Pattern: "/hello",
		Name:    "hello",
		Methods: []view.Method{view.MethodGet},
	}
	if err := registrar.Register(endpoint, greet); err != nil {
		t.Fatalf("Unexpected error registering: %s", err)
	}
	if err := registrar.Register(endpoint, greet); !errors.Is(err, view.ErrDuplicateEndpoint) {
		t.Errorf("Expected %v, got %v", view.ErrDuplicateEndpoint, err)
	}
}

func TestRegisterGroupWithMiddleware(t *testing.T) {
	t.Parallel()

	e := echo.New()
	var called bool
	registrar := echoview.New(e.Group("/admin"), func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			called = true
			return next(c)
		}
	})
	err := registrar.Register(view.Endpoint{
		Pattern: "/hello/{first_name}/{last_name}",
		Name:    "admin_hello_name",
		Methods: []view.Method{view.MethodGet},
	}, greet)
	if err != nil {
		t.Fatalf("Unexpected error registering: %s", err)
	}

	resp := httptest.NewRecorder()
	e.ServeHTTP(resp, httptest.NewRequest(http.MethodGet, "/admin/hello/Grace/Hopper", nil))
	if resp.Code != http.StatusOK {
		t.Errorf("Expected status %d, got %d", http.StatusOK, resp.Code)
	}
	if expected := "<p>Hello, Grace Hopper!</p>"; resp.Body.String() != expected {
		t.Errorf("Expected body %q, got %q", expected, resp.Body.String())
	}
	if !called {
		t.Error("Expected middleware to be called")
	}
}
