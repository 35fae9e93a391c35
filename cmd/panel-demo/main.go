// Command panel-demo renders and serves the example components.
//
// Print one example view, by endpoint name:
//
//	panel-demo -render hello_name -param first_name=Justin -param last_name=Rushin
//
// Or serve all of them:
//
//	panel-demo -config demo.yaml -addr localhost:8080
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"impractical.co/panel"
	"impractical.co/panel/echoview"
	"impractical.co/panel/examples"
	"impractical.co/panel/view"
)

var errUnknownView = errors.New("unknown view")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		log.Fatal(err)
	}
}

func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	flags := flag.NewFlagSet("panel-demo", flag.ContinueOnError)
	flags.SetOutput(stderr)
	configPath := flags.String("config", "", "YAML config file")
	render := flags.String("render", "", "endpoint name of a view to print instead of serving")
	addr := flags.String("addr", "", "address to serve on")
	templates := flags.String("templates", "", "directory of templates to use instead of the embedded ones")
	watch := flags.Bool("watch", false, "reload templates from -templates when they change")
	router := flags.String("router", "", `router to serve with, "echo" or "http"`)
	logLevel := flags.String("log-level", "", "minimum level to log")
	viewParams := params{}
	flags.Var(viewParams, "param", "path parameter for -render, as name=value; repeatable")
	if err := flags.Parse(args); err != nil {
		return err
	}

	cfg := defaultConfig()
	if *configPath != "" {
		if err := loadConfig(*configPath, &cfg); err != nil {
			return err
		}
	}
	// flags that were set win over the config file
	flags.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "addr":
			cfg.Addr = *addr
		case "templates":
			cfg.Templates = *templates
		case "watch":
			cfg.Watch = *watch
		case "router":
			cfg.Router = *router
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})
	if err := cfg.validate(); err != nil {
		return err
	}

	level, _ := cfg.level()
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: level}))
	ctx = panel.LoggingContext(ctx, logger)

	env := examples.Environment(examples.Templates())
	if cfg.Templates != "" {
		env = examples.Environment(os.DirFS(cfg.Templates))
	}
	routes := examples.Routes(panel.WithEnvironment(env))

	if *render != "" {
		return renderView(ctx, stdout, routes, *render, viewParams)
	}

	if cfg.Watch && cfg.Templates != "" {
		watcher, err := panel.Watch(ctx, env, cfg.Templates)
		if err != nil {
			return err
		}
		defer watcher.Close() //nolint:errcheck // shutting down anyway
	}

	handler, err := newHandler(cfg, routes, logger)
	if err != nil {
		return err
	}
	return serve(ctx, cfg.Addr, handler, logger)
}

func renderView(ctx context.Context, out io.Writer, routes []view.Route, name string, params map[string]string) error {
	route, ok := view.Find(routes, name)
	if !ok {
		return fmt.Errorf("%q: %w", name, errUnknownView)
	}
	html, err := route.Render(ctx, params)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, html)
	return err
}

func newHandler(cfg config, routes []view.Route, logger *slog.Logger) (http.Handler, error) {
	switch cfg.Router {
	case "http":
		mux := http.NewServeMux()
		if err := view.AddAll(view.NewServeMux(mux, logger), routes...); err != nil {
			return nil, err
		}
		return mux, nil
	case "echo":
		e := echo.New()
		e.HideBanner = true
		e.HidePort = true
		e.Use(middleware.Recover())
		e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
			LogStatus: true,
			LogURI:    true,
			LogMethod: true,
			LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
				logger.InfoContext(c.Request().Context(), "request",
					"method", v.Method,
					"uri", v.URI,
					"status", v.Status,
				)
				return nil
			},
		}))
		e.Use(func(next echo.HandlerFunc) echo.HandlerFunc {
			return func(c echo.Context) error {
				req := c.Request()
				c.SetRequest(req.WithContext(panel.LoggingContext(req.Context(), logger)))
				return next(c)
			}
		})
		if err := view.AddAll(echoview.New(e), routes...); err != nil {
			return nil, err
		}
		return e, nil
	}
	return nil, fmt.Errorf("%q: %w", cfg.Router, errUnknownRouter)
}

func serve(ctx context.Context, addr string, handler http.Handler, logger *slog.Logger) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errs := make(chan error, 1)
	go func() {
		logger.InfoContext(ctx, "serving examples", "addr", addr)
		errs <- srv.ListenAndServe()
	}()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("error shutting down: %w", err)
	}
	return nil
}
