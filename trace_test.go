package panel_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	"impractical.co/panel"
)

func TestRenderSpans(t *testing.T) {
	// not parallel, it changes the global tracer provider
	recorder := tracetest.NewSpanRecorder()
	provider := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	previous := otel.GetTracerProvider()
	otel.SetTracerProvider(provider)
	t.Cleanup(func() {
		otel.SetTracerProvider(previous)
		_ = provider.Shutdown(context.Background())
	})

	env := panel.NewEnvironment(helloTemplates)
	super := helloSuper.MustNew(panel.WithEnvironment(env))
	super.Bind(panel.None{}, helloSuperSubcomponents{MyHello: helloWorld.MustNew(panel.WithParent(super))})
	if _, err := super.Render(context.Background()); err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}

	type span struct {
		Name       string
		Attributes []attribute.KeyValue
		Code       codes.Code
		Parent     string
	}
	byID := map[string]string{}
	for _, s := range recorder.Ended() {
		byID[s.SpanContext().SpanID().String()] = s.Name()
	}
	var got []span
	for _, s := range recorder.Ended() {
		got = append(got, span{
			Name:       s.Name(),
			Attributes: s.Attributes(),
			Code:       s.Status().Code,
			Parent:     byID[s.Parent().SpanID().String()],
		})
	}
	// the child ends first
	expected := []span{
		{
			Name: "panel.Render HelloWorld",
			Attributes: []attribute.KeyValue{
				attribute.String("panel.component", "HelloWorld"),
				attribute.String("panel.template", "hello.html"),
				attribute.Bool("panel.as_subcomponent", true),
			},
			Code:   codes.Unset,
			Parent: "panel.Render HelloSuper",
		},
		{
			Name: "panel.Render HelloSuper",
			Attributes: []attribute.KeyValue{
				attribute.String("panel.component", "HelloSuper"),
				attribute.String("panel.template", "hello_super.html"),
				attribute.Bool("panel.as_subcomponent", false),
			},
			Code: codes.Unset,
		},
	}
	if diff := cmp.Diff(expected, got, cmp.Comparer(func(a, b attribute.KeyValue) bool {
		return a.Key == b.Key && a.Value.Emit() == b.Value.Emit()
	})); diff != "" {
		t.Errorf("Unexpected spans (-wanted, +got): %s", diff)
	}

	missing := panel.MustDefine(&panel.Type[panel.None, panel.None, panel.None]{
		Name:      "TracedMissing",
		Template:  "missing.html",
		Transform: panel.EmptyData[panel.None, panel.None],
	})
	c := missing.MustNew(panel.WithEnvironment(env))
	c.Bind(panel.None{}, panel.None{})
	_, err := c.Render(context.Background())
	if !errors.Is(err, panel.ErrTemplateNotFound) {
		t.Fatalf("Expected %v, got %v", panel.ErrTemplateNotFound, err)
	}
	ended := recorder.Ended()
	last := ended[len(ended)-1]
	if last.Name() != "panel.Render TracedMissing" {
		t.Fatalf("Expected span %q, got %q", "panel.Render TracedMissing", last.Name())
	}
	if last.Status().Code != codes.Error {
		t.Errorf("Expected status %s, got %s", codes.Error, last.Status().Code)
	}
	if last.Status().Description != err.Error() {
		t.Errorf("Expected status description %q, got %q", err.Error(), last.Status().Description)
	}
	if len(last.Events()) != 1 || last.Events()[0].Name != "exception" {
		t.Errorf("Expected the error to be recorded as an event, got %+v", last.Events())
	}
}
