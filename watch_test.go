package panel

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("Timed out waiting for condition")
}

func TestWatchInvalidatesChangedTemplates(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "partials"), 0o755); err != nil {
		t.Fatalf("Unexpected error creating directory: %s", err)
	}
	for path, contents := range map[string]string{
		"hello.html":          "<p>Hello</p>",
		"partials/table.html": "<table></table>",
	} {
		if err := os.WriteFile(filepath.Join(root, path), []byte(contents), 0o644); err != nil {
			t.Fatalf("Unexpected error writing %q: %s", path, err)
		}
	}

	env := NewEnvironment(os.DirFS(root))
	watcher, err := Watch(ctx, env, root)
	if err != nil {
		t.Fatalf("Unexpected error watching: %s", err)
	}
	t.Cleanup(func() {
		if err := watcher.Close(); err != nil {
			t.Errorf("Unexpected error closing watcher: %s", err)
		}
	})

	for _, path := range []string{"hello.html", "partials/table.html"} {
		if _, err := env.Template(ctx, path); err != nil {
			t.Fatalf("Unexpected error loading %q: %s", path, err)
		}
		if env.GetCachedTemplate(ctx, path) == nil {
			t.Fatalf("Expected %q to be cached", path)
		}
		if err := os.WriteFile(filepath.Join(root, filepath.FromSlash(path)), []byte("<p>Changed</p>"), 0o644); err != nil {
			t.Fatalf("Unexpected error writing %q: %s", path, err)
		}
		waitFor(t, func() bool {
			return env.GetCachedTemplate(ctx, path) == nil
		})
	}
}

func TestWatchStopsWithContext(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	watcher, err := Watch(ctx, NewEnvironment(os.DirFS(t.TempDir())), t.TempDir())
	if err != nil {
		t.Fatalf("Unexpected error watching: %s", err)
	}
	cancel()
	select {
	case <-watcher.done:
	case <-time.After(5 * time.Second):
		t.Fatal("Expected watcher to stop when its context was canceled")
	}
	if err := watcher.Close(); err != nil {
		t.Errorf("Unexpected error closing a stopped watcher: %s", err)
	}
}

func TestWatchMissingRoot(t *testing.T) {
	t.Parallel()

	_, err := Watch(context.Background(), NewEnvironment(os.DirFS(".")), filepath.Join(t.TempDir(), "missing"))
	if err == nil {
		t.Error("Expected an error watching a missing directory")
	}
}
