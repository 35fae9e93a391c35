package table_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"impractical.co/panel"
	"impractical.co/panel/table"
)

type greeting struct {
	Desig string `json:"Desig"`
}

func greetings(_ context.Context, _ panel.None) ([]greeting, error) {
	return []greeting{{Desig: "Hello"}, {Desig: "World"}}, nil
}

func render(t *testing.T, typ *panel.Type[panel.None, table.Data, panel.None]) string {
	t.Helper()

	env := panel.NewEnvironment(table.Templates())
	html, err := typ.MustNew(panel.WithEnvironment(env)).RenderSubcomponent(context.Background(), nil)
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	return string(html)
}

func TestTable(t *testing.T) {
	t.Parallel()

	typ := table.MustDefine(table.Config[panel.None, greeting]{
		Rows: greetings,
	})
	if typ.Name != "table.myTable" {
		t.Errorf("Expected default name %q, got %q", "table.myTable", typ.Name)
	}
	expected := `<table id="myTable">
  <thead>
    <tr><th>Desig</th></tr>
  </thead>
  <tbody>
    <tr><td>Hello</td></tr>
    <tr><td>World</td></tr>
  </tbody>
</table>`
	if diff := cmp.Diff(expected, render(t, typ)); diff != "" {
		t.Errorf("Unexpected output (-wanted, +got): %s", diff)
	}
}

func TestTableNoRows(t *testing.T) {
	t.Parallel()

	typ := table.MustDefine(table.Config[panel.None, greeting]{
		Name: "EmptyGreetings",
		ID:   "empty",
	})
	expected := `<table id="empty">
  <thead>
    <tr><th>Desig</th></tr>
  </thead>
  <tbody>
  </tbody>
</table>`
	if diff := cmp.Diff(expected, render(t, typ)); diff != "" {
		t.Errorf("Unexpected output (-wanted, +got): %s", diff)
	}
}

type person struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Email string `json:"-"`
}

func TestTableData(t *testing.T) {
	t.Parallel()

	typ := table.MustDefine(table.Config[panel.None, *person]{
		ID: "people",
		Rows: func(_ context.Context, _ panel.None) ([]*person, error) {
			return []*person{{ID: 1, Name: "Ada", Email: "ada@example.com"}, nil}, nil
		},
	})
	data, err := typ.FromInputs(context.Background(), panel.None{})
	if err != nil {
		t.Fatalf("Unexpected error: %s", err)
	}
	expected := table.Data{
		Name:    "people",
		Headers: []string{"id", "name"},
		// nil models are skipped
		Rows: []map[string]any{{"id": json.Number("1"), "name": "Ada"}},
	}
	if diff := cmp.Diff(expected, data); diff != "" {
		t.Errorf("Unexpected data (-wanted, +got): %s", diff)
	}
}

func TestTableRowsError(t *testing.T) {
	t.Parallel()

	errDatabase := errors.New("database is down")
	typ := table.MustDefine(table.Config[panel.None, greeting]{
		Name: "BrokenGreetings",
		Rows: func(_ context.Context, _ panel.None) ([]greeting, error) {
			return nil, errDatabase
		},
	})
	_, err := typ.MustNew(panel.WithEnvironment(panel.NewEnvironment(table.Templates()))).RenderSubcomponent(context.Background(), nil)
	if !errors.Is(err, errDatabase) {
		t.Errorf("Expected %v, got %v", errDatabase, err)
	}
}

type account struct {
	ID      int64 `json:"id"`
	Balance int   `json:"balance"`
}

func TestTableLargeNumbers(t *testing.T) {
	t.Parallel()

	typ := table.MustDefine(table.Config[panel.None, account]{
		ID: "accounts",
		Rows: func(_ context.Context, _ panel.None) ([]account, error) {
			return []account{{ID: 9007199254740993, Balance: 1234567}}, nil
		},
	})
	expected := `<table id="accounts">
  <thead>
    <tr><th>id</th><th>balance</th></tr>
  </thead>
  <tbody>
    <tr><td>9007199254740993</td><td>1234567</td></tr>
  </tbody>
</table>`
	if diff := cmp.Diff(expected, render(t, typ)); diff != "" {
		t.Errorf("Unexpected output (-wanted, +got): %s", diff)
	}
}
