// Package table provides a component that renders a list of models as
// an HTML table, one column per model field.
package table

import (
	"context"
	"embed"
	"fmt"
	"io/fs"

	"impractical.co/panel"
	"impractical.co/panel/dao"
)

// TemplatePath is the path of the table template in Templates.
const TemplatePath = "panel/table.html"

// DefaultID is the definition name tables get when their Config doesn't
// set one.
const DefaultID = "myTable"

//go:embed templates
var templates embed.FS

// Templates returns the file system holding the table template, at
// TemplatePath. Add it to an Environment, usually as an overlay, to
// render tables.
func Templates() fs.FS {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(err)
	}
	return sub
}

// Data is the Data record of every table component.
type Data struct {
	// Name identifies the table in the page.
	Name string `panel:"definition_name"`

	// Headers are the field names of the row model, in declaration
	// order.
	Headers []string `panel:"table_headers"`

	// Rows are the models, each as a map of field name to value.
	Rows []map[string]any `panel:"rows"`
}

// Config describes a table component whose Input record is I and whose
// rows are models of type M.
type Config[I, M any] struct {
	// Name identifies the component type in logs and errors.
	Name string

	// ID is the table's definition name. Defaults to DefaultID.
	ID string

	// Template overrides the template the table renders with. Defaults
	// to TemplatePath.
	Template string

	// Environment, if set, is used by every table of this type.
	Environment panel.Environment

	// Rows loads the models to display. If it's nil, the table has no
	// rows.
	Rows func(ctx context.Context, in I) ([]M, error)
}

// Define defines a table component type from cfg.
func Define[I, M any](cfg Config[I, M]) (*panel.Type[I, Data, panel.None], error) {
	if cfg.ID == "" {
		cfg.ID = DefaultID
	}
	if cfg.Template == "" {
		cfg.Template = TemplatePath
	}
	if cfg.Name == "" {
		cfg.Name = "table." + cfg.ID
	}
	return panel.Define(&panel.Type[I, Data, panel.None]{
		Name:        cfg.Name,
		Template:    cfg.Template,
		Environment: cfg.Environment,
		Transform: func(ctx context.Context, in I) (Data, error) {
			return cfg.data(ctx, in)
		},
	})
}

// MustDefine is Define, but panics on error.
func MustDefine[I, M any](cfg Config[I, M]) *panel.Type[I, Data, panel.None] {
	typ, err := Define(cfg)
	if err != nil {
		panic(err)
	}
	return typ
}

func (cfg Config[I, M]) data(ctx context.Context, in I) (Data, error) {
	var models []M
	if cfg.Rows != nil {
		var err error
		models, err = cfg.Rows(ctx, in)
		if err != nil {
			return Data{}, fmt.Errorf("error loading rows for %s: %w", cfg.ID, err)
		}
	}
	rows := make([]*dao.Row[M], 0, len(models))
	for _, model := range models {
		rows = append(rows, dao.FromModel(model))
	}
	mapped, err := dao.ToMaps(rows)
	if err != nil {
		return Data{}, fmt.Errorf("error converting rows for %s: %w", cfg.ID, err)
	}
	return Data{
		Name:    cfg.ID,
		Headers: dao.FieldNames[M](),
		Rows:    mapped,
	}, nil
}
