// Package dao wraps models, the structs an application stores, so
// components can display them without knowing their types.
//
// A model's fields are named by their `json` tag, if they have one, and
// by their Go name otherwise; fields tagged `json:"-"` are left out.
package dao

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"
	"strings"
)

// Row wraps a single model.
type Row[M any] struct {
	model M
}

// FromModel wraps model. A nil pointer model returns nil.
func FromModel[M any](model M) *Row[M] {
	val := reflect.ValueOf(model)
	if !val.IsValid() || (val.Kind() == reflect.Pointer && val.IsNil()) {
		return nil
	}
	return &Row[M]{model: model}
}

// Model returns the wrapped model.
func (r *Row[M]) Model() M {
	return r.model
}

// ToMap returns the model's fields keyed by field name. Numbers are
// json.Numbers holding the digits the model encoded to.
func (r *Row[M]) ToMap() (map[string]any, error) {
	if r == nil {
		return nil, ErrNoModel
	}
	return jsonToMap(r.model)
}

// FieldNames returns the field names of the model type M, in the order
// they're declared. M may be a struct or a pointer to one.
func FieldNames[M any]() []string {
	typ := reflect.TypeFor[M]()
	for typ.Kind() == reflect.Pointer {
		typ = typ.Elem()
	}
	if typ.Kind() != reflect.Struct {
		return nil
	}
	return fieldNames(typ)
}

func fieldNames(typ reflect.Type) []string {
	var names []string
	for pos := range typ.NumField() {
		field := typ.Field(pos)
		tag, tagged := field.Tag.Lookup("json")
		name, _, _ := strings.Cut(tag, ",")
		if name == "-" && !strings.Contains(tag, ",") {
			continue
		}
		// embedded structs without a name contribute their fields, the
		// way encoding/json flattens them
		if field.Anonymous && (!tagged || name == "") {
			embedded := field.Type
			if embedded.Kind() == reflect.Pointer {
				embedded = embedded.Elem()
			}
			if embedded.Kind() == reflect.Struct {
				names = append(names, fieldNames(embedded)...)
				continue
			}
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		names = append(names, name)
	}
	return names
}

// ToMaps converts every row to a map, skipping nil rows.
func ToMaps[M any](rows []*Row[M]) ([]map[string]any, error) {
	results := make([]map[string]any, 0, len(rows))
	for pos, row := range rows {
		if row == nil {
			continue
		}
		mapped, err := row.ToMap()
		if err != nil {
			return nil, fmt.Errorf("error converting row %d: %w", pos, err)
		}
		results = append(results, mapped)
	}
	return results, nil
}

// jsonToMap decodes numbers as json.Number, so integers keep their
// digits instead of becoming float64s.
func jsonToMap(model any) (map[string]any, error) {
	payload, err := json.Marshal(model)
	if err != nil {
		return nil, fmt.Errorf("error encoding model %T: %w", model, err)
	}
	dec := json.NewDecoder(bytes.NewReader(payload))
	dec.UseNumber()
	var results map[string]any
	if err := dec.Decode(&results); err != nil {
		return nil, fmt.Errorf("error decoding model %T: %w", model, err)
	}
	return results, nil
}
