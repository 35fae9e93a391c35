package panel

import (
	"fmt"
	"maps"
	"reflect"
	"slices"
	"strings"
)

const tagName = "panel"

// Field is a single declared field of a record.
type Field struct {
	// Name is the name templates and keyword overrides use for the
	// field. It comes from the `panel` struct tag, falling back to the
	// Go field name.
	Name string

	// GoName is the name of the Go struct field.
	GoName string

	// Type is the declared Go type of the field.
	Type reflect.Type

	// Required fields must be supplied when the record is built from
	// named values. Set with the `required` tag option.
	Required bool

	index []int
}

// Schema is the promoted form of a record type: a struct type with its
// fields listed in declaration order. Fields of embedded structs are
// listed where the embedded struct appears, so a record that embeds
// another record inherits its fields, in its order, ahead of any fields
// declared after the embedding.
type Schema struct {
	name   string
	typ    reflect.Type
	fields []Field
	byName map[string]int
}

// SchemaFor promotes the record type T into a Schema. The name is only
// used to identify the schema in errors.
func SchemaFor[T any](name string) (*Schema, error) {
	return NewSchema(name, reflect.TypeFor[T]())
}

// NewSchema promotes the record type typ into a Schema. typ must be a
// struct type; an empty struct is valid and declares no fields.
//
// Unexported fields and fields tagged `panel:"-"` aren't part of the
// record. Two fields with the same name are an error.
func NewSchema(name string, typ reflect.Type) (*Schema, error) {
	if typ == nil || typ.Kind() != reflect.Struct {
		return nil, fmt.Errorf("error promoting %s: %v is not a struct: %w", name, typ, ErrInvalidSchema)
	}
	schema := &Schema{
		name:   name,
		typ:    typ,
		byName: map[string]int{},
	}
	if err := schema.collect(typ, nil); err != nil {
		return nil, err
	}
	return schema, nil
}

func (s *Schema) collect(typ reflect.Type, parent []int) error {
	for pos := range typ.NumField() {
		field := typ.Field(pos)
		tag, tagged := field.Tag.Lookup(tagName)
		if tag == "-" {
			continue
		}
		name, opts, _ := strings.Cut(tag, ",")
		index := append(slices.Clone(parent), pos)

		// embedded structs contribute their fields unless the tag gives
		// the embedding a name of its own
		if field.Anonymous && (!tagged || name == "") {
			if field.Type.Kind() == reflect.Struct {
				if err := s.collect(field.Type, index); err != nil {
					return err
				}
				continue
			}
			if field.Type.Kind() == reflect.Pointer && field.Type.Elem().Kind() == reflect.Struct {
				return fmt.Errorf("error promoting %s: embedded pointer %s: %w", s.name, field.Type, ErrInvalidSchema)
			}
		}
		if !field.IsExported() {
			continue
		}
		if name == "" {
			name = field.Name
		}
		if _, ok := s.byName[name]; ok {
			return fmt.Errorf("error promoting %s: field %q declared twice: %w", s.name, name, ErrInvalidSchema)
		}
		s.byName[name] = len(s.fields)
		s.fields = append(s.fields, Field{
			Name:     name,
			GoName:   field.Name,
			Type:     field.Type,
			Required: slices.Contains(strings.Split(opts, ","), "required"),
			index:    index,
		})
	}
	return nil
}

// Name returns the name the Schema was promoted with.
func (s *Schema) Name() string {
	return s.name
}

// Type returns the record's Go type.
func (s *Schema) Type() reflect.Type {
	return s.typ
}

// Fields returns the record's fields in declaration order.
func (s *Schema) Fields() []Field {
	return slices.Clone(s.fields)
}

// FieldNames returns the names of the record's fields in declaration
// order.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for _, field := range s.fields {
		names = append(names, field.Name)
	}
	return names
}

// Field returns the field with the given name.
func (s *Schema) Field(name string) (Field, bool) {
	pos, ok := s.byName[name]
	if !ok {
		return Field{}, false
	}
	return s.fields[pos], true
}

// Build returns a new record, as a reflect.Value of the record's type,
// with each named value assigned to the field of that name. Fields that
// aren't named keep their zero value.
//
// Values are assigned as-is: a value that isn't assignable to its
// field's declared type is an error, as is a name that isn't a field or
// a missing required field.
func (s *Schema) Build(values map[string]any) (reflect.Value, error) {
	record := reflect.New(s.typ).Elem()
	for _, name := range slices.Sorted(maps.Keys(values)) {
		pos, ok := s.byName[name]
		if !ok {
			return reflect.Value{}, fmt.Errorf("error building %s: %q: %w", s.name, name, ErrUnknownField)
		}
		field := s.fields[pos]
		value := values[name]
		target := record.FieldByIndex(field.index)
		if value == nil {
			if !nillable(field.Type) {
				return reflect.Value{}, fmt.Errorf("error building %s: %q can't be nil, it's a %s: %w", s.name, name, field.Type, ErrFieldType)
			}
			continue
		}
		val := reflect.ValueOf(value)
		if !val.Type().AssignableTo(field.Type) {
			return reflect.Value{}, fmt.Errorf("error building %s: %q wants %s, got %s: %w", s.name, name, field.Type, val.Type(), ErrFieldType)
		}
		target.Set(val)
	}
	for _, field := range s.fields {
		if !field.Required {
			continue
		}
		if _, ok := values[field.Name]; !ok {
			return reflect.Value{}, fmt.Errorf("error building %s: %q: %w", s.name, field.Name, ErrMissingField)
		}
	}
	return record, nil
}

// Map flattens a record into a map of field name to field value. The
// record may be passed as a value or a pointer; a nil pointer flattens
// to an empty map.
func (s *Schema) Map(record any) map[string]any {
	results := make(map[string]any, len(s.fields))
	val := reflect.ValueOf(record)
	if val.Kind() == reflect.Pointer {
		if val.IsNil() {
			return results
		}
		val = val.Elem()
	}
	if !val.IsValid() || val.Type() != s.typ {
		return results
	}
	for _, field := range s.fields {
		results[field.Name] = val.FieldByIndex(field.index).Interface()
	}
	return results
}

func nillable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Pointer, reflect.Interface, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan:
		return true
	}
	return false
}
