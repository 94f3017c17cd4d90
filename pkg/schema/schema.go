// Package schema declares the shape and constraints of every configuration
// section and provides the registry the validator resolves schemas from.
package schema

// FieldType identifies the expected type of a configuration field.
type FieldType string

// Supported field types.
const (
	TypeString FieldType = "string"
	TypeInt    FieldType = "int"
	TypeFloat  FieldType = "float"
	TypeBool   FieldType = "bool"
	TypeObject FieldType = "object"
	TypeArray  FieldType = "array"
)

// FieldSchema describes a single configuration field. Numeric bounds apply
// to int/float fields, length bounds and Pattern to strings, Properties to
// objects and Items to arrays. FieldSchema values are treated as immutable
// once registered.
type FieldSchema struct {
	Type        FieldType
	Required    bool
	Default     interface{}
	Enum        []string
	Min         *float64
	Max         *float64
	MinLength   *int
	MaxLength   *int
	Pattern     string
	Deprecated  bool
	Description string
	Properties  map[string]*FieldSchema
	Items       *FieldSchema
}

// Schema is a named, immutable set of field descriptors for one
// configuration section.
type Schema struct {
	name   string
	fields map[string]*FieldSchema
}

// NewSchema constructs a schema, copying the field map so later mutation of
// the argument cannot change the schema.
func NewSchema(name string, fields map[string]*FieldSchema) *Schema {
	copied := make(map[string]*FieldSchema, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	return &Schema{name: name, fields: copied}
}

// Name returns the schema name.
func (s *Schema) Name() string { return s.name }

// Field returns the descriptor for a field name.
func (s *Schema) Field(name string) (*FieldSchema, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// FieldNames returns the known field names.
func (s *Schema) FieldNames() []string {
	names := make([]string, 0, len(s.fields))
	for name := range s.fields {
		names = append(names, name)
	}
	return names
}

// Fields iterates the descriptors via a copy of the field map.
func (s *Schema) Fields() map[string]*FieldSchema {
	out := make(map[string]*FieldSchema, len(s.fields))
	for k, v := range s.fields {
		out[k] = v
	}
	return out
}

func floatPtr(v float64) *float64 { return &v }
func intPtr(v int) *int           { return &v }
