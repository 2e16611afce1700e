// Package schema provides the resource metadata registry for the CRUD engine.
//
// A Resource is the normalized description of one data model: an ordered
// list of field descriptors derived once at startup (from CUE declarations
// or programmatic registration) and immutable afterwards. The registry is
// populated during process start and consumed by the form builder, the
// list engine, and the dispatcher.
package schema

import (
	"fmt"
	"strings"
)

// FieldType classifies a field into one of the semantic types that drive
// widget selection and value coercion.
type FieldType int

const (
	TypeText FieldType = iota
	TypeLongText
	TypeNumber
	TypeDecimal
	TypeBool
	TypeDate
	TypeDateTime
	TypeChoice
	TypeRelation
	TypeFile
)

// String returns the schema-visible type name.
func (ft FieldType) String() string {
	switch ft {
	case TypeText:
		return "text"
	case TypeLongText:
		return "longtext"
	case TypeNumber:
		return "number"
	case TypeDecimal:
		return "decimal"
	case TypeBool:
		return "bool"
	case TypeDate:
		return "date"
	case TypeDateTime:
		return "datetime"
	case TypeChoice:
		return "choice"
	case TypeRelation:
		return "relation"
	case TypeFile:
		return "file"
	default:
		return "unknown"
	}
}

// Choice is one selectable option on a choice field.
type Choice struct {
	Value string
	Label string
}

// FieldDescriptor describes a single field on a resource, independent of
// storage representation. Descriptors are built once and never mutated.
type FieldDescriptor struct {
	Name     string    // snake_case field name, e.g. "active_client"
	Type     FieldType // semantic type for widget selection
	Label    string    // human-readable label; derived from Name when empty
	Required bool      // whether submissions must include a value
	ReadOnly bool      // whether forms render the field as read-only
	Unique   bool      // whether the store enforces uniqueness
	HelpText string    // optional inline help
	Choices  []Choice  // non-nil for TypeChoice
	Relation string    // target resource name for TypeRelation
	Default  string    // default value as entered, "" if none
}

// Resource holds the complete metadata for one data model.
type Resource struct {
	Name              string // snake_case singular, e.g. "contact"
	DisplayName       string
	DisplayNamePlural string

	fields []FieldDescriptor
	byName map[string]int
}

// NewResource builds a Resource from an ordered field list. Field labels
// default to a title-cased form of the field name. Duplicate field names
// are a setup error.
func NewResource(name string, fields []FieldDescriptor) (*Resource, error) {
	if name == "" {
		return nil, fmt.Errorf("resource name is required")
	}
	r := &Resource{
		Name:              name,
		DisplayName:       Label(name),
		DisplayNamePlural: Label(name) + "s",
		byName:            make(map[string]int, len(fields)),
	}
	for _, f := range fields {
		if f.Name == "" {
			return nil, fmt.Errorf("resource %q: field with empty name", name)
		}
		if _, dup := r.byName[f.Name]; dup {
			return nil, fmt.Errorf("resource %q: duplicate field %q", name, f.Name)
		}
		if f.Label == "" {
			f.Label = Label(f.Name)
		}
		r.byName[f.Name] = len(r.fields)
		r.fields = append(r.fields, f)
	}
	return r, nil
}

// Fields returns the descriptors in declaration order.
func (r *Resource) Fields() []FieldDescriptor {
	return r.fields
}

// Field returns the descriptor for a named field.
func (r *Resource) Field(name string) (FieldDescriptor, bool) {
	i, ok := r.byName[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return r.fields[i], true
}

// Has reports whether the resource declares a field with the given name.
func (r *Resource) Has(name string) bool {
	_, ok := r.byName[name]
	return ok
}

// FieldNames returns all field names in declaration order.
func (r *Resource) FieldNames() []string {
	names := make([]string, len(r.fields))
	for i, f := range r.fields {
		names[i] = f.Name
	}
	return names
}

// Registry holds resource metadata. It is populated at startup and is safe
// for concurrent read access afterwards; no registration may happen once
// requests are being served.
type Registry struct {
	resources map[string]*Resource
	order     []string
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{resources: make(map[string]*Resource)}
}

// Register adds a resource to the registry. Registering the same name twice
// is a setup error.
func (reg *Registry) Register(r *Resource) error {
	if _, dup := reg.resources[r.Name]; dup {
		return fmt.Errorf("resource %q already registered", r.Name)
	}
	reg.resources[r.Name] = r
	reg.order = append(reg.order, r.Name)
	return nil
}

// Resource returns the named resource, or nil if not registered.
func (reg *Registry) Resource(name string) *Resource {
	return reg.resources[name]
}

// Names returns registered resource names in registration order.
func (reg *Registry) Names() []string {
	return reg.order
}

// abbreviations that stay upper-case in generated labels.
var abbreviations = map[string]string{
	"id": "ID", "url": "URL", "uuid": "UUID", "ip": "IP", "api": "API",
}

// Label converts a snake_case name to a human-readable label,
// e.g. "active_client" -> "Active Client", "api_url" -> "API URL".
func Label(name string) string {
	if name == "" {
		return ""
	}
	parts := strings.Split(name, "_")
	for i, p := range parts {
		if p == "" {
			continue
		}
		if abbr, ok := abbreviations[strings.ToLower(p)]; ok {
			parts[i] = abbr
			continue
		}
		parts[i] = strings.ToUpper(p[:1]) + p[1:]
	}
	return strings.Join(parts, " ")
}
