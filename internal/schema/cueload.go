package schema

import (
	"fmt"
	"strings"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
)

// LoadDir loads every resource declared in the CUE package at dir.
// Each definition (#Contact, #Product, ...) becomes one Resource; its
// struct fields become field descriptors in declaration order.
//
// Field type mapping:
//
//	CUE field                      FieldType
//	string                         text
//	string @text()                 longtext
//	string named *_date            date
//	string named *_at              datetime
//	string @file()                 file
//	string @relation(target)       relation
//	int                            number
//	float / number                 decimal
//	bool                           bool
//	"a" | "b" (string disjunction) choice
//
// A "?" marker makes the field optional; a "*" default is recorded and
// clears required-ness. @label("..."), @help("..."), @readonly() and
// @unique() attributes override the derived metadata.
func LoadDir(dir string) ([]*Resource, error) {
	insts := load.Instances([]string{"."}, &load.Config{Dir: dir})
	if len(insts) == 0 {
		return nil, fmt.Errorf("no CUE instances found in %s", dir)
	}
	if insts[0].Err != nil {
		return nil, fmt.Errorf("loading schema CUE: %w", insts[0].Err)
	}
	ctx := cuecontext.New()
	val := ctx.BuildInstance(insts[0])
	if val.Err() != nil {
		return nil, fmt.Errorf("building schema CUE value: %w", val.Err())
	}
	return parseResources(val)
}

// LoadBytes parses resource declarations from a single CUE source.
func LoadBytes(src []byte) ([]*Resource, error) {
	ctx := cuecontext.New()
	val := ctx.CompileBytes(src)
	if val.Err() != nil {
		return nil, fmt.Errorf("compiling schema CUE: %w", val.Err())
	}
	return parseResources(val)
}

func parseResources(val cue.Value) ([]*Resource, error) {
	var resources []*Resource

	iter, err := val.Fields(cue.Definitions(true))
	if err != nil {
		return nil, fmt.Errorf("iterating schema definitions: %w", err)
	}
	for iter.Next() {
		label := iter.Selector().String()
		if !strings.HasPrefix(label, "#") {
			continue
		}
		name := toSnake(strings.TrimPrefix(label, "#"))

		fields, err := parseFields(iter.Value())
		if err != nil {
			return nil, fmt.Errorf("resource %q: %w", name, err)
		}
		res, err := NewResource(name, fields)
		if err != nil {
			return nil, err
		}
		resources = append(resources, res)
	}
	if len(resources) == 0 {
		return nil, fmt.Errorf("schema declares no resources")
	}
	return resources, nil
}

func parseFields(structVal cue.Value) ([]FieldDescriptor, error) {
	var fields []FieldDescriptor

	iter, err := structVal.Fields(cue.Optional(true))
	if err != nil {
		return nil, fmt.Errorf("iterating fields: %w", err)
	}
	for iter.Next() {
		label := strings.TrimSuffix(iter.Selector().String(), "?")
		if strings.HasPrefix(label, "_") {
			continue
		}
		fd, err := classifyField(label, iter.Value(), iter.IsOptional())
		if err != nil {
			return nil, err
		}
		fields = append(fields, fd)
	}
	return fields, nil
}

// classifyField maps one CUE field to a descriptor.
func classifyField(name string, v cue.Value, optional bool) (FieldDescriptor, error) {
	fd := FieldDescriptor{
		Name:     name,
		Required: !optional,
	}

	if a := v.Attribute("label"); a.Err() == nil {
		if s, err := a.String(0); err == nil {
			fd.Label = s
		}
	}
	if a := v.Attribute("help"); a.Err() == nil {
		if s, err := a.String(0); err == nil {
			fd.HelpText = s
		}
	}
	if a := v.Attribute("readonly"); a.Err() == nil {
		fd.ReadOnly = true
	}
	if a := v.Attribute("unique"); a.Err() == nil {
		fd.Unique = true
	}

	if d, ok := v.Default(); ok {
		fd.Default = formatDefault(d)
		fd.Required = false
	}

	// String-literal disjunctions are choice fields.
	if values := enumValues(v); len(values) > 0 {
		fd.Type = TypeChoice
		for _, ev := range values {
			fd.Choices = append(fd.Choices, Choice{Value: ev, Label: Label(ev)})
		}
		return fd, nil
	}

	kind := v.IncompleteKind()
	switch kind {
	case cue.StringKind:
		fd.Type = classifyString(name, v)
		if a := v.Attribute("relation"); a.Err() == nil {
			target, err := a.String(0)
			if err != nil || target == "" {
				return fd, fmt.Errorf("field %q: @relation requires a target resource", name)
			}
			fd.Type = TypeRelation
			fd.Relation = target
		}
	case cue.IntKind:
		fd.Type = TypeNumber
	case cue.FloatKind, cue.NumberKind:
		fd.Type = TypeDecimal
	case cue.BoolKind:
		fd.Type = TypeBool
	default:
		return fd, fmt.Errorf("field %q: unsupported kind %v", name, kind)
	}
	return fd, nil
}

// classifyString picks the string-backed semantic type. Date and datetime
// fields are carried as strings on the wire and identified by suffix.
func classifyString(name string, v cue.Value) FieldType {
	if a := v.Attribute("text"); a.Err() == nil {
		return TypeLongText
	}
	if a := v.Attribute("file"); a.Err() == nil {
		return TypeFile
	}
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, "_date") || lower == "date":
		return TypeDate
	case strings.HasSuffix(lower, "_at"):
		return TypeDateTime
	}
	return TypeText
}

// enumValues returns the members of a string-literal disjunction, or nil.
func enumValues(v cue.Value) []string {
	op, args := v.Expr()
	if op != cue.OrOp || len(args) < 2 {
		return nil
	}
	var values []string
	for _, arg := range args {
		if arg.IncompleteKind() != cue.StringKind {
			return nil
		}
		s, err := arg.String()
		if err != nil {
			// Bare "string" in the disjunction — not an enum.
			return nil
		}
		if !contains(values, s) {
			values = append(values, s)
		}
	}
	return values
}

func formatDefault(d cue.Value) string {
	switch d.Kind() {
	case cue.StringKind:
		if s, err := d.String(); err == nil {
			return s
		}
	case cue.BoolKind:
		if b, err := d.Bool(); err == nil {
			if b {
				return "true"
			}
			return "false"
		}
	case cue.IntKind:
		if n, err := d.Int64(); err == nil {
			return fmt.Sprintf("%d", n)
		}
	case cue.FloatKind, cue.NumberKind:
		if f, err := d.Float64(); err == nil {
			return fmt.Sprintf("%g", f)
		}
	}
	return ""
}

func toSnake(s string) string {
	var result []rune
	for i, r := range s {
		if i > 0 && r >= 'A' && r <= 'Z' {
			result = append(result, '_')
		}
		result = append(result, r)
	}
	return strings.ToLower(string(result))
}

func contains(slice []string, val string) bool {
	for _, s := range slice {
		if s == val {
			return true
		}
	}
	return false
}
