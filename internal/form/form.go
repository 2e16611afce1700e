// Package form converts field descriptors and view configuration into the
// editable field set for create and edit actions, and validates submitted
// values. Validation failures are data — an Errors map rendered inline —
// never faults.
package form

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/matthewbaird/cruder/internal/schema"
	"github.com/matthewbaird/cruder/internal/store"
	"github.com/matthewbaird/cruder/internal/view"
)

// Field is one renderable form field: the descriptor plus its current
// value, effective read-only flag, and any validation errors.
type Field struct {
	schema.FieldDescriptor
	Value    string
	ReadOnly bool
	Errors   []string
}

// Form is the editable field set for one create or edit request.
type Form struct {
	Resource *schema.Resource
	Fields   []Field

	byName map[string]int
}

// Errors collects per-field validation messages. The empty key holds
// form-level messages not attributable to a single field.
type Errors map[string][]string

// Add appends a message for a field ("" for form-level).
func (e Errors) Add(field, msg string) {
	e[field] = append(e[field], msg)
}

// Any reports whether any message was recorded.
func (e Errors) Any() bool { return len(e) > 0 }

// Build produces the form for a resource under the given configuration.
// Excluded fields are dropped, configured fields become read-only, and the
// rest stay editable. When rec is non-nil its values pre-populate the
// fields (edit); otherwise declared defaults apply (create).
func Build(res *schema.Resource, cfg view.Config, rec *store.Record) *Form {
	f := &Form{Resource: res, byName: make(map[string]int)}
	for _, fd := range res.Fields() {
		if cfg.IsExcluded(fd.Name) {
			continue
		}
		field := Field{
			FieldDescriptor: fd,
			ReadOnly:        cfg.IsReadOnly(fd),
			Value:           fd.Default,
		}
		if rec != nil {
			field.Value = EditValue(fd, rec.Values[fd.Name])
		}
		f.byName[fd.Name] = len(f.Fields)
		f.Fields = append(f.Fields, field)
	}
	return f
}

// Field returns the named form field, or nil.
func (f *Form) Field(name string) *Field {
	i, ok := f.byName[name]
	if !ok {
		return nil
	}
	return &f.Fields[i]
}

// Bind validates submitted values against the editable field set and
// returns the coerced record values. Unknown field names are rejected,
// required fields enforced, and values coerced per semantic type. Submitted
// values for read-only fields are ignored, matching the rendered form. An
// optional field submitted blank binds to an explicit nil so the caller
// clears the stored value; only fields missing from the submission entirely
// are left out. The returned Errors is empty on success.
func (f *Form) Bind(values url.Values) (map[string]any, Errors) {
	errs := make(Errors)

	for name := range values {
		if _, known := f.byName[name]; !known {
			errs.Add("", fmt.Sprintf("unknown field %q", name))
		}
	}

	out := make(map[string]any)
	for i := range f.Fields {
		field := &f.Fields[i]
		if field.ReadOnly {
			continue
		}
		raw := strings.TrimSpace(values.Get(field.Name))
		field.Value = raw

		if raw == "" {
			if field.Default != "" {
				raw = field.Default
				field.Value = raw
			} else if field.Required {
				errs.Add(field.Name, "This field is required.")
				continue
			} else {
				// A blank submission clears the field; a field absent
				// from the form data keeps its stored value.
				if values.Has(field.Name) {
					out[field.Name] = nil
				}
				continue
			}
		}

		v, err := coerce(field.FieldDescriptor, raw)
		if err != nil {
			errs.Add(field.Name, err.Error())
			continue
		}
		out[field.Name] = v
	}

	if errs.Any() {
		f.ApplyErrors(errs)
		return nil, errs
	}
	return out, errs
}

// ApplyErrors attaches messages to their fields for re-rendering.
func (f *Form) ApplyErrors(errs Errors) {
	for name, msgs := range errs {
		if fld := f.Field(name); fld != nil {
			fld.Errors = append(fld.Errors, msgs...)
		}
	}
}

// FormLevel returns the messages not attributable to a single field.
func (f *Form) FormLevel(errs Errors) []string {
	return errs[""]
}

// FromStoreError converts a persistence failure into validation errors
// where possible. Column-attributable constraint violations become
// field-level messages; anything else is reported as unconvertible.
func FromStoreError(err error) (Errors, bool) {
	ce, ok := err.(*store.ConstraintError)
	if !ok {
		return nil, false
	}
	errs := make(Errors)
	if ce.Column != "" {
		errs.Add(ce.Column, "A record with this value already exists.")
	} else {
		errs.Add("", "The record conflicts with existing data.")
	}
	return errs, true
}

// coerce converts a non-empty submitted string to the field's value type.
func coerce(fd schema.FieldDescriptor, raw string) (any, error) {
	switch fd.Type {
	case schema.TypeNumber:
		n, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("Enter a whole number.")
		}
		return n, nil
	case schema.TypeDecimal:
		x, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			return nil, fmt.Errorf("Enter a number.")
		}
		return x, nil
	case schema.TypeBool:
		switch strings.ToLower(raw) {
		case "true", "1", "yes", "on":
			return true, nil
		case "false", "0", "no", "off":
			return false, nil
		}
		return nil, fmt.Errorf("Select yes or no.")
	case schema.TypeChoice:
		for _, c := range fd.Choices {
			if c.Value == raw {
				return raw, nil
			}
		}
		return nil, fmt.Errorf("Select a valid choice.")
	case schema.TypeDate:
		if _, err := parseDate(raw); err != nil {
			return nil, fmt.Errorf("Enter a valid date (YYYY-MM-DD).")
		}
		return raw, nil
	case schema.TypeDateTime:
		normalized, err := parseDateTime(raw)
		if err != nil {
			return nil, fmt.Errorf("Enter a valid date and time.")
		}
		return normalized, nil
	default:
		return raw, nil
	}
}

// EditValue renders a stored value the way the form input expects it.
func EditValue(fd schema.FieldDescriptor, v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case bool:
		if t {
			return "true"
		}
		return "false"
	case string:
		return t
	default:
		return fmt.Sprint(t)
	}
}
