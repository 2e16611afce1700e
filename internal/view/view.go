// Package view holds the per-resource CRUD configuration supplied by the
// caller. Configurations are validated against the resource schema before
// any request is served — invalid field references are a setup failure,
// not a runtime one.
package view

import (
	"fmt"

	"github.com/matthewbaird/cruder/internal/listing"
	"github.com/matthewbaird/cruder/internal/permission"
	"github.com/matthewbaird/cruder/internal/schema"
)

// DefaultFramework is used when the configuration names no CSS framework.
const DefaultFramework = "bootstrap"

// Config is the caller-supplied view configuration for one resource.
// The zero value is usable: every field shown, no search, defaults applied
// by Normalize.
type Config struct {
	// ExcludeFields are dropped from forms and from the default list view.
	ExcludeFields []string
	// ListFields selects and orders the list view columns. Empty means all
	// declared fields minus ExcludeFields, in declaration order.
	ListFields []string
	// ReadOnlyFields render as disabled inputs and reject submitted values.
	ReadOnlyFields []string
	// SearchFields enables free-text search OR-combined across them.
	SearchFields []string
	// PerPage is the pagination size; 0 means listing.DefaultPerPage.
	PerPage int
	// ReadonlyMode disables create, update and delete for every actor.
	ReadonlyMode bool
	// Permissions maps actions to the roles allowed to perform them.
	Permissions map[permission.Action][]string
	// Framework names the registered CSS framework; "" means bootstrap.
	Framework string
}

// ConfigurationError reports an invalid view configuration. It is fatal at
// setup time.
type ConfigurationError struct {
	Resource string
	Reason   string
}

func (e *ConfigurationError) Error() string {
	return fmt.Sprintf("invalid configuration for %q: %s", e.Resource, e.Reason)
}

// Normalize fills unset options with their defaults.
func (c Config) Normalize() Config {
	if c.PerPage == 0 {
		c.PerPage = listing.DefaultPerPage
	}
	if c.Framework == "" {
		c.Framework = DefaultFramework
	}
	return c
}

// Validate checks every field reference against the resource schema.
func (c Config) Validate(res *schema.Resource) error {
	fail := func(format string, args ...any) error {
		return &ConfigurationError{Resource: res.Name, Reason: fmt.Sprintf(format, args...)}
	}

	for _, group := range []struct {
		name   string
		fields []string
	}{
		{"exclude_fields", c.ExcludeFields},
		{"list_fields", c.ListFields},
		{"readonly_fields", c.ReadOnlyFields},
		{"search_fields", c.SearchFields},
	} {
		for _, f := range group.fields {
			if !res.Has(f) {
				return fail("%s references unknown field %q", group.name, f)
			}
		}
	}

	for _, f := range c.ListFields {
		if c.IsExcluded(f) {
			return fail("list_fields includes excluded field %q", f)
		}
	}

	if c.PerPage < 0 {
		return fail("per_page must be positive, got %d", c.PerPage)
	}
	return nil
}

// IsExcluded reports whether the field is configured out of forms and lists.
func (c Config) IsExcluded(name string) bool {
	return containsName(c.ExcludeFields, name)
}

// IsReadOnly reports whether the field is configured or declared read-only.
func (c Config) IsReadOnly(fd schema.FieldDescriptor) bool {
	return fd.ReadOnly || containsName(c.ReadOnlyFields, fd.Name)
}

// ListFieldNames resolves the list view columns: the configured ListFields
// when present, otherwise every declared field minus exclusions. The result
// never contains an excluded field.
func (c Config) ListFieldNames(res *schema.Resource) []string {
	if len(c.ListFields) > 0 {
		return c.ListFields
	}
	var names []string
	for _, fd := range res.Fields() {
		if !c.IsExcluded(fd.Name) {
			names = append(names, fd.Name)
		}
	}
	return names
}

// Policy builds the permission policy for this configuration.
func (c Config) Policy() permission.Policy {
	return permission.Policy{
		ReadonlyMode: c.ReadonlyMode,
		Requirements: c.Permissions,
	}
}

func containsName(names []string, name string) bool {
	for _, n := range names {
		if n == name {
			return true
		}
	}
	return false
}
