// Package crud wires a schema resource, its view configuration, and a
// record store into a complete set of HTTP handlers: list with search
// and pagination, create, detail, edit, and delete confirmation.
package crud

import (
	"fmt"

	"github.com/matthewbaird/cruder/internal/eventbus"
	"github.com/matthewbaird/cruder/internal/render"
	"github.com/matthewbaird/cruder/internal/schema"
	"github.com/matthewbaird/cruder/internal/store"
	"github.com/matthewbaird/cruder/internal/view"
)

// Resource bundles everything needed to serve CRUD pages for one
// schema resource.
type Resource struct {
	Schema    *schema.Resource
	Config    view.Config
	Store     store.Store
	Framework render.Framework
	Bus       *eventbus.Bus // optional; nil disables event publishing
}

// NewResource validates the configuration against the schema and
// resolves the CSS framework. Misconfiguration fails here, at startup,
// rather than on the first request.
func NewResource(res *schema.Resource, cfg view.Config, st store.Store, bus *eventbus.Bus) (*Resource, error) {
	cfg = cfg.Normalize()
	if err := cfg.Validate(res); err != nil {
		return nil, err
	}
	fw, err := render.Lookup(cfg.Framework)
	if err != nil {
		return nil, fmt.Errorf("resource %s: %w", res.Name, err)
	}
	return &Resource{
		Schema:    res,
		Config:    cfg,
		Store:     st,
		Framework: fw,
		Bus:       bus,
	}, nil
}
