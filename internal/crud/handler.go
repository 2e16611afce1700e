package crud

import (
	"context"
	"errors"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matthewbaird/cruder/internal/event"
	"github.com/matthewbaird/cruder/internal/form"
	"github.com/matthewbaird/cruder/internal/listing"
	"github.com/matthewbaird/cruder/internal/permission"
	"github.com/matthewbaird/cruder/internal/render"
	"github.com/matthewbaird/cruder/internal/store"
)

// rolesHeader carries the caller's roles as a comma-separated list.
// An absent header means an anonymous caller with no roles.
const rolesHeader = "X-Roles"

// Handler serves the CRUD pages for a single resource under a URL
// prefix, e.g. /contacts.
type Handler struct {
	res      *Resource
	basePath string
}

// NewHandler creates a Handler serving res under basePath. The base
// path must not end with a slash.
func NewHandler(res *Resource, basePath string) *Handler {
	return &Handler{res: res, basePath: strings.TrimRight(basePath, "/")}
}

// Mount registers the canonical routes on r:
//
//	GET  {base}/              list
//	GET  {base}/create        create form
//	POST {base}/create        create submission
//	GET  {base}/{id}          detail
//	GET  {base}/{id}/edit     edit form
//	POST {base}/{id}/edit     edit submission
//	GET  {base}/{id}/delete   delete confirmation
//	POST {base}/{id}/delete   delete submission
func (h *Handler) Mount(r chi.Router) {
	r.Route(h.basePath, func(r chi.Router) {
		r.Get("/", h.List)
		r.Get("/create", h.CreateForm)
		r.Post("/create", h.Create)
		r.Get("/{id}", h.Detail)
		r.Get("/{id}/edit", h.EditForm)
		r.Post("/{id}/edit", h.Edit)
		r.Get("/{id}/delete", h.DeleteConfirm)
		r.Post("/{id}/delete", h.Delete)
	})
}

func parseRoles(r *http.Request) []string {
	raw := r.Header.Get(rolesHeader)
	if raw == "" {
		return nil
	}
	var roles []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			roles = append(roles, part)
		}
	}
	return roles
}

// authorize checks the action against the resource policy. On denial it
// writes the 403 page and returns false.
func (h *Handler) authorize(w http.ResponseWriter, r *http.Request, action permission.Action) ([]string, bool) {
	roles := parseRoles(r)
	if err := h.res.Config.Policy().Authorize(action, roles); err != nil {
		var denied *permission.DeniedError
		if errors.As(err, &denied) {
			h.statusPage(w, http.StatusForbidden, "Permission Denied", denied.Reason)
			return nil, false
		}
		h.statusPage(w, http.StatusForbidden, "Permission Denied", err.Error())
		return nil, false
	}
	return roles, true
}

// List serves the paginated, searchable record table.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	roles, ok := h.authorize(w, r, permission.ActionRead)
	if !ok {
		return
	}

	query := strings.TrimSpace(r.URL.Query().Get("q"))
	pageNum, _ := strconv.Atoi(r.URL.Query().Get("page"))

	page, err := h.loadPage(r.Context(), query, pageNum)
	if err != nil {
		h.serverError(w, "list", err)
		return
	}

	allowed := h.res.Config.Policy().Allowed(roles)
	body, err := render.ListHTML(h.res.Framework, h.res.Schema, h.res.Config, page, h.basePath, allowed)
	if err != nil {
		h.serverError(w, "list", err)
		return
	}
	h.page(w, http.StatusOK, h.res.Schema.DisplayNamePlural, body)
}

// loadPage fetches, filters, and paginates records. When the store can
// search natively the query is pushed down; otherwise records are
// filtered in memory.
func (h *Handler) loadPage(ctx context.Context, query string, pageNum int) (listing.Page, error) {
	cfg := h.res.Config

	if query != "" && len(cfg.SearchFields) > 0 {
		if s, ok := h.res.Store.(store.Searcher); ok {
			recs, err := s.Search(ctx, cfg.SearchFields, query)
			if err != nil {
				return listing.Page{}, err
			}
			page := listing.Paginate(recs, cfg.PerPage, pageNum)
			page.Query = query
			return page, nil
		}
	}

	recs, err := h.res.Store.List(ctx)
	if err != nil {
		return listing.Page{}, err
	}
	return listing.List(recs, listing.Options{
		SearchFields: cfg.SearchFields,
		Query:        query,
		PerPage:      cfg.PerPage,
		Page:         pageNum,
	}), nil
}

// CreateForm serves the empty create form.
func (h *Handler) CreateForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, permission.ActionCreate); !ok {
		return
	}
	f := form.Build(h.res.Schema, h.res.Config, nil)
	h.renderForm(w, http.StatusOK, f, h.basePath+"/create", "Create "+h.res.Schema.DisplayName, nil)
}

// Create validates the submission and inserts a new record.
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	roles, ok := h.authorize(w, r, permission.ActionCreate)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.statusPage(w, http.StatusBadRequest, "Bad Request", "The submitted form could not be read.")
		return
	}

	f := form.Build(h.res.Schema, h.res.Config, nil)
	values, errs := f.Bind(r.PostForm)
	if errs.Any() {
		// Bind already attached the messages to their fields.
		h.renderForm(w, http.StatusUnprocessableEntity, f, h.basePath+"/create", "Create "+h.res.Schema.DisplayName, f.FormLevel(errs))
		return
	}

	rec := store.NewRecord(values)
	if err := h.res.Store.Insert(r.Context(), rec); err != nil {
		if errs, ok := form.FromStoreError(err); ok {
			f.ApplyErrors(errs)
			h.renderForm(w, http.StatusUnprocessableEntity, f, h.basePath+"/create", "Create "+h.res.Schema.DisplayName, f.FormLevel(errs))
			return
		}
		h.serverError(w, "create", err)
		return
	}

	h.publish(r.Context(), event.NewRecordCreated(h.res.Schema.Name, rec.ID, roles, values))
	http.Redirect(w, r, fmt.Sprintf("%s/%s", h.basePath, rec.ID), http.StatusSeeOther)
}

// Detail serves the read-only record view.
func (h *Handler) Detail(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, permission.ActionRead); !ok {
		return
	}
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}

	body, err := render.DetailHTML(h.res.Framework, h.res.Schema, h.res.Config, rec, h.basePath, "")
	if err != nil {
		h.serverError(w, "detail", err)
		return
	}
	h.page(w, http.StatusOK, h.res.Schema.DisplayName, body)
}

// EditForm serves the edit form populated from the stored record.
func (h *Handler) EditForm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, permission.ActionUpdate); !ok {
		return
	}
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}

	f := form.Build(h.res.Schema, h.res.Config, &rec)
	h.renderForm(w, http.StatusOK, f, h.editPath(rec.ID), "Edit "+h.res.Schema.DisplayName, nil)
}

// Edit validates the submission and updates the record.
func (h *Handler) Edit(w http.ResponseWriter, r *http.Request) {
	roles, ok := h.authorize(w, r, permission.ActionUpdate)
	if !ok {
		return
	}
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}
	if err := r.ParseForm(); err != nil {
		h.statusPage(w, http.StatusBadRequest, "Bad Request", "The submitted form could not be read.")
		return
	}

	f := form.Build(h.res.Schema, h.res.Config, &rec)
	values, errs := f.Bind(r.PostForm)
	if errs.Any() {
		h.renderForm(w, http.StatusUnprocessableEntity, f, h.editPath(rec.ID), "Edit "+h.res.Schema.DisplayName, f.FormLevel(errs))
		return
	}

	// Read-only fields and fields absent from the submission keep their
	// stored values; a blank optional field binds to nil and clears.
	for k, v := range values {
		rec.Values[k] = v
	}
	if err := h.res.Store.Update(r.Context(), rec); err != nil {
		if errs, ok := form.FromStoreError(err); ok {
			f.ApplyErrors(errs)
			h.renderForm(w, http.StatusUnprocessableEntity, f, h.editPath(rec.ID), "Edit "+h.res.Schema.DisplayName, f.FormLevel(errs))
			return
		}
		h.serverError(w, "edit", err)
		return
	}

	h.publish(r.Context(), event.NewRecordUpdated(h.res.Schema.Name, rec.ID, roles, values))
	http.Redirect(w, r, fmt.Sprintf("%s/%s", h.basePath, rec.ID), http.StatusSeeOther)
}

// DeleteConfirm serves the delete confirmation page.
func (h *Handler) DeleteConfirm(w http.ResponseWriter, r *http.Request) {
	if _, ok := h.authorize(w, r, permission.ActionDelete); !ok {
		return
	}
	rec, ok := h.loadRecord(w, r)
	if !ok {
		return
	}

	confirm := fmt.Sprintf("%s/%s/delete", h.basePath, rec.ID)
	body, err := render.DetailHTML(h.res.Framework, h.res.Schema, h.res.Config, rec, h.basePath, confirm)
	if err != nil {
		h.serverError(w, "delete", err)
		return
	}
	h.page(w, http.StatusOK, "Delete "+h.res.Schema.DisplayName, body)
}

// Delete removes the record after confirmation.
func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	roles, ok := h.authorize(w, r, permission.ActionDelete)
	if !ok {
		return
	}
	id, ok := h.parseID(w, r)
	if !ok {
		return
	}

	if err := h.res.Store.Delete(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.notFound(w)
			return
		}
		h.serverError(w, "delete", err)
		return
	}

	h.publish(r.Context(), event.NewRecordDeleted(h.res.Schema.Name, id, roles))
	http.Redirect(w, r, h.basePath+"/", http.StatusSeeOther)
}

func (h *Handler) editPath(id uuid.UUID) string {
	return fmt.Sprintf("%s/%s/edit", h.basePath, id)
}

func (h *Handler) parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		h.notFound(w)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) loadRecord(w http.ResponseWriter, r *http.Request) (store.Record, bool) {
	id, ok := h.parseID(w, r)
	if !ok {
		return store.Record{}, false
	}
	rec, err := h.res.Store.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.notFound(w)
		} else {
			h.serverError(w, "get", err)
		}
		return store.Record{}, false
	}
	return rec, true
}

func (h *Handler) publish(ctx context.Context, evt event.DomainEvent) {
	if h.res.Bus != nil {
		h.res.Bus.Publish(ctx, evt)
	}
}

func (h *Handler) renderForm(w http.ResponseWriter, status int, f *form.Form, action, title string, formErrors []string) {
	body, err := render.FormHTML(h.res.Framework, f, action, "Save", h.basePath+"/", formErrors)
	if err != nil {
		h.serverError(w, "form", err)
		return
	}
	h.page(w, status, title, body)
}

func (h *Handler) page(w http.ResponseWriter, status int, title string, body template.HTML) {
	doc, err := render.Document(h.res.Framework, title, body)
	if err != nil {
		h.serverError(w, "page", err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if _, err := w.Write([]byte(doc)); err != nil {
		log.Printf("crud: write response: %v", err)
	}
}

func (h *Handler) statusPage(w http.ResponseWriter, status int, heading, message string) {
	body, err := render.StatusHTML(h.res.Framework, heading, message, h.basePath+"/")
	if err != nil {
		http.Error(w, message, status)
		return
	}
	h.page(w, status, heading, body)
}

func (h *Handler) notFound(w http.ResponseWriter) {
	h.statusPage(w, http.StatusNotFound, "Not Found",
		fmt.Sprintf("The requested %s does not exist.", strings.ToLower(h.res.Schema.DisplayName)))
}

func (h *Handler) serverError(w http.ResponseWriter, op string, err error) {
	log.Printf("crud: %s %s: %v", h.res.Schema.Name, op, err)
	h.statusPage(w, http.StatusInternalServerError, "Server Error", "Something went wrong. Please try again.")
}
