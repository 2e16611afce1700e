package crud

import (
	"context"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/matthewbaird/cruder/internal/event"
	"github.com/matthewbaird/cruder/internal/eventbus"
	"github.com/matthewbaird/cruder/internal/permission"
	"github.com/matthewbaird/cruder/internal/schema"
	"github.com/matthewbaird/cruder/internal/store"
	"github.com/matthewbaird/cruder/internal/view"
)

func contactResource(t *testing.T) *schema.Resource {
	t.Helper()
	res, err := schema.NewResource("contact", []schema.FieldDescriptor{
		{Name: "full_name", Type: schema.TypeText, Required: true},
		{Name: "email", Type: schema.TypeText, Required: true, Unique: true},
		{Name: "age", Type: schema.TypeNumber},
		{Name: "active", Type: schema.TypeBool},
	})
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	return res
}

type env struct {
	router chi.Router
	store  *store.MemoryStore
}

func newEnv(t *testing.T, cfg view.Config, bus *eventbus.Bus) *env {
	t.Helper()
	res := contactResource(t)
	st := store.NewMemoryStore(res)
	cr, err := NewResource(res, cfg, st, bus)
	if err != nil {
		t.Fatalf("NewResource: %v", err)
	}
	r := chi.NewRouter()
	NewHandler(cr, "/contacts").Mount(r)
	return &env{router: r, store: st}
}

func (e *env) do(t *testing.T, method, path string, form url.Values, roles string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if form != nil {
		req = httptest.NewRequest(method, path, strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	if roles != "" {
		req.Header.Set("X-Roles", roles)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *env) seed(t *testing.T, values map[string]any) store.Record {
	t.Helper()
	rec := store.NewRecord(values)
	if err := e.store.Insert(context.Background(), rec); err != nil {
		t.Fatalf("seed: %v", err)
	}
	return rec
}

func TestListPage(t *testing.T) {
	e := newEnv(t, view.Config{SearchFields: []string{"full_name"}}, nil)
	e.seed(t, map[string]any{"full_name": "Ada Lovelace", "email": "ada@example.com"})
	e.seed(t, map[string]any{"full_name": "Alan Turing", "email": "alan@example.com"})

	w := e.do(t, http.MethodGet, "/contacts/", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	body := w.Body.String()
	if !strings.Contains(body, "Ada Lovelace") || !strings.Contains(body, "Alan Turing") {
		t.Error("records missing from list")
	}
	if !strings.Contains(body, "Showing 1-2 of 2 items") {
		t.Error("result summary missing")
	}
	if !strings.Contains(body, `name="q"`) {
		t.Error("search box missing")
	}
}

func TestListSearchFiltering(t *testing.T) {
	e := newEnv(t, view.Config{SearchFields: []string{"full_name"}}, nil)
	e.seed(t, map[string]any{"full_name": "Ada Lovelace", "email": "ada@example.com"})
	e.seed(t, map[string]any{"full_name": "Alan Turing", "email": "alan@example.com"})

	w := e.do(t, http.MethodGet, "/contacts/?q=lovelace", nil, "")
	body := w.Body.String()
	if !strings.Contains(body, "Ada Lovelace") {
		t.Error("matching record missing")
	}
	if strings.Contains(body, "Alan Turing") {
		t.Error("non-matching record present")
	}
	if !strings.Contains(body, "Showing 1-1 of 1 items") {
		t.Errorf("filtered summary wrong")
	}
}

func TestCreateRoundTrip(t *testing.T) {
	e := newEnv(t, view.Config{}, nil)

	w := e.do(t, http.MethodGet, "/contacts/create", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("create form status = %d", w.Code)
	}

	w = e.do(t, http.MethodPost, "/contacts/create", url.Values{
		"full_name": {"Grace Hopper"},
		"email":     {"grace@example.com"},
		"age":       {"85"},
		"active":    {"true"},
	}, "")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d, want 303: %s", w.Code, w.Body.String())
	}

	loc := w.Header().Get("Location")
	id, err := uuid.Parse(strings.TrimPrefix(loc, "/contacts/"))
	if err != nil {
		t.Fatalf("redirect location %q is not a record URL", loc)
	}

	rec, err := e.store.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("stored record: %v", err)
	}
	if rec.Values["full_name"] != "Grace Hopper" {
		t.Errorf("full_name = %v", rec.Values["full_name"])
	}
	if rec.Values["age"] != int64(85) {
		t.Errorf("age = %v (%T), want int64(85)", rec.Values["age"], rec.Values["age"])
	}
	if rec.Values["active"] != true {
		t.Errorf("active = %v", rec.Values["active"])
	}

	// The detail page shows what was stored.
	w = e.do(t, http.MethodGet, loc, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("detail status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Grace Hopper") {
		t.Error("detail missing stored value")
	}
}

func TestCreateValidationErrors(t *testing.T) {
	e := newEnv(t, view.Config{}, nil)

	w := e.do(t, http.MethodPost, "/contacts/create", url.Values{
		"email": {"grace@example.com"},
	}, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if n := strings.Count(w.Body.String(), "This field is required."); n != 1 {
		t.Errorf("required error rendered %d times, want exactly once", n)
	}
	if got, _ := e.store.List(context.Background()); len(got) != 0 {
		t.Error("invalid submission should not insert")
	}
}

func TestCreateDuplicate(t *testing.T) {
	e := newEnv(t, view.Config{}, nil)
	e.seed(t, map[string]any{"full_name": "Ada", "email": "ada@example.com"})

	w := e.do(t, http.MethodPost, "/contacts/create", url.Values{
		"full_name": {"Other Ada"},
		"email":     {"ada@example.com"},
	}, "")
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422", w.Code)
	}
	if !strings.Contains(w.Body.String(), "A record with this value already exists.") {
		t.Error("uniqueness error missing")
	}
}

func TestEditPreservesUnboundFields(t *testing.T) {
	e := newEnv(t, view.Config{ReadOnlyFields: []string{"email"}}, nil)
	rec := e.seed(t, map[string]any{"full_name": "Ada", "email": "ada@example.com", "age": int64(36)})

	w := e.do(t, http.MethodPost, "/contacts/"+rec.ID.String()+"/edit", url.Values{
		"full_name": {"Ada Lovelace"},
		"age":       {"37"},
	}, "")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303: %s", w.Code, w.Body.String())
	}

	got, err := e.store.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Values["full_name"] != "Ada Lovelace" {
		t.Errorf("full_name = %v", got.Values["full_name"])
	}
	if got.Values["email"] != "ada@example.com" {
		t.Error("read-only field should keep its stored value")
	}
	if got.Values["age"] != int64(37) {
		t.Errorf("age = %v", got.Values["age"])
	}
}

func TestEditClearsBlankOptionalField(t *testing.T) {
	e := newEnv(t, view.Config{}, nil)
	rec := e.seed(t, map[string]any{
		"full_name": "Ada",
		"email":     "ada@example.com",
		"age":       int64(36),
		"active":    true,
	})

	// Submitting age blank empties the stored value; leaving active out
	// of the submission entirely keeps it.
	w := e.do(t, http.MethodPost, "/contacts/"+rec.ID.String()+"/edit", url.Values{
		"full_name": {"Ada"},
		"email":     {"ada@example.com"},
		"age":       {""},
	}, "")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("status = %d, want 303: %s", w.Code, w.Body.String())
	}

	got, err := e.store.Get(context.Background(), rec.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if v, ok := got.Values["age"]; ok && v != nil {
		t.Errorf("age = %v after clearing, want empty", v)
	}
	if got.Values["active"] != true {
		t.Error("field absent from the submission should keep its stored value")
	}
}

func TestDeleteFlow(t *testing.T) {
	e := newEnv(t, view.Config{}, nil)
	rec := e.seed(t, map[string]any{"full_name": "Ada", "email": "ada@example.com"})

	w := e.do(t, http.MethodGet, "/contacts/"+rec.ID.String()+"/delete", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("confirmation status = %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "Confirm Delete") {
		t.Error("confirmation button missing")
	}

	w = e.do(t, http.MethodPost, "/contacts/"+rec.ID.String()+"/delete", url.Values{}, "")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("delete status = %d", w.Code)
	}
	if _, err := e.store.Get(context.Background(), rec.ID); err == nil {
		t.Error("record still present after delete")
	}
}

func TestNotFound(t *testing.T) {
	e := newEnv(t, view.Config{}, nil)

	for _, path := range []string{
		"/contacts/" + uuid.NewString(),
		"/contacts/" + uuid.NewString() + "/edit",
		"/contacts/not-a-uuid",
	} {
		w := e.do(t, http.MethodGet, path, nil, "")
		if w.Code != http.StatusNotFound {
			t.Errorf("GET %s = %d, want 404", path, w.Code)
		}
	}
}

func TestPermissionGates(t *testing.T) {
	cfg := view.Config{
		Permissions: map[permission.Action][]string{
			permission.ActionCreate: {"admin"},
			permission.ActionDelete: {"admin"},
		},
	}
	e := newEnv(t, cfg, nil)
	rec := e.seed(t, map[string]any{"full_name": "Ada", "email": "ada@example.com"})

	// Anonymous caller can read but not create.
	if w := e.do(t, http.MethodGet, "/contacts/", nil, ""); w.Code != http.StatusOK {
		t.Errorf("anonymous list = %d, want 200", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/contacts/create", nil, ""); w.Code != http.StatusForbidden {
		t.Errorf("anonymous create form = %d, want 403", w.Code)
	}
	if w := e.do(t, http.MethodPost, "/contacts/"+rec.ID.String()+"/delete", url.Values{}, "editor"); w.Code != http.StatusForbidden {
		t.Errorf("editor delete = %d, want 403", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/contacts/create", nil, "editor, admin"); w.Code != http.StatusOK {
		t.Errorf("admin create form = %d, want 200", w.Code)
	}
}

func TestReadonlyMode(t *testing.T) {
	e := newEnv(t, view.Config{ReadonlyMode: true}, nil)
	rec := e.seed(t, map[string]any{"full_name": "Ada", "email": "ada@example.com"})

	if w := e.do(t, http.MethodGet, "/contacts/", nil, "admin"); w.Code != http.StatusOK {
		t.Errorf("list = %d, want 200", w.Code)
	}
	if w := e.do(t, http.MethodGet, "/contacts/"+rec.ID.String(), nil, "admin"); w.Code != http.StatusOK {
		t.Errorf("detail = %d, want 200", w.Code)
	}
	for _, tc := range []struct{ method, path string }{
		{http.MethodGet, "/contacts/create"},
		{http.MethodPost, "/contacts/create"},
		{http.MethodGet, "/contacts/" + rec.ID.String() + "/edit"},
		{http.MethodPost, "/contacts/" + rec.ID.String() + "/delete"},
	} {
		w := e.do(t, tc.method, tc.path, url.Values{}, "admin")
		if w.Code != http.StatusForbidden {
			t.Errorf("%s %s = %d, want 403 in readonly mode", tc.method, tc.path, w.Code)
		}
	}
	// List view hides the mutation buttons.
	body := e.do(t, http.MethodGet, "/contacts/", nil, "admin").Body.String()
	if strings.Contains(body, "Add New") || strings.Contains(body, ">Edit<") {
		t.Error("mutation buttons rendered in readonly mode")
	}
}

func TestMutationsPublishEvents(t *testing.T) {
	bus := eventbus.New(8)
	received := make(chan event.DomainEvent, 8)
	bus.Subscribe("test", eventbus.HandlerFunc(func(_ context.Context, evt event.DomainEvent) error {
		received <- evt
		return nil
	}))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	bus.Start(ctx)

	e := newEnv(t, view.Config{}, bus)
	w := e.do(t, http.MethodPost, "/contacts/create", url.Values{
		"full_name": {"Ada"},
		"email":     {"ada@example.com"},
	}, "admin")
	if w.Code != http.StatusSeeOther {
		t.Fatalf("create status = %d", w.Code)
	}

	select {
	case evt := <-received:
		if evt.EventType != "contact_created" {
			t.Errorf("EventType = %q", evt.EventType)
		}
		if evt.Action != "create" {
			t.Errorf("Action = %q", evt.Action)
		}
		if len(evt.Actor) != 1 || evt.Actor[0] != "admin" {
			t.Errorf("Actor = %v", evt.Actor)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("no event received after create")
	}
}

func TestPagination(t *testing.T) {
	e := newEnv(t, view.Config{PerPage: 2}, nil)
	for _, n := range []string{"a", "b", "c"} {
		e.seed(t, map[string]any{"full_name": n, "email": n + "@example.com"})
	}

	w := e.do(t, http.MethodGet, "/contacts/?page=2", nil, "")
	body := w.Body.String()
	if !strings.Contains(body, "Showing 3-3 of 3 items") {
		t.Error("second page summary wrong")
	}
	if !strings.Contains(body, `href="?page=1"`) {
		t.Error("previous page link missing")
	}
}

func TestConfigValidationFailsFast(t *testing.T) {
	res := contactResource(t)
	st := store.NewMemoryStore(res)
	_, err := NewResource(res, view.Config{ListFields: []string{"nope"}}, st, nil)
	if err == nil {
		t.Fatal("unknown list field should fail at construction")
	}

	_, err = NewResource(res, view.Config{Framework: "tailwind"}, st, nil)
	if err == nil {
		t.Fatal("unknown framework should fail at construction")
	}
}

func TestRolesHeaderParsing(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Roles", " admin, editor ,,viewer")
	got := parseRoles(req)
	want := []string{"admin", "editor", "viewer"}
	if len(got) != len(want) {
		t.Fatalf("parseRoles = %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("parseRoles[%d] = %q, want %q", i, got[i], want[i])
		}
	}
	if parseRoles(httptest.NewRequest(http.MethodGet, "/", nil)) != nil {
		t.Error("missing header should yield no roles")
	}
}
