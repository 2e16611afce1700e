package listing

import (
	"fmt"
	"testing"

	"github.com/matthewbaird/cruder/internal/store"
)

func record(values map[string]any) store.Record {
	return store.NewRecord(values)
}

func numbered(n int) []store.Record {
	records := make([]store.Record, n)
	for i := range records {
		records[i] = record(map[string]any{"name": fmt.Sprintf("rec-%02d", i+1), "seq": int64(i + 1)})
	}
	return records
}

func TestSearch_CaseInsensitiveSubstring(t *testing.T) {
	records := []store.Record{
		record(map[string]any{"name": "Alice Jones", "email": "alice@example.com"}),
		record(map[string]any{"name": "Bob Smith", "email": "bob@example.com"}),
		record(map[string]any{"name": "Carol Jones", "email": "carol@other.org"}),
	}

	got := Search(records, []string{"name"}, "jones")
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}
	if got[0].Values["name"] != "Alice Jones" || got[1].Values["name"] != "Carol Jones" {
		t.Errorf("input order not preserved: %v, %v", got[0].Values["name"], got[1].Values["name"])
	}
}

func TestSearch_ORAcrossFields(t *testing.T) {
	records := []store.Record{
		record(map[string]any{"name": "Alice", "email": "a@example.com"}),
		record(map[string]any{"name": "Bob", "email": "alice-fan@example.com"}),
		record(map[string]any{"name": "Carol", "email": "c@example.com"}),
	}

	got := Search(records, []string{"name", "email"}, "alice")
	if len(got) != 2 {
		t.Fatalf("matches = %d, want 2", len(got))
	}
}

func TestSearch_MultiFieldMatchAppearsOnce(t *testing.T) {
	records := []store.Record{
		record(map[string]any{"name": "smith", "email": "smith@example.com"}),
	}
	got := Search(records, []string{"name", "email"}, "smith")
	if len(got) != 1 {
		t.Fatalf("matches = %d, want 1", len(got))
	}
}

func TestSearch_EmptyQueryReturnsAll(t *testing.T) {
	records := numbered(5)
	got := Search(records, []string{"name"}, "")
	if len(got) != 5 {
		t.Fatalf("matches = %d, want 5", len(got))
	}
}

func TestSearch_NonStringValues(t *testing.T) {
	records := []store.Record{
		record(map[string]any{"seq": int64(1234)}),
		record(map[string]any{"seq": int64(5678)}),
	}
	got := Search(records, []string{"seq"}, "123")
	if len(got) != 1 {
		t.Fatalf("matches = %d, want 1", len(got))
	}
}

func TestSearch_BoolsMatchStoredForm(t *testing.T) {
	records := []store.Record{
		record(map[string]any{"active": true}),
		record(map[string]any{"active": false}),
	}

	// Bools match their stored textual form, the same thing the SQL
	// pushdown compares against — not the list view's Yes/No labels.
	got := Search(records, []string{"active"}, "true")
	if len(got) != 1 {
		t.Fatalf("matches for %q = %d, want 1", "true", len(got))
	}
	if got := Search(records, []string{"active"}, "yes"); len(got) != 0 {
		t.Fatalf("matches for %q = %d, want 0", "yes", len(got))
	}
}

func TestPaginate_Basic(t *testing.T) {
	page := Paginate(numbered(25), 10, 3)
	if len(page.Items) != 5 {
		t.Fatalf("items = %d, want 5", len(page.Items))
	}
	if page.Items[0].Values["seq"] != int64(21) || page.Items[4].Values["seq"] != int64(25) {
		t.Errorf("page 3 = records %v..%v, want 21..25", page.Items[0].Values["seq"], page.Items[4].Values["seq"])
	}
	if page.TotalPages != 3 || page.TotalItems != 25 {
		t.Errorf("totals = %d pages / %d items, want 3 / 25", page.TotalPages, page.TotalItems)
	}
	if page.StartIndex() != 21 || page.EndIndex() != 25 {
		t.Errorf("indexes = %d..%d, want 21..25", page.StartIndex(), page.EndIndex())
	}
}

func TestPaginate_ClampsOutOfRange(t *testing.T) {
	page := Paginate(numbered(25), 10, 99)
	if page.Number != 3 {
		t.Errorf("number = %d, want 3 (clamped)", page.Number)
	}
	if len(page.Items) != 5 {
		t.Errorf("items = %d, want 5", len(page.Items))
	}

	page = Paginate(numbered(25), 10, 0)
	if page.Number != 1 {
		t.Errorf("number = %d, want 1", page.Number)
	}
}

func TestPaginate_Empty(t *testing.T) {
	page := Paginate(nil, 10, 1)
	if page.Number != 1 || page.TotalPages != 1 {
		t.Errorf("empty set: number=%d pages=%d, want 1/1", page.Number, page.TotalPages)
	}
	if page.StartIndex() != 0 || page.EndIndex() != 0 {
		t.Errorf("empty indexes = %d..%d, want 0..0", page.StartIndex(), page.EndIndex())
	}
}

func TestPaginate_DefaultPerPage(t *testing.T) {
	page := Paginate(numbered(30), 0, 1)
	if page.PerPage != DefaultPerPage {
		t.Errorf("perPage = %d, want %d", page.PerPage, DefaultPerPage)
	}
	if len(page.Items) != 25 {
		t.Errorf("items = %d, want 25", len(page.Items))
	}
}

func TestPage_LinkPreservesQuery(t *testing.T) {
	page := List(numbered(30), Options{
		SearchFields: []string{"name"},
		Query:        "rec",
		PerPage:      10,
		Page:         1,
	})
	link := page.Link(2)
	if link != "?page=2&q=rec" {
		t.Errorf("link = %q, want ?page=2&q=rec", link)
	}

	page = List(numbered(30), Options{PerPage: 10, Page: 1})
	if got := page.Link(2); got != "?page=2" {
		t.Errorf("link without query = %q, want ?page=2", got)
	}
}

func TestPage_LinkEncodesQuery(t *testing.T) {
	page := Page{Query: "a b&c"}
	if got := page.Link(1); got != "?page=1&q=a+b%26c" {
		t.Errorf("link = %q", got)
	}
}

func TestList_FilterThenPaginate(t *testing.T) {
	records := []store.Record{
		record(map[string]any{"name": "match one"}),
		record(map[string]any{"name": "other"}),
		record(map[string]any{"name": "match two"}),
		record(map[string]any{"name": "match three"}),
	}
	page := List(records, Options{
		SearchFields: []string{"name"},
		Query:        "match",
		PerPage:      2,
		Page:         2,
	})
	if page.TotalItems != 3 {
		t.Errorf("total = %d, want 3", page.TotalItems)
	}
	if len(page.Items) != 1 || page.Items[0].Values["name"] != "match three" {
		t.Errorf("page 2 = %v, want [match three]", page.Items)
	}
}

func TestPage_Navigation(t *testing.T) {
	page := Paginate(numbered(25), 10, 2)
	if !page.HasPrev() || !page.HasNext() {
		t.Error("page 2 of 3 should have prev and next")
	}
	nums := page.Numbers()
	if len(nums) != 3 || nums[0] != 1 || nums[2] != 3 {
		t.Errorf("numbers = %v, want [1 2 3]", nums)
	}
}
