// Package listing filters and paginates record collections for the list
// view. Filtering is a case-insensitive substring match over the stored
// textual form of each value, OR-combined across the configured search
// fields; pagination is 1-indexed with out-of-range pages clamped to the
// last valid page. Input order is preserved so the same snapshot always
// pages identically.
package listing

import (
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/matthewbaird/cruder/internal/store"
)

// DefaultPerPage is the page size used when the configuration leaves it unset.
const DefaultPerPage = 25

// Options carries the caller's list parameters.
type Options struct {
	SearchFields []string
	Query        string
	PerPage      int
	Page         int
}

// Page is one slice of the filtered result set.
type Page struct {
	Items      []store.Record
	Number     int    // 1-indexed, clamped
	PerPage    int
	TotalItems int    // filtered count across all pages
	TotalPages int    // at least 1
	Query      string // active search query, carried into page links
}

// List filters records by the query and returns the requested page.
func List(records []store.Record, opts Options) Page {
	filtered := Search(records, opts.SearchFields, opts.Query)
	page := Paginate(filtered, opts.PerPage, opts.Page)
	page.Query = opts.Query
	return page
}

// Search keeps the records where at least one of the given fields contains
// the query, case-insensitively. An empty query or empty field set returns
// the input unchanged. A record matching several fields appears once.
func Search(records []store.Record, fields []string, query string) []store.Record {
	if query == "" || len(fields) == 0 {
		return records
	}
	q := strings.ToLower(query)
	var matched []store.Record
	for _, rec := range records {
		for _, f := range fields {
			v, ok := rec.Values[f]
			if !ok || v == nil {
				continue
			}
			if strings.Contains(strings.ToLower(valueText(v)), q) {
				matched = append(matched, rec)
				break
			}
		}
	}
	return matched
}

// Paginate slices records into pages of perPage items and returns page
// number page. Page numbers are 1-indexed; values below 1 become 1 and
// values past the end clamp to the last valid page. perPage below 1 falls
// back to DefaultPerPage.
func Paginate(records []store.Record, perPage, page int) Page {
	if perPage < 1 {
		perPage = DefaultPerPage
	}
	total := len(records)
	totalPages := (total + perPage - 1) / perPage
	if totalPages < 1 {
		totalPages = 1
	}
	if page < 1 {
		page = 1
	}
	if page > totalPages {
		page = totalPages
	}

	start := (page - 1) * perPage
	end := start + perPage
	if start > total {
		start = total
	}
	if end > total {
		end = total
	}

	return Page{
		Items:      records[start:end],
		Number:     page,
		PerPage:    perPage,
		TotalItems: total,
		TotalPages: totalPages,
	}
}

// HasPrev reports whether an earlier page exists.
func (p Page) HasPrev() bool { return p.Number > 1 }

// HasNext reports whether a later page exists.
func (p Page) HasNext() bool { return p.Number < p.TotalPages }

// StartIndex returns the 1-based index of the first item on the page,
// 0 when the page is empty.
func (p Page) StartIndex() int {
	if len(p.Items) == 0 {
		return 0
	}
	return (p.Number-1)*p.PerPage + 1
}

// EndIndex returns the 1-based index of the last item on the page.
func (p Page) EndIndex() int {
	if len(p.Items) == 0 {
		return 0
	}
	return p.StartIndex() + len(p.Items) - 1
}

// Numbers returns every page number for link generation.
func (p Page) Numbers() []int {
	nums := make([]int, p.TotalPages)
	for i := range nums {
		nums[i] = i + 1
	}
	return nums
}

// Link builds the query string for page n, preserving the active search
// query so navigating pages never drops the filter.
func (p Page) Link(n int) string {
	v := url.Values{}
	v.Set("page", strconv.Itoa(n))
	if p.Query != "" {
		v.Set("q", p.Query)
	}
	return "?" + v.Encode()
}

// valueText renders a record value in its stored textual form. This is
// what the SQL pushdown matches against too, so both paths agree; search
// fields are meant to be text fields, where stored and displayed values
// coincide.
func valueText(v any) string {
	switch t := v.(type) {
	case string:
		return t
	case bool:
		if t {
			return "true"
		}
		return "false"
	default:
		return fmt.Sprint(t)
	}
}
