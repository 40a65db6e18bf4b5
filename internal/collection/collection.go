// Package collection implements the list-view core shared by every admin
// page: given a fetched snapshot and a query, derive the filtered, sorted
// subset and the page window over it. It is a pure function of its inputs;
// fetching and caching live elsewhere.
package collection

import (
	"sort"
	"strings"

	"github.com/ecclesia-app/admin-gateway/internal/models"
)

// Query is the page-local view state sent by the dashboard.
type Query struct {
	Search    string
	Filters   map[string]string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// Normalize applies the view-state invariant that changing the search text
// or any filter resets the page index to 1. The caller passes the previous
// query it rendered; page clamping itself happens in Build.
func (q Query) Normalize(prev Query) Query {
	if q.Search != prev.Search || !filtersEqual(q.Filters, prev.Filters) {
		q.Page = 1
	}
	return q
}

func filtersEqual(a, b map[string]string) bool {
	if len(a) != len(b) {
		return false
	}
	for name, value := range a {
		if b[name] != value {
			return false
		}
	}
	return true
}

// Descriptor declares, per entity type, which fields are searchable, which
// named filters exist and which sort orders are available.
type Descriptor[T any] struct {
	SearchFields []func(T) string
	Filters      map[string]func(T, string) bool
	Sorters      map[string]func(a, b T) bool
	DefaultSort  string

	DefaultPageSize int
	MaxPageSize     int
}

// View is one rendered page of a filtered collection.
type View[T any] struct {
	Items      []T
	Pagination models.Pagination
}

// Build derives the page window for the query. The result is always
// well-formed: pageSize within bounds, page clamped to
// [1, max(1, totalPages)].
func Build[T any](items []T, q Query, d Descriptor[T]) View[T] {
	filtered := Filter(items, q, d)
	sortItems(filtered, q, d)

	pageSize := q.PageSize
	if pageSize <= 0 {
		pageSize = d.DefaultPageSize
	}
	if pageSize <= 0 {
		pageSize = 10
	}
	if d.MaxPageSize > 0 && pageSize > d.MaxPageSize {
		pageSize = d.MaxPageSize
	}

	totalCount := len(filtered)
	totalPages := (totalCount + pageSize - 1) / pageSize

	page := q.Page
	if page > totalPages {
		page = totalPages
	}
	if page < 1 {
		page = 1
	}

	start := (page - 1) * pageSize
	end := start + pageSize
	if start > totalCount {
		start = totalCount
	}
	if end > totalCount {
		end = totalCount
	}

	return View[T]{
		Items: filtered[start:end],
		Pagination: models.Pagination{
			Page:       page,
			PageSize:   pageSize,
			TotalCount: totalCount,
			TotalPages: totalPages,
		},
	}
}

// Filter returns the subset matching the search text and every active
// filter, preserving snapshot order. Export endpoints use it directly to
// render the currently filtered collection without a page window.
func Filter[T any](items []T, q Query, d Descriptor[T]) []T {
	search := strings.ToLower(strings.TrimSpace(q.Search))
	result := make([]T, 0, len(items))

	for _, item := range items {
		if search != "" && !matchesSearch(item, search, d.SearchFields) {
			continue
		}
		if !matchesFilters(item, q.Filters, d.Filters) {
			continue
		}
		result = append(result, item)
	}
	return result
}

func matchesSearch[T any](item T, search string, fields []func(T) string) bool {
	for _, field := range fields {
		if strings.Contains(strings.ToLower(field(item)), search) {
			return true
		}
	}
	return false
}

func matchesFilters[T any](item T, active map[string]string, known map[string]func(T, string) bool) bool {
	for name, value := range active {
		if value == "" {
			continue
		}
		predicate, ok := known[name]
		if !ok {
			continue
		}
		if !predicate(item, value) {
			return false
		}
	}
	return true
}

func sortItems[T any](items []T, q Query, d Descriptor[T]) {
	sortBy := q.SortBy
	if sortBy == "" {
		sortBy = d.DefaultSort
	}
	less, ok := d.Sorters[sortBy]
	if !ok {
		return
	}
	descending := strings.EqualFold(q.SortOrder, "desc")
	sort.SliceStable(items, func(i, j int) bool {
		if descending {
			return less(items[j], items[i])
		}
		return less(items[i], items[j])
	})
}
