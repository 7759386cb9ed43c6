// server/internal/listview/presenter.go
package listview

import (
	"sort"
	"strings"
)

// DefaultPageSize matches the five-per-page listing used across the admin
// screens.
const DefaultPageSize = 5

// FilterAll is the categorical filter value that matches every element.
const FilterAll = "todos"

// Page is the request-scoped projection of a collection. It carries no
// identity across requests and is recomputed on every parameter change.
type Page[T any] struct {
	Items         []T `json:"items"`
	TotalMatching int `json:"totalMatching"`
	TotalPages    int `json:"totalPages"`
	PageIndex     int `json:"pageIndex"`
	PageSize      int `json:"pageSize"`
}

// Present runs the one filter → sort → paginate pipeline shared by the
// truck, assignment and incident views. It is pure: the input slice is
// never mutated and identical inputs yield identical pages. pageIndex is
// 1-based; callers reset it to 1 whenever predicate parameters change so a
// narrowed result set never lands on an empty page.
func Present[T any](items []T, predicate func(T) bool, comparator func(a, b T) bool, pageIndex, pageSize int) Page[T] {
	if pageSize <= 0 {
		pageSize = DefaultPageSize
	}
	if pageIndex < 1 {
		pageIndex = 1
	}

	matched := make([]T, 0, len(items))
	for _, item := range items {
		if predicate == nil || predicate(item) {
			matched = append(matched, item)
		}
	}

	if comparator != nil {
		sort.SliceStable(matched, func(i, j int) bool {
			return comparator(matched[i], matched[j])
		})
	}

	total := len(matched)
	totalPages := (total + pageSize - 1) / pageSize

	start := (pageIndex - 1) * pageSize
	if start > total {
		start = total
	}
	end := start + pageSize
	if end > total {
		end = total
	}

	return Page[T]{
		Items:         matched[start:end],
		TotalMatching: total,
		TotalPages:    totalPages,
		PageIndex:     pageIndex,
		PageSize:      pageSize,
	}
}

// TextMatch reports whether the search term occurs, case-insensitively, in
// any of the given fields. An empty term matches everything.
func TextMatch(term string, fields ...string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	for _, f := range fields {
		if strings.Contains(strings.ToLower(f), term) {
			return true
		}
	}
	return false
}

// StateMatch is the categorical half of a predicate: the filter value
// "todos" (or empty) matches everything, otherwise the states must be
// equal.
func StateMatch(filter, state string) bool {
	return filter == "" || filter == FilterAll || filter == state
}

// RouteIndex extracts the leading numeric run from a route label, e.g.
// "Ruta 12" -> 12. Labels without digits rank as 0.
func RouteIndex(route string) int {
	start := -1
	for i, r := range route {
		if r >= '0' && r <= '9' {
			start = i
			break
		}
	}
	if start < 0 {
		return 0
	}
	n := 0
	for _, r := range route[start:] {
		if r < '0' || r > '9' {
			break
		}
		n = n*10 + int(r-'0')
	}
	return n
}

// ByRouteIndex orders route labels by their embedded route number,
// ascending: "Ruta 2" sorts before "Ruta 10", which a lexicographic sort
// would get wrong.
func ByRouteIndex(a, b string) bool {
	return RouteIndex(a) < RouteIndex(b)
}
