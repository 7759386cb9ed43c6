package listview

import (
	"reflect"
	"sort"
	"testing"
)

func TestRouteIndex(t *testing.T) {
	cases := []struct {
		route string
		want  int
	}{
		{"Ruta 2", 2},
		{"Ruta 10", 10},
		{"Ruta 105 Norte", 105},
		{"12A", 12},
		{"Sin ruta", 0},
		{"", 0},
	}

	for _, c := range cases {
		if got := RouteIndex(c.route); got != c.want {
			t.Errorf("RouteIndex(%q) = %d, want %d", c.route, got, c.want)
		}
	}
}

func TestByRouteIndexNaturalOrder(t *testing.T) {
	routes := []string{"Ruta 2", "Ruta 10", "Sin ruta"}
	sort.SliceStable(routes, func(i, j int) bool { return ByRouteIndex(routes[i], routes[j]) })

	// Digit-less labels compare as 0 and sort first; anchoring them last
	// is a per-view decision (the incident listing does it for broken
	// truck references), not the comparator's.
	want := []string{"Sin ruta", "Ruta 2", "Ruta 10"}
	if !reflect.DeepEqual(routes, want) {
		t.Fatalf("sorted = %v, want %v", routes, want)
	}

	// The defining case a lexicographic sort gets wrong.
	if !ByRouteIndex("Ruta 2", "Ruta 10") {
		t.Error(`"Ruta 2" must sort before "Ruta 10"`)
	}
	if ByRouteIndex("Ruta 10", "Ruta 2") {
		t.Error(`"Ruta 10" must not sort before "Ruta 2"`)
	}
}

type row struct {
	Name  string
	State string
	Route string
}

func sampleRows() []row {
	return []row{
		{"camion uno", "activo", "Ruta 10"},
		{"camion dos", "inactivo", "Ruta 2"},
		{"camion tres", "activo", "Ruta 7"},
		{"otro", "activo", "Ruta 1"},
		{"camion cuatro", "activo", "Ruta 3"},
		{"camion cinco", "activo", "Ruta 25"},
		{"camion seis", "inactivo", "Ruta 4"},
	}
}

func rowPredicate(search, state string) func(row) bool {
	return func(r row) bool {
		return TextMatch(search, r.Name, r.Route) && StateMatch(state, r.State)
	}
}

func byRoute(a, b row) bool { return ByRouteIndex(a.Route, b.Route) }

func TestPresentFilterSortPaginate(t *testing.T) {
	page := Present(sampleRows(), rowPredicate("camion", "activo"), byRoute, 1, 3)

	if page.TotalMatching != 4 {
		t.Fatalf("TotalMatching = %d, want 4", page.TotalMatching)
	}
	if page.TotalPages != 2 {
		t.Fatalf("TotalPages = %d, want 2", page.TotalPages)
	}
	wantRoutes := []string{"Ruta 3", "Ruta 7", "Ruta 10"}
	for i, r := range page.Items {
		if r.Route != wantRoutes[i] {
			t.Errorf("Items[%d].Route = %q, want %q", i, r.Route, wantRoutes[i])
		}
	}

	second := Present(sampleRows(), rowPredicate("camion", "activo"), byRoute, 2, 3)
	if len(second.Items) != 1 || second.Items[0].Route != "Ruta 25" {
		t.Errorf("page 2 items = %v, want just Ruta 25", second.Items)
	}
}

func TestPresentPredicateConjunction(t *testing.T) {
	cases := []struct {
		name   string
		search string
		state  string
		want   int
	}{
		{"Text and state must both hold", "camion", "inactivo", 2},
		{"State all matches every state", "camion", FilterAll, 6},
		{"Empty search matches everything", "", "activo", 5},
		{"No match", "camion", "desconocido", 0},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			page := Present(sampleRows(), rowPredicate(c.search, c.state), byRoute, 1, 100)
			if page.TotalMatching != c.want {
				t.Errorf("TotalMatching = %d, want %d", page.TotalMatching, c.want)
			}
		})
	}
}

func TestPresentPure(t *testing.T) {
	input := sampleRows()
	before := make([]row, len(input))
	copy(before, input)

	first := Present(input, rowPredicate("camion", "activo"), byRoute, 1, 3)
	second := Present(input, rowPredicate("camion", "activo"), byRoute, 1, 3)

	if !reflect.DeepEqual(first, second) {
		t.Error("two identical calls returned different pages")
	}
	if !reflect.DeepEqual(input, before) {
		t.Error("Present mutated its input slice")
	}

	// Changing only the page index never changes the match count.
	for pageIndex := 1; pageIndex <= 4; pageIndex++ {
		page := Present(input, rowPredicate("camion", "activo"), byRoute, pageIndex, 3)
		if page.TotalMatching != first.TotalMatching {
			t.Errorf("pageIndex %d changed TotalMatching to %d", pageIndex, page.TotalMatching)
		}
	}
}

func TestPresentBeyondLastPage(t *testing.T) {
	page := Present(sampleRows(), rowPredicate("", FilterAll), byRoute, 99, 5)
	if len(page.Items) != 0 {
		t.Errorf("items beyond last page = %v, want empty", page.Items)
	}
	if page.TotalMatching != 7 {
		t.Errorf("TotalMatching = %d, want 7", page.TotalMatching)
	}
}

func TestSnapshotKeepsLastGoodPage(t *testing.T) {
	snap := NewSnapshot[Page[row]]()

	if _, ok := snap.Last("trucks|a"); ok {
		t.Fatal("empty snapshot claimed to have a page")
	}

	page := Present(sampleRows(), rowPredicate("", FilterAll), byRoute, 1, 5)
	snap.Store("trucks|a", page)

	got, ok := snap.Last("trucks|a")
	if !ok || !reflect.DeepEqual(got, page) {
		t.Error("snapshot did not return the stored page")
	}
}
