package picker

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/abrezinsky/iftarlantern/internal/categories"
	"github.com/abrezinsky/iftarlantern/internal/models"
)

var testNow = time.Date(2026, 3, 1, 18, 30, 0, 0, time.UTC)

func defaultDoc(t *testing.T) *models.Document {
	t.Helper()
	return Normalize(nil, categories.Default(), NewSeededRand(1), testNow)
}

func fptr(v float64) *float64 { return &v }
func bptr(v bool) *bool       { return &v }

func TestNormalize_NilDraftUsesDefaults(t *testing.T) {
	doc := defaultDoc(t)

	if len(doc.Categories) != 5 {
		t.Fatalf("expected 5 categories, got %d", len(doc.Categories))
	}
	mains := doc.Category("mains")
	if len(mains.Dishes) != 3 || mains.Dishes[0] != "Chicken Biryani" {
		t.Errorf("unexpected mains dishes: %v", mains.Dishes)
	}
	if len(mains.Pool) != 3 {
		t.Errorf("expected full pool, got %v", mains.Pool)
	}
	if !mains.Enabled || mains.Servings != 1 {
		t.Errorf("expected mains enabled with 1 serving, got %+v", mains)
	}
	if doc.Category("soups").Enabled {
		t.Error("expected soups disabled by default")
	}
	if doc.LastCombo != nil {
		t.Error("expected no last combo")
	}
	if doc.History == nil || len(doc.History) != 0 {
		t.Errorf("expected empty history, got %v", doc.History)
	}
}

func TestNormalize_EmptyDishListStaysEmpty(t *testing.T) {
	d := &Draft{Categories: map[string]DraftCategory{
		"mains": {HasDishes: true, Dishes: []string{}},
	}}
	doc := Normalize(d, categories.Default(), NewSeededRand(1), testNow)

	mains := doc.Category("mains")
	if len(mains.Dishes) != 0 || len(mains.Pool) != 0 {
		t.Errorf("expected empty mains, got %+v", mains)
	}
}

func TestNormalize_Servings(t *testing.T) {
	tests := []struct {
		name        string
		servings    *float64
		enabled     *bool
		wantServ    int
		wantEnabled bool
	}{
		{"missing uses default", nil, nil, 1, true},
		{"above max clamps", fptr(9), nil, 3, true},
		{"negative clamps to min", fptr(-2), bptr(true), 0, true},
		{"fractional uses default", fptr(1.5), nil, 1, true},
		{"zero infers disabled", fptr(0), nil, 0, false},
		{"stored enabled wins", fptr(0), bptr(true), 0, true},
		{"stored disabled wins", fptr(2), bptr(false), 2, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := &Draft{Categories: map[string]DraftCategory{
				"mains": {Servings: tt.servings, Enabled: tt.enabled},
			}}
			doc := Normalize(d, categories.Default(), NewSeededRand(1), testNow)
			mains := doc.Category("mains")
			if mains.Servings != tt.wantServ {
				t.Errorf("expected servings %d, got %d", tt.wantServ, mains.Servings)
			}
			if mains.Enabled != tt.wantEnabled {
				t.Errorf("expected enabled %v, got %v", tt.wantEnabled, mains.Enabled)
			}
		})
	}
}

func TestNormalize_PoolFiltersStaleAndDuplicates(t *testing.T) {
	d := &Draft{Categories: map[string]DraftCategory{
		"desserts": {
			HasDishes: true,
			Dishes:    []string{"Kunafa", "Basbousa", "Date Cookies"},
			Pool:      []string{"kunafa", "Removed Dish", "KUNAFA", "Basbousa"},
		},
	}}
	doc := Normalize(d, categories.Default(), NewSeededRand(1), testNow)

	pool := doc.Category("desserts").Pool
	if len(pool) != 2 || pool[0] != "Kunafa" || pool[1] != "Basbousa" {
		t.Errorf("expected [Kunafa Basbousa], got %v", pool)
	}
}

func TestNormalize_ComboAndHistory(t *testing.T) {
	ts := testNow.Add(-time.Hour)
	d := &Draft{
		LastCombo: map[string][]string{"mains": {"lamb kofta"}, "desserts": {"Gone"}},
		History: []DraftHistoryEntry{
			{Combo: map[string][]string{"mains": {"Gone"}}, At: &ts},
			{Combo: map[string][]string{"sides": {"samosa"}}},
		},
	}
	doc := Normalize(d, categories.Default(), NewSeededRand(1), testNow)

	if got := doc.LastCombo["mains"]; len(got) != 1 || got[0] != "Lamb Kofta" {
		t.Errorf("expected last combo mains [Lamb Kofta], got %v", got)
	}
	if got := doc.LastCombo["desserts"]; len(got) != 0 {
		t.Errorf("expected stale dessert dropped, got %v", got)
	}
	if _, ok := doc.LastCombo["salads"]; !ok {
		t.Error("expected every category key present in the combo")
	}

	if len(doc.History) != 1 {
		t.Fatalf("expected empty history entry dropped, got %d entries", len(doc.History))
	}
	if !doc.History[0].At.Equal(testNow) {
		t.Errorf("expected missing timestamp to become now, got %v", doc.History[0].At)
	}
}

func TestNormalize_LastComboAllStaleBecomesNil(t *testing.T) {
	d := &Draft{LastCombo: map[string][]string{"mains": {"Nothing Like This"}}}
	doc := Normalize(d, categories.Default(), NewSeededRand(1), testNow)
	if doc.LastCombo != nil {
		t.Errorf("expected nil combo, got %v", doc.LastCombo)
	}
}

func TestNormalize_HistoryCapped(t *testing.T) {
	d := &Draft{}
	for i := 0; i < models.MaxHistory+10; i++ {
		d.History = append(d.History, DraftHistoryEntry{Combo: map[string][]string{"mains": {"Lamb Kofta"}}})
	}
	doc := Normalize(d, categories.Default(), NewSeededRand(1), testNow)
	if len(doc.History) != models.MaxHistory {
		t.Errorf("expected %d entries, got %d", models.MaxHistory, len(doc.History))
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	reg := categories.Default()
	d := &Draft{
		Categories: map[string]DraftCategory{
			"mains":  {HasDishes: true, Dishes: []string{" a ", "B", "b", "c"}, Pool: []string{"c", "x"}, Servings: fptr(7)},
			"sides":  {HasDishes: true, Dishes: []string{}},
			"salads": {Servings: fptr(2)},
		},
		LastCombo: map[string][]string{"mains": {"A", "a"}},
		History:   []DraftHistoryEntry{{Combo: map[string][]string{"mains": {"c"}}}},
	}

	once := Normalize(d, reg, NewSeededRand(5), testNow)
	twice := Reconcile(once, reg, NewSeededRand(99))

	a, _ := json.Marshal(once)
	b, _ := json.Marshal(twice)
	if string(a) != string(b) {
		t.Errorf("reconcile is not idempotent:\n%s\n%s", a, b)
	}
}

func TestReconcile_PoolInvariant(t *testing.T) {
	reg := categories.Default()
	doc := defaultDoc(t)
	rnd := NewSeededRand(11)

	for i := 0; i < 40; i++ {
		if _, err := Generate(doc, rnd, testNow); err != nil {
			t.Fatalf("Generate failed: %v", err)
		}
		doc = Reconcile(doc, reg, rnd)
		for _, c := range doc.Categories {
			for _, p := range c.Pool {
				if !ContainsDish(c.Dishes, p) {
					t.Fatalf("pool entry %q of %s is not a dish", p, c.ID)
				}
			}
			if len(c.Dishes) > 0 && len(c.Pool) == 0 {
				t.Fatalf("pool of %s left empty after reconcile", c.ID)
			}
		}
	}
}

func TestReconcile_DropsUnknownCategories(t *testing.T) {
	doc := defaultDoc(t)
	doc.Categories = append(doc.Categories, models.CategoryState{ID: "breakfast", Dishes: []string{"Eggs"}})

	out := Reconcile(doc, categories.Default(), NewSeededRand(1))
	if out.Category("breakfast") != nil {
		t.Error("expected unknown category to be dropped")
	}
}
