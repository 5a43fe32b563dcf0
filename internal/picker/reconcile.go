package picker

import (
	"math"
	"time"

	"github.com/abrezinsky/iftarlantern/internal/categories"
	"github.com/abrezinsky/iftarlantern/internal/models"
)

// Draft is a state document as read from storage or a backup. Any field may
// be missing, stale or hold values outside the registry's bounds.
type Draft struct {
	Categories  map[string]DraftCategory
	LastCombo   map[string][]string
	History     []DraftHistoryEntry
	LastSavedAt *time.Time
}

// DraftCategory is the raw per-category state. HasDishes distinguishes a
// missing dish list (use defaults) from an empty one (keep empty).
type DraftCategory struct {
	HasDishes bool
	Dishes    []string
	Pool      []string
	Servings  *float64
	Enabled   *bool
}

// DraftHistoryEntry is a raw history entry; a nil At means the timestamp was
// missing or unreadable
type DraftHistoryEntry struct {
	Combo map[string][]string
	At    *time.Time
}

// DraftFromDocument returns the draft view of a typed document
func DraftFromDocument(doc *models.Document) *Draft {
	d := &Draft{Categories: make(map[string]DraftCategory)}
	if doc == nil {
		return d
	}
	for _, c := range doc.Categories {
		servings := float64(c.Servings)
		enabled := c.Enabled
		d.Categories[c.ID] = DraftCategory{
			HasDishes: true,
			Dishes:    append([]string{}, c.Dishes...),
			Pool:      append([]string{}, c.Pool...),
			Servings:  &servings,
			Enabled:   &enabled,
		}
	}
	d.LastCombo = doc.LastCombo.Clone()
	for _, h := range doc.History {
		at := h.At
		d.History = append(d.History, DraftHistoryEntry{Combo: h.Combo.Clone(), At: &at})
	}
	if doc.LastSavedAt != nil {
		t := *doc.LastSavedAt
		d.LastSavedAt = &t
	}
	return d
}

// Normalize turns a draft into a consistent document:
//
//  1. dish lists are canonicalized; a missing list falls back to the category defaults
//  2. enabled is taken as stored, else inferred from servings, else the default
//  3. servings are clamped to the category bounds; non-integers use the default
//  4. pools keep only current dishes, once each; an empty pool is refilled
//  5. the last combo keeps only current dishes and becomes nil when nothing is left
//  6. history entries are cleaned the same way, empty ones dropped, and capped
//
// History entries without a timestamp get now.
func Normalize(d *Draft, reg *categories.Registry, rnd Rand, now time.Time) *models.Document {
	if d == nil {
		d = &Draft{}
	}

	doc := &models.Document{Categories: make([]models.CategoryState, 0, reg.Len())}
	for _, cat := range reg.All() {
		dc := d.Categories[cat.ID]

		st := models.CategoryState{ID: cat.ID}
		if dc.HasDishes {
			st.Dishes = CleanDishes(dc.Dishes)
		} else {
			st.Dishes = CleanDishes(cat.DefaultDishes)
		}
		st.Enabled = resolveEnabled(dc, cat)
		st.Servings = resolveServings(dc, cat)
		st.Pool = matchDishes(dc.Pool, st.Dishes)
		if len(st.Pool) == 0 && len(st.Dishes) > 0 {
			st.Pool = Shuffled(st.Dishes, rnd)
		}

		doc.Categories = append(doc.Categories, st)
	}

	doc.LastCombo = cleanCombo(d.LastCombo, doc)

	doc.History = make([]models.HistoryEntry, 0, len(d.History))
	for _, h := range d.History {
		combo := cleanCombo(h.Combo, doc)
		if combo == nil {
			continue
		}
		at := now
		if h.At != nil {
			at = *h.At
		}
		doc.History = append(doc.History, models.HistoryEntry{Combo: combo, At: at})
		if len(doc.History) == models.MaxHistory {
			break
		}
	}

	if d.LastSavedAt != nil {
		t := *d.LastSavedAt
		doc.LastSavedAt = &t
	}
	return doc
}

// Reconcile re-normalizes a typed document. Reconcile(Reconcile(x)) equals
// Reconcile(x).
func Reconcile(doc *models.Document, reg *categories.Registry, rnd Rand) *models.Document {
	return Normalize(DraftFromDocument(doc), reg, rnd, time.Now())
}

func resolveEnabled(dc DraftCategory, cat categories.Category) bool {
	if dc.Enabled != nil {
		return *dc.Enabled
	}
	if dc.Servings != nil {
		return *dc.Servings > 0
	}
	return cat.DefaultEnabled
}

func resolveServings(dc DraftCategory, cat categories.Category) int {
	if dc.Servings == nil {
		return cat.DefaultServings
	}
	v := *dc.Servings
	if math.IsNaN(v) || math.IsInf(v, 0) || v != math.Trunc(v) {
		return cat.DefaultServings
	}
	if v < float64(cat.MinServings) {
		return cat.MinServings
	}
	if v > float64(cat.MaxServings) {
		return cat.MaxServings
	}
	return int(v)
}

// cleanCombo filters a raw combo against the document's dish lists. Returns
// nil when raw is nil or no category keeps a dish.
func cleanCombo(raw map[string][]string, doc *models.Document) models.Combo {
	if raw == nil {
		return nil
	}
	combo := make(models.Combo, len(doc.Categories))
	for _, c := range doc.Categories {
		combo[c.ID] = matchDishes(raw[c.ID], c.Dishes)
	}
	if combo.IsEmpty() {
		return nil
	}
	return combo
}
