package picker

import (
	"errors"
	"fmt"
	"time"

	"github.com/tidwall/gjson"

	"github.com/abrezinsky/iftarlantern/internal/categories"
)

// StorageKey is the key the current document is stored under
const StorageKey = "iftar-lantern-state-v2"

// LegacyStorageKeys are read, newest first, when StorageKey holds nothing
var LegacyStorageKeys = []string{"iftar-lantern-state-v1", "ramealsdan-state-v1"}

// ErrMalformedStorage is returned when stored bytes are not a JSON object
var ErrMalformedStorage = errors.New("malformed state document")

// Schema identifies the layout a stored document was written with
type Schema int

const (
	// SchemaUsedCombos tracked exhausted combinations instead of pools
	SchemaUsedCombos Schema = iota
	// SchemaSingleServing had per-category pools and one dish per category
	SchemaSingleServing
	// SchemaCurrent has servings, enabled flags and multi-dish combos
	SchemaCurrent
)

func (s Schema) String() string {
	switch s {
	case SchemaUsedCombos:
		return "used-combos"
	case SchemaSingleServing:
		return "single-serving"
	case SchemaCurrent:
		return "current"
	default:
		return fmt.Sprintf("schema(%d)", int(s))
	}
}

// versioned is one of the decoded document forms. Each form upgrades to the
// next until a *Draft comes out.
type versioned interface {
	schema() Schema
}

type usedCombosDoc struct {
	dishes      map[string][]string
	lastCombo   map[string][]string
	history     []DraftHistoryEntry
	lastSavedAt *time.Time
}

type singleServingDoc struct {
	dishes      map[string][]string
	pools       map[string][]string
	lastCombo   map[string][]string
	history     []DraftHistoryEntry
	lastSavedAt *time.Time
}

func (*usedCombosDoc) schema() Schema    { return SchemaUsedCombos }
func (*singleServingDoc) schema() Schema { return SchemaSingleServing }
func (*Draft) schema() Schema            { return SchemaCurrent }

// upgradeUsedCombos drops the exhausted-combination list. Pools start empty
// and are refilled by Normalize.
func upgradeUsedCombos(v *usedCombosDoc) *singleServingDoc {
	return &singleServingDoc{
		dishes:      v.dishes,
		pools:       map[string][]string{},
		lastCombo:   v.lastCombo,
		history:     v.history,
		lastSavedAt: v.lastSavedAt,
	}
}

// upgradeSingleServing leaves servings and enabled unset so Normalize applies
// the category defaults
func upgradeSingleServing(v *singleServingDoc) *Draft {
	d := &Draft{
		Categories:  make(map[string]DraftCategory, len(v.dishes)),
		LastCombo:   v.lastCombo,
		History:     v.history,
		LastSavedAt: v.lastSavedAt,
	}
	for id, dishes := range v.dishes {
		d.Categories[id] = DraftCategory{HasDishes: true, Dishes: dishes}
	}
	for id, pool := range v.pools {
		dc := d.Categories[id]
		dc.Pool = pool
		d.Categories[id] = dc
	}
	return d
}

func upgrade(v versioned) *Draft {
	for {
		switch doc := v.(type) {
		case *usedCombosDoc:
			v = upgradeUsedCombos(doc)
		case *singleServingDoc:
			v = upgradeSingleServing(doc)
		case *Draft:
			return doc
		default:
			return &Draft{}
		}
	}
}

// DecodeDocument reads stored bytes of any known layout into a draft, along
// with the layout it detected. Fields that are missing or of the wrong type
// are left unset for Normalize to fill.
func DecodeDocument(raw []byte, reg *categories.Registry) (*Draft, Schema, error) {
	if !gjson.ValidBytes(raw) {
		return nil, 0, ErrMalformedStorage
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, 0, ErrMalformedStorage
	}

	fields := root.Map()
	s := sniffSchema(fields)

	dishes := readLists(fields["dishes"], reg)
	lastCombo := readCombo(fields["lastCombo"], reg)
	history := readHistory(fields["history"], reg)
	lastSavedAt := readTime(fields["lastSavedAt"])

	var v versioned
	switch s {
	case SchemaUsedCombos:
		v = &usedCombosDoc{
			dishes:      dishes,
			lastCombo:   lastCombo,
			history:     history,
			lastSavedAt: lastSavedAt,
		}
	case SchemaSingleServing:
		v = &singleServingDoc{
			dishes:      dishes,
			pools:       readLists(fields["cyclePools"], reg),
			lastCombo:   lastCombo,
			history:     history,
			lastSavedAt: lastSavedAt,
		}
	default:
		d := &Draft{
			Categories:  make(map[string]DraftCategory, reg.Len()),
			LastCombo:   lastCombo,
			History:     history,
			LastSavedAt: lastSavedAt,
		}
		pools := readLists(fields["cyclePools"], reg)
		servings := objectFields(fields["servings"])
		enabled := objectFields(fields["enabled"])
		for _, cat := range reg.All() {
			dc := DraftCategory{}
			if list, ok := dishes[cat.ID]; ok {
				dc.HasDishes = true
				dc.Dishes = list
			}
			dc.Pool = pools[cat.ID]
			if r, ok := lookup(servings, cat); ok && r.Type == gjson.Number {
				n := r.Num
				dc.Servings = &n
			}
			if r, ok := lookup(enabled, cat); ok && (r.Type == gjson.True || r.Type == gjson.False) {
				b := r.Bool()
				dc.Enabled = &b
			}
			d.Categories[cat.ID] = dc
		}
		v = d
	}

	return upgrade(v), s, nil
}

// UnwrapBackup returns the state document inside a backup wrapper, or raw
// itself when it is a bare document
func UnwrapBackup(raw []byte) ([]byte, error) {
	if !gjson.ValidBytes(raw) {
		return nil, ErrMalformedStorage
	}
	root := gjson.ParseBytes(raw)
	if !root.IsObject() {
		return nil, ErrMalformedStorage
	}
	state := root.Get("state")
	if !state.Exists() {
		return raw, nil
	}
	if !state.IsObject() {
		return nil, fmt.Errorf("%w: backup state is not an object", ErrMalformedStorage)
	}
	return []byte(state.Raw), nil
}

// sniffSchema checks the current layout's markers first, so a current
// document that still carries a stale usedCombos field keeps its settings
func sniffSchema(fields map[string]gjson.Result) Schema {
	if fields["servings"].IsObject() || fields["enabled"].IsObject() {
		return SchemaCurrent
	}
	if hasListValues(fields["lastCombo"]) {
		return SchemaCurrent
	}
	for _, h := range fields["history"].Array() {
		if hasListValues(h) {
			return SchemaCurrent
		}
	}
	if fields["usedCombos"].Exists() {
		return SchemaUsedCombos
	}
	return SchemaSingleServing
}

func hasListValues(r gjson.Result) bool {
	if !r.IsObject() {
		return false
	}
	found := false
	r.ForEach(func(_, v gjson.Result) bool {
		if v.IsArray() {
			found = true
			return false
		}
		return true
	})
	return found
}

func objectFields(r gjson.Result) map[string]gjson.Result {
	if !r.IsObject() {
		return nil
	}
	return r.Map()
}

// lookup finds a category's value by id, then by its legacy key
func lookup(fields map[string]gjson.Result, cat categories.Category) (gjson.Result, bool) {
	if v, ok := fields[cat.ID]; ok {
		return v, true
	}
	if cat.LegacyKey != "" {
		if v, ok := fields[cat.LegacyKey]; ok {
			return v, true
		}
	}
	return gjson.Result{}, false
}

// readLists reads a category-keyed object of string arrays. Only array values
// count as present.
func readLists(r gjson.Result, reg *categories.Registry) map[string][]string {
	fields := objectFields(r)
	out := make(map[string][]string, len(fields))
	for _, cat := range reg.All() {
		v, ok := lookup(fields, cat)
		if !ok || !v.IsArray() {
			continue
		}
		out[cat.ID] = stringList(v)
	}
	return out
}

// stringList accepts an array of strings or a single string. Non-string
// elements are skipped.
func stringList(r gjson.Result) []string {
	if r.Type == gjson.String {
		return []string{r.Str}
	}
	if !r.IsArray() {
		return nil
	}
	var out []string
	for _, el := range r.Array() {
		if el.Type == gjson.String {
			out = append(out, el.Str)
		}
	}
	return out
}

func readCombo(r gjson.Result, reg *categories.Registry) map[string][]string {
	if !r.IsObject() {
		return nil
	}
	fields := r.Map()
	combo := make(map[string][]string, reg.Len())
	for _, cat := range reg.All() {
		if v, ok := lookup(fields, cat); ok {
			combo[cat.ID] = stringList(v)
		}
	}
	return combo
}

func readHistory(r gjson.Result, reg *categories.Registry) []DraftHistoryEntry {
	if !r.IsArray() {
		return nil
	}
	var out []DraftHistoryEntry
	for _, el := range r.Array() {
		if !el.IsObject() {
			continue
		}
		out = append(out, DraftHistoryEntry{
			Combo: readCombo(el, reg),
			At:    readTime(el.Get("at")),
		})
	}
	return out
}

func readTime(r gjson.Result) *time.Time {
	if r.Type != gjson.String {
		return nil
	}
	t, err := time.Parse(time.RFC3339Nano, r.Str)
	if err != nil {
		return nil
	}
	return &t
}
