package models

import (
	"encoding/json"
	"time"
)

// MaxHistory is the number of generated combos kept in history
const MaxHistory = 30

// CategoryState bundles everything the picker tracks for one category
type CategoryState struct {
	ID       string   `json:"id"`
	Dishes   []string `json:"dishes"`
	Pool     []string `json:"pool"`
	Servings int      `json:"servings"`
	Enabled  bool     `json:"enabled"`
}

// Active reports whether the category takes part in the next draw
func (c CategoryState) Active() bool {
	return c.Enabled && c.Servings > 0
}

// Combo maps a category id to the dishes drawn for it, in draw order
type Combo map[string][]string

// Clone deep-copies the combo
func (c Combo) Clone() Combo {
	if c == nil {
		return nil
	}
	out := make(Combo, len(c))
	for k, v := range c {
		out[k] = append([]string{}, v...)
	}
	return out
}

// IsEmpty reports whether no category has any dish
func (c Combo) IsEmpty() bool {
	for _, v := range c {
		if len(v) > 0 {
			return false
		}
	}
	return true
}

// HistoryEntry is one generated combo with the time it was drawn
type HistoryEntry struct {
	Combo Combo
	At    time.Time
}

// MarshalJSON flattens the combo next to the "at" timestamp
func (h HistoryEntry) MarshalJSON() ([]byte, error) {
	out := make(map[string]interface{}, len(h.Combo)+1)
	for k, v := range h.Combo {
		out[k] = nonNil(v)
	}
	out["at"] = h.At.UTC().Format(time.RFC3339Nano)
	return json.Marshal(out)
}

// Document is the whole persisted picker state. Categories follow the
// registry order. Decode stored bytes with picker.DecodeDocument, which
// tolerates older and damaged documents.
type Document struct {
	Categories  []CategoryState
	LastCombo   Combo
	History     []HistoryEntry
	LastSavedAt *time.Time
}

// Category returns the state for id, or nil when the id is unknown
func (d *Document) Category(id string) *CategoryState {
	for i := range d.Categories {
		if d.Categories[i].ID == id {
			return &d.Categories[i]
		}
	}
	return nil
}

// Clone deep-copies the document
func (d *Document) Clone() *Document {
	if d == nil {
		return nil
	}
	out := &Document{
		Categories: make([]CategoryState, len(d.Categories)),
		LastCombo:  d.LastCombo.Clone(),
		History:    make([]HistoryEntry, len(d.History)),
	}
	for i, c := range d.Categories {
		out.Categories[i] = CategoryState{
			ID:       c.ID,
			Dishes:   append([]string{}, c.Dishes...),
			Pool:     append([]string{}, c.Pool...),
			Servings: c.Servings,
			Enabled:  c.Enabled,
		}
	}
	for i, h := range d.History {
		out.History[i] = HistoryEntry{Combo: h.Combo.Clone(), At: h.At}
	}
	if d.LastSavedAt != nil {
		t := *d.LastSavedAt
		out.LastSavedAt = &t
	}
	return out
}

// RemainingBeforeRepeat returns the pool size of every category
func (d *Document) RemainingBeforeRepeat() map[string]int {
	out := make(map[string]int, len(d.Categories))
	for _, c := range d.Categories {
		out[c.ID] = len(c.Pool)
	}
	return out
}

// wireDocument is the persisted JSON layout
type wireDocument struct {
	Dishes      map[string][]string `json:"dishes"`
	CyclePools  map[string][]string `json:"cyclePools"`
	Servings    map[string]int      `json:"servings"`
	Enabled     map[string]bool     `json:"enabled"`
	LastCombo   map[string][]string `json:"lastCombo"`
	History     []HistoryEntry      `json:"history"`
	LastSavedAt *string             `json:"lastSavedAt"`
}

// MarshalJSON writes the document in the storage layout
func (d Document) MarshalJSON() ([]byte, error) {
	w := wireDocument{
		Dishes:     make(map[string][]string, len(d.Categories)),
		CyclePools: make(map[string][]string, len(d.Categories)),
		Servings:   make(map[string]int, len(d.Categories)),
		Enabled:    make(map[string]bool, len(d.Categories)),
		History:    d.History,
	}
	for _, c := range d.Categories {
		w.Dishes[c.ID] = nonNil(c.Dishes)
		w.CyclePools[c.ID] = nonNil(c.Pool)
		w.Servings[c.ID] = c.Servings
		w.Enabled[c.ID] = c.Enabled
	}
	if d.LastCombo != nil {
		w.LastCombo = make(map[string][]string, len(d.LastCombo))
		for k, v := range d.LastCombo {
			w.LastCombo[k] = nonNil(v)
		}
	}
	if w.History == nil {
		w.History = []HistoryEntry{}
	}
	if d.LastSavedAt != nil {
		s := d.LastSavedAt.UTC().Format(time.RFC3339Nano)
		w.LastSavedAt = &s
	}
	return json.Marshal(w)
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

// Backup wraps an exported document
type Backup struct {
	App        string    `json:"app"`
	Version    int       `json:"version"`
	ExportedAt time.Time `json:"exportedAt"`
	State      *Document `json:"state"`
}

// StateView is what clients see of the state: the document plus the number
// of dishes left in each pool before a repeat
type StateView struct {
	State     *Document      `json:"state"`
	Remaining map[string]int `json:"remaining"`
}

// NewStateView builds a view over doc
func NewStateView(doc *Document) StateView {
	return StateView{State: doc, Remaining: doc.RemainingBeforeRepeat()}
}

// WSMessage represents a WebSocket message
type WSMessage struct {
	Type    string      `json:"type"`
	Payload interface{} `json:"payload"`
}
