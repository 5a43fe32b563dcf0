package picker

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/abrezinsky/iftarlantern/internal/models"
)

// ErrNoActiveCategory is returned when no category is enabled with servings above zero
var ErrNoActiveCategory = errors.New("no category is enabled with servings above zero")

// EmptyCategoryError lists the active categories that have no dishes
type EmptyCategoryError struct {
	IDs []string
}

func (e *EmptyCategoryError) Error() string {
	return fmt.Sprintf("no dishes to pick from in: %s", strings.Join(e.IDs, ", "))
}

// Draw is the outcome of one Generate call
type Draw struct {
	Combo    models.Combo
	Refilled []string
	At       time.Time
}

// DrawN removes up to n dishes from the category's pool and returns them in
// draw order. When the pool runs dry it is refilled with a fresh shuffle of
// the dish list. A dish is not picked twice in one call until every distinct
// dish has been picked once. The second result reports a refill.
func DrawN(cat *models.CategoryState, n int, rnd Rand) ([]string, bool) {
	picked := make([]string, 0, n)
	seen := make(map[string]bool, n)
	distinct := len(canonicalIndex(cat.Dishes))
	refilled := false

	for len(picked) < n {
		if len(cat.Pool) == 0 {
			if len(cat.Dishes) == 0 {
				break
			}
			cat.Pool = Shuffled(cat.Dishes, rnd)
			refilled = true
		}

		var candidates []int
		if len(seen) < distinct {
			candidates = make([]int, 0, len(cat.Pool))
			for i, name := range cat.Pool {
				if !seen[DishKey(name)] {
					candidates = append(candidates, i)
				}
			}
		}
		if len(candidates) == 0 {
			candidates = make([]int, len(cat.Pool))
			for i := range cat.Pool {
				candidates[i] = i
			}
		}

		idx := candidates[rnd.Intn(len(candidates))]
		name := cat.Pool[idx]
		cat.Pool = append(cat.Pool[:idx:idx], cat.Pool[idx+1:]...)
		picked = append(picked, name)
		seen[DishKey(name)] = true
	}

	return picked, refilled
}

// Generate draws a combo from every active category of doc, updating the
// pools, LastCombo and History in place. Inactive categories get an empty list.
// doc should already be reconciled.
func Generate(doc *models.Document, rnd Rand, now time.Time) (*Draw, error) {
	var active, empty []string
	for _, c := range doc.Categories {
		if !c.Active() {
			continue
		}
		active = append(active, c.ID)
		if len(c.Dishes) == 0 {
			empty = append(empty, c.ID)
		}
	}
	if len(active) == 0 {
		return nil, ErrNoActiveCategory
	}
	if len(empty) > 0 {
		return nil, &EmptyCategoryError{IDs: empty}
	}

	combo := make(models.Combo, len(doc.Categories))
	var refilled []string
	for i := range doc.Categories {
		c := &doc.Categories[i]
		n := 0
		if c.Active() {
			n = c.Servings
		}
		picked, r := DrawN(c, n, rnd)
		combo[c.ID] = picked
		if r {
			refilled = append(refilled, c.ID)
		}
	}

	doc.LastCombo = combo
	doc.History = append([]models.HistoryEntry{{Combo: combo.Clone(), At: now}}, doc.History...)
	if len(doc.History) > models.MaxHistory {
		doc.History = doc.History[:models.MaxHistory]
	}

	return &Draw{Combo: combo.Clone(), Refilled: refilled, At: now}, nil
}

// ResetPools refills every category's pool with a fresh shuffle of its dishes
func ResetPools(doc *models.Document, rnd Rand) {
	for i := range doc.Categories {
		c := &doc.Categories[i]
		c.Pool = Shuffled(c.Dishes, rnd)
	}
}
