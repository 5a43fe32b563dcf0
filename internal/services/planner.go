package services

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/abrezinsky/iftarlantern/internal/categories"
	"github.com/abrezinsky/iftarlantern/internal/errors"
	"github.com/abrezinsky/iftarlantern/internal/logger"
	"github.com/abrezinsky/iftarlantern/internal/models"
	"github.com/abrezinsky/iftarlantern/internal/picker"
	"github.com/abrezinsky/iftarlantern/internal/repository"
)

const (
	// AppName identifies exported backups and shared text
	AppName = "Iftar Lantern"
	// BackupVersion is written to exported backups
	BackupVersion = 2
)

// GenerateResult is the outcome of drawing a combo
type GenerateResult struct {
	Combo     models.Combo   `json:"combo"`
	Refilled  []string       `json:"refilled"`
	Remaining map[string]int `json:"remaining"`
	At        time.Time      `json:"at"`
}

// PlannerService owns the picker state document. Every mutation works on a
// copy that replaces the live document only once it has been saved.
type PlannerService struct {
	log         logger.Logger
	repo        repository.DocumentRepository
	registry    *categories.Registry
	rnd         picker.Rand
	now         func() time.Time
	broadcaster Broadcaster

	mu             sync.Mutex
	doc            *models.Document
	warnedFallback bool
}

// NewPlannerService creates a PlannerService holding the default state until Load is called
func NewPlannerService(log logger.Logger, repo repository.DocumentRepository, registry *categories.Registry, rnd picker.Rand) *PlannerService {
	s := &PlannerService{
		log:      log,
		repo:     repo,
		registry: registry,
		rnd:      rnd,
		now:      time.Now,
	}
	s.doc = picker.Normalize(nil, registry, rnd, s.now())
	return s
}

// SetBroadcaster sets the broadcaster for sending updates to clients
func (s *PlannerService) SetBroadcaster(b Broadcaster) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.broadcaster = b
}

// SetClock replaces the time source
func (s *PlannerService) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Categories returns the registry in display order
func (s *PlannerService) Categories() []categories.Category {
	return s.registry.All()
}

// Load reads the stored document, trying the current key and then the legacy
// keys in order. Unreadable documents are skipped; when nothing usable is
// stored the picker starts from defaults.
func (s *PlannerService) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	keys := append([]string{picker.StorageKey}, picker.LegacyStorageKeys...)
	for _, key := range keys {
		raw, err := s.repo.GetDocument(ctx, key)
		if stderrors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("failed to read state %s: %w", key, err)
		}

		draft, schema, err := picker.DecodeDocument(raw, s.registry)
		if err != nil {
			s.log.Debug("skipping unreadable state", "key", key, "error", err)
			continue
		}

		s.doc = picker.Normalize(draft, s.registry, s.rnd, s.now())
		s.log.Info("state loaded", "key", key, "schema", schema.String())
		return nil
	}

	s.doc = picker.Normalize(nil, s.registry, s.rnd, s.now())
	s.log.Info("no saved state, starting from defaults")
	return nil
}

// Save writes the current document under the current storage key
func (s *PlannerService) Save(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.doc.Clone()
	if err := s.persist(ctx, next); err != nil {
		return err
	}
	s.doc = next
	return nil
}

// State returns a copy of the current document with its pool counts
func (s *PlannerService) State(ctx context.Context) models.StateView {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.NewStateView(s.doc.Clone())
}

// RemainingBeforeRepeat returns the pool size of every category
func (s *PlannerService) RemainingBeforeRepeat(ctx context.Context) map[string]int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.doc.RemainingBeforeRepeat()
}

// AddDish appends a dish to a category and slots it into the current pool at
// a random position. Returns the canonical name.
func (s *PlannerService) AddDish(ctx context.Context, categoryID, raw string) (string, error) {
	name := picker.CanonicalName(raw)

	_, err := s.mutate(ctx, true, func(doc *models.Document) error {
		st, cat, err := s.lookup(doc, categoryID)
		if err != nil {
			return err
		}
		if name == "" {
			return errors.Validation("type a dish name first")
		}
		if picker.ContainsDish(st.Dishes, name) {
			return errors.Validationf("%q is already in %s", name, cat.Label)
		}
		st.Dishes = append(st.Dishes, name)
		st.Pool = picker.InsertAtRandom(st.Pool, name, s.rnd)
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Debug("dish added", "category", categoryID, "dish", name)
	return name, nil
}

// RemoveDish removes the dish at index from a category and from its pool.
// Returns the removed name.
func (s *PlannerService) RemoveDish(ctx context.Context, categoryID string, index int) (string, error) {
	var removed string

	_, err := s.mutate(ctx, true, func(doc *models.Document) error {
		st, cat, err := s.lookup(doc, categoryID)
		if err != nil {
			return err
		}
		if index < 0 || index >= len(st.Dishes) {
			return errors.InvalidInputf("dish index %d is out of range for %s", index, cat.Label)
		}

		removed = st.Dishes[index]
		st.Dishes = append(st.Dishes[:index:index], st.Dishes[index+1:]...)

		key := picker.DishKey(removed)
		pool := st.Pool[:0:0]
		for _, p := range st.Pool {
			if picker.DishKey(p) != key {
				pool = append(pool, p)
			}
		}
		st.Pool = pool
		return nil
	})
	if err != nil {
		return "", err
	}

	s.log.Debug("dish removed", "category", categoryID, "dish", removed)
	return removed, nil
}

// SetServings sets how many dishes a category contributes to each combo.
// The value is clamped to the category's bounds; the effective value is returned.
func (s *PlannerService) SetServings(ctx context.Context, categoryID string, servings int) (int, error) {
	doc, err := s.mutate(ctx, true, func(doc *models.Document) error {
		st, _, err := s.lookup(doc, categoryID)
		if err != nil {
			return err
		}
		st.Servings = servings
		return nil
	})
	if err != nil {
		return 0, err
	}

	effective := doc.Category(categoryID).Servings
	s.log.Debug("servings updated", "category", categoryID, "requested", servings, "servings", effective)
	return effective, nil
}

// SetEnabled turns a category on or off. Disabling clears the category from
// the last combo; history is left alone.
func (s *PlannerService) SetEnabled(ctx context.Context, categoryID string, enabled bool) error {
	_, err := s.mutate(ctx, true, func(doc *models.Document) error {
		st, _, err := s.lookup(doc, categoryID)
		if err != nil {
			return err
		}
		st.Enabled = enabled
		if !enabled && doc.LastCombo != nil {
			doc.LastCombo[categoryID] = []string{}
		}
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Debug("category toggled", "category", categoryID, "enabled", enabled)
	return nil
}

// GenerateCombo draws a new combo from every active category
func (s *PlannerService) GenerateCombo(ctx context.Context) (*GenerateResult, error) {
	var draw *picker.Draw

	// No reconcile: an emptied pool has to refill inside the draw so the
	// refill is reported.
	doc, err := s.mutate(ctx, false, func(doc *models.Document) error {
		d, err := picker.Generate(doc, s.rnd, s.now())
		if err != nil {
			return s.drawError(err)
		}
		draw = d
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.checkRandFallback()

	result := &GenerateResult{
		Combo:     draw.Combo,
		Refilled:  draw.Refilled,
		Remaining: doc.RemainingBeforeRepeat(),
		At:        draw.At,
	}
	if result.Refilled == nil {
		result.Refilled = []string{}
	}
	s.log.Info("combo generated", "refilled", strings.Join(result.Refilled, ","))
	return result, nil
}

// ResetAllPools starts a fresh no-repeat cycle in every category
func (s *PlannerService) ResetAllPools(ctx context.Context) error {
	_, err := s.mutate(ctx, true, func(doc *models.Document) error {
		picker.ResetPools(doc, s.rnd)
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("no-repeat pools reset")
	return nil
}

// ClearHistory drops every history entry. Returns ErrHistoryEmpty when there
// is nothing to clear.
func (s *PlannerService) ClearHistory(ctx context.Context) error {
	_, err := s.mutate(ctx, true, func(doc *models.Document) error {
		if len(doc.History) == 0 {
			return ErrHistoryEmpty
		}
		doc.History = []models.HistoryEntry{}
		return nil
	})
	if err != nil {
		return err
	}
	s.log.Info("history cleared")
	return nil
}

// ExportDocument wraps a copy of the current document for backup
func (s *PlannerService) ExportDocument(ctx context.Context) *models.Backup {
	s.mu.Lock()
	defer s.mu.Unlock()

	return &models.Backup{
		App:        AppName,
		Version:    BackupVersion,
		ExportedAt: s.now().UTC(),
		State:      s.doc.Clone(),
	}
}

// ExportJSON returns the backup as indented JSON
func (s *PlannerService) ExportJSON(ctx context.Context) ([]byte, error) {
	data, err := json.MarshalIndent(s.ExportDocument(ctx), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to encode backup: %w", err)
	}
	return data, nil
}

// ImportDocument replaces the whole state with a backup. raw may be a backup
// wrapper or a bare state document of any stored layout. Anything that is not
// a JSON object is rejected and the state is left unchanged.
func (s *PlannerService) ImportDocument(ctx context.Context, raw []byte) error {
	inner, err := picker.UnwrapBackup(raw)
	if err != nil {
		return &ImportFormatError{Reason: "expected a JSON object", Err: err}
	}
	draft, schema, err := picker.DecodeDocument(inner, s.registry)
	if err != nil {
		return &ImportFormatError{Reason: "state is not a JSON object", Err: err}
	}

	_, err = s.mutate(ctx, false, func(doc *models.Document) error {
		*doc = *picker.Normalize(draft, s.registry, s.rnd, s.now())
		return nil
	})
	if err != nil {
		return err
	}

	s.log.Info("backup imported", "schema", schema.String())
	return nil
}

// StatusMessage describes a generated combo for the status line
func (s *PlannerService) StatusMessage(result *GenerateResult) string {
	var b strings.Builder
	b.WriteString("Meal generated.")

	if len(result.Refilled) > 0 {
		labels := make([]string, len(result.Refilled))
		for i, id := range result.Refilled {
			labels[i] = s.registry.Label(id)
		}
		fmt.Fprintf(&b, " New no-repeat pool started for %s.", strings.Join(labels, ", "))
	}

	var parts []string
	for _, cat := range s.registry.All() {
		if len(result.Combo[cat.ID]) == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s %d", cat.Singular, result.Remaining[cat.ID]))
	}
	if len(parts) > 0 {
		fmt.Fprintf(&b, " Remaining before repeat: %s.", strings.Join(parts, ", "))
	}
	return b.String()
}

// mutate applies fn to a copy of the document, optionally reconciles it,
// saves it and makes it live. On any error the live document is unchanged.
// The broadcast happens under s.mu so clients see commits in order.
// Returns a copy of the committed document.
func (s *PlannerService) mutate(ctx context.Context, reconcile bool, fn func(doc *models.Document) error) (*models.Document, error) {
	s.mu.Lock()
	next := s.doc.Clone()
	err := fn(next)
	if err == nil {
		if reconcile {
			next = picker.Reconcile(next, s.registry, s.rnd)
		}
		err = s.persist(ctx, next)
	}
	if err != nil {
		s.mu.Unlock()
		return nil, err
	}
	s.doc = next
	committed := next.Clone()
	if s.broadcaster != nil {
		s.broadcaster.BroadcastState(models.NewStateView(committed.Clone()))
	}
	s.mu.Unlock()
	return committed, nil
}

// persist stamps and writes doc. Caller holds s.mu.
func (s *PlannerService) persist(ctx context.Context, doc *models.Document) error {
	saved := s.now().UTC()
	doc.LastSavedAt = &saved

	data, err := json.Marshal(doc)
	if err != nil {
		return errors.Wrap(err, errors.ErrInternal, "failed to encode state")
	}
	if err := s.repo.PutDocument(ctx, picker.StorageKey, data); err != nil {
		s.log.Error("failed to save state", "error", err)
		return errors.Wrap(err, errors.ErrInternal, "failed to save state")
	}
	return nil
}

func (s *PlannerService) lookup(doc *models.Document, id string) (*models.CategoryState, categories.Category, error) {
	cat, ok := s.registry.Get(id)
	st := doc.Category(id)
	if !ok || st == nil {
		return nil, categories.Category{}, errors.NotFoundf("category %q not found", id)
	}
	return st, cat, nil
}

func (s *PlannerService) drawError(err error) error {
	if stderrors.Is(err, picker.ErrNoActiveCategory) {
		return ErrNoActiveCategory
	}
	var empty *picker.EmptyCategoryError
	if stderrors.As(err, &empty) {
		labels := make([]string, len(empty.IDs))
		for i, id := range empty.IDs {
			labels[i] = s.registry.Label(id)
		}
		return &EmptyCategoryError{IDs: empty.IDs, Categories: labels}
	}
	return err
}

func (s *PlannerService) checkRandFallback() {
	cr, ok := s.rnd.(*picker.CryptoRand)
	if !ok {
		return
	}
	fallback, err := cr.Fallback()
	if !fallback {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.warnedFallback {
		s.warnedFallback = true
		s.log.Warn("secure random source unavailable, using math/rand", "error", err)
	}
}
