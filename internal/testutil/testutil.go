package testutil

import (
	"testing"

	"github.com/abrezinsky/iftarlantern/internal/picker"
	"github.com/abrezinsky/iftarlantern/internal/repository"
)

// NewTestRepository creates a new in-memory repository for testing.
// Each call creates a fresh database with all migrations applied.
func NewTestRepository(t *testing.T) *repository.Repository {
	t.Helper()

	repo, err := repository.New(":memory:")
	if err != nil {
		t.Fatalf("failed to create test repository: %v", err)
	}

	t.Cleanup(func() {
		repo.Close()
	})

	return repo
}

// NewRand returns deterministic randomness so draws repeat across runs
func NewRand(seed uint64) picker.Rand {
	return picker.NewSeededRand(seed)
}
