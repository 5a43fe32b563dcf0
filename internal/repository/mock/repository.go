package mock

import (
	"context"

	"github.com/abrezinsky/iftarlantern/internal/repository"
)

// Repository wraps a real repository and allows injecting errors for testing.
// This provides a flexible way to test error paths without complex database manipulation.
//
// Usage:
//
//	realRepo := testutil.NewTestRepository(t)
//	mockRepo := mock.NewRepository(realRepo)
//	mockRepo.PutDocumentError = errors.New("disk full")
//	svc := services.NewPlannerService(log, mockRepo, registry, rnd)
//	_, err := svc.AddDish(ctx, "mains", "Fish")
//	// err will now contain the injected error
type Repository struct {
	repository.FullRepository

	// ===== Document Errors =====
	GetDocumentError error
	PutDocumentError error

	// GetDocumentErrors fails reads of individual keys
	GetDocumentErrors map[string]error

	// ===== Settings Errors =====
	GetSettingError error
	SetSettingError error

	// PutDocumentCalls counts writes that reached the real repository
	PutDocumentCalls int
}

// NewRepository creates a mock repository wrapping a real one
func NewRepository(real repository.FullRepository) *Repository {
	return &Repository{
		FullRepository: real,
	}
}

// ===== Document Methods =====

func (m *Repository) GetDocument(ctx context.Context, key string) ([]byte, error) {
	if m.GetDocumentError != nil {
		return nil, m.GetDocumentError
	}
	if err, ok := m.GetDocumentErrors[key]; ok {
		return nil, err
	}
	return m.FullRepository.GetDocument(ctx, key)
}

func (m *Repository) PutDocument(ctx context.Context, key string, value []byte) error {
	if m.PutDocumentError != nil {
		return m.PutDocumentError
	}
	m.PutDocumentCalls++
	return m.FullRepository.PutDocument(ctx, key, value)
}

// ===== Settings Methods =====

func (m *Repository) GetSetting(ctx context.Context, key string) (string, error) {
	if m.GetSettingError != nil {
		return "", m.GetSettingError
	}
	return m.FullRepository.GetSetting(ctx, key)
}

func (m *Repository) SetSetting(ctx context.Context, key, value string) error {
	if m.SetSettingError != nil {
		return m.SetSettingError
	}
	return m.FullRepository.SetSetting(ctx, key, value)
}

// Ensure mock implements the interface
var _ repository.FullRepository = (*Repository)(nil)
