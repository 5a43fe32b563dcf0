package services

import (
	"context"

	"github.com/abrezinsky/iftarlantern/internal/categories"
	"github.com/abrezinsky/iftarlantern/internal/models"
)

// Broadcaster defines the interface for broadcasting messages to clients
type Broadcaster interface {
	BroadcastState(view models.StateView)
}

// PlannerServicer defines the interface for picker state operations
type PlannerServicer interface {
	Load(ctx context.Context) error
	Save(ctx context.Context) error
	State(ctx context.Context) models.StateView
	Categories() []categories.Category
	AddDish(ctx context.Context, categoryID, raw string) (string, error)
	RemoveDish(ctx context.Context, categoryID string, index int) (string, error)
	SetServings(ctx context.Context, categoryID string, servings int) (int, error)
	SetEnabled(ctx context.Context, categoryID string, enabled bool) error
	GenerateCombo(ctx context.Context) (*GenerateResult, error)
	ResetAllPools(ctx context.Context) error
	ClearHistory(ctx context.Context) error
	ExportDocument(ctx context.Context) *models.Backup
	ExportJSON(ctx context.Context) ([]byte, error)
	ImportDocument(ctx context.Context, raw []byte) error
	RemainingBeforeRepeat(ctx context.Context) map[string]int
	StatusMessage(result *GenerateResult) string
	ComboText(ctx context.Context) (string, error)
	ComboQR(ctx context.Context, size int) ([]byte, error)
	HistoryWorkbook(ctx context.Context) ([]byte, error)
	SetBroadcaster(b Broadcaster)
}

// SettingsServicer defines the interface for settings operations
type SettingsServicer interface {
	GetBaseURL(ctx context.Context) (string, error)
	SetBaseURL(ctx context.Context, url string) error
}

// Ensure concrete types implement interfaces
var (
	_ PlannerServicer  = (*PlannerService)(nil)
	_ SettingsServicer = (*SettingsService)(nil)
)
