package services_test

import (
	"context"
	"errors"
	"testing"

	"github.com/abrezinsky/iftarlantern/internal/logger"
	"github.com/abrezinsky/iftarlantern/internal/repository/mock"
	"github.com/abrezinsky/iftarlantern/internal/services"
	"github.com/abrezinsky/iftarlantern/internal/testutil"
)

func TestSettingsService_BaseURL(t *testing.T) {
	repo := testutil.NewTestRepository(t)
	svc := services.NewSettingsService(logger.Discard(), repo)
	ctx := context.Background()

	// Empty until detected
	url, err := svc.GetBaseURL(ctx)
	if err != nil {
		t.Fatalf("GetBaseURL failed: %v", err)
	}
	if url != "" {
		t.Errorf("expected empty base url, got %q", url)
	}

	if err := svc.SetBaseURL(ctx, "http://192.168.1.20:8080"); err != nil {
		t.Fatalf("SetBaseURL failed: %v", err)
	}

	url, err = svc.GetBaseURL(ctx)
	if err != nil {
		t.Fatalf("GetBaseURL failed: %v", err)
	}
	if url != "http://192.168.1.20:8080" {
		t.Errorf("expected saved base url, got %q", url)
	}
}

func TestSettingsService_RepositoryErrors(t *testing.T) {
	mockRepo := mock.NewRepository(testutil.NewTestRepository(t))
	svc := services.NewSettingsService(logger.Discard(), mockRepo)
	ctx := context.Background()

	mockRepo.GetSettingError = errors.New("database error")
	if _, err := svc.GetBaseURL(ctx); err == nil {
		t.Error("expected GetBaseURL to fail")
	}

	mockRepo.SetSettingError = errors.New("database error")
	if err := svc.SetBaseURL(ctx, "http://localhost:8080"); err == nil {
		t.Error("expected SetBaseURL to fail")
	}
}
