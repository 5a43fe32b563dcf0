package services

import (
	"context"
	"errors"

	"github.com/abrezinsky/iftarlantern/internal/logger"
	"github.com/abrezinsky/iftarlantern/internal/repository"
)

const settingBaseURL = "base_url"

// SettingsService handles settings-related business logic
type SettingsService struct {
	log  logger.Logger
	repo repository.SettingsRepository
}

// NewSettingsService creates a new SettingsService
func NewSettingsService(log logger.Logger, repo repository.SettingsRepository) *SettingsService {
	return &SettingsService{log: log, repo: repo}
}

// GetBaseURL returns the URL the picker is reachable at on the local network
func (s *SettingsService) GetBaseURL(ctx context.Context) (string, error) {
	value, err := s.repo.GetSetting(ctx, settingBaseURL)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return "", nil // Not yet detected
		}
		return "", err
	}
	return value, nil
}

// SetBaseURL saves the application base URL
func (s *SettingsService) SetBaseURL(ctx context.Context, url string) error {
	if err := s.repo.SetSetting(ctx, settingBaseURL, url); err != nil {
		return err
	}
	s.log.Debug("base url updated", "url", url)
	return nil
}
