package service

import (
	"context"
	"errors"
	"strings"

	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/internal/repository"
)

var (
	ErrEmptyValue = errors.New("value is empty")
	ErrInvalidURL = errors.New("url must start with http:// or https://")
)

// SettingsService manages the channel post button settings.
type SettingsService struct {
	repo     repository.SettingsRepository
	defaults model.ChannelButton
}

func NewSettingsService(repo repository.SettingsRepository, defaults model.ChannelButton) *SettingsService {
	return &SettingsService{repo: repo, defaults: defaults}
}

// Get returns the stored value for key, or def when it is absent.
func (s *SettingsService) Get(ctx context.Context, key, def string) (string, error) {
	v, err := s.repo.GetSetting(ctx, key)
	if errors.Is(err, repository.ErrNotFound) {
		return def, nil
	}
	if err != nil {
		return def, err
	}
	return v, nil
}

// ChannelButton resolves the button attached to channel posts. On a store
// error the defaults are returned together with the error.
func (s *SettingsService) ChannelButton(ctx context.Context) (model.ChannelButton, error) {
	name, err := s.Get(ctx, model.SettingChannelButtonName, s.defaults.Name)
	if err != nil {
		return s.defaults, err
	}
	url, err := s.Get(ctx, model.SettingChannelButtonURL, s.defaults.URL)
	if err != nil {
		return s.defaults, err
	}
	return model.ChannelButton{Name: name, URL: url}, nil
}

func (s *SettingsService) SetButtonName(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ErrEmptyValue
	}
	return s.repo.SetSetting(ctx, model.SettingChannelButtonName, name)
}

func (s *SettingsService) SetButtonURL(ctx context.Context, url string) error {
	url = strings.TrimSpace(url)
	if err := ValidateURL(url); err != nil {
		return err
	}
	return s.repo.SetSetting(ctx, model.SettingChannelButtonURL, url)
}

// ValidateURL accepts only http and https links.
func ValidateURL(url string) error {
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return ErrInvalidURL
	}
	return nil
}
