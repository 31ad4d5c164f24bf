package service

import (
	"context"
	"errors"
	"strings"
	"unicode"

	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/internal/repository"
)

// maxCodeLen is Telegram's limit for both the start parameter and the
// callback data carrying the code.
const maxCodeLen = 64

var (
	ErrEmptyCode      = errors.New("code is empty")
	ErrCodeWhitespace = errors.New("code contains whitespace")
	ErrCodeTooLong    = errors.New("code is too long")
	ErrCodeCharset    = errors.New("code may only contain letters, digits, _ and -")
	ErrEmptyBundle    = errors.New("bundle has no items")
)

type BundleService struct {
	repo repository.BundleRepository
}

func NewBundleService(repo repository.BundleRepository) *BundleService {
	return &BundleService{repo: repo}
}

// ValidateCode trims code and rejects empty or overlong values and anything
// outside Telegram's start parameter alphabet [A-Za-z0-9_-], so the deep
// link needs no escaping.
func ValidateCode(code string) (string, error) {
	code = strings.TrimSpace(code)
	switch {
	case code == "":
		return "", ErrEmptyCode
	case strings.IndexFunc(code, unicode.IsSpace) >= 0:
		return "", ErrCodeWhitespace
	case len(code) > maxCodeLen:
		return "", ErrCodeTooLong
	case strings.IndexFunc(code, notStartParamRune) >= 0:
		return "", ErrCodeCharset
	}
	return code, nil
}

// Create validates and atomically stores a new bundle. A taken code yields
// repository.ErrDuplicateCode.
func (s *BundleService) Create(ctx context.Context, code, title string, items []model.ContentItem) (*model.Bundle, error) {
	code, err := ValidateCode(code)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrEmptyBundle
	}
	b := &model.Bundle{
		Code:  code,
		Title: strings.TrimSpace(title),
		Items: append([]model.ContentItem(nil), items...),
	}
	if err := s.repo.CreateBundle(ctx, b); err != nil {
		return nil, err
	}
	return b, nil
}

func (s *BundleService) List(ctx context.Context) ([]model.BundleSummary, error) {
	return s.repo.ListBundles(ctx)
}

func notStartParamRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_', r == '-':
		return false
	}
	return true
}

// DeepLink builds the redemption link for code.
func DeepLink(botUsername, code string) string {
	return "https://t.me/" + botUsername + "?start=" + code
}
