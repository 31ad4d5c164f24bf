package service

import (
	"context"
	"time"

	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/internal/repository"
)

type UserService struct {
	repo  repository.UserRepository
	stats repository.StatsRepository
	now   func() time.Time
}

func NewUserService(repo repository.UserRepository, stats repository.StatsRepository) *UserService {
	return &UserService{repo: repo, stats: stats, now: time.Now}
}

// Touch records an interaction: the user is inserted on first contact and
// has its display fields refreshed afterwards.
func (s *UserService) Touch(ctx context.Context, userID int64, username, firstName string) error {
	return s.repo.UpsertUser(ctx, &model.User{
		UserID:    userID,
		UserName:  username,
		FirstName: firstName,
		CreatedAt: s.now(),
	})
}

// Stats returns the operator dashboard counters.
func (s *UserService) Stats(ctx context.Context) (model.Stats, error) {
	return s.stats.Stats(ctx, s.now())
}
