package service

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/internal/repository"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

type appOpen struct {
	UserID   int64
	OpenedAt time.Time
}

type memRepo struct {
	mu       sync.Mutex
	users    map[int64]*model.User
	bundles  map[string]*model.Bundle
	opens    []appOpen
	settings map[string]string
	err      error
}

var (
	_ repository.UserRepository     = (*memRepo)(nil)
	_ repository.BundleRepository   = (*memRepo)(nil)
	_ repository.UsageRepository    = (*memRepo)(nil)
	_ repository.SettingsRepository = (*memRepo)(nil)
	_ repository.StatsRepository    = (*memRepo)(nil)
)

func newMemRepo() *memRepo {
	return &memRepo{
		users:    map[int64]*model.User{},
		bundles:  map[string]*model.Bundle{},
		settings: map[string]string{},
	}
}

func (m *memRepo) UpsertUser(ctx context.Context, u *model.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if old, ok := m.users[u.UserID]; ok {
		old.UserName, old.FirstName = u.UserName, u.FirstName
		return nil
	}
	c := *u
	m.users[u.UserID] = &c
	return nil
}

func (m *memRepo) ListUserIDs(ctx context.Context) ([]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids, nil
}

func (m *memRepo) CreateBundle(ctx context.Context, b *model.Bundle) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	if _, ok := m.bundles[b.Code]; ok {
		return repository.ErrDuplicateCode
	}
	c := *b
	c.Items = append([]model.ContentItem(nil), b.Items...)
	m.bundles[b.Code] = &c
	return nil
}

func (m *memRepo) GetBundle(ctx context.Context, code string) (*model.Bundle, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.bundles[code]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := *b
	return &c, nil
}

func (m *memRepo) ListBundles(ctx context.Context) ([]model.BundleSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	out := []model.BundleSummary{}
	for _, b := range m.bundles {
		out = append(out, model.BundleSummary{Code: b.Code, Title: b.Title})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out, nil
}

func (m *memRepo) RecordOpenIfIdle(ctx context.Context, userID int64, at time.Time, window time.Duration) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	for _, e := range m.opens {
		if e.UserID == userID && e.OpenedAt.After(at.Add(-window)) {
			return false, nil
		}
	}
	m.opens = append(m.opens, appOpen{UserID: userID, OpenedAt: at})
	return true, nil
}

func (m *memRepo) GetSetting(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return "", m.err
	}
	v, ok := m.settings[key]
	if !ok {
		return "", repository.ErrNotFound
	}
	return v, nil
}

func (m *memRepo) SetSetting(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return m.err
	}
	m.settings[key] = value
	return nil
}

func (m *memRepo) Stats(ctx context.Context, now time.Time) (model.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return model.Stats{}, m.err
	}
	return model.Stats{TotalUsers: len(m.users), TotalOpens: len(m.opens), TotalBundles: len(m.bundles)}, nil
}

// call is one recorded outgoing Telegram request.
type call struct {
	Method  string
	ChatID  int64
	Payload string
	Protect bool
}

type fakeTG struct {
	mu     sync.Mutex
	calls  []call
	failOn map[string]bool // keyed by payload or "copy:<chat id>"
	nextID int
}

func newFakeTG() *fakeTG { return &fakeTG{failOn: map[string]bool{}} }

func (f *fakeTG) record(method string, chatID int64, payload string, opts *telegram.SendOptions, failKey string) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c := call{Method: method, ChatID: chatID, Payload: payload}
	if opts != nil {
		c.Protect = opts.Protect
	}
	f.calls = append(f.calls, c)
	if f.failOn[failKey] {
		return 0, errors.New("forbidden: bot was blocked by the user")
	}
	f.nextID++
	return f.nextID, nil
}

func (f *fakeTG) SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (int, error) {
	return f.record("text", chatID, text, opts, text)
}

func (f *fakeTG) SendVideo(ctx context.Context, chatID int64, fileID string, opts *telegram.SendOptions) (int, error) {
	return f.record("video", chatID, fileID, opts, fileID)
}

func (f *fakeTG) SendDocument(ctx context.Context, chatID int64, fileID string, opts *telegram.SendOptions) (int, error) {
	return f.record("document", chatID, fileID, opts, fileID)
}

func (f *fakeTG) SendAudio(ctx context.Context, chatID int64, fileID string, opts *telegram.SendOptions) (int, error) {
	return f.record("audio", chatID, fileID, opts, fileID)
}

func (f *fakeTG) SendPhoto(ctx context.Context, chatID int64, fileID string, opts *telegram.SendOptions) (int, error) {
	return f.record("photo", chatID, fileID, opts, fileID)
}

func (f *fakeTG) CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int, opts *telegram.SendOptions) (int, error) {
	return f.record("copy", toChatID, "", opts, "copy:"+itoa(toChatID))
}

func (f *fakeTG) EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error {
	_, err := f.record("edit", chatID, text, nil, "edit")
	return err
}

func (f *fakeTG) byMethod(method string) []call {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []call
	for _, c := range f.calls {
		if c.Method == method {
			out = append(out, c)
		}
	}
	return out
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}

func TestUserService_TouchKeepsFirstSeen(t *testing.T) {
	repo := newMemRepo()
	svc := NewUserService(repo, repo)
	first := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return first }
	ctx := context.Background()

	require.NoError(t, svc.Touch(ctx, 1, "old", "Ann"))
	svc.now = func() time.Time { return first.Add(time.Hour) }
	require.NoError(t, svc.Touch(ctx, 1, "new", "Ann"))

	u := repo.users[1]
	assert.Equal(t, "new", u.UserName)
	assert.Equal(t, first, u.CreatedAt)
}

func TestUserService_Stats(t *testing.T) {
	repo := newMemRepo()
	svc := NewUserService(repo, repo)
	ctx := context.Background()
	require.NoError(t, svc.Touch(ctx, 1, "", ""))
	require.NoError(t, svc.Touch(ctx, 2, "", ""))

	st, err := svc.Stats(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, st.TotalUsers)

	repo.err = errors.New("db down")
	_, err = svc.Stats(ctx)
	assert.Error(t, err)
}
