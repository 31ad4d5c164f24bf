package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ilinovom/linkvault-bot/internal/model"
)

// dialect isolates the SQL differences between Postgres and SQLite.
type dialect interface {
	name() string
	// rebind rewrites "?" placeholders into the dialect's form.
	rebind(query string) string
	// timeArg converts a timestamp into the column representation.
	timeArg(t time.Time) any
	isDuplicate(err error) bool
	// lockUser serialises usage writes for one user inside tx.
	lockUser(ctx context.Context, tx *sql.Tx, userID int64) error
}

// SQLStore implements Store on database/sql. Every method runs as one short
// operation bounded by the configured timeout.
type SQLStore struct {
	db      *sql.DB
	d       dialect
	timeout time.Duration
	log     zerolog.Logger
}

var _ Store = (*SQLStore)(nil)

// Open connects to the store described by dsn and brings its schema up to
// date. postgres:// and postgresql:// select Postgres; sqlite://, file: and
// :memory: select SQLite.
func Open(ctx context.Context, dsn string, timeout time.Duration, log zerolog.Logger) (*SQLStore, error) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return openPostgres(ctx, dsn, timeout, log)
	case strings.HasPrefix(dsn, "sqlite://"), strings.HasPrefix(dsn, "file:"), dsn == ":memory:":
		return openSQLite(ctx, strings.TrimPrefix(dsn, "sqlite://"), timeout, log)
	}
	return nil, fmt.Errorf("unsupported DATABASE_URL scheme")
}

func (s *SQLStore) op(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.timeout)
}

func (s *SQLStore) q(query string) string { return s.d.rebind(query) }

func (s *SQLStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLStore) Ping(ctx context.Context) error {
	ctx, cancel := s.op(ctx)
	defer cancel()
	return s.db.PingContext(ctx)
}

func (s *SQLStore) UpsertUser(ctx context.Context, u *model.User) error {
	ctx, cancel := s.op(ctx)
	defer cancel()
	created := u.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}
	_, err := s.db.ExecContext(ctx, s.q(`
        INSERT INTO users (user_id, username, first_name, created_at)
        VALUES (?, ?, ?, ?)
        ON CONFLICT (user_id) DO UPDATE SET
            username = EXCLUDED.username,
            first_name = EXCLUDED.first_name`),
		u.UserID, nullStr(u.UserName), nullStr(u.FirstName), s.d.timeArg(created))
	if err != nil {
		return fmt.Errorf("upsert user %d: %w", u.UserID, err)
	}
	return nil
}

func (s *SQLStore) ListUserIDs(ctx context.Context) ([]int64, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT user_id FROM users ORDER BY created_at, user_id`)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()
	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

func (s *SQLStore) CreateBundle(ctx context.Context, b *model.Bundle) error {
	ctx, cancel := s.op(ctx)
	defer cancel()
	types, payloads := model.EncodeItems(b.Items)
	_, err := s.db.ExecContext(ctx, s.q(`INSERT INTO files (custom_code, title, file_type, file_id) VALUES (?, ?, ?, ?)`),
		b.Code, b.Title, types, payloads)
	if err != nil {
		if s.d.isDuplicate(err) {
			return ErrDuplicateCode
		}
		return fmt.Errorf("insert bundle %q: %w", b.Code, err)
	}
	return nil
}

func (s *SQLStore) GetBundle(ctx context.Context, code string) (*model.Bundle, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	var (
		title           sql.NullString
		types, payloads string
	)
	err := s.db.QueryRowContext(ctx, s.q(`SELECT title, file_type, file_id FROM files WHERE custom_code = ?`), code).
		Scan(&title, &types, &payloads)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get bundle %q: %w", code, err)
	}
	items, err := model.DecodeItems(types, payloads)
	if err != nil {
		return nil, fmt.Errorf("decode bundle %q: %w", code, err)
	}
	return &model.Bundle{Code: code, Title: title.String, Items: items}, nil
}

func (s *SQLStore) ListBundles(ctx context.Context) ([]model.BundleSummary, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	rows, err := s.db.QueryContext(ctx, `SELECT custom_code, title FROM files ORDER BY custom_code`)
	if err != nil {
		return nil, fmt.Errorf("list bundles: %w", err)
	}
	defer rows.Close()
	var out []model.BundleSummary
	for rows.Next() {
		var (
			b     model.BundleSummary
			title sql.NullString
		)
		if err := rows.Scan(&b.Code, &title); err != nil {
			return nil, err
		}
		b.Title = title.String
		out = append(out, b)
	}
	return out, rows.Err()
}

func (s *SQLStore) RecordOpenIfIdle(ctx context.Context, userID int64, at time.Time, window time.Duration) (bool, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("begin usage tx: %w", err)
	}
	defer tx.Rollback()

	if err := s.d.lockUser(ctx, tx, userID); err != nil {
		return false, fmt.Errorf("lock usage for %d: %w", userID, err)
	}
	var recent int
	err = tx.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM app_opens WHERE user_id = ? AND opened_at > ?`),
		userID, s.d.timeArg(at.Add(-window))).Scan(&recent)
	if err != nil {
		return false, fmt.Errorf("check usage for %d: %w", userID, err)
	}
	if recent > 0 {
		return false, tx.Commit()
	}
	if _, err := tx.ExecContext(ctx, s.q(`INSERT INTO app_opens (user_id, opened_at) VALUES (?, ?)`),
		userID, s.d.timeArg(at)); err != nil {
		return false, fmt.Errorf("insert usage for %d: %w", userID, err)
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("commit usage for %d: %w", userID, err)
	}
	return true, nil
}

func (s *SQLStore) GetSetting(ctx context.Context, key string) (string, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	var v string
	err := s.db.QueryRowContext(ctx, s.q(`SELECT value FROM settings WHERE key = ?`), key).Scan(&v)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("get setting %q: %w", key, err)
	}
	return v, nil
}

func (s *SQLStore) SetSetting(ctx context.Context, key, value string) error {
	ctx, cancel := s.op(ctx)
	defer cancel()
	_, err := s.db.ExecContext(ctx, s.q(`
        INSERT INTO settings (key, value) VALUES (?, ?)
        ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value`), key, value)
	if err != nil {
		return fmt.Errorf("set setting %q: %w", key, err)
	}
	return nil
}

func (s *SQLStore) Stats(ctx context.Context, now time.Time) (model.Stats, error) {
	ctx, cancel := s.op(ctx)
	defer cancel()
	y, m, d := now.UTC().Date()
	dayStart := s.d.timeArg(time.Date(y, m, d, 0, 0, 0, 0, time.UTC))
	since24h := s.d.timeArg(now.Add(-24 * time.Hour))

	var st model.Stats
	err := s.db.QueryRowContext(ctx, s.q(`
        SELECT
            (SELECT COUNT(*) FROM users),
            (SELECT COUNT(*) FROM users WHERE created_at >= ?),
            (SELECT COUNT(*) FROM app_opens),
            (SELECT COUNT(*) FROM app_opens WHERE opened_at >= ?),
            (SELECT COUNT(DISTINCT user_id) FROM app_opens WHERE opened_at >= ?),
            (SELECT COUNT(*) FROM files)`), dayStart, dayStart, since24h).
		Scan(&st.TotalUsers, &st.UsersToday, &st.TotalOpens, &st.OpensToday, &st.UniqueOpens24, &st.TotalBundles)
	if err != nil {
		return model.Stats{}, fmt.Errorf("stats: %w", err)
	}
	return st, nil
}

// rebindDollar turns "?" placeholders into $1..$n.
func rebindDollar(query string) string {
	var (
		b strings.Builder
		n int
	)
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func nullStr(v string) any {
	if strings.TrimSpace(v) == "" {
		return nil
	}
	return v
}
