package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStore struct{ err error }

func (f *fakeStore) Ping(ctx context.Context) error { return f.err }

type fakeTracker struct {
	calls []int64
	err   error
}

func (f *fakeTracker) RecordOpen(ctx context.Context, userID int64, now time.Time) (bool, error) {
	f.calls = append(f.calls, userID)
	return len(f.calls) == 1, f.err
}

func do(t *testing.T, s *Server, method, target, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.Handler().ServeHTTP(rec, req)
	return rec
}

func TestHome(t *testing.T) {
	s := New(zerolog.Nop(), "", &fakeStore{}, &fakeTracker{})
	rec := do(t, s, http.MethodGet, "/", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Bot is Online", rec.Body.String())
}

func TestHealth(t *testing.T) {
	st := &fakeStore{}
	s := New(zerolog.Nop(), "", st, &fakeTracker{})
	assert.Equal(t, http.StatusOK, do(t, s, http.MethodGet, "/healthz", "").Code)

	st.err = errors.New("down")
	assert.Equal(t, http.StatusServiceUnavailable, do(t, s, http.MethodGet, "/healthz", "").Code)
}

func TestTrack(t *testing.T) {
	tr := &fakeTracker{}
	s := New(zerolog.Nop(), "", &fakeStore{}, tr)

	rec := do(t, s, http.MethodPost, "/api/track", `{"user_id": 77}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"success"}`, rec.Body.String())

	rec = do(t, s, http.MethodPost, "/api/track?user_id=77", "")
	require.Equal(t, http.StatusOK, rec.Code, "duplicate open is still acknowledged")
	assert.Equal(t, []int64{77, 77}, tr.calls)
}

func TestTrack_BadRequests(t *testing.T) {
	tr := &fakeTracker{}
	s := New(zerolog.Nop(), "", &fakeStore{}, tr)

	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/track", `{}`).Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/track?user_id=abc", "").Code)
	assert.Equal(t, http.StatusBadRequest, do(t, s, http.MethodPost, "/api/track", `{"user_id":"x"}`).Code)
	assert.Empty(t, tr.calls)
}

func TestTrack_StoreError(t *testing.T) {
	tr := &fakeTracker{err: errors.New("db down")}
	s := New(zerolog.Nop(), "", &fakeStore{}, tr)
	assert.Equal(t, http.StatusInternalServerError, do(t, s, http.MethodPost, "/api/track", `{"user_id": 1}`).Code)
}
