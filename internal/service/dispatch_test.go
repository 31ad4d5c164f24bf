package service

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/internal/repository"
)

func seedBundle(t *testing.T, repo *memRepo, b *model.Bundle) {
	t.Helper()
	require.NoError(t, repo.CreateBundle(context.Background(), b))
}

func TestDispatcher_UnknownCodeSendsNothing(t *testing.T) {
	repo := newMemRepo()
	tg := newFakeTG()
	d := NewDispatcher(repo, tg, 0, zerolog.Nop())

	_, err := d.Redeem(context.Background(), 10, "missing")
	assert.ErrorIs(t, err, repository.ErrNotFound)
	assert.Empty(t, tg.calls)
}

func TestDispatcher_DeliversInOrder(t *testing.T) {
	repo := newMemRepo()
	seedBundle(t, repo, &model.Bundle{Code: "c1", Title: "A & B", Items: []model.ContentItem{
		{Kind: model.KindVideo, Payload: "v1"},
		{Kind: model.KindText, Payload: "t1"},
		{Kind: model.KindPhoto, Payload: "p1"},
	}})
	tg := newFakeTG()
	d := NewDispatcher(repo, tg, 0, zerolog.Nop())

	rep, err := d.Redeem(context.Background(), 10, "c1")
	require.NoError(t, err)
	assert.Equal(t, DeliveryReport{Code: "c1", Sent: 3}, rep)

	require.Len(t, tg.calls, 4)
	assert.Equal(t, call{Method: "text", ChatID: 10, Payload: "<b>A &amp; B</b>"}, tg.calls[0])
	assert.Equal(t, call{Method: "video", ChatID: 10, Payload: "v1", Protect: true}, tg.calls[1])
	assert.Equal(t, call{Method: "text", ChatID: 10, Payload: "t1", Protect: true}, tg.calls[2])
	assert.Equal(t, call{Method: "photo", ChatID: 10, Payload: "p1", Protect: true}, tg.calls[3])
}

func TestDispatcher_FailedItemIsSkipped(t *testing.T) {
	repo := newMemRepo()
	seedBundle(t, repo, &model.Bundle{Code: "c1", Title: "T", Items: []model.ContentItem{
		{Kind: model.KindVideo, Payload: "v1"},
		{Kind: model.KindText, Payload: "t1"},
	}})
	tg := newFakeTG()
	tg.failOn["v1"] = true
	d := NewDispatcher(repo, tg, 0, zerolog.Nop())

	rep, err := d.Redeem(context.Background(), 10, "c1")
	require.NoError(t, err)
	assert.Equal(t, 1, rep.Sent)
	assert.Equal(t, 1, rep.Failed)

	texts := tg.byMethod("text")
	require.Len(t, texts, 2)
	assert.Equal(t, "t1", texts[1].Payload)
}

func TestDispatcher_CancelledContext(t *testing.T) {
	repo := newMemRepo()
	seedBundle(t, repo, &model.Bundle{Code: "c1", Items: []model.ContentItem{
		{Kind: model.KindText, Payload: "t1"},
		{Kind: model.KindText, Payload: "t2"},
	}})
	tg := newFakeTG()
	d := NewDispatcher(repo, tg, DefaultItemDelay, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	rep, err := d.Redeem(ctx, 10, "c1")
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 1, rep.Sent)
}

func TestDispatcher_PausesOnlyAfterDeliveredItems(t *testing.T) {
	repo := newMemRepo()
	seedBundle(t, repo, &model.Bundle{Code: "c1", Items: []model.ContentItem{
		{Kind: model.KindText, Payload: "t1"},
		{Kind: model.KindVideo, Payload: "broken"},
		{Kind: model.KindText, Payload: "t2"},
	}})
	tg := newFakeTG()
	tg.failOn["broken"] = true
	const delay = 50 * time.Millisecond
	d := NewDispatcher(repo, tg, delay, zerolog.Nop())

	start := time.Now()
	rep, err := d.Redeem(context.Background(), 10, "c1")
	elapsed := time.Since(start)

	require.NoError(t, err)
	assert.Equal(t, DeliveryReport{Code: "c1", Sent: 2, Failed: 1}, rep)
	assert.GreaterOrEqual(t, elapsed, 2*delay, "one pause per delivered item")
	assert.Less(t, elapsed, 3*delay, "no pause after the failed item")
}
