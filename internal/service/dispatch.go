package service

import (
	"context"
	"fmt"
	"html"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/ilinovom/linkvault-bot/internal/model"
	"github.com/ilinovom/linkvault-bot/internal/repository"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

// DefaultItemDelay throttles consecutive item deliveries of one redemption.
const DefaultItemDelay = 300 * time.Millisecond

// MediaSender is the part of the Telegram client used to deliver bundles.
type MediaSender interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (int, error)
	SendVideo(ctx context.Context, chatID int64, fileID string, opts *telegram.SendOptions) (int, error)
	SendDocument(ctx context.Context, chatID int64, fileID string, opts *telegram.SendOptions) (int, error)
	SendAudio(ctx context.Context, chatID int64, fileID string, opts *telegram.SendOptions) (int, error)
	SendPhoto(ctx context.Context, chatID int64, fileID string, opts *telegram.SendOptions) (int, error)
}

// DeliveryReport is the outcome of one redemption.
type DeliveryReport struct {
	Code   string
	Sent   int
	Failed int
}

// Dispatcher replays a stored bundle to a user.
type Dispatcher struct {
	bundles repository.BundleRepository
	tg      MediaSender
	delay   time.Duration
	log     zerolog.Logger
}

func NewDispatcher(bundles repository.BundleRepository, tg MediaSender, delay time.Duration, log zerolog.Logger) *Dispatcher {
	return &Dispatcher{bundles: bundles, tg: tg, delay: delay, log: log}
}

// Redeem sends the bundle stored under code to chatID: the title first, then
// every item in order with content protection. A failed item is counted and
// skipped; each delivered item is followed by a short pause. An unknown code
// returns repository.ErrNotFound before anything is sent.
func (d *Dispatcher) Redeem(ctx context.Context, chatID int64, code string) (DeliveryReport, error) {
	rep := DeliveryReport{Code: code}
	b, err := d.bundles.GetBundle(ctx, code)
	if err != nil {
		return rep, err
	}

	if strings.TrimSpace(b.Title) != "" {
		title := "<b>" + html.EscapeString(b.Title) + "</b>"
		if _, err := d.tg.SendMessage(ctx, chatID, title, &telegram.SendOptions{ParseMode: "HTML"}); err != nil {
			d.log.Warn().Err(err).Str("code", code).Int64("chat_id", chatID).Msg("send bundle title")
		}
	}

	opts := &telegram.SendOptions{Protect: true}
	for i, it := range b.Items {
		if err := d.sendItem(ctx, chatID, it, opts); err != nil {
			rep.Failed++
			d.log.Warn().Err(err).Str("code", code).Int("item", i).Str("kind", string(it.Kind)).
				Int64("chat_id", chatID).Msg("bundle item delivery failed")
			if ctx.Err() != nil {
				return rep, ctx.Err()
			}
			continue
		}
		rep.Sent++
		if err := sleepCtx(ctx, d.delay); err != nil {
			return rep, err
		}
	}
	d.log.Info().Str("code", code).Int64("chat_id", chatID).Int("sent", rep.Sent).Int("failed", rep.Failed).Msg("bundle redeemed")
	return rep, nil
}

func (d *Dispatcher) sendItem(ctx context.Context, chatID int64, it model.ContentItem, opts *telegram.SendOptions) error {
	var err error
	switch it.Kind {
	case model.KindText:
		_, err = d.tg.SendMessage(ctx, chatID, it.Payload, opts)
	case model.KindVideo:
		_, err = d.tg.SendVideo(ctx, chatID, it.Payload, opts)
	case model.KindDocument:
		_, err = d.tg.SendDocument(ctx, chatID, it.Payload, opts)
	case model.KindAudio:
		_, err = d.tg.SendAudio(ctx, chatID, it.Payload, opts)
	case model.KindPhoto:
		_, err = d.tg.SendPhoto(ctx, chatID, it.Payload, opts)
	default:
		err = fmt.Errorf("unsupported content kind %q", it.Kind)
	}
	return err
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
