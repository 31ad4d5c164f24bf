package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/ilinovom/linkvault-bot/internal/repository"
	"github.com/ilinovom/linkvault-bot/pkg/telegram"
)

const (
	DefaultBroadcastDelay = 50 * time.Millisecond
	DefaultProgressEvery  = 10
)

// BroadcastMessenger is the part of the Telegram client used for fan-out.
type BroadcastMessenger interface {
	SendMessage(ctx context.Context, chatID int64, text string, opts *telegram.SendOptions) (int, error)
	CopyMessage(ctx context.Context, toChatID, fromChatID int64, messageID int, opts *telegram.SendOptions) (int, error)
	EditMessageText(ctx context.Context, chatID int64, messageID int, text string) error
}

// BroadcastReport summarises one fan-out job.
type BroadcastReport struct {
	JobID    string
	Total    int
	Success  int
	Failed   int
	Duration time.Duration
}

// Broadcaster copies one operator message to every known user.
type Broadcaster struct {
	users repository.UserRepository
	tg    BroadcastMessenger
	delay time.Duration
	every int
	log   zerolog.Logger
}

func NewBroadcaster(users repository.UserRepository, tg BroadcastMessenger, delay time.Duration, every int, log zerolog.Logger) *Broadcaster {
	if every <= 0 {
		every = DefaultProgressEvery
	}
	return &Broadcaster{users: users, tg: tg, delay: delay, every: every, log: log}
}

// Run snapshots the user set and copies message (fromChatID, messageID) to
// each user in order, protected from forwarding. Progress is reported to
// reportChatID by editing one status message. Only a failure to read the
// user snapshot aborts the job; per-recipient failures are counted.
func (b *Broadcaster) Run(ctx context.Context, reportChatID, fromChatID int64, messageID int) (BroadcastReport, error) {
	start := time.Now()
	rep := BroadcastReport{JobID: uuid.NewString()}
	log := b.log.With().Str("job", rep.JobID).Logger()

	ids, err := b.users.ListUserIDs(ctx)
	if err != nil {
		return rep, fmt.Errorf("broadcast snapshot: %w", err)
	}
	rep.Total = len(ids)
	log.Info().Int("total", rep.Total).Msg("broadcast job started")

	progressID, err := b.tg.SendMessage(ctx, reportChatID, fmt.Sprintf("Broadcast started. Users: %d", rep.Total), nil)
	if err != nil {
		log.Warn().Err(err).Msg("send broadcast progress message")
	}

	limit := rate.Inf
	if b.delay > 0 {
		limit = rate.Every(b.delay)
	}
	lim := rate.NewLimiter(limit, 1)
	opts := &telegram.SendOptions{Protect: true}

	for i, id := range ids {
		if err := lim.Wait(ctx); err != nil {
			rep.Duration = time.Since(start)
			return rep, err
		}
		if _, err := b.tg.CopyMessage(ctx, id, fromChatID, messageID, opts); err != nil {
			rep.Failed++
			log.Debug().Err(err).Int64("chat_id", id).Msg("broadcast send failed")
		} else {
			rep.Success++
		}
		done := i + 1
		if progressID != 0 && done%b.every == 0 && done < rep.Total {
			if err := b.tg.EditMessageText(ctx, reportChatID, progressID, fmt.Sprintf("Broadcasting... %d/%d", done, rep.Total)); err != nil {
				log.Debug().Err(err).Msg("edit broadcast progress")
			}
		}
	}
	rep.Duration = time.Since(start)

	summary := FormatBroadcastReport(rep)
	if progressID != 0 {
		err = b.tg.EditMessageText(ctx, reportChatID, progressID, summary)
	} else {
		_, err = b.tg.SendMessage(ctx, reportChatID, summary, nil)
	}
	if err != nil {
		log.Warn().Err(err).Msg("send broadcast summary")
	}

	ev := log.Info()
	if rep.Failed > 0 {
		ev = log.Warn()
	}
	ev.Int("total", rep.Total).Int("success", rep.Success).Int("failed", rep.Failed).
		Dur("dur", rep.Duration).Msg("broadcast job finished")
	return rep, nil
}

// FormatBroadcastReport renders the final summary shown to the operator.
func FormatBroadcastReport(r BroadcastReport) string {
	return fmt.Sprintf("Broadcast finished.\nTotal: %d\nSuccess: %d\nFailed: %d", r.Total, r.Success, r.Failed)
}
