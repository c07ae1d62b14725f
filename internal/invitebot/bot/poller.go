package bot

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/aussiebroadwan/invitebot/pkg/slogx"
	"github.com/aussiebroadwan/invitebot/pkg/telegram"
)

// UpdateSource yields updates by long polling. *telegram.Client implements it.
type UpdateSource interface {
	GetUpdates(ctx context.Context, p telegram.GetUpdatesParams) ([]telegram.Update, error)
}

const (
	defaultPollTimeout = 30 * time.Second
	minPollBackoff     = time.Second
	maxPollBackoff     = time.Minute
)

// Poller fetches updates with getUpdates and hands each one to Handler on
// its own goroutine.
type Poller struct {
	Source  UpdateSource
	Handler UpdateHandler
	Logger  *slog.Logger

	// Timeout is the long-poll window sent to the server.
	Timeout time.Duration

	wg sync.WaitGroup
}

func NewPoller(source UpdateSource, handler UpdateHandler, logger *slog.Logger, timeout time.Duration) *Poller {
	if timeout <= 0 {
		timeout = defaultPollTimeout
	}
	return &Poller{
		Source:  source,
		Handler: handler,
		Logger:  logger,
		Timeout: timeout,
	}
}

// Run polls until ctx is cancelled, then waits for in-flight updates.
func (p *Poller) Run(ctx context.Context) error {
	defer p.wg.Wait()

	p.Logger.Info("update poller started", "timeout", p.Timeout)

	var offset int64
	backoff := minPollBackoff

	for {
		updates, err := p.Source.GetUpdates(ctx, telegram.GetUpdatesParams{
			Offset:         offset,
			Timeout:        int(p.Timeout.Seconds()),
			AllowedUpdates: []string{"message", "callback_query"},
		})
		if ctx.Err() != nil {
			p.Logger.Info("update poller stopped")
			return nil
		}
		if err != nil {
			wait := backoff
			var apiErr *telegram.APIError
			if errors.As(err, &apiErr) && apiErr.RetryAfter > 0 {
				wait = time.Duration(apiErr.RetryAfter) * time.Second
			}
			p.Logger.Warn("getUpdates failed", "error", err, "retry_in", wait)

			select {
			case <-ctx.Done():
				p.Logger.Info("update poller stopped")
				return nil
			case <-time.After(wait):
			}
			backoff = min(backoff*2, maxPollBackoff)
			continue
		}
		backoff = minPollBackoff

		for _, upd := range updates {
			offset = max(offset, upd.UpdateID+1)
			p.dispatch(ctx, upd)
		}
	}
}

func (p *Poller) dispatch(ctx context.Context, upd telegram.Update) {
	p.wg.Add(1)
	go func() {
		defer p.wg.Done()
		// A shutdown should not cut a reply in half.
		hctx := slogx.WithContext(context.WithoutCancel(ctx), p.Logger)
		if err := p.Handler.HandleUpdate(hctx, upd); err != nil {
			p.Logger.Error("failed to handle update", "update_id", upd.UpdateID, "error", err)
		}
	}()
}
