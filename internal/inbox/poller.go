package inbox

import (
	"context"
	"log/slog"
	"time"

	"github.com/byro/cli/internal/api"
)

// Poller re-fetches a single item at a fixed interval while its status
// is processing. The fetch runs inline in the tick loop, so there is
// never more than one outstanding request per watched item; a tick that
// fires while a fetch is still running is simply absorbed.
type Poller struct {
	backend  Backend
	interval time.Duration
	logger   *slog.Logger
}

// NewPoller creates a poller with the given fetch interval.
func NewPoller(backend Backend, interval time.Duration, logger *slog.Logger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Poller{backend: backend, interval: interval, logger: logger}
}

// Watch polls the given item until its status leaves processing or ctx is
// canceled, sending each fresh record on the returned channel. The channel
// is closed when polling stops. An item that no longer needs polling
// yields an already-closed channel.
//
// Transient fetch failures are logged and retried on the next tick; they
// never surface on the channel and never change the item's status.
func (p *Poller) Watch(ctx context.Context, item api.InboxItem) <-chan api.InboxItem {
	updates := make(chan api.InboxItem, 1)
	if !item.Status.ShouldPoll() {
		close(updates)
		return updates
	}

	go func() {
		defer close(updates)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
			}

			fresh, err := p.backend.GetInboxItem(ctx, item.ID)
			if err != nil {
				if ctx.Err() != nil {
					return
				}
				p.logger.Warn("poll fetch failed, retrying next tick", "item", item.ID, "err", err)
				continue
			}

			select {
			case updates <- *fresh:
			case <-ctx.Done():
				return
			}

			if !fresh.Status.ShouldPoll() {
				p.logger.Info("polling finished", "item", item.ID, "status", string(fresh.Status))
				return
			}
		}
	}()

	return updates
}
