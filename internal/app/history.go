package app

import (
	"context"

	"randommotd/internal/eventbus"
	"randommotd/internal/motd"
	"randommotd/internal/storage"
	logx "randommotd/pkg/logx"
)

// recordHistory appends every applied status to the store until ctx is done.
// Write failures are logged and skipped.
func recordHistory(ctx context.Context, events <-chan eventbus.Event, store storage.Store, log logx.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-events:
			if !ok {
				return nil
			}
			if e.Type != motd.EventUpdated {
				continue
			}
			u, ok := e.Data.(motd.Update)
			if !ok {
				log.Warn("unexpected event payload", logx.String("type", e.Type))
				continue
			}
			entry := storage.Entry{ID: u.ID, At: u.At, Index: u.Index, Raw: u.Raw, Text: u.Text}
			if err := store.AppendHistory(ctx, entry); err != nil {
				log.Warn("history append failed", logx.String("id", u.ID), logx.Err(err))
				continue
			}
			log.Trace("history appended", logx.String("id", u.ID), logx.Int("index", u.Index))
		}
	}
}
