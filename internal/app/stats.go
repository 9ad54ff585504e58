package app

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
)

// Stats are the dashboard counters.
type Stats struct {
	MyGroups int
	Messages int
	Unread   int64
}

// Stats fetches the dashboard counters in parallel. Any failure fails the
// whole call; the dashboard then shows zeros.
func (a *App) Stats(ctx context.Context) (Stats, error) {
	var s Stats
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		groups, err := a.Groups.Mine(ctx)
		if err != nil {
			return err
		}
		s.MyGroups = len(groups)
		return nil
	})
	g.Go(func() error {
		msgs, err := a.Messages.Inbox(ctx)
		if err != nil {
			return err
		}
		s.Messages = len(msgs)
		return nil
	})
	g.Go(func() error {
		n, err := a.Messages.UnreadCount(ctx)
		if err != nil {
			return err
		}
		s.Unread = n
		return nil
	})

	if err := g.Wait(); err != nil {
		return Stats{}, fmt.Errorf("dashboard stats: %w", err)
	}
	return s, nil
}
