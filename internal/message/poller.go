package message

import (
	"context"
	"sync"
	"time"
)

// DefaultPollInterval is how often the inbox is refreshed.
const DefaultPollInterval = 5 * time.Second

// FetchFunc loads the inbox.
type FetchFunc func(ctx context.Context) ([]*Message, error)

// PollResult is one inbox fetch.
type PollResult struct {
	Messages []*Message
	Err      error
	At       time.Time
}

// Poller refreshes the inbox on a fixed interval while a screen is open.
//
// Start fetches once immediately and then once per interval. Stop cancels the
// loop and waits for it to exit, so no fetch starts after Stop returns. Results
// go to a channel holding at most one value; a newer result replaces one that
// was not yet received. A Poller runs once; create a new one per screen visit.
type Poller struct {
	fetch    FetchFunc
	interval time.Duration

	// newTicker is replaced in tests.
	newTicker func(time.Duration) (<-chan time.Time, func())

	results chan PollResult
	stopped chan struct{}

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewPoller creates a poller calling fetch every interval. A non-positive
// interval uses DefaultPollInterval.
func NewPoller(interval time.Duration, fetch FetchFunc) *Poller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &Poller{
		fetch:     fetch,
		interval:  interval,
		newTicker: realTicker,
		results:   make(chan PollResult, 1),
		stopped:   make(chan struct{}),
	}
}

func realTicker(d time.Duration) (<-chan time.Time, func()) {
	t := time.NewTicker(d)
	return t.C, t.Stop
}

// Start begins polling. Calling it again, or after Stop, does nothing.
func (p *Poller) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.started = true

	ctx, p.cancel = context.WithCancel(ctx)
	p.done = make(chan struct{})
	ticks, stopTicker := p.newTicker(p.interval)

	go func() {
		defer close(p.done)
		defer stopTicker()

		p.poll(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticks:
				p.poll(ctx)
			}
		}
	}()
}

// Stop cancels polling and waits for an in-flight fetch to return.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.started {
		p.started = true
		close(p.stopped)
		p.mu.Unlock()
		return
	}
	cancel, done := p.cancel, p.done
	p.cancel = nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
	close(p.stopped)
}

// Next blocks until a result is available or the poller is stopped.
func (p *Poller) Next() (PollResult, bool) {
	select {
	case r := <-p.results:
		return r, true
	case <-p.stopped:
		return PollResult{}, false
	}
}

// Results exposes the result channel.
func (p *Poller) Results() <-chan PollResult { return p.results }

func (p *Poller) poll(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	msgs, err := p.fetch(ctx)
	if ctx.Err() != nil {
		return
	}
	r := PollResult{Messages: msgs, Err: err, At: time.Now()}

	select {
	case p.results <- r:
		return
	default:
	}
	// Drop the stale result the reader has not picked up yet.
	select {
	case <-p.results:
	default:
	}
	select {
	case p.results <- r:
	default:
	}
}
