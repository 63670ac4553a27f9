package viewmodel

import (
	"context"
	"sync"
	"time"

	"schoolcomm/client/internal/api"
)

// DefaultPollInterval paces the notifications badge poller.
const DefaultPollInterval = 15 * time.Second

// BadgePoller keeps the unread count fresh on a fixed interval. One
// timer per instance; a tick is skipped while the previous request is
// still in flight, so polls never overlap.
type BadgePoller struct {
	client   api.Notifications
	interval time.Duration

	mu       sync.Mutex
	count    int
	err      error
	inFlight bool
	stop     chan struct{}

	OnChange func()
}

func NewBadgePoller(client api.Notifications, interval time.Duration) *BadgePoller {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	return &BadgePoller{client: client, interval: interval}
}

func (p *BadgePoller) Count() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.count
}

func (p *BadgePoller) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Start polls immediately and then on every interval until Stop or
// context cancellation. Starting a running poller is a no-op.
func (p *BadgePoller) Start(ctx context.Context) {
	p.mu.Lock()
	if p.stop != nil {
		p.mu.Unlock()
		return
	}
	stop := make(chan struct{})
	p.stop = stop
	p.mu.Unlock()

	go func() {
		p.tick(ctx)
		ticker := time.NewTicker(p.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				p.tick(ctx)
			case <-stop:
				return
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop halts polling; idempotent.
func (p *BadgePoller) Stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.stop != nil {
		close(p.stop)
		p.stop = nil
	}
}

func (p *BadgePoller) tick(ctx context.Context) {
	p.mu.Lock()
	if p.inFlight {
		p.mu.Unlock()
		return
	}
	p.inFlight = true
	p.mu.Unlock()

	count, err := p.client.Badge(ctx)

	p.mu.Lock()
	p.inFlight = false
	if err != nil {
		if !api.IsAbort(err) {
			p.err = err
		}
	} else {
		p.count = count
		p.err = nil
	}
	p.mu.Unlock()
	p.notify()
}

func (p *BadgePoller) notify() {
	if p.OnChange != nil {
		p.OnChange()
	}
}
