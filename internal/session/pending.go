package session

import (
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

type pendingEntry struct {
	ticketID string
	setAt    time.Time
}

// Pending maps an operator id to the ticket they are replying to. With a
// positive TTL, entries older than TTL read as absent and are dropped by Sweep.
type Pending struct {
	TTL time.Duration
	Now func() time.Time

	mu      sync.Mutex
	entries map[int64]pendingEntry
}

func NewPending(ttl time.Duration) *Pending {
	return &Pending{TTL: ttl, Now: time.Now, entries: map[int64]pendingEntry{}}
}

func (p *Pending) now() time.Time {
	if p.Now == nil {
		return time.Now()
	}
	return p.Now()
}

func (p *Pending) expired(e pendingEntry, at time.Time) bool {
	return p.TTL > 0 && at.Sub(e.setAt) >= p.TTL
}

func (p *Pending) Get(operatorID int64) (string, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e, ok := p.entries[operatorID]
	if !ok {
		return "", false
	}
	if p.expired(e, p.now()) {
		delete(p.entries, operatorID)
		return "", false
	}
	return e.ticketID, true
}

func (p *Pending) Set(operatorID int64, ticketID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.entries[operatorID] = pendingEntry{ticketID: ticketID, setAt: p.now()}
}

func (p *Pending) Clear(operatorID int64) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.entries, operatorID)
}

// Sweep drops expired entries and returns how many were removed.
func (p *Pending) Sweep() int {
	if p.TTL <= 0 {
		return 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	at := p.now()
	removed := 0
	for id, e := range p.entries {
		if p.expired(e, at) {
			delete(p.entries, id)
			removed++
		}
	}
	return removed
}

// StartSweeper runs Sweep on the given cron schedule. The caller stops the
// returned scheduler on shutdown.
func (p *Pending) StartSweeper(schedule string, logger zerolog.Logger) (*cron.Cron, error) {
	c := cron.New()
	_, err := c.AddFunc(schedule, func() {
		if n := p.Sweep(); n > 0 {
			logger.Info().Int("removed", n).Msg("expired pending replies swept")
		}
	})
	if err != nil {
		return nil, err
	}
	c.Start()
	return c, nil
}
