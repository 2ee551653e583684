package session

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/SoeMoeHtet18/telegram-bot/internal/models"
)

type PendingReplies interface {
	Get(operatorID int64) (string, bool)
	Set(operatorID int64, ticketID string)
	Clear(operatorID int64)
}

type BrowsingSessions interface {
	Get(userID int64) (models.BrowsingSession, bool)
	Set(userID int64, s models.BrowsingSession)
}

// Registry holds the two independent session stores. All operations are
// total; a missing entry is reported through the bool result only.
type Registry struct {
	Pending  PendingReplies
	Browsing BrowsingSessions

	closers []func() error
	sweeper *cron.Cron
}

type Options struct {
	PendingTTL    time.Duration
	SweepSchedule string
	BrowsingTTL   time.Duration
}

func NewRegistry(ctx context.Context, opts Options, logger zerolog.Logger) (*Registry, error) {
	r := &Registry{}

	pending := NewPending(opts.PendingTTL)
	r.Pending = pending
	if opts.PendingTTL > 0 && opts.SweepSchedule != "" {
		c, err := pending.StartSweeper(opts.SweepSchedule, logger)
		if err != nil {
			return nil, err
		}
		r.sweeper = c
	}

	if opts.BrowsingTTL > 0 {
		cb, err := NewCacheBrowsing(ctx, opts.BrowsingTTL, logger)
		if err != nil {
			r.Close()
			return nil, err
		}
		r.Browsing = cb
		r.closers = append(r.closers, cb.Close)
	} else {
		r.Browsing = NewMapBrowsing()
	}
	return r, nil
}

// NewMemoryRegistry builds a registry with no expiry.
func NewMemoryRegistry() *Registry {
	return &Registry{Pending: NewPending(0), Browsing: NewMapBrowsing()}
}

func (r *Registry) GetPendingReply(operatorID int64) (string, bool) {
	return r.Pending.Get(operatorID)
}

func (r *Registry) SetPendingReply(operatorID int64, ticketID string) {
	r.Pending.Set(operatorID, ticketID)
}

func (r *Registry) ClearPendingReply(operatorID int64) {
	r.Pending.Clear(operatorID)
}

func (r *Registry) GetBrowsingSession(userID int64) (models.BrowsingSession, bool) {
	return r.Browsing.Get(userID)
}

func (r *Registry) SetBrowsingSession(userID int64, s models.BrowsingSession) {
	r.Browsing.Set(userID, s)
}

func (r *Registry) Close() {
	if r.sweeper != nil {
		<-r.sweeper.Stop().Done()
	}
	for _, c := range r.closers {
		_ = c()
	}
}
