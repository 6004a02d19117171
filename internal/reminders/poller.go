// Package reminders runs the background poller that emails users before
// their scheduled meetings start.
package reminders

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/juanmagp80/Clyra-sub003/internal/logging"
	"github.com/juanmagp80/Clyra-sub003/internal/notify"
	"github.com/juanmagp80/Clyra-sub003/internal/storage"
)

// Deduper guards against sending the same reminder twice. Claim returns
// true when the caller won the key and should proceed.
type Deduper interface {
	Claim(ctx context.Context, key string, ttl time.Duration) (bool, error)
}

// RedisDeduper claims reminder keys with SETNX so concurrent instances
// never double-send.
type RedisDeduper struct {
	client *redis.Client
}

// NewRedisDeduper creates a Redis-backed deduper.
func NewRedisDeduper(client *redis.Client) *RedisDeduper {
	return &RedisDeduper{client: client}
}

// Claim attempts to take ownership of the key for the TTL.
func (d *RedisDeduper) Claim(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, key, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to claim reminder key: %w", err)
	}
	return ok, nil
}

// MemoryDeduper is an in-process Deduper for tests and single-instance
// deployments without Redis. Claimed keys are never expired; the poller's
// key space is bounded by the reminder window so this is acceptable for
// short-lived processes only.
type MemoryDeduper struct {
	mu      sync.Mutex
	claimed map[string]struct{}
}

// NewMemoryDeduper creates an empty in-process deduper.
func NewMemoryDeduper() *MemoryDeduper {
	return &MemoryDeduper{claimed: make(map[string]struct{})}
}

// Claim claims the key if it has not been claimed before.
func (d *MemoryDeduper) Claim(_ context.Context, key string, _ time.Duration) (bool, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if _, exists := d.claimed[key]; exists {
		return false, nil
	}
	d.claimed[key] = struct{}{}
	return true, nil
}

// Options configures the reminder poller.
type Options struct {
	// Interval between sweeps. Defaults to 1 minute.
	Interval time.Duration
	// Window ahead of now in which a meeting triggers a reminder.
	// Defaults to 15 minutes.
	Window time.Duration
	// DedupTTL is how long a claimed reminder key is held. Defaults to
	// 24 hours.
	DedupTTL time.Duration
}

// Poller periodically scans for meetings starting soon and emails their
// owners once each.
type Poller struct {
	store    storage.Store
	sender   notify.EmailSender
	dedup    Deduper
	logger   logging.Logger
	interval time.Duration
	window   time.Duration
	dedupTTL time.Duration
}

// NewPoller wires a reminder poller. A nil logger falls back to the no-op
// logger.
func NewPoller(store storage.Store, sender notify.EmailSender, dedup Deduper, logger logging.Logger, opts Options) *Poller {
	if logger == nil {
		logger = logging.NewNoop()
	}
	if opts.Interval <= 0 {
		opts.Interval = time.Minute
	}
	if opts.Window <= 0 {
		opts.Window = 15 * time.Minute
	}
	if opts.DedupTTL <= 0 {
		opts.DedupTTL = 24 * time.Hour
	}
	return &Poller{
		store:    store,
		sender:   sender,
		dedup:    dedup,
		logger:   logger,
		interval: opts.Interval,
		window:   opts.Window,
		dedupTTL: opts.DedupTTL,
	}
}

// Run sweeps on the configured interval until the context is cancelled.
// It performs one sweep immediately on start.
func (p *Poller) Run(ctx context.Context) {
	p.logger.Info("Reminder poller started",
		"interval", p.interval.String(), "window", p.window.String())

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.Sweep(ctx)
	for {
		select {
		case <-ctx.Done():
			p.logger.Info("Reminder poller stopped")
			return
		case <-ticker.C:
			p.Sweep(ctx)
		}
	}
}

// Sweep runs one reminder pass. Per-meeting failures are logged and do not
// stop the sweep.
func (p *Poller) Sweep(ctx context.Context) {
	meetings, err := p.store.FindUpcomingMeetings(ctx, p.window)
	if err != nil {
		p.logger.ErrorContext(ctx, "Failed to query upcoming meetings", "error", err.Error())
		return
	}

	sent := 0
	for _, meeting := range meetings {
		if err := p.remind(ctx, meeting); err != nil {
			p.logger.WarnContext(ctx, "Failed to send meeting reminder",
				"event_id", meeting.Event.ID, "error", err.Error())
			continue
		}
		sent++
	}
	if sent > 0 {
		p.logger.InfoContext(ctx, "Meeting reminders sent", "count", sent)
	}
}

func (p *Poller) remind(ctx context.Context, meeting storage.UpcomingMeeting) error {
	if meeting.UserEmail == "" {
		return fmt.Errorf("meeting %s has no recipient email", meeting.Event.ID)
	}

	key := dedupKey(meeting.Event.ID)
	won, err := p.dedup.Claim(ctx, key, p.dedupTTL)
	if err != nil {
		return err
	}
	if !won {
		return nil
	}

	subject, html, err := notify.BuildMeetingReminder(meeting.UserName, meeting.Event)
	if err != nil {
		return err
	}
	return p.sender.Send(ctx, notify.EmailMessage{
		To:      meeting.UserEmail,
		Subject: subject,
		HTML:    html,
	})
}

func dedupKey(eventID string) string {
	return "reminder:meeting:" + eventID
}
