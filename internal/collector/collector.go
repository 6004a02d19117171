// Package collector retrieves the four record sets the analysis pipeline
// consumes, bounded to one user and reporting period.
package collector

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/juanmagp80/Clyra-sub003/internal/logging"
	"github.com/juanmagp80/Clyra-sub003/internal/storage"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// Collector gathers events, sessions, proposals and prior insights for a
// reporting period. The four lookups run concurrently; a failed lookup is
// logged and replaced with an empty list so one degraded source never aborts
// the whole collection.
type Collector struct {
	store  storage.Store
	logger logging.Logger
	now    func() time.Time
}

// New creates a Collector backed by the given store.
func New(store storage.Store, logger logging.Logger) *Collector {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Collector{
		store:  store,
		logger: logger.WithComponent("collector"),
		now:    time.Now,
	}
}

// DateRange returns the half-open interval [now-N days, now) covered by the
// period.
func (c *Collector) DateRange(period types.Period) (start, end time.Time) {
	end = c.now().UTC()
	start = end.AddDate(0, 0, -period.Days())
	return start, end
}

// Collect retrieves all four record sets for the user and period. Only an
// empty user ID is a hard failure; the returned slices are never nil.
func (c *Collector) Collect(ctx context.Context, userID string, period types.Period) (*types.CollectedData, error) {
	if userID == "" {
		return nil, fmt.Errorf("collect: user ID is required")
	}

	start, end := c.DateRange(period)
	collected := &types.CollectedData{
		Events:        []types.ScheduledEvent{},
		Sessions:      []types.WorkSession{},
		Proposals:     []types.Proposal{},
		PriorInsights: []types.InsightRecord{},
	}

	// Each goroutine writes only its own field, so no mutex is needed.
	var wg sync.WaitGroup
	wg.Add(4)

	go func() {
		defer wg.Done()
		events, err := c.store.FindEventsByUserAndRange(ctx, userID, start, end)
		if err != nil {
			c.logger.WarnContext(ctx, "events lookup failed, continuing with empty set",
				"user_id", userID, "error", err.Error())
			return
		}
		collected.Events = events
	}()

	go func() {
		defer wg.Done()
		sessions, err := c.store.FindSessionsByUserAndRange(ctx, userID, start)
		if err != nil {
			c.logger.WarnContext(ctx, "sessions lookup failed, continuing with empty set",
				"user_id", userID, "error", err.Error())
			return
		}
		collected.Sessions = sessions
	}()

	go func() {
		defer wg.Done()
		proposals, err := c.store.FindProposalsByUserAndRange(ctx, userID, start)
		if err != nil {
			c.logger.WarnContext(ctx, "proposals lookup failed, continuing with empty set",
				"user_id", userID, "error", err.Error())
			return
		}
		collected.Proposals = proposals
	}()

	go func() {
		defer wg.Done()
		insights, err := c.store.FindInsightsByUserAndRange(ctx, userID, start)
		if err != nil {
			c.logger.WarnContext(ctx, "prior insights lookup failed, continuing with empty set",
				"user_id", userID, "error", err.Error())
			return
		}
		collected.PriorInsights = insights
	}()

	wg.Wait()

	// A store may legitimately return a nil slice; callers rely on non-nil.
	if collected.Events == nil {
		collected.Events = []types.ScheduledEvent{}
	}
	if collected.Sessions == nil {
		collected.Sessions = []types.WorkSession{}
	}
	if collected.Proposals == nil {
		collected.Proposals = []types.Proposal{}
	}
	if collected.PriorInsights == nil {
		collected.PriorInsights = []types.InsightRecord{}
	}

	c.logger.InfoContext(ctx, "collection complete",
		"user_id", userID,
		"period", string(period),
		"events", len(collected.Events),
		"sessions", len(collected.Sessions),
		"proposals", len(collected.Proposals),
		"prior_insights", len(collected.PriorInsights))

	return collected, nil
}
