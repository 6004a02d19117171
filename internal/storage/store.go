// Package storage provides relational data access for the insights
// pipeline: read models for events, sessions and proposals, plus the one
// table this service writes, ai_insights.
package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/juanmagp80/Clyra-sub003/internal/config"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// ErrNotFound indicates the requested row does not exist
var ErrNotFound = errors.New("storage: not found")

// UpcomingMeeting pairs a scheduled event with the owning user's email so
// the reminder poller can notify them.
type UpcomingMeeting struct {
	Event     types.ScheduledEvent
	UserEmail string
	UserName  string
}

// Store is the narrow repository interface the pipeline depends on. All
// range queries are scoped to one user and ordered newest-first.
type Store interface {
	// Read models, owned by other product features
	FindEventsByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]types.ScheduledEvent, error)
	FindSessionsByUserAndRange(ctx context.Context, userID string, start time.Time) ([]types.WorkSession, error)
	FindProposalsByUserAndRange(ctx context.Context, userID string, start time.Time) ([]types.Proposal, error)
	FindInsightsByUserAndRange(ctx context.Context, userID string, start time.Time) ([]types.InsightRecord, error)

	// Insight persistence and history
	InsertInsight(ctx context.Context, record *types.InsightRecord) error
	ListInsights(ctx context.Context, userID string, limit int) ([]types.InsightRecord, error)

	// Reminder support: scheduled meetings starting within the window
	FindUpcomingMeetings(ctx context.Context, within time.Duration) ([]UpcomingMeeting, error)

	Ping(ctx context.Context) error
	Close() error
}

// New creates a Store for the configured provider.
func New(cfg config.DatabaseConfig) (Store, error) {
	switch cfg.Provider {
	case "postgres":
		return NewPostgresStore(cfg.DSN)
	case "sqlite":
		return NewSQLiteStore(cfg.Path)
	default:
		return nil, fmt.Errorf("unsupported database provider: %s", cfg.Provider)
	}
}
