package storage

import (
	"context"
	"sync"
	"time"

	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// MockStore is an in-memory Store for tests. Individual lookups can be
// overridden with function fields to simulate per-source failures.
type MockStore struct {
	mu sync.Mutex

	Events    []types.ScheduledEvent
	Sessions  []types.WorkSession
	Proposals []types.Proposal
	Insights  []types.InsightRecord
	Upcoming  []UpcomingMeeting

	FindEventsFn    func(ctx context.Context, userID string, start, end time.Time) ([]types.ScheduledEvent, error)
	FindSessionsFn  func(ctx context.Context, userID string, start time.Time) ([]types.WorkSession, error)
	FindProposalsFn func(ctx context.Context, userID string, start time.Time) ([]types.Proposal, error)
	FindInsightsFn  func(ctx context.Context, userID string, start time.Time) ([]types.InsightRecord, error)
	InsertInsightFn func(ctx context.Context, record *types.InsightRecord) error

	Inserted []types.InsightRecord
}

// NewMockStore creates an empty in-memory store
func NewMockStore() *MockStore {
	return &MockStore{}
}

func (m *MockStore) FindEventsByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]types.ScheduledEvent, error) {
	if m.FindEventsFn != nil {
		return m.FindEventsFn(ctx, userID, start, end)
	}
	return m.Events, nil
}

func (m *MockStore) FindSessionsByUserAndRange(ctx context.Context, userID string, start time.Time) ([]types.WorkSession, error) {
	if m.FindSessionsFn != nil {
		return m.FindSessionsFn(ctx, userID, start)
	}
	return m.Sessions, nil
}

func (m *MockStore) FindProposalsByUserAndRange(ctx context.Context, userID string, start time.Time) ([]types.Proposal, error) {
	if m.FindProposalsFn != nil {
		return m.FindProposalsFn(ctx, userID, start)
	}
	return m.Proposals, nil
}

func (m *MockStore) FindInsightsByUserAndRange(ctx context.Context, userID string, start time.Time) ([]types.InsightRecord, error) {
	if m.FindInsightsFn != nil {
		return m.FindInsightsFn(ctx, userID, start)
	}
	return m.Insights, nil
}

func (m *MockStore) InsertInsight(ctx context.Context, record *types.InsightRecord) error {
	if m.InsertInsightFn != nil {
		return m.InsertInsightFn(ctx, record)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Inserted = append(m.Inserted, *record)
	return nil
}

// ListInsights serves records written through InsertInsight (newest first)
// followed by the seeded Insights history.
func (m *MockStore) ListInsights(_ context.Context, userID string, limit int) ([]types.InsightRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := make([]types.InsightRecord, 0)
	for i := len(m.Inserted) - 1; i >= 0; i-- {
		if m.Inserted[i].UserID == userID {
			records = append(records, m.Inserted[i])
		}
	}
	for _, record := range m.Insights {
		if record.UserID == userID {
			records = append(records, record)
		}
	}
	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

func (m *MockStore) FindUpcomingMeetings(_ context.Context, _ time.Duration) ([]UpcomingMeeting, error) {
	return m.Upcoming, nil
}

func (m *MockStore) Ping(context.Context) error { return nil }

func (m *MockStore) Close() error { return nil }

// InsertedCount returns how many insight records have been written
func (m *MockStore) InsertedCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Inserted)
}
