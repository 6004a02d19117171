// Package insights orchestrates the analysis pipeline: collect records,
// compute metrics, generate the analysis, persist the insight record.
package insights

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/juanmagp80/Clyra-sub003/internal/ai"
	"github.com/juanmagp80/Clyra-sub003/internal/collector"
	"github.com/juanmagp80/Clyra-sub003/internal/logging"
	"github.com/juanmagp80/Clyra-sub003/internal/metrics"
	"github.com/juanmagp80/Clyra-sub003/internal/storage"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// listCacheTTL bounds staleness of the cached insight history. New records
// appear after at most this long.
const listCacheTTL = 60 * time.Second

// Summary carries the convenience fields API callers render without digging
// into the full payload.
type Summary struct {
	OverallScore       float64 `json:"overall_score"`
	TotalHours         float64 `json:"total_hours"`
	BillablePercentage float64 `json:"billable_percentage"`
	TotalRevenue       float64 `json:"total_revenue"`
	EventsAnalyzed     int     `json:"events_analyzed"`
	SessionsAnalyzed   int     `json:"sessions_analyzed"`
	ProposalsAnalyzed  int     `json:"proposals_analyzed"`
}

// AnalysisResult is the outcome of one pipeline run.
type AnalysisResult struct {
	Period      types.Period          `json:"period"`
	Metrics     types.MetricsSnapshot `json:"metrics"`
	Analysis    types.InsightPayload  `json:"analysis"`
	Summary     Summary               `json:"summary"`
	Source      string                `json:"source"`
	RecordID    string                `json:"record_id,omitempty"`
	Persisted   bool                  `json:"persisted"`
	GeneratedAt time.Time             `json:"generated_at"`
}

// Service runs the pipeline. Dependencies are injected so every stage can be
// exercised without a live database or completion API.
type Service struct {
	collector *collector.Collector
	generator *ai.Generator
	store     storage.Store
	cache     *redis.Client
	logger    logging.Logger
	now       func() time.Time
}

// NewService creates the pipeline service. cache may be nil, disabling the
// history cache.
func NewService(col *collector.Collector, gen *ai.Generator, store storage.Store, cache *redis.Client, logger logging.Logger) *Service {
	if logger == nil {
		logger = logging.NewNoop()
	}
	return &Service{
		collector: col,
		generator: gen,
		store:     store,
		cache:     cache,
		logger:    logger.WithComponent("insights"),
		now:       time.Now,
	}
}

// AnalyzePerformance runs the full pipeline for one user and period.
// Persistence failures are logged but do not fail the run: the user still
// gets their analysis.
func (s *Service) AnalyzePerformance(ctx context.Context, userID string, period types.Period, triggeredBy string) (*AnalysisResult, error) {
	collected, err := s.collector.Collect(ctx, userID, period)
	if err != nil {
		return nil, fmt.Errorf("data collection failed: %w", err)
	}

	snapshot := metrics.Compute(collected)
	payload, source := s.generator.Generate(ctx, collected, period, snapshot)

	now := s.now().UTC()
	record := s.buildRecord(userID, period, snapshot, payload, source, triggeredBy, now)

	persisted := true
	if err := s.store.InsertInsight(ctx, record); err != nil {
		persisted = false
		s.logger.ErrorContext(ctx, "failed to persist insight record, returning analysis anyway",
			"user_id", userID, "record_id", record.ID, "error", err.Error())
	} else {
		s.invalidateListCache(ctx, userID)
	}

	return &AnalysisResult{
		Period:   period,
		Metrics:  snapshot,
		Analysis: payload,
		Summary: Summary{
			OverallScore:       payload.ProductivityAnalysis.OverallScore,
			TotalHours:         snapshot.TotalWorkHours,
			BillablePercentage: snapshot.BillablePercentage,
			TotalRevenue:       snapshot.TotalRevenue,
			EventsAnalyzed:     len(collected.Events),
			SessionsAnalyzed:   len(collected.Sessions),
			ProposalsAnalyzed:  len(collected.Proposals),
		},
		Source:      source,
		RecordID:    record.ID,
		Persisted:   persisted,
		GeneratedAt: now,
	}, nil
}

// buildRecord assembles the immutable insight record for persistence.
func (s *Service) buildRecord(userID string, period types.Period, snapshot types.MetricsSnapshot, payload types.InsightPayload, source, triggeredBy string, now time.Time) *types.InsightRecord {
	return &types.InsightRecord{
		ID:              uuid.NewString(),
		UserID:          userID,
		InsightType:     "performance_analysis",
		Category:        "productivity",
		Title:           fmt.Sprintf("Análisis de rendimiento (%s)", period.Label()),
		Description:     payload.ProductivityAnalysis.EfficiencyTrends,
		Metrics:         snapshot,
		Analysis:        payload,
		ConfidenceScore: confidenceFor(source),
		ImpactScore:     payload.ProductivityAnalysis.OverallScore / 10,
		Recommendations: payload.Actions(),
		PeriodStart:     now.AddDate(0, 0, -period.Days()),
		PeriodEnd:       now,
		GeneratedBy:     source,
		TriggeredBy:     triggeredBy,
		CreatedAt:       now,
	}
}

// confidenceFor maps the generation source to a stored confidence score
func confidenceFor(source string) float64 {
	switch source {
	case ai.SourceModel:
		return 0.85
	case ai.SourceFallback:
		return 0.7
	default:
		return 0.3
	}
}

// ListInsights returns the user's persisted insight history, newest first,
// served from the cache when warm. Cache errors degrade to a direct read.
func (s *Service) ListInsights(ctx context.Context, userID string, limit int) ([]types.InsightRecord, error) {
	key := listCacheKey(userID, limit)

	if s.cache != nil {
		if data, err := s.cache.Get(ctx, key).Bytes(); err == nil {
			var records []types.InsightRecord
			if err := json.Unmarshal(data, &records); err == nil {
				return records, nil
			}
		}
	}

	records, err := s.store.ListInsights(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(records); err == nil {
			if err := s.cache.Set(ctx, key, data, listCacheTTL).Err(); err != nil {
				s.logger.WarnContext(ctx, "failed to cache insight history",
					"user_id", userID, "error", err.Error())
			}
		}
	}
	return records, nil
}

// invalidateListCache drops cached history pages after a new record lands
func (s *Service) invalidateListCache(ctx context.Context, userID string) {
	if s.cache == nil {
		return
	}
	iter := s.cache.Scan(ctx, 0, "insights:list:"+userID+":*", 50).Iterator()
	for iter.Next(ctx) {
		if err := s.cache.Del(ctx, iter.Val()).Err(); err != nil {
			s.logger.WarnContext(ctx, "failed to invalidate cached history",
				"user_id", userID, "error", err.Error())
		}
	}
}

func listCacheKey(userID string, limit int) string {
	return "insights:list:" + userID + ":" + strconv.Itoa(limit)
}
