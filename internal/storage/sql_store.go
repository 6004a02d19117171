package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/lib/pq"           // PostgreSQL driver
	_ "github.com/mattn/go-sqlite3" // SQLite driver for local development

	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

const (
	driverPostgres = "postgres"
	driverSQLite   = "sqlite3"
)

// sqlStore implements Store over database/sql. Queries are written with
// Postgres-style $n placeholders and rebound to ? for SQLite.
type sqlStore struct {
	db     *sql.DB
	driver string
}

// NewPostgresStore opens a connection to a hosted Postgres database.
func NewPostgresStore(dsn string) (Store, error) {
	db, err := sql.Open(driverPostgres, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres connection: %w", err)
	}
	db.SetMaxOpenConns(20)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(30 * time.Minute)
	return &sqlStore{db: db, driver: driverPostgres}, nil
}

// NewSQLiteStore opens a local SQLite database for development use.
func NewSQLiteStore(path string) (Store, error) {
	db, err := sql.Open(driverSQLite, path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite database: %w", err)
	}
	// SQLite handles a single writer
	db.SetMaxOpenConns(1)
	return &sqlStore{db: db, driver: driverSQLite}, nil
}

// rebind converts $n placeholders to ? for drivers that need it. Arguments
// are always passed in placeholder order, so positional rebinding is safe.
func (s *sqlStore) rebind(query string) string {
	if s.driver == driverPostgres {
		return query
	}
	var b strings.Builder
	for i := 0; i < len(query); i++ {
		if query[i] == '$' && i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
			b.WriteByte('?')
			for i+1 < len(query) && query[i+1] >= '0' && query[i+1] <= '9' {
				i++
			}
			continue
		}
		b.WriteByte(query[i])
	}
	return b.String()
}

// FindEventsByUserAndRange returns the user's calendar events with start
// times inside [start, end], newest first.
func (s *sqlStore) FindEventsByUserAndRange(ctx context.Context, userID string, start, end time.Time) ([]types.ScheduledEvent, error) {
	query := s.rebind(`
		SELECT id, user_id, title, category, start_time, end_time,
		       duration_minutes, productivity_score, actual_revenue, status,
		       location, meeting_url, client_id, client_name, project_id, project_name
		FROM calendar_events
		WHERE user_id = $1 AND start_time >= $2 AND start_time <= $3
		ORDER BY start_time DESC`)

	rows, err := s.db.QueryContext(ctx, query, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("failed to query events: %w", err)
	}
	defer closeRows(rows)

	events := make([]types.ScheduledEvent, 0)
	for rows.Next() {
		event, err := scanEvent(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan event: %w", err)
		}
		events = append(events, *event)
	}
	return events, rows.Err()
}

// scanEvent scans one calendar event row, resolving nullable columns.
func scanEvent(rows *sql.Rows) (*types.ScheduledEvent, error) {
	var ev types.ScheduledEvent
	var category, location, meetingURL sql.NullString
	var duration, productivity, revenue sql.NullFloat64
	var clientID, clientName, projectID, projectName sql.NullString

	err := rows.Scan(
		&ev.ID, &ev.UserID, &ev.Title, &category, &ev.StartTime, &ev.EndTime,
		&duration, &productivity, &revenue, &ev.Status,
		&location, &meetingURL, &clientID, &clientName, &projectID, &projectName,
	)
	if err != nil {
		return nil, err
	}

	ev.Category = category.String
	ev.Location = location.String
	ev.MeetingURL = meetingURL.String
	ev.DurationMinutes = duration.Float64
	ev.ProductivityScore = productivity.Float64
	ev.ActualRevenue = revenue.Float64
	if clientID.Valid {
		ev.Client = &types.ClientSummary{ID: clientID.String, Name: clientName.String}
	}
	if projectID.Valid {
		ev.Project = &types.ProjectSummary{ID: projectID.String, Name: projectName.String}
	}
	return &ev, nil
}

// FindSessionsByUserAndRange returns the user's work sessions started at or
// after start, newest first.
func (s *sqlStore) FindSessionsByUserAndRange(ctx context.Context, userID string, start time.Time) ([]types.WorkSession, error) {
	query := s.rebind(`
		SELECT id, user_id, start_time, end_time, duration_minutes, billable_minutes,
		       productivity_score, mood_before, mood_after, energy_before, energy_after,
		       focus_quality, interruptions, tasks_completed, hourly_rate, earnings,
		       environment, time_of_day
		FROM time_tracking_sessions
		WHERE user_id = $1 AND start_time >= $2
		ORDER BY start_time DESC`)

	rows, err := s.db.QueryContext(ctx, query, userID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer closeRows(rows)

	sessions := make([]types.WorkSession, 0)
	for rows.Next() {
		var ws types.WorkSession
		var duration, billable, productivity, rate, earnings sql.NullFloat64
		var moodBefore, moodAfter, energyBefore, energyAfter, focus, interruptions, tasks sql.NullInt64
		var environment, timeOfDay sql.NullString

		err := rows.Scan(
			&ws.ID, &ws.UserID, &ws.StartTime, &ws.EndTime, &duration, &billable,
			&productivity, &moodBefore, &moodAfter, &energyBefore, &energyAfter,
			&focus, &interruptions, &tasks, &rate, &earnings,
			&environment, &timeOfDay,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}

		ws.DurationMinutes = duration.Float64
		ws.BillableMinutes = billable.Float64
		ws.ProductivityScore = productivity.Float64
		ws.MoodBefore = int(moodBefore.Int64)
		ws.MoodAfter = int(moodAfter.Int64)
		ws.EnergyBefore = int(energyBefore.Int64)
		ws.EnergyAfter = int(energyAfter.Int64)
		ws.FocusQuality = int(focus.Int64)
		ws.Interruptions = int(interruptions.Int64)
		ws.TasksCompleted = int(tasks.Int64)
		ws.HourlyRate = rate.Float64
		ws.Earnings = earnings.Float64
		ws.Environment = environment.String
		ws.TimeOfDay = timeOfDay.String
		sessions = append(sessions, ws)
	}
	return sessions, rows.Err()
}

// FindProposalsByUserAndRange returns the user's proposals created at or
// after start, newest first. Line items are stored as a JSON column.
func (s *sqlStore) FindProposalsByUserAndRange(ctx context.Context, userID string, start time.Time) ([]types.Proposal, error) {
	query := s.rebind(`
		SELECT id, user_id, title, total_amount, status, created_at,
		       client_id, client_name, items
		FROM budgets
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`)

	rows, err := s.db.QueryContext(ctx, query, userID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to query proposals: %w", err)
	}
	defer closeRows(rows)

	proposals := make([]types.Proposal, 0)
	for rows.Next() {
		var p types.Proposal
		var amount sql.NullFloat64
		var clientID, clientName sql.NullString
		var itemsJSON []byte

		if err := rows.Scan(&p.ID, &p.UserID, &p.Title, &amount, &p.Status, &p.CreatedAt,
			&clientID, &clientName, &itemsJSON); err != nil {
			return nil, fmt.Errorf("failed to scan proposal: %w", err)
		}

		p.TotalAmount = amount.Float64
		if clientID.Valid {
			p.Client = &types.ClientSummary{ID: clientID.String, Name: clientName.String}
		}
		if len(itemsJSON) > 0 {
			if err := json.Unmarshal(itemsJSON, &p.Items); err != nil {
				return nil, fmt.Errorf("failed to unmarshal proposal items: %w", err)
			}
		}
		proposals = append(proposals, p)
	}
	return proposals, rows.Err()
}

// FindInsightsByUserAndRange returns insight records created at or after
// start, newest first.
func (s *sqlStore) FindInsightsByUserAndRange(ctx context.Context, userID string, start time.Time) ([]types.InsightRecord, error) {
	query := s.rebind(insightSelectColumns + `
		FROM ai_insights
		WHERE user_id = $1 AND created_at >= $2
		ORDER BY created_at DESC`)

	rows, err := s.db.QueryContext(ctx, query, userID, start)
	if err != nil {
		return nil, fmt.Errorf("failed to query insights: %w", err)
	}
	defer closeRows(rows)
	return collectInsights(rows)
}

// ListInsights returns the user's most recent insight records.
func (s *sqlStore) ListInsights(ctx context.Context, userID string, limit int) ([]types.InsightRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	query := s.rebind(insightSelectColumns + `
		FROM ai_insights
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT ` + strconv.Itoa(limit))

	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list insights: %w", err)
	}
	defer closeRows(rows)
	return collectInsights(rows)
}

const insightSelectColumns = `
		SELECT id, user_id, insight_type, category, title, description,
		       metrics, analysis, confidence_score, impact_score, recommendations,
		       period_start, period_end, generated_by, triggered_by, created_at`

// collectInsights scans all insight rows, deserializing the JSON columns.
func collectInsights(rows *sql.Rows) ([]types.InsightRecord, error) {
	records := make([]types.InsightRecord, 0)
	for rows.Next() {
		var rec types.InsightRecord
		var metricsJSON, analysisJSON, recommendationsJSON []byte

		err := rows.Scan(
			&rec.ID, &rec.UserID, &rec.InsightType, &rec.Category, &rec.Title, &rec.Description,
			&metricsJSON, &analysisJSON, &rec.ConfidenceScore, &rec.ImpactScore, &recommendationsJSON,
			&rec.PeriodStart, &rec.PeriodEnd, &rec.GeneratedBy, &rec.TriggeredBy, &rec.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan insight: %w", err)
		}

		if err := json.Unmarshal(metricsJSON, &rec.Metrics); err != nil {
			return nil, fmt.Errorf("failed to unmarshal insight metrics: %w", err)
		}
		if err := json.Unmarshal(analysisJSON, &rec.Analysis); err != nil {
			return nil, fmt.Errorf("failed to unmarshal insight analysis: %w", err)
		}
		if len(recommendationsJSON) > 0 {
			if err := json.Unmarshal(recommendationsJSON, &rec.Recommendations); err != nil {
				return nil, fmt.Errorf("failed to unmarshal recommendations: %w", err)
			}
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

// InsertInsight persists a new insight record. Records are immutable: there
// is no update path.
func (s *sqlStore) InsertInsight(ctx context.Context, record *types.InsightRecord) error {
	query := s.rebind(`
		INSERT INTO ai_insights (
			id, user_id, insight_type, category, title, description,
			metrics, analysis, confidence_score, impact_score, recommendations,
			period_start, period_end, generated_by, triggered_by, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`)

	metricsJSON, err := json.Marshal(record.Metrics)
	if err != nil {
		return fmt.Errorf("failed to marshal metrics: %w", err)
	}
	analysisJSON, err := json.Marshal(record.Analysis)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}
	recommendationsJSON, err := json.Marshal(record.Recommendations)
	if err != nil {
		return fmt.Errorf("failed to marshal recommendations: %w", err)
	}

	_, err = s.db.ExecContext(ctx, query,
		record.ID, record.UserID, record.InsightType, record.Category, record.Title, record.Description,
		metricsJSON, analysisJSON, record.ConfidenceScore, record.ImpactScore, recommendationsJSON,
		record.PeriodStart, record.PeriodEnd, record.GeneratedBy, record.TriggeredBy, record.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert insight: %w", err)
	}
	return nil
}

// FindUpcomingMeetings returns scheduled events starting within the window,
// joined with the owning user's email for notification.
func (s *sqlStore) FindUpcomingMeetings(ctx context.Context, within time.Duration) ([]UpcomingMeeting, error) {
	now := time.Now().UTC()
	until := now.Add(within)

	query := s.rebind(`
		SELECT e.id, e.user_id, e.title, e.category, e.start_time, e.end_time,
		       e.duration_minutes, e.productivity_score, e.actual_revenue, e.status,
		       e.location, e.meeting_url, e.client_id, e.client_name, e.project_id, e.project_name,
		       p.email, p.full_name
		FROM calendar_events e
		JOIN profiles p ON p.id = e.user_id
		WHERE e.status = $1 AND e.start_time >= $2 AND e.start_time <= $3
		ORDER BY e.start_time ASC`)

	rows, err := s.db.QueryContext(ctx, query, types.EventStatusScheduled, now, until)
	if err != nil {
		return nil, fmt.Errorf("failed to query upcoming meetings: %w", err)
	}
	defer closeRows(rows)

	meetings := make([]UpcomingMeeting, 0)
	for rows.Next() {
		var ev types.ScheduledEvent
		var category, location, meetingURL sql.NullString
		var duration, productivity, revenue sql.NullFloat64
		var clientID, clientName, projectID, projectName sql.NullString
		var email string
		var fullName sql.NullString

		err := rows.Scan(
			&ev.ID, &ev.UserID, &ev.Title, &category, &ev.StartTime, &ev.EndTime,
			&duration, &productivity, &revenue, &ev.Status,
			&location, &meetingURL, &clientID, &clientName, &projectID, &projectName,
			&email, &fullName,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan upcoming meeting: %w", err)
		}

		ev.Category = category.String
		ev.Location = location.String
		ev.MeetingURL = meetingURL.String
		ev.DurationMinutes = duration.Float64
		ev.ProductivityScore = productivity.Float64
		ev.ActualRevenue = revenue.Float64
		if clientID.Valid {
			ev.Client = &types.ClientSummary{ID: clientID.String, Name: clientName.String}
		}
		if projectID.Valid {
			ev.Project = &types.ProjectSummary{ID: projectID.String, Name: projectName.String}
		}
		meetings = append(meetings, UpcomingMeeting{Event: ev, UserEmail: email, UserName: fullName.String})
	}
	return meetings, rows.Err()
}

// Ping verifies the database connection.
func (s *sqlStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the underlying connection pool.
func (s *sqlStore) Close() error {
	return s.db.Close()
}

// closeRows closes a result set, logging is not needed here since read
// errors surface through rows.Err.
func closeRows(rows *sql.Rows) {
	_ = rows.Close()
}
