package storage

// Schema returns the DDL statements for the given provider. The hosted
// deployment owns most tables through its own migrations; these statements
// exist so local development and tests can run against SQLite or a scratch
// Postgres database.
func Schema(provider string) []string {
	jsonType := "JSONB"
	timestampType := "TIMESTAMPTZ"
	if provider == "sqlite" {
		jsonType = "TEXT"
		timestampType = "TIMESTAMP"
	}

	return []string{
		`CREATE TABLE IF NOT EXISTS profiles (
			id TEXT PRIMARY KEY,
			email TEXT NOT NULL,
			full_name TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS calendar_events (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			category TEXT,
			start_time ` + timestampType + ` NOT NULL,
			end_time ` + timestampType + ` NOT NULL,
			duration_minutes DOUBLE PRECISION,
			productivity_score DOUBLE PRECISION,
			actual_revenue DOUBLE PRECISION,
			status TEXT NOT NULL DEFAULT 'scheduled',
			location TEXT,
			meeting_url TEXT,
			client_id TEXT,
			client_name TEXT,
			project_id TEXT,
			project_name TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_calendar_events_user_start
			ON calendar_events (user_id, start_time)`,
		`CREATE TABLE IF NOT EXISTS time_tracking_sessions (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			start_time ` + timestampType + ` NOT NULL,
			end_time ` + timestampType + `,
			duration_minutes DOUBLE PRECISION,
			billable_minutes DOUBLE PRECISION,
			productivity_score DOUBLE PRECISION,
			mood_before INTEGER,
			mood_after INTEGER,
			energy_before INTEGER,
			energy_after INTEGER,
			focus_quality INTEGER,
			interruptions INTEGER,
			tasks_completed INTEGER,
			hourly_rate DOUBLE PRECISION,
			earnings DOUBLE PRECISION,
			environment TEXT,
			time_of_day TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_user_start
			ON time_tracking_sessions (user_id, start_time)`,
		`CREATE TABLE IF NOT EXISTS budgets (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			title TEXT NOT NULL,
			total_amount DOUBLE PRECISION,
			status TEXT NOT NULL DEFAULT 'draft',
			created_at ` + timestampType + ` NOT NULL,
			client_id TEXT,
			client_name TEXT,
			items ` + jsonType + `
		)`,
		`CREATE INDEX IF NOT EXISTS idx_budgets_user_created
			ON budgets (user_id, created_at)`,
		`CREATE TABLE IF NOT EXISTS ai_insights (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			insight_type TEXT NOT NULL,
			category TEXT NOT NULL,
			title TEXT NOT NULL,
			description TEXT,
			metrics ` + jsonType + ` NOT NULL,
			analysis ` + jsonType + ` NOT NULL,
			confidence_score DOUBLE PRECISION,
			impact_score DOUBLE PRECISION,
			recommendations ` + jsonType + `,
			period_start ` + timestampType + ` NOT NULL,
			period_end ` + timestampType + ` NOT NULL,
			generated_by TEXT,
			triggered_by TEXT,
			created_at ` + timestampType + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ai_insights_user_created
			ON ai_insights (user_id, created_at)`,
	}
}
