// Package types provides core data structures shared across the Clyra
// performance-insights service: calendar events, work sessions, proposals
// and the persisted insight records the analysis pipeline produces.
package types

import (
	"time"
)

// Period represents a reporting window measured backward from now.
type Period string

const (
	// Period7Days covers the last week of activity
	Period7Days Period = "7_days"
	// Period30Days covers the last month of activity
	Period30Days Period = "30_days"
	// Period90Days covers the last quarter of activity
	Period90Days Period = "90_days"
)

// ParsePeriod normalizes a caller-supplied period string. Unrecognized or
// empty values default to the 30-day window.
func ParsePeriod(s string) Period {
	switch Period(s) {
	case Period7Days, Period30Days, Period90Days:
		return Period(s)
	default:
		return Period30Days
	}
}

// Days returns the number of days covered by the period.
func (p Period) Days() int {
	switch p {
	case Period7Days:
		return 7
	case Period90Days:
		return 90
	default:
		return 30
	}
}

// Label returns the Spanish display label used in prompts and reports.
func (p Period) Label() string {
	switch p {
	case Period7Days:
		return "últimos 7 días"
	case Period90Days:
		return "últimos 90 días"
	default:
		return "últimos 30 días"
	}
}

// Event lifecycle statuses
const (
	EventStatusScheduled = "scheduled"
	EventStatusCompleted = "completed"
	EventStatusCancelled = "cancelled"
)

// Proposal lifecycle statuses
const (
	ProposalStatusDraft    = "draft"
	ProposalStatusSent     = "sent"
	ProposalStatusApproved = "approved"
	ProposalStatusRejected = "rejected"
	ProposalStatusExpired  = "expired"
)

// ClientSummary is a denormalized reference to a client owned by another
// part of the product.
type ClientSummary struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email,omitempty"`
}

// ProjectSummary is a denormalized reference to a project.
type ProjectSummary struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// ScheduledEvent represents a calendar/booking entry. Events are produced by
// the calendar features and are read-only for the insights pipeline.
type ScheduledEvent struct {
	ID                string          `json:"id"`
	UserID            string          `json:"user_id"`
	Title             string          `json:"title"`
	Category          string          `json:"category,omitempty"`
	StartTime         time.Time       `json:"start_time"`
	EndTime           time.Time       `json:"end_time"`
	DurationMinutes   float64         `json:"duration_minutes"`
	ProductivityScore float64         `json:"productivity_score"`
	ActualRevenue     float64         `json:"actual_revenue"`
	Status            string          `json:"status"`
	Location          string          `json:"location,omitempty"`
	MeetingURL        string          `json:"meeting_url,omitempty"`
	Client            *ClientSummary  `json:"client,omitempty"`
	Project           *ProjectSummary `json:"project,omitempty"`
}

// WorkSession represents a tracked block of work from the time-tracking
// feature, including the optional wellbeing fields users may record.
type WorkSession struct {
	ID                string    `json:"id"`
	UserID            string    `json:"user_id"`
	StartTime         time.Time `json:"start_time"`
	EndTime           time.Time `json:"end_time"`
	DurationMinutes   float64   `json:"duration_minutes"`
	BillableMinutes   float64   `json:"billable_minutes"`
	ProductivityScore float64   `json:"productivity_score"`
	MoodBefore        int       `json:"mood_before,omitempty"`
	MoodAfter         int       `json:"mood_after,omitempty"`
	EnergyBefore      int       `json:"energy_before,omitempty"`
	EnergyAfter       int       `json:"energy_after,omitempty"`
	FocusQuality      int       `json:"focus_quality,omitempty"`
	Interruptions     int       `json:"interruptions"`
	TasksCompleted    int       `json:"tasks_completed"`
	HourlyRate        float64   `json:"hourly_rate"`
	Earnings          float64   `json:"earnings"`
	Environment       string    `json:"environment,omitempty"`
	TimeOfDay         string    `json:"time_of_day,omitempty"`
}

// ProposalItem is a single line item on a proposal.
type ProposalItem struct {
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
}

// Proposal represents a budget/quote sent to a client.
type Proposal struct {
	ID          string         `json:"id"`
	UserID      string         `json:"user_id"`
	Title       string         `json:"title"`
	TotalAmount float64        `json:"total_amount"`
	Status      string         `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	Client      *ClientSummary `json:"client,omitempty"`
	Items       []ProposalItem `json:"items,omitempty"`
}

// InsightRecord is the one entity this pipeline creates: a persisted snapshot
// of computed metrics plus generated analysis. Records are immutable once
// written; other product views read them for historical display.
type InsightRecord struct {
	ID              string          `json:"id"`
	UserID          string          `json:"user_id"`
	InsightType     string          `json:"insight_type"`
	Category        string          `json:"category"`
	Title           string          `json:"title"`
	Description     string          `json:"description"`
	Metrics         MetricsSnapshot `json:"metrics"`
	Analysis        InsightPayload  `json:"analysis"`
	ConfidenceScore float64         `json:"confidence_score"`
	ImpactScore     float64         `json:"impact_score"`
	Recommendations []string        `json:"recommendations"`
	PeriodStart     time.Time       `json:"period_start"`
	PeriodEnd       time.Time       `json:"period_end"`
	GeneratedBy     string          `json:"generated_by"`
	TriggeredBy     string          `json:"triggered_by"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CollectedData bundles the four record sets the data collector retrieves
// for one user and reporting period. All slices are non-nil.
type CollectedData struct {
	Events        []ScheduledEvent `json:"events"`
	Sessions      []WorkSession    `json:"sessions"`
	Proposals     []Proposal       `json:"proposals"`
	PriorInsights []InsightRecord  `json:"prior_insights"`
}

// IsEmpty reports whether there is nothing to analyze. Prior insights do not
// count: they are context for the prompt, not activity.
func (c *CollectedData) IsEmpty() bool {
	return len(c.Events)+len(c.Sessions)+len(c.Proposals) == 0
}

// MetricsSnapshot holds the derived KPIs for one reporting period. All
// values are finite and non-negative; ratios with zero denominators are 0.
type MetricsSnapshot struct {
	TotalWorkHours         float64 `json:"total_work_hours"`
	TotalBillableHours     float64 `json:"total_billable_hours"`
	BillablePercentage     float64 `json:"billable_percentage"`
	AvgProductivity        float64 `json:"avg_productivity"`
	TotalRevenue           float64 `json:"total_revenue"`
	EffectiveBillableHours float64 `json:"effective_billable_hours"`
	RevenuePerHour         float64 `json:"revenue_per_hour"`
	TotalEvents            int     `json:"total_events"`
	AvgEventDuration       float64 `json:"avg_event_duration"`
	AvgEventProductivity   float64 `json:"avg_event_productivity"`
	HasTimeTracking        bool    `json:"has_time_tracking"`
	HasEvents              bool    `json:"has_events"`
	HasBudgets             bool    `json:"has_budgets"`
}

// Identity is a resolved caller identity produced by the authentication
// layer. The pipeline only needs the user ID.
type Identity struct {
	ID    string `json:"id"`
	Email string `json:"email,omitempty"`
}
