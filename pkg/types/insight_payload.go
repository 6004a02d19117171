package types

// InsightPayload is the structured analysis document returned to API callers.
// Both the model-generated path and the deterministic fallback produce this
// exact shape; free-text fields are written in Spanish.
type InsightPayload struct {
	ProductivityAnalysis      ProductivityAnalysis `json:"productivity_analysis" mapstructure:"productivity_analysis"`
	TimeManagement            TimeManagement       `json:"time_management" mapstructure:"time_management"`
	ClientPerformance         ClientPerformance    `json:"client_performance" mapstructure:"client_performance"`
	FinancialPerformance      FinancialPerformance `json:"financial_performance" mapstructure:"financial_performance"`
	BottlenecksIdentified     []Bottleneck         `json:"bottlenecks_identified" mapstructure:"bottlenecks_identified"`
	Opportunities             []Opportunity        `json:"opportunities" mapstructure:"opportunities"`
	ActionableRecommendations []Recommendation     `json:"actionable_recommendations" mapstructure:"actionable_recommendations"`
	NextPeriodPredictions     Predictions          `json:"next_period_predictions" mapstructure:"next_period_predictions"`
}

// ProductivityAnalysis summarizes how productively the period was spent.
type ProductivityAnalysis struct {
	OverallScore         float64  `json:"overall_score" mapstructure:"overall_score"`
	EfficiencyTrends     string   `json:"efficiency_trends" mapstructure:"efficiency_trends"`
	PeakPerformanceHours []string `json:"peak_performance_hours" mapstructure:"peak_performance_hours"`
	ProductivityPatterns string   `json:"productivity_patterns" mapstructure:"productivity_patterns"`
}

// TimeManagement summarizes how time was allocated.
type TimeManagement struct {
	BillablePercentage   float64            `json:"billable_percentage" mapstructure:"billable_percentage"`
	AverageSessionLength float64            `json:"average_session_length" mapstructure:"average_session_length"`
	BreakFrequency       string             `json:"break_frequency" mapstructure:"break_frequency"`
	TimeDistribution     map[string]float64 `json:"time_distribution" mapstructure:"time_distribution"`
}

// ClientPerformance summarizes client-facing effectiveness.
type ClientPerformance struct {
	ResponseTimeAverage        string  `json:"response_time_average" mapstructure:"response_time_average"`
	SatisfactionIndicators     string  `json:"satisfaction_indicators" mapstructure:"satisfaction_indicators"`
	CommunicationEffectiveness float64 `json:"communication_effectiveness" mapstructure:"communication_effectiveness"`
	ProjectDeliveryRate        float64 `json:"project_delivery_rate" mapstructure:"project_delivery_rate"`
}

// FinancialPerformance summarizes revenue-side results.
type FinancialPerformance struct {
	RevenueTrend           string  `json:"revenue_trend" mapstructure:"revenue_trend"`
	RevenuePerHour         float64 `json:"revenue_per_hour" mapstructure:"revenue_per_hour"`
	ProposalConversionRate float64 `json:"proposal_conversion_rate" mapstructure:"proposal_conversion_rate"`
	BudgetAccuracy         string  `json:"budget_accuracy" mapstructure:"budget_accuracy"`
}

// Impact levels for bottlenecks (Spanish, as shown in the product UI)
const (
	ImpactAlto  = "alto"
	ImpactMedio = "medio"
	ImpactBajo  = "bajo"
)

// Bottleneck names a friction point found in the period's data.
type Bottleneck struct {
	Area        string `json:"area" mapstructure:"area"`
	Impact      string `json:"impact" mapstructure:"impact"`
	Description string `json:"description" mapstructure:"description"`
	Solution    string `json:"solution" mapstructure:"solution"`
}

// Priority levels for opportunities
const (
	PriorityAlta  = "alta"
	PriorityMedia = "media"
	PriorityBaja  = "baja"
)

// Opportunity describes an improvement worth pursuing next period.
type Opportunity struct {
	Opportunity     string `json:"opportunity" mapstructure:"opportunity"`
	PotentialImpact string `json:"potential_impact" mapstructure:"potential_impact"`
	Implementation  string `json:"implementation" mapstructure:"implementation"`
	Priority        string `json:"priority" mapstructure:"priority"`
}

// Difficulty levels for recommendations
const (
	DifficultyFacil   = "fácil"
	DifficultyMedio   = "medio"
	DifficultyDificil = "difícil"
)

// Recommendation is a concrete action the user can take.
type Recommendation struct {
	Action          string `json:"action" mapstructure:"action"`
	ExpectedOutcome string `json:"expected_outcome" mapstructure:"expected_outcome"`
	Timeframe       string `json:"timeframe" mapstructure:"timeframe"`
	Difficulty      string `json:"difficulty" mapstructure:"difficulty"`
}

// Predictions projects the next reporting period.
type Predictions struct {
	ProductivityForecast float64  `json:"productivity_forecast" mapstructure:"productivity_forecast"`
	RevenueProjection    float64  `json:"revenue_projection" mapstructure:"revenue_projection"`
	KeyFocusAreas        []string `json:"key_focus_areas" mapstructure:"key_focus_areas"`
}

// Actions flattens the payload's recommended actions for persistence on the
// insight record.
func (p *InsightPayload) Actions() []string {
	actions := make([]string, 0, len(p.ActionableRecommendations))
	for _, rec := range p.ActionableRecommendations {
		if rec.Action != "" {
			actions = append(actions, rec.Action)
		}
	}
	return actions
}
