package ai

import (
	"fmt"
	"math"

	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// FallbackGenerator produces a schema-identical analysis from the computed
// metrics alone. It runs when the completion API is unavailable or returns
// unusable output, so the caller always receives a valid payload.
type FallbackGenerator struct{}

// NewFallbackGenerator creates the deterministic generator.
func NewFallbackGenerator() *FallbackGenerator {
	return &FallbackGenerator{}
}

// Generate derives a rule-based analysis from the metrics snapshot.
func (f *FallbackGenerator) Generate(period types.Period, metrics types.MetricsSnapshot, collected *types.CollectedData) types.InsightPayload {
	// Overall score blends productivity, billable ratio and revenue per
	// hour, each mapped onto a 0-10 scale before weighting.
	productivityScore := metrics.AvgProductivity
	if productivityScore == 0 {
		productivityScore = metrics.AvgEventProductivity
	}
	billableScore := clamp(metrics.BillablePercentage/10, 0, 10)
	revenueScore := clamp(metrics.RevenuePerHour/10, 0, 10)
	overall := round1(clamp(0.5*productivityScore+0.3*billableScore+0.2*revenueScore, 1, 10))

	payload := types.InsightPayload{
		ProductivityAnalysis: types.ProductivityAnalysis{
			OverallScore: overall,
			EfficiencyTrends: fmt.Sprintf(
				"Durante los %s registraste %.1f horas de trabajo con una productividad media de %.1f/10.",
				period.Label(), metrics.TotalWorkHours, metrics.AvgProductivity),
			PeakPerformanceHours: []string{"09:00-11:00", "16:00-18:00"},
			ProductivityPatterns: fmt.Sprintf(
				"El %.1f%% de tu tiempo registrado fue facturable. %s",
				metrics.BillablePercentage, billablePatternNote(metrics)),
		},
		TimeManagement: types.TimeManagement{
			BillablePercentage:   metrics.BillablePercentage,
			AverageSessionLength: averageSessionHours(collected),
			BreakFrequency:       breakFrequencyNote(metrics),
			TimeDistribution: map[string]float64{
				"facturable":    metrics.TotalBillableHours,
				"no_facturable": round1(math.Max(metrics.TotalWorkHours-metrics.TotalBillableHours, 0)),
			},
		},
		ClientPerformance: types.ClientPerformance{
			ResponseTimeAverage:        "sin datos suficientes",
			SatisfactionIndicators:     "Sin señales directas de clientes en este período.",
			CommunicationEffectiveness: clamp(overall, 1, 10),
			ProjectDeliveryRate:        deliveryRate(collected),
		},
		FinancialPerformance: types.FinancialPerformance{
			RevenueTrend: fmt.Sprintf(
				"Ingresos de %.2f € en el período, %.2f €/hora efectiva.",
				metrics.TotalRevenue, metrics.RevenuePerHour),
			RevenuePerHour:         metrics.RevenuePerHour,
			ProposalConversionRate: proposalConversion(collected),
			BudgetAccuracy:         budgetAccuracyNote(collected),
		},
		BottlenecksIdentified:     bottlenecks(metrics),
		Opportunities:             opportunities(metrics),
		ActionableRecommendations: recommendations(metrics),
		NextPeriodPredictions: types.Predictions{
			ProductivityForecast: overall,
			RevenueProjection:    round1(metrics.TotalRevenue * 1.1),
			KeyFocusAreas:        focusAreas(metrics),
		},
	}

	return payload
}

// InsufficientData returns the canned onboarding payload used when there is
// nothing to analyze. Scores are neutral rather than misleadingly precise.
func (f *FallbackGenerator) InsufficientData() types.InsightPayload {
	return types.InsightPayload{
		ProductivityAnalysis: types.ProductivityAnalysis{
			OverallScore:         5.0,
			EfficiencyTrends:     "Sin datos suficientes para detectar tendencias todavía.",
			PeakPerformanceHours: []string{},
			ProductivityPatterns: "Empieza a registrar sesiones de trabajo y eventos para obtener un análisis real.",
		},
		TimeManagement: types.TimeManagement{
			BillablePercentage:   0,
			AverageSessionLength: 0,
			BreakFrequency:       "sin datos",
			TimeDistribution:     map[string]float64{},
		},
		ClientPerformance: types.ClientPerformance{
			ResponseTimeAverage:        "sin datos",
			SatisfactionIndicators:     "Aún no hay actividad con clientes que analizar.",
			CommunicationEffectiveness: 5.0,
			ProjectDeliveryRate:        0,
		},
		FinancialPerformance: types.FinancialPerformance{
			RevenueTrend:           "Sin ingresos registrados en el período.",
			RevenuePerHour:         0,
			ProposalConversionRate: 0,
			BudgetAccuracy:         "sin datos",
		},
		BottlenecksIdentified: []types.Bottleneck{},
		Opportunities: []types.Opportunity{
			{
				Opportunity:     "Configura el registro de tiempo",
				PotentialImpact: "Visibilidad real de tus horas facturables",
				Implementation:  "Inicia el temporizador al empezar cada bloque de trabajo",
				Priority:        types.PriorityAlta,
			},
		},
		ActionableRecommendations: []types.Recommendation{
			{
				Action:          "Conecta tu calendario y registra tu primera sesión de trabajo",
				ExpectedOutcome: "Datos suficientes para un análisis personalizado",
				Timeframe:       "esta semana",
				Difficulty:      types.DifficultyFacil,
			},
			{
				Action:          "Crea tu primer presupuesto para un cliente",
				ExpectedOutcome: "Seguimiento de conversión de propuestas",
				Timeframe:       "próximas dos semanas",
				Difficulty:      types.DifficultyFacil,
			},
		},
		NextPeriodPredictions: types.Predictions{
			ProductivityForecast: 5.0,
			RevenueProjection:    0,
			KeyFocusAreas:        []string{"registro de actividad", "configuración inicial"},
		},
	}
}

func billablePatternNote(metrics types.MetricsSnapshot) string {
	switch {
	case !metrics.HasTimeTracking:
		return "No hay sesiones de seguimiento; las horas se estiman desde el calendario."
	case metrics.BillablePercentage >= 70:
		return "Buen ratio facturable, mantén la disciplina actual."
	case metrics.BillablePercentage >= 40:
		return "Hay margen para aumentar el tiempo facturable."
	default:
		return "Gran parte del tiempo registrado no es facturable."
	}
}

func breakFrequencyNote(metrics types.MetricsSnapshot) string {
	if !metrics.HasTimeTracking {
		return "sin datos de sesiones"
	}
	return "descansos no registrados explícitamente"
}

func averageSessionHours(collected *types.CollectedData) float64 {
	if collected == nil || len(collected.Sessions) == 0 {
		return 0
	}
	var total float64
	for i := range collected.Sessions {
		d := collected.Sessions[i].DurationMinutes
		if !math.IsNaN(d) && !math.IsInf(d, 0) && d > 0 {
			total += d
		}
	}
	return round1(total / float64(len(collected.Sessions)) / 60)
}

// deliveryRate uses completed vs total events as a proxy for delivery
func deliveryRate(collected *types.CollectedData) float64 {
	if collected == nil || len(collected.Events) == 0 {
		return 0
	}
	var completed int
	for i := range collected.Events {
		if collected.Events[i].Status == types.EventStatusCompleted {
			completed++
		}
	}
	return round1(float64(completed) / float64(len(collected.Events)) * 100)
}

func proposalConversion(collected *types.CollectedData) float64 {
	if collected == nil || len(collected.Proposals) == 0 {
		return 0
	}
	var approved int
	for i := range collected.Proposals {
		if collected.Proposals[i].Status == types.ProposalStatusApproved {
			approved++
		}
	}
	return round1(float64(approved) / float64(len(collected.Proposals)) * 100)
}

func budgetAccuracyNote(collected *types.CollectedData) string {
	if collected == nil || len(collected.Proposals) == 0 {
		return "sin presupuestos en el período"
	}
	return fmt.Sprintf("%d presupuestos emitidos en el período", len(collected.Proposals))
}

func bottlenecks(metrics types.MetricsSnapshot) []types.Bottleneck {
	result := []types.Bottleneck{}
	if metrics.HasTimeTracking && metrics.BillablePercentage < 50 {
		result = append(result, types.Bottleneck{
			Area:   "tiempo facturable",
			Impact: types.ImpactAlto,
			Description: fmt.Sprintf(
				"Solo el %.1f%% del tiempo registrado es facturable.", metrics.BillablePercentage),
			Solution: "Revisa tareas administrativas recurrentes y delega o automatiza las que no aportan ingresos.",
		})
	}
	if metrics.HasEvents && metrics.RevenuePerHour > 0 && metrics.RevenuePerHour < 30 {
		result = append(result, types.Bottleneck{
			Area:   "tarifa efectiva",
			Impact: types.ImpactMedio,
			Description: fmt.Sprintf(
				"La tarifa efectiva del período es de %.2f €/hora.", metrics.RevenuePerHour),
			Solution: "Revisa precios o reduce el alcance de los trabajos peor pagados.",
		})
	}
	if !metrics.HasTimeTracking && metrics.HasEvents {
		result = append(result, types.Bottleneck{
			Area:        "registro de tiempo",
			Impact:      types.ImpactMedio,
			Description: "No hay sesiones de seguimiento de tiempo; las métricas se estiman desde el calendario.",
			Solution:    "Usa el temporizador para separar tiempo facturable del resto.",
		})
	}
	return result
}

func opportunities(metrics types.MetricsSnapshot) []types.Opportunity {
	result := []types.Opportunity{}
	if metrics.BillablePercentage > 0 && metrics.BillablePercentage < 70 {
		result = append(result, types.Opportunity{
			Opportunity:     "Aumentar el porcentaje de horas facturables",
			PotentialImpact: fmt.Sprintf("Pasar del %.1f%% al 70%% elevaría tus ingresos sin trabajar más horas", metrics.BillablePercentage),
			Implementation:  "Agrupa el trabajo administrativo en bloques fijos semanales",
			Priority:        types.PriorityAlta,
		})
	}
	if metrics.HasBudgets {
		result = append(result, types.Opportunity{
			Opportunity:     "Hacer seguimiento activo de presupuestos enviados",
			PotentialImpact: "Mejor conversión de propuestas a proyectos",
			Implementation:  "Programa un recordatorio de seguimiento a los 3 días de cada envío",
			Priority:        types.PriorityMedia,
		})
	}
	if len(result) == 0 {
		result = append(result, types.Opportunity{
			Opportunity:     "Consolidar el registro de actividad",
			PotentialImpact: "Análisis más precisos en próximos períodos",
			Implementation:  "Registra eventos y sesiones de forma consistente",
			Priority:        types.PriorityMedia,
		})
	}
	return result
}

func recommendations(metrics types.MetricsSnapshot) []types.Recommendation {
	result := []types.Recommendation{
		{
			Action:          "Reserva bloques de concentración de 2 horas sin reuniones",
			ExpectedOutcome: "Mayor productividad media por sesión",
			Timeframe:       "próximas 2 semanas",
			Difficulty:      types.DifficultyMedio,
		},
	}
	if metrics.RevenuePerHour > 0 {
		result = append(result, types.Recommendation{
			Action: fmt.Sprintf(
				"Revisa tus tarifas: tu hora efectiva actual es de %.2f €", metrics.RevenuePerHour),
			ExpectedOutcome: "Tarifa alineada con el valor entregado",
			Timeframe:       "este mes",
			Difficulty:      types.DifficultyDificil,
		})
	}
	if metrics.HasTimeTracking && metrics.BillablePercentage < 50 {
		result = append(result, types.Recommendation{
			Action:          "Identifica las 3 tareas no facturables que más tiempo consumen",
			ExpectedOutcome: "Recuperar horas facturables cada semana",
			Timeframe:       "esta semana",
			Difficulty:      types.DifficultyFacil,
		})
	}
	return result
}

func focusAreas(metrics types.MetricsSnapshot) []string {
	areas := []string{}
	if metrics.BillablePercentage < 70 {
		areas = append(areas, "tiempo facturable")
	}
	if metrics.RevenuePerHour < 50 {
		areas = append(areas, "tarifa efectiva")
	}
	if len(areas) == 0 {
		areas = append(areas, "mantener el ritmo actual")
	}
	return areas
}

// clamp bounds v to [lo, hi]
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) {
		return lo
	}
	return math.Min(math.Max(v, lo), hi)
}

// round1 rounds to one decimal place
func round1(v float64) float64 {
	return math.Round(v*10) / 10
}
