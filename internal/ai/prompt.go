package ai

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// maxSampleItems bounds how many events and sessions are embedded in the
// prompt. A cost and latency control: the history grows without limit, the
// prompt must not.
const maxSampleItems = 10

// systemMessage establishes the assistant's persona for every analysis call.
const systemMessage = "Eres un consultor de productividad y negocio para freelancers y " +
	"agencias. Analizas datos reales de calendario, registro de tiempo y presupuestos, " +
	"y devuelves conclusiones accionables en español. Respondes únicamente con un " +
	"objeto JSON válido, sin texto adicional."

// eventSample is the reduced event shape embedded in prompts
type eventSample struct {
	Title             string  `json:"titulo"`
	Category          string  `json:"categoria,omitempty"`
	DurationMinutes   float64 `json:"duracion_minutos"`
	ProductivityScore float64 `json:"productividad"`
	ActualRevenue     float64 `json:"ingresos"`
	Status            string  `json:"estado"`
}

// sessionSample is the reduced session shape embedded in prompts
type sessionSample struct {
	DurationMinutes   float64 `json:"duracion_minutos"`
	BillableMinutes   float64 `json:"minutos_facturables"`
	ProductivityScore float64 `json:"productividad"`
	TasksCompleted    int     `json:"tareas_completadas"`
	Earnings          float64 `json:"ganancias"`
}

// proposalSample is the reduced proposal shape embedded in prompts
type proposalSample struct {
	Title       string  `json:"titulo"`
	TotalAmount float64 `json:"importe_total"`
	Status      string  `json:"estado"`
}

// BuildPrompt serializes the period, metrics and bounded record samples into
// the analysis brief sent to the completion API.
func BuildPrompt(period types.Period, metrics types.MetricsSnapshot, collected *types.CollectedData) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Analiza el rendimiento de este profesional durante los %s.\n\n", period.Label())

	b.WriteString("MÉTRICAS CALCULADAS DEL PERÍODO:\n")
	writeJSON(&b, metrics)

	events := make([]eventSample, 0, maxSampleItems)
	for i := range collected.Events {
		if i >= maxSampleItems {
			break
		}
		e := &collected.Events[i]
		events = append(events, eventSample{
			Title:             e.Title,
			Category:          e.Category,
			DurationMinutes:   e.DurationMinutes,
			ProductivityScore: e.ProductivityScore,
			ActualRevenue:     e.ActualRevenue,
			Status:            e.Status,
		})
	}
	fmt.Fprintf(&b, "\nEVENTOS DE CALENDARIO (muestra de %d, total %d):\n", len(events), len(collected.Events))
	writeJSON(&b, events)

	sessions := make([]sessionSample, 0, maxSampleItems)
	for i := range collected.Sessions {
		if i >= maxSampleItems {
			break
		}
		s := &collected.Sessions[i]
		sessions = append(sessions, sessionSample{
			DurationMinutes:   s.DurationMinutes,
			BillableMinutes:   s.BillableMinutes,
			ProductivityScore: s.ProductivityScore,
			TasksCompleted:    s.TasksCompleted,
			Earnings:          s.Earnings,
		})
	}
	fmt.Fprintf(&b, "\nSESIONES DE TRABAJO (muestra de %d, total %d):\n", len(sessions), len(collected.Sessions))
	writeJSON(&b, sessions)

	proposals := make([]proposalSample, 0, len(collected.Proposals))
	for i := range collected.Proposals {
		p := &collected.Proposals[i]
		proposals = append(proposals, proposalSample{
			Title:       p.Title,
			TotalAmount: p.TotalAmount,
			Status:      p.Status,
		})
	}
	fmt.Fprintf(&b, "\nPRESUPUESTOS (%d):\n", len(proposals))
	writeJSON(&b, proposals)

	b.WriteString("\nDevuelve UN ÚNICO objeto JSON con exactamente esta estructura, con todos los textos en español:\n")
	b.WriteString(payloadSkeleton)

	return b.String()
}

// writeJSON appends an indented JSON rendering, degrading to an empty
// object on marshal failure
func writeJSON(b *strings.Builder, v interface{}) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		b.WriteString("{}")
		return
	}
	b.Write(data)
	b.WriteString("\n")
}

// payloadSkeleton shows the model the exact document shape it must return.
const payloadSkeleton = `{
  "productivity_analysis": {
    "overall_score": <número 1-10>,
    "efficiency_trends": "<tendencias observadas>",
    "peak_performance_hours": ["HH:MM-HH:MM"],
    "productivity_patterns": "<patrones detectados>"
  },
  "time_management": {
    "billable_percentage": <número>,
    "average_session_length": <horas>,
    "break_frequency": "<frecuencia de descansos>",
    "time_distribution": {"<categoría>": <horas>}
  },
  "client_performance": {
    "response_time_average": "<tiempo medio de respuesta>",
    "satisfaction_indicators": "<indicadores>",
    "communication_effectiveness": <número 1-10>,
    "project_delivery_rate": <porcentaje 0-100>
  },
  "financial_performance": {
    "revenue_trend": "<tendencia de ingresos>",
    "revenue_per_hour": <número>,
    "proposal_conversion_rate": <porcentaje 0-100>,
    "budget_accuracy": "<precisión de presupuestos>"
  },
  "bottlenecks_identified": [
    {"area": "<área>", "impact": "alto|medio|bajo", "description": "<descripción>", "solution": "<solución>"}
  ],
  "opportunities": [
    {"opportunity": "<oportunidad>", "potential_impact": "<impacto>", "implementation": "<cómo>", "priority": "alta|media|baja"}
  ],
  "actionable_recommendations": [
    {"action": "<acción>", "expected_outcome": "<resultado esperado>", "timeframe": "<plazo>", "difficulty": "fácil|medio|difícil"}
  ],
  "next_period_predictions": {
    "productivity_forecast": <número 1-10>,
    "revenue_projection": <número>,
    "key_focus_areas": ["<área clave>"]
  }
}`
