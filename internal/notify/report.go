package notify

import (
	"bytes"
	"fmt"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

var (
	reportMarkdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
	)
	spanishPrinter = message.NewPrinter(language.Spanish)
)

// ReportData carries everything the performance report template needs.
type ReportData struct {
	UserName    string
	Period      types.Period
	Metrics     types.MetricsSnapshot
	Analysis    *types.InsightPayload
	GeneratedAt time.Time
}

// BuildPerformanceReport renders a performance analysis as email-ready HTML.
// The body is composed as markdown first so the structure stays readable in
// plain-text clients, then converted with goldmark.
func BuildPerformanceReport(data ReportData) (string, error) {
	md := buildReportMarkdown(data)

	var buf bytes.Buffer
	if err := reportMarkdown.Convert([]byte(md), &buf); err != nil {
		return "", fmt.Errorf("failed to render report: %w", err)
	}
	return buf.String(), nil
}

func buildReportMarkdown(data ReportData) string {
	var b strings.Builder

	name := data.UserName
	if name == "" {
		name = "Hola"
	}
	fmt.Fprintf(&b, "# Informe de rendimiento · %s\n\n", data.Period.Label())
	fmt.Fprintf(&b, "%s, aquí tienes el resumen de tu actividad generado el %s.\n\n",
		name, data.GeneratedAt.Format("02/01/2006"))

	b.WriteString("## Métricas clave\n\n")
	b.WriteString("| Métrica | Valor |\n| --- | --- |\n")
	fmt.Fprintf(&b, "| Horas trabajadas | %s |\n", spanishPrinter.Sprintf("%.1f h", data.Metrics.TotalWorkHours))
	fmt.Fprintf(&b, "| Horas facturables | %s |\n", spanishPrinter.Sprintf("%.1f h", data.Metrics.TotalBillableHours))
	fmt.Fprintf(&b, "| %% facturable | %s |\n", spanishPrinter.Sprintf("%.1f %%", data.Metrics.BillablePercentage))
	fmt.Fprintf(&b, "| Ingresos | %s |\n", spanishPrinter.Sprintf("%.2f €", data.Metrics.TotalRevenue))
	fmt.Fprintf(&b, "| Ingresos por hora | %s |\n", spanishPrinter.Sprintf("%.2f €/h", data.Metrics.RevenuePerHour))
	fmt.Fprintf(&b, "| Productividad media | %s |\n\n", spanishPrinter.Sprintf("%.1f / 10", data.Metrics.AvgProductivity))

	if data.Analysis != nil {
		fmt.Fprintf(&b, "## Análisis\n\n**Puntuación global: %s** (tendencia de ingresos: %s)\n\n%s\n\n",
			spanishPrinter.Sprintf("%.1f / 10", data.Analysis.ProductivityAnalysis.OverallScore),
			data.Analysis.FinancialPerformance.RevenueTrend,
			data.Analysis.ProductivityAnalysis.EfficiencyTrends)

		if len(data.Analysis.ActionableRecommendations) > 0 {
			b.WriteString("## Recomendaciones\n\n")
			for _, rec := range data.Analysis.ActionableRecommendations {
				fmt.Fprintf(&b, "- **%s** (%s, dificultad %s): %s\n",
					rec.Action, rec.Timeframe, rec.Difficulty, rec.ExpectedOutcome)
			}
			b.WriteString("\n")
		}

		if len(data.Analysis.NextPeriodPredictions.KeyFocusAreas) > 0 {
			b.WriteString("## Áreas de enfoque\n\n")
			for i, area := range data.Analysis.NextPeriodPredictions.KeyFocusAreas {
				fmt.Fprintf(&b, "%d. %s\n", i+1, area)
			}
			b.WriteString("\n")
		}
	}

	b.WriteString("---\n\nEste informe se ha generado automáticamente a partir de tus datos de Clyra.\n")
	return b.String()
}

// BuildMeetingReminder renders the reminder email for a meeting that starts
// soon.
func BuildMeetingReminder(userName string, meeting types.ScheduledEvent) (subject, html string, err error) {
	name := userName
	if name == "" {
		name = "Hola"
	}
	title := meeting.Title
	if title == "" {
		title = "Reunión"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "# Recordatorio de reunión\n\n")
	fmt.Fprintf(&b, "%s, tienes **%s** a las %s.\n\n", name, title, meeting.StartTime.Format("15:04"))
	if meeting.Location != "" {
		fmt.Fprintf(&b, "Lugar: %s\n\n", meeting.Location)
	}
	if meeting.MeetingURL != "" {
		fmt.Fprintf(&b, "[Unirse a la reunión](%s)\n", meeting.MeetingURL)
	}

	var buf bytes.Buffer
	if err := reportMarkdown.Convert([]byte(b.String()), &buf); err != nil {
		return "", "", fmt.Errorf("failed to render reminder: %w", err)
	}
	subject = fmt.Sprintf("Recordatorio: %s a las %s", title, meeting.StartTime.Format("15:04"))
	return subject, buf.String(), nil
}
