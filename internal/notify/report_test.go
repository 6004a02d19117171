package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmagp80/Clyra-sub003/internal/config"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

func TestBuildPerformanceReport(t *testing.T) {
	html, err := BuildPerformanceReport(ReportData{
		UserName: "María",
		Period:   types.Period30Days,
		Metrics: types.MetricsSnapshot{
			TotalWorkHours:     42.5,
			TotalBillableHours: 30,
			BillablePercentage: 70.6,
			TotalRevenue:       1250.50,
			RevenuePerHour:     29.42,
			AvgProductivity:    7.8,
		},
		Analysis: &types.InsightPayload{
			ProductivityAnalysis: types.ProductivityAnalysis{
				OverallScore:     7.5,
				EfficiencyTrends: "Ritmo de trabajo estable durante el periodo.",
			},
			FinancialPerformance: types.FinancialPerformance{RevenueTrend: "estable"},
			ActionableRecommendations: []types.Recommendation{
				{
					Action:          "Agrupa las reuniones en dos días fijos",
					ExpectedOutcome: "Más bloques de trabajo profundo",
					Timeframe:       "próximas 2 semanas",
					Difficulty:      types.DifficultyFacil,
				},
			},
			NextPeriodPredictions: types.Predictions{
				KeyFocusAreas: []string{"Tiempo facturable", "Seguimiento de propuestas"},
			},
		},
		GeneratedAt: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	assert.Contains(t, html, "<h1>")
	assert.Contains(t, html, "María")
	assert.Contains(t, html, "10/03/2025")
	assert.Contains(t, html, "Agrupa las reuniones en dos días fijos")
	assert.Contains(t, html, "Tiempo facturable")
	// GFM table extension must be active for the metrics table
	assert.Contains(t, html, "<table>")
}

func TestBuildPerformanceReportWithoutAnalysis(t *testing.T) {
	html, err := BuildPerformanceReport(ReportData{
		Period:      types.Period7Days,
		GeneratedAt: time.Now(),
	})
	require.NoError(t, err)
	assert.Contains(t, html, "Métricas clave")
	assert.NotContains(t, html, "Recomendaciones")
}

func TestBuildMeetingReminder(t *testing.T) {
	start := time.Date(2025, 3, 10, 16, 30, 0, 0, time.UTC)
	subject, html, err := BuildMeetingReminder("Carlos", types.ScheduledEvent{
		Title:      "Kickoff con Acme",
		StartTime:  start,
		MeetingURL: "https://meet.example.com/abc",
	})
	require.NoError(t, err)

	assert.Equal(t, "Recordatorio: Kickoff con Acme a las 16:30", subject)
	assert.Contains(t, html, "Carlos")
	assert.Contains(t, html, `href="https://meet.example.com/abc"`)
}

func TestBuildMeetingReminderDefaults(t *testing.T) {
	subject, html, err := BuildMeetingReminder("", types.ScheduledEvent{
		StartTime: time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
	assert.Contains(t, subject, "Reunión")
	assert.Contains(t, html, "Hola")
}

func TestResendClientSend(t *testing.T) {
	var captured resendRequest
	var gotAuth string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":"email_123"}`))
	}))
	defer server.Close()

	client, err := NewResendClient(config.EmailConfig{
		APIKey:      "re_test_key",
		BaseURL:     server.URL,
		FromAddress: "Clyra <avisos@clyra.app>",
	})
	require.NoError(t, err)

	err = client.Send(context.Background(), EmailMessage{
		To:      "maria@example.com",
		Subject: "Informe semanal",
		HTML:    "<h1>Informe</h1>",
	})
	require.NoError(t, err)

	assert.Equal(t, "Bearer re_test_key", gotAuth)
	assert.Equal(t, "Clyra <avisos@clyra.app>", captured.From)
	assert.Equal(t, []string{"maria@example.com"}, captured.To)
	assert.Equal(t, "Informe semanal", captured.Subject)
}

func TestResendClientSendProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnprocessableEntity)
		_, _ = w.Write([]byte(`{"message":"invalid from address"}`))
	}))
	defer server.Close()

	client, err := NewResendClient(config.EmailConfig{APIKey: "re_test_key", BaseURL: server.URL})
	require.NoError(t, err)

	err = client.Send(context.Background(), EmailMessage{To: "x@example.com"})
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "422"))
}

func TestNewResendClientRequiresKey(t *testing.T) {
	_, err := NewResendClient(config.EmailConfig{})
	assert.Error(t, err)
}
