package ai

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/juanmagp80/Clyra-sub003/internal/logging"
	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// validModelOutput returns a schema-valid analysis document as the model
// would emit it.
func validModelOutput(t *testing.T) string {
	t.Helper()
	payload := NewFallbackGenerator().Generate(types.Period30Days, types.MetricsSnapshot{
		TotalWorkHours:     10,
		BillablePercentage: 75,
		AvgProductivity:    7.5,
		RevenuePerHour:     80,
		HasTimeTracking:    true,
	}, &types.CollectedData{})
	data, err := json.Marshal(payload)
	require.NoError(t, err)
	return string(data)
}

func someActivity() *types.CollectedData {
	return &types.CollectedData{
		Events:        []types.ScheduledEvent{{ID: "e1", DurationMinutes: 60}},
		Sessions:      []types.WorkSession{{ID: "s1", DurationMinutes: 120, BillableMinutes: 90}},
		Proposals:     []types.Proposal{},
		PriorInsights: []types.InsightRecord{},
	}
}

func TestGenerate_ModelPath(t *testing.T) {
	client := NewMockClient(validModelOutput(t))
	gen, err := NewGenerator(client, logging.NewNoop())
	require.NoError(t, err)

	payload, source := gen.Generate(context.Background(), someActivity(), types.Period30Days, types.MetricsSnapshot{})

	assert.Equal(t, SourceModel, source)
	assert.Equal(t, int64(1), client.Calls.Load())
	assert.Greater(t, payload.ProductivityAnalysis.OverallScore, 0.0)
}

func TestGenerate_FencedJSONAccepted(t *testing.T) {
	client := NewMockClient("```json\n" + validModelOutput(t) + "\n```")
	gen, err := NewGenerator(client, logging.NewNoop())
	require.NoError(t, err)

	_, source := gen.Generate(context.Background(), someActivity(), types.Period30Days, types.MetricsSnapshot{})
	assert.Equal(t, SourceModel, source)
}

func TestGenerate_ClientErrorFallsBack(t *testing.T) {
	client := &MockClient{
		CompleteFn: func(context.Context, CompletionRequest) (*CompletionResponse, error) {
			return nil, errors.New("rate limited")
		},
	}
	gen, err := NewGenerator(client, logging.NewNoop())
	require.NoError(t, err)

	payload, source := gen.Generate(context.Background(), someActivity(), types.Period30Days, types.MetricsSnapshot{
		BillablePercentage: 75,
		AvgProductivity:    7.5,
		HasTimeTracking:    true,
	})

	assert.Equal(t, SourceFallback, source)
	assert.Equal(t, int64(1), client.Calls.Load(), "exactly one attempt, no retries")
	assert.Greater(t, payload.ProductivityAnalysis.OverallScore, 0.0)
}

func TestGenerate_MalformedJSONFallsBack(t *testing.T) {
	client := NewMockClient("I'm sorry, I can't produce JSON today")
	gen, err := NewGenerator(client, logging.NewNoop())
	require.NoError(t, err)

	_, source := gen.Generate(context.Background(), someActivity(), types.Period30Days, types.MetricsSnapshot{})
	assert.Equal(t, SourceFallback, source)
}

func TestGenerate_SchemaViolationFallsBack(t *testing.T) {
	// Valid JSON, wrong shape: missing every required section
	client := NewMockClient(`{"resumen": "todo bien"}`)
	gen, err := NewGenerator(client, logging.NewNoop())
	require.NoError(t, err)

	_, source := gen.Generate(context.Background(), someActivity(), types.Period30Days, types.MetricsSnapshot{})
	assert.Equal(t, SourceFallback, source)
}

func TestGenerate_ZeroDataShortCircuit(t *testing.T) {
	client := NewMockClient(validModelOutput(t))
	gen, err := NewGenerator(client, logging.NewNoop())
	require.NoError(t, err)

	empty := &types.CollectedData{
		Events:    []types.ScheduledEvent{},
		Sessions:  []types.WorkSession{},
		Proposals: []types.Proposal{},
		// Prior insights alone do not count as activity
		PriorInsights: []types.InsightRecord{{ID: "old"}},
	}

	payload, source := gen.Generate(context.Background(), empty, types.Period30Days, types.MetricsSnapshot{})

	assert.Equal(t, SourceInsufficientData, source)
	assert.Zero(t, client.Calls.Load(), "model must not be consulted with nothing to analyze")
	assert.InDelta(t, 5.0, payload.ProductivityAnalysis.OverallScore, 0.001)
}

func TestGenerate_NilClientUsesFallback(t *testing.T) {
	gen, err := NewGenerator(nil, logging.NewNoop())
	require.NoError(t, err)

	_, source := gen.Generate(context.Background(), someActivity(), types.Period30Days, types.MetricsSnapshot{})
	assert.Equal(t, SourceFallback, source)
}

func TestGenerate_RequestShape(t *testing.T) {
	var got CompletionRequest
	client := &MockClient{
		CompleteFn: func(_ context.Context, req CompletionRequest) (*CompletionResponse, error) {
			got = req
			return &CompletionResponse{Content: validModelOutput(t)}, nil
		},
	}
	gen, err := NewGenerator(client, logging.NewNoop())
	require.NoError(t, err)

	gen.Generate(context.Background(), someActivity(), types.Period7Days, types.MetricsSnapshot{})

	assert.True(t, got.JSONMode)
	assert.NotEmpty(t, got.SystemMessage)
	assert.Contains(t, got.Prompt, "últimos 7 días")
}

func TestDecodePayload_WeakTyping(t *testing.T) {
	doc := map[string]interface{}{
		"productivity_analysis": map[string]interface{}{
			// Model returned the score as a string
			"overall_score":          "7.5",
			"efficiency_trends":      "mejorando",
			"peak_performance_hours": []interface{}{"09:00-11:00"},
			"productivity_patterns":  "constante",
		},
	}

	var payload types.InsightPayload
	require.NoError(t, decodePayload(doc, &payload))
	assert.InDelta(t, 7.5, payload.ProductivityAnalysis.OverallScore, 0.001)
	assert.Equal(t, []string{"09:00-11:00"}, payload.ProductivityAnalysis.PeakPerformanceHours)
}
