package ai

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

func TestBuildPrompt_IncludesMetricsAndPeriod(t *testing.T) {
	prompt := BuildPrompt(types.Period90Days, types.MetricsSnapshot{
		TotalWorkHours:     12.5,
		BillablePercentage: 64.2,
	}, &types.CollectedData{})

	assert.Contains(t, prompt, "últimos 90 días")
	assert.Contains(t, prompt, "12.5")
	assert.Contains(t, prompt, "64.2")
	assert.Contains(t, prompt, "productivity_analysis")
	assert.Contains(t, prompt, "next_period_predictions")
}

func TestBuildPrompt_SampleBounded(t *testing.T) {
	collected := &types.CollectedData{}
	for i := 0; i < 50; i++ {
		collected.Events = append(collected.Events, types.ScheduledEvent{
			Title: fmt.Sprintf("Evento %02d", i),
		})
		collected.Sessions = append(collected.Sessions, types.WorkSession{
			DurationMinutes: float64(i),
		})
	}

	prompt := BuildPrompt(types.Period30Days, types.MetricsSnapshot{}, collected)

	assert.Equal(t, maxSampleItems, strings.Count(prompt, "Evento "))
	assert.Contains(t, prompt, "muestra de 10, total 50")
	assert.NotContains(t, prompt, "Evento 10")
}

func TestBuildPrompt_AllProposalsIncluded(t *testing.T) {
	collected := &types.CollectedData{}
	for i := 0; i < 15; i++ {
		collected.Proposals = append(collected.Proposals, types.Proposal{
			Title: fmt.Sprintf("Presupuesto %02d", i),
		})
	}

	prompt := BuildPrompt(types.Period30Days, types.MetricsSnapshot{}, collected)
	assert.Equal(t, 15, strings.Count(prompt, "Presupuesto "))
}
