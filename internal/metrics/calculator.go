// Package metrics derives the period KPIs from collected records. The
// calculator is a pure function: no I/O, no errors, malformed numeric data
// degrades to zero instead of raising.
package metrics

import (
	"math"

	"github.com/juanmagp80/Clyra-sub003/pkg/types"
)

// Compute derives a MetricsSnapshot from the collected record sets. All
// returned values are finite, non-negative and rounded to 2 decimals; any
// division by zero yields 0.
func Compute(collected *types.CollectedData) types.MetricsSnapshot {
	var snapshot types.MetricsSnapshot
	if collected == nil {
		return snapshot
	}

	var totalMinutes, billableMinutes, productivitySum float64
	for i := range collected.Sessions {
		s := &collected.Sessions[i]
		totalMinutes += positive(s.DurationMinutes)
		billableMinutes += positive(s.BillableMinutes)
		productivitySum += positive(s.ProductivityScore)
	}

	snapshot.TotalWorkHours = totalMinutes / 60
	snapshot.TotalBillableHours = billableMinutes / 60
	if snapshot.TotalWorkHours > 0 {
		snapshot.BillablePercentage = snapshot.TotalBillableHours / snapshot.TotalWorkHours * 100
	}
	if n := len(collected.Sessions); n > 0 {
		snapshot.AvgProductivity = productivitySum / float64(n)
	}

	var revenue, eventMinutes, eventProductivitySum float64
	for i := range collected.Events {
		e := &collected.Events[i]
		revenue += positive(e.ActualRevenue)
		eventProductivitySum += positive(e.ProductivityScore)
	}
	snapshot.TotalRevenue = revenue

	// Many users log calendar time but never start the tracker, so when no
	// billable session time exists the event durations stand in for it.
	// Events with missing or non-positive durations are excluded from the
	// fallback sum rather than coerced to zero.
	snapshot.EffectiveBillableHours = snapshot.TotalBillableHours
	if snapshot.EffectiveBillableHours <= 0 {
		for i := range collected.Events {
			if d := collected.Events[i].DurationMinutes; isUsable(d) && d > 0 {
				eventMinutes += d
			}
		}
		snapshot.EffectiveBillableHours = eventMinutes / 60
	}

	if snapshot.EffectiveBillableHours > 0 {
		snapshot.RevenuePerHour = snapshot.TotalRevenue / snapshot.EffectiveBillableHours
	}

	snapshot.TotalEvents = len(collected.Events)
	if n := len(collected.Events); n > 0 {
		var total float64
		for i := range collected.Events {
			total += positive(collected.Events[i].DurationMinutes)
		}
		snapshot.AvgEventDuration = total / float64(n) / 60
		snapshot.AvgEventProductivity = eventProductivitySum / float64(n)
	}

	snapshot.HasTimeTracking = len(collected.Sessions) > 0
	snapshot.HasEvents = len(collected.Events) > 0
	snapshot.HasBudgets = len(collected.Proposals) > 0

	snapshot.TotalWorkHours = round2(cleanNumber(snapshot.TotalWorkHours))
	snapshot.TotalBillableHours = round2(cleanNumber(snapshot.TotalBillableHours))
	snapshot.BillablePercentage = round2(cleanNumber(snapshot.BillablePercentage))
	snapshot.AvgProductivity = round2(cleanNumber(snapshot.AvgProductivity))
	snapshot.TotalRevenue = round2(cleanNumber(snapshot.TotalRevenue))
	snapshot.EffectiveBillableHours = round2(cleanNumber(snapshot.EffectiveBillableHours))
	snapshot.RevenuePerHour = round2(cleanNumber(snapshot.RevenuePerHour))
	snapshot.AvgEventDuration = round2(cleanNumber(snapshot.AvgEventDuration))
	snapshot.AvgEventProductivity = round2(cleanNumber(snapshot.AvgEventProductivity))

	return snapshot
}

// cleanNumber substitutes 0 for NaN, infinities and negative values. Every
// derived metric passes through here before rounding.
func cleanNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// round2 rounds to 2 decimal places, half away from zero
func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// positive treats NaN, infinite and negative inputs as zero when summing
func positive(v float64) float64 {
	if !isUsable(v) || v < 0 {
		return 0
	}
	return v
}

// isUsable reports whether a stored numeric field holds a finite value
func isUsable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
