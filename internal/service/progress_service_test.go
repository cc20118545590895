package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func day(offset int) time.Time {
	return time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC).AddDate(0, 0, offset)
}

func TestCalculateTrendNoData(t *testing.T) {
	window := CalculateTrend(nil, dayBucket)
	assert.Equal(t, TrendNoData, window.Trend)
	assert.Zero(t, window.Rate)
}

func TestCalculateTrendInsufficientData(t *testing.T) {
	points := []TrendPoint{
		{At: day(0), Score: 0.4},
		{At: day(0), Score: 0.6},
	}

	window := CalculateTrend(points, dayBucket)

	assert.Equal(t, TrendInsufficientData, window.Trend)
	assert.InDelta(t, 0.5, window.CurrentScore, 1e-9)
	assert.InDelta(t, 0.5, window.StartingScore, 1e-9)
}

func TestCalculateTrendImproving(t *testing.T) {
	points := []TrendPoint{
		{At: day(0), Score: 0.2},
		{At: day(1), Score: 0.5},
		{At: day(2), Score: 0.9},
	}

	window := CalculateTrend(points, dayBucket)

	assert.Equal(t, TrendImproving, window.Trend)
	assert.InDelta(t, (0.9-0.2)/3, window.Rate, 1e-9)
	assert.InDelta(t, 0.9, window.CurrentScore, 1e-9)
	assert.InDelta(t, 0.2, window.StartingScore, 1e-9)
}

func TestCalculateTrendDeclining(t *testing.T) {
	points := []TrendPoint{
		{At: day(0), Score: 0.9},
		{At: day(1), Score: 0.5},
		{At: day(2), Score: 0.2},
	}

	window := CalculateTrend(points, dayBucket)
	assert.Equal(t, TrendDeclining, window.Trend)
}

func TestCalculateTrendStable(t *testing.T) {
	points := []TrendPoint{
		{At: day(0), Score: 0.5},
		{At: day(1), Score: 0.5},
	}

	window := CalculateTrend(points, dayBucket)
	assert.Equal(t, TrendStable, window.Trend)
	assert.Zero(t, window.Rate)
}

func TestCalculateTrendSmallGainStillImproving(t *testing.T) {
	// any positive slope counts, there is no dead band
	points := []TrendPoint{
		{At: day(0), Score: 0.5},
		{At: day(1), Score: 0.56},
	}

	window := CalculateTrend(points, dayBucket)
	assert.Equal(t, TrendImproving, window.Trend)
	assert.InDelta(t, 0.03, window.Rate, 1e-9)
}

func TestCalculateTrendISOWeekBuckets(t *testing.T) {
	// three weeks of monthly data collapse into three buckets
	points := []TrendPoint{
		{At: day(0), Score: 0.2},
		{At: day(1), Score: 0.4},
		{At: day(7), Score: 0.5},
		{At: day(14), Score: 0.8},
	}

	window := CalculateTrend(points, isoWeekBucket)

	assert.Equal(t, TrendImproving, window.Trend)
	assert.InDelta(t, 0.3, window.StartingScore, 1e-9)
	assert.InDelta(t, 0.8, window.CurrentScore, 1e-9)
}

func TestImprovementAreas(t *testing.T) {
	names := map[string]string{"a": "Animals", "b": "Body Parts", "c": "Colors", "f": "Food"}
	week := []TrendPoint{
		{At: day(0), Score: 0.2, CategoryID: "a"},
		{At: day(0), Score: 0.9, CategoryID: "b"},
		{At: day(0), Score: 0.5, CategoryID: "c"},
		{At: day(1), Score: 0.5, CategoryID: "c"},
		{At: day(1), Score: 0.1, CategoryID: "a"},
		{At: day(2), Score: 0.5, CategoryID: "c"},
	}
	// Food only shows up earlier in the month and is the weakest overall
	month := append([]TrendPoint{{At: day(-20), Score: 0.05, CategoryID: "f"}}, week...)

	// weekly weak categories by practice count, then the weakest of the month
	areas := ImprovementAreas(week, month, names, 3)
	assert.Equal(t, []string{"Colors", "Animals", "Food"}, areas)

	limited := ImprovementAreas(week, month, names, 1)
	assert.Equal(t, []string{"Colors", "Food"}, limited)
}

func TestImprovementAreasWeakestNotRepeated(t *testing.T) {
	names := map[string]string{"a": "Animals", "b": "Body Parts"}
	week := []TrendPoint{
		{At: day(0), Score: 0.2, CategoryID: "a"},
		{At: day(0), Score: 0.9, CategoryID: "b"},
	}

	// Animals is both the weekly weak spot and the monthly weakest
	areas := ImprovementAreas(week, week, names, 3)
	assert.Equal(t, []string{"Animals"}, areas)
}

func TestImprovementAreasAllStrong(t *testing.T) {
	points := []TrendPoint{
		{At: day(0), Score: 0.9, CategoryID: "a"},
		{At: day(0), Score: 0.8, CategoryID: "b"},
	}

	// nothing weak this week, the monthly weakest still gets listed
	assert.Equal(t, []string{"b"}, ImprovementAreas(points, points, nil, 3))
}
