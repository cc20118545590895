package service

import (
	"testing"
	"time"

	"speech_therapy_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testSession() *model.TherapySession {
	start := time.Date(2026, 8, 1, 10, 0, 0, 0, time.UTC)
	end := start.Add(20 * time.Minute)
	s := &model.TherapySession{StartTime: start, EndTime: &end}
	s.ID = "sess-1"
	return s
}

func TestSummarizeSessionEmpty(t *testing.T) {
	overview := SummarizeSession(testSession(), nil, nil)

	assert.Equal(t, "sess-1", overview.SessionID)
	assert.Zero(t, overview.TotalActivities)
	assert.Zero(t, overview.AccuracyPercentage)
	require.Len(t, overview.Recommendations, 1)
	assert.Contains(t, overview.Recommendations[0], "warm up")
}

func TestSummarizeSession(t *testing.T) {
	score := 0.9
	activities := []model.SessionActivity{
		{ItemID: "i1", ResponseType: model.ResponseVerbal, IsCorrect: true, PronunciationScore: &score, ResponseTimeSeconds: 2},
		{ItemID: "i2", ResponseType: model.ResponseVerbal, IsCorrect: false, ResponseTimeSeconds: 3},
		{ItemID: "i1", ResponseType: model.ResponseNonverbal, IsCorrect: true, ResponseTimeSeconds: 4},
		{ItemID: "i2", ResponseType: model.ResponseNonverbal, IsCorrect: true, ResponseTimeSeconds: 3},
	}
	names := map[string]string{"i1": "cat", "i2": "dog"}

	overview := SummarizeSession(testSession(), activities, names)

	assert.Equal(t, 4, overview.TotalActivities)
	assert.Equal(t, 3, overview.CorrectAnswers)
	assert.InDelta(t, 75.0, overview.AccuracyPercentage, 1e-9)
	assert.InDelta(t, 3.0, overview.AverageResponseTime, 1e-9)
	assert.InDelta(t, 20.0, overview.DurationMinutes, 1e-9)

	require.Len(t, overview.Activities, 4)
	assert.Equal(t, "cat", overview.Activities[0].ItemName)

	// items answered correctly become strengths, missed ones need practice;
	// dog shows up in both because it was missed verbally but selected right
	assert.Equal(t, []string{"cat", "dog"}, overview.Strengths)
	assert.Equal(t, []string{"dog"}, overview.AreasForImprovement)

	require.NotEmpty(t, overview.Recommendations)
	assert.Contains(t, overview.Recommendations[0], "Excellent progress")
	assert.Contains(t, overview.Recommendations, "Strong performance on: cat, dog")
	assert.Contains(t, overview.Recommendations, "Practice needed on: dog")
}

func TestSummarizeSessionLowAccuracy(t *testing.T) {
	activities := []model.SessionActivity{
		{ItemID: "i1", ResponseType: model.ResponseVerbal, IsCorrect: false, ResponseTimeSeconds: 12},
		{ItemID: "i2", ResponseType: model.ResponseVerbal, IsCorrect: false, ResponseTimeSeconds: 14},
		{ItemID: "i1", ResponseType: model.ResponseNonverbal, IsCorrect: true, ResponseTimeSeconds: 11},
	}

	overview := SummarizeSession(testSession(), activities, nil)

	// unknown items fall back to the raw id
	assert.Equal(t, "i1", overview.Activities[0].ItemName)
	assert.Equal(t, []string{"i1", "i2"}, overview.AreasForImprovement)
	assert.Equal(t, []string{"i1"}, overview.Strengths)

	require.NotEmpty(t, overview.Recommendations)
	assert.Contains(t, overview.Recommendations[0], "revisiting basic concepts")
	assert.Contains(t, overview.Recommendations, "Practice needed on: i1, i2")
}

func TestSummarizeSessionManyMisses(t *testing.T) {
	activities := []model.SessionActivity{
		{ItemID: "i1", IsCorrect: false},
		{ItemID: "i2", IsCorrect: false},
		{ItemID: "i3", IsCorrect: false},
		{ItemID: "i4", IsCorrect: false},
	}

	overview := SummarizeSession(testSession(), activities, nil)

	// only the first three misses get named, plus a pacing hint
	assert.Contains(t, overview.Recommendations, "Practice needed on: i1, i2, i3")
	assert.Contains(t, overview.Recommendations, "Focus on 2-3 items at a time for better retention")
}
