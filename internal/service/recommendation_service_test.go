package service

import (
	"testing"

	"speech_therapy_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFallbackDifficulty(t *testing.T) {
	tests := []struct {
		avg  float64
		want string
	}{
		{0.85, model.DifficultyHard},
		{0.81, model.DifficultyHard},
		{0.8, model.DifficultyMedium},
		{0.7, model.DifficultyMedium},
		{0.6, model.DifficultyEasy},
		{0.3, model.DifficultyEasy},
		{0, model.DifficultyEasy},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, FallbackDifficulty(tt.avg), "avg=%v", tt.avg)
	}
}

func TestRecommendationConfidence(t *testing.T) {
	assert.InDelta(t, 0.68, RecommendationConfidence(0.8, 0.5), 1e-9)
	assert.InDelta(t, 0.0, RecommendationConfidence(0, 0), 1e-9)
	assert.InDelta(t, 1.0, RecommendationConfidence(1, 1), 1e-9)
}

func TestWeakestCategories(t *testing.T) {
	perfs := []model.ChildPerformance{
		perfRow("a", 0.55),
		perfRow("b", 0.1),
		perfRow("c", 0.7),
		perfRow("d", 0.2),
		perfRow("e", 0.5),
	}

	weak := WeakestCategories(perfs, 3)

	require.Len(t, weak, 3)
	assert.Equal(t, "b", weak[0].CategoryID)
	assert.Equal(t, "d", weak[1].CategoryID)
	assert.Equal(t, "e", weak[2].CategoryID)
}

func TestWeakestCategoriesNoneBelowCutoff(t *testing.T) {
	perfs := []model.ChildPerformance{perfRow("a", 0.8), perfRow("b", 0.95)}
	assert.Empty(t, WeakestCategories(perfs, 3))
}

func TestEncouragementMessage(t *testing.T) {
	names := map[string]string{"a": "Animals", "b": "Body Parts", "c": "Colors"}

	t.Run("generic when nothing is strong yet", func(t *testing.T) {
		msg := EncouragementMessage([]model.ChildPerformance{perfRow("a", 0.5)}, names)
		assert.Contains(t, msg, "Keep practicing")
	})

	t.Run("names the strongest categories", func(t *testing.T) {
		msg := EncouragementMessage([]model.ChildPerformance{
			perfRow("a", 0.85),
			perfRow("b", 0.9),
		}, names)
		assert.Contains(t, msg, "Body Parts")
		assert.Contains(t, msg, "Animals")
	})

	t.Run("caps the praise list at two", func(t *testing.T) {
		msg := EncouragementMessage([]model.ChildPerformance{
			perfRow("a", 0.85),
			perfRow("b", 0.95),
			perfRow("c", 0.9),
		}, names)
		assert.Contains(t, msg, "Body Parts")
		assert.Contains(t, msg, "Colors")
		assert.NotContains(t, msg, "Animals")
	})
}

func TestBuildProgressTracking(t *testing.T) {
	perfs := []model.ChildPerformance{
		{CategoryID: "a", OverallScore: 0.9, VerbalAttempts: 5, VerbalSuccess: 4, SelectionAttempts: 3, SelectionSuccess: 3},
		{CategoryID: "b", OverallScore: 0.5, VerbalAttempts: 2, VerbalSuccess: 1},
	}

	pt := BuildProgressTracking(perfs)

	assert.Equal(t, 2, pt.TotalCategories)
	assert.Equal(t, 1, pt.MasteredCategories)
	assert.InDelta(t, 0.7, pt.AverageScore, 1e-9)
	assert.Equal(t, 10, pt.TotalAttempts)
}

func TestBuildProgressTrackingEmpty(t *testing.T) {
	pt := BuildProgressTracking(nil)
	assert.Zero(t, pt.TotalCategories)
	assert.Zero(t, pt.AverageScore)
}

func perfRow(categoryID string, score float64) model.ChildPerformance {
	return model.ChildPerformance{CategoryID: categoryID, OverallScore: score}
}
