package ml

import (
	"context"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func trainingExamples() []Example {
	return []Example{
		{Features: Features{VerbalAccuracy: 0.2, SelectionAccuracy: 0.3, CategoryDifficulty: 1, TimeSpentMinutes: 10, SuccessRate: 0.25, PreviousAttempts: 5}, Label: "easy"},
		{Features: Features{VerbalAccuracy: 0.3, SelectionAccuracy: 0.2, CategoryDifficulty: 1, TimeSpentMinutes: 15, SuccessRate: 0.3, PreviousAttempts: 8}, Label: "easy"},
		{Features: Features{VerbalAccuracy: 0.9, SelectionAccuracy: 0.85, CategoryDifficulty: 3, TimeSpentMinutes: 120, SuccessRate: 0.9, PreviousAttempts: 60}, Label: "hard"},
		{Features: Features{VerbalAccuracy: 0.85, SelectionAccuracy: 0.9, CategoryDifficulty: 3, TimeSpentMinutes: 100, SuccessRate: 0.85, PreviousAttempts: 50}, Label: "hard"},
	}
}

func TestTrainAndPredict(t *testing.T) {
	c, err := Train(trainingExamples())
	require.NoError(t, err)

	label, err := c.Predict(context.Background(), Features{
		VerbalAccuracy: 0.88, SelectionAccuracy: 0.8, CategoryDifficulty: 3,
		TimeSpentMinutes: 90, SuccessRate: 0.85, PreviousAttempts: 40,
	})
	require.NoError(t, err)
	assert.Equal(t, "hard", label)

	label, err = c.Predict(context.Background(), Features{
		VerbalAccuracy: 0.2, SelectionAccuracy: 0.25, CategoryDifficulty: 1,
		TimeSpentMinutes: 12, SuccessRate: 0.2, PreviousAttempts: 6,
	})
	require.NoError(t, err)
	assert.Equal(t, "easy", label)
}

func TestTrainEmpty(t *testing.T) {
	_, err := Train(nil)
	assert.ErrorIs(t, err, ErrEmptyTrainingSet)
}

func TestPredictInvalidFeatures(t *testing.T) {
	c, err := Train(trainingExamples())
	require.NoError(t, err)

	_, err = c.Predict(context.Background(), Features{VerbalAccuracy: math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidFeatures)

	_, err = c.Predict(context.Background(), Features{PreviousAttempts: -1})
	assert.ErrorIs(t, err, ErrInvalidFeatures)
}

func TestPredictCancelledContext(t *testing.T) {
	c, err := Train(trainingExamples())
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = c.Predict(ctx, Features{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLoadModel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.json")
	data := `[
		{"verbalAccuracy":0.2,"selectionAccuracy":0.2,"categoryDifficulty":1,"timeSpentMinutes":10,"successRate":0.2,"previousAttempts":5,"label":"easy"},
		{"verbalAccuracy":0.9,"selectionAccuracy":0.9,"categoryDifficulty":3,"timeSpentMinutes":90,"successRate":0.9,"previousAttempts":50,"label":"hard"}
	]`
	require.NoError(t, os.WriteFile(path, []byte(data), 0644))

	c, err := LoadModel(path)
	require.NoError(t, err)

	label, err := c.Predict(context.Background(), Features{
		VerbalAccuracy: 0.85, SelectionAccuracy: 0.9, CategoryDifficulty: 3,
		TimeSpentMinutes: 80, SuccessRate: 0.88, PreviousAttempts: 45,
	})
	require.NoError(t, err)
	assert.Equal(t, "hard", label)
}

func TestLoadModelMissingFile(t *testing.T) {
	_, err := LoadModel(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}
