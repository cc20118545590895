package service

import (
	"testing"

	"speech_therapy_backend/internal/config"
	"speech_therapy_backend/internal/model"

	"github.com/stretchr/testify/assert"
)

var testScoring = config.ScoringConfig{
	VerbalWeight:       0.7,
	SelectionWeight:    0.3,
	StrengthThreshold:  0.7,
	ChallengeThreshold: 0.3,
}

func verbalAttempt(correct bool) model.SessionActivity {
	return model.SessionActivity{ResponseType: model.ResponseVerbal, IsCorrect: correct}
}

func selectionAttempt(correct bool) model.SessionActivity {
	return model.SessionActivity{ResponseType: model.ResponseNonverbal, IsCorrect: correct}
}

func TestAggregateAttempts(t *testing.T) {
	tests := []struct {
		name       string
		activities []model.SessionActivity
		wantScore  float64
	}{
		{
			name: "both modalities weighted",
			activities: []model.SessionActivity{
				verbalAttempt(true), verbalAttempt(false),
				selectionAttempt(true),
			},
			// (0.7*1 + 0.3*1) / (0.7*2 + 0.3*1)
			wantScore: 1.0 / 1.7,
		},
		{
			name: "attempt counts weight the blend",
			activities: []model.SessionActivity{
				verbalAttempt(true),
				selectionAttempt(false), selectionAttempt(false), selectionAttempt(false),
				selectionAttempt(false), selectionAttempt(false), selectionAttempt(false),
				selectionAttempt(false), selectionAttempt(false), selectionAttempt(false),
			},
			// one lucky verbal hit cannot dominate nine selection misses:
			// (0.7*1) / (0.7*1 + 0.3*9)
			wantScore: 0.7 / 3.4,
		},
		{
			name:       "verbal only uses raw rate",
			activities: []model.SessionActivity{verbalAttempt(true), verbalAttempt(true), verbalAttempt(false)},
			wantScore:  2.0 / 3.0,
		},
		{
			name:       "selection only uses raw rate",
			activities: []model.SessionActivity{selectionAttempt(false), selectionAttempt(true)},
			wantScore:  0.5,
		},
		{
			name:       "no attempts",
			activities: nil,
			wantScore:  0,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			stats := AggregateAttempts(tt.activities, testScoring)
			assert.InDelta(t, tt.wantScore, stats.OverallScore, 1e-9)
		})
	}
}

func TestAggregateAttemptsCounts(t *testing.T) {
	stats := AggregateAttempts([]model.SessionActivity{
		verbalAttempt(true), verbalAttempt(false), verbalAttempt(true),
		selectionAttempt(true), selectionAttempt(false),
	}, testScoring)

	assert.Equal(t, 3, stats.VerbalAttempts)
	assert.Equal(t, 2, stats.VerbalSuccess)
	assert.Equal(t, 2, stats.SelectionAttempts)
	assert.Equal(t, 1, stats.SelectionSuccess)
}

func TestAggregateAttemptsIdempotent(t *testing.T) {
	activities := []model.SessionActivity{verbalAttempt(true), selectionAttempt(false)}

	first := AggregateAttempts(activities, testScoring)
	second := AggregateAttempts(activities, testScoring)
	assert.Equal(t, first, second)
}
