package phonetic

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyzeStutteredAttempt(t *testing.T) {
	result := New().Analyze("tomato", "t-t-tomato")

	require.True(t, result.IsCorrect)
	assert.Equal(t, 1.0, result.Similarity)
	assert.Empty(t, result.SpecialCase)
}

func TestAnalyzeEcholalia(t *testing.T) {
	result := New().Analyze("cat", "cat cat")

	require.True(t, result.IsCorrect)
	assert.InDelta(t, 0.95, result.Similarity, 1e-9)
	assert.Equal(t, SpecialCaseEcholalia, result.SpecialCase)
	assert.Contains(t, result.Feedback, "just once")
}

func TestAnalyzeExactMatch(t *testing.T) {
	result := New().Analyze("ball", "Ball!")

	require.True(t, result.IsCorrect)
	assert.Equal(t, 1.0, result.Similarity)
	assert.Contains(t, result.Feedback, "Perfect")
}

func TestAnalyzePhoneticVariant(t *testing.T) {
	// r→w is a plausible substitution inside the liquids group.
	result := New().Analyze("rabbit", "wabbit")

	require.True(t, result.IsCorrect)
	assert.Equal(t, 1.0, result.Similarity)
}

func TestAnalyzeMismatch(t *testing.T) {
	result := New().Analyze("elephant", "cat")

	require.False(t, result.IsCorrect)
	assert.Less(t, result.Similarity, 0.7)
	assert.Contains(t, result.Feedback, "practice together")
}

func TestAnalyzeEmptyTranscript(t *testing.T) {
	result := New().Analyze("cat", "")

	require.False(t, result.IsCorrect)
	assert.Equal(t, 0.0, result.Similarity)
}

func TestWithCorrectThreshold(t *testing.T) {
	// cat/bat lands at 0.9667 via edit distance plus boosts.
	assert.True(t, New().Analyze("cat", "bat").IsCorrect)
	assert.False(t, New(WithCorrectThreshold(0.99)).Analyze("cat", "bat").IsCorrect)
}

func TestNormalizeDisfluencies(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"leading letter stutter", "t-t-tomato", "tomato"},
		{"syllable stutter", "to-to-tomato", "tomato"},
		{"repeated word", "tomato tomato", "tomato"},
		{"filler words keep last attempt", "uh umm ball", "ball"},
		{"article stripped by last-token rule", "the cat", "cat"},
		{"punctuation and case", "Ball!", "ball"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, NormalizeDisfluencies(tt.input))
		})
	}
}

func TestIsEcholalic(t *testing.T) {
	tests := []struct {
		transcript string
		want       bool
	}{
		{"cat cat", true},
		{"cat cat cat", true},
		{"cat", false},
		{"cat dog", false},
		{"", false},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, IsEcholalic(tt.transcript), tt.transcript)
	}
}

func TestDetectStuttering(t *testing.T) {
	assert.True(t, DetectStuttering("the the cat"))
	assert.False(t, DetectStuttering("the cat"))
	assert.False(t, DetectStuttering(""))
}

func TestPhoneticVariants(t *testing.T) {
	variants := PhoneticVariants("rabbit")

	assert.Contains(t, variants, "rabbit")
	assert.Contains(t, variants, "wabbit")
	assert.Contains(t, variants, "labbit")
}

func TestMostDifferentSound(t *testing.T) {
	// c and b sit in different articulation groups.
	assert.Equal(t, "b→c", MostDifferentSound("cat", "bat"))

	// r and w share a group, so no divergence is found and the
	// leading sound of the expected word is returned.
	assert.Equal(t, "ra", MostDifferentSound("rabbit", "wabbit"))
}
