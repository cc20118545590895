package service

import (
	"testing"
	"time"

	"speech_therapy_backend/internal/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildProfile(t *testing.T) {
	perfs := []model.ChildPerformance{
		{CategoryID: "animals", OverallScore: 0.9},
		{CategoryID: "colors", OverallScore: 0.2},
		{CategoryID: "shapes", OverallScore: 0.5},
	}
	attempts := []model.SessionActivity{
		verbalAttempt(true), verbalAttempt(true),
		selectionAttempt(true), selectionAttempt(false),
	}
	names := map[string]string{"animals": "Animals", "colors": "Colors", "shapes": "Shapes"}

	profile := BuildProfile("child-1", perfs, attempts, names, testScoring)

	assert.Equal(t, []string{"Animals"}, profile.Strengths)
	assert.Equal(t, []string{"Colors"}, profile.Challenges)
	assert.Equal(t, model.ResponseVerbal, profile.PreferredModality)
	assert.Equal(t, model.DifficultyMedium, profile.RecommendedLevel)
}

func TestBuildProfileNewChild(t *testing.T) {
	profile := BuildProfile("child-1", nil, nil, nil, testScoring)

	assert.Empty(t, profile.Strengths)
	assert.Empty(t, profile.Challenges)
	assert.Empty(t, profile.PreferredModality)
	assert.Equal(t, model.DifficultyEasy, profile.RecommendedLevel)
}

func TestBuildProfilePrefersSelection(t *testing.T) {
	attempts := []model.SessionActivity{
		verbalAttempt(false), verbalAttempt(true),
		selectionAttempt(true), selectionAttempt(true),
	}

	profile := BuildProfile("child-1", nil, attempts, nil, testScoring)
	assert.Equal(t, model.ResponseNonverbal, profile.PreferredModality)
}

func TestBuildProfileModalityTieFavorsSelection(t *testing.T) {
	attempts := []model.SessionActivity{
		verbalAttempt(true), verbalAttempt(false),
		selectionAttempt(true), selectionAttempt(false),
	}

	profile := BuildProfile("child-1", nil, attempts, nil, testScoring)
	assert.Equal(t, model.ResponseNonverbal, profile.PreferredModality)
}

func TestBuildProfileModalityBeforeAggregation(t *testing.T) {
	// attempts not yet rolled into performance rows still drive the preference
	attempts := []model.SessionActivity{
		verbalAttempt(true),
		selectionAttempt(false),
	}

	profile := BuildProfile("child-1", nil, attempts, nil, testScoring)
	assert.Equal(t, model.ResponseVerbal, profile.PreferredModality)
}

func pathCategory(id, name, level string, sortOrder int) model.ActivityCategory {
	c := model.ActivityCategory{Name: name, DifficultyLevel: level, SortOrder: sortOrder}
	c.ID = id
	return c
}

func TestOrderLearningPath(t *testing.T) {
	categories := []model.ActivityCategory{
		pathCategory("animals", "Animals", model.DifficultyEasy, 1),
		pathCategory("colors", "Colors", model.DifficultyEasy, 2),
		pathCategory("food", "Food", model.DifficultyEasy, 3),
		pathCategory("shapes", "Shapes", model.DifficultyMedium, 1),
	}
	profile := model.ChildProfile{
		Strengths:        []string{"Animals"},
		Challenges:       []string{"Colors"},
		RecommendedLevel: model.DifficultyMedium,
	}

	// food is easy but the recommended level is medium, so it stays off
	items := OrderLearningPath(profile, categories)

	require.Len(t, items, 3)
	assert.Equal(t, "animals", items[0].CategoryID)
	assert.Equal(t, model.PathReasonStrength, items[0].Reason)
	assert.InDelta(t, 0.9, items[0].TargetScore, 1e-9)

	assert.Equal(t, "shapes", items[1].CategoryID)
	assert.Equal(t, model.PathReasonNewAtLevel, items[1].Reason)
	assert.InDelta(t, 0.7, items[1].TargetScore, 1e-9)

	assert.Equal(t, "colors", items[2].CategoryID)
	assert.Equal(t, model.PathReasonChallenge, items[2].Reason)
	assert.InDelta(t, 0.5, items[2].TargetScore, 1e-9)

	// priorities are contiguous starting at 1
	for i, item := range items {
		assert.Equal(t, i+1, item.Priority)
		assert.Equal(t, model.PathStatusPending, item.Status)
	}
}

func TestOrderLearningPathKeepsPracticedCategories(t *testing.T) {
	// a high-scoring strength and a mid-scoring category at the recommended
	// level both stay on the path
	perfs := []model.ChildPerformance{
		{CategoryID: "animals", OverallScore: 0.85},
		{CategoryID: "shapes", OverallScore: 0.5},
	}
	names := map[string]string{"animals": "Animals", "shapes": "Shapes"}
	profile := BuildProfile("child-1", perfs, nil, names, testScoring)
	require.Equal(t, model.DifficultyMedium, profile.RecommendedLevel)

	categories := []model.ActivityCategory{
		pathCategory("animals", "Animals", model.DifficultyEasy, 1),
		pathCategory("shapes", "Shapes", model.DifficultyMedium, 1),
	}

	items := OrderLearningPath(profile, categories)

	require.Len(t, items, 2)
	assert.Equal(t, "animals", items[0].CategoryID)
	assert.Equal(t, model.PathReasonStrength, items[0].Reason)
	assert.InDelta(t, 0.9, items[0].TargetScore, 1e-9)

	assert.Equal(t, "shapes", items[1].CategoryID)
	assert.Equal(t, model.PathReasonNewAtLevel, items[1].Reason)
	assert.InDelta(t, 0.7, items[1].TargetScore, 1e-9)
}

func TestAdjustPathTargetsCap(t *testing.T) {
	items := []model.LearningPathItem{
		{CategoryID: "animals", TargetScore: 0.95, Status: model.PathStatusInProgress},
	}

	adjusted := AdjustPathTargets(items, map[string]float64{"animals": 0.95}, time.Now())
	assert.Equal(t, model.PathStatusMastered, adjusted[0].Status)
	assert.InDelta(t, 1.0, adjusted[0].TargetScore, 1e-9)
}

func TestAdjustPathTargets(t *testing.T) {
	now := time.Now()
	items := []model.LearningPathItem{
		{CategoryID: "animals", TargetScore: 0.7, Status: model.PathStatusInProgress},
		{CategoryID: "colors", TargetScore: 0.9, Status: model.PathStatusInProgress},
		{CategoryID: "shapes", TargetScore: 0.7, Status: model.PathStatusPending},
		{CategoryID: "food", TargetScore: 0.7, Status: model.PathStatusPending},
	}
	scores := map[string]float64{
		"animals": 0.75, // met target
		"colors":  0.3,  // far below target
		"shapes":  0.4,  // started practicing
	}

	adjusted := AdjustPathTargets(items, scores, now)

	require.Len(t, adjusted, 4)
	assert.Equal(t, model.PathStatusMastered, adjusted[0].Status)
	require.NotNil(t, adjusted[0].MasteredAt)
	assert.InDelta(t, 0.8, adjusted[0].TargetScore, 1e-9)

	assert.InDelta(t, 0.8, adjusted[1].TargetScore, 1e-9)
	assert.Equal(t, model.PathStatusInProgress, adjusted[1].Status)

	assert.Equal(t, model.PathStatusInProgress, adjusted[2].Status)
	require.NotNil(t, adjusted[2].StartedAt)

	// no score recorded, untouched
	assert.Equal(t, items[3], adjusted[3])
}

func TestAdjustPathTargetsFloor(t *testing.T) {
	items := []model.LearningPathItem{
		{CategoryID: "colors", TargetScore: 0.35, Status: model.PathStatusInProgress},
	}

	adjusted := AdjustPathTargets(items, map[string]float64{"colors": 0.1}, time.Now())
	assert.InDelta(t, 0.3, adjusted[0].TargetScore, 1e-9)
}

func pathItem(id, level string) model.ActivityItem {
	item := model.ActivityItem{Name: id, DifficultyLevel: level}
	item.ID = id
	return item
}

func TestPickNextItem(t *testing.T) {
	category := &model.ActivityCategory{DifficultyLevel: model.DifficultyMedium}
	items := []model.ActivityItem{
		pathItem("i1", model.DifficultyEasy),
		pathItem("i2", model.DifficultyEasy),
		pathItem("i3", model.DifficultyMedium),
		pathItem("i4", model.DifficultyHard),
		pathItem("i5", model.DifficultyHard),
	}

	t.Run("very low score gets the easiest item", func(t *testing.T) {
		got := PickNextItem(items, category, 0.05, nil, "")
		require.NotNil(t, got)
		assert.Equal(t, "i1", got.ID)
	})

	t.Run("low score prefers easy items", func(t *testing.T) {
		got := PickNextItem(items, category, 0.3, nil, "")
		require.NotNil(t, got)
		assert.Equal(t, "i1", got.ID)
	})

	t.Run("attempted items are skipped", func(t *testing.T) {
		got := PickNextItem(items, category, 0.3, map[string]bool{"i1": true}, "")
		require.NotNil(t, got)
		assert.Equal(t, "i2", got.ID)
	})

	t.Run("exclusion is waived when everything was attempted", func(t *testing.T) {
		got := PickNextItem(items, category, 0.3, map[string]bool{"i1": true, "i2": true}, "")
		require.NotNil(t, got)
		assert.Equal(t, "i1", got.ID)
	})

	t.Run("high score prefers hard items", func(t *testing.T) {
		got := PickNextItem(items, category, 0.9, nil, "")
		require.NotNil(t, got)
		assert.Equal(t, "i4", got.ID)
	})

	t.Run("middle score prefers medium items", func(t *testing.T) {
		got := PickNextItem(items, category, 0.5, nil, "")
		require.NotNil(t, got)
		assert.Equal(t, "i3", got.ID)
	})

	t.Run("empty catalog", func(t *testing.T) {
		assert.Nil(t, PickNextItem(nil, category, 0.5, nil, ""))
	})
}

func TestPickNextItemFallbackBands(t *testing.T) {
	// no per-item difficulty set, category difficulty inherited by all
	category := &model.ActivityCategory{DifficultyLevel: ""}
	items := []model.ActivityItem{
		pathItem("i1", ""), pathItem("i2", ""), pathItem("i3", ""), pathItem("i4", ""),
		pathItem("i5", ""), pathItem("i6", ""), pathItem("i7", ""), pathItem("i8", ""),
	}

	// no easy band, first three items stand in
	low := PickNextItem(items, category, 0.3, nil, "")
	require.NotNil(t, low)
	assert.Equal(t, "i1", low.ID)

	// no hard band, last three items stand in
	high := PickNextItem(items, category, 0.9, nil, "")
	require.NotNil(t, high)
	assert.Equal(t, "i6", high.ID)

	// no medium band, middle slice stands in when more than six items exist
	mid := PickNextItem(items, category, 0.5, nil, "")
	require.NotNil(t, mid)
	assert.Equal(t, "i4", mid.ID)
}

func TestPickNextItemModalityPreference(t *testing.T) {
	category := &model.ActivityCategory{DifficultyLevel: model.DifficultyMedium}
	withAudio := pathItem("spoken", model.DifficultyMedium)
	withAudio.AudioURL = "audio/spoken.mp3"
	withImage := pathItem("picture", model.DifficultyMedium)
	withImage.ImageURL = "images/picture.png"
	items := []model.ActivityItem{withImage, withAudio}

	verbal := PickNextItem(items, category, 0.5, nil, model.ResponseVerbal)
	require.NotNil(t, verbal)
	assert.Equal(t, "spoken", verbal.ID)

	nonverbal := PickNextItem(items, category, 0.5, nil, model.ResponseNonverbal)
	require.NotNil(t, nonverbal)
	assert.Equal(t, "picture", nonverbal.ID)
}

func TestBuildAdaptation(t *testing.T) {
	correct := model.SessionActivity{IsCorrect: true}
	wrong := model.SessionActivity{IsCorrect: false}

	t.Run("no responses yet", func(t *testing.T) {
		recs := BuildAdaptation(nil, nil)
		require.Len(t, recs, 1)
		assert.Equal(t, "continue", recs[0].Action)
	})

	t.Run("high accuracy challenges", func(t *testing.T) {
		recs := BuildAdaptation([]model.SessionActivity{correct, correct, correct, correct, correct}, nil)
		require.Len(t, recs, 1)
		assert.Equal(t, "challenge", recs[0].Action)
		assert.Equal(t, 1, recs[0].DifficultyAdjustment)
	})

	t.Run("exactly 4 of 5 keeps going", func(t *testing.T) {
		recs := BuildAdaptation([]model.SessionActivity{correct, correct, correct, correct, wrong}, nil)
		require.Len(t, recs, 1)
		assert.Equal(t, "continue", recs[0].Action)
	})

	t.Run("low accuracy simplifies", func(t *testing.T) {
		recs := BuildAdaptation([]model.SessionActivity{wrong, wrong, wrong, wrong, correct}, nil)
		require.Len(t, recs, 1)
		assert.Equal(t, "simplify", recs[0].Action)
		assert.Equal(t, -1, recs[0].DifficultyAdjustment)
	})

	t.Run("middling accuracy continues", func(t *testing.T) {
		recs := BuildAdaptation([]model.SessionActivity{correct, correct, wrong}, nil)
		require.Len(t, recs, 1)
		assert.Equal(t, "continue", recs[0].Action)
	})

	t.Run("error patterns add a focus recommendation", func(t *testing.T) {
		patterns := map[string]string{"stuttering": "slow down"}
		recs := BuildAdaptation([]model.SessionActivity{correct, wrong}, patterns)
		require.Len(t, recs, 2)
		assert.Equal(t, "focus", recs[1].Action)
		assert.Equal(t, patterns, recs[1].ErrorPatterns)
	})
}

func TestAnalyzeErrorPatterns(t *testing.T) {
	names := map[string]string{"item-cat": "cat"}
	activities := []model.SessionActivity{
		{ItemID: "item-cat", ResponseType: model.ResponseVerbal, ResponseText: "ball ball", IsCorrect: false},
		{ItemID: "item-cat", ResponseType: model.ResponseVerbal, ResponseText: "the the ball", IsCorrect: false},
		{ItemID: "item-cat", ResponseType: model.ResponseVerbal, ResponseText: "bat", IsCorrect: false},
		{ItemID: "item-cat", ResponseType: model.ResponseVerbal, ResponseText: "cat", IsCorrect: true},
		{ItemID: "item-cat", ResponseType: model.ResponseNonverbal, ResponseText: "item-dog", IsCorrect: false},
	}

	patterns := AnalyzeErrorPatterns(activities, names)

	assert.Contains(t, patterns, "echolalia")
	assert.Contains(t, patterns, "stuttering")
	require.Contains(t, patterns, "substitution")
	assert.Contains(t, patterns["substitution"], "b→c")
}
