// Package phonetic scores pronunciation attempts against an expected word,
// with normalization for disfluent speech patterns common in ASD therapy
// (stuttering, partial repetitions, echolalia).
//
// Scoring proceeds in three stages:
//
//  1. Variant match: a set of phonetically-plausible substitutions of the
//     expected word is generated from a fixed table of articulation-confusable
//     phoneme groups. An exact hit scores 1.0.
//
//  2. Double Metaphone: primary code agreement scores 0.9, secondary 0.8.
//
//  3. Edit distance: 1 − levenshtein/maxLen, with additive boosts for close
//     length, matching first letter and matching last letter, capped at 1.0.
//
// Immediate echolalia (the same word repeated across the whole transcript)
// short-circuits scoring entirely: it is treated as a correct response with
// similarity 0.95 and a dedicated special-case tag.
//
// The engine holds no mutable state and is safe for concurrent use.
package phonetic

import (
	"fmt"
	"strings"

	"github.com/antzucaro/matchr"
)

const (
	defaultCorrectThreshold = 0.70
	echolaliaSimilarity     = 0.95

	// SpecialCaseEcholalia tags results produced by the echolalia short-circuit.
	SpecialCaseEcholalia = "echolalia"
)

// phonemeGroups lists articulation-confusable sounds. A substitution inside
// one group is considered phonetically plausible for the target population.
var phonemeGroups = [][]string{
	{"r", "l", "w"},                 // liquids and glides
	{"s", "sh", "z", "th", "f"},     // fricatives
	{"t", "d"},                      // alveolar stops
	{"k", "g", "q"},                 // velars
	{"m", "n"},                      // nasals
	{"p", "b"},                      // bilabials
	{"ch", "sh", "j", "zh"},         // affricates
	{"ah", "a", "uh"},               // central vowels
	{"oh", "o", "ow"},               // back vowels
	{"ee", "i", "iy"},               // front vowels
}

// Result is the outcome of analyzing one pronunciation attempt.
type Result struct {
	IsCorrect   bool    `json:"isCorrect"`
	Similarity  float64 `json:"similarity"`
	Feedback    string  `json:"feedback"`
	SpecialCase string  `json:"specialCase,omitempty"`
}

// Option configures an [Engine].
type Option func(*Engine)

// WithCorrectThreshold overrides the minimum similarity for an attempt to
// count as correct. Default: 0.70.
func WithCorrectThreshold(threshold float64) Option {
	return func(e *Engine) {
		e.correctThreshold = threshold
	}
}

// Engine scores pronunciation attempts. Read-only after construction.
type Engine struct {
	correctThreshold float64
}

// New returns an Engine with the supplied options applied.
func New(opts ...Option) *Engine {
	e := &Engine{correctThreshold: defaultCorrectThreshold}
	for _, o := range opts {
		o(e)
	}
	return e
}

// Analyze scores the raw transcript actual against the expected word.
// An empty transcript is scored against the empty string, never an error.
func (e *Engine) Analyze(expected, actual string) Result {
	expectedClean := normalizeWord(expected)
	actualClean := NormalizeDisfluencies(actual)

	// Echolalia overrides normal scoring entirely.
	if IsEcholalic(actual) {
		return Result{
			IsCorrect:   true,
			Similarity:  echolaliaSimilarity,
			Feedback:    "Good repeating! Now try saying it just once.",
			SpecialCase: SpecialCaseEcholalia,
		}
	}

	similarity := e.similarity(expectedClean, actualClean)
	isCorrect := similarity >= e.correctThreshold

	var feedback string
	switch {
	case similarity >= 0.9:
		feedback = "Perfect! You said it just right!"
	case isCorrect:
		diff := MostDifferentSound(expectedClean, actualClean)
		feedback = fmt.Sprintf("Great try! Very close - the '%s' sound was almost perfect!", diff)
	default:
		diff := MostDifferentSound(expectedClean, actualClean)
		feedback = fmt.Sprintf("Let's practice together: '%s'. Focus on the '%s' sound.", expected, diff)
	}

	return Result{
		IsCorrect:  isCorrect,
		Similarity: similarity,
		Feedback:   feedback,
	}
}

// similarity computes the phonetic similarity of two normalized words.
func (e *Engine) similarity(expected, actual string) float64 {
	// Stage 1: exact match against the phonetically-plausible variant set.
	if actual == expected {
		return 1.0
	}
	if _, ok := PhoneticVariants(expected)[actual]; ok {
		return 1.0
	}

	// Stage 2: Double Metaphone code agreement.
	if actual != "" && expected != "" {
		expPrimary, expSecondary := matchr.DoubleMetaphone(expected)
		actPrimary, actSecondary := matchr.DoubleMetaphone(actual)
		if expPrimary != "" && expPrimary == actPrimary {
			return 0.9
		}
		if expSecondary != "" && expSecondary == actSecondary {
			return 0.8
		}
	}

	// Stage 3: length-adjusted edit distance with additive boosts.
	dist := matchr.Levenshtein(expected, actual)
	maxLen := len(expected)
	if len(actual) > maxLen {
		maxLen = len(actual)
	}
	if maxLen < 1 {
		maxLen = 1
	}
	score := 1 - float64(dist)/float64(maxLen)

	lenDiff := len(expected) - len(actual)
	if lenDiff < 0 {
		lenDiff = -lenDiff
	}
	if lenDiff <= 2 {
		score = capAt1(score + 0.2)
	}
	if len(expected) > 0 && len(actual) > 0 && expected[0] == actual[0] {
		score = capAt1(score + 0.15)
	}
	if len(expected) > 0 && len(actual) > 0 && expected[len(expected)-1] == actual[len(actual)-1] {
		score = capAt1(score + 0.1)
	}

	return score
}

// NormalizeDisfluencies reduces a raw transcript to the child's final attempt:
// lowercase, letters only, leading-letter stutters ("t-tomato") and repeated
// words ("tomato tomato", "to-to-tomato") collapsed, last token kept.
func NormalizeDisfluencies(text string) string {
	lower := strings.ToLower(text)

	// Keep letters plus the separators needed to recognize stutters.
	var b strings.Builder
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || r == ' ' || r == '-' {
			b.WriteRune(r)
		}
	}

	parts := strings.FieldsFunc(b.String(), func(r rune) bool {
		return r == ' ' || r == '-'
	})
	if len(parts) == 0 {
		return ""
	}

	// Forward pass: drop a part when the next part repeats or completes it
	// ("t"+"tomato", "to"+"tomato", "tomato"+"tomato").
	collapsed := parts[:0]
	for i := 0; i < len(parts); i++ {
		if i+1 < len(parts) && strings.HasPrefix(parts[i+1], parts[i]) {
			continue
		}
		collapsed = append(collapsed, parts[i])
	}
	if len(collapsed) == 0 {
		return ""
	}

	// The final attempt supersedes earlier ones.
	return collapsed[len(collapsed)-1]
}

// IsEcholalic reports whether the raw transcript is an immediate repetition of
// a single word ("cat cat cat").
func IsEcholalic(transcript string) bool {
	words := strings.Fields(strings.ToLower(transcript))
	if len(words) < 2 {
		return false
	}
	for _, w := range words[1:] {
		if w != words[0] {
			return false
		}
	}
	return true
}

// DetectStuttering reports whether any word is immediately repeated in the
// transcript.
func DetectStuttering(transcript string) bool {
	words := strings.Fields(strings.ToLower(transcript))
	for i := 0; i+1 < len(words); i++ {
		if words[i] == words[i+1] {
			return true
		}
	}
	return false
}

// PhoneticVariants generates the set of plausible single-substitution variants
// of word, including word itself.
func PhoneticVariants(word string) map[string]struct{} {
	variants := map[string]struct{}{word: {}}
	for i := 0; i < len(word); i++ {
		ch := string(word[i])
		for _, group := range phonemeGroups {
			if !containsSound(group, ch) {
				continue
			}
			for _, sound := range group {
				variants[word[:i]+sound+word[i+1:]] = struct{}{}
			}
		}
	}
	return variants
}

// MostDifferentSound identifies the first position where expected and actual
// diverge across phoneme-group boundaries, formatted "actual→expected".
// Falls back to the first two letters of expected when no clear divergence
// exists.
func MostDifferentSound(expected, actual string) string {
	n := len(expected)
	if len(actual) < n {
		n = len(actual)
	}
	for i := 0; i < n; i++ {
		if expected[i] == actual[i] {
			continue
		}
		expGroup := groupFor(string(expected[i]))
		actGroup := groupFor(string(actual[i]))
		if !groupsIntersect(expGroup, actGroup) {
			return fmt.Sprintf("%c→%c", actual[i], expected[i])
		}
	}
	if len(expected) >= 2 {
		return expected[:2]
	}
	return expected
}

// normalizeWord lowercases and strips everything outside a-z.
func normalizeWord(word string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(word) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// groupFor returns the first phoneme group containing the sound, or a
// singleton group when the sound belongs to none.
func groupFor(sound string) []string {
	for _, group := range phonemeGroups {
		if containsSound(group, sound) {
			return group
		}
	}
	return []string{sound}
}

func groupsIntersect(a, b []string) bool {
	for _, x := range a {
		for _, y := range b {
			if x == y {
				return true
			}
		}
	}
	return false
}

func containsSound(group []string, sound string) bool {
	for _, s := range group {
		if s == sound {
			return true
		}
	}
	return false
}

func capAt1(v float64) float64 {
	if v > 1 {
		return 1
	}
	return v
}
