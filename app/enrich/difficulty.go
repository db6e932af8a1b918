package enrich

import (
	"strings"
	"unicode"

	"github.com/clipperhouse/uax29/v2/sentences"
	"github.com/clipperhouse/uax29/v2/words"
)

// DifficultyScorer computes a readability score for Spanish prose using the
// Fernández-Huerta formula. Higher scores mean easier text; typical news
// prose lands between 50 and 80. The score feeds the platform's
// language-learning level assignment.
type DifficultyScorer struct{}

func NewDifficultyScorer() *DifficultyScorer {
	return &DifficultyScorer{}
}

func (s *DifficultyScorer) Run(content string) float64 {
	wordCount := 0
	syllableCount := 0

	tokens := words.FromString(content)
	for tokens.Next() {
		token := tokens.Value()
		if !hasLetter(token) {
			continue
		}
		wordCount++
		syllableCount += countSyllables(token)
	}

	if wordCount == 0 {
		return 0
	}

	sentenceCount := 0
	segs := sentences.FromString(content)
	for segs.Next() {
		if hasLetter(segs.Value()) {
			sentenceCount++
		}
	}
	if sentenceCount == 0 {
		sentenceCount = 1
	}

	syllablesPer100 := float64(syllableCount) / float64(wordCount) * 100
	wordsPerSentence := float64(wordCount) / float64(sentenceCount)

	score := 206.84 - 0.60*syllablesPer100 - 1.02*wordsPerSentence
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score
}

// countSyllables approximates Spanish syllable count as the number of vowel
// groups. Adjacent vowels form a diphthong only when at least one of them is
// an unaccented weak vowel (i, u, ü); otherwise the pair is a hiato and
// splits, e.g. "po-e-ta", "pa-ís", "rí-o".
func countSyllables(word string) int {
	count := 0
	var prev rune

	for _, r := range strings.ToLower(word) {
		if isVowel(r) {
			if !isVowel(prev) || isHiato(prev, r) {
				count++
			}
		}
		prev = r
	}

	if count == 0 {
		count = 1
	}
	return count
}

func isVowel(r rune) bool {
	switch r {
	case 'a', 'e', 'i', 'o', 'u', 'á', 'é', 'í', 'ó', 'ú', 'ü':
		return true
	}
	return false
}

func isWeakVowel(r rune) bool {
	return r == 'i' || r == 'u' || r == 'ü'
}

func isHiato(a, b rune) bool {
	return !isWeakVowel(a) && !isWeakVowel(b)
}

func hasLetter(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) {
			return true
		}
	}
	return false
}
