package enrich

import (
	"testing"
)

func TestDifficultyScorerSimpleProse(t *testing.T) {
	scorer := NewDifficultyScorer()

	simple := "El perro come. El gato duerme. La casa es roja."
	score := scorer.Run(simple)

	if score <= 0 || score > 100 {
		t.Fatalf("Expected score in (0, 100], got %f", score)
	}
	// Short words and short sentences should read as easy
	if score < 70 {
		t.Errorf("Expected simple prose to score high, got %f", score)
	}
}

func TestDifficultyScorerComplexProseScoresLower(t *testing.T) {
	scorer := NewDifficultyScorer()

	simple := "El perro come. El gato duerme. La casa es roja."
	complexText := "La implementación gubernamental de políticas macroeconómicas contracíclicas, caracterizada por intervenciones regulatorias extraordinariamente sofisticadas, constituye indudablemente una transformación institucional trascendental para la administración departamental contemporánea."

	simpleScore := scorer.Run(simple)
	complexScore := scorer.Run(complexText)

	if complexScore >= simpleScore {
		t.Errorf("Expected complex prose (%f) to score below simple prose (%f)", complexScore, simpleScore)
	}
}

func TestDifficultyScorerEmptyContent(t *testing.T) {
	scorer := NewDifficultyScorer()
	if score := scorer.Run(""); score != 0 {
		t.Errorf("Expected 0 for empty content, got %f", score)
	}
	if score := scorer.Run("... --- ..."); score != 0 {
		t.Errorf("Expected 0 for content without words, got %f", score)
	}
}

func TestCountSyllables(t *testing.T) {
	cases := map[string]int{
		"el":        1,
		"casa":      2,
		"perro":     2,
		"ciudad":    2, // "ciu" diphthong
		"país":      2, // accented í breaks the diphthong
		"río":       2,
		"fuego":     2,
		"colombia":  3,
		"bogotá":    3,
		"teléfono":  4,
		"xyz":       1, // no vowels, still one syllable minimum
	}

	for word, expected := range cases {
		if got := countSyllables(word); got != expected {
			t.Errorf("countSyllables(%q) = %d, expected %d", word, got, expected)
		}
	}
}
