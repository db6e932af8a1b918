package enrich

import (
	"context"

	"github.com/bjpl/openlearn/app/extract"
)

var _ extract.Enricher = (*Analyzer)(nil)

// Analyzer bundles the content analysis steps run on every extracted article:
// Colombian entity recognition and Spanish readability scoring.
type Analyzer struct {
	entities   *EntityRecognizer
	difficulty *DifficultyScorer
}

func NewAnalyzer() *Analyzer {
	return &Analyzer{
		entities:   NewEntityRecognizer(),
		difficulty: NewDifficultyScorer(),
	}
}

func (a *Analyzer) Enrich(ctx context.Context, content string) (extract.Enrichment, error) {
	if err := ctx.Err(); err != nil {
		return extract.Enrichment{}, err
	}

	return extract.Enrichment{
		Entities:        a.entities.Run(content),
		DifficultyScore: a.difficulty.Run(content),
	}, nil
}
