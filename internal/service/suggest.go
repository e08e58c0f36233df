package service

import (
	"context"
	"sort"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/jask/jaskledger/internal/database/repository"
)

// TagSuggester ranks existing tag names against a partially typed name.
type TagSuggester struct {
	Tags *repository.TagRepo
}

// Suggestion is one ranked tag name. Score is 1 for an exact match and falls
// towards 0 as the edit distance grows.
type Suggestion struct {
	Name  string  `json:"name"`
	Score float64 `json:"score"`
}

const minSuggestScore = 0.4

// Suggest returns at most limit tag names similar to query, best first.
// Prefix matches always qualify; others need a similarity of at least 0.4.
func (s *TagSuggester) Suggest(ctx context.Context, query string, limit int) ([]Suggestion, error) {
	query = strings.ToLower(repository.NormalizeTagName(query))
	out := []Suggestion{}
	if query == "" {
		return out, nil
	}
	tags, err := s.Tags.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range tags {
		name := strings.ToLower(t.Name)
		score := similarity(query, name)
		if strings.HasPrefix(name, query) && score < minSuggestScore {
			score = minSuggestScore
		}
		if score < minSuggestScore {
			continue
		}
		out = append(out, Suggestion{Name: t.Name, Score: score})
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].Name < out[j].Name
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func similarity(a, b string) float64 {
	longest := len([]rune(a))
	if n := len([]rune(b)); n > longest {
		longest = n
	}
	if longest == 0 {
		return 1
	}
	return 1 - float64(levenshtein.ComputeDistance(a, b))/float64(longest)
}
