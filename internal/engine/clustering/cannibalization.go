package clustering

import (
	"fmt"
	"sort"
	"strings"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/engine/text"
	"keyword-intelligence/internal/models"
)

const (
	DefaultCannibalizationSimilarity = 0.85
	DefaultURLOverlapThreshold       = 0.5

	mediumSeverityPairs = 5
	highSeverityPairs   = 10
)

type CannibalizationOptions struct {
	// SimilarityThreshold is the inclusive keyword similarity floor.
	SimilarityThreshold float64
	// URLOverlapThreshold is the exclusive floor on ranking-URL Jaccard.
	URLOverlapThreshold float64
}

func (o CannibalizationOptions) withDefaults() CannibalizationOptions {
	if o.SimilarityThreshold <= 0 {
		o.SimilarityThreshold = DefaultCannibalizationSimilarity
	}
	if o.URLOverlapThreshold <= 0 {
		o.URLOverlapThreshold = DefaultURLOverlapThreshold
	}
	return o
}

// SeverityFor maps a flagged pair count to a severity.
func SeverityFor(pairs int) models.CannibalizationSeverity {
	switch {
	case pairs == 0:
		return models.SeverityNone
	case pairs < mediumSeverityPairs:
		return models.SeverityLow
	case pairs < highSeverityPairs:
		return models.SeverityMedium
	default:
		return models.SeverityHigh
	}
}

// DetectCannibalization flags keyword pairs that are near-duplicates and
// already rank with largely the same URLs.
func (e *Engine) DetectCannibalization(rankings []models.KeywordRanking, opts CannibalizationOptions) (*models.CannibalizationReport, error) {
	opts = opts.withDefaults()
	if opts.SimilarityThreshold > 1 || opts.URLOverlapThreshold >= 1 {
		return nil, apperrors.NewInvalidInputError("cannibalization thresholds must be below 1")
	}

	entries := mergeRankings(rankings)
	groups := []models.CannibalizationGroup{}

	for i := 0; i < len(entries); i++ {
		for j := i + 1; j < len(entries); j++ {
			a, b := entries[i], entries[j]
			sim := text.CombinedSimilarity(a.Keyword, b.Keyword)
			if sim < opts.SimilarityThreshold {
				continue
			}
			overlap := text.SetJaccard(a.URLs, b.URLs)
			if overlap <= opts.URLOverlapThreshold {
				continue
			}
			urls := unionURLs(a.URLs, b.URLs)
			groups = append(groups, models.CannibalizationGroup{
				Keywords:       []string{a.Keyword, b.Keyword},
				Similarity:     round2(sim),
				URLOverlap:     round2(overlap),
				URLs:           urls,
				Recommendation: recommendation(a.Keyword, b.Keyword, overlap, len(urls)),
			})
		}
	}

	sort.SliceStable(groups, func(i, j int) bool { return groups[i].Similarity > groups[j].Similarity })

	report := &models.CannibalizationReport{
		Groups:    groups,
		PairCount: len(groups),
		Severity:  SeverityFor(len(groups)),
	}
	e.logger.Info("Cannibalization scan finished", map[string]interface{}{
		"keywords": len(entries),
		"pairs":    report.PairCount,
		"severity": report.Severity,
	})
	return report, nil
}

// mergeRankings normalizes keywords and folds duplicate entries together.
func mergeRankings(rankings []models.KeywordRanking) []models.KeywordRanking {
	index := make(map[string]int)
	var out []models.KeywordRanking
	for _, r := range rankings {
		kw := strings.Join(strings.Fields(text.Normalize(r.Keyword)), " ")
		if kw == "" {
			continue
		}
		urls := cleanURLs(r.URLs)
		if i, ok := index[kw]; ok {
			out[i].URLs = unionURLs(out[i].URLs, urls)
			continue
		}
		index[kw] = len(out)
		out = append(out, models.KeywordRanking{Keyword: kw, URLs: urls, SearchVolume: r.SearchVolume})
	}
	return out
}

func cleanURLs(urls []string) []string {
	out := make([]string, 0, len(urls))
	for _, u := range urls {
		if u = strings.TrimSpace(u); u != "" {
			out = append(out, u)
		}
	}
	return out
}

func unionURLs(a, b []string) []string {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]string, 0, len(a)+len(b))
	for _, list := range [][]string{a, b} {
		for _, u := range list {
			if _, dup := seen[u]; dup {
				continue
			}
			seen[u] = struct{}{}
			out = append(out, u)
		}
	}
	return out
}

func recommendation(a, b string, overlap float64, urlCount int) string {
	target := a
	if len([]rune(b)) < len([]rune(a)) {
		target = b
	}
	if overlap >= 1 {
		return fmt.Sprintf("%q and %q rank with the same URL set; consolidate them on one page targeting %q.", a, b, target)
	}
	return fmt.Sprintf("%q and %q compete across %d ranking URLs; differentiate the pages or canonicalize to a single URL for %q.", a, b, urlCount, target)
}
