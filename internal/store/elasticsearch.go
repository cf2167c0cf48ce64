package store

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/engine/text"
	"keyword-intelligence/internal/models"
)

// rankingDocument is one (keyword, url) observation in the rankings index.
type rankingDocument struct {
	ProjectID    string `json:"project_id"`
	Keyword      string `json:"keyword"`
	URL          string `json:"url"`
	SearchVolume *int   `json:"search_volume,omitempty"`
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			Source rankingDocument `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// ElasticsearchKeywordSource reads ranking observations for a project and
// folds them into one entry per keyword.
type ElasticsearchKeywordSource struct {
	client     *elasticsearch.Client
	index      string
	maxResults int
}

func NewElasticsearchKeywordSource(client *elasticsearch.Client, index string, maxResults int) *ElasticsearchKeywordSource {
	return &ElasticsearchKeywordSource{client: client, index: index, maxResults: maxResults}
}

func (s *ElasticsearchKeywordSource) ListKeywords(ctx context.Context, scope string) ([]models.Keyword, error) {
	rankings, err := s.ListRankings(ctx, scope)
	if err != nil {
		return nil, err
	}
	out := make([]models.Keyword, len(rankings))
	for i, r := range rankings {
		out[i] = models.Keyword{ProjectID: scope, Text: r.Keyword, SearchVolume: r.SearchVolume}
	}
	return out, nil
}

func (s *ElasticsearchKeywordSource) ListRankings(ctx context.Context, scope string) ([]models.KeywordRanking, error) {
	docs, err := s.search(ctx, scope)
	if err != nil {
		return nil, apperrors.NewKeywordSourceFailedError(scope, err)
	}

	index := make(map[string]int)
	out := make([]models.KeywordRanking, 0)
	for _, d := range docs {
		kw := strings.Join(strings.Fields(text.Normalize(d.Keyword)), " ")
		if kw == "" {
			continue
		}
		i, ok := index[kw]
		if !ok {
			i = len(out)
			index[kw] = i
			out = append(out, models.KeywordRanking{Keyword: kw, URLs: []string{}})
		}
		r := &out[i]
		if d.URL != "" && !containsString(r.URLs, d.URL) {
			r.URLs = append(r.URLs, d.URL)
		}
		if d.SearchVolume != nil && (r.SearchVolume == nil || *d.SearchVolume > *r.SearchVolume) {
			v := *d.SearchVolume
			r.SearchVolume = &v
		}
	}
	return out, nil
}

func (s *ElasticsearchKeywordSource) search(ctx context.Context, scope string) ([]rankingDocument, error) {
	query := map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"project_id": scope},
		},
		"sort": []interface{}{
			map[string]interface{}{"keyword": "asc"},
			map[string]interface{}{"url": "asc"},
		},
	}
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	res, err := s.client.Search(
		s.client.Search.WithContext(ctx),
		s.client.Search.WithIndex(s.index),
		s.client.Search.WithBody(bytes.NewReader(body)),
		s.client.Search.WithSize(s.maxResults),
	)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("search %s: %s", s.index, res.Status())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode search response: %w", err)
	}
	docs := make([]rankingDocument, len(parsed.Hits.Hits))
	for i, h := range parsed.Hits.Hits {
		docs[i] = h.Source
	}
	return docs, nil
}

func containsString(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}
