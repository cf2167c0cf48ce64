// Package clustering groups keyword sets with interchangeable strategies and
// detects keyword cannibalization on the same similarity primitives.
package clustering

import (
	"math"
	"sort"
	"strings"

	"github.com/google/uuid"

	apperrors "keyword-intelligence/internal/common/errors"
	"keyword-intelligence/internal/common/logger"
	"keyword-intelligence/internal/engine/features"
	"keyword-intelligence/internal/engine/text"
	"keyword-intelligence/internal/models"
)

type Method string

const (
	MethodSemantic     Method = "semantic"
	MethodIntent       Method = "intent"
	MethodTopic        Method = "topic"
	MethodHierarchical Method = "hierarchical"
)

const (
	DefaultThreshold           = 0.6
	DefaultMinClusterSize      = 3
	DefaultMaxClusterSize      = 50
	DefaultMembershipThreshold = 0.3
	maxDefaultTopics           = 10
)

type Options struct {
	Threshold      float64
	MinClusterSize int
	// MaxClusterSize caps hierarchical merges.
	MaxClusterSize int
	// NumTopics for the topic method. Zero derives it from the input size.
	NumTopics int
	// MembershipThreshold is the average topic membership a topic needs to be kept.
	MembershipThreshold float64
	// SearchVolumes feeds Cluster.TotalSearchVolume, keyed by keyword.
	SearchVolumes map[string]int
}

func DefaultOptions() Options {
	return Options{
		Threshold:           DefaultThreshold,
		MinClusterSize:      DefaultMinClusterSize,
		MaxClusterSize:      DefaultMaxClusterSize,
		MembershipThreshold: DefaultMembershipThreshold,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.Threshold <= 0 {
		o.Threshold = d.Threshold
	}
	if o.MinClusterSize <= 0 {
		o.MinClusterSize = d.MinClusterSize
	}
	if o.MaxClusterSize <= 0 {
		o.MaxClusterSize = d.MaxClusterSize
	}
	if o.MembershipThreshold <= 0 {
		o.MembershipThreshold = d.MembershipThreshold
	}
	return o
}

// strategy returns groups of keyword indexes, each in discovery order.
type strategy func(in *input, opts Options) [][]int

type Engine struct {
	extractor  *features.Extractor
	logger     logger.Logger
	strategies map[Method]strategy
	newID      func() string
}

func NewEngine(extractor *features.Extractor, log logger.Logger) *Engine {
	if extractor == nil {
		extractor = features.NewExtractor()
	}
	return &Engine{
		extractor: extractor,
		logger:    log,
		strategies: map[Method]strategy{
			MethodSemantic:     semantic,
			MethodIntent:       byIntent,
			MethodTopic:        topic,
			MethodHierarchical: hierarchical,
		},
		newID: uuid.NewString,
	}
}

// Methods lists the registered strategies in name order.
func (e *Engine) Methods() []string {
	out := make([]string, 0, len(e.strategies))
	for m := range e.strategies {
		out = append(out, string(m))
	}
	sort.Strings(out)
	return out
}

// input memoizes pairwise similarities and pattern intents for one call.
type input struct {
	keywords  []string
	sim       [][]float64
	intents   []models.Intent
	extractor *features.Extractor
}

func newInput(keywords []string, extractor *features.Extractor) *input {
	n := len(keywords)
	sim := make([][]float64, n)
	for i := range sim {
		sim[i] = make([]float64, n)
		for j := range sim[i] {
			sim[i][j] = -1
		}
	}
	return &input{keywords: keywords, sim: sim, intents: make([]models.Intent, n), extractor: extractor}
}

func (in *input) similarity(i, j int) float64 {
	if in.sim[i][j] < 0 {
		s := text.CombinedSimilarity(in.keywords[i], in.keywords[j])
		in.sim[i][j], in.sim[j][i] = s, s
	}
	return in.sim[i][j]
}

func (in *input) intent(i int) models.Intent {
	if in.intents[i] == "" {
		in.intents[i] = in.extractor.PatternIntent(in.keywords[i])
	}
	return in.intents[i]
}

// NormalizeKeyword applies the rule Cluster uses to compare keywords.
func NormalizeKeyword(keyword string) string {
	return strings.Join(strings.Fields(text.Normalize(keyword)), " ")
}

// normalizeKeywords lowercases, trims and de-duplicates while keeping input order.
func normalizeKeywords(keywords []string) []string {
	seen := make(map[string]struct{}, len(keywords))
	out := make([]string, 0, len(keywords))
	for _, kw := range keywords {
		norm := NormalizeKeyword(kw)
		if norm == "" {
			continue
		}
		if _, dup := seen[norm]; dup {
			continue
		}
		seen[norm] = struct{}{}
		out = append(out, norm)
	}
	return out
}

// normalizeVolumes re-keys volumes by normalized keyword. Keys that collapse
// onto the same keyword keep the largest volume.
func normalizeVolumes(volumes map[string]int) map[string]int {
	if len(volumes) == 0 {
		return volumes
	}
	out := make(map[string]int, len(volumes))
	for kw, v := range volumes {
		norm := NormalizeKeyword(kw)
		if cur, ok := out[norm]; !ok || v > cur {
			out[norm] = v
		}
	}
	return out
}

// Cluster groups keywords with the named method. Unknown methods fail with
// UnsupportedMethod; an empty keyword list yields an empty result.
func (e *Engine) Cluster(keywords []string, method Method, opts Options) (*models.ClusterResult, error) {
	run, ok := e.strategies[method]
	if !ok {
		return nil, apperrors.NewUnsupportedMethodError(string(method), e.Methods())
	}
	opts = opts.withDefaults()
	if opts.Threshold > 1 {
		return nil, apperrors.NewInvalidInputError("threshold must be within (0, 1]")
	}

	kws := normalizeKeywords(keywords)
	if len(kws) == 0 {
		e.logger.Debug("No keywords to cluster", map[string]interface{}{"method": method})
		return &models.ClusterResult{
			Clusters:       []models.Cluster{},
			OrphanKeywords: []string{},
			Statistics:     models.ClusterStatistics{Method: string(method), Threshold: opts.Threshold},
		}, nil
	}

	opts.SearchVolumes = normalizeVolumes(opts.SearchVolumes)
	in := newInput(kws, e.extractor)
	groups := run(in, opts)
	result := e.finalize(in, groups, method, opts)

	e.logger.Info("Keywords clustered", map[string]interface{}{
		"method":    method,
		"keywords":  len(kws),
		"clusters":  result.Statistics.ClusterCount,
		"orphans":   result.Statistics.OrphanCount,
		"threshold": opts.Threshold,
	})
	return result, nil
}

func (e *Engine) finalize(in *input, groups [][]int, method Method, opts Options) *models.ClusterResult {
	assigned := make([]bool, len(in.keywords))
	clusters := make([]models.Cluster, 0, len(groups))

	for _, g := range groups {
		c := models.Cluster{
			ID:       e.newID(),
			Keywords: make([]string, len(g)),
			Size:     len(g),
		}
		for k, idx := range g {
			assigned[idx] = true
			c.Keywords[k] = in.keywords[idx]
			c.TotalSearchVolume += opts.SearchVolumes[in.keywords[idx]]
		}
		c.PrimaryKeyword = primaryKeyword(c.Keywords)
		c.Intent = modeIntent(in, g)
		c.TopicScore = topicScore(in, g)
		c.Name = clusterName(c.Keywords, c.PrimaryKeyword)
		clusters = append(clusters, c)
	}

	orphans := []string{}
	for i, kw := range in.keywords {
		if !assigned[i] {
			orphans = append(orphans, kw)
		}
	}

	stats := models.ClusterStatistics{
		Method:            string(method),
		Threshold:         opts.Threshold,
		TotalKeywords:     len(in.keywords),
		ClusteredKeywords: len(in.keywords) - len(orphans),
		OrphanCount:       len(orphans),
		ClusterCount:      len(clusters),
	}
	if len(clusters) > 0 {
		scoreSum := 0.0
		for _, c := range clusters {
			scoreSum += c.TopicScore
			if c.Size > stats.LargestCluster {
				stats.LargestCluster = c.Size
			}
		}
		stats.AverageClusterSize = float64(stats.ClusteredKeywords) / float64(len(clusters))
		stats.AverageTopicScore = round2(scoreSum / float64(len(clusters)))
	}

	return &models.ClusterResult{Clusters: clusters, OrphanKeywords: orphans, Statistics: stats}
}

// primaryKeyword is the shortest member, first occurrence winning ties.
func primaryKeyword(keywords []string) string {
	best := keywords[0]
	for _, kw := range keywords[1:] {
		if len([]rune(kw)) < len([]rune(best)) {
			best = kw
		}
	}
	return best
}

// modeIntent is the most common pattern intent. Ties go to the intent seen
// first among the members.
func modeIntent(in *input, group []int) models.Intent {
	counts := make(map[models.Intent]int)
	var order []models.Intent
	for _, idx := range group {
		intent := in.intent(idx)
		if counts[intent] == 0 {
			order = append(order, intent)
		}
		counts[intent]++
	}
	best := order[0]
	for _, intent := range order[1:] {
		if counts[intent] > counts[best] {
			best = intent
		}
	}
	return best
}

// topicScore is 100 times the mean pairwise similarity, 0 for singletons.
func topicScore(in *input, group []int) float64 {
	if len(group) < 2 {
		return 0
	}
	sum, pairs := 0.0, 0
	for a := 0; a < len(group); a++ {
		for b := a + 1; b < len(group); b++ {
			sum += in.similarity(group[a], group[b])
			pairs++
		}
	}
	return round2(100 * sum / float64(pairs))
}

// clusterName joins the two most frequent content words across members.
func clusterName(keywords []string, fallback string) string {
	counts := make(map[string]int)
	var order []string
	for _, kw := range keywords {
		seen := make(map[string]struct{})
		for _, tok := range text.RemoveStopWords(text.Tokenize(kw)) {
			if _, dup := seen[tok]; dup {
				continue
			}
			seen[tok] = struct{}{}
			if counts[tok] == 0 {
				order = append(order, tok)
			}
			counts[tok]++
		}
	}
	if len(order) == 0 {
		return fallback
	}
	sort.SliceStable(order, func(i, j int) bool { return counts[order[i]] > counts[order[j]] })
	if len(order) > 2 {
		order = order[:2]
	}
	return strings.Join(order, " ")
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
