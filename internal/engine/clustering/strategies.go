package clustering

import (
	"math"

	"keyword-intelligence/internal/engine/text"
	"keyword-intelligence/internal/models"
)

// semantic is a greedy single pass in input order. A keyword seeds a group of
// every still-unassigned keyword at or above the threshold; the group is kept
// only when it reaches the minimum size, and kept members are never revisited.
func semantic(in *input, opts Options) [][]int {
	n := len(in.keywords)
	assigned := make([]bool, n)
	var groups [][]int

	for i := 0; i < n; i++ {
		if assigned[i] {
			continue
		}
		group := []int{i}
		for j := 0; j < n; j++ {
			if j == i || assigned[j] {
				continue
			}
			if in.similarity(i, j) >= opts.Threshold {
				group = append(group, j)
			}
		}
		if len(group) < opts.MinClusterSize {
			continue
		}
		for _, idx := range group {
			assigned[idx] = true
		}
		groups = append(groups, group)
	}
	return groups
}

// byIntent groups keywords by their rule-pattern intent, in order of first
// appearance.
func byIntent(in *input, opts Options) [][]int {
	members := make(map[models.Intent][]int)
	var order []models.Intent
	for i := range in.keywords {
		intent := in.intent(i)
		if _, ok := members[intent]; !ok {
			order = append(order, intent)
		}
		members[intent] = append(members[intent], i)
	}

	var groups [][]int
	for _, intent := range order {
		if len(members[intent]) >= opts.MinClusterSize {
			groups = append(groups, members[intent])
		}
	}
	return groups
}

// topic is a simplified, non-iterative topic model: keyword i is assigned to
// topic i mod k, term distributions are estimated per topic, and a topic is
// kept when its members' average membership probability is high enough.
// The assignment is a known approximation, not an inference step.
func topic(in *input, opts Options) [][]int {
	n := len(in.keywords)
	k := opts.NumTopics
	if k <= 0 {
		k = int(math.Ceil(float64(n) / 5))
		if k > maxDefaultTopics {
			k = maxDefaultTopics
		}
	}
	if k > n {
		k = n
	}
	if k < 1 {
		k = 1
	}

	// document-term matrix
	vocab := make(map[string]int)
	docs := make([]map[int]int, n)
	for i, kw := range in.keywords {
		docs[i] = make(map[int]int)
		for _, term := range text.Terms(kw) {
			id, ok := vocab[term]
			if !ok {
				id = len(vocab)
				vocab[term] = id
			}
			docs[i][id]++
		}
	}

	topicTerms := make([][]float64, k)
	for t := range topicTerms {
		topicTerms[t] = make([]float64, len(vocab))
	}
	members := make([][]int, k)
	for i := range docs {
		t := i % k
		members[t] = append(members[t], i)
		for term, count := range docs[i] {
			topicTerms[t][term] += float64(count)
		}
	}
	for t := range topicTerms {
		total := 0.0
		for _, v := range topicTerms[t] {
			total += v
		}
		if total == 0 {
			continue
		}
		for term := range topicTerms[t] {
			topicTerms[t][term] /= total
		}
	}

	membership := func(doc, assigned int) float64 {
		scores := make([]float64, k)
		total := 0.0
		for t := 0; t < k; t++ {
			for term, count := range docs[doc] {
				scores[t] += float64(count) * topicTerms[t][term]
			}
			total += scores[t]
		}
		if total == 0 {
			return 0
		}
		return scores[assigned] / total
	}

	var groups [][]int
	for t := 0; t < k; t++ {
		if len(members[t]) < opts.MinClusterSize {
			continue
		}
		sum := 0.0
		for _, doc := range members[t] {
			sum += membership(doc, t)
		}
		if sum/float64(len(members[t])) > opts.MembershipThreshold {
			groups = append(groups, members[t])
		}
	}
	return groups
}

// hierarchical is average-linkage agglomerative clustering. Each step merges
// the eligible pair with the highest mean cross-pair similarity; a pair is
// eligible when the merged cluster stays within the maximum size. Merging
// stops when the best linkage falls below the threshold.
func hierarchical(in *input, opts Options) [][]int {
	n := len(in.keywords)
	members := make([][]int, n)
	active := make([]bool, n)
	// sums[a][b] is the total similarity across all cross pairs of a and b.
	sums := make([][]float64, n)
	for i := 0; i < n; i++ {
		members[i] = []int{i}
		active[i] = true
		sums[i] = make([]float64, n)
		for j := 0; j < i; j++ {
			s := in.similarity(i, j)
			sums[i][j], sums[j][i] = s, s
		}
	}

	for {
		bestA, bestB := -1, -1
		best := math.Inf(-1)
		for a := 0; a < n; a++ {
			if !active[a] {
				continue
			}
			for b := a + 1; b < n; b++ {
				if !active[b] || len(members[a])+len(members[b]) > opts.MaxClusterSize {
					continue
				}
				link := sums[a][b] / float64(len(members[a])*len(members[b]))
				if link > best {
					best, bestA, bestB = link, a, b
				}
			}
		}
		if bestA < 0 || best < opts.Threshold {
			break
		}

		members[bestA] = mergeSorted(members[bestA], members[bestB])
		active[bestB] = false
		members[bestB] = nil
		for c := 0; c < n; c++ {
			if !active[c] || c == bestA {
				continue
			}
			sums[bestA][c] += sums[bestB][c]
			sums[c][bestA] = sums[bestA][c]
		}
	}

	var groups [][]int
	for a := 0; a < n; a++ {
		if active[a] && len(members[a]) >= opts.MinClusterSize {
			groups = append(groups, members[a])
		}
	}
	return groups
}

func mergeSorted(a, b []int) []int {
	out := make([]int, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if a[i] < b[j] {
			out = append(out, a[i])
			i++
		} else {
			out = append(out, b[j])
			j++
		}
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
