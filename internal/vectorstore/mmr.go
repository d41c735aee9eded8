package vectorstore

import "math"

// maximalMarginalRelevance selects up to k candidate indices balancing
// relevance to the query against diversity among the already-selected set:
// each round picks the candidate maximizing
//
//	lambda*sim(query, c) - (1-lambda)*max sim(c, selected)
//
// until k are chosen or the pool is exhausted. Selection order is the
// return order. Deterministic: ties break on the lower index.
func maximalMarginalRelevance(query []float32, candidates [][]float32, lambda float64, k int) []int {
	if k <= 0 || len(candidates) == 0 {
		return nil
	}
	if k > len(candidates) {
		k = len(candidates)
	}

	querySim := make([]float64, len(candidates))
	for i, c := range candidates {
		querySim[i] = cosineSimilarity(query, c)
	}

	selected := make([]int, 0, k)
	// Running max similarity of each candidate to the selected set.
	maxToSelected := make([]float64, len(candidates))
	for i := range maxToSelected {
		maxToSelected[i] = math.Inf(-1)
	}
	picked := make([]bool, len(candidates))

	for len(selected) < k {
		best := -1
		bestScore := math.Inf(-1)
		for i := range candidates {
			if picked[i] {
				continue
			}
			score := querySim[i]
			if len(selected) > 0 {
				score = lambda*querySim[i] - (1-lambda)*maxToSelected[i]
			}
			if score > bestScore {
				bestScore = score
				best = i
			}
		}
		if best < 0 {
			break
		}
		picked[best] = true
		selected = append(selected, best)
		for i := range candidates {
			if picked[i] {
				continue
			}
			if sim := cosineSimilarity(candidates[best], candidates[i]); sim > maxToSelected[i] {
				maxToSelected[i] = sim
			}
		}
	}
	return selected
}

// cosineSimilarity computes the cosine of the angle between two vectors.
// Zero-magnitude vectors yield zero similarity.
func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
