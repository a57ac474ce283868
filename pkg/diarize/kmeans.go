package diarize

import "math"

// distanceFunc measures dissimilarity between two vectors.
type distanceFunc func(a, b []float32) float64

// clustering is the result of one clustering strategy: a label in [0,k)
// per input vector, the cluster centroids, and the strategy's silhouette
// score under its own distance.
type clustering struct {
	labels    []int
	centroids [][]float32
	score     float64
}

// kmeans runs Lloyd's algorithm with the given distance for a fixed
// number of iterations. Centroids are seeded from the first k vectors,
// which keeps the result deterministic for identical input.
func kmeans(vecs [][]float32, k, iters int, dist distanceFunc) clustering {
	n := len(vecs)
	labels := make([]int, n)
	centroids := make([][]float32, k)
	for c := 0; c < k; c++ {
		cp := make([]float32, len(vecs[c]))
		copy(cp, vecs[c])
		centroids[c] = cp
	}

	for it := 0; it < iters; it++ {
		changed := false
		for i, v := range vecs {
			best, bestDist := 0, math.Inf(1)
			for c, cen := range centroids {
				if d := dist(v, cen); d < bestDist {
					best, bestDist = c, d
				}
			}
			if labels[i] != best {
				labels[i] = best
				changed = true
			}
		}

		for c := 0; c < k; c++ {
			if mean := meanVector(vecs, labels, c); mean != nil {
				centroids[c] = mean
			}
			// Empty clusters keep their previous centroid.
		}

		if !changed && it > 0 {
			break
		}
	}

	return clustering{
		labels:    labels,
		centroids: centroids,
		score:     silhouette(vecs, labels, k, dist),
	}
}

// dupSpread is the intra-cluster spread below which a point's cluster
// is treated as duplicate frames. Repeated identical windows (looped or
// synthetic audio) give a ≈ 0, which would saturate the per-point score
// at 1 and reward splitting every duplicate group into its own cluster.
const dupSpread = 1e-6

// silhouette computes the mean silhouette score over all points: for
// each point, a is the mean distance to its own cluster, b the smallest
// mean distance to any other cluster, and the per-point score is
// (b-a)/max(a,b). Points in singleton clusters, duplicate-only
// clusters, and degenerate cases score 0.
func silhouette(vecs [][]float32, labels []int, k int, dist distanceFunc) float64 {
	n := len(vecs)
	if n == 0 || k < 2 {
		return 0
	}

	counts := make([]int, k)
	for _, l := range labels {
		counts[l]++
	}

	var total float64
	for i, v := range vecs {
		own := labels[i]
		if counts[own] <= 1 {
			continue // singleton: score 0
		}

		sums := make([]float64, k)
		for j, w := range vecs {
			if j == i {
				continue
			}
			sums[labels[j]] += dist(v, w)
		}

		a := sums[own] / float64(counts[own]-1)
		if a < dupSpread {
			continue // duplicate-only cluster: tightness is not separation
		}
		b := math.Inf(1)
		for c := 0; c < k; c++ {
			if c == own || counts[c] == 0 {
				continue
			}
			if m := sums[c] / float64(counts[c]); m < b {
				b = m
			}
		}
		if math.IsInf(b, 1) {
			continue
		}

		if m := math.Max(a, b); m > 0 {
			total += (b - a) / m
		}
	}
	return total / float64(n)
}
