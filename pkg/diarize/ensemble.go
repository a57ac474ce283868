package diarize

// ensembleIters is the k-means iteration count for the final strategies.
const ensembleIters = 20

// overlapSim is the similarity level at which a frame close to two
// centroids at once is flagged as possible overlapped speech.
const overlapSim = 0.70

// ensemble is the fused result of the clustering strategies.
type ensemble struct {
	labels    []int
	centroids [][]float32
	overlap   []bool
	weights   []float64
}

// ensembleCluster runs cosine k-means, Euclidean k-means, and cosine
// agglomerative clustering at the chosen k, weights each strategy by its
// silhouette score, and fuses per-frame labels by weighted vote (ties
// resolved toward the lowest label). Centroids are recomputed from the
// fused assignment.
//
// Label spaces of the strategies are aligned to the first strategy by
// greedy centroid matching before voting.
func ensembleCluster(vecs [][]float32, k int) ensemble {
	strategies := []clustering{
		kmeans(vecs, k, ensembleIters, cosineDist),
		kmeans(vecs, k, ensembleIters, euclideanDist),
		agglomerative(vecs, k),
	}

	// Align strategy 1..n label spaces to strategy 0.
	for s := 1; s < len(strategies); s++ {
		strategies[s] = relabel(strategies[s], strategies[0].centroids)
	}

	// Silhouette scores can be negative for bad partitions; a negative
	// vote would invert a strategy's opinion, so floor at zero.
	var sum float64
	weights := make([]float64, len(strategies))
	for i, st := range strategies {
		w := st.score
		if w < 0 {
			w = 0
		}
		weights[i] = w
		sum += w
	}
	if sum < 0.001 {
		sum = 0.001
	}
	for i := range weights {
		weights[i] /= sum
	}

	n := len(vecs)
	labels := make([]int, n)
	votes := make([]float64, k)
	for i := 0; i < n; i++ {
		for c := range votes {
			votes[c] = 0
		}
		for s, st := range strategies {
			votes[st.labels[i]] += weights[s]
		}
		best := 0
		for c := 1; c < k; c++ {
			if votes[c] > votes[best] {
				best = c
			}
		}
		labels[i] = best
	}

	// Recompute centroids from the fused assignment; clusters that lost
	// all frames in the vote keep the first strategy's centroid.
	centroids := make([][]float32, k)
	for c := 0; c < k; c++ {
		if mean := meanVector(vecs, labels, c); mean != nil {
			centroids[c] = mean
		} else {
			centroids[c] = strategies[0].centroids[c]
		}
	}

	// Flag frames whose top-2 centroid similarities both clear the
	// overlap level.
	overlap := make([]bool, n)
	for i, v := range vecs {
		top1, top2 := -1.0, -1.0
		for _, cen := range centroids {
			sim := cosineSim(v, cen)
			if sim > top1 {
				top1, top2 = sim, top1
			} else if sim > top2 {
				top2 = sim
			}
		}
		overlap[i] = k >= 2 && top1 > overlapSim && top2 > overlapSim
	}

	return ensemble{labels: labels, centroids: centroids, overlap: overlap, weights: weights}
}

// relabel permutes a clustering's label space so that its centroids
// line up with ref by greedy best-similarity matching.
func relabel(c clustering, ref [][]float32) clustering {
	k := len(c.centroids)
	perm := make([]int, k) // old label -> new label
	taken := make([]bool, k)
	assigned := make([]bool, k)

	for range perm {
		bestOld, bestRef := -1, -1
		bestSim := -2.0
		for old := 0; old < k; old++ {
			if assigned[old] {
				continue
			}
			for r := 0; r < k; r++ {
				if taken[r] {
					continue
				}
				if sim := cosineSim(c.centroids[old], ref[r]); sim > bestSim {
					bestOld, bestRef, bestSim = old, r, sim
				}
			}
		}
		perm[bestOld] = bestRef
		assigned[bestOld] = true
		taken[bestRef] = true
	}

	labels := make([]int, len(c.labels))
	for i, l := range c.labels {
		labels[i] = perm[l]
	}
	centroids := make([][]float32, k)
	for old, neu := range perm {
		centroids[neu] = c.centroids[old]
	}
	return clustering{labels: labels, centroids: centroids, score: c.score}
}
