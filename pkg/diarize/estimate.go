package diarize

// estimateIters is the k-means iteration count used during the
// cluster-count search; the final ensemble refines with more.
const estimateIters = 15

// minSilhouette is the quality gate for multi-speaker clustering: if
// the best silhouette over all tested k falls below it, the recording
// is treated as single-speaker.
const minSilhouette = 0.1

// estimateSpeakers searches k over [1, min(max, len(vecs))] by cosine
// k-means silhouette and returns the best k with its score. Ties go to
// the smallest k; a best score below minSilhouette forces k=1.
func estimateSpeakers(vecs [][]float32, max int) (k int, score float64) {
	limit := max
	if len(vecs) < limit {
		limit = len(vecs)
	}
	if limit < 2 {
		return 1, 0
	}

	bestK, bestScore := 1, 0.0
	for k := 2; k <= limit; k++ {
		c := kmeans(vecs, k, estimateIters, cosineDist)
		if c.score > bestScore {
			bestK, bestScore = k, c.score
		}
	}

	if bestScore < minSilhouette {
		return 1, bestScore
	}
	return bestK, bestScore
}
