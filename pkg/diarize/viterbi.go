package diarize

import "math"

// smoothLabels removes frame-level label flicker: Viterbi decoding
// under a sticky transition model, then sliding-window majority voting,
// then absorption of runs shorter than half the smoothing window.
func smoothLabels(vecs [][]float32, centroids [][]float32, labels []int, stay float64, width int) []int {
	k := len(centroids)
	if k < 2 || len(vecs) == 0 {
		return labels
	}
	out := viterbi(vecs, centroids, stay)
	out = majoritySmooth(out, k, width)
	return absorbShortRuns(out, width)
}

// viterbi decodes the most likely state sequence. Emission
// probabilities are the per-frame centroid similarities normalized to a
// simplex (floored at 1e-6); transitions are stay on the diagonal and
// (1-stay)/(k-1) elsewhere.
func viterbi(vecs [][]float32, centroids [][]float32, stay float64) []int {
	n := len(vecs)
	k := len(centroids)

	emit := make([][]float64, n)
	for i, v := range vecs {
		probs := make([]float64, k)
		var sum float64
		for c, cen := range centroids {
			sim := cosineSim(v, cen)
			if sim < 0 {
				sim = 0
			}
			probs[c] = sim
			sum += sim
		}
		for c := range probs {
			if sum > 0 {
				probs[c] /= sum
			} else {
				probs[c] = 1.0 / float64(k)
			}
			if probs[c] < 1e-6 {
				probs[c] = 1e-6
			}
			probs[c] = math.Log(probs[c])
		}
		emit[i] = probs
	}

	logStay := math.Log(stay)
	logMove := math.Log((1 - stay) / float64(k-1))

	score := make([][]float64, n)
	back := make([][]int, n)
	score[0] = emit[0]
	for t := 1; t < n; t++ {
		score[t] = make([]float64, k)
		back[t] = make([]int, k)
		for c := 0; c < k; c++ {
			bestPrev, bestScore := 0, math.Inf(-1)
			for p := 0; p < k; p++ {
				trans := logMove
				if p == c {
					trans = logStay
				}
				if s := score[t-1][p] + trans; s > bestScore {
					bestPrev, bestScore = p, s
				}
			}
			score[t][c] = bestScore + emit[t][c]
			back[t][c] = bestPrev
		}
	}

	path := make([]int, n)
	best := 0
	for c := 1; c < k; c++ {
		if score[n-1][c] > score[n-1][best] {
			best = c
		}
	}
	path[n-1] = best
	for t := n - 1; t > 0; t-- {
		path[t-1] = back[t][path[t]]
	}
	return path
}

// majoritySmooth replaces each label with the majority vote over a
// centered window (ties keep the original label).
func majoritySmooth(labels []int, k, width int) []int {
	if width < 2 {
		return labels
	}
	n := len(labels)
	half := width / 2
	out := make([]int, n)
	counts := make([]int, k)

	for i := 0; i < n; i++ {
		for c := range counts {
			counts[c] = 0
		}
		lo, hi := i-half, i+half
		if lo < 0 {
			lo = 0
		}
		if hi >= n {
			hi = n - 1
		}
		for j := lo; j <= hi; j++ {
			counts[labels[j]]++
		}
		best := labels[i]
		for c := 0; c < k; c++ {
			if counts[c] > counts[best] {
				best = c
			}
		}
		out[i] = best
	}
	return out
}

// absorbShortRuns folds contiguous runs shorter than width/2 into a
// neighboring run. When both neighbors carry the same label the run
// keeps its own label; otherwise it is absorbed into the right
// neighbor (or the only neighbor at the edges).
func absorbShortRuns(labels []int, width int) []int {
	n := len(labels)
	minRun := float64(width) / 2
	out := make([]int, n)
	copy(out, labels)

	for start := 0; start < n; {
		end := start
		for end < n && out[end] == out[start] {
			end++
		}
		runLen := end - start

		if float64(runLen) < minRun {
			leftOK := start > 0
			rightOK := end < n
			switch {
			case leftOK && rightOK && out[start-1] == out[end]:
				// Equal neighbors: the run keeps its own label.
			case rightOK:
				for i := start; i < end; i++ {
					out[i] = out[end]
				}
			case leftOK:
				for i := start; i < end; i++ {
					out[i] = out[start-1]
				}
			}
		}
		start = end
	}
	return out
}
