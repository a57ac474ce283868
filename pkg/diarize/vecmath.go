package diarize

import "math"

// cosineSim computes cosine similarity between two vectors.
// For L2-normalized vectors this is the dot product.
func cosineSim(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		ai, bi := float64(a[i]), float64(b[i])
		dot += ai * bi
		na += ai * ai
		nb += bi * bi
	}
	denom := math.Sqrt(na) * math.Sqrt(nb)
	if denom == 0 {
		return 0
	}
	return dot / denom
}

// cosineDist returns 1 - cosine similarity.
func cosineDist(a, b []float32) float64 {
	return 1.0 - cosineSim(a, b)
}

// euclideanDist returns the Euclidean distance between two vectors.
func euclideanDist(a, b []float32) float64 {
	var sum float64
	for i := range a {
		d := float64(a[i]) - float64(b[i])
		sum += d * d
	}
	return math.Sqrt(sum)
}

// l2Norm normalizes a vector to unit length in-place.
func l2Norm(v []float32) {
	var sum float64
	for _, x := range v {
		sum += float64(x) * float64(x)
	}
	norm := math.Sqrt(sum)
	if norm > 0 {
		scale := float32(1.0 / norm)
		for i := range v {
			v[i] *= scale
		}
	}
}

// meanVector computes the per-dimension mean of the vectors selected by
// labels[i] == label. Returns nil if no vector matches.
func meanVector(vecs [][]float32, labels []int, label int) []float32 {
	var mean []float32
	count := 0
	for i, v := range vecs {
		if labels[i] != label {
			continue
		}
		if mean == nil {
			mean = make([]float32, len(v))
		}
		for d := range v {
			mean[d] += v[d]
		}
		count++
	}
	if count == 0 {
		return nil
	}
	inv := float32(1.0 / float64(count))
	for d := range mean {
		mean[d] *= inv
	}
	return mean
}
