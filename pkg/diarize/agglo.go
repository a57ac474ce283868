package diarize

import "math"

// agglomerative clusters vectors by greedy nearest-pair merging: every
// vector starts as its own cluster, and the pair of clusters with the
// smallest cosine distance between running centroids is merged until k
// clusters remain.
func agglomerative(vecs [][]float32, k int) clustering {
	n := len(vecs)
	type cluster struct {
		centroid []float32
		count    int
		members  []int
	}

	clusters := make([]*cluster, n)
	for i, v := range vecs {
		cp := make([]float32, len(v))
		copy(cp, v)
		clusters[i] = &cluster{centroid: cp, count: 1, members: []int{i}}
	}

	for len(clusters) > k {
		bestA, bestB := 0, 1
		bestDist := math.Inf(1)
		for a := 0; a < len(clusters); a++ {
			for b := a + 1; b < len(clusters); b++ {
				if d := cosineDist(clusters[a].centroid, clusters[b].centroid); d < bestDist {
					bestA, bestB, bestDist = a, b, d
				}
			}
		}

		ca, cb := clusters[bestA], clusters[bestB]
		total := float32(ca.count + cb.count)
		for d := range ca.centroid {
			ca.centroid[d] = (ca.centroid[d]*float32(ca.count) + cb.centroid[d]*float32(cb.count)) / total
		}
		ca.count += cb.count
		ca.members = append(ca.members, cb.members...)
		clusters = append(clusters[:bestB], clusters[bestB+1:]...)
	}

	labels := make([]int, n)
	centroids := make([][]float32, len(clusters))
	for c, cl := range clusters {
		centroids[c] = cl.centroid
		for _, m := range cl.members {
			labels[m] = c
		}
	}

	return clustering{
		labels:    labels,
		centroids: centroids,
		score:     silhouette(vecs, labels, len(clusters), cosineDist),
	}
}
