package diarize

import (
	"math"
	"testing"
)

func TestEnsembleSeparatesClusters(t *testing.T) {
	vecs, split := twoClusters(10)
	ens := ensembleCluster(vecs, 2)

	first := ens.labels[0]
	for i := 1; i < split; i++ {
		if ens.labels[i] != first {
			t.Fatalf("vector %d: label %d, want %d", i, ens.labels[i], first)
		}
	}
	for i := split; i < len(vecs); i++ {
		if ens.labels[i] == first {
			t.Fatalf("vector %d landed in the wrong cluster", i)
		}
	}
}

func TestEnsembleWeightsNormalized(t *testing.T) {
	vecs, _ := twoClusters(8)
	ens := ensembleCluster(vecs, 2)

	var sum float64
	for _, w := range ens.weights {
		if w < 0 {
			t.Fatalf("negative strategy weight %v", w)
		}
		sum += w
	}
	if math.Abs(sum-1) > 1e-9 {
		t.Errorf("weights sum to %v, want 1", sum)
	}
}

func TestEnsembleCentroidsFollowClusters(t *testing.T) {
	vecs, split := twoClusters(10)
	ens := ensembleCluster(vecs, 2)

	// Each vector must be closest to its own cluster's centroid.
	for i, v := range vecs {
		own := cosineSim(v, ens.centroids[ens.labels[i]])
		other := cosineSim(v, ens.centroids[1-ens.labels[i]])
		if own <= other {
			t.Fatalf("vector %d (split %d): own sim %v <= other %v", i, split, own, other)
		}
	}
}

func TestEnsembleNoOverlapForSeparatedClusters(t *testing.T) {
	// Orthogonal clusters: no frame resembles both centroids.
	vecs, _ := twoClusters(10)
	ens := ensembleCluster(vecs, 2)
	for i, o := range ens.overlap {
		if o {
			t.Errorf("frame %d flagged overlapped in orthogonal clusters", i)
		}
	}
}

func TestEnsembleFlagsOverlapFrames(t *testing.T) {
	vecs, _ := twoClusters(10)
	// A frame midway between the clusters resembles both.
	mid := []float32{1, 1, 0}
	l2Norm(mid)
	vecs = append(vecs, mid)

	ens := ensembleCluster(vecs, 2)
	if !ens.overlap[len(vecs)-1] {
		t.Error("midpoint frame not flagged as overlapped")
	}
}

func TestRelabelAlignsLabelSpaces(t *testing.T) {
	vecs, _ := twoClusters(6)
	ref := kmeans(vecs, 2, 20, cosineDist)

	// Same partition with flipped labels.
	flipped := clustering{
		labels:    make([]int, len(ref.labels)),
		centroids: [][]float32{ref.centroids[1], ref.centroids[0]},
		score:     ref.score,
	}
	for i, l := range ref.labels {
		flipped.labels[i] = 1 - l
	}

	aligned := relabel(flipped, ref.centroids)
	for i := range aligned.labels {
		if aligned.labels[i] != ref.labels[i] {
			t.Fatalf("label %d not aligned after relabel", i)
		}
	}
}
