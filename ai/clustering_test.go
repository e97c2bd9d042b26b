package ai

import (
	"math"
	"math/rand"
	"testing"
)

// blob generates points scattered tightly around a center vector.
func blob(rng *rand.Rand, center []float32, count int) [][]float32 {
	points := make([][]float32, count)
	for i := range points {
		p := make([]float32, len(center))
		for j, c := range center {
			p[j] = c + float32(rng.NormFloat64()*0.01)
		}
		points[i] = p
	}
	return points
}

func TestClusterEmbeddings_TwoSpeakers(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	a := blob(rng, []float32{1, 0, 0, 0}, 5)
	b := blob(rng, []float32{0, 1, 0, 0}, 5)

	// Interleave like a conversation: a b a b ...
	var embeddings [][]float32
	for i := 0; i < 5; i++ {
		embeddings = append(embeddings, a[i], b[i])
	}

	labels := ClusterEmbeddings(embeddings, 2)
	if len(labels) != len(embeddings) {
		t.Fatalf("got %d labels for %d embeddings", len(labels), len(embeddings))
	}

	// First voice heard must be cluster 0.
	if labels[0] != 0 {
		t.Errorf("first segment label = %d, want 0", labels[0])
	}
	for i, label := range labels {
		want := i % 2
		if label != want {
			t.Errorf("segment %d: label = %d, want %d", i, label, want)
		}
	}
}

func TestClusterEmbeddings_LabelRange(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	var embeddings [][]float32
	embeddings = append(embeddings, blob(rng, []float32{1, 0, 0}, 4)...)
	embeddings = append(embeddings, blob(rng, []float32{0, 1, 0}, 4)...)
	embeddings = append(embeddings, blob(rng, []float32{0, 0, 1}, 4)...)

	k := 3
	labels := ClusterEmbeddings(embeddings, k)

	used := make(map[int]bool)
	for i, label := range labels {
		if label < 0 || label >= k {
			t.Errorf("segment %d: label %d out of [0,%d)", i, label, k)
		}
		used[label] = true
	}
	if len(used) != k {
		t.Errorf("%d distinct labels, want %d", len(used), k)
	}
}

func TestClusterEmbeddings_Deterministic(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	var embeddings [][]float32
	embeddings = append(embeddings, blob(rng, []float32{1, 1}, 6)...)
	embeddings = append(embeddings, blob(rng, []float32{-1, -1}, 6)...)

	first := ClusterEmbeddings(embeddings, 2)
	for run := 0; run < 5; run++ {
		again := ClusterEmbeddings(embeddings, 2)
		for i := range first {
			if again[i] != first[i] {
				t.Fatalf("run %d: labels changed at %d: %d vs %d", run, i, again[i], first[i])
			}
		}
	}
}

func TestClusterEmbeddings_FewerPointsThanClusters(t *testing.T) {
	embeddings := [][]float32{{1, 0}, {0, 1}}
	labels := ClusterEmbeddings(embeddings, 5)

	if len(labels) != 2 {
		t.Fatalf("got %d labels, want 2", len(labels))
	}
	if labels[0] == labels[1] {
		t.Error("each point should get its own cluster when n <= k")
	}
}

func TestClusterEmbeddings_Degenerate(t *testing.T) {
	if labels := ClusterEmbeddings(nil, 2); labels != nil {
		t.Errorf("nil input should give nil labels, got %v", labels)
	}

	labels := ClusterEmbeddings([][]float32{{1, 2, 3}}, 2)
	if len(labels) != 1 || labels[0] != 0 {
		t.Errorf("single embedding should label as [0], got %v", labels)
	}
}

func TestClusterEmbeddings_NonFiniteValues(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	embeddings := [][]float32{
		{nan, 1, 0},
		{inf, 1, 0},
		{0, 0, 1},
		{0, 0, 1},
	}

	labels := ClusterEmbeddings(embeddings, 2)
	for i, label := range labels {
		if label < 0 || label >= 2 {
			t.Errorf("segment %d: label %d out of range despite non-finite input", i, label)
		}
	}
	// The two sanitized points (0,1,0) group together, as do the (0,0,1)s.
	if labels[0] != labels[1] {
		t.Errorf("sanitized equal points split: %v", labels)
	}
	if labels[2] != labels[3] {
		t.Errorf("identical points split: %v", labels)
	}
	if labels[0] == labels[2] {
		t.Errorf("distinct points merged: %v", labels)
	}
}
