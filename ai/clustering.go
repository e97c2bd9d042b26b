package ai

import (
	"math"

	"gonum.org/v1/gonum/floats"
)

// ClusterEmbeddings partitions the segment embeddings into numClusters speaker
// clusters using agglomerative hierarchical clustering (Ward linkage,
// Lance-Williams update). The result has one label per embedding, labels are
// renumbered by chronological first appearance so cluster 0 is always the
// first speaker heard.
//
// Non-finite embedding values are replaced with 0 before clustering. When
// there are fewer embeddings than requested clusters, every embedding gets
// its own cluster (fewer non-empty clusters than requested, never an error).
func ClusterEmbeddings(embeddings [][]float32, numClusters int) []int {
	n := len(embeddings)
	if n == 0 {
		return nil
	}
	if numClusters < 1 {
		numClusters = 1
	}

	points := sanitized(embeddings)

	if n <= numClusters {
		labels := make([]int, n)
		for i := range labels {
			labels[i] = i
		}
		return labels
	}

	// One active cluster per point to start. dist holds squared-Euclidean
	// Ward distances between active clusters.
	size := make([]int, n)
	active := make([]bool, n)
	members := make([][]int, n)
	for i := 0; i < n; i++ {
		size[i] = 1
		active[i] = true
		members[i] = []int{i}
	}

	dist := make([][]float64, n)
	for i := 0; i < n; i++ {
		dist[i] = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			d := floats.Distance(points[i], points[j], 2)
			dist[i][j] = d * d
			dist[j][i] = dist[i][j]
		}
	}

	remaining := n
	for remaining > numClusters {
		// Closest active pair; ties resolved by lowest (i, j) so the
		// merge order is deterministic.
		bi, bj := -1, -1
		best := math.Inf(1)
		for i := 0; i < n; i++ {
			if !active[i] {
				continue
			}
			for j := i + 1; j < n; j++ {
				if !active[j] {
					continue
				}
				if dist[i][j] < best {
					best = dist[i][j]
					bi, bj = i, j
				}
			}
		}

		// Merge bj into bi, then update distances to every other active
		// cluster with the Ward recurrence.
		for k := 0; k < n; k++ {
			if !active[k] || k == bi || k == bj {
				continue
			}
			ni, nj, nk := float64(size[bi]), float64(size[bj]), float64(size[k])
			d := ((ni+nk)*dist[bi][k] + (nj+nk)*dist[bj][k] - nk*dist[bi][bj]) / (ni + nj + nk)
			dist[bi][k] = d
			dist[k][bi] = d
		}
		members[bi] = append(members[bi], members[bj]...)
		size[bi] += size[bj]
		active[bj] = false
		members[bj] = nil
		remaining--
	}

	labels := make([]int, n)
	for i := range labels {
		labels[i] = -1
	}
	for c := 0; c < n; c++ {
		if !active[c] {
			continue
		}
		for _, idx := range members[c] {
			labels[idx] = c
		}
	}

	// Renumber by first appearance.
	next := 0
	renumber := make(map[int]int, numClusters)
	for i := 0; i < n; i++ {
		if _, ok := renumber[labels[i]]; !ok {
			renumber[labels[i]] = next
			next++
		}
		labels[i] = renumber[labels[i]]
	}
	return labels
}

// sanitized converts embeddings to float64 rows with NaN/Inf zeroed out.
func sanitized(embeddings [][]float32) [][]float64 {
	out := make([][]float64, len(embeddings))
	for i, emb := range embeddings {
		row := make([]float64, len(emb))
		for j, v := range emb {
			f := float64(v)
			if math.IsNaN(f) || math.IsInf(f, 0) {
				f = 0
			}
			row[j] = f
		}
		out[i] = row
	}
	return out
}
