package roles

import (
	"sort"

	"callscribe/ai"
)

// Score tallies role evidence for one speaker cluster. Both counters only
// ever grow during scoring.
type Score struct {
	Customer int
	Agent    int
}

// Table maps cluster ids to their evidence tallies. Built once per call with
// every cluster initialized to (0, 0); the scoring passes mutate it in place
// and never reset it.
type Table map[int]*Score

// NewTable initializes a zeroed entry for every cluster that appears in the
// segments.
func NewTable(segments []ai.TranscriptSegment) Table {
	t := make(Table)
	for _, seg := range segments {
		if _, ok := t[seg.Cluster]; !ok {
			t[seg.Cluster] = &Score{}
		}
	}
	return t
}

// AddCustomerEvidence adds weight to a cluster's customer score.
func (t Table) AddCustomerEvidence(cluster, weight int) {
	if s, ok := t[cluster]; ok {
		s.Customer += weight
	}
}

// AddAgentEvidence adds weight to a cluster's agent score.
func (t Table) AddAgentEvidence(cluster, weight int) {
	if s, ok := t[cluster]; ok {
		s.Agent += weight
	}
}

// ClusterIDs returns the cluster ids in ascending order. Resolution visits
// clusters in this order so ties always break toward the lowest id.
func (t Table) ClusterIDs() []int {
	ids := make([]int, 0, len(t))
	for id := range t {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}
