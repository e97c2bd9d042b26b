package roles

import (
	"sort"
	"strings"

	"callscribe/ai"
)

// Assignment is the resolved cluster-to-role mapping. A role is unresolved
// while its cluster id is negative.
type Assignment struct {
	Customer int // cluster id, -1 when unresolved
	Agent    int // cluster id, -1 when unresolved

	// Ambiguous marks the degenerate outcome: fewer than two distinct
	// clusters so both roles could not land on different speakers. A
	// consumer must not present such an assignment as a confident one.
	Ambiguous bool
}

// Complete reports whether both roles are resolved.
func (a Assignment) Complete() bool { return a.Customer >= 0 && a.Agent >= 0 }

// IsCustomer reports whether the cluster holds the customer role.
func (a Assignment) IsCustomer(cluster int) bool { return a.Customer >= 0 && cluster == a.Customer }

// IsAgent reports whether the cluster holds the agent role.
func (a Assignment) IsAgent(cluster int) bool { return a.Agent >= 0 && cluster == a.Agent }

// A strategy fills still-open roles in the assignment. Strategies only ever
// touch roles that are unresolved and only consider clusters not already
// holding the other role.
type strategy func(t Table, segments []ai.TranscriptSegment, a *Assignment)

// Resolve turns the evidence table into a role assignment. The strategies
// run in a fixed order, each one a fallback for the previous:
//
//  1. margin pass: clusters whose evidence clearly leans one way;
//  2. top-score fill: highest remaining score for a missing role;
//  3. word-count ranking: fewest words is the customer, most words the
//     agent (agents talk more in service calls);
//  4. positional parity: the last resort when no evidence exists at all.
//
// With two or more clusters the result is always complete with two distinct
// clusters. With a single cluster at most one role resolves and the
// assignment is marked ambiguous rather than silently duplicating the
// cluster into both roles.
func Resolve(t Table, segments []ai.TranscriptSegment) Assignment {
	a := Assignment{Customer: -1, Agent: -1}
	for _, apply := range []strategy{
		resolveByMargin,
		resolveByTopScore,
		resolveByWordCount,
		resolveByParity,
	} {
		apply(t, segments, &a)
		if a.Complete() {
			break
		}
	}
	a.Ambiguous = !a.Complete() || a.Customer == a.Agent
	return a
}

// resolveByMargin assigns clusters with a strict evidence margin, in
// ascending id order, first come first served per role.
func resolveByMargin(t Table, _ []ai.TranscriptSegment, a *Assignment) {
	for _, id := range t.ClusterIDs() {
		s := t[id]
		if s.Customer > s.Agent && a.Customer < 0 {
			a.Customer = id
		} else if s.Agent > s.Customer && a.Agent < 0 {
			a.Agent = id
		}
	}
}

// resolveByTopScore fills a missing role with the highest-scoring cluster
// among those not holding the other role. Ties break toward the lowest id.
// The customer side fills first, matching the margin pass order.
func resolveByTopScore(t Table, _ []ai.TranscriptSegment, a *Assignment) {
	if a.Customer < 0 {
		best, bestScore := -1, -1
		for _, id := range t.ClusterIDs() {
			if id == a.Agent {
				continue
			}
			if t[id].Customer > bestScore {
				best, bestScore = id, t[id].Customer
			}
		}
		a.Customer = best
	}
	if a.Agent < 0 {
		best, bestScore := -1, -1
		for _, id := range t.ClusterIDs() {
			if id == a.Customer {
				continue
			}
			if t[id].Agent > bestScore {
				best, bestScore = id, t[id].Agent
			}
		}
		a.Agent = best
	}
}

// resolveByWordCount ranks the clusters not yet holding either role by their
// total spoken word count: the quietest becomes the customer, the most
// talkative the agent. Needs at least two unassigned clusters to fill both
// roles; with fewer it fills what it can.
func resolveByWordCount(t Table, segments []ai.TranscriptSegment, a *Assignment) {
	words := make(map[int]int)
	for _, seg := range segments {
		words[seg.Cluster] += len(strings.Fields(seg.Text))
	}

	var candidates []int
	for _, id := range t.ClusterIDs() {
		if id != a.Customer && id != a.Agent {
			candidates = append(candidates, id)
		}
	}
	if len(candidates) == 0 {
		return
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		if words[candidates[i]] != words[candidates[j]] {
			return words[candidates[i]] < words[candidates[j]]
		}
		return candidates[i] < candidates[j]
	})

	if a.Customer < 0 {
		a.Customer = candidates[0]
	}
	if a.Agent < 0 {
		last := candidates[len(candidates)-1]
		if last != a.Customer {
			a.Agent = last
		}
	}
}

// resolveByParity is the last resort with no usable evidence: even cluster
// ids lean customer, odd ids lean agent (the first distinct voice on a
// service call is usually the caller being greeted).
func resolveByParity(t Table, _ []ai.TranscriptSegment, a *Assignment) {
	for _, id := range t.ClusterIDs() {
		if id%2 == 0 && a.Customer < 0 && id != a.Agent {
			a.Customer = id
		} else if id%2 == 1 && a.Agent < 0 && id != a.Customer {
			a.Agent = id
		}
	}
}
