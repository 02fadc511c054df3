// Package topology holds the pure connection rules consulted by the edge
// gestures: degree limits per node kind, self loops, duplicate edges and
// transitive nodes. None of the functions mutate the graph.
package topology

import (
	"github.com/aretw0/easel/pkg/domain"
)

// Snapshot is the read-only subset of the graph facade the validator needs.
type Snapshot interface {
	FindNode(id string) (domain.NodeModel, bool)
	InEdges(nodeID string) []domain.EdgeModel
	OutEdges(nodeID string) []domain.EdgeModel
}

// Rules configures the connection checks.
type Rules struct {
	LinkRules      domain.LinkRules
	AllowMultiEdge bool
}

// CheckOutAndInEdge reports whether node may take one more edge in direction
// d under its kind's link rule. Edges listed in exclude are not counted, so a
// gesture can leave its own draft in the graph while asking.
func CheckOutAndInEdge(g Snapshot, nodeID string, d domain.Direction, rules domain.LinkRules, exclude ...string) bool {
	node, ok := g.FindNode(nodeID)
	if !ok {
		return false
	}
	rule, ok := rules[node.Kind]
	if !ok {
		return true
	}
	in := count(g.InEdges(nodeID), exclude)
	out := count(g.OutEdges(nodeID), exclude)
	return rule.Allows(d, in, out)
}

// NotSelf reports whether connecting candidate to the fixed end of an edge
// avoids a self loop.
func NotSelf(fixedNodeID, candidateNodeID string) bool {
	return fixedNodeID != candidateNodeID
}

// IsOnlyOneEdge reports whether no other edge already runs from source to target.
func IsOnlyOneEdge(g Snapshot, source, target string, exclude ...string) bool {
	for _, e := range g.OutEdges(source) {
		if e.Target.Node == target && !excluded(e.ID, exclude) {
			return false
		}
	}
	return true
}

// CheckTransitive reports whether source may take one more outgoing edge.
// Transitive nodes hold at most one.
func CheckTransitive(g Snapshot, source string, exclude ...string) bool {
	node, ok := g.FindNode(source)
	if !ok || !node.Transitive {
		return true
	}
	return count(g.OutEdges(source), exclude) == 0
}

// Candidate is an edge about to be committed from Source to Target.
type Candidate struct {
	// EdgeID is the draft or working copy standing in for the edge; it is
	// never counted against the limits.
	EdgeID string
	Source string
	Target string
	// Check selects the degree limits to verify: DirectionOut checks the
	// source, DirectionIn the target and DirectionAny both.
	Check domain.Direction
}

// Validate runs every connection rule in a fixed order and returns the reason
// of the first failure, or "" when the candidate is acceptable:
//
//  1. both ends bound to existing nodes
//  2. degree limits for the checked ends
//  3. no self loop
//  4. no duplicate edge, unless multi edges are allowed
//  5. transitive source holds no other outgoing edge
func Validate(g Snapshot, c Candidate, r Rules) domain.RejectReason {
	if c.Source == "" || c.Target == "" {
		return domain.ReasonNotAnchor
	}
	if _, ok := g.FindNode(c.Source); !ok {
		return domain.ReasonNotAnchor
	}
	if _, ok := g.FindNode(c.Target); !ok {
		return domain.ReasonNotAnchor
	}
	if c.Check != domain.DirectionIn && !CheckOutAndInEdge(g, c.Source, domain.DirectionOut, r.LinkRules, c.EdgeID) {
		return domain.ReasonDegreeLimitExceeded
	}
	if c.Check != domain.DirectionOut && !CheckOutAndInEdge(g, c.Target, domain.DirectionIn, r.LinkRules, c.EdgeID) {
		return domain.ReasonDegreeLimitExceeded
	}
	if !NotSelf(c.Source, c.Target) {
		return domain.ReasonSelfLoop
	}
	if !r.AllowMultiEdge && !IsOnlyOneEdge(g, c.Source, c.Target, c.EdgeID) {
		return domain.ReasonDuplicateEdge
	}
	if !CheckTransitive(g, c.Source, c.EdgeID) {
		return domain.ReasonTransitiveLimit
	}
	return ""
}

func count(edges []domain.EdgeModel, exclude []string) int {
	n := 0
	for _, e := range edges {
		if !excluded(e.ID, exclude) {
			n++
		}
	}
	return n
}

func excluded(id string, exclude []string) bool {
	for _, x := range exclude {
		if x == id {
			return true
		}
	}
	return false
}
