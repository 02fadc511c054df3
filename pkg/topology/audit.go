package topology

import (
	"fmt"
	"strings"

	"github.com/aretw0/easel/pkg/domain"
)

// Violation is one broken rule found by Audit.
type Violation struct {
	ItemID string              `json:"item_id"`
	Reason domain.RejectReason `json:"reason"`
	Detail string              `json:"detail"`
}

// Violations aggregates every problem found in a document.
type Violations []Violation

func (v Violations) Error() string {
	lines := make([]string, len(v))
	for i, x := range v {
		lines[i] = fmt.Sprintf("%s: %s", x.ItemID, x.Detail)
	}
	return fmt.Sprintf("found %d errors:\n- %s", len(v), strings.Join(lines, "\n- "))
}

// FromDocument returns a Snapshot over a document.
func FromDocument(doc *domain.Document) Snapshot {
	s := docSnapshot{nodes: make(map[string]domain.NodeModel, len(doc.Nodes))}
	for _, n := range doc.Nodes {
		s.nodes[n.ID] = n
	}
	for _, e := range doc.Edges {
		if !e.Draft {
			s.edges = append(s.edges, e)
		}
	}
	return s
}

type docSnapshot struct {
	nodes map[string]domain.NodeModel
	edges []domain.EdgeModel
}

func (s docSnapshot) FindNode(id string) (domain.NodeModel, bool) {
	n, ok := s.nodes[id]
	return n, ok
}

func (s docSnapshot) InEdges(nodeID string) []domain.EdgeModel {
	var out []domain.EdgeModel
	for _, e := range s.edges {
		if e.Target.Node == nodeID {
			out = append(out, e)
		}
	}
	return out
}

func (s docSnapshot) OutEdges(nodeID string) []domain.EdgeModel {
	var out []domain.EdgeModel
	for _, e := range s.edges {
		if e.Source.Node == nodeID {
			out = append(out, e)
		}
	}
	return out
}

// Audit checks a whole document against the connection rules: dangling or
// unbound endpoints, self loops, degree limits, duplicate edges and transitive
// nodes. It returns nil or a Violations error.
func Audit(doc *domain.Document, r Rules) error {
	snap := FromDocument(doc).(docSnapshot)
	var found Violations
	add := func(id string, reason domain.RejectReason, format string, args ...any) {
		found = append(found, Violation{ItemID: id, Reason: reason, Detail: fmt.Sprintf(format, args...)})
	}

	pairs := make(map[[2]string]int)
	for _, e := range snap.edges {
		for _, end := range []domain.Endpoint{e.Source, e.Target} {
			if end.IsFree() {
				add(e.ID, domain.ReasonNotAnchor, "endpoint is not bound to a node")
				continue
			}
			if _, ok := snap.nodes[end.Node]; !ok {
				add(e.ID, domain.ReasonNotAnchor, "endpoint references missing node %q", end.Node)
			}
		}
		if !e.Source.IsFree() && e.Source.Node == e.Target.Node {
			add(e.ID, domain.ReasonSelfLoop, "edge loops on node %q", e.Source.Node)
		}
		pairs[[2]string{e.Source.Node, e.Target.Node}]++
		if !r.AllowMultiEdge && pairs[[2]string{e.Source.Node, e.Target.Node}] == 2 {
			add(e.ID, domain.ReasonDuplicateEdge, "duplicates a connection from %q to %q", e.Source.Node, e.Target.Node)
		}
	}

	for _, n := range doc.Nodes {
		in, out := len(snap.InEdges(n.ID)), len(snap.OutEdges(n.ID))
		if rule, ok := r.LinkRules[n.Kind]; ok {
			if rule.In > 0 && in > rule.In {
				add(n.ID, domain.ReasonDegreeLimitExceeded, "%d incoming edges exceed the limit of %d for kind %q", in, rule.In, n.Kind)
			}
			if rule.Out > 0 && out > rule.Out {
				add(n.ID, domain.ReasonDegreeLimitExceeded, "%d outgoing edges exceed the limit of %d for kind %q", out, rule.Out, n.Kind)
			}
		}
		if n.Transitive && out > 1 {
			add(n.ID, domain.ReasonTransitiveLimit, "transitive node has %d outgoing edges", out)
		}
	}

	if len(found) > 0 {
		return found
	}
	return nil
}
