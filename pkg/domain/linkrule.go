package domain

// Direction selects which degree of a node a link rule check looks at.
type Direction string

const (
	DirectionIn  Direction = "in"
	DirectionOut Direction = "out"
	// DirectionAny requires both degrees to stay under their limits.
	DirectionAny Direction = ""
)

// LinkRule bounds the in and out degree of a node kind. Zero means unbounded.
type LinkRule struct {
	In  int `json:"in,omitempty" yaml:"in,omitempty"`
	Out int `json:"out,omitempty" yaml:"out,omitempty"`
}

// LinkRules maps node kinds to their link rule.
type LinkRules map[string]LinkRule

// Allows reports whether a node currently holding in incoming and out
// outgoing edges may take one more edge in direction d.
func (r LinkRule) Allows(d Direction, in, out int) bool {
	inOK := r.In <= 0 || in < r.In
	outOK := r.Out <= 0 || out < r.Out
	switch d {
	case DirectionIn:
		return inOK
	case DirectionOut:
		return outOK
	default:
		return inOK && outOK
	}
}
