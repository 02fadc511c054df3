package command

import "github.com/aretw0/easel/pkg/domain"

// Offsets of a new topic relative to the node it is created from.
const (
	topicGapX = 200
	topicGapY = 60
)

// TopicParams overrides the model of the new topic. The id, parent and
// position are filled in when left empty.
type TopicParams struct {
	Model domain.NodeModel `json:"model"`
}

type topicCommand struct {
	Base
	sibling bool
	params  TopicParams
}

// SubtopicTemplate adds a child under the selected topic of a mind graph.
func SubtopicTemplate() Template {
	return Template{
		Name:      Subtopic,
		Shortcuts: []Shortcut{Key("Tab")},
		New:       func() Command { return &topicCommand{} },
	}
}

// TopicTemplate adds a sibling next to the selected topic of a mind graph.
func TopicTemplate() Template {
	return Template{
		Name: Topic,
		New:  func() Command { return &topicCommand{sibling: true} },
	}
}

func (c *topicCommand) Params() any { return &c.params }

func (c *topicCommand) CanExecute(env *Env) domain.RejectReason {
	g := env.Graph
	if r := writable(g); r != "" {
		return r
	}
	nodes := selectedNodes(g)
	if len(nodes) == 0 {
		return domain.ReasonNoSelection
	}
	if c.sibling {
		// The root topic has no siblings.
		if n, ok := g.FindNode(nodes[0]); !ok || n.Parent == "" {
			return domain.ReasonNoSelection
		}
	}
	return ""
}

func (c *topicCommand) ShouldExecute(env *Env) bool {
	return env.Graph.Kind() == domain.KindMind
}

func (c *topicCommand) Init(env *Env) error {
	g := env.Graph
	from, _ := g.FindNode(selectedNodes(g)[0])

	m := c.params.Model.Clone()
	if m.ID == "" {
		m.ID = env.newID()
	}
	if m.Label == "" {
		m.Label = "New Topic"
	}
	if c.sibling {
		m.Parent = from.Parent
		if m.X == 0 && m.Y == 0 {
			m.X, m.Y = from.X, from.Y+topicGapY
		}
	} else {
		m.Parent = from.ID
		if m.X == 0 && m.Y == 0 {
			m.X = from.X + topicGapX
			m.Y = from.Y + float64(len(g.Children(from.ID)))*topicGapY
		}
	}
	c.params.Model = m
	return nil
}

func (c *topicCommand) Execute(env *Env) error {
	g := env.Graph
	if err := g.AddNode(c.params.Model); err != nil {
		return err
	}
	setSelected(g, c.params.Model.ID)
	g.Emit(domain.Event{Type: domain.EventLabelStateChange, ItemID: c.params.Model.ID, ItemType: domain.ItemTypeNode})
	return nil
}

func (c *topicCommand) Undo(env *Env) error {
	return removeExisting(env.Graph, c.params.Model.ID)
}
