package domain

import "sync"

// Clipboard holds node models copied within one editor session.
type Clipboard struct {
	mu    sync.Mutex
	nodes []NodeModel
}

// Set replaces the clipboard content with deep copies of nodes.
func (c *Clipboard) Set(nodes []NodeModel) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.nodes = cloneNodes(nodes)
}

// Nodes returns deep copies of the clipboard content.
func (c *Clipboard) Nodes() []NodeModel {
	c.mu.Lock()
	defer c.mu.Unlock()
	return cloneNodes(c.nodes)
}

// Len returns the number of copied nodes.
func (c *Clipboard) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.nodes)
}

func cloneNodes(nodes []NodeModel) []NodeModel {
	out := make([]NodeModel, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}
