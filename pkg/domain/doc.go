/*
Package domain contains the core domain models of the easel diagram editor.

It defines the entities every other package speaks in: node and edge models,
endpoints, item states, graph modes, link rules and the document snapshot.
The package is kept pure and free of I/O or rendering concerns; the graph
facade that actually holds items is described in package ports.

# Key Entities

  - NodeModel / EdgeModel: the serializable models of diagram items. Edges reference
    nodes by id only; there are no live back-references.
  - Endpoint: either a node + anchor slot or a free point on the canvas.
  - Patch: a partial update keyed by model field name.
  - LinkRule: per node-kind degree limits consulted by the topology validator.
  - Document: a snapshot of a whole diagram, used by stores and hosts.
*/
package domain
