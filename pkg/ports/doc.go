/*
Package ports defines the driven ports (interfaces) of the easel editor core.

These interfaces decouple the command engine and the gesture controllers from
the surface that holds the diagram and from the storage backends.

# Key Interfaces

  - Graph: the graph facade (item CRUD, selection, event bus, viewport, painting).
  - DocumentStore: persists document snapshots.
  - DistributedLocker: serializes document access across several hosts.
*/
package ports
