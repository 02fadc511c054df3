/*
Package easel is the headless core of an interactive diagram editor: a command engine with undo/redo history, the pointer gestures that draw and re-point edges, and the topology rules that decide which connections are allowed.

# Concept

An Editor is one editing session over one document. Everything that changes the document goes through a named command, so every change can be undone, redone, refused, observed and replayed. The graph itself sits behind the ports.Graph facade; the in-memory arena in pkg/adapters/memory is the default surface, and a host can inject its own with WithSurface.

# Key Features

  - Command History: a linear queue with a cursor. Executing after an undo drops the redo tail.
  - Silent Guards: a refused command leaves the graph untouched and reports a typed reason.
  - Edge Gestures: drafts live on the graph only while the pointer is down; a valid release becomes exactly one command.
  - Link Rules: per node kind degree limits, self loops, duplicate and transitive checks.

# Usage

	package main

	import (
		"context"
		"log"

		"github.com/aretw0/easel"
		"github.com/aretw0/easel/pkg/command"
		"github.com/aretw0/easel/pkg/domain"
	)

	func main() {
		ed, err := easel.New(easel.WithLinkRules(domain.LinkRules{"start": {Out: 1}}))
		if err != nil {
			log.Fatal(err)
		}

		ctx := context.Background()
		err = ed.Execute(ctx, command.Add, map[string]any{
			"node": domain.NodeModel{ID: "a", Kind: "start", Label: "Start"},
		})
		if err != nil {
			log.Fatal(err)
		}

		// Changed our mind.
		if err := ed.Undo(ctx); err != nil {
			log.Fatal(err)
		}
	}
*/
package easel
