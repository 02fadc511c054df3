/*
Package dsl provides a fluent Go builder for easel documents.

It is an alternative to YAML or JSON files for fixtures, tests and generated
diagrams. Edges are declared from their source node; Build checks that every
target exists.

Example usage:

	b := dsl.New("approval", domain.KindFlow)

	b.Add("start").Label("Request").Start().Go("review")
	b.Add("review").Label("Review").At(200, 0).Go("route")
	b.Add("route").Transitive().At(400, 0).Branch("approved", "done")
	b.Add("done").At(600, 0)

	doc, err := b.Build()
	// ... pass doc to Editor.Load or a DocumentStore
*/
package dsl
