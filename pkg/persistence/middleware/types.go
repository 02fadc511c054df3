// Package middleware wraps document stores with cross-cutting persistence
// behaviour such as encryption at rest and redaction of sensitive props.
package middleware

import "github.com/aretw0/easel/pkg/ports"

// Middleware allows wrapping a DocumentStore to add behavior.
type Middleware func(ports.DocumentStore) ports.DocumentStore

// Chain applies mws so that the first one sees calls first.
func Chain(store ports.DocumentStore, mws ...Middleware) ports.DocumentStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
