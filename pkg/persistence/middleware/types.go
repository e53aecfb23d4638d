// Package middleware decorates answer stores with at-rest protections.
package middleware

import "github.com/aretw0/questionnaire/pkg/ports"

// Middleware allows wrapping an AnswerStore to add behavior.
type Middleware func(ports.AnswerStore) ports.AnswerStore

// Chain applies middlewares so the first one listed is the outermost.
func Chain(store ports.AnswerStore, mws ...Middleware) ports.AnswerStore {
	for i := len(mws) - 1; i >= 0; i-- {
		store = mws[i](store)
	}
	return store
}
