// Package context carries request-scoped values (trace ID, verified claims)
// through the middleware chain without leaking context keys to other packages.
package context

type contextKey string
