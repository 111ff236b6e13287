// Package orchestrator wires the resource registry, value resolver,
// visibility checker and component registry into JSON-serialisable views for
// forms, detail pages and index listings, and collects persistence payloads
// from submitted requests.
package orchestrator
