// Package model defines the collaborators the field engine consumes: a Model
// exposing attributes and loaded relations, and a Request exposing submitted
// and previously submitted input addressed by dotted paths ("author.email",
// "comments.0.body", "filters.is_not_empty_title"). Record and FormRequest are
// map-backed implementations suitable for adapters, the CLI and tests; ORM
// integrations implement the interfaces directly.
package model
