// Package openapi builds resources from the component schemas of an OpenAPI 3
// document. Property types choose field kinds; the x-relationships extension
// declares relations.
package openapi
