// Package naming holds the naming conventions shared by fields, filters and
// resources: label slugging, relation names, foreign-key markers and resource
// registry keys.
package naming

import (
	"strings"

	"github.com/ettle/strcase"
	"github.com/go-openapi/inflect"
)

// ForeignKeySuffix marks a belongs-to column.
const ForeignKeySuffix = "_id"

// ResourceSuffix is appended to a singular relation name before kebab-casing
// it into a registry key.
const ResourceSuffix = "Resource"

// Camel converts the input into lowerCamelCase.
func Camel(s string) string {
	return strcase.ToCamel(strings.TrimSpace(s))
}

// Snake converts the input into snake_case.
func Snake(s string) string {
	return strcase.ToSnake(strings.TrimSpace(s))
}

// Kebab converts the input into kebab-case.
func Kebab(s string) string {
	return strcase.ToKebab(strings.TrimSpace(s))
}

// Slug lower-cases and hyphenates a human label ("Only Active" -> "only-active").
func Slug(label string) string {
	return Kebab(strings.ToLower(label))
}

// FieldFromLabel derives a column name from a display label.
func FieldFromLabel(label string) string {
	return Snake(strings.ToLower(label))
}

// HasForeignKey reports whether name already carries the foreign-key marker.
func HasForeignKey(name string) bool {
	return strings.HasSuffix(name, ForeignKeySuffix)
}

// WithForeignKey appends the marker and snake-cases the result.
// "author" -> "author_id", "blogAuthor" -> "blog_author_id".
func WithForeignKey(name string) string {
	if HasForeignKey(name) {
		return name
	}
	return Snake(name + ForeignKeySuffix)
}

// RelationName strips the foreign-key marker and camel-cases the remainder.
// "blog_author_id" -> "blogAuthor"; names without the marker are returned as-is.
func RelationName(name string) string {
	if !HasForeignKey(name) {
		return name
	}
	return Camel(strings.TrimSuffix(name, ForeignKeySuffix))
}

// ResourceKey derives the registry key for a relation: singular form, the
// resource suffix, kebab-cased. "comments" -> "comment-resource".
func ResourceKey(relation string) string {
	relation = strings.TrimSpace(relation)
	if relation == "" {
		return ""
	}
	return Kebab(inflect.Singularize(relation) + ResourceSuffix)
}

// Table derives a plural snake_case table name from a model name.
func Table(model string) string {
	base := strings.TrimSuffix(strcase.ToPascal(strings.TrimSpace(model)), ResourceSuffix)
	if base == "" {
		return ""
	}
	return Snake(inflect.Pluralize(base))
}

// Label converts a field name into a human-friendly label, splitting on
// underscores, dashes and camelCase boundaries ("publishedAt" -> "Published At").
func Label(name string) string {
	return strcase.ToCase(strings.TrimSpace(name), strcase.TitleCase, ' ')
}

// Ucfirst upper-cases the first byte of s.
func Ucfirst(s string) string {
	if s == "" {
		return ""
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
