package openapi

import (
	"strings"
	"unicode"
)

const relationshipExtensionKey = "x-relationships"

// Canonical relationship attributes.
const (
	relType       = "type"
	relTarget     = "target"
	relForeignKey = "foreignKey"
	relThrough    = "through"
	relInverse    = "inverse"
	relTitleField = "titleField"
	relMode       = "mode"
)

var relationshipKeyLookup = map[string]string{
	"type":       relType,
	"kind":       relType,
	"target":     relTarget,
	"foreignkey": relForeignKey,
	"foreignid":  relForeignKey,
	"through":    relThrough,
	"pivot":      relThrough,
	"inverse":    relInverse,
	"titlefield": relTitleField,
	"label":      relTitleField,
	"mode":       relMode,
}

// relationship is the normalised x-relationships extension.
type relationship map[string]string

// normaliseRelationship canonicalises keys ("foreign_id", "Foreign-Key") and
// keeps string values only. It returns nil when no type is declared.
func normaliseRelationship(value any) relationship {
	raw, ok := value.(map[string]any)
	if !ok || len(raw) == 0 {
		return nil
	}
	out := make(relationship, len(raw))
	for key, val := range raw {
		canonical, ok := relationshipKeyLookup[normaliseKey(key)]
		if !ok {
			continue
		}
		if s, ok := val.(string); ok && strings.TrimSpace(s) != "" {
			out[canonical] = strings.TrimSpace(s)
		}
	}
	if out[relType] == "" {
		return nil
	}
	return out
}

// kind folds the declared type ("belongs_to", "hasMany", "many-to-many").
func (r relationship) kind() string {
	switch normaliseKey(r[relType]) {
	case "belongsto":
		return "belongsTo"
	case "hasone", "onetoone":
		return "hasOne"
	case "hasmany", "onetomany":
		return "hasMany"
	case "belongstomany", "manytomany":
		return "belongsToMany"
	default:
		return ""
	}
}

// target returns the related schema name, accepting "#/components/schemas/X".
func (r relationship) target() string {
	return refName(r[relTarget])
}

func refName(ref string) string {
	ref = strings.TrimSpace(ref)
	if i := strings.LastIndex(ref, "/"); i >= 0 {
		return ref[i+1:]
	}
	return ref
}

func normaliseKey(raw string) string {
	var b strings.Builder
	b.Grow(len(raw))
	for _, r := range raw {
		if unicode.IsLetter(r) || unicode.IsNumber(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
