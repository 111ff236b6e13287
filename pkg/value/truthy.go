package value

import (
	"reflect"
	"strings"

	"github.com/spf13/cast"
)

// Truthy reports whether v counts as "on": nil, false, "", "0", zero numbers
// and empty collections are falsy. Any other string is truthy, "false"
// included.
func Truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case string:
		return truthyString(t)
	case []byte:
		return truthyString(string(t))
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool()
	case reflect.String:
		return truthyString(rv.String())
	case reflect.Slice, reflect.Map, reflect.Array:
		return rv.Len() > 0
	case reflect.Pointer, reflect.Interface:
		return !rv.IsNil()
	}
	if n, err := cast.ToFloat64E(v); err == nil {
		return n != 0
	}
	return true
}

func truthyString(s string) bool {
	s = strings.TrimSpace(s)
	return s != "" && s != "0"
}
