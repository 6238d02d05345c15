package bridge

import (
	"reflect"
	"strings"
	"unicode"
)

// FromTypeName converts a dotted, fully qualified type name into a namespace
// identifier: the package prefix is kept with underscores turned into
// hyphens, and the simple name is converted to kebab-case.
//
//	com.example.foo.NekoActivity        -> com.example.foo.neko-activity
//	com.example.foo_bar.MyHTTPActivity  -> com.example.foo-bar.my-http-activity
func FromTypeName(typeName string) string {
	pkg, simple := "", typeName
	if i := strings.LastIndexByte(typeName, '.'); i >= 0 {
		pkg, simple = typeName[:i], typeName[i+1:]
	}

	kebab := kebabCase(simple)
	if pkg == "" {
		return kebab
	}
	return strings.ReplaceAll(pkg, "_", "-") + "." + kebab
}

// kebabCase splits before an upper-case letter that follows a lower-case
// one, and before the last capital of an acronym run when a lower-case
// letter follows it (HTTPServer -> http-server).
func kebabCase(s string) string {
	runes := []rune(s)
	var sb strings.Builder
	sb.Grow(len(s) + 4)

	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			switch {
			case unicode.IsLower(prev):
				sb.WriteByte('-')
			case unicode.IsUpper(prev) && i+1 < len(runes) && unicode.IsLower(runes[i+1]):
				sb.WriteByte('-')
			}
		}
		sb.WriteRune(unicode.ToLower(r))
	}
	return sb.String()
}

// TypeNameOf returns a dotted type name for v, built from its package path
// with slashes turned into dots. Pointers are dereferenced.
func TypeNameOf(v any) string {
	t := reflect.TypeOf(v)
	for t != nil && t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t == nil {
		return ""
	}
	if t.PkgPath() == "" {
		return t.Name()
	}
	return strings.ReplaceAll(t.PkgPath(), "/", ".") + "." + t.Name()
}
