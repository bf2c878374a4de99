// Package keycase rewrites JSON object keys between the internal camelCase
// convention and the engine wire's snake_case convention. The rewriting is
// applied to decoded JSON trees (map[string]any / []any) on every outbound
// request and inbound response; array elements are walked recursively and
// primitive values are never touched.
//
// Symbol identifiers ("eth-btc") and single-word field names ("open",
// "volume") contain neither underscores nor uppercase letters, so they pass
// through both directions unchanged even when they appear as map keys.
// Sentinel keys with a leading underscore (the engine's "__all__" convention)
// are preserved verbatim.
package keycase

import (
	"strings"
	"unicode"
)

// SnakeKeys returns a copy of v with every object key rewritten to
// snake_case.
func SnakeKeys(v any) any {
	return walk(v, ToSnake)
}

// CamelKeys returns a copy of v with every object key rewritten to
// camelCase.
func CamelKeys(v any) any {
	return walk(v, ToCamel)
}

func walk(v any, rewrite func(string) string) any {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, val := range t {
			out[rewrite(k)] = walk(val, rewrite)
		}
		return out
	case []any:
		out := make([]any, len(t))
		for i, val := range t {
			out[i] = walk(val, rewrite)
		}
		return out
	default:
		return v
	}
}

// ToSnake converts a camelCase identifier to snake_case.
func ToSnake(s string) string {
	if strings.HasPrefix(s, "_") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 2)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToCamel converts a snake_case identifier to camelCase.
func ToCamel(s string) string {
	if strings.HasPrefix(s, "_") || !strings.Contains(s, "_") {
		return s
	}
	parts := strings.Split(s, "_")
	var b strings.Builder
	b.Grow(len(s))
	b.WriteString(parts[0])
	for _, p := range parts[1:] {
		if p == "" {
			continue
		}
		b.WriteString(strings.ToUpper(p[:1]))
		b.WriteString(p[1:])
	}
	return b.String()
}
