// Package cache provides session-lifetime candle series stores.
package cache

import (
	"fmt"
	"strings"

	"candle_gateway/internal/feature/candles/domain/entity"
)

// DefaultNamespace is the key prefix used when no namespace is configured.
const DefaultNamespace = "candles"

// KeyString composes the store key for a series. The composition is
// deterministic and injective: every field participates, fields are joined
// by a separator that cannot appear in an escaped field, and the escape is
// reversible.
func KeyString(namespace string, k entity.SeriesKey) string {
	return fmt.Sprintf("%s:%s:%s:%s:%s:%s:%s",
		namespace,
		safe(k.Exchange),
		safe(k.Interval),
		safe(k.Type),
		safe(k.Symbol),
		safe(k.Start),
		safe(k.End),
	)
}

// keyEscaper escapes the separator and whitespace without introducing
// collisions: literal underscores are doubled, so every escaped field
// decodes to exactly one input.
var keyEscaper = strings.NewReplacer("_", "__", ":", "_c", " ", "_s")

// safe escapes characters that would make the composed key ambiguous.
func safe(s string) string {
	return keyEscaper.Replace(s)
}
