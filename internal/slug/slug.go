// Package slug строит URL-безопасные идентификаторы из имен тегов.
package slug

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// MaxLen совпадает с длиной колонки tags.slug.
const MaxLen = 50

// Make приводит строку к виду "hello-world": диакритика снимается,
// все кроме ASCII букв, цифр и '_' выбрасывается, пробелы и дефисы схлопываются в один '-'.
// Может вернуть пустую строку, если в имени не осталось допустимых символов.
func Make(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	folded, _, err := transform.String(t, s)
	if err != nil {
		folded = s
	}

	var b strings.Builder
	pendingDash := false
	for _, r := range strings.ToLower(folded) {
		switch {
		case r == '-' || unicode.IsSpace(r):
			pendingDash = b.Len() > 0
		case r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'):
			if pendingDash {
				b.WriteByte('-')
				pendingDash = false
			}
			b.WriteRune(r)
		}
	}

	out := b.String()
	if len(out) > MaxLen {
		out = out[:MaxLen]
	}
	return strings.Trim(out, "-_")
}
