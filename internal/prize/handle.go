package prize

import (
	"strings"
	"unicode"
)

// NormalizeHandle maps every spelling of a handle ("@Foo ", "foo", "FOO") to the
// key claims are stored under.
func NormalizeHandle(raw string) string {
	h := strings.TrimLeftFunc(raw, func(r rune) bool {
		return r == '@' || unicode.IsSpace(r)
	})
	return strings.ToLower(strings.TrimRightFunc(h, unicode.IsSpace))
}
