package prize

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeHandle(t *testing.T) {
	cases := map[string]string{
		"@Foo ":        "foo",
		"foo":          "foo",
		"FOO":          "foo",
		"  @@bar_baz ": "bar_baz",
		"@ spaced":     "spaced",
		"   ":          "",
		"@":            "",
		"":             "",
	}
	for in, want := range cases {
		assert.Equal(t, want, NormalizeHandle(in), "input %q", in)
	}
}

func TestNormalizeHandleIsIdempotent(t *testing.T) {
	for _, in := range []string{"@Foo ", "  @ Mixed.Case ", "plain", "@@x", " @ @y"} {
		once := NormalizeHandle(in)
		assert.Equal(t, once, NormalizeHandle(once), "input %q", in)
	}
}

func TestDrawRequestRawHandle(t *testing.T) {
	assert.Equal(t, "a", DrawRequest{Handle: "a", Instagram: "b"}.RawHandle())
	assert.Equal(t, "b", DrawRequest{Instagram: "b"}.RawHandle())
}
