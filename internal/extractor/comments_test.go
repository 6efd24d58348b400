package extractor

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseTranslatorComment(t *testing.T) {
	cases := []struct {
		name string
		raw  string
		want string
		ok   bool
	}{
		{"line", "// translators: Greeting", "Greeting", true},
		{"hash", "# translators: Hash style", "Hash style", true},
		{"block", "/* translators: Block */", "Block", true},
		{"doc block", "/**\n * translators: %s: name\n * of the user\n */", "%s: name of the user", true},
		{"case", "// TRANSLATORS: shout", "shout", true},
		{"extra slashes", "/// translators: triple", "triple", true},
		{"empty body", "// translators:", "", true},
		{"other", "// just a note", "", false},
		{"marker later", "// see translators: no", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := parseTranslatorComment(tc.raw)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}
