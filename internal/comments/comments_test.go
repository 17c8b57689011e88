package comments

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStrip(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"empty", "", ""},
		{"line comments", "a := 1 // one\n// gone\nb := 2", "a := 1 \nb := 2"},
		{"hash comments", "# header\nx = 1  # trailing\n", "x = 1"},
		{"block comments", "/* multi\n line */\nint x;\n/** doc */ int y;", "int x;\n int y;"},
		{"html comments", "<div>\n<!-- note\n more -->\n</div>", "<div>\n</div>"},
		{"only comments", "// a\n# b\n/* c */\n<!-- d -->", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Strip(tc.in))
		})
	}
}
