package script

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNextToken(t *testing.T) {
	cases := []struct {
		line  string
		token string
		rest  string
	}{
		{"2048", "2048", ""},
		{"2048, size=100", "2048", "size=100"},
		{"  2048 , next", "2048", "next"},
		{"2048; next", "2048", "next"},
		{`"My Disk", size=100`, "My Disk", "size=100"},
		{`"a,b;c" rest`, "a,b;c", "rest"},
		{"L,*", "L", "*"},
		{"*", "*", ""},
	}

	for _, c := range cases {
		cursor := c.line
		token, ok := nextToken(&cursor)
		assert.Truef(t, ok, "%q should tokenize", c.line)
		assert.Equalf(t, c.token, token, "%q token", c.line)
		assert.Equalf(t, c.rest, cursor, "%q remainder", c.line)
	}
}

func TestNextTokenUnterminated(t *testing.T) {
	for _, line := range []string{"", "   ", `"no closing quote`} {
		cursor := line
		_, ok := nextToken(&cursor)
		assert.Falsef(t, ok, "%q should not yield a token", line)
	}
}

func TestIsDefaultValue(t *testing.T) {
	cases := []struct {
		line string
		def  bool
		rest string
	}{
		{"", true, ""},
		{"   ", true, ""},
		{"-", true, ""},
		{"-,rest", true, "rest"},
		{"- anything at all", true, "anything at all"},
		{",rest", true, "rest"},
		{";rest", true, "rest"},
		{"2048", false, "2048"},
		{"-100", false, "-100"},
		{"+", false, "+"},
	}

	for _, c := range cases {
		cursor := c.line
		got := isDefaultValue(&cursor)
		assert.Equalf(t, c.def, got, "%q default detection", c.line)
		if c.def {
			assert.Equalf(t, c.rest, cursor, "%q remainder", c.line)
		}
	}
}

func TestSkipOptionalSign(t *testing.T) {
	tk := "-100"
	assert.Equal(t, byte('-'), skipOptionalSign(&tk))
	assert.Equal(t, "100", tk)

	tk = "+2G"
	assert.Equal(t, byte('+'), skipOptionalSign(&tk))
	assert.Equal(t, "2G", tk)

	tk = "100"
	assert.Equal(t, byte(0), skipOptionalSign(&tk))
	assert.Equal(t, "100", tk)
}

func TestIsHeaderLine(t *testing.T) {
	cases := []struct {
		line   string
		header bool
	}{
		{"label: gpt", true},
		{"weird: value", true},
		{"label-id: 0x1234", true},
		{"label:gpt", true},
		{": value", false},
		{"label:", false},
		{"no colon here", false},
		// a '=' anywhere makes it a nameval line, even with a device prefix
		{"/dev/sda1 : start=2048", false},
		{"type=5:partition", false},
	}

	for _, c := range cases {
		assert.Equalf(t, c.header, isHeaderLine(c.line), "%q classification", c.line)
	}
}

func TestUnhexmangle(t *testing.T) {
	assert.Equal(t, "hello world", unhexmangle(`hello\x20world`))
	assert.Equal(t, `quote:"`, unhexmangle(`quote:\x22`))
	assert.Equal(t, "plain", unhexmangle("plain"))
	// invalid escapes are kept as-is
	assert.Equal(t, `bad\xzz`, unhexmangle(`bad\xzz`))
	assert.Equal(t, `tail\x2`, unhexmangle(`tail\x2`))
}

func TestQuoted(t *testing.T) {
	assert.Equal(t, `"My Disk"`, quoted("My Disk"))
	assert.Equal(t, `"a\x22b"`, quoted(`a"b`))
	assert.Equal(t, `"tab\x09end"`, quoted("tab\tend"))
	assert.Equal(t, "My Disk", unhexmangle(quoted("My Disk")[1:8]))
}
