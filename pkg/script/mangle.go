package script

import (
	"fmt"
	"strings"
)

// unhexmangle decodes \xHH escape sequences. Invalid escapes are kept
// literally, matching the permissive dump grammar.
func unhexmangle(s string) string {
	if !strings.Contains(s, `\x`) {
		return s
	}

	var sb strings.Builder
	sb.Grow(len(s))
	for i := 0; i < len(s); {
		if s[i] == '\\' && i+3 < len(s) && s[i+1] == 'x' {
			hi, okHi := unhex(s[i+2])
			lo, okLo := unhex(s[i+3])
			if okHi && okLo {
				sb.WriteByte(hi<<4 | lo)
				i += 4
				continue
			}
		}
		sb.WriteByte(s[i])
		i++
	}
	return sb.String()
}

func unhex(c byte) (byte, bool) {
	switch {
	case c >= '0' && c <= '9':
		return c - '0', true
	case c >= 'a' && c <= 'f':
		return c - 'a' + 10, true
	case c >= 'A' && c <= 'F':
		return c - 'A' + 10, true
	}
	return 0, false
}

// quoted renders s wrapped in double quotes with quote characters and
// non-printable bytes \x-escaped, the inverse of unhexmangle.
func quoted(s string) string {
	var sb strings.Builder
	sb.Grow(len(s) + 2)
	sb.WriteByte('"')
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c == '"' || c == '\\' || c < 0x20 {
			fmt.Fprintf(&sb, `\x%02x`, c)
			continue
		}
		sb.WriteByte(c)
	}
	sb.WriteByte('"')
	return sb.String()
}
