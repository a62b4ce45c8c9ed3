package script

// The tokenizer is a cursor over an immutable line: every function takes a
// *string, consumes from its front and leaves the cursor on the first
// character of the next token. Tokens are terminated by a blank, ',', ';'
// or the end of the line; one level of double quoting protects terminator
// characters inside a token.

func isBlank(c byte) bool {
	return c == ' ' || c == '\t'
}

func skipBlank(s string) string {
	i := 0
	for i < len(s) && isBlank(s[i]) {
		i++
	}
	return s[i:]
}

// nextToken returns the next properly terminated token and advances the
// cursor past the terminator and any following blanks. It reports false
// when no terminated token can be found (e.g. an unterminated quote at the
// end of the line).
func nextToken(cursor *string) (string, bool) {
	s := *cursor
	begin, end := -1, -1
	openQuote := false

	for i := 0; i < len(s); i++ {
		c := s[i]
		if begin < 0 {
			if isBlank(c) {
				continue
			}
			if c == '"' {
				begin = i + 1
			} else {
				begin = i
			}
		}
		if c == '"' {
			openQuote = !openQuote
		}
		if openQuote {
			continue
		}
		if isBlank(c) || c == ',' || c == ';' || c == '"' {
			end = i
		} else if i+1 == len(s) {
			end = i + 1
		}
		if begin >= 0 && end >= 0 {
			break
		}
	}

	if end < 0 {
		return "", false
	}

	token := s[begin:end]
	p := end

	// skip the closing quote
	if p < len(s) && s[p] == '"' {
		p++
	}

	terminated := false

	// terminated by a blank (possibly before a ',' or ';')
	if p < len(s) && isBlank(s[p]) {
		for p < len(s) && isBlank(s[p]) {
			p++
		}
		terminated = true
	}

	// terminated by ',' or ';'
	if p < len(s) && (s[p] == ',' || s[p] == ';') {
		p++
		terminated = true
	} else if p == len(s) {
		// terminated by end of line
		terminated = true
	}

	if !terminated {
		return "", false
	}

	// land on the next token's first character
	for p < len(s) && isBlank(s[p]) {
		p++
	}

	*cursor = s[p:]
	return token, true
}

// isDefaultValue recognizes the "use default" sentinel in its three
// spellings: "-<term>", "- <anything>" and "<blank-or-end>". On a match the
// cursor is advanced past the sentinel.
func isDefaultValue(cursor *string) bool {
	p := skipBlank(*cursor)
	blank := false

	if len(p) > 0 && p[0] == '-' {
		x := p[1:]
		p = skipBlank(x)
		blank = len(p) < len(x) // "- "
	}

	if len(p) > 0 && (p[0] == ';' || p[0] == ',') {
		*cursor = p[1:]
		return true
	}
	if len(p) == 0 || blank {
		*cursor = p
		return true
	}

	return false
}

// skipOptionalSign consumes a leading '+' or '-' from the token and
// returns it, or 0 when no sign is present.
func skipOptionalSign(tk *string) byte {
	p := skipBlank(*tk)
	if len(p) > 0 && (p[0] == '-' || p[0] == '+') {
		*tk = p[1:]
		return p[0]
	}
	return 0
}
