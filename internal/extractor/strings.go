package extractor

import (
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// unescapeJS decodes the body of a JS string or template literal.
// Unknown escapes yield the escaped character itself.
func unescapeJS(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		i++
		switch e := s[i]; e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'b':
			b.WriteByte('\b')
		case 'f':
			b.WriteByte('\f')
		case 'v':
			b.WriteByte('\v')
		case '0':
			b.WriteByte(0)
		case '\r':
			// line continuation, \r\n included
			if i+1 < len(s) && s[i+1] == '\n' {
				i++
			}
		case '\n':
		case 'x':
			if r, n, ok := hexRune(s[i+1:], 2); ok && n == 2 {
				b.WriteRune(r)
				i += n
			} else {
				b.WriteByte(e)
			}
		case 'u':
			if r, n, ok := unicodeEscape(s[i+1:]); ok {
				i += n
				if utf16.IsSurrogate(r) && strings.HasPrefix(s[i+1:], "\\u") {
					if r2, n2, ok := unicodeEscape(s[i+3:]); ok {
						if pair := utf16.DecodeRune(r, r2); pair != utf8.RuneError {
							r = pair
							i += 2 + n2
						}
					}
				}
				b.WriteRune(r)
			} else {
				b.WriteByte(e)
			}
		default:
			b.WriteByte(e)
		}
	}
	return b.String()
}

// unescapePHPSingle decodes a single-quoted PHP string: only \\ and \'.
func unescapePHPSingle(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' && i+1 < len(s) && (s[i+1] == '\\' || s[i+1] == '\'') {
			i++
		}
		b.WriteByte(s[i])
	}
	return b.String()
}

// unescapePHPDouble decodes a double-quoted PHP string. Unknown escapes keep
// their backslash.
func unescapePHPDouble(s string) string {
	if !strings.ContainsRune(s, '\\') {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if c != '\\' || i+1 == len(s) {
			b.WriteByte(c)
			continue
		}
		e := s[i+1]
		switch e {
		case 'n':
			b.WriteByte('\n')
		case 't':
			b.WriteByte('\t')
		case 'r':
			b.WriteByte('\r')
		case 'v':
			b.WriteByte('\v')
		case 'e':
			b.WriteByte(0x1b)
		case 'f':
			b.WriteByte('\f')
		case '\\', '$', '"':
			b.WriteByte(e)
		case 'x':
			if r, n, ok := hexRune(s[i+2:], 2); ok && n > 0 {
				b.WriteByte(byte(r))
				i += 1 + n
				continue
			}
			b.WriteByte('\\')
			continue
		case 'u':
			if r, n, ok := unicodeEscape(s[i+2:]); ok && strings.HasPrefix(s[i+2:], "{") {
				b.WriteRune(r)
				i += 1 + n
				continue
			}
			b.WriteByte('\\')
			continue
		default:
			if e >= '0' && e <= '7' {
				n := 1
				for n < 3 && i+1+n < len(s) && s[i+1+n] >= '0' && s[i+1+n] <= '7' {
					n++
				}
				v, _ := strconv.ParseUint(s[i+1:i+1+n], 8, 16)
				b.WriteByte(byte(v))
				i += n
				continue
			}
			b.WriteByte('\\')
			continue
		}
		i++
	}
	return b.String()
}

// hexRune reads up to max hex digits. PHP accepts one or two, JS exactly two.
func hexRune(s string, max int) (rune, int, bool) {
	n := 0
	for n < max && n < len(s) && isHex(s[n]) {
		n++
	}
	if n == 0 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:n], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), n, true
}

// unicodeEscape reads XXXX or {X...} after a \u.
func unicodeEscape(s string) (rune, int, bool) {
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, false
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, 0, false
		}
		return rune(v), end + 1, true
	}
	if len(s) < 4 {
		return 0, 0, false
	}
	v, err := strconv.ParseUint(s[:4], 16, 32)
	if err != nil {
		return 0, 0, false
	}
	return rune(v), 4, true
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
