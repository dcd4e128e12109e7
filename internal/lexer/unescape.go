package lexer

import (
	"errors"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Unescape decodes the backslash escapes of a string literal body. Unknown
// escapes stand for the escaped character itself; an escaped newline is a
// line continuation and produces nothing.
func Unescape(raw string) (string, error) {
	if !strings.ContainsRune(raw, '\\') {
		return raw, nil
	}

	var out strings.Builder
	out.Grow(len(raw))

	for i := 0; i < len(raw); {
		c := raw[i]
		if c != '\\' {
			out.WriteByte(c)
			i++
			continue
		}
		i++
		if i >= len(raw) {
			out.WriteByte('\\')
			break
		}
		switch raw[i] {
		case 'n':
			out.WriteByte('\n')
		case 't':
			out.WriteByte('\t')
		case 'r':
			out.WriteByte('\r')
		case 'b':
			out.WriteByte('\b')
		case 'f':
			out.WriteByte('\f')
		case 'v':
			out.WriteByte('\v')
		case '0':
			out.WriteByte(0)
		case '\n':
			// line continuation
		case '\r':
			if i+1 < len(raw) && raw[i+1] == '\n' {
				i++
			}
		case 'x':
			r, n, err := readHex(raw[i+1:], 2)
			if err != nil {
				return "", errors.New("invalid hexadecimal escape sequence")
			}
			out.WriteRune(r)
			i += n
		case 'u':
			r, n, err := readUnicode(raw[i+1:])
			if err != nil {
				return "", err
			}
			out.WriteRune(r)
			i += n
		default:
			r, size := utf8.DecodeRuneInString(raw[i:])
			out.WriteRune(r)
			i += size
			continue
		}
		i++
	}
	return out.String(), nil
}

func readHex(s string, digits int) (rune, int, error) {
	if len(s) < digits {
		return 0, 0, errors.New("short escape")
	}
	v, err := strconv.ParseUint(s[:digits], 16, 32)
	if err != nil {
		return 0, 0, err
	}
	return rune(v), digits, nil
}

// readUnicode handles both \uXXXX and \u{X...}; n counts the bytes consumed
// after the 'u'.
func readUnicode(s string) (rune, int, error) {
	invalid := errors.New("invalid Unicode escape sequence")
	if strings.HasPrefix(s, "{") {
		end := strings.IndexByte(s, '}')
		if end < 2 {
			return 0, 0, invalid
		}
		v, err := strconv.ParseUint(s[1:end], 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0, invalid
		}
		return rune(v), end + 1, nil
	}
	r, n, err := readHex(s, 4)
	if err != nil {
		return 0, 0, invalid
	}
	return r, n, nil
}
