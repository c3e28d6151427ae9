package parser

import (
	"encoding/base64"
	"errors"
	"strings"
	"unicode/utf8"
)

// DecodeBase64 decodes standard or URL-safe base64 (or a mix of both),
// fixing missing padding first. The result must be valid UTF-8.
func DecodeBase64(s string) (string, error) {
	s = strings.NewReplacer("-", "+", "_", "/").Replace(s)
	b, err := base64.StdEncoding.DecodeString(padBase64(s))
	if err != nil {
		return "", err
	}
	if !utf8.Valid(b) {
		return "", errNotUTF8
	}
	return string(b), nil
}

var errNotUTF8 = errors.New("decoded payload is not valid UTF-8")

func padBase64(s string) string {
	if n := len(s) % 4; n != 0 {
		s += strings.Repeat("=", 4-n)
	}
	return s
}

// FixIllegalUrl cleans up whitespace commonly found around scraped links.
func FixIllegalUrl(s string) string {
	s = strings.TrimSpace(s)
	s = strings.ReplaceAll(s, "\r", "")
	s = strings.ReplaceAll(s, "\n", "")
	return s
}

// Quote percent-encodes every byte except ASCII letters, digits, "_.-~" and "/".
// Tags are written into fragments with it, so "@new" becomes "%40new".
func Quote(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if isUnreserved(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func isUnreserved(c byte) bool {
	switch {
	case 'a' <= c && c <= 'z', 'A' <= c && c <= 'Z', '0' <= c && c <= '9':
		return true
	case c == '_', c == '.', c == '-', c == '~', c == '/':
		return true
	}
	return false
}

// Unquote percent-decodes s. Malformed escapes are kept literally.
func Unquote(s string) string {
	return unescape(s, false)
}

// queryValues parses a raw query into a multi-map and resolves every key to
// its last non-empty value. Pairs are split on '&' only; keys with only blank
// values are dropped.
func queryValues(raw string) map[string]string {
	out := make(map[string]string)
	for _, pair := range strings.Split(raw, "&") {
		k, v, ok := strings.Cut(pair, "=")
		if !ok || v == "" {
			continue
		}
		out[unescape(k, true)] = unescape(v, true)
	}
	return out
}

// unescape decodes %XX sequences and, in query mode, '+' as a space.
// Anything that is not a valid escape is copied through unchanged.
func unescape(s string, query bool) string {
	if !strings.ContainsAny(s, "%+") {
		return s
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(unhex(s[i+1])<<4 | unhex(s[i+2]))
			i += 2
		case c == '+' && query:
			b.WriteByte(' ')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

func isHex(c byte) bool {
	return '0' <= c && c <= '9' || 'a' <= c && c <= 'f' || 'A' <= c && c <= 'F'
}

func unhex(c byte) byte {
	switch {
	case c >= 'a':
		return c - 'a' + 10
	case c >= 'A':
		return c - 'A' + 10
	}
	return c - '0'
}

func valueOr(m map[string]string, key, fallback string) string {
	if v, ok := m[key]; ok {
		return v
	}
	return fallback
}

// truncate keeps at most n characters (runes) of s.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	r := []rune(s)
	return string(r[:n])
}
