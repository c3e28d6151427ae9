package parser

import (
	"encoding/base64"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ss://<userinfo>@<host>:<port>[?query][#tag]
	ssStructuredPattern = regexp.MustCompile(`^(?i:ss)://([^@#?]+)@([^:@#?]+):(\d+)(?:\?([^#]*))?(?:#(.*))?$`)
	// Anything user@host shaped is never treated as a fully encoded link.
	ssUserHostPattern = regexp.MustCompile(`^(?i:ss)://.+@.+`)
)

type shadowsocksCodec struct{}

func (shadowsocksCodec) Protocol() Protocol { return Shadowsocks }

func (c shadowsocksCodec) Decode(line, tag string) (*Record, error) {
	if m := ssStructuredPattern.FindStringSubmatch(line); m != nil {
		return c.decodeStructured(line, tag, m)
	}
	if !ssUserHostPattern.MatchString(line) {
		return c.decodeEncoded(line, tag)
	}
	return nil, newError(UnsupportedShadowSocksForm, Shadowsocks, nil)
}

// decodeStructured handles SIP002: base64 credentials in the userinfo part.
func (shadowsocksCodec) decodeStructured(line, tag string, m []string) (*Record, error) {
	userInfo, host, port, query, fragment := m[1], m[2], m[3], m[4], m[5]

	decoded, err := DecodeBase64(Unquote(userInfo))
	if err != nil {
		return nil, newError(InvalidCredentials, Shadowsocks, fmt.Errorf("ss userinfo base64 error: %w", err))
	}
	method, _, ok := strings.Cut(decoded, ":")
	if !ok {
		return nil, newError(InvalidCredentials, Shadowsocks, errors.New("ss userinfo has no method:password separator"))
	}

	details := "Method: " + method
	if query != "" {
		details += " | Plugin: " + truncate(query, 30)
	}

	base, _, _ := strings.Cut(line, "#")
	return &Record{
		Protocol:     Shadowsocks,
		Line:         line,
		Host:         host,
		Port:         port,
		Tag:          tag,
		OriginalName: nameOrUnnamed(Unquote(fragment)),
		Details:      details,
		ModifiedLink: base + "#" + Quote(tag),
	}, nil
}

// decodeEncoded handles the legacy form where method:password@host:port is
// base64 encoded as a whole. The modified link is emitted in SIP002 form.
func (shadowsocksCodec) decodeEncoded(line, tag string) (*Record, error) {
	content := stripScheme(line)

	name := Unnamed
	if idx := strings.LastIndex(content, "#"); idx >= 0 {
		name = nameOrUnnamed(Unquote(content[idx+1:]))
		content = content[:idx]
	}

	fail := func(cause error) (*Record, error) {
		return nil, newError(InvalidPayload, Shadowsocks, cause)
	}

	decoded, err := DecodeBase64(content)
	if err != nil {
		return fail(fmt.Errorf("ss base64 error: %w", err))
	}

	at := strings.LastIndex(decoded, "@")
	if at < 0 {
		return fail(errors.New("ss payload has no @ separator"))
	}
	creds, hostPort := decoded[:at], decoded[at+1:]

	method, password, ok := strings.Cut(creds, ":")
	if !ok {
		return fail(errors.New("ss payload has no method:password separator"))
	}
	host, port, ok := strings.Cut(hostPort, ":")
	if !ok {
		return fail(errors.New("ss payload has no host:port separator"))
	}

	userInfo := base64.RawURLEncoding.EncodeToString([]byte(method + ":" + password))
	return &Record{
		Protocol:     Shadowsocks,
		Line:         line,
		Host:         host,
		Port:         port,
		Tag:          tag,
		OriginalName: name,
		Details:      "Method: " + method,
		ModifiedLink: fmt.Sprintf("ss://%s@%s:%s#%s", userInfo, host, port, Quote(tag)),
	}, nil
}

func init() {
	Register(shadowsocksCodec{})
}
