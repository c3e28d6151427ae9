package parser

import (
	"fmt"
	"net/url"
	"regexp"
	"strconv"
	"strings"
)

var (
	uriPattern = regexp.MustCompile(`^((?i:vless|trojan))://([^@]+)@([^:?#]+):(\d+)\??([^#]*)#?(.*)$`)

	// Trojan passwords may contain characters the strict pattern rejects.
	trojanFallbackPattern = regexp.MustCompile(`^((?i:trojan))://([^@]+)@(.+)`)
)

// uriCodec covers VLESS and Trojan, which share the userinfo@host:port?query#tag shape.
type uriCodec struct {
	proto Protocol
}

func (c uriCodec) Protocol() Protocol { return c.proto }

func (c uriCodec) Decode(line, tag string) (*Record, error) {
	rec, err := c.decodeStrict(line, tag)
	if err == nil || c.proto != Trojan {
		return rec, err
	}
	return decodeTrojanFallback(line, tag)
}

func (c uriCodec) decodeStrict(line, tag string) (*Record, error) {
	idx := uriPattern.FindStringSubmatchIndex(line)
	if idx == nil || ParseProtocol(line[idx[2]:idx[3]]) != c.proto {
		return nil, newError(InvalidStructure, c.proto, fmt.Errorf("%s link does not match userinfo@host:port", strings.ToLower(c.proto.String())))
	}
	group := func(n int) string { return line[idx[2*n]:idx[2*n+1]] }
	host, port, query, fragment := group(3), group(4), group(5), group(6)
	queryEnd := idx[11]

	// Some generators emit "host:port/?type=ws"; the slash is not part of the query.
	q := queryValues(strings.TrimPrefix(query, "/?"))

	return &Record{
		Protocol:     c.proto,
		Line:         line,
		Host:         host,
		Port:         port,
		Tag:          tag,
		OriginalName: nameOrUnnamed(Unquote(fragment)),
		Details:      uriDetails(q, host),
		ModifiedLink: line[:queryEnd] + "#" + Quote(tag),
	}, nil
}

// decodeTrojanFallback isolates the password on the first "@" and parses the
// remainder with generic URI rules.
func decodeTrojanFallback(line, tag string) (*Record, error) {
	m := trojanFallbackPattern.FindStringSubmatch(line)
	if m == nil {
		return nil, newError(InvalidStructure, Trojan, fmt.Errorf("trojan link has no userinfo@ part"))
	}
	scheme, userInfo, rest := m[1], m[2], m[3]

	base, fragment := rest, ""
	if i := strings.Index(rest, "#"); i >= 0 {
		base, fragment = rest[:i], rest[i+1:]
	}

	u, err := url.Parse("trojan://" + base)
	if err != nil {
		return nil, newError(InvalidStructure, Trojan, err)
	}
	host := strings.ToLower(u.Hostname())
	if host == "" {
		return nil, newError(InvalidStructure, Trojan, fmt.Errorf("trojan link has no host"))
	}
	port := u.Port()
	if n, err := strconv.Atoi(port); err != nil || n < 0 || n > 65535 {
		return nil, newError(InvalidStructure, Trojan, fmt.Errorf("trojan link has invalid port %q", port))
	}

	return &Record{
		Protocol:     Trojan,
		Line:         line,
		Host:         host,
		Port:         port,
		Tag:          tag,
		OriginalName: nameOrUnnamed(Unquote(fragment)),
		Details:      uriDetails(queryValues(u.RawQuery), host),
		ModifiedLink: scheme + "://" + userInfo + "@" + base + "#" + Quote(tag),
	}, nil
}

func uriDetails(q map[string]string, host string) string {
	sni := valueOr(q, "sni", valueOr(q, "peer", host))
	path := valueOr(q, "path", NotAvailable)
	network := valueOr(q, "type", NotAvailable)
	return fmt.Sprintf("SNI: %s | Net: %s | Path: %s", sni, network, truncate(path, 20))
}

func init() {
	Register(uriCodec{proto: VLESS})
	Register(uriCodec{proto: Trojan})
}
