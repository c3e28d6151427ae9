package parser

import (
	"regexp"
	"strings"
)

// Protocol identifies the share-link scheme family a line belongs to.
type Protocol int

const (
	Unknown Protocol = iota
	VLESS
	VMess
	Trojan
	Shadowsocks
	Telegram
)

func (p Protocol) String() string {
	switch p {
	case VLESS:
		return "VLESS"
	case VMess:
		return "VMESS"
	case Trojan:
		return "TROJAN"
	case Shadowsocks:
		return "SHADOWSOCKS"
	case Telegram:
		return "TELEGRAM"
	default:
		return "UNKNOWN"
	}
}

// ParseProtocol maps a scheme or protocol name ("ss", "vmess", "TELEGRAM"...) to its Protocol.
func ParseProtocol(name string) Protocol {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "vless":
		return VLESS
	case "vmess":
		return VMess
	case "trojan":
		return Trojan
	case "ss", "shadowsocks":
		return Shadowsocks
	case "telegram", "tg", "mtproto":
		return Telegram
	default:
		return Unknown
	}
}

// TelegramPrefixes are matched case-insensitively before any generic scheme detection.
var TelegramPrefixes = []string{"https://t.me/proxy?", "tg://proxy?"}

// V2RayPrefixes are the share-link prefixes of the V2Ray family.
var V2RayPrefixes = []string{"vless://", "vmess://", "ss://", "trojan://"}

var schemePattern = regexp.MustCompile(`^(\w+)://`)

// Classify reports which codec a raw line belongs to.
//
// Telegram links are checked first: "https://t.me/proxy?..." is otherwise a
// perfectly valid generic URI and must never reach the V2Ray codecs.
func Classify(line string) (Protocol, error) {
	if isTelegramLink(line) {
		return Telegram, nil
	}

	m := schemePattern.FindStringSubmatch(line)
	if m == nil {
		return Unknown, newError(UnrecognizedProtocol, Unknown, nil)
	}

	switch strings.ToLower(m[1]) {
	case "vless":
		return VLESS, nil
	case "vmess":
		return VMess, nil
	case "trojan":
		return Trojan, nil
	case "ss":
		return Shadowsocks, nil
	}
	return Unknown, newError(UnrecognizedProtocol, Unknown, nil)
}

func isTelegramLink(line string) bool {
	lower := strings.ToLower(line)
	for _, prefix := range TelegramPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return false
}

// HasKnownPrefix reports whether s starts with any supported share-link prefix.
func HasKnownPrefix(s string) bool {
	lower := strings.ToLower(s)
	for _, prefix := range V2RayPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return true
		}
	}
	return isTelegramLink(s)
}

// stripScheme drops everything up to and including the first "://".
func stripScheme(line string) string {
	if idx := strings.Index(line, "://"); idx >= 0 {
		return line[idx+3:]
	}
	return line
}
