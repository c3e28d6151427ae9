package parser

import (
	"bufio"
	"regexp"
	"strings"

	"github.com/go-faster/jx"
)

var regexLink = regexp.MustCompile(`(?i)\b(?:(?:vmess|vless|trojan|ss)://|tg://proxy\?|https://t\.me/proxy\?)[^\s"'<>]+`)

// FindLinks scans free text (chat messages, web pages) for share-links.
func FindLinks(text string) []string {
	var links []string
	text = strings.ReplaceAll(text, "\r\n", "\n")
	scanner := bufio.NewScanner(strings.NewReader(text))
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		for _, match := range regexLink.FindAllString(line, -1) {
			clean := strings.TrimRight(match, ".,;)\"")
			if clean != "" {
				links = append(links, clean)
			}
		}
	}
	return Deduplicate(links)
}

// SplitLines returns the trimmed, non-empty lines of text. Every line is kept,
// recognised or not, so unsupported entries still show up as failures.
func SplitLines(text string) []string {
	var lines []string
	for _, line := range strings.Split(text, "\n") {
		if line = strings.TrimSpace(line); line != "" {
			lines = append(lines, line)
		}
	}
	return lines
}

// ExtractFromJSON walks a JSON document in document order and collects
// every string value that starts with a supported share-link prefix.
func ExtractFromJSON(data []byte) ([]string, error) {
	var links []string
	if err := walkJSON(jx.DecodeBytes(data), &links); err != nil {
		return nil, err
	}
	return links, nil
}

func walkJSON(d *jx.Decoder, links *[]string) error {
	switch d.Next() {
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return err
		}
		if HasKnownPrefix(s) {
			*links = append(*links, s)
		}
		return nil
	case jx.Array:
		return d.Arr(func(d *jx.Decoder) error { return walkJSON(d, links) })
	case jx.Object:
		return d.Obj(func(d *jx.Decoder, _ string) error { return walkJSON(d, links) })
	default:
		return d.Skip()
	}
}

// Deduplicate drops repeated entries, keeping the first occurrence order.
func Deduplicate(input []string) []string {
	seen := make(map[string]struct{}, len(input))
	list := make([]string, 0, len(input))
	for _, entry := range input {
		if _, ok := seen[entry]; ok {
			continue
		}
		seen[entry] = struct{}{}
		list = append(list, entry)
	}
	return list
}
