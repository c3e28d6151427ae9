package parser

import (
	"fmt"
	"strings"
)

type telegramCodec struct{}

func (telegramCodec) Protocol() Protocol { return Telegram }

// Decode extracts server/port/secret from an MTProto proxy link. Telegram
// links are passed through untouched: their name only lives in the fragment.
func (telegramCodec) Decode(line, tag string) (*Record, error) {
	rest, fragment, _ := strings.Cut(line, "#")
	_, rawQuery, _ := strings.Cut(rest, "?")
	q := queryValues(rawQuery)

	var missing []string
	for _, key := range []string{"server", "port", "secret"} {
		if _, ok := q[key]; !ok {
			missing = append(missing, key)
		}
	}
	if len(missing) > 0 {
		return nil, newError(IncompleteTelegramLink, Telegram, fmt.Errorf("missing %s", strings.Join(missing, ", ")))
	}

	name := q["server"]
	if fragment != "" {
		name = Unquote(fragment)
	}

	return &Record{
		Protocol:     Telegram,
		Line:         line,
		Host:         q["server"],
		Port:         q["port"],
		OriginalName: name,
		ModifiedLink: line,
		Telegram: &TelegramProxy{
			Server: q["server"],
			Port:   q["port"],
			Secret: q["secret"],
		},
	}, nil
}

func init() {
	Register(telegramCodec{})
}
