package parser

import (
	"fmt"
	"sort"
)

// Codec decodes one protocol's share-link and re-encodes it with a new tag.
type Codec interface {
	Protocol() Protocol
	Decode(line, tag string) (*Record, error)
}

var registry = make(map[Protocol]Codec)

// Register makes a codec available to Parse. Codecs register themselves at init.
func Register(c Codec) {
	registry[c.Protocol()] = c
}

// Lookup returns the codec registered for p.
func Lookup(p Protocol) (Codec, error) {
	c, ok := registry[p]
	if !ok {
		return nil, fmt.Errorf("no codec registered for %s", p)
	}
	return c, nil
}

// Protocols lists the protocols that have a registered codec.
func Protocols() []Protocol {
	out := make([]Protocol, 0, len(registry))
	for p := range registry {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Parse classifies line and hands it to the matching codec.
// Every failure is a *DecodeError.
func Parse(line, tag string) (*Record, error) {
	line = FixIllegalUrl(line)

	proto, err := Classify(line)
	if err != nil {
		return nil, err
	}
	c, ok := registry[proto]
	if !ok {
		return nil, newError(UnrecognizedProtocol, proto, nil)
	}
	return c.Decode(line, tag)
}
