package parser

import (
	"errors"
	"fmt"
)

// ErrorKind classifies why a single line could not be decoded.
type ErrorKind int

const (
	UnrecognizedProtocol ErrorKind = iota + 1
	InvalidPayload
	InvalidCredentials
	UnsupportedShadowSocksForm
	InvalidStructure
	IncompleteTelegramLink
)

func (k ErrorKind) String() string {
	switch k {
	case UnrecognizedProtocol:
		return "UnrecognizedProtocol"
	case InvalidPayload:
		return "InvalidPayload"
	case InvalidCredentials:
		return "InvalidCredentials"
	case UnsupportedShadowSocksForm:
		return "UnsupportedShadowSocksForm"
	case InvalidStructure:
		return "InvalidStructure"
	case IncompleteTelegramLink:
		return "IncompleteTelegramLink"
	default:
		return fmt.Sprintf("ErrorKind(%d)", int(k))
	}
}

// DecodeError is returned by every codec. Error() is a short reason meant for
// end users; the low-level cause (if any) is only reachable through Unwrap.
type DecodeError struct {
	Kind     ErrorKind
	Protocol Protocol
	Err      error
}

func newError(kind ErrorKind, proto Protocol, cause error) *DecodeError {
	return &DecodeError{Kind: kind, Protocol: proto, Err: cause}
}

func (e *DecodeError) Error() string {
	switch e.Kind {
	case UnrecognizedProtocol:
		return "protocol not recognized"
	case InvalidPayload:
		if e.Protocol == Shadowsocks {
			return "invalid base64 SS link structure"
		}
		return fmt.Sprintf("invalid %s base64 or JSON payload", e.Protocol)
	case InvalidCredentials:
		return "invalid SS user info (expected base64 method:password)"
	case UnsupportedShadowSocksForm:
		return "unsupported or invalid SS link structure"
	case InvalidStructure:
		return fmt.Sprintf("invalid %s link structure", e.Protocol)
	case IncompleteTelegramLink:
		return "incomplete Telegram link (missing server, port or secret)"
	default:
		return "decode failed"
	}
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Is matches any *DecodeError of the same kind, so errors.Is(err, &DecodeError{Kind: k}) works.
func (e *DecodeError) Is(target error) bool {
	t, ok := target.(*DecodeError)
	if !ok {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the ErrorKind carried by err, or 0 when err is not a DecodeError.
func KindOf(err error) ErrorKind {
	var de *DecodeError
	if errors.As(err, &de) {
		return de.Kind
	}
	return 0
}
