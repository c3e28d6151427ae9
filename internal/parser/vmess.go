package parser

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/go-faster/jx"
)

type vmessCodec struct{}

func (vmessCodec) Protocol() Protocol { return VMess }

// Decode handles the legacy base64(JSON) VMess form. Only "ps" is rewritten;
// every other member keeps its position and value.
func (vmessCodec) Decode(line, tag string) (*Record, error) {
	jsonStr, err := DecodeBase64(stripScheme(line))
	if err != nil {
		return nil, newError(InvalidPayload, VMess, fmt.Errorf("vmess base64 error: %w", err))
	}

	obj, err := parseVMessObject([]byte(jsonStr))
	if err != nil {
		return nil, newError(InvalidPayload, VMess, fmt.Errorf("vmess json error: %w", err))
	}

	name := Unnamed
	if ps, ok := obj.text("ps"); ok && ps != "" {
		name = Unquote(ps)
	}

	rec := &Record{
		Protocol:     VMess,
		Line:         line,
		Host:         obj.textOr("add", NotAvailable),
		Port:         obj.textOr("port", NotAvailable),
		Tag:          tag,
		OriginalName: name,
		Details: fmt.Sprintf("SNI:%s | Net:%s",
			obj.textOr("sni", obj.textOr("host", NotAvailable)),
			obj.textOr("net", NotAvailable)),
	}

	obj.setString("ps", tag)
	encoded := base64.StdEncoding.EncodeToString(obj.encode())
	rec.ModifiedLink = "vmess://" + strings.TrimRight(encoded, "=")
	return rec, nil
}

type jsonMember struct {
	Key   string
	Value jx.Raw // compact JSON
}

// vmessObject is a JSON object that remembers member order.
type vmessObject struct {
	members []jsonMember
}

func parseVMessObject(data []byte) (*vmessObject, error) {
	if !json.Valid(data) {
		return nil, errors.New("payload is not valid JSON")
	}
	d := jx.DecodeBytes(data)
	if d.Next() != jx.Object {
		return nil, errors.New("payload is not a JSON object")
	}

	obj := &vmessObject{}
	err := d.Obj(func(d *jx.Decoder, key string) error {
		raw, err := d.Raw()
		if err != nil {
			return err
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, raw); err != nil {
			return err
		}
		obj.set(key, jx.Raw(buf.Bytes()))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return obj, nil
}

// set replaces an existing member in place or appends a new one.
func (o *vmessObject) set(key string, value jx.Raw) {
	for i := range o.members {
		if o.members[i].Key == key {
			o.members[i].Value = value
			return
		}
	}
	o.members = append(o.members, jsonMember{Key: key, Value: value})
}

func (o *vmessObject) setString(key, value string) {
	var e jx.Encoder
	e.Str(value)
	o.set(key, jx.Raw(e.Bytes()))
}

// text renders a member as plain text: strings are unquoted, numbers and
// booleans keep their JSON spelling. Missing and null members report false.
func (o *vmessObject) text(key string) (string, bool) {
	for _, m := range o.members {
		if m.Key != key {
			continue
		}
		switch m.Value.Type() {
		case jx.Null:
			return "", false
		case jx.String:
			s, err := jx.DecodeBytes(m.Value).Str()
			if err != nil {
				return "", false
			}
			return s, true
		default:
			return string(m.Value), true
		}
	}
	return "", false
}

func (o *vmessObject) textOr(key, fallback string) string {
	if v, ok := o.text(key); ok {
		return v
	}
	return fallback
}

func (o *vmessObject) encode() []byte {
	var e jx.Encoder
	e.ObjStart()
	for _, m := range o.members {
		e.FieldStart(m.Key)
		e.Raw(m.Value)
	}
	e.ObjEnd()
	return e.Bytes()
}

func init() {
	Register(vmessCodec{})
}
