package publishers

import (
	"bytes"
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retag/internal/engine"
	"retag/internal/parser"
)

var records = []*parser.Record{
	{Protocol: parser.VLESS, OriginalName: "a", ModifiedLink: "vless://x#new"},
	{Protocol: parser.Trojan, OriginalName: "b", ModifiedLink: "trojan://y#new"},
	{Protocol: parser.VLESS, OriginalName: "a", ModifiedLink: "vless://z#new"},
	{Protocol: parser.Telegram, OriginalName: "tg", ModifiedLink: "tg://proxy?server=s"},
}

func TestGenerateSubscriptionPayload(t *testing.T) {
	tests := []struct {
		name   string
		config map[string]interface{}
		want   string
	}{
		{
			name:   "modified links by default",
			config: map[string]interface{}{},
			want:   "vless://x#new\ntrojan://y#new\nvless://z#new\ntg://proxy?server=s",
		},
		{
			name:   "original names keep every row",
			config: map[string]interface{}{"field": "original_name"},
			want:   "a\nb\na\ntg",
		},
		{
			name:   "original names deduplicated on request",
			config: map[string]interface{}{"field": "original_name", "dedupe": true},
			want:   "a\nb\ntg",
		},
		{
			name:   "protocol filter",
			config: map[string]interface{}{"protocols": []interface{}{"vless", "telegram"}},
			want:   "vless://x#new\nvless://z#new\ntg://proxy?server=s",
		},
		{
			name:   "single protocol string",
			config: map[string]interface{}{"protocols": "trojan"},
			want:   "trojan://y#new",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := GenerateSubscriptionPayload(records, tt.config)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGenerateSubscriptionPayloadBase64(t *testing.T) {
	got, err := GenerateSubscriptionPayload(records[:2], map[string]interface{}{"base64": true})
	require.NoError(t, err)

	decoded, err := base64.StdEncoding.DecodeString(got)
	require.NoError(t, err)
	assert.Equal(t, "vless://x#new\ntrojan://y#new", string(decoded))
}

func TestGenerateSubscriptionPayloadErrors(t *testing.T) {
	_, err := GenerateSubscriptionPayload(records, map[string]interface{}{"field": "host"})
	assert.ErrorContains(t, err, "unknown field")

	_, err = GenerateSubscriptionPayload(records, map[string]interface{}{"protocols": []interface{}{"http"}})
	assert.ErrorContains(t, err, "unknown protocol")

	_, err = GenerateSubscriptionPayload(records, map[string]interface{}{"protocols": 3})
	assert.Error(t, err)
}

func TestWriteFailures(t *testing.T) {
	var buf bytes.Buffer
	err := WriteFailures(&buf, []engine.Failure{
		{Line: "http://example.com", Reason: "protocol not recognized"},
		{Line: "vless://a\tb", Reason: "invalid VLESS link structure"},
	})
	require.NoError(t, err)
	assert.Equal(t,
		"http://example.com\tprotocol not recognized\nvless://a b\tinvalid VLESS link structure\n",
		buf.String())
}
