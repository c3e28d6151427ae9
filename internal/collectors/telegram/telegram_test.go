package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/proxy"
)

func TestParseOptions(t *testing.T) {
	opts, err := parseOptions(map[string]interface{}{
		"api_id":     12345,
		"api_hash":   "hash",
		"chats":      []interface{}{-1001234567890, 42, "ignored"},
		"_proxy_url": "socks5://127.0.0.1:1080",
	})
	require.NoError(t, err)

	assert.Equal(t, 12345, opts.apiID)
	assert.Equal(t, defaultLimit, opts.limit)
	assert.Equal(t, "telegram.session", opts.sessionFile)
	assert.Equal(t, []int64{-1001234567890, 42}, opts.chats)
	assert.Equal(t, "socks5://127.0.0.1:1080", opts.proxyURL)
}

func TestParseOptionsMissingCredentials(t *testing.T) {
	_, err := parseOptions(map[string]interface{}{"chats": []interface{}{1}})
	assert.ErrorContains(t, err, "api_id")

	_, err = parseOptions(map[string]interface{}{"api_id": 1, "api_hash": "h"})
	assert.ErrorContains(t, err, "chats")
}

func TestNewDialer(t *testing.T) {
	d, err := NewDialer("")
	require.NoError(t, err)
	assert.Equal(t, proxy.Direct, d)

	d, err = NewDialer("socks5://127.0.0.1:1080")
	require.NoError(t, err)
	assert.NotNil(t, d)

	_, err = NewDialer("ftp://127.0.0.1:21")
	assert.Error(t, err)
}

func TestChannelBotID(t *testing.T) {
	assert.Equal(t, int64(-1001234567890), channelBotID(1234567890))
}
