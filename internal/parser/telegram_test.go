package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTelegramProxy(t *testing.T) {
	line := "https://t.me/proxy?server=1.1.1.1&port=443&secret=abc#MyProxy"
	rec, err := Parse(line, "@new")
	require.NoError(t, err)

	assert.Equal(t, Telegram, rec.Protocol)
	assert.Equal(t, "1.1.1.1", rec.Host)
	assert.Equal(t, "443", rec.Port)
	assert.Equal(t, "MyProxy", rec.OriginalName)
	assert.Equal(t, line, rec.ModifiedLink)
	assert.Empty(t, rec.Tag)
	require.NotNil(t, rec.Telegram)
	assert.Equal(t, TelegramProxy{Server: "1.1.1.1", Port: "443", Secret: "abc"}, *rec.Telegram)
}

func TestTelegramNameDefaultsToServer(t *testing.T) {
	rec, err := Parse("tg://proxy?server=mt.example&port=8443&secret=ee00", "t")
	require.NoError(t, err)
	assert.Equal(t, "mt.example", rec.OriginalName)
	assert.Equal(t, "ee00", rec.Telegram.Secret)
}

func TestTelegramCaseInsensitivePrefix(t *testing.T) {
	rec, err := Parse("TG://Proxy?server=a&port=1&secret=s#%40chan", "t")
	require.NoError(t, err)
	assert.Equal(t, Telegram, rec.Protocol)
	assert.Equal(t, "@chan", rec.OriginalName)
}

func TestTelegramIncomplete(t *testing.T) {
	for _, line := range []string{
		"https://t.me/proxy?server=1.1.1.1&port=443",
		"https://t.me/proxy?server=1.1.1.1&port=443&secret=",
		"tg://proxy?",
	} {
		_, err := Parse(line, "t")
		require.Error(t, err, line)
		assert.Equal(t, IncompleteTelegramLink, KindOf(err))
		assert.Equal(t, "incomplete Telegram link (missing server, port or secret)", err.Error())
	}
}
