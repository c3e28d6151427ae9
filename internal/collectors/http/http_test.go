package http

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectPlainAndBase64(t *testing.T) {
	plain := "vless://a@b:1#x\nss://c@d:2\n"
	mux := http.NewServeMux()
	mux.HandleFunc("/plain", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(plain))
	})
	mux.HandleFunc("/b64", func(w http.ResponseWriter, _ *http.Request) {
		encoded := base64.StdEncoding.EncodeToString([]byte(plain))
		_, _ = w.Write([]byte(encoded[:10] + "\n" + encoded[10:]))
	})
	mux.HandleFunc("/missing", func(w http.ResponseWriter, _ *http.Request) {
		http.NotFound(w, nil)
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	c := &URLCollector{}
	want := []string{"vless://a@b:1#x", "ss://c@d:2"}

	lines, err := c.Collect(context.Background(), map[string]interface{}{"url": srv.URL + "/plain"})
	require.NoError(t, err)
	assert.Equal(t, want, lines)

	lines, err = c.Collect(context.Background(), map[string]interface{}{"url": srv.URL + "/b64"})
	require.NoError(t, err)
	assert.Equal(t, want, lines)

	_, err = c.Collect(context.Background(), map[string]interface{}{"url": srv.URL + "/missing"})
	assert.ErrorContains(t, err, "non-200")

	_, err = c.Collect(context.Background(), map[string]interface{}{})
	assert.ErrorContains(t, err, "missing 'url'")
}

func TestDecodeSubscription(t *testing.T) {
	assert.Equal(t, "not base64 !!", DecodeSubscription("not base64 !!"))
	assert.Equal(t, "", DecodeSubscription(""))
	assert.Equal(t, "trojan://p@h:1", DecodeSubscription(base64.RawStdEncoding.EncodeToString([]byte("trojan://p@h:1"))))
}
