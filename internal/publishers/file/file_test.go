package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retag/internal/parser"
	"retag/internal/publishers"
)

func TestPublish(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "links.txt")
	records := []*parser.Record{
		{Protocol: parser.VLESS, ModifiedLink: "vless://a#t"},
		{Protocol: parser.Shadowsocks, ModifiedLink: "ss://b#t"},
	}

	p, err := publishers.Get("file")
	require.NoError(t, err)
	require.NoError(t, p.Publish(context.Background(), records, map[string]interface{}{"path": path}))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "vless://a#t\nss://b#t\n", string(data))
}

func TestPublishRequiresPath(t *testing.T) {
	err := (&Publisher{}).Publish(context.Background(), nil, map[string]interface{}{})
	assert.ErrorContains(t, err, "requires path")
}
