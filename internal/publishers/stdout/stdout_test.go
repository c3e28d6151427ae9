package stdout

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retag/internal/parser"
)

func TestPublish(t *testing.T) {
	var buf bytes.Buffer
	old := Out
	Out = &buf
	t.Cleanup(func() { Out = old })

	records := []*parser.Record{{Protocol: parser.Trojan, ModifiedLink: "trojan://p@h:1#t"}}

	require.NoError(t, (&Publisher{}).Publish(context.Background(), records, map[string]interface{}{"raw": true}))
	assert.Equal(t, "trojan://p@h:1#t\n", buf.String())

	buf.Reset()
	require.NoError(t, (&Publisher{}).Publish(context.Background(), records, nil))
	assert.Contains(t, buf.String(), "RELABELED LINKS")
}
