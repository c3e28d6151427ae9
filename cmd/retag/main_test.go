package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"retag/internal/config"
	"retag/internal/metrics"
)

func TestApplyParams(t *testing.T) {
	got := applyParams(nil, map[string]string{"limit": "20", "base64": "true", "path": "out.txt"})
	assert.Equal(t, map[string]interface{}{"limit": 20, "base64": true, "path": "out.txt"}, got)

	existing := map[string]interface{}{"path": "a", "keep": 1}
	got = applyParams(existing, map[string]string{"path": "b"})
	assert.Equal(t, map[string]interface{}{"path": "b", "keep": 1}, got)
}

func TestGatherLinesFromFiles(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.txt")
	require.NoError(t, os.WriteFile(a, []byte("vless://id@h:1#x\nfoo\n"), 0o644))

	lines, sources, err := gatherLines(context.Background(), config.Default(), []string{a})
	require.NoError(t, err)
	assert.Equal(t, []string{"vless://id@h:1#x", "foo"}, lines)
	assert.Equal(t, []string{"file:" + a}, sources)

	_, _, err = gatherLines(context.Background(), config.Default(), nil)
	assert.ErrorContains(t, err, "no collectors configured")
}

func TestRunBatch(t *testing.T) {
	cfg := config.Default()
	cfg.Tag = "@new"
	cfg.Engine.PollInterval = time.Millisecond

	stats := metrics.New(nil)
	res, err := runBatch(context.Background(), cfg, []string{
		"vless://uuid@h.example:443?sni=foo&type=ws#oldname",
		"http://example.com",
	}, stats, false)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Total)
	assert.Equal(t, 1, res.Succeeded)
	require.Len(t, res.Failures, 1)
	assert.Equal(t, "protocol not recognized", res.Failures[0].Reason)
	assert.Equal(t, map[string]int{"VLESS": 1}, stats.Protocols())
	assert.Equal(t, "vless://uuid@h.example:443?sni=foo&type=ws#%40new", res.Ordered()[0].ModifiedLink)
}

func TestPrintInspection(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, printInspection(&out, "trojan://pw@t.example:443?peer=p#old", "@new"))
	assert.Contains(t, out.String(), "TROJAN")
	assert.Contains(t, out.String(), "trojan://pw@t.example:443?peer=p#%40new")

	out.Reset()
	assert.Error(t, printInspection(&out, "http://example.com", "x"))
	assert.Equal(t, "❌ protocol not recognized\n", out.String())
}

func TestFormatBytes(t *testing.T) {
	assert.Equal(t, "512 B", formatBytes(512))
	assert.Equal(t, "1.5 KB", formatBytes(1536))
	assert.Equal(t, "2.0 MB", formatBytes(2*1024*1024))
}

func TestResolveTag(t *testing.T) {
	tag, err := resolveTag("@cfg", "", false)
	require.NoError(t, err)
	assert.Equal(t, "@cfg", tag)

	tag, err = resolveTag("@cfg", "@flag", true)
	require.NoError(t, err)
	assert.Equal(t, "@flag", tag)

	_, err = resolveTag("@cfg", "", true)
	assert.ErrorIs(t, err, errEmptyTag)

	_, err = resolveTag("", "", false)
	assert.ErrorIs(t, err, errEmptyTag)
}
