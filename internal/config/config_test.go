package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/aretw0/easel"
	"github.com/aretw0/easel/internal/config"
	"github.com/aretw0/easel/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func write(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestLoad_YAML(t *testing.T) {
	path := write(t, "easel.yaml", `
log:
  level: debug
store:
  driver: Redis
  prefix: "test:"
  ttl: 90s
editor:
  kind: mind
  min_zoom: 0.5
  max_zoom: 4
  allow_multi_edge: true
  link_rules:
    decision: {in: 1, out: 2}
server:
  lock_ttl: 5s
`)
	c, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, config.DriverRedis, c.Store.Driver)
	assert.Equal(t, 90*time.Second, c.Store.TTL)
	assert.Equal(t, "localhost:6379", c.Store.Addr, "defaults fill the gaps")
	assert.Equal(t, domain.KindMind, c.Editor.Kind)
	assert.Equal(t, domain.LinkRule{In: 1, Out: 2}, c.Editor.LinkRules["decision"])
	assert.Equal(t, 5*time.Second, c.Server.LockTTL)

	ed, err := easel.New(c.EditorOptions()...)
	require.NoError(t, err)
	assert.Equal(t, domain.KindMind, ed.Graph().Kind())
	assert.True(t, ed.Rules().AllowMultiEdge)
	assert.Equal(t, 0.5, ed.Graph().MinZoom())
}

func TestLoad_JSON(t *testing.T) {
	path := write(t, "easel.json", `{"store": {"driver": "file", "dir": "docs", "format": "yaml"}, "server": {"addr": ":9000", "metrics": true}}`)
	c, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, config.DriverFile, c.Store.Driver)
	assert.Equal(t, "yaml", c.Store.Format)
	assert.Equal(t, ":9000", c.Server.Addr)
	assert.True(t, c.Server.Metrics)
	assert.Equal(t, domain.KindFlow, c.Editor.Kind)
}

func TestLoad_Errors(t *testing.T) {
	tests := []struct {
		name, file, content, want string
	}{
		{"Unknown Extension", "easel.toml", "", "unsupported config format"},
		{"Malformed YAML", "easel.yaml", "store: [", "failed to parse"},
		{"Unknown Key", "easel.yaml", "stroe: {}", "invalid config"},
		{"Unknown Driver", "easel.yaml", "store: {driver: etcd}", `store.driver must be one of [memory file sqlite redis], got "etcd"`},
		{"Unknown Format", "easel.yaml", "store: {driver: file, format: xml}", "store.format must be one of [json yaml]"},
		{"Unknown Kind", "easel.json", `{"editor": {"kind": "tree"}}`, `editor.kind must be one of [flow mind], got "tree"`},
		{"Negative Zoom", "easel.json", `{"editor": {"min_zoom": -1}}`, "editor.min_zoom must be at least 0"},
		{"Inverted Zoom", "easel.json", `{"editor": {"min_zoom": 3, "max_zoom": 1}}`, "editor.max_zoom must not be below min_zoom"},
		{"Bad Duration", "easel.yaml", "store: {ttl: soon}", "invalid config"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(write(t, tt.file, tt.content))
			assert.ErrorContains(t, err, tt.want)
		})
	}

	_, err := config.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "failed to read config")
}

func TestDefault(t *testing.T) {
	c := config.Default()
	assert.Equal(t, config.DriverMemory, c.Store.Driver)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.NoError(t, c.Validate())
	assert.Len(t, c.EditorOptions(), 2)

	c.Store.Driver, c.Editor.Kind = "etcd", "tree"
	err := c.Validate()
	assert.ErrorContains(t, err, "store.driver")
	assert.ErrorContains(t, err, "editor.kind", "every failing field is reported")
}
