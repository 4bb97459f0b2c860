package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/byte4ever/gitreq/config"
	"github.com/byte4ever/gitreq/remote"
)

func TestDefault(t *testing.T) {
	t.Parallel()

	cfg := config.Default()

	assert.Equal(t, config.DefaultFormat, cfg.Format)
	assert.Empty(t, cfg.Hosts)
}

func TestParse(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse([]byte(`
format = "{id} {branch}"

[hosts."git.corp.example.com"]
provider = "GitHub"
api_root = "https://git.corp.example.com/api/v3"

[hosts."code.example.org"]
provider = "bitbucket"
`))
	require.NoError(t, err)

	assert.Equal(t, "{id} {branch}", cfg.Format)

	h, ok := cfg.Host("GIT.corp.example.com")
	require.True(t, ok)

	kind, err := h.Kind()
	require.NoError(t, err)
	assert.Equal(t, remote.KindGitHub, kind)
	assert.Equal(t, "https://git.corp.example.com/api/v3", h.APIRoot)

	h, ok = cfg.Host("code.example.org")
	require.True(t, ok)
	assert.Empty(t, h.APIRoot)

	_, ok = cfg.Host("gitlab.com")
	assert.False(t, ok)
}

func TestParse_empty_uses_defaults(t *testing.T) {
	t.Parallel()

	cfg, err := config.Parse(nil)

	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)
}

func TestParse_invalid(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		data    string
		wantErr string
	}{
		{
			name:    "syntax",
			data:    `format = `,
			wantErr: "failed to parse",
		},
		{
			name: "unknown provider",
			data: `[hosts."x.example"]
provider = "gitea"`,
			wantErr: "unknown provider",
		},
		{
			name: "missing provider",
			data: `[hosts."x.example"]
api_root = "https://x.example"`,
			wantErr: "unknown provider",
		},
		{
			name: "relative api root",
			data: `[hosts."x.example"]
provider = "gitlab"
api_root = "/api/v4"`,
			wantErr: "invalid api_root",
		},
		{
			name: "ftp api root",
			data: `[hosts."x.example"]
provider = "gitlab"
api_root = "ftp://x.example"`,
			wantErr: "invalid api_root",
		},
		{
			name:    "unknown key",
			data:    `colour = true`,
			wantErr: "unknown config keys: colour",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg, err := config.Parse([]byte(tt.data))

			assert.ErrorContains(t, err, tt.wantErr)
			assert.Equal(t, config.Default(), cfg)
		})
	}
}

func TestLoadFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	cfg, err := config.LoadFile(filepath.Join(dir, "missing.toml"))
	require.NoError(t, err)
	assert.Equal(t, config.Default(), cfg)

	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(
		path, []byte(`format = "{title}"`), 0o600,
	))

	cfg, err = config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{title}", cfg.Format)

	require.NoError(t, os.WriteFile(
		path, []byte(`format = 3`), 0o600,
	))

	_, err = config.LoadFile(path)
	assert.ErrorContains(t, err, path)
}

func TestPath_xdg(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	path, err := config.Path()

	require.NoError(t, err)
	assert.Equal(t, "/tmp/xdg/git-req/config.toml", path)
}
