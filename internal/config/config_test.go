package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/alexanderramin/goaltree/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, k := range []string{
		"GOALTREE_CONFIG", "GOALTREE_DB", "GOALTREE_USER", "GOALTREE_ROLE", "GOALTREE_REMOTE",
		"GOALTREE_REMOTE_TIMEOUT_MS", "GOALTREE_LISTEN", "GOALTREE_VIEWSTATE",
		"GOALTREE_LOG_USECASES", "GOALTREE_LOG_LEVEL", "GOALTREE_TRACE",
	} {
		t.Setenv(k, "")
		os.Unsetenv(k)
	}
	return home
}

func writeFile(t *testing.T, path, body string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
}

func TestLoadConfig_Defaults(t *testing.T) {
	home := isolate(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, DefaultConfig(home), cfg)
	assert.Equal(t, filepath.Join(home, ".goaltree", "goaltree.db"), cfg.DB)
	assert.Equal(t, domain.Principal{UserID: "local", Role: domain.RoleAdmin}, cfg.Principal())
}

func TestLoadConfig_Precedence(t *testing.T) {
	home := isolate(t)
	writeFile(t, filepath.Join(home, ".goaltree", "config.yaml"), `
db: /data/from-file.db
user: alice
role: user
listen: ":9000"
log_use_cases: true
`)
	t.Setenv("GOALTREE_LISTEN", ":7000")
	t.Setenv("GOALTREE_REMOTE_TIMEOUT_MS", "2500")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "/data/from-file.db", cfg.DB, "file over default")
	assert.Equal(t, "alice", cfg.User)
	assert.Equal(t, ":7000", cfg.Listen, "env over file")
	assert.Equal(t, 2500, cfg.RemoteTimeoutMs)
	assert.True(t, cfg.LogUseCases)
	assert.Equal(t, filepath.Join(home, ".goaltree", "view.db"), cfg.ViewState, "unset keys keep defaults")
}

func TestLoadConfig_ExplicitFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), "custom.yaml")
	writeFile(t, path, "remote: http://goals.example:8080\n")
	t.Setenv("GOALTREE_CONFIG", path)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "http://goals.example:8080", cfg.Remote)

	t.Setenv("GOALTREE_CONFIG", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err = LoadConfig()
	assert.Error(t, err, "an explicitly named file must exist")
}

func TestLoadConfig_Invalid(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
		file string
	}{
		{name: "bad role", env: map[string]string{"GOALTREE_ROLE": "owner"}},
		{name: "bad exporter", env: map[string]string{"GOALTREE_TRACE": "jaeger"}},
		{name: "bad yaml", file: "db: [unterminated"},
		{name: "bad log level", env: map[string]string{"GOALTREE_LOG_LEVEL": "loud"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			home := isolate(t)
			if tt.file != "" {
				writeFile(t, filepath.Join(home, ".goaltree", "config.yaml"), tt.file)
			}
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}

func TestLoadConfig_InvalidNumbersIgnored(t *testing.T) {
	isolate(t)
	t.Setenv("GOALTREE_REMOTE_TIMEOUT_MS", "soon")
	t.Setenv("GOALTREE_LOG_USECASES", "maybe")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, 10000, cfg.RemoteTimeoutMs)
	assert.False(t, cfg.LogUseCases)
}
