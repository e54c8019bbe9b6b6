package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/randalmurphal/facets/pkg/facets/config"
)

func TestFromYAML(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr bool
		check   func(*testing.T, config.Config)
	}{
		{
			"nested structure",
			`server:
  host: localhost
  port: 5432
tags: [alpha, beta]`,
			false,
			func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "localhost", cfg.String("server.host", ""))
				assert.Equal(t, 5432, cfg.Int("server.port", 0))
				assert.Equal(t, []string{"alpha", "beta"}, cfg.StringSlice("tags", nil))
			},
		},
		{
			"non-string keys normalized",
			`codes:
  200: ok
  404: missing`,
			false,
			func(t *testing.T, cfg config.Config) {
				codes, ok := cfg.Any("codes", nil).(map[string]any)
				require.True(t, ok)
				assert.Equal(t, "ok", codes["200"])
				assert.Equal(t, "missing", cfg.String("codes.404", ""))
			},
		},
		{
			"empty yaml",
			``,
			false,
			func(t *testing.T, cfg config.Config) {
				assert.True(t, cfg.Configured())
				assert.False(t, cfg.Has("anything"))
			},
		},
		{"invalid yaml", `invalid: yaml: content:`, true, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromYAML([]byte(tt.yaml))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestFromJSON(t *testing.T) {
	cfg, err := config.FromJSON([]byte(`{"server": {"host": "127.0.0.1", "port": 8080}, "items": ["one", "two"]}`))
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1", cfg.String("server.host", ""))
	assert.Equal(t, float64(8080), cfg.Any("server.port", nil))
	assert.Equal(t, []string{"one", "two"}, cfg.StringSlice("items", nil))

	_, err = config.FromJSON([]byte(`{invalid json}`))
	assert.Error(t, err)
}

func TestFromHCL(t *testing.T) {
	tests := []struct {
		name    string
		hcl     string
		wantErr string
		check   func(*testing.T, config.Config)
	}{
		{
			"attributes and objects",
			`
name    = "worker"
retries = 3
debug   = true
limits  = { cpu = 2, tags = ["a", "b"] }
absent  = null
`,
			"",
			func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "worker", cfg.String("name", ""))
				assert.Equal(t, 3, cfg.Int("retries", 0))
				assert.True(t, cfg.Bool("debug", false))
				assert.Equal(t, float64(2), cfg.Any("limits.cpu", nil))
				assert.Equal(t, []string{"a", "b"}, cfg.StringSlice("limits.tags", nil))
				assert.True(t, cfg.Has("absent"))
				assert.Nil(t, cfg.Any("absent", "x"))
			},
		},
		{
			"expressions are evaluated",
			`greeting = "hello ${"world"}"
total    = 2 * 21`,
			"",
			func(t *testing.T, cfg config.Config) {
				assert.Equal(t, "hello world", cfg.String("greeting", ""))
				assert.Equal(t, 42, cfg.Int("total", 0))
			},
		},
		{"syntax error", `name = `, "parse hcl", nil},
		{"blocks are rejected", "server {\n  host = \"x\"\n}\n", "parse hcl", nil},
		{"unknown variable", `name = var.missing`, "evaluate hcl attribute", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromHCL([]byte(tt.hcl))
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			tt.check(t, cfg)
		})
	}
}

func TestFromFile(t *testing.T) {
	tmpDir := t.TempDir()

	write := func(name, content string) string {
		path := filepath.Join(tmpDir, name)
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
		return path
	}

	tests := []struct {
		name    string
		path    string
		wantErr string
		want    string
	}{
		{"yaml file", write("a.yaml", "name: fromyaml"), "", "fromyaml"},
		{"yml file", write("b.yml", "name: fromyml"), "", "fromyml"},
		{"json file", write("c.json", `{"name": "fromjson"}`), "", "fromjson"},
		{"hcl file", write("d.hcl", `name = "fromhcl"`), "", "fromhcl"},
		{"case insensitive extension", write("e.YAML", "name: upper"), "", "upper"},
		{"unsupported extension", write("f.txt", "content"), "unsupported config file extension", ""},
		{"file not found", filepath.Join(tmpDir, "nope.yaml"), "read config file", ""},
		{"hcl error names file", write("g.hcl", "name = "), "g.hcl", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := config.FromFile(tt.path)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, cfg.String("name", ""))
		})
	}
}
