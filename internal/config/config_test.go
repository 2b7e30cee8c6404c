package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Parallel()

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Input.Targets != "inputs/qr_links.csv" {
		t.Fatalf("unexpected default targets path: %q", cfg.Input.Targets)
	}
	if cfg.Fetch.Workers != 6 {
		t.Fatalf("expected 6 workers, got %d", cfg.Fetch.Workers)
	}
	if cfg.Fetch.PerHostDelay != 500*time.Millisecond {
		t.Fatalf("expected 500ms per-host delay, got %v", cfg.Fetch.PerHostDelay)
	}
	if cfg.Fetch.UserAgent != "AutoCheckRH/1.0" {
		t.Fatalf("unexpected user agent: %q", cfg.Fetch.UserAgent)
	}
	if cfg.Extract.Mode != "permissive" {
		t.Fatalf("unexpected extract mode: %q", cfg.Extract.Mode)
	}
	if cfg.Matching.Tolerance != 5 {
		t.Fatalf("expected tolerance 5, got %d", cfg.Matching.Tolerance)
	}
	if got := cfg.Timeout(); got != 10*time.Second {
		t.Fatalf("expected 10s timeout, got %v", got)
	}
}

func TestLoadWithFileOverrides(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
input:
  targets: data/links.csv
  references: data/comparar.csv
output:
  dir: out
  log_dir: out/logs
  result_prefix: conferido
fetch:
  workers: 3
  timeout_seconds: 20
  per_host_delay: 2s
  user_agent: custom-agent
extract:
  mode: labelled
matching:
  tolerance: 10
logging:
  development: false
`
	if err := os.WriteFile(path, []byte(configYAML), 0o600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Input.Targets != "data/links.csv" || cfg.Input.References != "data/comparar.csv" {
		t.Fatalf("expected input overrides to apply: %+v", cfg.Input)
	}
	if cfg.Output.ResultPrefix != "conferido" {
		t.Fatalf("expected result prefix override, got %q", cfg.Output.ResultPrefix)
	}
	if cfg.Output.CleanPrefix != "planilha_feita" {
		t.Fatalf("expected default clean prefix to survive, got %q", cfg.Output.CleanPrefix)
	}
	if cfg.Fetch.Workers != 3 || cfg.Fetch.PerHostDelay != 2*time.Second {
		t.Fatalf("expected fetch overrides to apply: %+v", cfg.Fetch)
	}
	if cfg.Extract.Mode != "labelled" {
		t.Fatalf("expected labelled mode, got %q", cfg.Extract.Mode)
	}
	if cfg.Matching.Tolerance != 10 {
		t.Fatalf("expected tolerance 10, got %d", cfg.Matching.Tolerance)
	}
	if got := cfg.Timeout(); got != 20*time.Second {
		t.Fatalf("expected 20s timeout, got %v", got)
	}
}

func TestConfigValidateErrors(t *testing.T) {
	t.Parallel()

	base := Config{
		Output: OutputConfig{Dir: "outputs", LogDir: "logs"},
		Fetch: FetchConfig{
			Workers:        6,
			TimeoutSeconds: 10,
			UserAgent:      "agent",
		},
		Extract:  ExtractConfig{Mode: "permissive"},
		Matching: MatchingConfig{Tolerance: 5},
	}

	tests := []struct {
		name string
		cfg  Config
		want string
	}{
		{
			name: "invalid workers",
			cfg: func() Config {
				c := base
				c.Fetch.Workers = 0
				return c
			}(),
			want: "fetch.workers",
		},
		{
			name: "invalid timeout",
			cfg: func() Config {
				c := base
				c.Fetch.TimeoutSeconds = -1
				return c
			}(),
			want: "fetch.timeout_seconds",
		},
		{
			name: "negative delay",
			cfg: func() Config {
				c := base
				c.Fetch.PerHostDelay = -time.Second
				return c
			}(),
			want: "fetch.per_host_delay",
		},
		{
			name: "missing user agent",
			cfg: func() Config {
				c := base
				c.Fetch.UserAgent = ""
				return c
			}(),
			want: "fetch.user_agent",
		},
		{
			name: "unknown extract mode",
			cfg: func() Config {
				c := base
				c.Extract.Mode = "strict"
				return c
			}(),
			want: "extract.mode",
		},
		{
			name: "negative tolerance",
			cfg: func() Config {
				c := base
				c.Matching.Tolerance = -1
				return c
			}(),
			want: "matching.tolerance",
		},
		{
			name: "missing output dirs",
			cfg: func() Config {
				c := base
				c.Output.LogDir = ""
				return c
			}(),
			want: "output.dir",
		},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			err := tt.cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Fatalf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
