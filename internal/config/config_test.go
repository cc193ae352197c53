package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"snex/internal/config"
	"snex/internal/trace"
	"snex/internal/types"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
	return path
}

func TestLoadOverridesDefaults(t *testing.T) {
	path := writeFile(t, t.TempDir(), config.FileName, `
[compiler]
max_diagnostics = 7

[layout]
padding = "natural"

[trace]
level = "detail"
output = "trace.ndjson"
`)
	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Compiler.MaxDiagnostics != 7 || !cfg.Compiler.HideInternal {
		t.Fatalf("compiler: %+v", cfg.Compiler)
	}
	if mode, _ := cfg.PaddingMode(); mode != types.PaddingNatural {
		t.Fatalf("padding: %v", mode)
	}
	tc, err := cfg.TraceConfig()
	if err != nil || tc.Level != trace.LevelDetail || tc.OutputPath != "trace.ndjson" || tc.Format != trace.FormatAuto {
		t.Fatalf("trace: %+v %v", tc, err)
	}
	if cfg.Path != path {
		t.Fatalf("path %q", cfg.Path)
	}
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := []struct {
		name, body, want string
	}{
		{"unknown key", "[layout]\nalign = 4\n", "unknown keys: layout.align"},
		{"padding", "[layout]\npadding = \"packed\"\n", "[layout].padding"},
		{"level", "[trace]\nlevel = \"loud\"\n", "invalid trace level"},
		{"limit", "[compiler]\nmax_diagnostics = 0\n", "must be positive"},
		{"syntax", "[compiler\n", "failed to parse TOML"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			path := writeFile(t, t.TempDir(), config.FileName, tc.body)
			_, err := config.Load(path)
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error containing %q, got %v", tc.want, err)
			}
		})
	}
}

func TestDiscoverWalksUp(t *testing.T) {
	root := t.TempDir()
	writeFile(t, root, config.FileName, "[compiler]\nhide_internal = false\n")
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatal(err)
	}
	cfg, err := config.Discover(nested)
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if cfg.Compiler.HideInternal || cfg.Compiler.MaxDiagnostics != 100 {
		t.Fatalf("compiler: %+v", cfg.Compiler)
	}
}

func TestDefaultsValidate(t *testing.T) {
	if err := config.Default().Validate(); err != nil {
		t.Fatalf("defaults invalid: %v", err)
	}
}
