package appconfig

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/mwiater/kernbench/internal/errs"
)

func writeConfig(t *testing.T, dir, name, payload string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(path, []byte(payload), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

// TestLoad covers a valid file, malformed JSON, unknown fields, a bad run
// count and a missing file.
func TestLoad(t *testing.T) {
	dir := t.TempDir()
	valid := writeConfig(t, dir, "valid.json", `{
  "runs": 5,
  "seed": 42,
  "kernels": ["linalg3", "nn.softmax"],
  "tolerances": {"attention": {"abs": 1e-4}, "cnn": {"exact": true}},
  "external": [{"name": "external.vector_add", "binary": "./bench", "size": 1024, "timeout": 5}]
}`)

	cfg, err := Load(valid)
	if err != nil {
		t.Fatalf("Load() with valid config failed: %v", err)
	}
	if cfg.ConfigPath != valid {
		t.Fatalf("ConfigPath = %q", cfg.ConfigPath)
	}
	if cfg.RunCount() != 5 || cfg.WarmupCount() != 3 {
		t.Fatalf("runs/warmup = %d/%d, want 5/3", cfg.RunCount(), cfg.WarmupCount())
	}
	if cfg.Seed == nil || *cfg.Seed != 42 {
		t.Fatalf("seed = %v", cfg.Seed)
	}
	if cfg.Timeout() != 60*time.Second {
		t.Fatalf("default timeout = %v", cfg.Timeout())
	}
	tols := cfg.ToleranceMap()
	if tols["attention"].Absolute != 1e-4 || !tols["cnn"].Exact {
		t.Fatalf("tolerances = %+v", tols)
	}
	runner := cfg.External[0].Runner(cfg.Timeout())
	if runner.Timeout != 5*time.Second || runner.Binary != "./bench" {
		t.Fatalf("runner = %+v", runner)
	}

	cases := map[string]string{
		"invalid.json": `{ "runs": `,
		"unknown.json": `{ "hosts": [] }`,
		"zero.json":    `{ "runs": -1 }`,
		"profile.json": `{ "profile": "forever" }`,
		"ext.json":     `{ "external": [{"name": "x", "binary": "", "size": 1}] }`,
	}
	for name, payload := range cases {
		path := writeConfig(t, dir, name, payload)
		if _, err := Load(path); err == nil {
			t.Fatalf("Load(%s) should have failed", name)
		}
	}

	if _, err := Load(filepath.Join(dir, "nonexistent.json")); err == nil {
		t.Fatal("Load() with nonexistent file should have failed")
	}
}

func TestValidate(t *testing.T) {
	negative := -1
	tests := []struct {
		name string
		cfg  Config
		ok   bool
	}{
		{name: "defaults", cfg: Config{}, ok: true},
		{name: "zero warmup", cfg: Config{Warmup: new(int), Runs: 1}, ok: true},
		{name: "negative warmup", cfg: Config{Warmup: &negative}},
		{name: "negative runs", cfg: Config{Runs: -3}},
		{name: "negative tolerance", cfg: Config{Tolerances: map[string]ToleranceOverride{"nn": {Absolute: -1}}}},
		{name: "duplicate external", cfg: Config{External: []ExternalBenchmark{
			{Name: "a", Binary: "x", Size: 1},
			{Name: "a", Binary: "y", Size: 1},
		}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if tt.ok && err != nil {
				t.Fatalf("Validate: %v", err)
			}
			if !tt.ok && !errs.IsConfig(err) {
				t.Fatalf("Validate = %v, want invalid config", err)
			}
		})
	}
}

func TestProfiles(t *testing.T) {
	if p := ProfileFor(""); p.Name != ProfileStandard || p.Warmup != 3 || p.Runs != 10 {
		t.Fatalf("default profile = %+v", p)
	}
	if p := ProfileFor(" Quick "); p.Name != ProfileQuick {
		t.Fatalf("ProfileFor(Quick) = %+v", p)
	}
	cfg := Config{Profile: "thorough"}
	if cfg.WarmupCount() != 10 || cfg.RunCount() != 100 {
		t.Fatalf("thorough = %d/%d", cfg.WarmupCount(), cfg.RunCount())
	}
	if s := cfg.SeedValue(); s == nil || *s != DefaultSeed {
		t.Fatalf("profile seed = %v, want %d", s, DefaultSeed)
	}
	seed := uint64(7)
	cfg.Seed = &seed
	if s := cfg.SeedValue(); *s != 7 {
		t.Fatalf("configured seed = %d, want 7", *s)
	}
	if got := strings.Join(ProfileNames(), ","); got != "quick,standard,thorough" {
		t.Fatalf("ProfileNames = %s", got)
	}
}

func TestLogFilePath(t *testing.T) {
	if got := (Config{}).LogFilePath(); got != "kernbench.log" {
		t.Fatalf("default log file = %q", got)
	}
	if got := (Config{LogFile: "logs/run.log"}).LogFilePath(); got != "logs/run.log" {
		t.Fatalf("log file = %q", got)
	}
}

func TestShowConfig(t *testing.T) {
	seed := uint64(9)
	var buf bytes.Buffer
	ShowConfig(&buf, "config/config.json", Config{
		Seed:       &seed,
		Tolerances: map[string]ToleranceOverride{"nn": {Absolute: 0.5}},
		External:   []ExternalBenchmark{{Name: "external.vadd", Binary: "./vadd", Size: 64}},
	})
	out := buf.String()
	for _, want := range []string{"Config file: config/config.json", "Seed:            9", "Runs:            10", "nn", "external.vadd -> ./vadd"} {
		if !strings.Contains(out, want) {
			t.Fatalf("output missing %q:\n%s", want, out)
		}
	}

	buf.Reset()
	ShowConfig(&buf, "", Config{})
	if !strings.Contains(buf.String(), "No config file loaded") || !strings.Contains(buf.String(), "(all)") {
		t.Fatalf("defaults output:\n%s", buf.String())
	}
}
