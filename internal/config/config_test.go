package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
}

func TestLoadParsesAndExpandsPaths(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
output_dir = "` + filepath.Join(dir, "out") + `"
log_dir = "` + filepath.Join(dir, "logs") + `"

[encoder]
preset = "compact"
dither_mode = "sierra2_4a"

[export]
platforms = ["Slack-Emoji", " twitch-emote "]
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !exists || resolved != path {
		t.Fatalf("expected existing config at %s, got %s exists=%v", path, resolved, exists)
	}
	if cfg.Encoder.Preset != "compact" {
		t.Fatalf("unexpected preset: %q", cfg.Encoder.Preset)
	}
	if cfg.Encoder.FFmpegBinary != "ffmpeg" {
		t.Fatalf("default binary not applied: %q", cfg.Encoder.FFmpegBinary)
	}
	if got := cfg.Export.Platforms; len(got) != 2 || got[0] != "slack-emoji" || got[1] != "twitch-emote" {
		t.Fatalf("platforms not normalized: %v", got)
	}
	if !filepath.IsAbs(cfg.Paths.TempDir) {
		t.Fatalf("temp dir not expanded: %q", cfg.Paths.TempDir)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, _, exists, err := Load(filepath.Join(t.TempDir(), "nope.toml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if exists {
		t.Fatal("config should not exist")
	}
	if cfg.Encoder.Preset != defaultPreset {
		t.Fatalf("expected default preset, got %q", cfg.Encoder.Preset)
	}
}

func TestValidateRejections(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"bad preset", func(c *Config) { c.Encoder.Preset = "ultra" }, "encoder.preset"},
		{"bad dither", func(c *Config) { c.Encoder.DitherMode = "random" }, "dither_mode"},
		{"bayer scale", func(c *Config) { c.Encoder.BayerScale = 9 }, "bayer_scale"},
		{"bad color", func(c *Config) { c.ChromaKey.Color = "green" }, "chroma_key.color"},
		{"similarity range", func(c *Config) { c.ChromaKey.Similarity = 1.4 }, "similarity"},
		{"blend range", func(c *Config) { c.ChromaKey.Blend = -0.1 }, "blend"},
		{"log level", func(c *Config) { c.Logging.Level = "trace" }, "logging.level"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err.Error(), tc.want)
			}
		})
	}
}

func TestWriteSample(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := WriteSample(path); err != nil {
		t.Fatalf("WriteSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	if !strings.Contains(string(data), "[chroma_key]") {
		t.Fatal("sample config missing chroma_key section")
	}
}
