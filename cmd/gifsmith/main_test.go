package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"gifsmith/internal/platform"
)

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func setupHome(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	return home
}

func requireContains(t *testing.T, haystack, needle string) {
	t.Helper()
	if !strings.Contains(haystack, needle) {
		t.Fatalf("expected output to contain %q, got:\n%s", needle, haystack)
	}
}

func TestPlatformsCommandListsRegistry(t *testing.T) {
	out, _, err := runCLI(t, "platforms")
	if err != nil {
		t.Fatalf("platforms: %v", err)
	}
	for _, id := range []string{"twitch-emote", "discord-sticker", "stream-avatar"} {
		requireContains(t, out, id)
	}
	requireContains(t, out, "sprite-sheet")
}

func TestConfigInitWritesSample(t *testing.T) {
	setupHome(t)
	target := filepath.Join(t.TempDir(), "config.toml")

	out, _, err := runCLI(t, "config", "init", "--path", target)
	if err != nil {
		t.Fatalf("config init: %v", err)
	}
	requireContains(t, out, "Wrote sample configuration")

	if _, err := os.Stat(target); err != nil {
		t.Fatalf("expected config file at %s: %v", target, err)
	}

	if _, _, err := runCLI(t, "config", "init", "--path", target); err == nil {
		t.Fatal("second init without --overwrite should fail")
	}
	if _, _, err := runCLI(t, "config", "init", "--path", target, "--overwrite"); err != nil {
		t.Fatalf("init with --overwrite: %v", err)
	}
}

func TestConfigValidateWithDefaults(t *testing.T) {
	setupHome(t)
	out, _, err := runCLI(t, "config", "validate")
	if err != nil {
		t.Fatalf("config validate: %v", err)
	}
	requireContains(t, out, "Configuration valid")
}

func TestResolvePlatforms(t *testing.T) {
	if got := resolvePlatforms([]string{"twitch-emote"}, []string{"slack-emoji"}); len(got) != 1 || got[0] != "twitch-emote" {
		t.Fatalf("flags should win over configuration, got %v", got)
	}
	if got := resolvePlatforms(nil, []string{"slack-emoji"}); len(got) != 1 || got[0] != "slack-emoji" {
		t.Fatalf("configured platforms should apply, got %v", got)
	}

	// Nothing requested anywhere enables every registered platform.
	got := resolvePlatforms(nil, nil)
	want := platform.IDs()
	if len(got) != len(want) {
		t.Fatalf("default should cover the whole registry, got %v", got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("default platform %d = %s, want %s", i, got[i], want[i])
		}
	}
}

func TestParseCrop(t *testing.T) {
	region, err := parseCrop("10:20:300:200")
	if err != nil {
		t.Fatalf("parseCrop: %v", err)
	}
	if region.X != 10 || region.Y != 20 || region.Width != 300 || region.Height != 200 {
		t.Fatalf("unexpected region: %+v", region)
	}

	if region, err := parseCrop(""); err != nil || region != nil {
		t.Fatalf("empty crop should be nil, got %+v, %v", region, err)
	}
	if _, err := parseCrop("10:20:300"); err == nil {
		t.Fatal("expected error for 3-part crop")
	}
	if _, err := parseCrop("a:b:c:d"); err == nil {
		t.Fatal("expected error for non-numeric crop")
	}
}

func TestParseTrim(t *testing.T) {
	window, err := parseTrim(1.5, 4)
	if err != nil {
		t.Fatalf("parseTrim: %v", err)
	}
	if window.Start != 1.5 || window.End != 4 {
		t.Fatalf("unexpected window: %+v", window)
	}

	if window, err := parseTrim(0, 0); err != nil || window != nil {
		t.Fatalf("zero trim should be nil, got %+v, %v", window, err)
	}
	if _, err := parseTrim(4, 2); err == nil {
		t.Fatal("expected error for inverted window")
	}
}
