package fileutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMoveFileRenames(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.gif")
	dst := filepath.Join(dir, "nested", "dst.gif")
	if err := os.WriteFile(src, []byte("artifact"), 0o644); err != nil {
		t.Fatalf("write src: %v", err)
	}

	if err := MoveFile(src, dst); err != nil {
		t.Fatalf("MoveFile: %v", err)
	}
	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatalf("source should be gone: %v", err)
	}
	data, err := os.ReadFile(dst)
	if err != nil || string(data) != "artifact" {
		t.Fatalf("destination content: %q err=%v", data, err)
	}
}

func TestFileSize(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "file.bin")
	if err := os.WriteFile(path, make([]byte, 1234), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	size, err := FileSize(path)
	if err != nil {
		t.Fatalf("FileSize: %v", err)
	}
	if size != 1234 {
		t.Fatalf("size = %d, want 1234", size)
	}
	if _, err := FileSize(dir); err == nil {
		t.Fatal("directories should be rejected")
	}
	if _, err := FileSize(filepath.Join(dir, "missing")); err == nil {
		t.Fatal("missing files should error")
	}
}
