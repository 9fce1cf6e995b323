package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReadLineList(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "urls.txt")

	content := "https://example.org/a\n\nhttps://example.org/b\r\n  https://example.org/c  \n"
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write fixture: %v", err)
	}

	lines, err := ReadLineList(path)
	if err != nil {
		t.Fatalf("ReadLineList failed: %v", err)
	}

	want := []string{
		"https://example.org/a",
		"https://example.org/b",
		"https://example.org/c",
	}
	if len(lines) != len(want) {
		t.Fatalf("Expected %d lines, got %d: %v", len(want), len(lines), lines)
	}
	for i := range want {
		if lines[i] != want[i] {
			t.Errorf("Line %d: expected %q, got %q", i, want[i], lines[i])
		}
	}
}

func TestReadLineListMissingFile(t *testing.T) {
	_, err := ReadLineList(filepath.Join(t.TempDir(), "does-not-exist.txt"))
	if err == nil {
		t.Error("Expected error for missing file")
	}
}

func TestWriteBinary(t *testing.T) {
	tempDir := t.TempDir()
	path := filepath.Join(tempDir, "example.org", "nested", "pic.jpg")

	data := []byte{0xFF, 0xD8, 0xFF, 0xE0}
	if err := WriteBinary(path, data); err != nil {
		t.Fatalf("WriteBinary failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	if string(got) != string(data) {
		t.Error("File content does not match written data")
	}

	// No temporary file left behind
	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("Expected temporary file to be removed")
	}
}

func TestWriteBinaryOverwrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "pic.jpg")

	if err := WriteBinary(path, []byte("first")); err != nil {
		t.Fatalf("First write failed: %v", err)
	}
	if err := WriteBinary(path, []byte("second")); err != nil {
		t.Fatalf("Second write failed: %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Failed to read written file: %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Expected last write to win, got %q", got)
	}
}
