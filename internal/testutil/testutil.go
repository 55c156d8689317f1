// Package testutil provides test helpers and fixtures for dupescan tests.
// All file operations use t.TempDir() for safe, isolated testing.
package testutil

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

// TestFixture holds a temp directory tree for duplicate detection tests
type TestFixture struct {
	T       *testing.T
	RootDir string // auto-cleaned by t.TempDir
}

// NewFixture creates a new test fixture rooted in a temp directory
func NewFixture(t *testing.T) *TestFixture {
	t.Helper()
	return &TestFixture{
		T:       t,
		RootDir: t.TempDir(),
	}
}

// CreateFile creates a file with the given content and returns its path.
// Parent directories are created as needed.
func (f *TestFixture) CreateFile(relPath string, content []byte) string {
	f.T.Helper()

	fullPath := filepath.Join(f.RootDir, relPath)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		f.T.Fatalf("failed to create directory for %s: %v", relPath, err)
	}
	if err := os.WriteFile(fullPath, content, 0644); err != nil {
		f.T.Fatalf("failed to create file %s: %v", relPath, err)
	}
	return fullPath
}

// CreateFileWithSize creates a file of exactly size bytes filled with the
// repeating fill byte
func (f *TestFixture) CreateFileWithSize(relPath string, size int, fill byte) string {
	f.T.Helper()
	return f.CreateFile(relPath, bytes.Repeat([]byte{fill}, size))
}

// Path joins relPath onto the fixture root
func (f *TestFixture) Path(relPath string) string {
	return filepath.Join(f.RootDir, relPath)
}

// Chmod changes a file's mode and registers cleanup to restore it, so
// t.TempDir removal does not fail on unreadable files
func (f *TestFixture) Chmod(path string, mode os.FileMode) {
	f.T.Helper()

	info, err := os.Stat(path)
	if err != nil {
		f.T.Fatalf("failed to stat %s: %v", path, err)
	}
	original := info.Mode()

	if err := os.Chmod(path, mode); err != nil {
		f.T.Fatalf("failed to chmod %s: %v", path, err)
	}
	f.T.Cleanup(func() {
		_ = os.Chmod(path, original)
	})
}
