// Package testutil provides shared helpers for tests.
package testutil

import (
	"fmt"
	"os"
	"strings"
	"testing"
)

// TempFile creates a temporary file with the given content and returns its
// path. The file is automatically cleaned up when the test ends.
func TempFile(t *testing.T, content string) string {
	t.Helper()
	return TempFileBytes(t, "linetap-test-*.txt", []byte(content))
}

// TempFileBytes creates a temporary file with binary content using the given
// name pattern. The file is automatically cleaned up when the test ends.
func TempFileBytes(t *testing.T, pattern string, content []byte) string {
	t.Helper()

	tmpfile, err := os.CreateTemp("", pattern)
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}

	if _, err := tmpfile.Write(content); err != nil {
		tmpfile.Close()
		os.Remove(tmpfile.Name())
		t.Fatalf("failed to write to temp file: %v", err)
	}

	if err := tmpfile.Close(); err != nil {
		os.Remove(tmpfile.Name())
		t.Fatalf("failed to close temp file: %v", err)
	}

	t.Cleanup(func() {
		os.Remove(tmpfile.Name())
	})

	return tmpfile.Name()
}

// GenerateTestData generates terminated test lines of the specified size.
func GenerateTestData(lines int, lineLength int) string {
	var builder strings.Builder
	line := strings.Repeat("x", lineLength-1) + "\n"

	for i := 0; i < lines; i++ {
		builder.WriteString(fmt.Sprintf("%d: %s", i+1, line))
	}

	return builder.String()
}
