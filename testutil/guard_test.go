package testutil

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, dir, name, src string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte(src), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestDirectImportViolations(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.go", "package a\n\nimport (\n\t\"fmt\"\n\t\"example.com/mod/internal/hidden\"\n)\n")
	writeFile(t, dir, "a_test.go", "package a\n\nimport \"example.com/mod/internal/other\"\n")

	viols, err := directImportViolations(dir, InternalImportForbidden)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(viols) != 1 {
		t.Fatalf("got %d violations, want 1 (test files excluded): %v", len(viols), viols)
	}
	if viols[0] != "example.com/mod/internal/hidden (in a.go)" {
		t.Fatalf("unexpected violation: %q", viols[0])
	}
}

func TestNonStdlibImportForbidden(t *testing.T) {
	if NonStdlibImportForbidden("encoding/json") {
		t.Fatal("stdlib path flagged")
	}
	if NonStdlibImportForbidden("testing") {
		t.Fatal("bare stdlib path flagged")
	}
	if !NonStdlibImportForbidden("github.com/google/uuid") {
		t.Fatal("module path not flagged")
	}
	if !NonStdlibImportForbidden("go.uber.org/zap") {
		t.Fatal("module path not flagged")
	}
}
