package driver_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"

	"github.com/thrushlang/thrushc-go/internal/driver"
)

// loadFixture writes every file in a txtar archive (besides a trailing
// `want.txt`, the expected-output marker) into dir, mirroring the
// teacher's own practice of comparing a freshly generated artifact
// against a checked-in golden file.
func loadFixture(t *testing.T, name, dir string) (files []string, want string) {
	t.Helper()
	data, err := os.ReadFile(filepath.Join("testdata", name))
	if err != nil {
		t.Fatalf("read fixture: %v", err)
	}
	ar := txtar.Parse(data)
	for _, f := range ar.Files {
		if f.Name == "want.txt" {
			want = string(f.Data)
			continue
		}
		path := filepath.Join(dir, f.Name)
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			t.Fatalf("write fixture file %s: %v", f.Name, err)
		}
		files = append(files, path)
	}
	return files, want
}

func TestCompileUnits_BasicReturnEmitsExpectedIR(t *testing.T) {
	dir := t.TempDir()
	files, want := loadFixture(t, "basic_return.txtar", dir)

	res := driver.CompileUnits(driver.Options{
		Files:     files,
		OutputDir: dir,
		Emit:      []string{"llvm-ir"},
	})
	if res.ExitCode != 0 {
		t.Fatalf("ExitCode = %d, want 0; diagnostics: %v", res.ExitCode, res.Diagnostics)
	}

	ir, err := os.ReadFile(filepath.Join(dir, "main.ll"))
	if err != nil {
		t.Fatalf("read generated IR: %v", err)
	}
	if !strings.Contains(string(ir), strings.TrimSpace(want)) {
		t.Fatalf("generated IR missing %q, got:\n%s", strings.TrimSpace(want), ir)
	}
}

func TestCompileUnits_TypeErrorReturnsExitCodeOne(t *testing.T) {
	dir := t.TempDir()
	files, _ := loadFixture(t, "type_error.txtar", dir)

	res := driver.CompileUnits(driver.Options{
		Files:     files,
		OutputDir: dir,
		Emit:      []string{"llvm-ir"},
	})
	if res.ExitCode != 1 {
		t.Fatalf("ExitCode = %d, want 1 (type mismatch)", res.ExitCode)
	}
	if len(res.Diagnostics) == 0 {
		t.Fatal("expected at least one diagnostic for the type mismatch")
	}
}

func TestCompileUnits_NoFilesReturnsExitCodeOne(t *testing.T) {
	res := driver.CompileUnits(driver.Options{})
	if res.ExitCode != 1 {
		t.Fatalf("ExitCode = %d, want 1 for an empty file list", res.ExitCode)
	}
}
