package driver

import (
	"os"
	"path/filepath"
	"testing"

	"lumen/internal/diag"
	"lumen/internal/source"
)

func TestSessionExitCode(t *testing.T) {
	s := NewSession()
	if got := s.ExitCode(); got != 0 {
		t.Errorf("fresh session exit code = %d", got)
	}

	s.Diags.Submit(diag.MustFinish(diag.NewWarning("w")))
	if got := s.ExitCode(); got != 0 {
		t.Errorf("warnings-only exit code = %d", got)
	}

	s.Diags.Submit(diag.MustFinish(diag.NewError("e")))
	if got := s.ExitCode(); got != 1 {
		t.Errorf("error exit code = %d", got)
	}

	s.Diags.Submit(diag.MustFinish(diag.NewBug("ice")))
	if got := s.ExitCode(); got != 2 {
		t.Errorf("bug exit code = %d", got)
	}
}

func TestLoadFileNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "in.txt")
	raw := append([]byte{0xEF, 0xBB, 0xBF}, []byte("a\r\nb\n")...)
	if err := os.WriteFile(path, raw, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewSession()
	id, err := s.LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	f, ok := s.Files.Get(id)
	if !ok {
		t.Fatal("file not registered")
	}
	if string(f.Content) != "a\nb\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&source.FileHadBOM == 0 || f.Flags&source.FileNormalizedCRLF == 0 {
		t.Errorf("flags = %b", f.Flags)
	}

	if _, err := s.LoadFile(filepath.Join(dir, "missing.txt")); err == nil {
		t.Error("missing file did not fail")
	}
}

func TestAddSource(t *testing.T) {
	s := NewSession()
	id := s.AddSource("stdin", []byte("x\r\ny\n"))
	f, ok := s.Files.Get(id)
	if !ok {
		t.Fatal("virtual file not registered")
	}
	if string(f.Content) != "x\ny\n" {
		t.Errorf("content = %q", f.Content)
	}
	if f.Flags&source.FileVirtual == 0 {
		t.Error("FileVirtual not set")
	}
}
