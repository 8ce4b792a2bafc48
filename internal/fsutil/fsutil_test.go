package fsutil

import (
	"os"
	"path/filepath"
	"testing"
)

func TestHashFile_Empty(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "empty.txt")
	if err := os.WriteFile(path, nil, 0o644); err != nil {
		t.Fatal(err)
	}
	hash, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	want := "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"
	if hash != want {
		t.Errorf("HashFile(empty) = %q, want %q", hash, want)
	}
}

func TestHashFile_Content(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hello.txt")
	if err := os.WriteFile(path, []byte("hello\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	hash, err := HashFile(path)
	if err != nil {
		t.Fatalf("HashFile: %v", err)
	}
	want := "sha256:5891b5b522d5df086d0ff0b110fbd9d21bb4fc7163af34d08286a2e846f6be03"
	if hash != want {
		t.Errorf("HashFile(hello) = %q, want %q", hash, want)
	}
}

func TestIsBinary(t *testing.T) {
	dir := t.TempDir()

	textPath := filepath.Join(dir, "text.txt")
	os.WriteFile(textPath, []byte("plain text content"), 0o644)
	if IsBinary(textPath) {
		t.Error("text file reported as binary")
	}

	binPath := filepath.Join(dir, "bin.dat")
	os.WriteFile(binPath, []byte{0x00, 0x01, 0x02, 'h', 'i'}, 0o644)
	if !IsBinary(binPath) {
		t.Error("binary file not detected")
	}

	missing := filepath.Join(dir, "missing.dat")
	if IsBinary(missing) {
		t.Error("missing file should not be reported as binary")
	}
}

func TestSizeKB_RoundsUp(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "f.txt")
	os.WriteFile(path, make([]byte, 1), 0o644)
	kb, err := SizeKB(path)
	if err != nil {
		t.Fatal(err)
	}
	if kb != 1 {
		t.Errorf("SizeKB(1 byte) = %d, want 1", kb)
	}

	path2 := filepath.Join(dir, "f2.txt")
	os.WriteFile(path2, make([]byte, 1024), 0o644)
	kb2, err := SizeKB(path2)
	if err != nil {
		t.Fatal(err)
	}
	if kb2 != 1 {
		t.Errorf("SizeKB(1024 bytes) = %d, want 1", kb2)
	}

	path3 := filepath.Join(dir, "f3.txt")
	os.WriteFile(path3, make([]byte, 1025), 0o644)
	kb3, err := SizeKB(path3)
	if err != nil {
		t.Fatal(err)
	}
	if kb3 != 2 {
		t.Errorf("SizeKB(1025 bytes) = %d, want 2", kb3)
	}
}

func TestWithinRoot(t *testing.T) {
	tests := []struct {
		name string
		rel  string
		want bool
	}{
		{"simple", "src/main.go", true},
		{"dot", ".", false},
		{"traversal", "../escape.go", false},
		{"deep traversal", "a/../../escape.go", false},
		{"absolute", "/etc/passwd", false},
		{"inner dotdot cleaned by join", "sub/../file.go", true},
	}
	root := "/repo"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := WithinRoot(tt.rel, root); got != tt.want {
				t.Errorf("WithinRoot(%q, %q) = %v, want %v", tt.rel, root, got, tt.want)
			}
		})
	}
}

func TestToForwardSlashes_Idempotent(t *testing.T) {
	p := ToForwardSlashes("a/b/c")
	if p != "a/b/c" {
		t.Errorf("ToForwardSlashes = %q", p)
	}
	if ToForwardSlashes(p) != p {
		t.Error("ToForwardSlashes is not idempotent")
	}
}

func TestLanguageOf(t *testing.T) {
	tests := map[string]Language{
		"main.go":       LangGo,
		"index.ts":      LangTypeScript,
		"component.tsx": LangTypeScript,
		"script.js":     LangJavaScript,
		"lib.rs":        LangRust,
		"app.py":        LangPython,
		"README.md":     LangMarkdown,
		"data.unknown":  LangUnknown,
	}
	for path, want := range tests {
		if got := LanguageOf(path); got != want {
			t.Errorf("LanguageOf(%q) = %q, want %q", path, got, want)
		}
	}
}

func TestIsCodeFile(t *testing.T) {
	if !IsCodeFile("a.go") {
		t.Error("a.go should be a code file")
	}
	if IsCodeFile("a.json") {
		t.Error("a.json should not be a code file")
	}
}
