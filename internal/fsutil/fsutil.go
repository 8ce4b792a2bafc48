// Package fsutil provides the low-level filesystem primitives the rest of
// the index pipeline builds on: symlink detection, content hashing,
// binary detection, and path normalization. Every function here is pure with
// respect to program state — failures are reported through return values,
// never panics, so a single unreadable file never aborts a build.
package fsutil

import (
	"crypto/sha256"
	"encoding/hex"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// sniffWindow is the number of leading bytes inspected by IsBinary.
const sniffWindow = 8 * 1024

// emptySHA256 is the known digest of the empty byte sequence, returned
// directly by HashFile for zero-length files so callers never pay for an
// open+read+close round trip on an empty file.
const emptySHA256 = "sha256:e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"

// IsSymlink reports whether path is a symbolic link. Any error (missing
// file, permission denied) is treated as "not a symlink" rather than
// propagated — discovery always skips a path it cannot stat anyway, and
// that happens one layer up with its own recorded reason.
func IsSymlink(path string) bool {
	info, err := os.Lstat(path)
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeSymlink != 0
}

// IsBinary reports whether path looks like a binary file, detected by the
// presence of a NUL byte anywhere in the first 8 KiB of content. Any read
// failure is reported as false (not binary) so the caller's normal file
// handling takes over and surfaces the real error.
func IsBinary(path string) bool {
	f, err := os.Open(path) //nolint:gosec // G304: path is produced by a repo-rooted walk
	if err != nil {
		return false
	}
	defer f.Close()

	buf := make([]byte, sniffWindow)
	n, err := io.ReadFull(f, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return false
	}
	for _, b := range buf[:n] {
		if b == 0 {
			return true
		}
	}
	return false
}

// SizeKB returns the size of path rounded up to the nearest kilobyte, so
// any non-empty file reports at least 1. Returns 0 and an error if path
// cannot be stat'd.
func SizeKB(path string) (int, error) {
	info, err := os.Stat(path)
	if err != nil {
		return 0, err
	}
	return bytesToKB(info.Size()), nil
}

// bytesToKB rounds a byte count up to whole kilobytes.
func bytesToKB(size int64) int {
	if size <= 0 {
		return 0
	}
	return int((size + 1023) / 1024)
}

// SizeKBFromBytes rounds an already-known byte count up to whole kilobytes,
// for callers that have already stat'd the file themselves.
func SizeKBFromBytes(size int64) int {
	return bytesToKB(size)
}

// WithinRoot reports whether rel, once joined onto root and cleaned, still
// resolves to a path inside root; root itself does not count as inside.
// It rejects absolute inputs outright and
// rejects any ".."-based escape, even one assembled from multiple
// "../../" segments that would otherwise cancel out textually.
func WithinRoot(rel, root string) bool {
	if rel == "" {
		return false
	}
	if filepath.IsAbs(rel) {
		return false
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return false
	}
	joined := filepath.Join(absRoot, rel)
	absRoot = filepath.Clean(absRoot)
	joined = filepath.Clean(joined)

	if joined == absRoot {
		return false
	}
	return strings.HasPrefix(joined, absRoot+string(filepath.Separator))
}

// ToForwardSlashes converts OS-specific path separators to '/'. It is
// idempotent: calling it on an already-normalized path is a no-op. This is
// the only path form ever written into an artifact.
func ToForwardSlashes(p string) string {
	if filepath.Separator == '/' {
		return p
	}
	return strings.ReplaceAll(p, string(filepath.Separator), "/")
}

// HashFile computes the "sha256:"-prefixed, lowercase-hex content digest of
// path. Empty files short-circuit to the well-known digest of the empty
// octet sequence without opening the file twice.
func HashFile(path string) (string, error) {
	info, err := os.Stat(path)
	if err == nil && info.Size() == 0 {
		return emptySHA256, nil
	}

	f, err := os.Open(path) //nolint:gosec // G304: path is produced by a repo-rooted walk
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return "sha256:" + hex.EncodeToString(h.Sum(nil)), nil
}

// Language classifies a file by its extension into one of the supported
// source families. Unrecognized extensions return "unknown".
type Language string

// Supported language families. These are the only values LanguageOf(path)
// returns besides LangUnknown.
const (
	LangTypeScript Language = "typescript"
	LangJavaScript Language = "javascript"
	LangPython     Language = "python"
	LangRust       Language = "rust"
	LangGo         Language = "go"
	LangJSON       Language = "json"
	LangYAML       Language = "yaml"
	LangMarkdown   Language = "markdown"
	LangTOML       Language = "toml"
	LangUnknown    Language = "unknown"
)

var extLanguages = map[string]Language{
	".ts":   LangTypeScript,
	".tsx":  LangTypeScript,
	".mts":  LangTypeScript,
	".cts":  LangTypeScript,
	".js":   LangJavaScript,
	".jsx":  LangJavaScript,
	".mjs":  LangJavaScript,
	".cjs":  LangJavaScript,
	".py":   LangPython,
	".pyi":  LangPython,
	".rs":   LangRust,
	".go":   LangGo,
	".json": LangJSON,
	".yml":  LangYAML,
	".yaml": LangYAML,
	".md":   LangMarkdown,
	".toml": LangTOML,
}

// LanguageOf classifies path by its file extension.
func LanguageOf(path string) Language {
	ext := strings.ToLower(filepath.Ext(path))
	if lang, ok := extLanguages[ext]; ok {
		return lang
	}
	return LangUnknown
}

// IsCodeFile reports whether LanguageOf(path) is one of the programming
// languages the symbol extractors understand (as opposed to data/markup
// formats like JSON, YAML, or Markdown, which are never code files for the
// purposes of module inference and key-file scoring).
func IsCodeFile(path string) bool {
	switch LanguageOf(path) {
	case LangTypeScript, LangJavaScript, LangPython, LangRust, LangGo:
		return true
	default:
		return false
	}
}
