// Package testmap detects test files across the supported language
// families, parses test names with framework-specific patterns, and assigns
// tier/tag metadata heuristically.
package testmap

import (
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/rybkr/arkindex/internal/discovery"
	"github.com/rybkr/arkindex/internal/fsutil"
)

// Tier is a coarse test-runtime classification.
type Tier string

const (
	TierFast        Tier = "fast"
	TierSlow        Tier = "slow"
	TierIntegration Tier = "integration"
)

// Entry is one detected test.
type Entry struct {
	TestID   string
	File     string
	Name     string // "" when unnamed
	Tags     []string
	Tier     Tier
	Packages []string
}

var testFileRes = []*regexp.Regexp{
	regexp.MustCompile(`\.test\.[jt]sx?$`),
	regexp.MustCompile(`\.spec\.[jt]sx?$`),
	regexp.MustCompile(`_test\.[jt]sx?$`),
	regexp.MustCompile(`_spec\.[jt]sx?$`),
	regexp.MustCompile(`_test\.py$`),
	regexp.MustCompile(`^test_.*\.py$`),
	regexp.MustCompile(`_test\.go$`),
	regexp.MustCompile(`_test\.rs$`),
	regexp.MustCompile(`^tests\.rs$`),
}

var testSegments = map[string]bool{
	"__tests__": true, "tests": true, "test": true, "spec": true,
	"specs": true, "__test__": true, "__spec__": true, "__specs__": true,
}

var nonPackageSegments = map[string]bool{
	"src": true, "lib": true, "pkg": true, "internal": true, "cmd": true,
	"__tests__": true, "tests": true, "test": true, "spec": true, "specs": true,
}

// IsTestFile reports whether rel names a detected test file.
func IsTestFile(rel string) bool {
	base := filepath.Base(rel)
	for _, re := range testFileRes {
		if re.MatchString(base) {
			return true
		}
	}
	for _, seg := range strings.Split(rel, "/") {
		if testSegments[seg] {
			return true
		}
	}
	return false
}

var (
	jestRe     = regexp.MustCompile(`(describe|it|test)\s*\(\s*['"` + "`" + `](.+?)['"` + "`" + `]`)
	pytestRe   = regexp.MustCompile(`^\s*def\s+(test_\w+)\s*\(`)
	goTestRe   = regexp.MustCompile(`^func\s+(Test\w+)\s*\(`)
	rustAttrRe = regexp.MustCompile(`^\s*#\[test\]\s*$`)
	rustFnRe   = regexp.MustCompile(`^\s*(?:pub\s+)?(async\s+)?fn\s+(\w+)\s*\(`)
)

// framework selects the parser by file extension/basename.
func framework(rel string) string {
	switch fsutil.LanguageOf(rel) {
	case fsutil.LangGo:
		return "go"
	case fsutil.LangRust:
		return "rust"
	case fsutil.LangPython:
		return "pytest"
	case fsutil.LangTypeScript, fsutil.LangJavaScript:
		return "jest"
	default:
		return ""
	}
}

type parsedTest struct {
	name string // "" if unnamed
	line int
}

func parseTests(framework, content string) []parsedTest {
	ls := strings.Split(content, "\n")
	var out []parsedTest
	switch framework {
	case "jest":
		for i, line := range ls {
			m := jestRe.FindStringSubmatch(line)
			if m != nil {
				out = append(out, parsedTest{name: m[2], line: i + 1})
			}
		}
	case "pytest":
		for i, line := range ls {
			m := pytestRe.FindStringSubmatch(line)
			if m != nil {
				out = append(out, parsedTest{name: m[1], line: i + 1})
			}
		}
	case "go":
		for i, line := range ls {
			m := goTestRe.FindStringSubmatch(line)
			if m != nil {
				out = append(out, parsedTest{name: m[1], line: i + 1})
			}
		}
	case "rust":
		for i, line := range ls {
			if !rustAttrRe.MatchString(line) {
				continue
			}
			for j := i + 1; j < len(ls); j++ {
				if strings.TrimSpace(ls[j]) == "" {
					continue
				}
				if m := rustFnRe.FindStringSubmatch(ls[j]); m != nil {
					out = append(out, parsedTest{name: m[2], line: j + 1})
				}
				break
			}
		}
	}
	return out
}

// Build scans the discovered files for test files and emits one or more
// Entry records per file.
func Build(files []discovery.File) []Entry {
	var out []Entry
	for _, f := range files {
		rel := fsutil.ToForwardSlashes(f.RelPath)
		if !IsTestFile(rel) {
			continue
		}
		out = append(out, buildFileEntries(rel, f.AbsPath)...)
	}
	return out
}

func buildFileEntries(rel, abs string) []Entry {
	data, err := os.ReadFile(abs) //nolint:gosec // G304: repo-rooted discovery path
	var content string
	if err == nil {
		content = string(data)
	}

	fw := framework(rel)
	var parsed []parsedTest
	if fw != "" && content != "" {
		parsed = parseTests(fw, content)
	}

	pkg := packageOf(rel)

	if len(parsed) == 0 {
		return []Entry{{
			TestID:   rel + "::unnamed_test:1",
			File:     rel,
			Tier:     tierOf(rel, ""),
			Tags:     tagsOf(rel, ""),
			Packages: pkg,
		}}
	}

	out := make([]Entry, 0, len(parsed))
	unnamedCounter := 0
	for _, pt := range parsed {
		var testID, name string
		if pt.name != "" {
			name = pt.name
			testID = rel + "::" + name
		} else {
			unnamedCounter++
			testID = rel + "::unnamed_test:" + itoa(unnamedCounter)
		}
		out = append(out, Entry{
			TestID:   testID,
			File:     rel,
			Name:     name,
			Tier:     tierOf(rel, name),
			Tags:     tagsOf(rel, name),
			Packages: pkg,
		})
	}
	return out
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	return string(buf[i:])
}

func tierOf(rel, name string) Tier {
	haystack := strings.ToLower(rel + " " + name)
	switch {
	case strings.Contains(haystack, "integration") || strings.Contains(haystack, "e2e"):
		return TierIntegration
	case strings.Contains(haystack, "slow") || strings.Contains(haystack, "benchmark") || strings.Contains(haystack, "perf"):
		return TierSlow
	default:
		return TierFast
	}
}

var knownTags = []string{"unit", "integration", "e2e", "smoke", "regression", "api", "ui", "component"}

func tagsOf(rel, name string) []string {
	haystack := strings.ToLower(rel + " " + name)
	var tags []string
	for _, tag := range knownTags {
		if strings.Contains(haystack, tag) {
			tags = append(tags, tag)
		}
	}
	return tags
}

func packageOf(rel string) []string {
	segs := strings.Split(rel, "/")
	for i, seg := range segs {
		if nonPackageSegments[seg] {
			continue
		}
		if strings.Contains(seg, ".") {
			continue // file-like, not a package segment
		}
		if seg == "node_modules" && i+1 < len(segs) {
			next := segs[i+1]
			if strings.HasPrefix(next, "@") && i+2 < len(segs) {
				return []string{next + "/" + segs[i+2]}
			}
			return []string{next}
		}
		return []string{seg}
	}
	return nil
}
