package repomap

import (
	"bufio"
	"os"
	"strings"

	"github.com/rybkr/arkindex/internal/fsutil"
)

const maxLOC = 100000

// analyzeSource counts non-blank, non-comment lines (capped at maxLOC) and
// language-specific import statements in a code file. A read failure yields
// zero for both, which simply disqualifies the file from key-file scoring
// rather than aborting the build.
func analyzeSource(absPath string) (loc int, imports int) {
	f, err := os.Open(absPath) //nolint:gosec // G304: path comes from a repo-rooted discovery walk
	if err != nil {
		return 0, 0
	}
	defer f.Close()

	lang := fsutil.LanguageOf(absPath)
	inBlockComment := false

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		if loc >= maxLOC {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if lang != fsutil.LangPython && lang != fsutil.LangRust {
			if inBlockComment {
				if strings.Contains(line, "*/") {
					inBlockComment = false
				}
				continue
			}
			if strings.HasPrefix(line, "/*") {
				inBlockComment = !strings.Contains(line, "*/")
				continue
			}
		}

		if isCommentLine(lang, line) {
			continue
		}

		loc++
		if isImportLine(lang, line) {
			imports++
		}
	}
	return loc, imports
}

func isCommentLine(lang fsutil.Language, line string) bool {
	switch lang {
	case fsutil.LangPython:
		return strings.HasPrefix(line, "#")
	case fsutil.LangRust:
		return strings.HasPrefix(line, "//")
	default:
		return strings.HasPrefix(line, "//")
	}
}

func isImportLine(lang fsutil.Language, line string) bool {
	switch lang {
	case fsutil.LangGo:
		return strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "import(") ||
			(len(line) >= 2 && strings.HasPrefix(line, `"`) && strings.HasSuffix(line, `"`))
	case fsutil.LangTypeScript, fsutil.LangJavaScript:
		return strings.HasPrefix(line, "import ") || strings.Contains(line, "require(")
	case fsutil.LangPython:
		return strings.HasPrefix(line, "import ") || strings.HasPrefix(line, "from ")
	case fsutil.LangRust:
		return strings.HasPrefix(line, "use ")
	default:
		return false
	}
}
