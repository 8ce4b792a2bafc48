package repomap

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

var codeownersPaths = []string{"CODEOWNERS", ".github/CODEOWNERS", "docs/CODEOWNERS"}

// parseCodeowners parses the first CODEOWNERS file found at one of the
// fixed candidate locations, mapping each pattern to its owners.
func parseCodeowners(repoRoot string) map[string][]string {
	var path string
	for _, cand := range codeownersPaths {
		p := filepath.Join(repoRoot, filepath.FromSlash(cand))
		if _, err := os.Stat(p); err == nil {
			path = p
			break
		}
	}
	if path == "" {
		return nil
	}

	f, err := os.Open(path) //nolint:gosec // G304: repo-rooted path
	if err != nil {
		return nil
	}
	defer f.Close()

	owners := map[string][]string{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) < 2 {
			continue
		}
		pattern := fields[0]
		var ownerList []string
		for _, f := range fields[1:] {
			if strings.HasPrefix(f, "@") {
				ownerList = append(ownerList, f)
			}
		}
		if len(ownerList) == 0 {
			continue
		}
		owners[pattern] = ownerList
	}
	if len(owners) == 0 {
		return nil
	}
	return owners
}
