// Package verify offline-checks an existing artifact set without
// re-indexing: presence, parseability, schema major version, and coarse
// cross-file counts.
package verify

import (
	"os"
	"path/filepath"
	"strings"

	json "github.com/goccy/go-json"

	"github.com/rybkr/arkindex/internal/writer"
)

// Result is the outcome of Verify.
type Result struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

var requiredArtifacts = []string{
	writer.FileHashesName,
	writer.SymbolsName,
	writer.RepoMapName,
	writer.TestMapName,
	writer.MetaName,
}

const supportedSchemaMajor = "1"

// Verify checks the artifact directory at dir.
func Verify(dir string) Result {
	var res Result

	present := map[string][]byte{}
	for _, name := range requiredArtifacts {
		data, err := os.ReadFile(filepath.Join(dir, name)) //nolint:gosec // G304: caller-supplied artifact directory
		if err != nil {
			res.Errors = append(res.Errors, name+": missing")
			continue
		}
		present[name] = data
	}
	if len(res.Errors) > 0 {
		return res
	}

	var meta writer.MetaDoc
	if err := json.Unmarshal(present[writer.MetaName], &meta); err != nil {
		res.Errors = append(res.Errors, writer.MetaName+": not parseable: "+err.Error())
	}

	var fileHashes writer.FileHashesDoc
	if err := json.Unmarshal(present[writer.FileHashesName], &fileHashes); err != nil {
		res.Errors = append(res.Errors, writer.FileHashesName+": not parseable: "+err.Error())
	}

	var repoMap writer.RepoMapDoc
	if err := json.Unmarshal(present[writer.RepoMapName], &repoMap); err != nil {
		res.Errors = append(res.Errors, writer.RepoMapName+": not parseable: "+err.Error())
	}

	var testMap writer.TestMapDoc
	if err := json.Unmarshal(present[writer.TestMapName], &testMap); err != nil {
		res.Errors = append(res.Errors, writer.TestMapName+": not parseable: "+err.Error())
	}

	symbolLines := nonEmptyLines(present[writer.SymbolsName])
	for _, line := range symbolLines {
		var sym writer.SymbolDoc
		if err := json.Unmarshal([]byte(line), &sym); err != nil {
			res.Errors = append(res.Errors, writer.SymbolsName+": not parseable: "+err.Error())
			break
		}
	}

	if len(res.Errors) > 0 {
		return res
	}

	major := strings.SplitN(meta.SchemaVersion, ".", 2)[0]
	if major != supportedSchemaMajor {
		res.Errors = append(res.Errors, "meta.schema_version major "+major+" unsupported (want "+supportedSchemaMajor+")")
	}

	if meta.Stats.TotalFiles != len(fileHashes.Files) {
		res.Warnings = append(res.Warnings, "meta.stats.total_files does not match file_hashes.files count")
	}
	if meta.Stats.TotalSymbols != len(symbolLines) {
		res.Warnings = append(res.Warnings, "meta.stats.total_symbols does not match symbols.jsonl line count")
	}

	res.Valid = len(res.Errors) == 0
	return res
}

func nonEmptyLines(data []byte) []string {
	var out []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			out = append(out, line)
		}
	}
	return out
}
