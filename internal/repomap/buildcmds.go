package repomap

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"regexp"

	"github.com/pelletier/go-toml/v2"
)

// BuildCommands is the canonical set of commands detected for a repository,
// with only the fields a given manifest actually populates set.
type BuildCommands struct {
	Build    string
	Test     string
	TestFull string
	Lint     string
}

var makefileTargetRe = regexp.MustCompile(`^([A-Za-z0-9_.-]+)\s*:`)

// detectBuildCommands inspects repoRoot for the first manifest in the fixed
// priority order and returns the commands it implies.
func detectBuildCommands(repoRoot string) BuildCommands {
	if bc, ok := fromMakefile(repoRoot); ok {
		return bc
	}
	if bc, ok := fromPackageJSON(repoRoot); ok {
		return bc
	}
	if bc, ok := fromCargoToml(repoRoot); ok {
		return bc
	}
	if bc, ok := fromPyproject(repoRoot); ok {
		return bc
	}
	if bc, ok := fromSetupPy(repoRoot); ok {
		return bc
	}
	if bc, ok := fromGoMod(repoRoot); ok {
		return bc
	}
	return BuildCommands{}
}

func fromMakefile(repoRoot string) (BuildCommands, bool) {
	f, err := os.Open(filepath.Join(repoRoot, "Makefile")) //nolint:gosec // G304: fixed repo-relative name
	if err != nil {
		return BuildCommands{}, false
	}
	defer f.Close()

	targets := map[string]bool{}
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		m := makefileTargetRe.FindStringSubmatch(scanner.Text())
		if m != nil {
			targets[m[1]] = true
		}
	}

	var bc BuildCommands
	switch {
	case targets["build"]:
		bc.Build = "make build"
	case targets["all"]:
		bc.Build = "make all"
	}
	if targets["test"] {
		bc.Test = "make test"
	}
	switch {
	case targets["test-all"]:
		bc.TestFull = "make test-all"
	case targets["test-full"]:
		bc.TestFull = "make test-full"
	case targets["test"]:
		bc.TestFull = "make test"
	}
	return bc, true
}

type packageJSON struct {
	Scripts map[string]string `json:"scripts"`
}

func fromPackageJSON(repoRoot string) (BuildCommands, bool) {
	data, err := os.ReadFile(filepath.Join(repoRoot, "package.json")) //nolint:gosec // G304: fixed repo-relative name
	if err != nil {
		return BuildCommands{}, false
	}
	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return BuildCommands{}, true
	}

	var bc BuildCommands
	if _, ok := pkg.Scripts["build"]; ok {
		bc.Build = "npm run build"
	}
	if _, ok := pkg.Scripts["test"]; ok {
		bc.Test = "npm run test"
	}
	for _, key := range []string{"test:full", "test:all", "test:ci", "test"} {
		if _, ok := pkg.Scripts[key]; ok {
			bc.TestFull = "npm run " + key
			break
		}
	}
	return bc, true
}

// cargoManifest is the slice of Cargo.toml this package cares about: whether
// the manifest declares a workspace, which changes the cargo invocations.
type cargoManifest struct {
	Workspace *struct {
		Members []string `toml:"members"`
	} `toml:"workspace"`
}

func fromCargoToml(repoRoot string) (BuildCommands, bool) {
	data, err := os.ReadFile(filepath.Join(repoRoot, "Cargo.toml")) //nolint:gosec // G304: fixed repo-relative name
	if err != nil {
		return BuildCommands{}, false
	}
	var manifest cargoManifest
	// A malformed Cargo.toml still implies the plain cargo commands.
	_ = toml.Unmarshal(data, &manifest)

	if manifest.Workspace != nil {
		return BuildCommands{
			Build:    "cargo build --workspace",
			Test:     "cargo test --workspace",
			TestFull: "cargo test --workspace --all-features",
			Lint:     "cargo clippy --workspace",
		}, true
	}
	return BuildCommands{
		Build:    "cargo build",
		Test:     "cargo test",
		TestFull: "cargo test --all-features",
		Lint:     "cargo clippy",
	}, true
}

// pyprojectManifest carries the tool tables that change how a Python
// project is installed and tested.
type pyprojectManifest struct {
	Tool struct {
		Poetry map[string]any `toml:"poetry"`
	} `toml:"tool"`
}

func fromPyproject(repoRoot string) (BuildCommands, bool) {
	data, err := os.ReadFile(filepath.Join(repoRoot, "pyproject.toml")) //nolint:gosec // G304: fixed repo-relative name
	if err != nil {
		return BuildCommands{}, false
	}
	var manifest pyprojectManifest
	_ = toml.Unmarshal(data, &manifest)

	if len(manifest.Tool.Poetry) > 0 {
		return BuildCommands{
			Build: "poetry install",
			Test:  "poetry run pytest",
		}, true
	}
	return BuildCommands{
		Build: "pip install -e .",
		Test:  "pytest",
	}, true
}

func fromSetupPy(repoRoot string) (BuildCommands, bool) {
	if _, err := os.Stat(filepath.Join(repoRoot, "setup.py")); err != nil {
		return BuildCommands{}, false
	}
	return BuildCommands{
		Build: "pip install -e .",
		Test:  "pytest",
	}, true
}

func fromGoMod(repoRoot string) (BuildCommands, bool) {
	if _, err := os.Stat(filepath.Join(repoRoot, "go.mod")); err != nil {
		return BuildCommands{}, false
	}
	return BuildCommands{
		Build:    "go build ./...",
		Test:     "go test ./...",
		TestFull: "go test -race ./...",
		Lint:     "go vet ./...",
	}, true
}
