// Command arkindex is a thin demonstration front end for the index builder:
// it parses flags/environment into indexbuild.Config, runs one build or
// verify pass, and reports the result. Workspace bootstrapping, config-file
// loading, and the downstream read API live in whatever invokes this
// package for real.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/rybkr/arkindex/internal/indexbuild"
	"github.com/rybkr/arkindex/internal/progress"
	"github.com/rybkr/arkindex/internal/symbols"
	"github.com/rybkr/arkindex/internal/termcolor"
	"github.com/rybkr/arkindex/internal/verify"
)

// Build-time variables set via -ldflags.
var (
	version = "dev"
	commit  = "unknown"
)

func main() {
	initLogger()
	indexbuild.ToolVersion = version

	root := newRootCmd()
	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var colorFlag string

	root := &cobra.Command{
		Use:           "arkindex",
		Short:         "Build and verify the file-backed repository index",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&colorFlag, "color", "auto", "color output: auto, always, never")

	root.AddCommand(newBuildCmd(&colorFlag))
	root.AddCommand(newVerifyCmd())
	root.AddCommand(newVersionCmd())
	return root
}

func newBuildCmd(colorFlag *string) *cobra.Command {
	var (
		arkDir           string
		includeGlobs     []string
		excludeGlobs     []string
		maxFileKB        int
		maxFiles         int
		respectGitignore bool
		followSymlinks   bool
		force            bool
		verbose          bool
		useGoAdapter     bool
	)

	cmd := &cobra.Command{
		Use:   "build [repo-root]",
		Short: "Build (or incrementally refresh) the index for a repository",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot := "."
			if len(args) == 1 {
				repoRoot = args[0]
			}
			absRoot, err := resolveRoot(repoRoot)
			if err != nil {
				return err
			}

			cw := termcolor.NewWriter(os.Stdout, resolveColorMode(*colorFlag))

			var adapters []symbols.Adapter
			if useGoAdapter {
				adapters = append(adapters, symbols.GoAdapter)
			}

			if len(includeGlobs) == 0 {
				includeGlobs = []string{"**/*"}
			}

			cfg := indexbuild.Config{
				Force:            force,
				ArkDir:           arkDir,
				RepoRoot:         absRoot,
				IncludeGlobs:     includeGlobs,
				ExcludeGlobs:     excludeGlobs,
				MaxFileKB:        maxFileKB,
				MaxFiles:         maxFiles,
				RespectGitignore: respectGitignore,
				FollowSymlinks:   followSymlinks,
				Adapters:         adapters,
				Verbose:          verbose,
				Log:              os.Stderr,
			}

			spin := progress.New("Indexing " + absRoot + "...")
			spin.Start()
			result := indexbuild.Build(cmd.Context(), cfg)
			spin.Stop()

			if !result.Success {
				slog.Error("index build failed", "code", result.Error.Code, "message", result.Error.Message)
				fmt.Fprintf(os.Stderr, "%s %s: %s\n", cw.Red("error:"), result.Error.Code, result.Error.Message)
				return result.Error
			}

			printBuildSummary(cw, result)
			return nil
		},
	}

	cmd.Flags().StringVar(&arkDir, "ark-dir", "", "artifact directory (default: <repo-root>/.ark/index)")
	cmd.Flags().StringArrayVar(&includeGlobs, "include", nil, "include glob (repeatable, default **/*)")
	cmd.Flags().StringArrayVar(&excludeGlobs, "exclude", nil, "exclude glob (repeatable)")
	cmd.Flags().IntVar(&maxFileKB, "max-file-kb", 512, "skip files larger than this many KiB")
	cmd.Flags().IntVar(&maxFiles, "max-files", 50000, "fail the build if candidate count exceeds this")
	cmd.Flags().BoolVar(&respectGitignore, "respect-gitignore", true, "honor .gitignore semantics during discovery")
	cmd.Flags().BoolVar(&followSymlinks, "follow-symlinks", false, "follow symlinks that resolve inside the repo root")
	cmd.Flags().BoolVar(&force, "force", false, "force a full re-index, ignoring any cached artifact set")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "print progress detail to stderr")
	cmd.Flags().BoolVar(&useGoAdapter, "go-ast-adapter", true, "use the go/parser adapter instead of the regex baseline for .go files")

	return cmd
}

func newVerifyCmd() *cobra.Command {
	var arkDir string

	cmd := &cobra.Command{
		Use:   "verify [repo-root]",
		Short: "Offline-check a previously built artifact set",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repoRoot := "."
			if len(args) == 1 {
				repoRoot = args[0]
			}
			absRoot, err := resolveRoot(repoRoot)
			if err != nil {
				return err
			}
			dir := arkDir
			if dir == "" {
				dir = filepath.Join(absRoot, ".ark", "index")
			}

			res := verify.Verify(dir)
			for _, w := range res.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
			for _, e := range res.Errors {
				fmt.Fprintf(os.Stderr, "error: %s\n", e)
			}
			if !res.Valid {
				return fmt.Errorf("index at %s failed verification (%d error(s))", dir, len(res.Errors))
			}
			fmt.Println("ok")
			return nil
		},
	}

	cmd.Flags().StringVar(&arkDir, "ark-dir", "", "artifact directory (default: <repo-root>/.ark/index)")
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the arkindex version",
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Printf("arkindex %s (%s)\n", version, commit)
			return nil
		},
	}
}

func resolveRoot(repoRoot string) (string, error) {
	abs, err := filepath.Abs(repoRoot)
	if err != nil {
		return "", fmt.Errorf("resolve repo root %q: %w", repoRoot, err)
	}
	return abs, nil
}

func resolveColorMode(flagVal string) termcolor.ColorMode {
	mode, err := termcolor.ParseColorMode(flagVal)
	if err != nil {
		return termcolor.ColorAuto
	}
	return mode
}

func initLogger() {
	level := slog.LevelInfo
	switch strings.ToLower(getEnv("ARK_LOG_LEVEL", "info")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if getEnv("ARK_LOG_FORMAT", "text") == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	slog.SetDefault(slog.New(handler))
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func printBuildSummary(cw *termcolor.Writer, result indexbuild.Result) {
	fmt.Println(cw.BuildStatusLine(result.Success, result.Stats.TotalFiles, result.Stats.TotalSymbols, result.Stats.FilesChanged, result.Stats.Incremental))
	for _, w := range result.Warnings {
		fmt.Println(cw.WarningLine(w.Code, w.File, w.Message))
	}
}
