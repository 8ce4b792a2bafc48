package indexbuild

import (
	"time"

	"github.com/rybkr/arkindex/internal/gitinfo"
	"github.com/rybkr/arkindex/internal/ledger"
	"github.com/rybkr/arkindex/internal/repomap"
	"github.com/rybkr/arkindex/internal/testmap"
	"github.com/rybkr/arkindex/internal/writer"
)

func toArtifactSet(cfg Config, gi gitinfo.Info, rm repomap.RepoMap, tm []testmap.Entry, l ledger.Ledger, syms []writer.SymbolDoc, adaptersUsed []string, warnings []writer.Warning, status string, filesChanged int, incremental bool) writer.ArtifactSet {
	var gitCommit *string
	if gi.Commit != "" {
		gitCommit = &gi.Commit
	}

	return writer.ArtifactSet{
		FileHashes: toFileHashesDoc(l, gitCommit),
		Symbols:    syms,
		RepoMap:    toRepoMapDoc(rm),
		TestMap:    toTestMapDoc(tm),
		Meta: writer.MetaDoc{
			SchemaVersion: schemaVersion1,
			ToolVersion:   ToolVersion,
			Timestamp:     time.Now().UTC().Format(time.RFC3339),
			RepoRoot:      cfg.RepoRoot,
			GitCommit:     gitCommit,
			Status:        status,
			Stats: writer.Stats{
				TotalFiles:   len(l),
				TotalSymbols: len(syms),
				Incremental:  incremental,
				FilesChanged: filesChanged,
			},
			Config:       configSnapshot(cfg),
			AdaptersUsed: orEmpty(adaptersUsed),
			Warnings:     orEmptyWarnings(warnings),
		},
	}
}

func toFileHashesDoc(l ledger.Ledger, gitCommit *string) writer.FileHashesDoc {
	files := make(map[string]writer.FileHashRecord, len(l))
	for path, entry := range l {
		files[path] = writer.FileHashRecord{
			Hash:  entry.Hash,
			MTime: entry.MTime.UTC().Format(time.RFC3339),
			Size:  entry.Size,
		}
	}
	return writer.FileHashesDoc{
		SchemaVersion: schemaVersion1,
		GitCommit:     gitCommit,
		Files:         files,
	}
}

func toRepoMapDoc(rm repomap.RepoMap) writer.RepoMapDoc {
	modules := make([]writer.ModuleDoc, 0, len(rm.Modules))
	for _, m := range rm.Modules {
		modules = append(modules, toModuleDoc(m))
	}

	return writer.RepoMapDoc{
		SchemaVersion: repoMapSchemaVersion,
		Modules:       modules,
		Owners:        rm.Owners,
		BuildCommands: writer.BuildCommandsDoc{
			Build:    rm.BuildCommands.Build,
			Test:     rm.BuildCommands.Test,
			TestFull: rm.BuildCommands.TestFull,
			Lint:     rm.BuildCommands.Lint,
		},
		Overview: writer.OverviewDoc{
			TotalFiles:     rm.Overview.TotalFiles,
			TotalCodeFiles: rm.Overview.TotalCodeFiles,
			Languages:      rm.Overview.LanguageHist,
			TopDirectories: toDirCountDocs(rm.Overview.TopDirectories),
		},
	}
}

func toModuleDoc(m repomap.Module) writer.ModuleDoc {
	doc := writer.ModuleDoc{
		Path:        m.Path,
		Entrypoints: toEntrypointDocs(m.Entrypoints),
		KeyFiles:    orEmpty(m.KeyFiles),
	}
	if m.Description != "" {
		desc := m.Description
		doc.Description = &desc
	}
	for _, sd := range m.SubDirectories {
		doc.SubDirectories = append(doc.SubDirectories, toSubDirectoryDoc(sd))
	}
	return doc
}

func toSubDirectoryDoc(sd repomap.SubDirectory) writer.SubDirectoryDoc {
	doc := writer.SubDirectoryDoc{
		Name:          sd.Name,
		Path:          sd.Path,
		FileCount:     sd.FileCount,
		CodeFileCount: sd.CodeFileCount,
		KeyFiles:      orEmpty(sd.KeyFiles),
	}
	if sd.Description != "" {
		desc := sd.Description
		doc.Description = &desc
	}
	return doc
}

func toEntrypointDocs(eps []repomap.Entrypoint) []writer.EntrypointDoc {
	out := make([]writer.EntrypointDoc, 0, len(eps))
	for _, e := range eps {
		doc := writer.EntrypointDoc{Path: e.Path, Type: e.Type}
		if e.Description != "" {
			desc := e.Description
			doc.Description = &desc
		}
		out = append(out, doc)
	}
	return out
}

func toDirCountDocs(dcs []repomap.DirCount) []writer.DirCountDoc {
	out := make([]writer.DirCountDoc, 0, len(dcs))
	for _, d := range dcs {
		out = append(out, writer.DirCountDoc{Path: d.Path, FileCount: d.FileCount})
	}
	return out
}

func toTestMapDoc(entries []testmap.Entry) writer.TestMapDoc {
	docs := make([]writer.TestEntryDoc, 0, len(entries))
	for _, e := range entries {
		doc := writer.TestEntryDoc{
			TestID:   e.TestID,
			File:     e.File,
			Tags:     orEmpty(e.Tags),
			Tier:     string(e.Tier),
			Packages: orEmpty(e.Packages),
		}
		if e.Name != "" {
			name := e.Name
			doc.Name = &name
		}
		docs = append(docs, doc)
	}
	return writer.TestMapDoc{SchemaVersion: schemaVersion1, Tests: docs}
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}

func orEmptyWarnings(w []writer.Warning) []writer.Warning {
	if w == nil {
		return []writer.Warning{}
	}
	return w
}
