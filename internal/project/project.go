// Package project provides ProjectRoot layout helpers: locating the
// Procedures/ and Context/ subtrees spec.md §3 defines, listing their
// indexable files in the deterministic order spec.md §4.5's insertion
// order invariant requires, and excluding Context/Prompt/ from indexing.
// Grounded on the teacher's internal/scanner package's directory-walk
// shape, generalized from an arbitrary-codebase file walk to this
// project's fixed two-subtree layout.
package project

import (
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/phazer-schmid/phasergun/internal/chunk"
	"github.com/phazer-schmid/phasergun/internal/perrors"
)

const (
	ProceduresSubdir = "Procedures"
	ContextSubdir    = "Context"
	PromptSubdir     = "Prompt"
)

// ContextSubfolders lists the closed set of Context/ subfolders spec.md §3
// names, excluding Prompt/.
var ContextSubfolders = []chunk.ContextSubfolder{
	chunk.SubfolderInitiation,
	chunk.SubfolderOngoing,
	chunk.SubfolderPredicates,
	chunk.SubfolderRegulatoryStrategy,
	chunk.SubfolderGeneral,
}

// File is a single indexable document location.
type File struct {
	Path      string
	FileName  string
	Subfolder chunk.ContextSubfolder // empty for procedures
}

// ProceduresDir returns <root>/Procedures.
func ProceduresDir(root string) string {
	return filepath.Join(root, ProceduresSubdir)
}

// ContextDir returns <root>/Context.
func ContextDir(root string) string {
	return filepath.Join(root, ContextSubdir)
}

// ListProcedures walks Procedures/ and returns every file, sorted by
// FileName in byte-lexicographic order (spec.md §4.5's insertion order
// invariant). A missing Procedures/ directory is legal and yields an empty
// slice.
func ListProcedures(root string) ([]File, error) {
	dir := ProceduresDir(root)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []File
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		files = append(files, File{Path: path, FileName: d.Name()})
		return nil
	})
	if err != nil {
		return nil, perrors.IOError("walk "+dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].FileName < files[j].FileName })
	return files, nil
}

// ListContext walks Context/, skipping Prompt/ entirely, and returns every
// file, sorted by FileName in byte-lexicographic order across all
// subfolders. A missing Context/ directory is legal and yields an empty
// slice.
func ListContext(root string) ([]File, error) {
	dir := ContextDir(root)
	if _, err := os.Stat(dir); os.IsNotExist(err) {
		return nil, nil
	}

	var files []File
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(dir, path)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}

		segments := strings.SplitN(filepath.ToSlash(rel), "/", 2)
		if segments[0] == PromptSubdir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}

		files = append(files, File{
			Path:      path,
			FileName:  d.Name(),
			Subfolder: chunk.ContextSubfolder(segments[0]),
		})
		return nil
	})
	if err != nil {
		return nil, perrors.IOError("walk "+dir, err)
	}

	sort.Slice(files, func(i, j int) bool { return files[i].FileName < files[j].FileName })
	return files, nil
}
