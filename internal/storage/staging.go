package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"smartquiz/internal/domain"
	"smartquiz/internal/util"
)

// SourceFile is one uploaded document handed to the staging store by
// the request layer.
type SourceFile struct {
	Name    string
	Content io.Reader
}

// Staging copies uploaded source documents into per-submission
// directories the background job can read later. Layout:
// <root>/creator_<id>/<token>/<sanitized name>. Staged files are never
// mutated; cleanup is an operational concern outside this module.
type Staging struct {
	root string
}

// NewStaging creates a staging store rooted at dir.
func NewStaging(root string) *Staging {
	return &Staging{root: root}
}

// Stage copies the given files into a fresh submission directory for
// the creator and returns the directory plus the staged file paths in
// input order. Any I/O failure aborts with a CodeStorage error.
func (s *Staging) Stage(creatorID string, files []SourceFile) (string, []string, error) {
	token := util.NewULID()
	dir := filepath.Join(s.root, creatorDir(creatorID), token)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", nil, domain.NewStorageError("failed to create staging directory", err)
	}

	paths := make([]string, 0, len(files))
	for _, file := range files {
		dest := filepath.Join(dir, SanitizeFileName(file.Name))
		if err := copyFile(dest, file.Content); err != nil {
			return "", nil, domain.NewStorageError("failed to stage uploaded file", err).WithContext("file", file.Name)
		}
		paths = append(paths, dest)
	}
	return dir, paths, nil
}

// LatestWithSource scans the creator's submission directories from
// most recently modified to oldest and returns the first one holding
// at least one file the recognized predicate accepts, together with
// the recognized files. Fails with CodeNotFound when no directory
// qualifies.
func (s *Staging) LatestWithSource(creatorID string, recognized func(string) bool) (string, []string, error) {
	base := filepath.Join(s.root, creatorDir(creatorID))
	entries, err := os.ReadDir(base)
	if err != nil {
		return "", nil, domain.NewNotFoundError("no uploaded files found for this creator")
	}

	type submission struct {
		path    string
		modTime int64
	}
	subs := make([]submission, 0, len(entries))
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		subs = append(subs, submission{
			path:    filepath.Join(base, entry.Name()),
			modTime: info.ModTime().UnixNano(),
		})
	}
	if len(subs) == 0 {
		return "", nil, domain.NewNotFoundError("no upload folders found for this creator")
	}

	sort.Slice(subs, func(i, j int) bool { return subs[i].modTime > subs[j].modTime })

	for _, sub := range subs {
		files, err := listRecognized(sub.path, recognized)
		if err != nil {
			continue
		}
		if len(files) > 0 {
			return sub.path, files, nil
		}
	}
	return "", nil, domain.NewNotFoundError("no recognized source documents found for this creator")
}

func listRecognized(dir string, recognized func(string) bool) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, err
	}
	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if recognized(entry.Name()) {
			files = append(files, filepath.Join(dir, entry.Name()))
		}
	}
	sort.Strings(files)
	return files, nil
}

func copyFile(dest string, content io.Reader) error {
	out, err := os.Create(dest)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, content); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// SanitizeFileName strips any directory components and path-traversal
// sequences from an uploaded file name.
func SanitizeFileName(name string) string {
	name = filepath.Base(strings.ReplaceAll(name, "\\", "/"))
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "file"
	}
	return name
}

func creatorDir(creatorID string) string {
	return fmt.Sprintf("creator_%s", creatorID)
}
