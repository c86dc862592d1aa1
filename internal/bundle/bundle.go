// Package bundle assembles the exportable file set for a generated project and packs it
// into a zip archive.
package bundle

import (
	"regexp"
	"strings"
)

const (
	FileProjectData = "project_data.json"
	FileReadme      = "README.md"
	FileIndex       = "index.html"
	FileStyles      = "styles.css"
	FileRobots      = "robots.txt"
	FilePackageJSON = "package.json"

	DefaultFolderName = "venture"
	archiveSuffix     = "_venture_build.zip"
)

// FileRecord is one exported file. Path is POSIX relative with no leading slash.
type FileRecord struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Bundle is an ordered set of files keyed by path.
type Bundle struct {
	Name  string
	files []FileRecord
	index map[string]int
}

func New(name string) *Bundle {
	return &Bundle{Name: name, index: make(map[string]int)}
}

// Add appends a record, or replaces the content of an existing record with the same path
// while keeping its position.
func (b *Bundle) Add(path, content string) {
	path = CleanPath(path)
	if i, ok := b.index[path]; ok {
		b.files[i].Content = content
		return
	}
	b.index[path] = len(b.files)
	b.files = append(b.files, FileRecord{Path: path, Content: content})
}

// Files returns a copy of the records in insertion order.
func (b *Bundle) Files() []FileRecord {
	out := make([]FileRecord, len(b.files))
	copy(out, b.files)
	return out
}

func (b *Bundle) Lookup(path string) (FileRecord, bool) {
	i, ok := b.index[CleanPath(path)]
	if !ok {
		return FileRecord{}, false
	}
	return b.files[i], true
}

func (b *Bundle) Len() int {
	return len(b.files)
}

// Size is the total content length in bytes.
func (b *Bundle) Size() int {
	n := 0
	for _, f := range b.files {
		n += len(f.Content)
	}
	return n
}

// Paths lists the record paths in order.
func (b *Bundle) Paths() []string {
	out := make([]string, len(b.files))
	for i, f := range b.files {
		out[i] = f.Path
	}
	return out
}

// RootFolder is the archive's top-level directory name.
func (b *Bundle) RootFolder() string {
	return NormalizeFolderName(b.Name)
}

// ArchiveFileName is the download file name for this bundle.
func (b *Bundle) ArchiveFileName() string {
	return ArchiveFileName(b.Name)
}

var nonAlphanumeric = regexp.MustCompile(`[^a-z0-9]`)

// NormalizeFolderName lowercases name and drops everything outside [a-z0-9].
func NormalizeFolderName(name string) string {
	folder := nonAlphanumeric.ReplaceAllString(strings.ToLower(name), "")
	if folder == "" {
		return DefaultFolderName
	}
	return folder
}

func ArchiveFileName(name string) string {
	return NormalizeFolderName(name) + archiveSuffix
}

// CleanPath converts separators to "/" and strips leading slashes and "./".
func CleanPath(path string) string {
	path = strings.ReplaceAll(path, "\\", "/")
	for {
		switch {
		case strings.HasPrefix(path, "/"):
			path = path[1:]
		case strings.HasPrefix(path, "./"):
			path = path[2:]
		default:
			return path
		}
	}
}
