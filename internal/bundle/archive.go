package bundle

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	apperrors "venture-builder/internal/common/errors"
)

// Archive is an in-memory zip ready for download.
type Archive struct {
	FileName string
	Data     []byte
}

// archiveModTime pins entry timestamps so identical bundles produce identical archives.
var archiveModTime = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

// WriteArchive writes every record under "{root}/" into a zip stream.
func WriteArchive(b *Bundle, w io.Writer) error {
	zw := zip.NewWriter(w)
	root := b.RootFolder()

	for _, f := range b.files {
		header := &zip.FileHeader{
			Name:     root + "/" + f.Path,
			Method:   zip.Deflate,
			Modified: archiveModTime,
		}
		entry, err := zw.CreateHeader(header)
		if err != nil {
			return apperrors.NewArchiveGenerationFailedError(fmt.Errorf("create %s: %w", f.Path, err))
		}
		if _, err := io.WriteString(entry, f.Content); err != nil {
			return apperrors.NewArchiveGenerationFailedError(fmt.Errorf("write %s: %w", f.Path, err))
		}
	}

	if err := zw.Close(); err != nil {
		return apperrors.NewArchiveGenerationFailedError(err)
	}
	return nil
}

// BuildArchive packs the bundle in memory.
func BuildArchive(b *Bundle) (*Archive, error) {
	var buf bytes.Buffer
	if err := WriteArchive(b, &buf); err != nil {
		return nil, err
	}
	return &Archive{FileName: b.ArchiveFileName(), Data: buf.Bytes()}, nil
}

// ReadArchive returns the records of a zip produced by WriteArchive with the root folder
// stripped, in archive order.
func ReadArchive(data []byte) ([]FileRecord, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open archive: %w", err)
	}

	records := make([]FileRecord, 0, len(zr.File))
	for _, f := range zr.File {
		if f.FileInfo().IsDir() {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return nil, fmt.Errorf("open %s: %w", f.Name, err)
		}
		body, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f.Name, err)
		}

		path := f.Name
		if i := strings.IndexByte(path, '/'); i >= 0 {
			path = path[i+1:]
		}
		records = append(records, FileRecord{Path: path, Content: string(body)})
	}
	return records, nil
}

// SaveArchive writes the archive into dir under its download name and returns the full path.
// The archive is staged in a temp file that is always closed, and removed unless the final
// rename succeeds.
func SaveArchive(b *Bundle, dir string) (path string, err error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", apperrors.NewArchiveGenerationFailedError(err)
	}

	tmp, err := os.CreateTemp(dir, ".export-*.zip")
	if err != nil {
		return "", apperrors.NewArchiveGenerationFailedError(err)
	}
	tmpName := tmp.Name()
	defer func() {
		if err != nil {
			os.Remove(tmpName)
		}
	}()

	if werr := WriteArchive(b, tmp); werr != nil {
		tmp.Close()
		return "", werr
	}
	if cerr := tmp.Close(); cerr != nil {
		return "", apperrors.NewArchiveGenerationFailedError(cerr)
	}

	path = filepath.Join(dir, b.ArchiveFileName())
	if rerr := os.Rename(tmpName, path); rerr != nil {
		return "", apperrors.NewArchiveGenerationFailedError(rerr)
	}
	return path, nil
}
