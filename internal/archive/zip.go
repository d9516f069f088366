// Package archive packages generated files for download and optionally
// uploads the package to S3-compatible storage.
package archive

import (
	"archive/zip"
	"bytes"
	"fmt"
	"io"
	"path"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/bcnelson/cicd-wizard/internal/wizard"
)

const (
	// Folder is the top-level directory inside the archive.
	Folder = "cicd-templates"
	// FileName is the name offered to the user when downloading.
	FileName = Folder + ".zip"
	// ContentType is the media type of the archive.
	ContentType = "application/zip"
)

// Write streams a zip of files to w. Each file is stored under Folder at its
// filename with one leading "/" removed. Nothing is written when any filename
// would land outside Folder.
func Write(w io.Writer, files []domain.GeneratedFile) error {
	if len(files) == 0 {
		return domain.ErrNoResult
	}

	for _, f := range files {
		if !wizard.IsLocalFilename(f.Filename) {
			return fmt.Errorf("%w: %q is not a relative path", domain.ErrMalformedResponse, f.Filename)
		}
	}

	zw := zip.NewWriter(w)
	for _, f := range files {
		name := path.Join(Folder, wizard.CleanFilename(f.Filename))
		fw, err := zw.Create(name)
		if err != nil {
			return fmt.Errorf("adding %s: %w", name, err)
		}
		if _, err := io.WriteString(fw, f.Content); err != nil {
			return fmt.Errorf("writing %s: %w", name, err)
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("closing archive: %w", err)
	}
	return nil
}

// Bytes returns the zip produced by Write.
func Bytes(files []domain.GeneratedFile) ([]byte, error) {
	var buf bytes.Buffer
	if err := Write(&buf, files); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
