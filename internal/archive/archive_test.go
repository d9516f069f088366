package archive

import (
	"archive/zip"
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/bcnelson/cicd-wizard/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBytes(t *testing.T) {
	files := []domain.GeneratedFile{
		{Filename: "/.github/workflows/main.yml", Content: "name: ci\n"},
		{Filename: "README.md", Content: "# 🚀 Pipeline\n"},
	}

	data, err := Bytes(files)
	require.NoError(t, err)

	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	require.NoError(t, err)
	require.Len(t, zr.File, 2)

	got := map[string]string{}
	for _, f := range zr.File {
		rc, err := f.Open()
		require.NoError(t, err)
		body, err := io.ReadAll(rc)
		require.NoError(t, err)
		require.NoError(t, rc.Close())
		got[f.Name] = string(body)
	}

	assert.Equal(t, map[string]string{
		"cicd-templates/.github/workflows/main.yml": "name: ci\n",
		"cicd-templates/README.md":                  "# 🚀 Pipeline\n",
	}, got)
}

func TestBytesRequiresFiles(t *testing.T) {
	_, err := Bytes(nil)
	assert.True(t, errors.Is(err, domain.ErrNoResult))
}

func TestBytesRejectsEscapingFilenames(t *testing.T) {
	for _, name := range []string{"../../evil.sh", "/../../../etc/cron.d/x", `..\evil.ps1`} {
		t.Run(name, func(t *testing.T) {
			files := []domain.GeneratedFile{
				{Filename: "README.md", Content: "ok"},
				{Filename: name, Content: "#!/bin/sh"},
			}
			data, err := Bytes(files)
			assert.True(t, errors.Is(err, domain.ErrMalformedResponse), "err = %v", err)
			assert.Nil(t, data)
		})
	}
}

func TestObjectKey(t *testing.T) {
	key, err := ObjectKey("sess", "gen")
	require.NoError(t, err)
	assert.Equal(t, "sess/gen/cicd-templates.zip", key)

	_, err = ObjectKey("", "gen")
	assert.True(t, errors.Is(err, domain.ErrInvalidInput))
}

func TestNewS3ExporterDisabled(t *testing.T) {
	_, err := NewS3Exporter(S3Config{})
	assert.True(t, errors.Is(err, domain.ErrArchiveDisabled))

	_, err = NewS3Exporter(S3Config{Endpoint: "localhost:9000", Bucket: "b"})
	assert.Error(t, err)
}
