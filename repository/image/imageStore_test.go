package image

import (
	"bytes"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

func fileHeader(t *testing.T, name string, content []byte) *multipart.FileHeader {
	t.Helper()

	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	fw, err := w.CreateFormFile("image", name)
	require.NoError(t, err)
	_, err = fw.Write(content)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	form, err := multipart.NewReader(&buf, w.Boundary()).ReadForm(1 << 20)
	require.NoError(t, err)
	t.Cleanup(func() { _ = form.RemoveAll() })
	return form.File["image"][0]
}

func TestSave_PNG(t *testing.T) {
	dir := t.TempDir()
	s, err := NewDiskStore(dir, 1024)
	require.NoError(t, err)

	p, err := s.Save(fileHeader(t, "cover.PNG", pngHeader))
	require.NoError(t, err)
	require.True(t, strings.HasPrefix(p, "/uploads/"))
	require.True(t, strings.HasSuffix(p, ".png"))

	got, err := os.ReadFile(filepath.Join(dir, filepath.Base(p)))
	require.NoError(t, err)
	require.Equal(t, pngHeader, got)

	require.NoError(t, s.Remove(p))
	_, err = os.Stat(filepath.Join(dir, filepath.Base(p)))
	require.True(t, os.IsNotExist(err))
}

func TestSave_Rejects(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), 16)
	require.NoError(t, err)

	cases := map[string]*multipart.FileHeader{
		"extension": fileHeader(t, "cover.gif", pngHeader),
		"content":   fileHeader(t, "cover.jpg", []byte("plain text, not a jpeg")),
		"too large": fileHeader(t, "cover.png", append(pngHeader, make([]byte, 32)...)),
	}
	for name, fh := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := s.Save(fh)
			require.Error(t, err)
			require.Equal(t, apperr.ErrInvalidImage, apperr.Code(err))
		})
	}

	_, err = s.Save(nil)
	require.Equal(t, apperr.ErrInvalidImage, apperr.Code(err))
}

func TestRemove_IgnoresForeignPaths(t *testing.T) {
	s, err := NewDiskStore(t.TempDir(), 16)
	require.NoError(t, err)
	require.NoError(t, s.Remove("/etc/passwd"))
	require.NoError(t, s.Remove("/uploads/missing.png"))
}
