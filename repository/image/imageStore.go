// Package image stores book cover uploads on local disk.
package image

import (
	"bytes"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/MANUEL666GAMER/Biblioteca/util/apperr"
)

// PublicPrefix is the URL prefix the upload directory is served under.
const PublicPrefix = "/uploads"

var allowedExt = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

type Store interface {
	// Save writes the upload and returns its public path.
	Save(fh *multipart.FileHeader) (string, error)
	// Remove deletes a file previously returned by Save. Unknown paths are ignored.
	Remove(publicPath string) error
}

type diskStore struct {
	dir      string
	maxBytes int64
}

func NewDiskStore(dir string, maxBytes int64) (Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &diskStore{dir: dir, maxBytes: maxBytes}, nil
}

func (s *diskStore) Save(fh *multipart.FileHeader) (string, error) {
	if fh == nil {
		return "", apperr.New(apperr.ErrInvalidImage, "invalid image")
	}
	ext := strings.ToLower(filepath.Ext(fh.Filename))
	wantType, ok := allowedExt[ext]
	if !ok {
		return "", apperr.New(apperr.ErrInvalidImage, "invalid image")
	}
	if fh.Size > s.maxBytes {
		return "", apperr.New(apperr.ErrInvalidImage, "invalid image")
	}

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	// sniff the first bytes so a renamed file is not accepted
	head := make([]byte, 512)
	n, err := io.ReadFull(src, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", apperr.Wrap(apperr.ErrInvalidImage, err, "invalid image")
	}
	if http.DetectContentType(head[:n]) != wantType {
		return "", apperr.New(apperr.ErrInvalidImage, "invalid image")
	}

	name := uuid.NewString() + ext
	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}

	written, err := io.Copy(dst, io.MultiReader(bytes.NewReader(head[:n]), io.LimitReader(src, s.maxBytes)))
	closeErr := dst.Close()
	if err == nil {
		err = closeErr
	}
	if err == nil && written > s.maxBytes {
		err = apperr.New(apperr.ErrInvalidImage, "invalid image")
	}
	if err != nil {
		_ = os.Remove(filepath.Join(s.dir, name))
		return "", err
	}
	return PublicPrefix + "/" + name, nil
}

func (s *diskStore) Remove(publicPath string) error {
	if !strings.HasPrefix(publicPath, PublicPrefix+"/") {
		return nil
	}
	name := filepath.Base(publicPath)
	err := os.Remove(filepath.Join(s.dir, name))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
