package utils

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// LocalUploader writes images under Root and serves them from BaseURL.
// Used in development when R2 credentials are absent.
type LocalUploader struct {
	Root    string
	BaseURL string
}

// EnsureUploadDir creates the uploads directory if it doesn't exist
func (l *LocalUploader) EnsureUploadDir() error {
	return os.MkdirAll(l.Root, os.ModePerm)
}

func (l *LocalUploader) UploadImage(_ context.Context, fileHeader *multipart.FileHeader, prefix, owner string) (string, error) {
	contentType := fileHeader.Header.Get("Content-Type")
	ext, ok := allowedImageTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image type %q", contentType)
	}

	rel := filepath.Join(prefix, owner, uuid.NewString()+ext)
	if err := SaveFile(fileHeader, filepath.Join(l.Root, rel)); err != nil {
		return "", err
	}
	return strings.TrimRight(l.BaseURL, "/") + "/" + filepath.ToSlash(rel), nil
}

// SaveFile saves the uploaded file to the given destination path
func SaveFile(fileHeader *multipart.FileHeader, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), os.ModePerm); err != nil {
		return err
	}

	file, err := fileHeader.Open()
	if err != nil {
		return err
	}
	defer file.Close()

	dst, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer dst.Close()

	_, err = io.Copy(dst, file)
	return err
}
