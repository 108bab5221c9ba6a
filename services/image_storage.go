package services

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ImageStorage is the image-storage collaborator. The core only ever carries
// the returned URL strings and never inspects image content.
type ImageStorage interface {
	Store(filename string, r io.Reader) (string, error)
}

// LocalImageStorage writes uploads to a directory served statically under
// baseURL.
type LocalImageStorage struct {
	dir     string
	baseURL string
}

func NewLocalImageStorage(dir, baseURL string) (*LocalImageStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalImageStorage{dir: dir, baseURL: baseURL}, nil
}

func (s *LocalImageStorage) Store(filename string, r io.Reader) (string, error) {
	name := primitive.NewObjectID().Hex() + filepath.Ext(filename)

	f, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		return "", fmt.Errorf("store image: %w", err)
	}
	return s.baseURL + "/" + name, nil
}
