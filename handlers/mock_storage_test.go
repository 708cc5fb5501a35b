package handlers

import (
	"context"
	"fmt"
	"io"
)

type mockStorage struct {
	UploadPosterFn  func(movieID uint, filename, contentType string) (string, error)
	MirrorPosterFn  func(movieID uint, imageURL string) (string, error)
	DeleteFileFn    func(objectPath string) error
	DeleteFileCalls []string
	UploadCallCount int
}

func newMockStorage() *mockStorage {
	return &mockStorage{
		DeleteFileCalls: []string{},
	}
}

func (m *mockStorage) UploadPoster(_ context.Context, movieID uint, file io.Reader, filename, contentType string) (string, error) {
	m.UploadCallCount++
	if _, err := io.Copy(io.Discard, file); err != nil {
		return "", err
	}
	if m.UploadPosterFn != nil {
		return m.UploadPosterFn(movieID, filename, contentType)
	}
	return fmt.Sprintf("https://storage.googleapis.com/test-bucket/posters/%d_%s", movieID, filename), nil
}

func (m *mockStorage) MirrorPoster(_ context.Context, movieID uint, imageURL string) (string, error) {
	m.UploadCallCount++
	if m.MirrorPosterFn != nil {
		return m.MirrorPosterFn(movieID, imageURL)
	}
	return fmt.Sprintf("https://storage.googleapis.com/test-bucket/posters/%d_mirrored.jpg", movieID), nil
}

func (m *mockStorage) DeleteFile(_ context.Context, objectPath string) error {
	m.DeleteFileCalls = append(m.DeleteFileCalls, objectPath)
	if m.DeleteFileFn != nil {
		return m.DeleteFileFn(objectPath)
	}
	return nil
}
