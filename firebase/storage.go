package firebase

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"reelfake-backend/logger"

	"cloud.google.com/go/storage"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StorageClient abstracts poster storage for dependency injection and testing.
type StorageClient interface {
	UploadPoster(ctx context.Context, movieID uint, file io.Reader, filename, contentType string) (string, error)
	MirrorPoster(ctx context.Context, movieID uint, imageURL string) (string, error)
	DeleteFile(ctx context.Context, objectPath string) error
}

// FirebaseStorageClient writes posters to the FIREBASE_STORAGE_BUCKET bucket.
type FirebaseStorageClient struct {
	httpClient *http.Client
}

func NewStorageClient() StorageClient {
	return &FirebaseStorageClient{httpClient: &http.Client{Timeout: 30 * time.Second}}
}

func (f *FirebaseStorageClient) bucket(ctx context.Context) (*storage.BucketHandle, string, error) {
	if App == nil {
		return nil, "", errors.New("firebase app not initialized")
	}
	bucketName := os.Getenv("FIREBASE_STORAGE_BUCKET")
	if bucketName == "" {
		return nil, "", errors.New("FIREBASE_STORAGE_BUCKET not set")
	}

	client, err := App.Storage(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get storage client: %w", err)
	}
	bucket, err := client.Bucket(bucketName)
	if err != nil {
		return nil, "", fmt.Errorf("failed to get bucket: %w", err)
	}
	return bucket, bucketName, nil
}

// writeObject streams r into objectPath, makes it public and returns its URL.
func (f *FirebaseStorageClient) writeObject(ctx context.Context, objectPath string, r io.Reader, contentType string) (string, error) {
	bucket, bucketName, err := f.bucket(ctx)
	if err != nil {
		return "", err
	}

	obj := bucket.Object(objectPath)
	wc := obj.NewWriter(ctx)
	wc.ContentType = contentType

	if _, err := io.Copy(wc, r); err != nil {
		wc.Close()
		return "", fmt.Errorf("failed to upload %s: %w", objectPath, err)
	}
	if err := wc.Close(); err != nil {
		return "", fmt.Errorf("failed to finalize upload: %w", err)
	}

	// Make object publicly readable so the URL works without authentication
	if err := obj.ACL().Set(ctx, storage.AllUsers, storage.RoleReader); err != nil {
		logger.L().Warn("failed to set public ACL", zap.String("object", objectPath), zap.Error(err))
	}

	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucketName, objectPath), nil
}

func (f *FirebaseStorageClient) UploadPoster(ctx context.Context, movieID uint, file io.Reader, filename, contentType string) (string, error) {
	objectPath := fmt.Sprintf("posters/%d/%d_%s", movieID, time.Now().Unix(), sanitizeFilename(filename))
	return f.writeObject(ctx, objectPath, file, contentType)
}

// MirrorPoster copies an externally hosted poster into the bucket.
func (f *FirebaseStorageClient) MirrorPoster(ctx context.Context, movieID uint, imageURL string) (string, error) {
	if err := validateExternalURL(imageURL); err != nil {
		return "", fmt.Errorf("URL validation failed for %s: %w", imageURL, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, imageURL, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to download image from %s: %w", imageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("failed to download image: HTTP %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("URL %s returned non-image content-type: %q", imageURL, contentType)
	}

	// uuid suffix keeps concurrent mirrors of the same movie apart
	objectPath := fmt.Sprintf("posters/%d/%s", movieID, uuid.NewString()[:8])
	return f.writeObject(ctx, objectPath, resp.Body, contentType)
}

// DeleteFile deletes a file from Firebase Storage given its object path
func (f *FirebaseStorageClient) DeleteFile(ctx context.Context, objectPath string) error {
	bucket, bucketName, err := f.bucket(ctx)
	if err != nil {
		return err
	}

	if err := bucket.Object(objectPath).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete object %s: %w", objectPath, err)
	}

	logger.L().Info("deleted file", zap.String("object", objectPath), zap.String("bucket", bucketName))
	return nil
}
