package utils

import (
	"context"
	"sync"
	"time"

	"reelfake-backend/dtos"
	"reelfake-backend/ingest"
	"reelfake-backend/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// UploadRegistry holds tracked uploads between the upload request that saved
// the file and the track request that processes it.
type UploadRegistry struct {
	uploads map[uuid.UUID]*dtos.TrackedUpload
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
}

func NewUploadRegistry(ttl time.Duration) *UploadRegistry {
	return &UploadRegistry{
		uploads: make(map[uuid.UUID]*dtos.TrackedUpload),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Register stores upload under a fresh id and returns it.
func (r *UploadRegistry) Register(upload dtos.TrackedUpload) *dtos.TrackedUpload {
	// Clean up stale uploads on each registration
	r.CleanupExpired()

	r.mu.Lock()
	defer r.mu.Unlock()

	upload.ID = uuid.New()
	upload.CreatedAt = r.now()
	r.uploads[upload.ID] = &upload
	return &upload
}

// Claim hands the upload to exactly one track request. The upload stays
// registered when mode does not match.
func (r *UploadRegistry) Claim(id uuid.UUID, mode dtos.UploadMode) (*dtos.TrackedUpload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	upload, exists := r.uploads[id]
	if !exists || upload.Mode != mode {
		return nil, false
	}
	delete(r.uploads, id)
	return upload, true
}

func (r *UploadRegistry) Get(id uuid.UUID) (*dtos.TrackedUpload, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	upload, exists := r.uploads[id]
	return upload, exists
}

func (r *UploadRegistry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.uploads)
}

// CleanupExpired drops unclaimed uploads older than the ttl and deletes
// their files. It returns how many were dropped.
func (r *UploadRegistry) CleanupExpired() int {
	r.mu.Lock()
	cutoff := r.now().Add(-r.ttl)
	var expired []*dtos.TrackedUpload
	for id, upload := range r.uploads {
		if upload.CreatedAt.Before(cutoff) {
			expired = append(expired, upload)
			delete(r.uploads, id)
		}
	}
	r.mu.Unlock()

	for _, upload := range expired {
		if err := ingest.RemoveFile(upload.Path); err != nil {
			logger.L().Warn("removing expired upload failed",
				zap.String("upload_id", upload.ID.String()), zap.Error(err))
		}
	}
	return len(expired)
}

// RunCleanup calls CleanupExpired every interval until ctx is done.
func (r *UploadRegistry) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := r.CleanupExpired(); n > 0 {
				logger.L().Info("expired uploads removed", zap.Int("count", n))
			}
		}
	}
}
