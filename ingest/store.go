package ingest

import (
	"context"
	"errors"
	"fmt"

	"reelfake-backend/models"

	"gorm.io/gorm"
)

// PersistedMovie is what the store reports back for a created movie.
type PersistedMovie struct {
	ID     uint
	TmdbID int
}

// CatalogStore is the persistence collaborator of a run. CreateMovie may
// return an *UploadError (or UploadErrors) for a row-scoped failure; any other
// error ends the run.
type CatalogStore interface {
	DuplicateChecker
	CreateMovie(ctx context.Context, row *ParsedRow) (PersistedMovie, error)
}

// GormStore implements CatalogStore over a gorm handle, which may be a
// transaction.
type GormStore struct {
	db *gorm.DB
}

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

func (s *GormStore) TmdbIDExists(ctx context.Context, tmdbID int) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.Movie{}).
		Where("tmdb_id = ?", tmdbID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking tmdb_id %d: %w", tmdbID, err)
	}
	return count > 0, nil
}

func (s *GormStore) ImdbIDExists(ctx context.Context, imdbID string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Unscoped().Model(&models.Movie{}).
		Where("imdb_id = ?", imdbID).Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("checking imdb_id %s: %w", imdbID, err)
	}
	return count > 0, nil
}

// CreateMovie inserts the movie and its genre and country links. The
// reference rows themselves are never written.
func (s *GormStore) CreateMovie(ctx context.Context, row *ParsedRow) (PersistedMovie, error) {
	movie := row.Movie()
	err := s.db.WithContext(ctx).
		Omit("Genres.*", "OriginCountries.*").
		Create(movie).Error
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return PersistedMovie{}, newUploadError(KindUniqueKeyViolation, row.RowNumber,
			fmt.Sprintf("Movie with tmdb_id %d violates a unique constraint", movie.TmdbID))
	}
	if err != nil {
		return PersistedMovie{}, fmt.Errorf("creating movie tmdb_id %d: %w", movie.TmdbID, err)
	}
	return PersistedMovie{ID: movie.ID, TmdbID: movie.TmdbID}, nil
}
