package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func validRow(tmdbID int) map[string]string {
	return map[string]string{
		ColTmdbID:            strconv.Itoa(tmdbID),
		ColImdbID:            "tt" + strconv.Itoa(1000000+tmdbID),
		ColTitle:             "Movie " + strconv.Itoa(tmdbID),
		ColOriginalTitle:     "Movie " + strconv.Itoa(tmdbID),
		ColOverview:          "A film about number " + strconv.Itoa(tmdbID),
		ColRuntime:           "120",
		ColReleaseDate:       "2020-05-17",
		ColGenres:            "['Action','Drama']",
		ColCountriesOfOrigin: "['US','GB']",
		ColLanguage:          "en",
		ColMovieStatus:       "Released",
		ColPopularity:        "12.5",
		ColBudget:            "1000000",
		ColRevenue:           "2500000",
		ColRatingAverage:     "7.4",
		ColRatingCount:       "1500",
		ColPosterURL:         "https://image.example.com/poster.jpg",
		ColRentalRate:        "3.99",
	}
}

func withValues(row map[string]string, kv ...string) map[string]string {
	for i := 0; i+1 < len(kv); i += 2 {
		row[kv[i]] = kv[i+1]
	}
	return row
}

func rawRow(index int, values map[string]string) RawRow {
	return RawRow{Index: index, Values: values}
}

// writeCSV writes rows under the canonical header into a temp file.
func writeCSV(t *testing.T, rows ...map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "movies.csv")
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()

	w := csv.NewWriter(f)
	require.NoError(t, w.Write(Columns))
	for _, row := range rows {
		record := make([]string, len(Columns))
		for i, column := range Columns {
			record[i] = row[column]
		}
		require.NoError(t, w.Write(record))
	}
	w.Flush()
	require.NoError(t, w.Error())
	return path
}

func writeFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

// memStore is an in-memory CatalogStore.
type memStore struct {
	mu        sync.Mutex
	nextID    uint
	tmdb      map[int]uint
	imdb      map[string]uint
	created   []int
	createErr func(row *ParsedRow) error
	lookupErr error
	tmdbShift int
}

func newMemStore() *memStore {
	return &memStore{tmdb: map[int]uint{}, imdb: map[string]uint{}}
}

func (s *memStore) TmdbIDExists(_ context.Context, tmdbID int) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	_, ok := s.tmdb[tmdbID]
	return ok, nil
}

func (s *memStore) ImdbIDExists(_ context.Context, imdbID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.lookupErr != nil {
		return false, s.lookupErr
	}
	_, ok := s.imdb[imdbID]
	return ok, nil
}

func (s *memStore) CreateMovie(_ context.Context, row *ParsedRow) (PersistedMovie, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.createErr != nil {
		if err := s.createErr(row); err != nil {
			return PersistedMovie{}, err
		}
	}
	if _, ok := s.tmdb[*row.TmdbID]; ok {
		return PersistedMovie{}, errors.New("unique constraint violated")
	}
	s.nextID++
	s.tmdb[*row.TmdbID] = s.nextID
	if row.ImdbID != nil {
		s.imdb[*row.ImdbID] = s.nextID
	}
	s.created = append(s.created, *row.TmdbID)
	return PersistedMovie{ID: s.nextID, TmdbID: *row.TmdbID + s.tmdbShift}, nil
}

func (s *memStore) seed(tmdbID int, imdbID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	s.tmdb[tmdbID] = s.nextID
	if imdbID != "" {
		s.imdb[imdbID] = s.nextID
	}
}

// recordingSink keeps every event in arrival order.
type recordingSink struct {
	events    []int
	successes []RowSuccess
	failures  []RowFailure
	verdicts  []RowVerdict
	failAfter int
}

func (s *recordingSink) OnSuccess(row RowSuccess) error {
	s.events = append(s.events, row.RowNumber)
	s.successes = append(s.successes, row)
	return s.maybeFail()
}

func (s *recordingSink) OnFailure(row RowFailure) error {
	s.events = append(s.events, row.RowNumber)
	s.failures = append(s.failures, row)
	return s.maybeFail()
}

func (s *recordingSink) OnRow(v RowVerdict) error {
	s.events = append(s.events, v.RowNumber)
	s.verdicts = append(s.verdicts, v)
	return s.maybeFail()
}

var errSinkClosed = errors.New("sink closed")

func (s *recordingSink) maybeFail() error {
	if s.failAfter > 0 && len(s.events) >= s.failAfter {
		return errSinkClosed
	}
	return nil
}
