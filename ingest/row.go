package ingest

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"reelfake-backend/models"
)

// CSV columns of a catalog upload.
const (
	ColTmdbID            = "tmdb_id"
	ColImdbID            = "imdb_id"
	ColTitle             = "title"
	ColOriginalTitle     = "original_title"
	ColOverview          = "overview"
	ColRuntime           = "runtime"
	ColReleaseDate       = "release_date"
	ColGenres            = "genres"
	ColCountriesOfOrigin = "countries_of_origin"
	ColLanguage          = "language"
	ColMovieStatus       = "movie_status"
	ColPopularity        = "popularity"
	ColBudget            = "budget"
	ColRevenue           = "revenue"
	ColRatingAverage     = "rating_average"
	ColRatingCount       = "rating_count"
	ColPosterURL         = "poster_url"
	ColRentalRate        = "rental_rate"
)

// Columns is the header a catalog CSV must carry, in canonical order.
var Columns = []string{
	ColTmdbID, ColImdbID, ColTitle, ColOriginalTitle, ColOverview, ColRuntime,
	ColReleaseDate, ColGenres, ColCountriesOfOrigin, ColLanguage, ColMovieStatus,
	ColPopularity, ColBudget, ColRevenue, ColRatingAverage, ColRatingCount,
	ColPosterURL, ColRentalRate,
}

const dateLayout = "2006-01-02"

// RawRow is one CSV data row keyed by header column. Index is 1-based and
// counts data rows only.
type RawRow struct {
	Index  int
	Values map[string]string
}

// Get returns the raw value of column, or "" when the column is absent.
func (r RawRow) Get(column string) string {
	return r.Values[column]
}

// ParsedRow is the typed projection of a RawRow. Values that could not be
// coerced are left nil (numbers, dates) or 0 (tag ids) for the validator to
// report; parsing itself never fails.
type ParsedRow struct {
	RowNumber        int                `csv:"-"`
	TmdbID           *int               `csv:"tmdb_id" validate:"required,gt=0"`
	ImdbID           *string            `csv:"imdb_id" validate:"omitempty,imdb_id"`
	Title            string             `csv:"title" validate:"required,max=255"`
	OriginalTitle    string             `csv:"original_title" validate:"required,max=255"`
	Overview         string             `csv:"overview" validate:"required"`
	Runtime          *int               `csv:"runtime" validate:"required,gte=0"`
	ReleaseDate      *time.Time         `csv:"release_date" validate:"required"`
	GenreIDs         []uint             `csv:"genres" validate:"required,min=1,dive,gt=0"`
	OriginCountryIDs []uint             `csv:"countries_of_origin" validate:"required,min=1,dive,gt=0"`
	LanguageID       uint               `csv:"language" validate:"required"`
	MovieStatus      models.MovieStatus `csv:"movie_status" validate:"required,movie_status"`
	Popularity       *float64           `csv:"popularity" validate:"required,gte=0"`
	Budget           *int64             `csv:"budget" validate:"required,gte=0"`
	Revenue          *int64             `csv:"revenue" validate:"required,gte=0"`
	RatingAverage    *float64           `csv:"rating_average" validate:"required,gte=0,lte=10"`
	RatingCount      *int               `csv:"rating_count" validate:"required,gte=0"`
	PosterURL        string             `csv:"poster_url" validate:"omitempty,url"`
	RentalRate       *float64           `csv:"rental_rate" validate:"required,gte=0"`
}

// Parse converts raw into its typed form.
func Parse(raw RawRow) ParsedRow {
	p := ParsedRow{
		RowNumber:     raw.Index,
		TmdbID:        parseInt(raw.Get(ColTmdbID)),
		Title:         strings.TrimSpace(raw.Get(ColTitle)),
		OriginalTitle: strings.TrimSpace(raw.Get(ColOriginalTitle)),
		Overview:      strings.TrimSpace(raw.Get(ColOverview)),
		MovieStatus:   models.MovieStatus(strings.TrimSpace(raw.Get(ColMovieStatus))),
		Popularity:    parseFloat(raw.Get(ColPopularity)),
		Budget:        parseInt64(raw.Get(ColBudget)),
		Revenue:       parseInt64(raw.Get(ColRevenue)),
		RatingAverage: parseFloat(raw.Get(ColRatingAverage)),
		RatingCount:   parseInt(raw.Get(ColRatingCount)),
		PosterURL:     strings.TrimSpace(raw.Get(ColPosterURL)),
		RentalRate:    parseFloat(raw.Get(ColRentalRate)),
	}

	if imdb := strings.TrimSpace(raw.Get(ColImdbID)); imdb != "" {
		p.ImdbID = &imdb
	}

	if runtime := strings.TrimSpace(raw.Get(ColRuntime)); runtime == "" {
		zero := 0
		p.Runtime = &zero
	} else {
		p.Runtime = parseInt(runtime)
	}

	if d, err := time.Parse(dateLayout, strings.TrimSpace(raw.Get(ColReleaseDate))); err == nil {
		p.ReleaseDate = &d
	}

	p.GenreIDs = resolveTags(raw.Get(ColGenres), models.LookupGenreID)
	p.OriginCountryIDs = resolveTags(raw.Get(ColCountriesOfOrigin), models.LookupCountryID)
	if langs := parseTagList(raw.Get(ColLanguage)); len(langs) > 0 {
		p.LanguageID, _ = models.LookupLanguageID(langs[0])
	}

	return p
}

// parseTagList reads the bracketed single-quoted list syntax used by the
// catalog exports, e.g. ['Action','Drama']. A bare value such as en is
// treated as a one-element list. nil means the text could not be read.
func parseTagList(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	if !strings.HasPrefix(text, "[") {
		return []string{text}
	}

	var names []string
	if err := json.Unmarshal([]byte(strings.ReplaceAll(text, "'", `"`)), &names); err != nil {
		return nil
	}
	return names
}

// resolveTags maps each tag name to its id; unknown names map to 0.
func resolveTags(text string, lookup func(string) (uint, bool)) []uint {
	names := parseTagList(text)
	if names == nil {
		return nil
	}
	ids := make([]uint, len(names))
	for i, name := range names {
		ids[i], _ = lookup(name)
	}
	return ids
}

func parseInt(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}

func parseInt64(s string) *int64 {
	v, err := strconv.ParseInt(strings.TrimSpace(s), 10, 64)
	if err != nil {
		return nil
	}
	return &v
}

func parseFloat(s string) *float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return nil
	}
	return &v
}

// Movie builds the catalog record for a row that passed validation.
func (p *ParsedRow) Movie() *models.Movie {
	m := &models.Movie{
		TmdbID:        *p.TmdbID,
		ImdbID:        p.ImdbID,
		Title:         p.Title,
		OriginalTitle: p.OriginalTitle,
		Overview:      p.Overview,
		Runtime:       *p.Runtime,
		ReleaseDate:   *p.ReleaseDate,
		LanguageID:    p.LanguageID,
		MovieStatus:   p.MovieStatus,
		Popularity:    *p.Popularity,
		Budget:        *p.Budget,
		Revenue:       *p.Revenue,
		RatingAverage: *p.RatingAverage,
		RatingCount:   *p.RatingCount,
		PosterURL:     p.PosterURL,
		RentalRate:    *p.RentalRate,
	}
	for _, id := range p.GenreIDs {
		m.Genres = append(m.Genres, models.Genre{ID: id})
	}
	for _, id := range p.OriginCountryIDs {
		m.OriginCountries = append(m.OriginCountries, models.Country{ID: id})
	}
	return m
}
