package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"reelfake-backend/dtos"
	"reelfake-backend/firebase"
	"reelfake-backend/logger"
	"reelfake-backend/models"
	"reelfake-backend/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const defaultRentalRate = 4.99

type MovieHandler struct {
	DB      *gorm.DB
	Storage firebase.StorageClient
}

var movieSortColumns = map[string]string{
	"title":          "title",
	"release_date":   "release_date",
	"popularity":     "popularity",
	"rating_average": "rating_average",
}

// movieOrder turns "-popularity" into "popularity DESC". Unknown columns are
// rejected so the value never reaches SQL unchecked.
func movieOrder(sort string) (string, error) {
	if sort == "" {
		return "title ASC, id ASC", nil
	}
	dir := "ASC"
	if strings.HasPrefix(sort, "-") {
		dir = "DESC"
		sort = sort[1:]
	}
	col, ok := movieSortColumns[sort]
	if !ok {
		return "", errors.New("sort must be one of title, release_date, popularity, rating_average")
	}
	return col + " " + dir + ", id ASC", nil
}

func parseIDParam(c *gin.Context, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param(name), 10, 64)
	if err != nil || id == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid " + strings.ReplaceAll(name, "_", " ")})
		return 0, false
	}
	return uint(id), true
}

func (h *MovieHandler) ListMovies(c *gin.Context) {
	page, limit, offset := utils.Pagination(c)
	query := h.DB.Model(&models.Movie{})

	idFilters := []struct {
		param string
		where string
	}{
		{"genre", "id IN (SELECT movie_id FROM movie_genres WHERE genre_id = ?)"},
		{"country", "id IN (SELECT movie_id FROM movie_countries WHERE country_id = ?)"},
		{"language", "language_id = ?"},
	}
	for _, f := range idFilters {
		raw := c.Query(f.param)
		if raw == "" {
			continue
		}
		id, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": f.param + " must be a numeric id"})
			return
		}
		query = query.Where(f.where, id)
	}

	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(title) LIKE LOWER(?)", "%"+search+"%")
	}
	for param, op := range map[string]string{"release_from": ">=", "release_to": "<="} {
		raw := c.Query(param)
		if raw == "" {
			continue
		}
		date, err := time.Parse("2006-01-02", raw)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": param + " must be a date in YYYY-MM-DD format"})
			return
		}
		query = query.Where("release_date "+op+" ?", date)
	}

	order, err := movieOrder(c.Query("sort"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch movies"})
		return
	}

	movies := []models.Movie{}
	if err := query.Preload("Genres").Preload("Language").
		Order(order).Offset(offset).Limit(limit).Find(&movies).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch movies"})
		return
	}

	c.JSON(http.StatusOK, dtos.Page[models.Movie]{Items: movies, Page: page, Limit: limit, Total: total})
}

func (h *MovieHandler) GetMovie(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var movie models.Movie
	err := h.DB.Preload("Genres").Preload("OriginCountries").Preload("Language").
		Preload("Cast", func(db *gorm.DB) *gorm.DB { return db.Order("cast_order ASC") }).
		Preload("Cast.Actor").
		First(&movie, id).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return
	}
	c.JSON(http.StatusOK, movie)
}

// buildMovie checks the request against the reference tables and copies it
// onto movie. The returned string is a client error message.
func (h *MovieHandler) buildMovie(req dtos.MovieRequest, movie *models.Movie) string {
	status := models.MovieStatus(req.MovieStatus)
	if !status.Valid() {
		return "Invalid movie_status"
	}
	releaseDate, err := time.Parse("2006-01-02", req.ReleaseDate)
	if err != nil {
		return "release_date must be a date in YYYY-MM-DD format"
	}

	var genres []models.Genre
	if err := h.DB.Where("id IN ?", req.GenreIDs).Find(&genres).Error; err != nil || len(genres) != countDistinct(req.GenreIDs) {
		return "Unknown genre id"
	}
	var countries []models.Country
	if err := h.DB.Where("id IN ?", req.OriginCountryIDs).Find(&countries).Error; err != nil || len(countries) != countDistinct(req.OriginCountryIDs) {
		return "Unknown country id"
	}
	var language models.Language
	if err := h.DB.First(&language, req.LanguageID).Error; err != nil {
		return "Unknown language id"
	}

	if req.ImdbID != nil && strings.TrimSpace(*req.ImdbID) == "" {
		req.ImdbID = nil
	}

	movie.TmdbID = req.TmdbID
	movie.ImdbID = req.ImdbID
	movie.Title = req.Title
	movie.OriginalTitle = req.OriginalTitle
	movie.Overview = req.Overview
	movie.Runtime = req.Runtime
	movie.ReleaseDate = releaseDate
	movie.Genres = genres
	movie.OriginCountries = countries
	movie.LanguageID = req.LanguageID
	movie.MovieStatus = status
	movie.Popularity = req.Popularity
	movie.Budget = req.Budget
	movie.Revenue = req.Revenue
	movie.RatingAverage = req.RatingAverage
	movie.RatingCount = req.RatingCount
	movie.PosterURL = req.PosterURL
	movie.RentalRate = defaultRentalRate
	if req.RentalRate != nil {
		movie.RentalRate = *req.RentalRate
	}
	return ""
}

func countDistinct(ids []uint) int {
	seen := make(map[uint]struct{}, len(ids))
	for _, id := range ids {
		seen[id] = struct{}{}
	}
	return len(seen)
}

func (h *MovieHandler) CreateMovie(c *gin.Context) {
	var req dtos.MovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var movie models.Movie
	if problem := h.buildMovie(req, &movie); problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}

	if err := h.DB.Omit("Genres.*", "OriginCountries.*").Create(&movie).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A movie with this tmdb_id or imdb_id already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create movie"})
		return
	}

	h.DB.Preload("Genres").Preload("OriginCountries").Preload("Language").First(&movie, movie.ID)
	c.JSON(http.StatusCreated, movie)
}

func (h *MovieHandler) UpdateMovie(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var movie models.Movie
	if err := h.DB.First(&movie, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return
	}

	var req dtos.MovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}
	if problem := h.buildMovie(req, &movie); problem != "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": problem})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&movie).Error; err != nil {
			return err
		}
		if err := tx.Model(&movie).Association("Genres").Replace(movie.Genres); err != nil {
			return err
		}
		return tx.Model(&movie).Association("OriginCountries").Replace(movie.OriginCountries)
	})
	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			c.JSON(http.StatusConflict, gin.H{"error": "A movie with this tmdb_id or imdb_id already exists"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update movie"})
		return
	}

	h.DB.Preload("Genres").Preload("OriginCountries").Preload("Language").First(&movie, movie.ID)
	c.JSON(http.StatusOK, movie)
}

// DeleteMovie soft-deletes a movie. Its tmdb_id stays reserved.
func (h *MovieHandler) DeleteMovie(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	result := h.DB.Delete(&models.Movie{}, id)
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete movie"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Movie deleted successfully"})
}

// UploadPoster stores the multipart "image" field as the movie's poster.
func (h *MovieHandler) UploadPoster(c *gin.Context) {
	movie, ok := h.findMovie(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Image file is required"})
		return
	}
	if err := utils.ValidateImageUpload(fileHeader); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read image"})
		return
	}
	defer file.Close()

	posterURL, err := h.Storage.UploadPoster(c.Request.Context(), movie.ID, file, fileHeader.Filename, fileHeader.Header.Get("Content-Type"))
	if err != nil {
		logger.L().Error("poster upload failed", zap.Uint("movie_id", movie.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to upload poster"})
		return
	}

	h.replacePoster(c, movie, posterURL)
}

// ImportPoster copies an external poster image into our storage.
func (h *MovieHandler) ImportPoster(c *gin.Context) {
	movie, ok := h.findMovie(c)
	if !ok {
		return
	}

	var req struct {
		URL string `json:"url" binding:"required,url"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	posterURL, err := h.Storage.MirrorPoster(c.Request.Context(), movie.ID, req.URL)
	if err != nil {
		logger.L().Warn("poster import failed", zap.Uint("movie_id", movie.ID), zap.String("url", req.URL), zap.Error(err))
		c.JSON(http.StatusBadGateway, gin.H{"error": "Failed to import poster"})
		return
	}

	h.replacePoster(c, movie, posterURL)
}

func (h *MovieHandler) findMovie(c *gin.Context) (models.Movie, bool) {
	var movie models.Movie
	id, ok := parseIDParam(c, "id")
	if !ok {
		return movie, false
	}
	if err := h.DB.First(&movie, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return movie, false
	}
	return movie, true
}

// replacePoster points the movie at posterURL and deletes the previous
// poster when it lived in our bucket.
func (h *MovieHandler) replacePoster(c *gin.Context, movie models.Movie, posterURL string) {
	previous := movie.PosterURL
	if err := h.DB.Model(&movie).Update("poster_url", posterURL).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save poster"})
		return
	}
	movie.PosterURL = posterURL

	if previous != "" && previous != posterURL && utils.IsStorageURL(previous) {
		objectPath, _ := utils.ExtractObjectPath(previous)
		if err := h.Storage.DeleteFile(c.Request.Context(), objectPath); err != nil {
			logger.L().Warn("deleting replaced poster failed", zap.String("object", objectPath), zap.Error(err))
		}
	}

	c.JSON(http.StatusOK, movie)
}

// AddCast links an actor to a movie, or updates the existing link.
func (h *MovieHandler) AddCast(c *gin.Context) {
	movie, ok := h.findMovie(c)
	if !ok {
		return
	}

	var req dtos.CastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var actor models.Actor
	if err := h.DB.First(&actor, req.ActorID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Actor not found"})
		return
	}

	role := models.MovieActor{
		MovieID:       movie.ID,
		ActorID:       actor.ID,
		CharacterName: req.CharacterName,
		CastOrder:     req.CastOrder,
	}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "movie_id"}, {Name: "actor_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"character_name", "cast_order"}),
	}).Create(&role).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add cast member"})
		return
	}

	role.Actor = &actor
	c.JSON(http.StatusCreated, role)
}

func (h *MovieHandler) RemoveCast(c *gin.Context) {
	movieID, ok := parseIDParam(c, "id")
	if !ok {
		return
	}
	actorID, ok := parseIDParam(c, "actor_id")
	if !ok {
		return
	}

	result := h.DB.Where("movie_id = ? AND actor_id = ?", movieID, actorID).Delete(&models.MovieActor{})
	if result.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove cast member"})
		return
	}
	if result.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Cast member not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Cast member removed"})
}
