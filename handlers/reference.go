package handlers

import (
	"net/http"

	"reelfake-backend/models"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// ReferenceHandler serves the fixed genre, country and language tables.
type ReferenceHandler struct {
	DB *gorm.DB
}

func (h *ReferenceHandler) GetGenres(c *gin.Context) {
	var genres []models.Genre
	if err := h.DB.Order("id").Find(&genres).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch genres"})
		return
	}
	c.JSON(http.StatusOK, genres)
}

func (h *ReferenceHandler) GetGenre(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var genre models.Genre
	if err := h.DB.First(&genre, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Genre not found"})
		return
	}
	c.JSON(http.StatusOK, genre)
}

func (h *ReferenceHandler) GetCountries(c *gin.Context) {
	var countries []models.Country
	if err := h.DB.Order("name").Find(&countries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch countries"})
		return
	}
	c.JSON(http.StatusOK, countries)
}

func (h *ReferenceHandler) GetLanguages(c *gin.Context) {
	var languages []models.Language
	if err := h.DB.Order("name").Find(&languages).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch languages"})
		return
	}
	c.JSON(http.StatusOK, languages)
}
