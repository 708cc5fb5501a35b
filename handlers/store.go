package handlers

import (
	"net/http"

	"reelfake-backend/dtos"
	"reelfake-backend/models"
	"reelfake-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type StoreHandler struct {
	DB *gorm.DB
}

func (h *StoreHandler) GetStores(c *gin.Context) {
	var stores []models.Store
	if err := h.DB.Order("name ASC").Find(&stores).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch stores"})
		return
	}
	c.JSON(http.StatusOK, stores)
}

// GetStoreInventory lists the movies a store stocks.
func (h *StoreHandler) GetStoreInventory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var store models.Store
	if err := h.DB.First(&store, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	inventory := []models.Inventory{}
	if err := h.DB.Preload("Movie").Where("store_id = ? AND stock_count > 0", store.ID).
		Order("movie_id").Find(&inventory).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch inventory"})
		return
	}
	c.JSON(http.StatusOK, inventory)
}

func (h *StoreHandler) CreateStore(c *gin.Context) {
	var req dtos.StoreRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if req.CountryID != nil {
		var country models.Country
		if err := h.DB.First(&country, *req.CountryID).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Unknown country id"})
			return
		}
	}

	store := models.Store{
		Name:      req.Name,
		Address:   req.Address,
		City:      req.City,
		CountryID: req.CountryID,
		Phone:     req.Phone,
	}
	if err := h.DB.Create(&store).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create store"})
		return
	}
	c.JSON(http.StatusCreated, store)
}

// SetInventory sets how many copies of a movie a store holds.
func (h *StoreHandler) SetInventory(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var req dtos.InventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var store models.Store
	if err := h.DB.First(&store, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}
	var movie models.Movie
	if err := h.DB.First(&movie, req.MovieID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Movie not found"})
		return
	}

	item := models.Inventory{StoreID: store.ID, MovieID: movie.ID, StockCount: req.StockCount}
	err := h.DB.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "store_id"}, {Name: "movie_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"stock_count", "updated_at"}),
	}).Create(&item).Error
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory"})
		return
	}

	h.DB.Where("store_id = ? AND movie_id = ?", store.ID, movie.ID).First(&item)
	c.JSON(http.StatusOK, item)
}
