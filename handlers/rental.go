package handlers

import (
	"errors"
	"math"
	"net/http"
	"time"

	"reelfake-backend/dtos"
	"reelfake-backend/models"
	"reelfake-backend/utils"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RentalHandler struct {
	DB *gorm.DB
}

type outOfStockError struct {
	title string
}

func (e *outOfStockError) Error() string {
	return e.title + " is out of stock at this store"
}

func rentalAmount(rate float64, days int) float64 {
	return math.Round(rate*float64(days)*100) / 100
}

// Checkout turns the cart into rentals at one store. Every cart line takes
// one copy from the store's inventory; if any movie is out of stock nothing
// is rented.
func (h *RentalHandler) Checkout(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var req dtos.CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	var store models.Store
	if err := h.DB.First(&store, req.StoreID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Store not found"})
		return
	}

	var cartItems []models.CartItem
	if err := h.DB.Preload("Movie").Where("user_id = ?", userID).Order("created_at").Find(&cartItems).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch cart"})
		return
	}
	if len(cartItems) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cart is empty"})
		return
	}

	now := time.Now()
	rentals := make([]models.Rental, 0, len(cartItems))
	err := h.DB.Transaction(func(tx *gorm.DB) error {
		for _, item := range cartItems {
			var inv models.Inventory
			err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
				Where("store_id = ? AND movie_id = ?", store.ID, item.MovieID).
				First(&inv).Error
			if errors.Is(err, gorm.ErrRecordNotFound) || (err == nil && inv.StockCount < 1) {
				return &outOfStockError{title: item.Movie.Title}
			}
			if err != nil {
				return err
			}
			if err := tx.Model(&inv).Update("stock_count", gorm.Expr("stock_count - 1")).Error; err != nil {
				return err
			}

			rental := models.Rental{
				ID:         uuid.New(),
				UserID:     item.UserID,
				MovieID:    item.MovieID,
				StoreID:    store.ID,
				Status:     models.RentalStatusActive,
				RentalRate: item.Movie.RentalRate,
				RentalDays: item.RentalDays,
				Amount:     rentalAmount(item.Movie.RentalRate, item.RentalDays),
				RentedAt:   now,
				DueAt:      now.AddDate(0, 0, item.RentalDays),
			}
			if err := tx.Omit("Movie").Create(&rental).Error; err != nil {
				return err
			}
			rental.Movie = item.Movie
			rentals = append(rentals, rental)
		}
		return tx.Where("user_id = ?", userID).Delete(&models.CartItem{}).Error
	})

	var outOfStock *outOfStockError
	if errors.As(err, &outOfStock) {
		c.JSON(http.StatusBadRequest, gin.H{"error": outOfStock.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to complete checkout"})
		return
	}

	c.JSON(http.StatusCreated, rentals)
}

func (h *RentalHandler) GetRentals(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	query := h.DB.Preload("Movie").Where("user_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	rentals := []models.Rental{}
	if err := query.Order("rented_at DESC").Find(&rentals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rentals"})
		return
	}
	c.JSON(http.StatusOK, rentals)
}

func (h *RentalHandler) GetRental(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var rental models.Rental
	if err := h.DB.Preload("Movie").Where("id = ? AND user_id = ?", c.Param("id"), userID).First(&rental).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Rental not found"})
		return
	}
	c.JSON(http.StatusOK, rental)
}

// ReturnRental closes an active rental and puts the copy back into the
// store's inventory. Customers may only return their own rentals.
func (h *RentalHandler) ReturnRental(c *gin.Context) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}
	role, _ := c.Get("user_role")

	rentalID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid rental ID"})
		return
	}

	var rental models.Rental
	errAlreadyReturned := errors.New("rental already returned")
	err = h.DB.Transaction(func(tx *gorm.DB) error {
		query := tx.Clauses(clause.Locking{Strength: "UPDATE"}).Where("id = ?", rentalID)
		if role != models.RoleStaff && role != models.RoleAdmin {
			query = query.Where("user_id = ?", userID)
		}
		if err := query.First(&rental).Error; err != nil {
			return err
		}
		if rental.Status == models.RentalStatusReturned {
			return errAlreadyReturned
		}

		now := time.Now()
		if err := tx.Model(&rental).Omit("Movie").Updates(map[string]interface{}{
			"status":      models.RentalStatusReturned,
			"returned_at": &now,
		}).Error; err != nil {
			return err
		}

		inv := models.Inventory{StoreID: rental.StoreID, MovieID: rental.MovieID, StockCount: 1}
		return tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "store_id"}, {Name: "movie_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{"stock_count": gorm.Expr("inventory.stock_count + 1")}),
		}).Create(&inv).Error
	})

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Rental not found"})
		return
	case errors.Is(err, errAlreadyReturned):
		c.JSON(http.StatusBadRequest, gin.H{"error": "Rental already returned"})
		return
	case err != nil:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to return rental"})
		return
	}

	h.DB.Preload("Movie").First(&rental, "id = ?", rental.ID)
	c.JSON(http.StatusOK, rental)
}

// AdminGetRentals lists every rental, newest first, with optional status,
// store, user and overdue filters.
func (h *RentalHandler) AdminGetRentals(c *gin.Context) {
	page, limit, offset := utils.Pagination(c)

	query := h.DB.Model(&models.Rental{})
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}
	if storeID := c.Query("store_id"); storeID != "" {
		query = query.Where("store_id = ?", storeID)
	}
	if userID := c.Query("user_id"); userID != "" {
		query = query.Where("user_id = ?", userID)
	}
	if c.Query("overdue") == "true" {
		query = query.Where("status = ? AND due_at < ?", models.RentalStatusActive, time.Now())
	}

	var total int64
	query.Count(&total)

	rentals := []models.Rental{}
	if err := query.Preload("Movie").Order("rented_at DESC").Offset(offset).Limit(limit).Find(&rentals).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rentals"})
		return
	}

	c.JSON(http.StatusOK, dtos.Page[models.Rental]{Items: rentals, Page: page, Limit: limit, Total: total})
}
