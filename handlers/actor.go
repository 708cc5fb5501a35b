package handlers

import (
	"net/http"

	"reelfake-backend/dtos"
	"reelfake-backend/models"
	"reelfake-backend/utils"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type ActorHandler struct {
	DB *gorm.DB
}

func (h *ActorHandler) GetActors(c *gin.Context) {
	page, limit, offset := utils.Pagination(c)

	query := h.DB.Model(&models.Actor{})
	if search := c.Query("search"); search != "" {
		query = query.Where("LOWER(name) LIKE LOWER(?)", "%"+search+"%")
	}

	var total int64
	query.Count(&total)

	actors := []models.Actor{}
	if err := query.Order("name ASC, id ASC").Offset(offset).Limit(limit).Find(&actors).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch actors"})
		return
	}

	c.JSON(http.StatusOK, dtos.Page[models.Actor]{Items: actors, Page: page, Limit: limit, Total: total})
}

// GetActor returns the actor with the movies they appear in.
func (h *ActorHandler) GetActor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var actor models.Actor
	if err := h.DB.Preload("Roles.Movie").First(&actor, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Actor not found"})
		return
	}
	c.JSON(http.StatusOK, actor)
}

func (h *ActorHandler) CreateActor(c *gin.Context) {
	var req dtos.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	actor := models.Actor{Name: req.Name, ProfileURL: req.ProfileURL}
	if err := h.DB.Create(&actor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create actor"})
		return
	}
	c.JSON(http.StatusCreated, actor)
}

func (h *ActorHandler) UpdateActor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var actor models.Actor
	if err := h.DB.First(&actor, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Actor not found"})
		return
	}

	var req dtos.ActorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": utils.SanitizeValidationError(err)})
		return
	}

	if err := h.DB.Model(&actor).Updates(map[string]interface{}{
		"name":        req.Name,
		"profile_url": req.ProfileURL,
	}).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update actor"})
		return
	}
	c.JSON(http.StatusOK, actor)
}

// DeleteActor soft-deletes the actor and drops their cast entries.
func (h *ActorHandler) DeleteActor(c *gin.Context) {
	id, ok := parseIDParam(c, "id")
	if !ok {
		return
	}

	var actor models.Actor
	if err := h.DB.First(&actor, id).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Actor not found"})
		return
	}

	err := h.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("actor_id = ?", actor.ID).Delete(&models.MovieActor{}).Error; err != nil {
			return err
		}
		return tx.Delete(&actor).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete actor"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Actor deleted successfully"})
}
