package handlers

import (
	"net/http"

	"github.com/definitelynotchirag/Fitlog/db"
	"github.com/definitelynotchirag/Fitlog/middleware"
	"github.com/definitelynotchirag/Fitlog/models"
	"github.com/definitelynotchirag/Fitlog/utils"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// CreateRoutine handles POST /api/routines. Names are not unique; calling
// this twice with the same name creates two routines.
func CreateRoutine(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		RoutineName string `json:"routineName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "routineName is required"})
		return
	}

	routine := models.Routine{
		UserID:      user.ID,
		RoutineName: input.RoutineName,
	}
	if err := db.DB.Create(&routine).Error; err != nil {
		utils.Logger.Error("create_routine_failed", zap.Uint("user_id", user.ID), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error creating routine"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "routine": routine})
}

// DisplayRoutines handles GET /api/routines, scoped to the requesting user.
func DisplayRoutines(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var routines []models.Routine
	if err := db.DB.Where("user_id = ?", user.ID).Find(&routines).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Error fetching routines"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":    routines,
		"message": "Routines Displayed",
	})
}

// RoutineIDByName handles POST /api/routines/id-by-name: an exact-name
// lookup, no fuzzy matching and no creation.
func RoutineIDByName(c *gin.Context) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	var input struct {
		RoutineName string `json:"routineName" binding:"required"`
	}
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "routineName is required"})
		return
	}

	var routine models.Routine
	err := db.DB.Where("user_id = ? AND routine_name = ?", user.ID, input.RoutineName).
		First(&routine).Error
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Routine not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"routineId": routine.ID})
}
