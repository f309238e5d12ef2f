package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"edupay/internal/models"
)

// SchoolHandler manages the schools collections are raised against
type SchoolHandler struct {
	db *gorm.DB
}

func NewSchoolHandler(db *gorm.DB) *SchoolHandler {
	return &SchoolHandler{db: db}
}

// CreateSchool registers a new school
func (h *SchoolHandler) CreateSchool(c echo.Context) error {
	var req CreateSchoolRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.Name == "" || req.Description == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are mandatory")
	}

	var existing models.School
	err := h.db.Where("name = ?", req.Name).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "School already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check existing school")
	}

	school := models.School{Name: req.Name, Description: req.Description}
	if err := h.db.Create(&school).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create school")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "School created successfully",
		"data":    school,
	})
}

// GetSchool fetches one school by id
func (h *SchoolHandler) GetSchool(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid school ID")
	}

	var school models.School
	if err := h.db.First(&school, uint(id)).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "School not found")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    school,
	})
}

// GetAllSchools lists every school
func (h *SchoolHandler) GetAllSchools(c echo.Context) error {
	var schools []models.School
	if err := h.db.Find(&schools).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to fetch schools")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"data":    schools,
	})
}
