package handlers

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"edupay/internal/middleware"
	"edupay/internal/models"
)

// AuthHandler handles signup, login and token verification
type AuthHandler struct {
	db *gorm.DB
}

func NewAuthHandler(db *gorm.DB) *AuthHandler {
	return &AuthHandler{db: db}
}

var validRoles = map[models.UserRole]bool{
	models.RoleAdmin:       true,
	models.RoleSchoolAdmin: true,
	models.RoleTrustee:     true,
}

// Signup registers a new user with a bcrypt-hashed password
func (h *AuthHandler) Signup(c echo.Context) error {
	var req SignupRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}

	if req.FirstName == "" || req.LastName == "" || req.Email == "" || req.Password == "" || req.PhoneNo == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are mandatory")
	}
	if len(req.Password) < 6 {
		return echo.NewHTTPError(http.StatusBadRequest, "Password must be at least 6 characters long")
	}
	if req.Password != req.ConfirmPassword {
		return echo.NewHTTPError(http.StatusBadRequest, "password and confirmPassword do not match")
	}
	if req.Role == "" {
		req.Role = models.RoleTrustee
	}
	if !validRoles[req.Role] {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid role")
	}

	var existing models.User
	err := h.db.Where("email = ?", req.Email).First(&existing).Error
	if err == nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User already exists")
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to check existing user")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to hash password")
	}

	user := models.User{
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Password:  string(hashed),
		Role:      req.Role,
		SchoolID:  req.SchoolID,
		PhoneNo:   req.PhoneNo,
		IsActive:  true,
	}
	if err := h.db.Create(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to create user")
	}

	return c.JSON(http.StatusCreated, map[string]interface{}{
		"success": true,
		"message": "User created successfully",
		"data":    user,
	})
}

// Login verifies credentials and issues a bearer token
func (h *AuthHandler) Login(c echo.Context) error {
	var req LoginRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "Invalid JSON payload")
	}
	if req.Email == "" || req.Password == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "All fields are mandatory")
	}

	var user models.User
	if err := h.db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "User is not registered")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "password does not match")
	}

	token, err := middleware.IssueToken(&user)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, "Failed to issue token")
	}

	cookie := &http.Cookie{
		Name:     "token",
		Value:    token,
		Expires:  time.Now().Add(3 * 24 * time.Hour),
		HttpOnly: true,
		Path:     "/",
	}
	c.SetCookie(cookie)

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"token":   token,
		"message": "Logged in successfully",
	})
}

// VerifyToken returns the authenticated user's profile. RequireAuth has
// already validated the token by the time this runs.
func (h *AuthHandler) VerifyToken(c echo.Context) error {
	userID, _ := c.Get("userID").(uint)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		return echo.NewHTTPError(http.StatusNotFound, "User not found")
	}

	return c.JSON(http.StatusOK, map[string]interface{}{
		"success": true,
		"user": map[string]interface{}{
			"id":        user.ID,
			"email":     user.Email,
			"firstName": user.FirstName,
			"lastName":  user.LastName,
			"role":      user.Role,
			"schoolId":  user.SchoolID,
		},
	})
}
