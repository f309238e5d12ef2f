package handlers

import "edupay/internal/models"

// Request bodies shared across handlers. JSON names follow the public
// API contract (camelCase), not the storage column names.

type SignupRequest struct {
	FirstName       string          `json:"firstName"`
	LastName        string          `json:"lastName"`
	Email           string          `json:"email"`
	Password        string          `json:"password"`
	ConfirmPassword string          `json:"confirmPassword"`
	Role            models.UserRole `json:"role"`
	SchoolID        *uint           `json:"schoolId,omitempty"`
	PhoneNo         string          `json:"phoneNO"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type CreateSchoolRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

type CreatePaymentRequest struct {
	SchoolID    uint           `json:"schoolId"`
	TrusteeID   uint           `json:"trusteeId"`
	Student     models.Student `json:"student"`
	GatewayName string         `json:"gatewayName"`
	OrderAmount float64        `json:"orderAmount"`
}
