package dto

import "github.com/google/uuid"

type RegisterRequest struct {
	Name         string `json:"name" validate:"required,notblank,max=255"`
	Email        string `json:"email" validate:"required,email"`
	Location     string `json:"location" validate:"max=255"`
	Gender       string `json:"gender" validate:"max=32"`
	Age          int    `json:"age" validate:"gte=0,lte=150"`
	MobileNumber string `json:"mobileNumber" validate:"required,numeric,min=6,max=15"`
	Password     string `json:"password" validate:"required,min=8"`
}

// LoginRequest uses the mobile number as the username.
type LoginRequest struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type LoginResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type ForgotPasswordRequest struct {
	MobileNumber string `json:"mobileNumber" validate:"required,numeric"`
	Password     string `json:"password" validate:"required,min=8"`
}

type UserResponse struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	Location     string    `json:"location"`
	Gender       string    `json:"gender"`
	Age          int       `json:"age"`
	MobileNumber string    `json:"mobileNumber"`
	Disabled     bool      `json:"disabled"`
}

type ErrorResponse struct {
	Error   bool   `json:"error"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	DB        string `json:"db"`
	Redis     string `json:"redis,omitempty"`
}
