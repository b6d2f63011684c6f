package handlers

import (
	"errors"
	"log/slog"

	"github.com/covaid/covaid-backend/internal/dto"
	"github.com/covaid/covaid-backend/internal/services"
	"github.com/covaid/covaid-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type AuthHandler struct {
	authService *services.AuthService
}

func NewAuthHandler(authService *services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (h *AuthHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.authService.Register(c.UserContext(), &req)
	if err != nil {
		return authError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// Login accepts a JSON body or an OAuth2 style form with username and password.
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	resp, err := h.authService.Login(c.UserContext(), &req)
	if err != nil {
		return authError(c, err)
	}

	return c.JSON(resp)
}

func (h *AuthHandler) ForgotPassword(c *fiber.Ctx) error {
	var req dto.ForgotPasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}

	if err := h.authService.ForgotPassword(c.UserContext(), &req); err != nil {
		return authError(c, err)
	}

	return c.JSON(dto.MessageResponse{Message: "Password updated"})
}

func (h *AuthHandler) Profile(c *fiber.Ctx) error {
	resp, err := h.authService.Profile(c.UserContext(), c.Params("mobileNumber"))
	if err != nil {
		return authError(c, err)
	}
	return c.JSON(resp)
}

func (h *AuthHandler) Disable(c *fiber.Ctx) error {
	return h.setDisabled(c, true)
}

func (h *AuthHandler) Enable(c *fiber.Ctx) error {
	return h.setDisabled(c, false)
}

func (h *AuthHandler) setDisabled(c *fiber.Ctx, disabled bool) error {
	if err := h.authService.SetDisabled(c.UserContext(), c.Params("mobile"), disabled); err != nil {
		return authError(c, err)
	}

	message := "User enabled"
	if disabled {
		message = "User disabled"
	}
	return c.JSON(dto.MessageResponse{Message: message})
}

func authError(c *fiber.Ctx, err error) error {
	switch {
	case validation.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrInvalidCredentials):
		return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, services.ErrMobileTaken):
		return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	}

	slog.Error("auth request failed", "path", c.Path(), "error", err)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
