package oxygen

import (
	"errors"
	"log/slog"

	"github.com/covaid/covaid-backend/internal/dto"
	"github.com/covaid/covaid-backend/internal/matching"
	"github.com/covaid/covaid-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

type ListingHandler struct {
	listingService *ListingService
}

func NewListingHandler(listingService *ListingService) *ListingHandler {
	return &ListingHandler{listingService: listingService}
}

func (h *ListingHandler) Entry(c *fiber.Ctx) error {
	var req EntryRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: "Invalid request body"})
	}

	if _, err := h.listingService.Create(c.UserContext(), &req); err != nil {
		if validation.IsValidation(err) {
			return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		}
		if errors.Is(err, ErrListingExists) {
			return c.Status(fiber.StatusConflict).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		}
		slog.Error("oxygen entry failed", "subsystem", "oxygen", "mobile", req.MobileNumber, "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to save oxygen listing"})
	}

	return c.Status(fiber.StatusCreated).JSON(dto.MessageResponse{Message: "Processed"})
}

func (h *ListingHandler) Get(c *fiber.Ctx) error {
	listing, err := h.listingService.Get(c.UserContext(), c.Params("mobileNumber"))
	if err != nil {
		if errors.Is(err, matching.ErrListingNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
		}
		slog.Error("oxygen listing lookup failed", "subsystem", "oxygen", "error", err)
		return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{Error: true, Message: "Failed to fetch oxygen listing"})
	}

	return c.JSON(listing)
}
