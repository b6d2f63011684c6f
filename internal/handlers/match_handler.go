package handlers

import (
	"errors"
	"log/slog"

	"github.com/covaid/covaid-backend/internal/dto"
	"github.com/covaid/covaid-backend/internal/geo"
	"github.com/covaid/covaid-backend/internal/matching"
	"github.com/covaid/covaid-backend/internal/validation"
	"github.com/gofiber/fiber/v2"
)

// MatchHandler serves the match endpoints shared by every supply subsystem.
type MatchHandler struct {
	matchService *matching.Service
}

func NewMatchHandler(matchService *matching.Service) *MatchHandler {
	return &MatchHandler{matchService: matchService}
}

func (h *MatchHandler) Receive(c *fiber.Ctx) error {
	var req dto.ReceiveRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: "Invalid request body",
		})
	}
	if err := validation.Validate(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{
			Error: true, Message: err.Error(),
		})
	}

	notified, err := h.matchService.RequestMatch(c.UserContext(), matching.Request{
		Mobile:  req.MobileNumber,
		Message: req.Message,
		Origin:  geo.Point{Lat: *req.Latitude, Lon: *req.Longitude},
	})
	if err != nil {
		return h.fail(c, err, "match request failed")
	}

	return c.JSON(dto.ReceiveResponse{UserNotified: notified})
}

func (h *MatchHandler) DonorMatches(c *fiber.Ctx) error {
	matches, err := h.matchService.DonorView(c.UserContext(), c.Params("mobileNumber"))
	if err != nil {
		return h.fail(c, err, "donor view failed")
	}
	return c.JSON(matches)
}

func (h *MatchHandler) ReceiverMatches(c *fiber.Ctx) error {
	matches, err := h.matchService.ReceiverView(c.UserContext(), c.Params("mobileNumber"))
	if err != nil {
		return h.fail(c, err, "receiver view failed")
	}
	return c.JSON(matches)
}

func (h *MatchHandler) Accept(c *fiber.Ctx) error {
	result, err := h.matchService.Accept(c.UserContext(), c.Params("donor"), c.Params("receiver"))
	if err != nil {
		return h.fail(c, err, "accept failed")
	}

	message := "Accepted"
	if result.AlreadyAccepted {
		message = "Already accepted"
	}
	return c.JSON(dto.AcceptResponse{
		Message:         message,
		AlreadyAccepted: result.AlreadyAccepted,
		Deactivated:     result.Deactivated,
		Purged:          result.Purged,
	})
}

func (h *MatchHandler) fail(c *fiber.Ctx, err error, msg string) error {
	switch {
	case validation.IsValidation(err):
		return c.Status(fiber.StatusBadRequest).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	case errors.Is(err, matching.ErrListingNotFound), errors.Is(err, matching.ErrMappingNotFound):
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{Error: true, Message: err.Error()})
	}

	slog.Error(msg,
		"subsystem", h.matchService.Subsystem().Name,
		"request_id", c.GetRespHeader(fiber.HeaderXRequestID),
		"error", err,
	)
	return c.Status(fiber.StatusInternalServerError).JSON(dto.ErrorResponse{
		Error: true, Message: "Internal server error",
	})
}
