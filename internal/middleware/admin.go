package middleware

import (
	"context"
	"slices"

	"github.com/covaid/covaid-backend/internal/config"
	"github.com/covaid/covaid-backend/internal/dto"
	"github.com/gofiber/fiber/v2"
)

// RoleChecker looks up whether a stored account carries the admin role.
type RoleChecker interface {
	IsAdmin(ctx context.Context, mobile string) bool
}

// AdminRequired lets a request through when any of these hold:
// 1. X-Admin-Token matches ADMIN_TOKEN
// 2. the JWT subject is listed in ADMIN_MOBILES
// 3. the stored user has the admin role
func AdminRequired(cfg *config.Config, roles RoleChecker) fiber.Handler {
	adminMobiles := config.ParseCSV(cfg.AdminMobiles)

	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}

		mobile, err := GetMobile(c)
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(dto.ErrorResponse{
				Error: true, Message: "Unauthorized",
			})
		}

		if slices.Contains(adminMobiles, mobile) {
			return c.Next()
		}
		if roles != nil && roles.IsAdmin(c.UserContext(), mobile) {
			return c.Next()
		}

		return c.Status(fiber.StatusForbidden).JSON(dto.ErrorResponse{
			Error: true, Message: "Admin access required",
		})
	}
}

// JWTUnlessAdminToken skips bearer validation for requests carrying the admin token.
func JWTUnlessAdminToken(cfg *config.Config) fiber.Handler {
	jwtHandler := JWTProtected(cfg)
	return func(c *fiber.Ctx) error {
		if cfg.AdminToken != "" && c.Get("X-Admin-Token") == cfg.AdminToken {
			return c.Next()
		}
		return jwtHandler(c)
	}
}
