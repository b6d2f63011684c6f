package apps

import (
	"github.com/covaid/covaid-backend/internal/config"
	"github.com/covaid/covaid-backend/internal/events"
	"github.com/covaid/covaid-backend/internal/matching"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Plugin defines the interface every supply subsystem must implement.
type Plugin interface {
	// ID returns the subsystem identifier, also used as its route prefix.
	ID() string

	// Models returns the list of GORM model pointers for AutoMigrate.
	Models() []interface{}

	// Subsystem describes the plugin's tables and eligibility rules to the matcher.
	Subsystem() matching.Subsystem

	// RegisterRoutes mounts subsystem routes on the given Fiber group.
	// The group is already prefixed with /<ID> and has JWT middleware applied.
	RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config, publisher events.Publisher)
}

// NewMatchService builds the matcher for a plugin using the configured radius and limit.
func NewMatchService(p Plugin, db *gorm.DB, cfg *config.Config, publisher events.Publisher) *matching.Service {
	return matching.NewService(db, p.Subsystem(), publisher,
		matching.WithRadius(cfg.MatchRadiusKm),
		matching.WithLimit(cfg.MatchLimit),
	)
}
