package oxygen

import (
	"github.com/covaid/covaid-backend/internal/apps"
	"github.com/covaid/covaid-backend/internal/config"
	"github.com/covaid/covaid-backend/internal/events"
	"github.com/covaid/covaid-backend/internal/handlers"
	"github.com/covaid/covaid-backend/internal/matching"
	"github.com/covaid/covaid-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

type OxygenPlugin struct{}

func New() *OxygenPlugin {
	return &OxygenPlugin{}
}

func (p *OxygenPlugin) ID() string { return "oxygen" }

func (p *OxygenPlugin) Models() []interface{} {
	return []interface{}{
		&Listing{},
		&Mapping{},
	}
}

// Subsystem matches any active oxygen supplier. Unlike blood, the requester's
// message is stored even when nobody was in range.
func (p *OxygenPlugin) Subsystem() matching.Subsystem {
	return matching.Subsystem{
		Name:           p.ID(),
		ContentType:    models.ContentOxygen,
		ListingTable:   Listing{}.TableName(),
		MappingTable:   Mapping{}.TableName(),
		MessageOnEmpty: true,
		LoadListing:    loadListing,
	}
}

func (p *OxygenPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config, publisher events.Publisher) {
	listingHandler := NewListingHandler(NewListingService(db))
	matchHandler := handlers.NewMatchHandler(apps.NewMatchService(p, db, cfg, publisher))

	router.Post("/entry", listingHandler.Entry)
	router.Post("/receive", matchHandler.Receive)
	router.Get("/receive/:mobileNumber", matchHandler.ReceiverMatches)
	router.Get("/donate/:mobileNumber", matchHandler.DonorMatches)
	router.Post("/accept/:donor/:receiver", matchHandler.Accept)
	router.Get("/:mobileNumber", listingHandler.Get)
}
