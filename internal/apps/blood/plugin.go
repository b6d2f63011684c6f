package blood

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

type BloodPlugin struct{}

func New() *BloodPlugin {
	return &BloodPlugin{}
}

func (p *BloodPlugin) ID() string { return "blood" }

func (p *BloodPlugin) Models() []interface{} {
	return []interface{}{
		&Listing{},
		&Mapping{},
	}
}

func (p *BloodPlugin) Subsystem() matching.Subsystem {
	return matching.Subsystem{
		Name:         p.ID(),
		ContentType:  models.ContentBlood,
		ListingTable: Listing{}.TableName(),
		MappingTable: Mapping{}.TableName(),
		Eligibility:  eligibleDonors,
		LoadListing:  loadListing,
	}
}

func (p *BloodPlugin) RegisterRoutes(router fiber.Router, db *gorm.DB, cfg *config.Config, publisher events.Publisher) {
	listingHandler := NewListingHandler(NewListingService(db))
	matchHandler := handlers.NewMatchHandler(apps.NewMatchService(p, db, cfg, publisher))

	router.Post("/entry", listingHandler.Entry)
	router.Post("/receive", matchHandler.Receive)
	router.Get("/receive/:mobileNumber", matchHandler.ReceiverMatches)
	router.Get("/donate/:mobileNumber", matchHandler.DonorMatches)
	router.Post("/accept/:donor/:receiver", matchHandler.Accept)
	router.Get("/:mobileNumber", listingHandler.Get)
}
