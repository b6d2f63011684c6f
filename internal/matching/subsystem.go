// Package matching pairs requesters with nearby donor listings and drives the
// pending -> accepted lifecycle of the resulting mappings.
package matching

import (
	"github.com/covaid/covaid-backend/internal/models"
	"gorm.io/gorm"
)

// Scope narrows a listing query.
type Scope func(*gorm.DB) *gorm.DB

// Subsystem describes one resource (blood, oxygen) to the matcher.
//
// Listing tables must expose mobile_number, is_receiver, is_active, latitude,
// longitude and updated_at columns.
type Subsystem struct {
	Name         string
	ContentType  models.ContentType
	ListingTable string
	MappingTable string

	// MessageOnEmpty stores the requester's message even when no mapping was
	// created by the request.
	MessageOnEmpty bool

	// Eligibility returns the scope donor listings must satisfy for requester.
	// Nil means every active donor listing is eligible.
	Eligibility func(tx *gorm.DB, requester string) (Scope, error)

	// LoadListing returns the latest listing of mobile for the donor view.
	LoadListing func(tx *gorm.DB, mobile string) (any, error)
}
