package oxygen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/covaid/covaid-backend/internal/matching"
	"github.com/covaid/covaid-backend/internal/validation"
	"gorm.io/gorm"
)

var ErrListingExists = errors.New("an active oxygen listing already exists for this mobile number")

type ListingService struct {
	db *gorm.DB
}

func NewListingService(db *gorm.DB) *ListingService {
	return &ListingService{db: db}
}

func (s *ListingService) Create(ctx context.Context, req *EntryRequest) (*Listing, error) {
	if err := validation.Validate(req); err != nil {
		return nil, err
	}

	listing := Listing{
		MobileNumber:     req.MobileNumber,
		IsReceiver:       req.OxygenReceiver,
		HospitalName:     strings.TrimSpace(req.HospitalName),
		FullGear:         req.FullGear,
		CanDeliver:       req.CanDeliver,
		DetailsAvailable: req.DetailsAvailable,
		Latitude:         *req.Latitude,
		Longitude:        *req.Longitude,
		IsActive:         true,
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var count int64
		if err := tx.Model(&Listing{}).
			Where("mobile_number = ? AND is_receiver = ? AND is_active = ?", listing.MobileNumber, listing.IsReceiver, true).
			Count(&count).Error; err != nil {
			return fmt.Errorf("failed to check existing listings: %w", err)
		}
		if count > 0 {
			return ErrListingExists
		}
		if err := tx.Create(&listing).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrListingExists
			}
			return fmt.Errorf("failed to create oxygen listing: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Get returns the most recent listing for mobile.
func (s *ListingService) Get(ctx context.Context, mobile string) (*Listing, error) {
	return latestListing(s.db.WithContext(ctx), mobile)
}

func latestListing(db *gorm.DB, mobile string) (*Listing, error) {
	var listing Listing
	err := db.Where("mobile_number = ?", mobile).
		Order("created_at DESC").
		Take(&listing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, matching.ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to fetch oxygen listing: %w", err)
	}
	return &listing, nil
}

func loadListing(tx *gorm.DB, mobile string) (any, error) {
	listing, err := latestListing(tx, mobile)
	if err != nil {
		return nil, err
	}
	return listing, nil
}
