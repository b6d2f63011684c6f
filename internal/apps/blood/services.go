package blood

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/covaid/covaid-backend/internal/matching"
	"github.com/covaid/covaid-backend/internal/validation"
	"gorm.io/gorm"
)

var ErrListingExists = errors.New("an active blood listing already exists for this mobile number")

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
	recovery, err := parseRecoveryDate(req.RecoveryDate)
	if err != nil {
		return nil, err
	}

	listing := Listing{
		MobileNumber:            req.MobileNumber,
		IsReceiver:              req.BloodReceiver,
		BloodType:               BloodType(*req.BloodType),
		HospitalName:            strings.TrimSpace(req.HospitalName),
		PickUpDrop:              req.PickUpDrop,
		DocumentURI:             req.DocumentURI,
		RecoveryDate:            recovery,
		DistanceWillingToTravel: req.DistanceWillingToTravel,
		DetailsAvailable:        req.DetailsAvailable,
		Latitude:                *req.Latitude,
		Longitude:               *req.Longitude,
		IsActive:                true,
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
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
			return fmt.Errorf("failed to create blood listing: %w", err)
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
		return nil, fmt.Errorf("failed to fetch blood listing: %w", err)
	}
	return &listing, nil
}

// eligibleDonors restricts donor listings to groups the requester can receive.
// The requester's group comes from their latest listing.
func eligibleDonors(tx *gorm.DB, requester string) (matching.Scope, error) {
	listing, err := latestListing(tx, requester)
	if err != nil {
		return nil, err
	}
	codes, err := CompatibleDonors(listing.BloodType)
	if err != nil {
		return nil, err
	}
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("blood_type IN ?", codes)
	}, nil
}

func loadListing(tx *gorm.DB, mobile string) (any, error) {
	listing, err := latestListing(tx, mobile)
	if err != nil {
		return nil, err
	}
	return listing, nil
}

// parseRecoveryDate accepts a date or an RFC 3339 timestamp and keeps the day only.
func parseRecoveryDate(s string) (*time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	day, _, _ := strings.Cut(s, "T")
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return nil, validation.Errorf("recoveryDate must be a date (YYYY-MM-DD)")
	}
	return &t, nil
}
