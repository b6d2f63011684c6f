package matching

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/covaid/covaid-backend/internal/events"
	"github.com/covaid/covaid-backend/internal/geo"
	"github.com/covaid/covaid-backend/internal/metrics"
	"github.com/covaid/covaid-backend/internal/models"
	"github.com/covaid/covaid-backend/internal/validation"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	DefaultRadiusKm = 500.0
	DefaultLimit    = 3
)

var (
	ErrListingNotFound = errors.New("no listing found for this mobile number")
	ErrMappingNotFound = errors.New("no match found for this donor and receiver")
)

// Request asks for donors near Origin on behalf of Mobile.
type Request struct {
	Mobile  string
	Message string
	Origin  geo.Point
}

func (r Request) validate() error {
	if strings.TrimSpace(r.Mobile) == "" {
		return validation.Errorf("mobileNumber is required")
	}
	if !r.Origin.Valid() {
		return validation.Errorf("coordinates out of range: (%g, %g)", r.Origin.Lat, r.Origin.Lon)
	}
	return nil
}

// AcceptResult reports what an Accept call changed.
type AcceptResult struct {
	Accepted        bool  `json:"accepted"`
	AlreadyAccepted bool  `json:"alreadyAccepted"`
	Deactivated     int64 `json:"deactivated"`
	Purged          int64 `json:"purged"`
}

// DonorMatch is one row of the donor view.
type DonorMatch struct {
	Donor      string  `json:"donor"`
	Receiver   string  `json:"receiver"`
	Distance   float64 `json:"distance"`
	IsAccepted bool    `json:"isAccepted"`
	Message    string  `json:"message"`
	Listing    any     `json:"listing,omitempty"`
}

// ReceiverMatch is one row of the receiver view.
type ReceiverMatch struct {
	Donor      string  `json:"donor"`
	Distance   float64 `json:"distance"`
	IsAccepted bool    `json:"isAccepted"`
}

type Option func(*Service)

func WithRadius(km float64) Option {
	return func(s *Service) {
		if km > 0 {
			s.radiusKm = km
		}
	}
}

func WithLimit(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.limit = n
		}
	}
}

type Service struct {
	db        *gorm.DB
	sub       Subsystem
	publisher events.Publisher
	radiusKm  float64
	limit     int
}

func NewService(db *gorm.DB, sub Subsystem, publisher events.Publisher, opts ...Option) *Service {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	s := &Service{
		db:        db,
		sub:       sub,
		publisher: publisher,
		radiusKm:  DefaultRadiusKm,
		limit:     DefaultLimit,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Service) Subsystem() Subsystem { return s.sub }

// Candidates returns the donors a request would be matched with, without
// writing anything.
func (s *Service) Candidates(ctx context.Context, req Request) ([]Candidate, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	return s.findCandidates(s.db.WithContext(ctx), req, false)
}

// RequestMatch records a pending mapping for each nearby eligible donor and
// stores the requester's message. It returns the number of mappings written.
func (s *Service) RequestMatch(ctx context.Context, req Request) (int, error) {
	if err := req.validate(); err != nil {
		return 0, err
	}

	var donors []string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		candidates, err := s.findCandidates(tx, req, true)
		if err != nil {
			return err
		}

		for _, c := range candidates {
			written, err := s.proposeMapping(tx, c.MobileNumber, req.Mobile, c.Distance)
			if err != nil {
				return err
			}
			if written {
				donors = append(donors, c.MobileNumber)
				metrics.CandidateDistance.WithLabelValues(s.sub.Name).Observe(c.Distance)
			}
		}

		if len(donors) > 0 || s.sub.MessageOnEmpty {
			if err := saveMessage(tx, req.Mobile, s.sub.ContentType, req.Message); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrListingNotFound) {
			outcome = "no_listing"
		}
		metrics.MatchRequests.WithLabelValues(s.sub.Name, outcome).Inc()
		return 0, err
	}

	outcome := "matched"
	if len(donors) == 0 {
		outcome = "no_candidates"
	}
	metrics.MatchRequests.WithLabelValues(s.sub.Name, outcome).Inc()
	metrics.MappingsCreated.WithLabelValues(s.sub.Name).Add(float64(len(donors)))

	slog.Info("match requested",
		"subsystem", s.sub.Name,
		"mobile", req.Mobile,
		"matched", len(donors),
	)

	s.publish(ctx, events.Event{
		Type:      events.TypeMatchRequested,
		Subsystem: s.sub.Name,
		Receiver:  req.Mobile,
		Donors:    donors,
		Message:   req.Message,
	})

	return len(donors), nil
}

func (s *Service) findCandidates(tx *gorm.DB, req Request, lock bool) ([]Candidate, error) {
	var scope Scope
	if s.sub.Eligibility != nil {
		var err error
		scope, err = s.sub.Eligibility(tx, req.Mobile)
		if err != nil {
			return nil, err
		}
	}

	minLat, maxLat := geo.LatitudeBand(req.Origin, s.radiusKm)
	q := tx.Table(s.sub.ListingTable).
		Select("mobile_number", "latitude", "longitude").
		Where("is_receiver = ? AND is_active = ?", false, true).
		Where("mobile_number <> ?", req.Mobile).
		Where("latitude BETWEEN ? AND ?", minLat, maxLat)
	if scope != nil {
		q = q.Scopes(scope)
	}
	if lock {
		q = q.Clauses(clause.Locking{Strength: "SHARE"})
	}

	var listings []Candidate
	if err := q.Find(&listings).Error; err != nil {
		return nil, fmt.Errorf("failed to load %s listings: %w", s.sub.Name, err)
	}

	return SelectNearest(req.Origin, listings, s.radiusKm, s.limit), nil
}

// proposeMapping writes a pending donor -> receiver mapping, refreshing the
// distance of one that already exists. Accepted mappings are left untouched.
func (s *Service) proposeMapping(tx *gorm.DB, donor, receiver string, distance float64) (bool, error) {
	var existing models.Mapping
	err := tx.Table(s.sub.MappingTable).
		Where("donor = ? AND receiver = ?", donor, receiver).
		Take(&existing).Error

	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		m := models.Mapping{Donor: donor, Receiver: receiver, Distance: distance}
		if err := tx.Table(s.sub.MappingTable).Create(&m).Error; err != nil {
			return false, fmt.Errorf("failed to create mapping: %w", err)
		}
		return true, nil
	case err != nil:
		return false, fmt.Errorf("failed to load mapping: %w", err)
	case existing.IsAccepted:
		return false, nil
	}

	if err := tx.Table(s.sub.MappingTable).
		Where("id = ?", existing.ID).
		Updates(map[string]interface{}{"distance": distance, "updated_at": time.Now()}).Error; err != nil {
		return false, fmt.Errorf("failed to refresh mapping: %w", err)
	}
	return true, nil
}

// Accept moves the (donor, receiver) mapping to accepted, closes both parties'
// listings and purges every other pending mapping either party takes part in.
// Accepting an already accepted mapping changes nothing.
func (s *Service) Accept(ctx context.Context, donor, receiver string) (AcceptResult, error) {
	var result AcceptResult
	if strings.TrimSpace(donor) == "" || strings.TrimSpace(receiver) == "" {
		return result, validation.Errorf("donor and receiver are required")
	}
	parties := []string{donor, receiver}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// Overlapping accepts serialize on the parties' listing rows.
		var locked []string
		if err := tx.Table(s.sub.ListingTable).
			Where("mobile_number IN ?", parties).
			Order("id").
			Clauses(clause.Locking{Strength: "UPDATE"}).
			Pluck("id", &locked).Error; err != nil {
			return fmt.Errorf("failed to lock listings: %w", err)
		}

		var m models.Mapping
		err := tx.Table(s.sub.MappingTable).
			Where("donor = ? AND receiver = ?", donor, receiver).
			Take(&m).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrMappingNotFound
		}
		if err != nil {
			return fmt.Errorf("failed to load mapping: %w", err)
		}
		if m.IsAccepted {
			result.AlreadyAccepted = true
			return nil
		}

		now := time.Now()
		if err := tx.Table(s.sub.MappingTable).
			Where("id = ?", m.ID).
			Updates(map[string]interface{}{"is_accepted": true, "updated_at": now}).Error; err != nil {
			return fmt.Errorf("failed to accept mapping: %w", err)
		}

		res := tx.Table(s.sub.ListingTable).
			Where("mobile_number IN ? AND is_active = ?", parties, true).
			Updates(map[string]interface{}{"is_active": false, "updated_at": now})
		if res.Error != nil {
			return fmt.Errorf("failed to deactivate listings: %w", res.Error)
		}
		result.Deactivated = res.RowsAffected

		res = tx.Table(s.sub.MappingTable).
			Where("is_accepted = ?", false).
			Where("(donor IN ? OR receiver IN ?)", parties, parties).
			Delete(&models.Mapping{})
		if res.Error != nil {
			return fmt.Errorf("failed to purge superseded mappings: %w", res.Error)
		}
		result.Purged = res.RowsAffected
		result.Accepted = true
		return nil
	})
	if err != nil {
		outcome := "error"
		if errors.Is(err, ErrMappingNotFound) {
			outcome = "not_found"
		}
		metrics.Accepts.WithLabelValues(s.sub.Name, outcome).Inc()
		return AcceptResult{}, err
	}

	if result.AlreadyAccepted {
		metrics.Accepts.WithLabelValues(s.sub.Name, "already_accepted").Inc()
		return result, nil
	}
	metrics.Accepts.WithLabelValues(s.sub.Name, "accepted").Inc()

	slog.Info("match accepted",
		"subsystem", s.sub.Name,
		"donor", donor,
		"receiver", receiver,
		"purged", result.Purged,
	)

	s.publish(ctx, events.Event{
		Type:      events.TypeMatchAccepted,
		Subsystem: s.sub.Name,
		Receiver:  receiver,
		Donors:    []string{donor},
	})
	return result, nil
}

// DonorView returns the donor's accepted match with the receiver's listing when
// there is one, otherwise every pending match for the donor, nearest first.
func (s *Service) DonorView(ctx context.Context, donor string) ([]DonorMatch, error) {
	db := s.db.WithContext(ctx)

	var accepted models.Mapping
	err := db.Table(s.sub.MappingTable).
		Where("donor = ? AND is_accepted = ?", donor, true).
		Order("updated_at DESC").
		Take(&accepted).Error
	switch {
	case err == nil:
		match := DonorMatch{
			Donor:      accepted.Donor,
			Receiver:   accepted.Receiver,
			Distance:   accepted.Distance,
			IsAccepted: true,
		}
		messages, err := latestMessages(db, []string{accepted.Receiver}, s.sub.ContentType)
		if err != nil {
			return nil, err
		}
		match.Message = messages[accepted.Receiver]

		if s.sub.LoadListing != nil {
			listing, err := s.sub.LoadListing(db, accepted.Receiver)
			if err != nil && !errors.Is(err, ErrListingNotFound) {
				return nil, err
			}
			match.Listing = listing
		}
		return []DonorMatch{match}, nil
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, fmt.Errorf("failed to load accepted match: %w", err)
	}

	var pending []models.Mapping
	if err := db.Table(s.sub.MappingTable).
		Where("donor = ? AND is_accepted = ?", donor, false).
		Order("distance ASC").
		Find(&pending).Error; err != nil {
		return nil, fmt.Errorf("failed to load pending matches: %w", err)
	}

	receivers := make([]string, 0, len(pending))
	for _, m := range pending {
		receivers = append(receivers, m.Receiver)
	}
	messages, err := latestMessages(db, receivers, s.sub.ContentType)
	if err != nil {
		return nil, err
	}

	out := make([]DonorMatch, 0, len(pending))
	for _, m := range pending {
		out = append(out, DonorMatch{
			Donor:      m.Donor,
			Receiver:   m.Receiver,
			Distance:   m.Distance,
			IsAccepted: m.IsAccepted,
			Message:    messages[m.Receiver],
		})
	}
	return out, nil
}

// ReceiverView returns every mapping offered to receiver, in any state.
func (s *Service) ReceiverView(ctx context.Context, receiver string) ([]ReceiverMatch, error) {
	var mappings []models.Mapping
	if err := s.db.WithContext(ctx).
		Table(s.sub.MappingTable).
		Where("receiver = ?", receiver).
		Order("distance ASC").
		Find(&mappings).Error; err != nil {
		return nil, fmt.Errorf("failed to load receiver matches: %w", err)
	}

	out := make([]ReceiverMatch, 0, len(mappings))
	for _, m := range mappings {
		out = append(out, ReceiverMatch{Donor: m.Donor, Distance: m.Distance, IsAccepted: m.IsAccepted})
	}
	return out, nil
}

func (s *Service) publish(ctx context.Context, event events.Event) {
	if err := s.publisher.Publish(ctx, event); err != nil {
		metrics.EventPublishFailures.WithLabelValues(event.Type).Inc()
		slog.Error("failed to publish match event",
			"subsystem", s.sub.Name,
			"action", event.Type,
			"error", err,
		)
	}
}
