package oxygen

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/covaid/covaid-backend/internal/events"
	"github.com/covaid/covaid-backend/internal/geo"
	"github.com/covaid/covaid-backend/internal/matching"
	"github.com/covaid/covaid-backend/internal/models"
	"github.com/covaid/covaid-backend/internal/testutil"
	"github.com/covaid/covaid-backend/internal/validation"
)

func floatPtr(v float64) *float64 { return &v }

func entry(mobile string, receiver bool, lat, lon float64) *EntryRequest {
	return &EntryRequest{
		MobileNumber:   mobile,
		OxygenReceiver: receiver,
		Latitude:       floatPtr(lat),
		Longitude:      floatPtr(lon),
	}
}

func TestListingService(t *testing.T) {
	ctx := context.Background()
	db := testutil.NewDB(t, New().Models()...)
	svc := NewListingService(db)

	_, err := svc.Get(ctx, "9000000001")
	require.ErrorIs(t, err, matching.ErrListingNotFound)

	req := entry("9000000001", false, 28.61, 77.20)
	req.FullGear = true
	req.CanDeliver = true
	created, err := svc.Create(ctx, req)
	require.NoError(t, err)
	assert.True(t, created.IsActive)

	_, err = svc.Create(ctx, entry("9000000001", false, 28.61, 77.20))
	require.ErrorIs(t, err, ErrListingExists)

	got, err := svc.Get(ctx, "9000000001")
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
	assert.True(t, got.FullGear)
	assert.True(t, got.CanDeliver)

	bad := entry("9000000002", false, 0, 200)
	_, err = svc.Create(ctx, bad)
	assert.True(t, validation.IsValidation(err), "got %v", err)
}

func TestMatching(t *testing.T) {
	ctx := context.Background()
	p := New()
	db := testutil.NewDB(t, p.Models()...)
	listings := NewListingService(db)
	matcher := matching.NewService(db, p.Subsystem(), events.NopPublisher{})

	t.Run("message kept even without suppliers", func(t *testing.T) {
		n, err := matcher.RequestMatch(ctx, matching.Request{
			Mobile:  "9000000001",
			Message: "cylinder needed",
			Origin:  geo.Point{Lat: 28.61, Lon: 77.20},
		})
		require.NoError(t, err)
		assert.Zero(t, n)

		text, found, err := matching.LatestMessage(db, "9000000001", models.ContentOxygen)
		require.NoError(t, err)
		assert.True(t, found)
		assert.Equal(t, "cylinder needed", text)
	})

	t.Run("any active supplier in range matches", func(t *testing.T) {
		for _, e := range []*EntryRequest{
			entry("9000000002", false, 28.70, 77.10),
			entry("9000000003", false, 19.07, 72.87),
			entry("9000000004", true, 28.62, 77.21),
		} {
			_, err := listings.Create(ctx, e)
			require.NoError(t, err)
		}

		n, err := matcher.RequestMatch(ctx, matching.Request{
			Mobile:  "9000000001",
			Message: "still need one",
			Origin:  geo.Point{Lat: 28.61, Lon: 77.20},
		})
		require.NoError(t, err)
		assert.Equal(t, 1, n)

		view, err := matcher.DonorView(ctx, "9000000002")
		require.NoError(t, err)
		require.Len(t, view, 1)
		assert.Equal(t, "9000000001", view[0].Receiver)
		assert.Equal(t, "still need one", view[0].Message)
	})

	t.Run("accept closes listings", func(t *testing.T) {
		res, err := matcher.Accept(ctx, "9000000002", "9000000001")
		require.NoError(t, err)
		assert.True(t, res.Accepted)
		assert.Equal(t, int64(1), res.Deactivated)

		got, err := listings.Get(ctx, "9000000002")
		require.NoError(t, err)
		assert.False(t, got.IsActive)

		view, err := matcher.DonorView(ctx, "9000000002")
		require.NoError(t, err)
		require.Len(t, view, 1)
		assert.True(t, view[0].IsAccepted)
		assert.Nil(t, view[0].Listing)
	})
}
