package matching

import (
	"sort"

	"github.com/covaid/covaid-backend/internal/geo"
)

// Candidate is an eligible donor listing together with its distance to the requester.
type Candidate struct {
	MobileNumber string  `json:"mobileNumber"`
	Latitude     float64 `json:"latitude"`
	Longitude    float64 `json:"longitude"`
	Distance     float64 `gorm:"-" json:"distance"`
}

// SelectNearest computes the distance of every listing to origin, drops listings
// at or beyond radiusKm, keeps the nearest listing per mobile number and returns
// at most limit candidates, nearest first.
func SelectNearest(origin geo.Point, listings []Candidate, radiusKm float64, limit int) []Candidate {
	nearest := make(map[string]int, len(listings))
	kept := make([]Candidate, 0, len(listings))

	for _, l := range listings {
		l.Distance = geo.Distance(origin, geo.Point{Lat: l.Latitude, Lon: l.Longitude})
		if l.Distance >= radiusKm {
			continue
		}
		if i, seen := nearest[l.MobileNumber]; seen {
			if l.Distance < kept[i].Distance {
				kept[i] = l
			}
			continue
		}
		nearest[l.MobileNumber] = len(kept)
		kept = append(kept, l)
	}

	sort.SliceStable(kept, func(i, j int) bool {
		return kept[i].Distance < kept[j].Distance
	})

	if limit >= 0 && len(kept) > limit {
		kept = kept[:limit]
	}
	return kept
}
