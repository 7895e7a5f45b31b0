package trips

import (
	"context"
	"log"
	"sort"

	"github.com/aarondkim/flights/internal/cache"
	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/store"
)

// Search computes up to limit itineraries for origin/dest/day: direct flights
// first, then one-stop pairs filling the remaining quota when directOnly is
// false. Results are ordered by total duration, then first-leg fid, then
// second-leg fid, and replace the session's last search (even when empty).
// Itinerary indices handed to Book are positions in this ordering.
func (s *Session) Search(ctx context.Context, origin, dest string, directOnly bool, day, limit int) ([]domain.Itinerary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if limit <= 0 {
		return nil, domain.ErrInvalidInput
	}

	key := cache.SearchKey{Origin: origin, Dest: dest, Day: day, Limit: limit, DirectOnly: directOnly}
	if s.svc.cache != nil {
		cached, err := s.svc.cache.GetSearch(ctx, key)
		if err != nil {
			log.Printf("search cache read: %v", err)
		} else if cached != nil {
			return s.finish(cached)
		}
	}

	var itineraries []domain.Itinerary
	err := s.svc.store.Read(ctx, func(ctx context.Context, q store.Queryer) error {
		itineraries = itineraries[:0]

		direct, err := s.svc.flights.Direct(ctx, q, origin, dest, day, limit)
		if err != nil {
			return err
		}
		for _, f := range direct {
			itineraries = append(itineraries, domain.Direct{Leg: f})
		}

		if !directOnly && len(itineraries) < limit {
			pairs, err := s.svc.flights.OneStop(ctx, q, origin, dest, day, limit-len(itineraries))
			if err != nil {
				return err
			}
			for _, p := range pairs {
				itineraries = append(itineraries, p)
			}
			sort.Slice(itineraries, func(i, j int) bool {
				return domain.Less(itineraries[i], itineraries[j])
			})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.svc.cache != nil {
		if err := s.svc.cache.SetSearch(ctx, key, itineraries); err != nil {
			log.Printf("search cache write: %v", err)
		}
	}
	return s.finish(itineraries)
}

// finish installs the result as the session's current search; a stale index
// from a previous search must never resolve against the new one.
func (s *Session) finish(itineraries []domain.Itinerary) ([]domain.Itinerary, error) {
	s.lastSearch = itineraries
	if len(itineraries) == 0 {
		return nil, domain.ErrNoResults
	}
	return itineraries, nil
}
