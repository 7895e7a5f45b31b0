package trips

import (
	"context"

	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/kafka"
	"github.com/aarondkim/flights/internal/store"
)

// Book reserves the itinerary at the given index of the session's last search
// and returns the assigned reservation id. Day exclusivity, per-leg capacity,
// id assignment and the insert all run in one serializable transaction; the
// max(res_id)+1 read is the deliberate conflict point that makes concurrent
// bookings collide instead of silently sharing an id or a last seat.
func (s *Session) Book(ctx context.Context, itineraryIndex int) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return 0, domain.ErrNotLoggedIn
	}
	if itineraryIndex < 0 || itineraryIndex >= len(s.lastSearch) {
		return 0, domain.ErrInvalidItinerary
	}
	itinerary := s.lastSearch[itineraryIndex]
	legs := itinerary.Legs()

	var reservationID int64
	err := s.svc.store.Write(ctx, func(ctx context.Context, q store.Queryer) error {
		taken, err := s.svc.reservations.HasOnDay(ctx, q, s.user, itinerary.First().Day)
		if err != nil {
			return err
		}
		if taken {
			return domain.ErrDuplicateDayBooking
		}

		for _, leg := range legs {
			seated, err := s.svc.reservations.SeatsTaken(ctx, q, leg.FID)
			if err != nil {
				return err
			}
			if leg.Capacity-seated <= 0 {
				return domain.ErrCapacityExceeded
			}
		}

		id, err := s.svc.reservations.NextID(ctx, q)
		if err != nil {
			return err
		}

		res := &domain.Reservation{
			ID:       id,
			Username: s.user,
			FirstFID: legs[0].FID,
		}
		if len(legs) == 2 {
			res.SecondFID = legs[1].FID
		}
		if err := s.svc.reservations.Insert(ctx, q, res); err != nil {
			return err
		}
		reservationID = id
		return nil
	})
	if err != nil {
		return 0, err
	}

	fids := make([]int64, 0, len(legs))
	for _, leg := range legs {
		fids = append(fids, leg.FID)
	}
	s.svc.publish(ctx, kafka.ReservationEvent{
		Type:          kafka.EventReservationBooked,
		ReservationID: reservationID,
		Username:      s.user,
		FlightIDs:     fids,
	})
	return reservationID, nil
}
