package trips

import (
	"context"
	"errors"

	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/kafka"
	"github.com/aarondkim/flights/internal/repository"
	"github.com/aarondkim/flights/internal/store"
)

// Pay settles an unpaid reservation owned by the session's user against their
// balance and returns the remaining balance. Marking paid and writing the new
// balance commit together or not at all.
func (s *Session) Pay(ctx context.Context, reservationID int64) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return 0, domain.ErrNotLoggedIn
	}

	var newBalance int
	err := s.svc.store.Write(ctx, func(ctx context.Context, q store.Queryer) error {
		res, err := s.svc.reservations.FindPayable(ctx, q, reservationID, s.user)
		if errors.Is(err, repository.ErrNotFound) {
			return domain.ErrReservationNotFound
		}
		if err != nil {
			return err
		}

		cost, err := s.totalCost(ctx, q, res)
		if err != nil {
			return err
		}

		user, err := s.svc.users.Fetch(ctx, q, s.user)
		if err != nil {
			return err
		}
		if user.Balance-cost < 0 {
			return &domain.InsufficientFundsError{Balance: user.Balance, Cost: cost}
		}

		if err := s.svc.reservations.MarkPaid(ctx, q, reservationID); err != nil {
			return err
		}
		if err := s.svc.users.UpdateBalance(ctx, q, s.user, user.Balance-cost); err != nil {
			return err
		}
		newBalance = user.Balance - cost
		return nil
	})
	if err != nil {
		return 0, err
	}

	s.svc.publish(ctx, kafka.ReservationEvent{
		Type:          kafka.EventReservationPaid,
		ReservationID: reservationID,
		Username:      s.user,
		Balance:       newBalance,
	})
	return newBalance, nil
}

func (s *Session) totalCost(ctx context.Context, q store.Queryer, res *domain.Reservation) (int, error) {
	first, err := s.svc.flights.ByID(ctx, q, res.FirstFID)
	if err != nil {
		return 0, err
	}
	cost := first.Price
	if res.HasSecondLeg() {
		second, err := s.svc.flights.ByID(ctx, q, res.SecondFID)
		if err != nil {
			return 0, err
		}
		cost += second.Price
	}
	return cost, nil
}

// Reservations lists the user's reservations with full flight details, ordered
// by reservation id. Read-only: the transaction is rolled back after the read.
func (s *Session) Reservations(ctx context.Context) ([]domain.ReservationDetail, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.user == "" {
		return nil, domain.ErrNotLoggedIn
	}

	var details []domain.ReservationDetail
	err := s.svc.store.Read(ctx, func(ctx context.Context, q store.Queryer) error {
		details = details[:0]

		list, err := s.svc.reservations.ListByUser(ctx, q, s.user)
		if err != nil {
			return err
		}
		for _, res := range list {
			first, err := s.svc.flights.ByID(ctx, q, res.FirstFID)
			if err != nil {
				return err
			}
			legs := []domain.Flight{*first}
			if res.HasSecondLeg() {
				second, err := s.svc.flights.ByID(ctx, q, res.SecondFID)
				if err != nil {
					return err
				}
				legs = append(legs, *second)
			}
			details = append(details, domain.ReservationDetail{ID: res.ID, Paid: res.Paid, Legs: legs})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}
