package trips

import (
	"errors"
	"fmt"
	"strings"

	"github.com/aarondkim/flights/internal/domain"
)

// Outcome rendering. Every operation result becomes newline-terminated text;
// the exact wording is relied on by existing callers, so changes here are
// protocol changes.

func RenderLogin(username string, err error) string {
	switch {
	case errors.Is(err, domain.ErrAlreadyLoggedIn):
		return "User already logged in\n"
	case err != nil:
		return "Login failed\n"
	default:
		return "Logged in as " + strings.ToLower(username) + "\n"
	}
}

func RenderCreateCustomer(username string, err error) string {
	if err != nil {
		return "Failed to create user\n"
	}
	return "Created user " + username + "\n"
}

func RenderSearch(itineraries []domain.Itinerary, err error) string {
	switch {
	case errors.Is(err, domain.ErrNoResults):
		return "No flights match your selection\n"
	case err != nil:
		return "Failed to search\n"
	}

	var sb strings.Builder
	for i, it := range itineraries {
		legs := it.Legs()
		fmt.Fprintf(&sb, "Itinerary %d: %d flight(s), %d minutes\n", i, len(legs), it.Duration())
		for _, leg := range legs {
			sb.WriteString(leg.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}

func RenderBook(itineraryIndex int, reservationID int64, err error) string {
	switch {
	case errors.Is(err, domain.ErrNotLoggedIn):
		return "Cannot book reservations, not logged in\n"
	case errors.Is(err, domain.ErrInvalidItinerary):
		return fmt.Sprintf("No such itinerary %d\n", itineraryIndex)
	case errors.Is(err, domain.ErrDuplicateDayBooking):
		return "You cannot book two flights in the same day\n"
	case err != nil:
		return "Booking failed\n"
	default:
		return fmt.Sprintf("Booked flight(s), reservation ID: %d\n", reservationID)
	}
}

func RenderPay(reservationID int64, username string, balance int, err error) string {
	var funds *domain.InsufficientFundsError
	switch {
	case errors.Is(err, domain.ErrNotLoggedIn):
		return "Cannot pay, not logged in\n"
	case errors.Is(err, domain.ErrReservationNotFound):
		return fmt.Sprintf("Cannot find unpaid reservation %d under user: %s\n", reservationID, username)
	case errors.As(err, &funds):
		return fmt.Sprintf("User has only %d in account but itinerary costs %d\n", funds.Balance, funds.Cost)
	case err != nil:
		return fmt.Sprintf("Failed to pay for reservation %d\n", reservationID)
	default:
		return fmt.Sprintf("Paid reservation: %d remaining balance: %d\n", reservationID, balance)
	}
}

func RenderReservations(details []domain.ReservationDetail, err error) string {
	switch {
	case errors.Is(err, domain.ErrNotLoggedIn):
		return "Cannot view reservations, not logged in\n"
	case err != nil:
		return "Failed to retrieve reservations\n"
	}
	if len(details) == 0 {
		return "No reservations found\n"
	}

	var sb strings.Builder
	for _, d := range details {
		fmt.Fprintf(&sb, "Reservation %d paid: %t:\n", d.ID, d.Paid)
		for _, leg := range d.Legs {
			sb.WriteString(leg.String())
			sb.WriteByte('\n')
		}
	}
	return sb.String()
}
