package trips

import (
	"context"
	"testing"

	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/kafka"
	"github.com/aarondkim/flights/internal/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestSession_Pay_Success(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()
	sess.user = "alice"
	ctx := context.Background()

	env.reservations.On("FindPayable", ctx, mock.Anything, int64(1), "alice").
		Return(&domain.Reservation{ID: 1, Username: "alice", FirstFID: 1}, nil)
	env.flights.On("ByID", ctx, mock.Anything, int64(1)).Return(&domain.Flight{FID: 1, Price: 80}, nil)
	env.users.On("Fetch", ctx, mock.Anything, "alice").
		Return(&domain.User{Username: "alice", Balance: 100}, nil)
	env.reservations.On("MarkPaid", ctx, mock.Anything, int64(1)).Return(nil)
	env.users.On("UpdateBalance", ctx, mock.Anything, "alice", 20).Return(nil)

	balance, err := sess.Pay(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 20, balance)
	env.reservations.AssertExpectations(t)
	env.users.AssertExpectations(t)
}

func TestSession_Pay_ConnectingSumsBothLegs(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()
	sess.user = "alice"
	ctx := context.Background()

	env.reservations.On("FindPayable", ctx, mock.Anything, int64(3), "alice").
		Return(&domain.Reservation{ID: 3, Username: "alice", FirstFID: 1, SecondFID: 2}, nil)
	env.flights.On("ByID", ctx, mock.Anything, int64(1)).Return(&domain.Flight{FID: 1, Price: 60}, nil)
	env.flights.On("ByID", ctx, mock.Anything, int64(2)).Return(&domain.Flight{FID: 2, Price: 50}, nil)
	env.users.On("Fetch", ctx, mock.Anything, "alice").
		Return(&domain.User{Username: "alice", Balance: 120}, nil)
	env.reservations.On("MarkPaid", ctx, mock.Anything, int64(3)).Return(nil)
	env.users.On("UpdateBalance", ctx, mock.Anything, "alice", 10).Return(nil)

	balance, err := sess.Pay(ctx, 3)
	assert.NoError(t, err)
	assert.Equal(t, 10, balance)
}

func TestSession_Pay_NotLoggedIn(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()

	_, err := sess.Pay(context.Background(), 1)
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
	assert.Equal(t, 0, env.runner.writeCalls)
}

func TestSession_Pay_ReservationNotFound(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()
	sess.user = "alice"
	ctx := context.Background()

	env.reservations.On("FindPayable", ctx, mock.Anything, int64(9), "alice").
		Return(nil, repository.ErrNotFound)

	_, err := sess.Pay(ctx, 9)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestSession_Pay_InsufficientFunds(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()
	sess.user = "alice"
	ctx := context.Background()

	env.reservations.On("FindPayable", ctx, mock.Anything, int64(1), "alice").
		Return(&domain.Reservation{ID: 1, Username: "alice", FirstFID: 1}, nil)
	env.flights.On("ByID", ctx, mock.Anything, int64(1)).Return(&domain.Flight{FID: 1, Price: 150}, nil)
	env.users.On("Fetch", ctx, mock.Anything, "alice").
		Return(&domain.User{Username: "alice", Balance: 100}, nil)

	_, err := sess.Pay(ctx, 1)
	var funds *domain.InsufficientFundsError
	assert.ErrorAs(t, err, &funds)
	assert.Equal(t, 100, funds.Balance)
	assert.Equal(t, 150, funds.Cost)
	env.reservations.AssertNotCalled(t, "MarkPaid", mock.Anything, mock.Anything, mock.Anything)
	env.users.AssertNotCalled(t, "UpdateBalance", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestSession_Pay_DoublePayRejected(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()
	sess.user = "alice"
	ctx := context.Background()

	env.reservations.On("FindPayable", ctx, mock.Anything, int64(1), "alice").
		Return(&domain.Reservation{ID: 1, Username: "alice", FirstFID: 1}, nil).Once()
	env.flights.On("ByID", ctx, mock.Anything, int64(1)).Return(&domain.Flight{FID: 1, Price: 80}, nil)
	env.users.On("Fetch", ctx, mock.Anything, "alice").
		Return(&domain.User{Username: "alice", Balance: 100}, nil)
	env.reservations.On("MarkPaid", ctx, mock.Anything, int64(1)).Return(nil)
	env.users.On("UpdateBalance", ctx, mock.Anything, "alice", 20).Return(nil)
	// once paid, the reservation is no longer payable
	env.reservations.On("FindPayable", ctx, mock.Anything, int64(1), "alice").
		Return(nil, repository.ErrNotFound)

	balance, err := sess.Pay(ctx, 1)
	assert.NoError(t, err)
	assert.Equal(t, 20, balance)

	_, err = sess.Pay(ctx, 1)
	assert.ErrorIs(t, err, domain.ErrReservationNotFound)
}

func TestSession_Pay_PublishesEvent(t *testing.T) {
	producer := &MockProducer{}
	env := newTestEnv(WithProducer(producer, "reservation-events"))
	sess := env.svc.NewSession()
	sess.user = "alice"
	ctx := context.Background()

	env.reservations.On("FindPayable", ctx, mock.Anything, int64(1), "alice").
		Return(&domain.Reservation{ID: 1, Username: "alice", FirstFID: 1}, nil)
	env.flights.On("ByID", ctx, mock.Anything, int64(1)).Return(&domain.Flight{FID: 1, Price: 80}, nil)
	env.users.On("Fetch", ctx, mock.Anything, "alice").
		Return(&domain.User{Username: "alice", Balance: 100}, nil)
	env.reservations.On("MarkPaid", ctx, mock.Anything, int64(1)).Return(nil)
	env.users.On("UpdateBalance", ctx, mock.Anything, "alice", 20).Return(nil)
	producer.On("Publish", ctx, "reservation-events", "1", mock.MatchedBy(func(v interface{}) bool {
		ev, ok := v.(kafka.ReservationEvent)
		return ok && ev.Type == kafka.EventReservationPaid && ev.Balance == 20
	})).Return(nil)

	_, err := sess.Pay(ctx, 1)
	assert.NoError(t, err)
	producer.AssertExpectations(t)
}

func TestSession_Reservations_ListsWithFlightDetails(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()
	sess.user = "alice"
	ctx := context.Background()

	env.reservations.On("ListByUser", ctx, mock.Anything, "alice").Return([]domain.Reservation{
		{ID: 1, Username: "alice", FirstFID: 1, Paid: true},
		{ID: 2, Username: "alice", FirstFID: 2, SecondFID: 3, Paid: false},
	}, nil)
	env.flights.On("ByID", ctx, mock.Anything, int64(1)).Return(&domain.Flight{FID: 1, Duration: 300}, nil)
	env.flights.On("ByID", ctx, mock.Anything, int64(2)).Return(&domain.Flight{FID: 2, Duration: 100}, nil)
	env.flights.On("ByID", ctx, mock.Anything, int64(3)).Return(&domain.Flight{FID: 3, Duration: 120}, nil)

	details, err := sess.Reservations(ctx)
	assert.NoError(t, err)
	assert.Len(t, details, 2)
	assert.True(t, details[0].Paid)
	assert.Len(t, details[0].Legs, 1)
	assert.Len(t, details[1].Legs, 2)
	// read-only, never commits
	assert.Equal(t, 0, env.runner.writeCalls)
}

func TestSession_Reservations_NotLoggedIn(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()

	_, err := sess.Reservations(context.Background())
	assert.ErrorIs(t, err, domain.ErrNotLoggedIn)
}

func TestSession_Reservations_EmptyIsNotAnError(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()
	sess.user = "alice"
	ctx := context.Background()

	env.reservations.On("ListByUser", ctx, mock.Anything, "alice").Return([]domain.Reservation{}, nil)

	details, err := sess.Reservations(ctx)
	assert.NoError(t, err)
	assert.Empty(t, details)
}

func TestSession_Reservations_Idempotent(t *testing.T) {
	env := newTestEnv()
	sess := env.svc.NewSession()
	sess.user = "alice"
	ctx := context.Background()

	env.reservations.On("ListByUser", ctx, mock.Anything, "alice").Return([]domain.Reservation{
		{ID: 1, Username: "alice", FirstFID: 1},
	}, nil)
	env.flights.On("ByID", ctx, mock.Anything, int64(1)).Return(&domain.Flight{FID: 1}, nil)

	first, err := sess.Reservations(ctx)
	assert.NoError(t, err)
	second, err := sess.Reservations(ctx)
	assert.NoError(t, err)
	assert.Equal(t, RenderReservations(first, nil), RenderReservations(second, nil))
}
