package trips

import (
	"context"

	"github.com/aarondkim/flights/internal/cache"
	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/store"
	"github.com/stretchr/testify/mock"
)

type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Fetch(ctx context.Context, q store.Queryer, username string) (*domain.User, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.User), args.Error(1)
}

func (m *MockUserRepository) Insert(ctx context.Context, q store.Queryer, user *domain.User) error {
	args := m.Called(ctx, q, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateBalance(ctx context.Context, q store.Queryer, username string, balance int) error {
	args := m.Called(ctx, q, username, balance)
	return args.Error(0)
}

type MockFlightRepository struct {
	mock.Mock
}

func (m *MockFlightRepository) Direct(ctx context.Context, q store.Queryer, origin, dest string, day, limit int) ([]domain.Flight, error) {
	args := m.Called(ctx, q, origin, dest, day, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Flight), args.Error(1)
}

func (m *MockFlightRepository) OneStop(ctx context.Context, q store.Queryer, origin, dest string, day, limit int) ([]domain.Connecting, error) {
	args := m.Called(ctx, q, origin, dest, day, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Connecting), args.Error(1)
}

func (m *MockFlightRepository) ByID(ctx context.Context, q store.Queryer, fid int64) (*domain.Flight, error) {
	args := m.Called(ctx, q, fid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Flight), args.Error(1)
}

type MockReservationRepository struct {
	mock.Mock
}

func (m *MockReservationRepository) HasOnDay(ctx context.Context, q store.Queryer, username string, day int) (bool, error) {
	args := m.Called(ctx, q, username, day)
	return args.Bool(0), args.Error(1)
}

func (m *MockReservationRepository) SeatsTaken(ctx context.Context, q store.Queryer, fid int64) (int, error) {
	args := m.Called(ctx, q, fid)
	return args.Int(0), args.Error(1)
}

func (m *MockReservationRepository) NextID(ctx context.Context, q store.Queryer) (int64, error) {
	args := m.Called(ctx, q)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockReservationRepository) Insert(ctx context.Context, q store.Queryer, res *domain.Reservation) error {
	args := m.Called(ctx, q, res)
	return args.Error(0)
}

func (m *MockReservationRepository) FindPayable(ctx context.Context, q store.Queryer, id int64, username string) (*domain.Reservation, error) {
	args := m.Called(ctx, q, id, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*domain.Reservation), args.Error(1)
}

func (m *MockReservationRepository) MarkPaid(ctx context.Context, q store.Queryer, id int64) error {
	args := m.Called(ctx, q, id)
	return args.Error(0)
}

func (m *MockReservationRepository) ListByUser(ctx context.Context, q store.Queryer, username string) ([]domain.Reservation, error) {
	args := m.Called(ctx, q, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Reservation), args.Error(1)
}

type MockCache struct {
	mock.Mock
}

func (m *MockCache) GetSearch(ctx context.Context, key cache.SearchKey) ([]domain.Itinerary, error) {
	args := m.Called(ctx, key)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]domain.Itinerary), args.Error(1)
}

func (m *MockCache) SetSearch(ctx context.Context, key cache.SearchKey, itineraries []domain.Itinerary) error {
	args := m.Called(ctx, key, itineraries)
	return args.Error(0)
}

type MockProducer struct {
	mock.Mock
}

func (m *MockProducer) Publish(ctx context.Context, topic, key string, value interface{}) error {
	args := m.Called(ctx, topic, key, value)
	return args.Error(0)
}

// stubRunner replays the store's transaction discipline without a database:
// run the function, re-run it on a retryable conflict up to maxAttempts,
// surface anything else immediately.
type stubRunner struct {
	maxAttempts int
	writeCalls  int
	readCalls   int
}

func (r *stubRunner) Write(ctx context.Context, fn func(ctx context.Context, q store.Queryer) error) error {
	r.writeCalls++
	return r.run(ctx, fn)
}

func (r *stubRunner) Read(ctx context.Context, fn func(ctx context.Context, q store.Queryer) error) error {
	r.readCalls++
	return r.run(ctx, fn)
}

func (r *stubRunner) run(ctx context.Context, fn func(ctx context.Context, q store.Queryer) error) error {
	attempts := r.maxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var err error
	for i := 0; i < attempts; i++ {
		err = fn(ctx, nil)
		if err == nil || !store.IsRetryable(err) {
			return err
		}
	}
	return err
}

type testEnv struct {
	users        *MockUserRepository
	flights      *MockFlightRepository
	reservations *MockReservationRepository
	runner       *stubRunner
	svc          *Service
}

func newTestEnv(opts ...ServiceOption) *testEnv {
	env := &testEnv{
		users:        &MockUserRepository{},
		flights:      &MockFlightRepository{},
		reservations: &MockReservationRepository{},
		runner:       &stubRunner{maxAttempts: 3},
	}
	env.svc = NewService(env.runner, env.users, env.flights, env.reservations, opts...)
	return env
}
