package repository

import (
	"context"
	"errors"

	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/store"
	"github.com/jackc/pgx/v5"
)

type FlightRepository interface {
	Direct(ctx context.Context, q store.Queryer, origin, dest string, day, limit int) ([]domain.Flight, error)
	OneStop(ctx context.Context, q store.Queryer, origin, dest string, day, limit int) ([]domain.Connecting, error)
	ByID(ctx context.Context, q store.Queryer, fid int64) (*domain.Flight, error)
}

type PGFlightRepository struct{}

func NewFlightRepository() FlightRepository {
	return &PGFlightRepository{}
}

const flightColumns = `fid, day_of_month, carrier_id, flight_num, origin_city, dest_city, actual_time, capacity, price, canceled`

func (r *PGFlightRepository) Direct(ctx context.Context, q store.Queryer, origin, dest string, day, limit int) ([]domain.Flight, error) {
	rows, err := q.Query(ctx, `SELECT `+flightColumns+`
		FROM flights
		WHERE origin_city=$1 AND dest_city=$2 AND day_of_month=$3 AND NOT canceled
		ORDER BY actual_time, fid
		LIMIT $4`, origin, dest, day, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var flights []domain.Flight
	for rows.Next() {
		f, err := scanFlight(rows)
		if err != nil {
			return nil, err
		}
		flights = append(flights, f)
	}
	return flights, rows.Err()
}

func (r *PGFlightRepository) OneStop(ctx context.Context, q store.Queryer, origin, dest string, day, limit int) ([]domain.Connecting, error) {
	rows, err := q.Query(ctx, `SELECT
			f1.fid, f1.day_of_month, f1.carrier_id, f1.flight_num, f1.origin_city, f1.dest_city, f1.actual_time, f1.capacity, f1.price, f1.canceled,
			f2.fid, f2.day_of_month, f2.carrier_id, f2.flight_num, f2.origin_city, f2.dest_city, f2.actual_time, f2.capacity, f2.price, f2.canceled
		FROM flights f1
		JOIN flights f2 ON f1.dest_city = f2.origin_city AND f1.day_of_month = f2.day_of_month
		WHERE f1.origin_city=$1 AND f2.dest_city=$2 AND f1.day_of_month=$3
			AND NOT f1.canceled AND NOT f2.canceled
		ORDER BY f1.actual_time + f2.actual_time, f1.fid, f2.fid
		LIMIT $4`, origin, dest, day, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var pairs []domain.Connecting
	for rows.Next() {
		var c domain.Connecting
		if err := rows.Scan(
			&c.Out.FID, &c.Out.Day, &c.Out.Carrier, &c.Out.Number, &c.Out.Origin, &c.Out.Dest, &c.Out.Duration, &c.Out.Capacity, &c.Out.Price, &c.Out.Canceled,
			&c.Next.FID, &c.Next.Day, &c.Next.Carrier, &c.Next.Number, &c.Next.Origin, &c.Next.Dest, &c.Next.Duration, &c.Next.Capacity, &c.Next.Price, &c.Next.Canceled,
		); err != nil {
			return nil, err
		}
		pairs = append(pairs, c)
	}
	return pairs, rows.Err()
}

func (r *PGFlightRepository) ByID(ctx context.Context, q store.Queryer, fid int64) (*domain.Flight, error) {
	row := q.QueryRow(ctx, `SELECT `+flightColumns+` FROM flights WHERE fid=$1`, fid)
	f, err := scanFlight(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &f, nil
}

func scanFlight(row pgx.Row) (domain.Flight, error) {
	var f domain.Flight
	err := row.Scan(&f.FID, &f.Day, &f.Carrier, &f.Number, &f.Origin, &f.Dest, &f.Duration, &f.Capacity, &f.Price, &f.Canceled)
	return f, err
}

var _ FlightRepository = (*PGFlightRepository)(nil)
