package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/store"
	"github.com/jackc/pgx/v5"
)

type ReservationRepository interface {
	HasOnDay(ctx context.Context, q store.Queryer, username string, day int) (bool, error)
	SeatsTaken(ctx context.Context, q store.Queryer, fid int64) (int, error)
	NextID(ctx context.Context, q store.Queryer) (int64, error)
	Insert(ctx context.Context, q store.Queryer, res *domain.Reservation) error
	FindPayable(ctx context.Context, q store.Queryer, id int64, username string) (*domain.Reservation, error)
	MarkPaid(ctx context.Context, q store.Queryer, id int64) error
	ListByUser(ctx context.Context, q store.Queryer, username string) ([]domain.Reservation, error)
}

type PGReservationRepository struct{}

func NewReservationRepository() ReservationRepository {
	return &PGReservationRepository{}
}

func (r *PGReservationRepository) HasOnDay(ctx context.Context, q store.Queryer, username string, day int) (bool, error) {
	row := q.QueryRow(ctx, `SELECT EXISTS (
		SELECT 1 FROM reservations r
		JOIN flights f ON r.fid1 = f.fid
		WHERE r.username=$1 AND f.day_of_month=$2)`, username, day)
	var exists bool
	if err := row.Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

// SeatsTaken counts reservations holding a seat on the flight as either leg.
func (r *PGReservationRepository) SeatsTaken(ctx context.Context, q store.Queryer, fid int64) (int, error) {
	row := q.QueryRow(ctx, `SELECT COUNT(*) FROM reservations WHERE fid1=$1 OR fid2=$1`, fid)
	var taken int
	if err := row.Scan(&taken); err != nil {
		return 0, err
	}
	return taken, nil
}

// NextID reads max(res_id)+1 inside the caller's transaction. Two concurrent
// bookings reading the same next id is the conflict the store retry loop
// exists to resolve.
func (r *PGReservationRepository) NextID(ctx context.Context, q store.Queryer) (int64, error) {
	row := q.QueryRow(ctx, `SELECT COALESCE(MAX(res_id), 0) + 1 FROM reservations`)
	var next int64
	if err := row.Scan(&next); err != nil {
		return 0, err
	}
	return next, nil
}

func (r *PGReservationRepository) Insert(ctx context.Context, q store.Queryer, res *domain.Reservation) error {
	var fid2 any
	if res.HasSecondLeg() {
		fid2 = res.SecondFID
	}
	tag, err := q.Exec(ctx, `INSERT INTO reservations (res_id, paid, username, fid1, fid2) VALUES ($1, FALSE, $2, $3, $4)`,
		res.ID, res.Username, res.FirstFID, fid2)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("insert reservation %d: %d rows affected", res.ID, tag.RowsAffected())
	}
	return nil
}

func (r *PGReservationRepository) FindPayable(ctx context.Context, q store.Queryer, id int64, username string) (*domain.Reservation, error) {
	row := q.QueryRow(ctx, `SELECT res_id, paid, username, fid1, COALESCE(fid2, 0)
		FROM reservations WHERE res_id=$1 AND username=$2 AND NOT paid`, id, username)
	res, err := scanReservation(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return res, nil
}

func (r *PGReservationRepository) MarkPaid(ctx context.Context, q store.Queryer, id int64) error {
	tag, err := q.Exec(ctx, `UPDATE reservations SET paid=TRUE WHERE res_id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("mark reservation %d paid: %d rows affected", id, tag.RowsAffected())
	}
	return nil
}

func (r *PGReservationRepository) ListByUser(ctx context.Context, q store.Queryer, username string) ([]domain.Reservation, error) {
	rows, err := q.Query(ctx, `SELECT res_id, paid, username, fid1, COALESCE(fid2, 0)
		FROM reservations WHERE username=$1 ORDER BY res_id`, username)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Reservation
	for rows.Next() {
		res, err := scanReservation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *res)
	}
	return out, rows.Err()
}

func scanReservation(row pgx.Row) (*domain.Reservation, error) {
	var res domain.Reservation
	if err := row.Scan(&res.ID, &res.Paid, &res.Username, &res.FirstFID, &res.SecondFID); err != nil {
		return nil, err
	}
	return &res, nil
}

var _ ReservationRepository = (*PGReservationRepository)(nil)
