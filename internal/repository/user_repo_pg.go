package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/aarondkim/flights/internal/domain"
	"github.com/aarondkim/flights/internal/store"
	"github.com/jackc/pgx/v5"
)

// ErrNotFound is returned when a lookup matches no row.
var ErrNotFound = errors.New("not found")

// Repositories take a store.Queryer per call instead of holding a pool:
// booking and payment run their statements on the transaction the service
// opened, searches run straight on the pool.

type UserRepository interface {
	Fetch(ctx context.Context, q store.Queryer, username string) (*domain.User, error)
	Insert(ctx context.Context, q store.Queryer, user *domain.User) error
	UpdateBalance(ctx context.Context, q store.Queryer, username string, balance int) error
}

type PGUserRepository struct{}

func NewUserRepository() UserRepository {
	return &PGUserRepository{}
}

func (r *PGUserRepository) Fetch(ctx context.Context, q store.Queryer, username string) (*domain.User, error) {
	row := q.QueryRow(ctx, `SELECT username, hashed_password, balance FROM users WHERE username=$1`, username)
	var u domain.User
	if err := row.Scan(&u.Username, &u.PasswordHash, &u.Balance); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

func (r *PGUserRepository) Insert(ctx context.Context, q store.Queryer, user *domain.User) error {
	tag, err := q.Exec(ctx, `INSERT INTO users (username, hashed_password, balance) VALUES ($1, $2, $3)`,
		user.Username, user.PasswordHash, user.Balance)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("insert user %s: %d rows affected", user.Username, tag.RowsAffected())
	}
	return nil
}

func (r *PGUserRepository) UpdateBalance(ctx context.Context, q store.Queryer, username string, balance int) error {
	tag, err := q.Exec(ctx, `UPDATE users SET balance=$1 WHERE username=$2`, balance, username)
	if err != nil {
		return err
	}
	if tag.RowsAffected() != 1 {
		return fmt.Errorf("update balance for %s: %d rows affected", username, tag.RowsAffected())
	}
	return nil
}

var _ UserRepository = (*PGUserRepository)(nil)
