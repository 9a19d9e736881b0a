package storage

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"

	usermodel "VProject/module/user/model"
	"VProject/tools/errs"
)

// PGUserDirectory reads the users table maintained by the HTTP collaborator.
type PGUserDirectory struct {
	pool *pgxpool.Pool
}

func NewPGUserDirectory(pool *pgxpool.Pool) *PGUserDirectory {
	return &PGUserDirectory{pool: pool}
}

func (d *PGUserDirectory) GetUser(ctx context.Context, id int64) (*usermodel.User, error) {
	var u usermodel.User
	err := d.pool.QueryRow(ctx,
		`SELECT id, username, email FROM users WHERE id = $1`, id,
	).Scan(&u.ID, &u.Username, &u.Email)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, errs.ErrUserNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query user")
	}
	return &u, nil
}

var _ UserDirectory = (*PGUserDirectory)(nil)
