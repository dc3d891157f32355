package user

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	ErrNotFound    = errors.New("user not found")
	ErrEmailExists = errors.New("user with this email already exists")
)

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id int64) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error)
	UpdateAvatar(ctx context.Context, id int64, filename string) error
}

type postgresRepository struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) Repository {
	return &postgresRepository{db: db}
}

const userColumns = `id, email, senha_hash, nome, telefone, endereco, avatar_filename, is_admin, criado_em, atualizado_em`

func (r *postgresRepository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (email, senha_hash, nome, telefone, endereco)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, is_admin, criado_em, atualizado_em
	`

	err := r.db.QueryRow(ctx, query,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Phone,
		user.Address,
	).Scan(&user.ID, &user.IsAdmin, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return ErrEmailExists
		}
		return fmt.Errorf("repository: failed to insert user: %w", err)
	}

	return nil
}

func (r *postgresRepository) GetByID(ctx context.Context, id int64) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	var u User
	if err := scanUser(r.db.QueryRow(ctx, query, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by id %d: %w", id, err)
	}

	return &u, nil
}

func (r *postgresRepository) GetByEmail(ctx context.Context, email string) (*User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u User
	if err := scanUser(r.db.QueryRow(ctx, query, email), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to select user by email: %w", err)
	}

	return &u, nil
}

func (r *postgresRepository) UpdateProfile(ctx context.Context, id int64, update ProfileUpdate) (*User, error) {
	query := `
		UPDATE users
		SET nome = COALESCE($1, nome),
		    telefone = COALESCE($2, telefone),
		    endereco = COALESCE($3, endereco),
		    atualizado_em = now()
		WHERE id = $4
		RETURNING ` + userColumns

	var u User
	if err := scanUser(r.db.QueryRow(ctx, query, update.Name, update.Phone, update.Address, id), &u); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("repository: failed to update user %d: %w", id, err)
	}

	return &u, nil
}

func (r *postgresRepository) UpdateAvatar(ctx context.Context, id int64, filename string) error {
	query := `UPDATE users SET avatar_filename = $1, atualizado_em = now() WHERE id = $2`

	cmdTag, err := r.db.Exec(ctx, query, filename, id)
	if err != nil {
		return fmt.Errorf("repository: failed to update avatar for user %d: %w", id, err)
	}
	if cmdTag.RowsAffected() == 0 {
		return ErrNotFound
	}

	return nil
}

func scanUser(row pgx.Row, u *User) error {
	return row.Scan(
		&u.ID,
		&u.Email,
		&u.PasswordHash,
		&u.Name,
		&u.Phone,
		&u.Address,
		&u.AvatarFilename,
		&u.IsAdmin,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
}
