package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/tasklist/tasklist-api/internal/model"
)

var (
	ErrUserNotFound   = errors.New("user not found")
	ErrDuplicateEmail = errors.New("email already exists")
)

const userColumns = "id, name, email, password, created_at, updated_at, deleted_at"

// UserRepository handles user persistence operations.
type UserRepository struct {
	db    *sqlx.DB
	clock Clock
}

// NewUserRepository creates a new UserRepository.
func NewUserRepository(db *sqlx.DB, clock Clock) *UserRepository {
	return &UserRepository{db: db, clock: clock}
}

// Create inserts a new user and sets the generated ID and timestamps on the user struct.
func (r *UserRepository) Create(ctx context.Context, user *model.User) error {
	now := r.clock.now()
	user.ID = uuid.NewString()
	user.CreatedAt, user.UpdatedAt = now, now

	q := r.db.Rebind(`INSERT INTO users (id, name, email, password, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`)
	_, err := r.db.ExecContext(ctx, q, user.ID, user.Name, user.Email, user.Password, now, now)
	if err != nil {
		if isDuplicateEntryError(err) {
			return ErrDuplicateEmail
		}
		return fmt.Errorf("insert user: %w", err)
	}

	return nil
}

// EmailExists reports whether any user, deleted or not, already holds email.
func (r *UserRepository) EmailExists(ctx context.Context, email string) (bool, error) {
	var n int
	q := r.db.Rebind(`SELECT COUNT(*) FROM users WHERE email = ?`)
	if err := r.db.GetContext(ctx, &n, q, email); err != nil {
		return false, fmt.Errorf("check email: %w", err)
	}
	return n > 0, nil
}

// GetByEmail retrieves a live user by their email address.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE email = ? AND deleted_at IS NULL`, email)
}

// GetByID retrieves a live user by their ID.
func (r *UserRepository) GetByID(ctx context.Context, id string) (*model.User, error) {
	return r.getOne(ctx, `SELECT `+userColumns+` FROM users WHERE id = ? AND deleted_at IS NULL`, id)
}

func (r *UserRepository) getOne(ctx context.Context, q string, arg any) (*model.User, error) {
	user := &model.User{}
	if err := r.db.GetContext(ctx, user, r.db.Rebind(q), arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}
	return user, nil
}

// UpdatePassword replaces the stored password hash.
func (r *UserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	q := r.db.Rebind(`UPDATE users SET password = ?, updated_at = ? WHERE id = ? AND deleted_at IS NULL`)
	res, err := r.db.ExecContext(ctx, q, hash, r.clock.now(), id)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}
	if err := affected(res); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// SoftDelete hides a user from every lookup.
func (r *UserRepository) SoftDelete(ctx context.Context, id string) error {
	t := table{db: r.db, name: "users"}
	if err := t.softDelete(ctx, id, r.clock.now()); err != nil {
		if errors.Is(err, ErrNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}
