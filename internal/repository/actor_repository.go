package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/iliyamo/show-booking/internal/model"
	"github.com/iliyamo/show-booking/internal/utils"
)

// ActorRepo provides persistence for actor profiles.  Profiles are
// created lazily on first sign-up with the default CLIENT role; admins
// change roles afterwards through UpdateRole.
type ActorRepo struct{ DB *sql.DB }

func NewActorRepo(db *sql.DB) *ActorRepo { return &ActorRepo{DB: db} }

const actorColumns = "id, email, password_hash, display_name, role, is_active, created_at, updated_at"

// Create inserts an actor profile and returns its ID.  The email is
// normalized to lower case; a unique-key violation maps to ErrEmailExists.
func (r *ActorRepo) Create(ctx context.Context, email, password, displayName, role string, cost int) (uint64, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return 0, err
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO actor_profiles (email, password_hash, display_name, role) VALUES (?,?,?,?)",
		email, hash, displayName, role)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return uint64(id), nil
}

// GetByEmail fetches a profile by normalized email.
func (r *ActorRepo) GetByEmail(ctx context.Context, email string) (model.ActorProfile, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	var a model.ActorProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+actorColumns+" FROM actor_profiles WHERE email=? LIMIT 1",
		email).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

// GetByID fetches a profile by id, mapping sql.ErrNoRows to ErrActorNotFound.
func (r *ActorRepo) GetByID(ctx context.Context, id uint64) (model.ActorProfile, error) {
	var a model.ActorProfile
	err := r.DB.QueryRowContext(ctx,
		"SELECT "+actorColumns+" FROM actor_profiles WHERE id=? LIMIT 1",
		id).Scan(&a.ID, &a.Email, &a.PasswordHash, &a.DisplayName, &a.Role, &a.IsActive, &a.CreatedAt, &a.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return a, ErrActorNotFound
	}
	return a, err
}

// UpdateRole changes a profile's role.  The caller is responsible for
// validating the role value and the admin capability.
func (r *ActorRepo) UpdateRole(ctx context.Context, id uint64, role string) error {
	res, err := r.DB.ExecContext(ctx,
		"UPDATE actor_profiles SET role=? WHERE id=?", role, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err == nil && n == 0 {
		// Distinguish a missing profile from a no-op role write.
		var exists uint64
		if scanErr := r.DB.QueryRowContext(ctx,
			"SELECT id FROM actor_profiles WHERE id=? LIMIT 1", id).Scan(&exists); scanErr != nil {
			if errors.Is(scanErr, sql.ErrNoRows) {
				return ErrActorNotFound
			}
			return scanErr
		}
	}
	return err
}
