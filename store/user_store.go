package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"

	"sitepulse/api/models"
)

var ErrUserNotFound = errors.New("user not found")

type UserStore struct {
	db *sql.DB
}

// NewUserStore creates a new UserStore instance.
func NewUserStore(db *sql.DB) *UserStore {
	return &UserStore{db: db}
}

// CreateOrganization inserts the organization created alongside the first
// user at signup.
func (s *UserStore) CreateOrganization(ctx context.Context, name string) (*models.Organization, error) {
	org := &models.Organization{}
	query := `
		INSERT INTO organizations (name)
		VALUES ($1)
		RETURNING organization_id, name, logo_url, created_at;
	`
	err := s.db.QueryRowContext(ctx, query, name).Scan(
		&org.OrganizationID,
		&org.Name,
		&org.LogoURL,
		&org.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create organization: %w", err)
	}

	return org, nil
}

// CreateUser inserts a new dashboard user into the database.
func (s *UserStore) CreateUser(ctx context.Context, name, email string, hashedPassword []byte, organizationID string) (*models.User, error) {
	user := &models.User{}
	query := `
		INSERT INTO users (name, email, hashed_password, organization_id)
		VALUES ($1, $2, $3, $4)
		RETURNING user_id, name, email, organization_id, created_at;
	`
	err := s.db.QueryRowContext(ctx, query, name, email, hashedPassword, organizationID).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.OrganizationID,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	log.Printf("User created in DB: ID=%s, Email=%s", user.UserID, user.Email)
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT user_id, name, email, hashed_password, organization_id, created_at
		FROM users
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.UserID,
		&user.Name,
		&user.Email,
		&user.HashedPassword,
		&user.OrganizationID,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}
