package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"
	"github.com/sirupsen/logrus"

	"dwellmetrics/api/models"
)

var (
	ErrUserNotFound = errors.New("user not found")
	ErrUserExists   = errors.New("user already exists")
)

// pqUniqueViolation is the SQLSTATE for unique constraint violations.
const pqUniqueViolation = "23505"

type UserStore struct {
	db     *sql.DB
	logger logrus.FieldLogger
}

func NewUserStore(db *sql.DB, logger logrus.FieldLogger) *UserStore {
	return &UserStore{db: db, logger: logger}
}

// CreateUser inserts a new user with the given role.
func (s *UserStore) CreateUser(ctx context.Context, email string, hashedPassword []byte, role string) (*models.User, error) {
	user := &models.User{}
	query := `
		INSERT INTO users (email, hashed_password, role)
		VALUES ($1, $2, $3)
		RETURNING id, email, role, created_at, updated_at;
	`
	err := s.db.QueryRowContext(ctx, query, email, hashedPassword, role).Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == pqUniqueViolation {
			return nil, fmt.Errorf("%w: %s", ErrUserExists, email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.logger.WithField("user_id", user.ID).Info("User created")
	return user, nil
}

func (s *UserStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `
		SELECT id, email, role, hashed_password, created_at, updated_at
		FROM users
		WHERE email = $1;
	`
	err := s.db.QueryRowContext(ctx, query, email).Scan(
		&user.ID,
		&user.Email,
		&user.Role,
		&user.HashedPassword,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", ErrUserNotFound, email)
		}
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}

	return user, nil
}
