package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"fleet-booking-backend/internal/domain"
	"fleet-booking-backend/internal/repository"
)

type userRepository struct {
	db dbtx
}

func NewUserRepository(db dbtx) repository.UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	u := &domain.User{}
	query := `SELECT id, name, email, role FROM users WHERE id = $1`
	err := r.db.QueryRowContext(ctx, query, id).Scan(&u.ID, &u.Name, &u.Email, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return u, nil
}
