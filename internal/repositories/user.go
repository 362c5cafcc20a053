package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"FireGar/internal/models/domain"

	"github.com/google/uuid"
)

// GetAllUsers returns the full user directory ordered by name.
func (r *Repository) GetAllUsers(ctx context.Context) ([]domain.User, error) {
	op := "Repository.GetAllUsers"
	var users []domain.User
	query := `SELECT id, email, first_name, last_name, role, station, status,
		telegram_id, created_at, updated_at
		FROM users
		ORDER BY last_name, first_name`
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer rows.Close()

	for rows.Next() {
		var u domain.User
		if err := rows.Scan(&u.ID, &u.Email, &u.FirstName, &u.LastName,
			&u.Role, &u.Station, &u.Status,
			&u.TelegramID, &u.CreatedAt, &u.UpdatedAt); err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		users = append(users, u)
	}
	return users, rows.Err()
}

// GetUserProfile returns a single user by id.
func (r *Repository) GetUserProfile(ctx context.Context, userID uuid.UUID) (*domain.User, error) {
	op := "Repository.GetUserProfile"
	var user domain.User
	query := `SELECT id, email, first_name, last_name, role, station, status,
		telegram_id, created_at, updated_at
		FROM users WHERE id = $1`
	err := r.DB.QueryRowContext(ctx, query, userID).
		Scan(&user.ID, &user.Email, &user.FirstName, &user.LastName,
			&user.Role, &user.Station, &user.Status,
			&user.TelegramID, &user.CreatedAt, &user.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &user, nil
}

// CreateUser inserts a new directory entry.
func (r *Repository) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	op := "Repository.CreateUser"
	u.ID = uuid.New()
	if u.Status == "" {
		u.Status = domain.UserActive
	}

	query := `INSERT INTO users (id, email, first_name, last_name, role, station, status, telegram_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING created_at, updated_at`
	err := r.DB.QueryRowContext(ctx, query,
		u.ID, u.Email, u.FirstName, u.LastName, u.Role, u.Station, u.Status, u.TelegramID).
		Scan(&u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return u, nil
}
