package repository

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"gigmarket-backend/internal/domains/user/model"
	"gigmarket-backend/internal/infrastructure/database"
)

var ErrUserNotFound = errors.New("user not found")

// userColumns must stay in sync with the users table migration.
var userColumns = []string{"id", "name", "email", "created_at", "updated_at"}

type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*model.User, error)
}

type postgresUserRepository struct {
	db *database.PostgresDB
}

func NewPostgresUserRepository(db *database.PostgresDB) UserRepository {
	return &postgresUserRepository{db: db}
}

func (r *postgresUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	var u model.User
	query := fmt.Sprintf(`SELECT %s FROM users WHERE id = $1`, strings.Join(userColumns, ", "))
	err := r.db.Pool.QueryRow(ctx, query, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
