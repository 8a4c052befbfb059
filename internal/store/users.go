package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Rodgers-crypto/newbutchermanagement/internal/database"
	"github.com/Rodgers-crypto/newbutchermanagement/internal/models"
)

const userColumns = `id, username, password_hash, role, created_at`

type Users struct {
	db *sql.DB
}

func NewUsers(db *sql.DB) *Users {
	return &Users{db: db}
}

func scanUser(row rowScanner) (*models.User, error) {
	user := &models.User{}
	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.PasswordHash,
		&user.Role,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (u *Users) CreateUser(ctx context.Context, username, passwordHash, role string) (*models.User, error) {
	if role != models.RoleAdmin && role != models.RoleCashier {
		return nil, fmt.Errorf("create user: unknown role %q", role)
	}

	query := `
		INSERT INTO users (username, password_hash, role, created_at)
		VALUES ($1, $2, $3, NOW())
		RETURNING ` + userColumns

	user, err := scanUser(u.db.QueryRowContext(ctx, query, username, passwordHash, role))
	if err != nil {
		if database.IsUniqueViolation(err) {
			return nil, database.ErrUsernameTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	return user, nil
}

func (u *Users) GetUser(ctx context.Context, id int64) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(u.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	return user, nil
}

func (u *Users) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`

	user, err := scanUser(u.db.QueryRowContext(ctx, query, username))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, database.ErrUserNotFound
		}
		return nil, fmt.Errorf("get user by username: %w", err)
	}

	return user, nil
}

// EnsureAdmin creates an admin account with the given credentials when the users
// table is empty. It reports whether an account was created.
func (u *Users) EnsureAdmin(ctx context.Context, username, passwordHash string) (bool, error) {
	var count int64
	if err := u.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count); err != nil {
		return false, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return false, nil
	}

	if _, err := u.CreateUser(ctx, username, passwordHash, models.RoleAdmin); err != nil {
		return false, err
	}
	return true, nil
}

func (u *Users) ListUsers(ctx context.Context, page, pageSize int) (*OffsetPage, error) {
	var total int64
	err := u.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&total)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}

	offset := (page - 1) * pageSize
	query := `
		SELECT ` + userColumns + `
		FROM users
		ORDER BY username ASC
		LIMIT $1 OFFSET $2`

	rows, err := u.db.QueryContext(ctx, query, pageSize, offset)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	users := []models.User{}
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *user)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows error: %w", err)
	}

	return NewOffsetPage(users, total, page, pageSize), nil
}
