package repository

import (
	"github.com/google/uuid"
	"github.com/oncallhq/oncall-manager/backend/internal/domain"
)

func (r *Repository) CreateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	if user.ID == "" {
		user.ID = uuid.NewString()
	}

	query := `
		INSERT INTO users (id, display_name, email, password_hash, time_zone, is_admin)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING is_active, created_at, version
	`

	args := []any{user.ID, user.DisplayName, user.Email, user.PasswordHash, user.TimeZone, user.IsAdmin}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.IsActive, &user.CreatedAt, &user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetUserByID(id string) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT display_name, email, password_hash, time_zone, is_active, is_admin, created_at, version
		FROM users WHERE id = $1
	`

	user := &domain.User{
		ID: id,
	}

	dst := []any{&user.DisplayName, &user.Email, &user.PasswordHash, &user.TimeZone, &user.IsActive, &user.IsAdmin, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, id).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetUserByEmail(email string) (*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, display_name, password_hash, time_zone, is_active, is_admin, created_at, version
		FROM users WHERE email = $1
	`

	user := &domain.User{
		Email: email,
	}

	dst := []any{&user.ID, &user.DisplayName, &user.PasswordHash, &user.TimeZone, &user.IsActive, &user.IsAdmin, &user.CreatedAt, &user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, email).Scan(dst...); err != nil {
		return nil, err
	}

	return user, nil
}

func (r *Repository) GetAllUsers(activeOnly bool) ([]*domain.User, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		SELECT id, display_name, email, password_hash, time_zone, is_active, is_admin, created_at, version
		FROM users
	`
	if activeOnly {
		query += ` WHERE is_active`
	}
	query += ` ORDER BY display_name`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	users := make([]*domain.User, 0)
	for rows.Next() {
		user := &domain.User{}
		dst := []any{&user.ID, &user.DisplayName, &user.Email, &user.PasswordHash, &user.TimeZone, &user.IsActive, &user.IsAdmin, &user.CreatedAt, &user.Version}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		users = append(users, user)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return users, nil
}

func (r *Repository) UpdateUser(user *domain.User) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE users
		SET
			display_name = $1,
			email = $2,
			password_hash = $3,
			time_zone = $4,
			is_active = $5,
			is_admin = $6,
			version = version + 1
		WHERE id = $7 AND version = $8
		RETURNING version
	`

	args := []any{user.DisplayName, user.Email, user.PasswordHash, user.TimeZone, user.IsActive, user.IsAdmin, user.ID, user.Version}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&user.Version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) GetAdminUserIDs() ([]string, error) {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `SELECT id FROM users WHERE is_admin ORDER BY id`

	rows, err := r.dbpool.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	ids := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return ids, nil
}

func (r *Repository) SetUserAdmin(id string, isAdmin bool) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE users SET is_admin = $1, version = version + 1 WHERE id = $2
		RETURNING version
	`

	var version int32
	if err := r.dbpool.QueryRowContext(ctx, query, isAdmin, id).Scan(&version); err != nil {
		return err
	}

	return nil
}

func (r *Repository) SetUserActive(id string, isActive bool) error {
	ctx, cancel := r.queryContext()
	defer cancel()

	query := `
		UPDATE users SET is_active = $1, version = version + 1 WHERE id = $2
		RETURNING version
	`

	var version int32
	if err := r.dbpool.QueryRowContext(ctx, query, isActive, id).Scan(&version); err != nil {
		return err
	}

	return nil
}
