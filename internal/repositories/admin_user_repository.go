package repositories

import (
	"context"
	"database/sql"
	"errors"

	"ospreyBack/internal/models"
)

type AdminUserRepository struct {
	DB      *sql.DB
	Dialect Dialect
}

func NewAdminUserRepository(db *sql.DB, d Dialect) *AdminUserRepository {
	return &AdminUserRepository{DB: db, Dialect: d}
}

func (r *AdminUserRepository) GetByEmail(ctx context.Context, email string) (models.AdminUser, error) {
	query := `SELECT id, email, password_hash, role FROM admin_users WHERE LOWER(email) = LOWER(?)`
	var u models.AdminUser
	err := r.DB.QueryRowContext(ctx, r.Dialect.Rebind(query), email).Scan(&u.ID, &u.Email, &u.PasswordHash, &u.Role)
	if errors.Is(err, sql.ErrNoRows) {
		return models.AdminUser{}, models.ErrNoRecord
	}
	return u, err
}
