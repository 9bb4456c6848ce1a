package sqldb

import (
	"context"
	"database/sql"

	"github.com/wadjakorntonsri/studio-site/pkg/core/domain"
)

func (r *Repository) GetUserByEmail(ctx context.Context, email string) (*domain.AdminUser, error) {
	query := `SELECT id, email, password_hash, created_at FROM admin_users WHERE email = ?`

	var u domain.AdminUser
	var createdAt dbTime
	err := r.queryRow(ctx, query, email).Scan(&u.ID, &u.Email, &u.PasswordHash, &createdAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	u.CreatedAt = createdAt.Time
	return &u, nil
}

func (r *Repository) CreateUser(ctx context.Context, user *domain.AdminUser) error {
	query := `INSERT INTO admin_users (email, password_hash, created_at) VALUES (?, ?, ?)`

	id, err := r.insert(ctx, query, user.Email, user.PasswordHash, r.timeArg(user.CreatedAt))
	if err != nil {
		return err
	}
	user.ID = id
	return nil
}

func (r *Repository) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	_, err := r.exec(ctx, `UPDATE admin_users SET password_hash = ? WHERE id = ?`, passwordHash, id)
	return err
}
