package repository

import (
	"context"

	"github.com/coptimize/openinventory/internal/user/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Create(ctx context.Context, gdb *gorm.DB, u *domain.User) error {
	return gdb.WithContext(ctx).Exec(
		`INSERT INTO users (id, username, password_hash, role, creator_user_id, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		u.ID, u.Username, u.PasswordHash, u.Role, u.CreatorUserID, u.CreatedAt, u.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, gdb *gorm.DB, id string) (*domain.User, error) {
	var u domain.User
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE id = ? AND deleted_at IS NULL`, id,
	).Scan(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, nil
	}
	return &u, nil
}

func (r *repo) FindByUsername(ctx context.Context, gdb *gorm.DB, username string) (*domain.User, error) {
	var u domain.User
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE username = ? AND deleted_at IS NULL`, username,
	).Scan(&u).Error
	if err != nil {
		return nil, err
	}
	if u.ID == "" {
		return nil, nil
	}
	return &u, nil
}

func (r *repo) FindAll(ctx context.Context, gdb *gorm.DB) ([]domain.User, error) {
	var items []domain.User
	err := gdb.WithContext(ctx).Raw(
		`SELECT * FROM users WHERE deleted_at IS NULL ORDER BY created_at ASC`,
	).Scan(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

// UpdateRole records the actor in creator_user_id; the role-change trigger
// reads the acting user's role from that column.
func (r *repo) UpdateRole(ctx context.Context, gdb *gorm.DB, id, role, actorID, updatedAt string) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE users SET role = ?, creator_user_id = ?, updated_at = ? WHERE id = ?`,
		role, actorID, updatedAt, id,
	).Error
}

func (r *repo) TouchLastLogin(ctx context.Context, gdb *gorm.DB, id, at string) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE users SET last_login = ? WHERE id = ?`,
		at, id,
	).Error
}

func (r *repo) SoftDelete(ctx context.Context, gdb *gorm.DB, id, at string) error {
	return gdb.WithContext(ctx).Exec(
		`UPDATE users SET deleted_at = ?, updated_at = ? WHERE id = ?`,
		at, at, id,
	).Error
}
