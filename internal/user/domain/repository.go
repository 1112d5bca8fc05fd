package domain

import (
	"context"

	"gorm.io/gorm"
)

type Repository interface {
	Create(ctx context.Context, db *gorm.DB, user *User) error
	FindByID(ctx context.Context, db *gorm.DB, id string) (*User, error)
	FindByUsername(ctx context.Context, db *gorm.DB, username string) (*User, error)
	FindAll(ctx context.Context, db *gorm.DB) ([]User, error)
	UpdateRole(ctx context.Context, db *gorm.DB, id, role, actorID, updatedAt string) error
	TouchLastLogin(ctx context.Context, db *gorm.DB, id, at string) error
	SoftDelete(ctx context.Context, db *gorm.DB, id, at string) error
}
