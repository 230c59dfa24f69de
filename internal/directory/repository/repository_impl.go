package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	directorydomain "github.com/tallyhq/tally/internal/directory/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() directorydomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, user *directorydomain.User) error {
	return db.WithContext(ctx).Create(user).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, tenantID, userID snowflake.ID) (*directorydomain.User, error) {
	var user directorydomain.User
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("id = ?", userID).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) FindByEmail(ctx context.Context, db *gorm.DB, tenantID snowflake.ID, email string) (*directorydomain.User, error) {
	var user directorydomain.User
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Where("email = ?", email).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, tenantID snowflake.ID) ([]directorydomain.User, error) {
	var users []directorydomain.User
	err := db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("created_at ASC").
		Find(&users).Error
	if err != nil {
		return nil, err
	}
	return users, nil
}
