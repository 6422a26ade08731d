package repository

import (
	"bakery/internal/domain/model"
	domainrepo "bakery/internal/repository"
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"
)

type userGormRepository struct {
	db *gorm.DB
}

// main.goでこれをnewしてusecaseに注入します。
func NewUserGormRepository(db *gorm.DB) domainrepo.UserRepository {
	return &userGormRepository{db: db}
}

func (r *userGormRepository) Create(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Create(user).Error
}

// いなければ nil, nil
func (r *userGormRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	return r.first(r.db.WithContext(ctx).Where("email = ?", strings.ToLower(strings.TrimSpace(email))))
}

func (r *userGormRepository) FindByID(ctx context.Context, id int64) (*model.User, error) {
	return r.first(r.db.WithContext(ctx).Where("id = ?", id))
}

func (r *userGormRepository) first(q *gorm.DB) (*model.User, error) {
	var u model.User
	err := q.First(&u).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *userGormRepository) Update(ctx context.Context, user *model.User) error {
	return r.db.WithContext(ctx).Save(user).Error
}

// token_versionを+1 します。
func (r *userGormRepository) IncrementTokenVersion(ctx context.Context, id int64) error {
	res := r.db.WithContext(ctx).
		Model(&model.User{}).
		Where("id = ?", id).
		UpdateColumn("token_version", gorm.Expr("token_version + ?", 1))
	if res.Error != nil {
		return res.Error
	}
	// 0件更新は「対象がない」
	if res.RowsAffected == 0 {
		return domainrepo.ErrUserNotFound
	}
	return nil
}
