// Package repository implements the data access layer for the server.
package repository

import (
	"context"
	"errors"
	"strings"

	"dating-match-server/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserQuery selects a candidate population. A non-nil IDs restricts the
// result to those users; an empty non-nil IDs matches nobody.
type UserQuery struct {
	ExcludeIDs  []uint
	IDs         []uint
	WithFilters bool
	ActiveOnly  bool
}

// UserStore is the document-store boundary the matching and like logic
// depend on. Save writes one user row atomically.
type UserStore interface {
	FindByID(ctx context.Context, id uint) (*models.User, error)
	FindMany(ctx context.Context, q UserQuery) ([]models.User, error)
	Save(ctx context.Context, user *models.User) error
	Transaction(ctx context.Context, fn func(tx UserStore) error) error
}

type UserRepository struct {
	db *gorm.DB
	// lock is set on repositories bound to a transaction; reads then take
	// row locks where the dialect supports them.
	lock bool
}

func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) query(ctx context.Context) *gorm.DB {
	q := r.db.WithContext(ctx)
	if r.lock && r.db.Dialector.Name() == "postgres" {
		q = q.Clauses(clause.Locking{Strength: "UPDATE"})
	}
	return q
}

func (r *UserRepository) FindByID(ctx context.Context, id uint) (*models.User, error) {
	var user models.User
	if err := r.query(ctx).Preload("Filters").First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", id)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *UserRepository) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	err := r.db.WithContext(ctx).
		Where("email = ?", strings.ToLower(strings.TrimSpace(email))).
		First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, models.NewNotFoundError("User", email)
		}
		return nil, models.NewInternalError(err)
	}
	return &user, nil
}

func (r *UserRepository) FindMany(ctx context.Context, q UserQuery) ([]models.User, error) {
	if q.IDs != nil && len(q.IDs) == 0 {
		return []models.User{}, nil
	}

	tx := r.query(ctx).Model(&models.User{})
	if len(q.IDs) > 0 {
		tx = tx.Where("id IN ?", q.IDs)
	}
	if len(q.ExcludeIDs) > 0 {
		tx = tx.Where("id NOT IN ?", q.ExcludeIDs)
	}
	if q.ActiveOnly {
		tx = tx.Where("is_active = ?", true)
	}
	if q.WithFilters {
		tx = tx.Preload("Filters")
	}

	var users []models.User
	if err := tx.Order("id ASC").Find(&users).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return users, nil
}

func (r *UserRepository) List(ctx context.Context, limit, offset int) ([]models.User, int64, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	var total int64
	if err := r.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	var users []models.User
	err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&users).Error
	if err != nil {
		return nil, 0, models.NewInternalError(err)
	}
	return users, total, nil
}

func (r *UserRepository) Create(ctx context.Context, user *models.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	if _, err := r.FindByEmail(ctx, user.Email); err == nil {
		return models.NewDuplicateActionError("Email already registered")
	} else if !models.IsCode(err, models.CodeNotFound) {
		return err
	}
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return models.NewDuplicateActionError("Email already registered")
		}
		return models.NewInternalError(err)
	}
	return nil
}

// Save writes every column of the user row. The Filters association is
// never touched; use SaveFilters for that.
func (r *UserRepository) Save(ctx context.Context, user *models.User) error {
	if err := r.db.WithContext(ctx).Omit(clause.Associations).Save(user).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// UpdateColumns writes only the given columns of one user row. Profile
// fields changed outside a transaction go through here so that the
// relationship sets written by concurrent likes are never overwritten.
func (r *UserRepository) UpdateColumns(ctx context.Context, id uint, columns map[string]interface{}) error {
	res := r.db.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return models.NewInternalError(res.Error)
	}
	if res.RowsAffected == 0 {
		return models.NewNotFoundError("User", id)
	}
	return nil
}

func (r *UserRepository) SaveFilters(ctx context.Context, filter *models.ProfileFilter) error {
	if err := r.db.WithContext(ctx).Save(filter).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *UserRepository) Transaction(ctx context.Context, fn func(tx UserStore) error) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(&UserRepository{db: tx, lock: true})
	})
	if err == nil {
		return nil
	}
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return err
	}
	return models.NewInternalError(err)
}
