package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/nico/impostor-party-server/internal/domain"
	"gorm.io/gorm"
)

type themeRepository struct {
	db *gorm.DB
}

func NewThemeRepository(db *gorm.DB) *themeRepository {
	return &themeRepository{db: db}
}

func (r *themeRepository) Create(ctx context.Context, theme *domain.ThemeMode) error {
	return r.db.WithContext(ctx).Create(theme).Error
}

func (r *themeRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.ThemeMode, error) {
	var theme domain.ThemeMode
	err := r.db.WithContext(ctx).First(&theme, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &theme, nil
}

func (r *themeRepository) List(ctx context.Context) ([]*domain.ThemeMode, error) {
	var themes []*domain.ThemeMode
	err := r.db.WithContext(ctx).Order("name ASC").Find(&themes).Error
	if err != nil {
		return nil, err
	}
	return themes, nil
}

func (r *themeRepository) Update(ctx context.Context, theme *domain.ThemeMode) error {
	return r.db.WithContext(ctx).Save(theme).Error
}
