package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/nico/impostor-party-server/internal/domain"
	"gorm.io/gorm"
)

type wordRepository struct {
	db *gorm.DB
}

func NewWordRepository(db *gorm.DB) *wordRepository {
	return &wordRepository{db: db}
}

func (r *wordRepository) Create(ctx context.Context, word *domain.Word) error {
	return r.db.WithContext(ctx).Create(word).Error
}

func (r *wordRepository) CreateMany(ctx context.Context, words []*domain.Word) error {
	if len(words) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(words).Error
}

func (r *wordRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error) {
	var word domain.Word
	err := r.db.WithContext(ctx).First(&word, "id = ?", id).Error
	if err != nil {
		return nil, err
	}
	return &word, nil
}

func (r *wordRepository) ListActive(ctx context.Context, category string) ([]*domain.Word, error) {
	q := r.db.WithContext(ctx).Where("active = ?", true)
	if category != "" {
		q = q.Where("category = ?", category)
	}

	var words []*domain.Word
	if err := q.Order("created_at ASC").Find(&words).Error; err != nil {
		return nil, err
	}
	return words, nil
}

func (r *wordRepository) List(ctx context.Context) ([]*domain.Word, error) {
	var words []*domain.Word
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&words).Error
	if err != nil {
		return nil, err
	}
	return words, nil
}

func (r *wordRepository) Update(ctx context.Context, word *domain.Word) error {
	return r.db.WithContext(ctx).Save(word).Error
}

func (r *wordRepository) Deactivate(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Model(&domain.Word{}).
		Where("id = ?", id).
		Update("active", false)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *wordRepository) TopByWeight(ctx context.Context, limit int) ([]*domain.Word, error) {
	var words []*domain.Word
	err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("weight DESC").
		Limit(limit).
		Find(&words).Error
	if err != nil {
		return nil, err
	}
	return words, nil
}
