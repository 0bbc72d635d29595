package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/nico/impostor-party-server/internal/domain"
)

type WordRepository interface {
	Create(ctx context.Context, word *domain.Word) error
	CreateMany(ctx context.Context, words []*domain.Word) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Word, error)
	ListActive(ctx context.Context, category string) ([]*domain.Word, error)
	List(ctx context.Context) ([]*domain.Word, error)
	Update(ctx context.Context, word *domain.Word) error
	Deactivate(ctx context.Context, id uuid.UUID) error
	TopByWeight(ctx context.Context, limit int) ([]*domain.Word, error)
}

type ThemeRepository interface {
	Create(ctx context.Context, theme *domain.ThemeMode) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.ThemeMode, error)
	List(ctx context.Context) ([]*domain.ThemeMode, error)
	Update(ctx context.Context, theme *domain.ThemeMode) error
}

type Repositories struct {
	Word  WordRepository
	Theme ThemeRepository
}
