package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/nico/impostor-party-server/internal/domain"
	"github.com/nico/impostor-party-server/internal/game"
	"github.com/nico/impostor-party-server/internal/repository"
	"github.com/nico/impostor-party-server/internal/selector"
	"gorm.io/gorm"
)

const themeRefPrefix = "theme:"

// WordService owns both content pools: the free-text word table and the
// themed mode items. Draws and feedback go through the shared weighted
// selector; the only difference between the pools is the reference scheme
// (word UUID vs theme id + positional index).
type WordService struct {
	wordRepo  repository.WordRepository
	themeRepo repository.ThemeRepository

	mu  sync.Mutex
	rng *rand.Rand
}

// NewWordService builds the service. A nil rng gets a time-seeded source;
// tests pass a fixed seed for reproducible draws.
func NewWordService(wordRepo repository.WordRepository, themeRepo repository.ThemeRepository, rng *rand.Rand) *WordService {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &WordService{
		wordRepo:  wordRepo,
		themeRepo: themeRepo,
		rng:       rng,
	}
}

// PickWord draws one active word, optionally restricted to a category.
func (s *WordService) PickWord(ctx context.Context, category string) (game.WordDraw, error) {
	words, err := s.wordRepo.ListActive(ctx, category)
	if err != nil {
		return game.WordDraw{}, err
	}

	entries := make([]selector.Entry[*domain.Word], len(words))
	for i, w := range words {
		entries[i] = selector.Entry[*domain.Word]{Item: w, Weight: w.Weight}
	}

	s.mu.Lock()
	word, err := selector.Pick(entries, s.rng)
	s.mu.Unlock()
	if err != nil {
		return game.WordDraw{}, err
	}

	return game.WordDraw{
		Ref:      word.ID.String(),
		Text:     word.Text,
		Category: word.Category,
	}, nil
}

// PickThemeItem draws one active item from a theme. The returned ref encodes
// the theme id and the item's position in the stored array.
func (s *WordService) PickThemeItem(ctx context.Context, themeID uuid.UUID) (game.WordDraw, error) {
	theme, err := s.getTheme(ctx, themeID)
	if err != nil {
		return game.WordDraw{}, err
	}

	items, err := themeItems(theme)
	if err != nil {
		return game.WordDraw{}, err
	}

	type indexed struct {
		item  domain.ThemeItem
		index int
	}
	var entries []selector.Entry[indexed]
	for i, item := range items {
		if !item.Active {
			continue
		}
		entries = append(entries, selector.Entry[indexed]{
			Item:   indexed{item: item, index: i},
			Weight: item.Weight,
		})
	}

	s.mu.Lock()
	picked, err := selector.Pick(entries, s.rng)
	s.mu.Unlock()
	if err != nil {
		return game.WordDraw{}, err
	}

	return game.WordDraw{
		Ref:      fmt.Sprintf("%s%s:%d", themeRefPrefix, themeID, picked.index),
		Text:     picked.item.Label,
		Category: theme.Name,
	}, nil
}

// Report applies a round outcome to a word's weight.
func (s *WordService) Report(ctx context.Context, wordID uuid.UUID, outcome selector.Outcome) (*domain.Word, error) {
	word, err := s.wordRepo.GetByID(ctx, wordID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}

	word.Weight = selector.Adjust(word.Weight, outcome)
	if err := s.wordRepo.Update(ctx, word); err != nil {
		return nil, err
	}
	return word, nil
}

// ReportThemeItem applies a round outcome to one theme item by position.
func (s *WordService) ReportThemeItem(ctx context.Context, themeID uuid.UUID, index int, outcome selector.Outcome) (*domain.ThemeItem, error) {
	theme, err := s.getTheme(ctx, themeID)
	if err != nil {
		if errors.Is(err, domain.ErrThemeNotFound) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}

	items, err := themeItems(theme)
	if err != nil {
		return nil, err
	}
	if index < 0 || index >= len(items) {
		return nil, domain.ErrItemNotFound
	}

	items[index].Weight = selector.Adjust(items[index].Weight, outcome)

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}
	theme.Items = raw
	if err := s.themeRepo.Update(ctx, theme); err != nil {
		return nil, err
	}

	item := items[index]
	return &item, nil
}

// ReportRef resolves an opaque content reference from a room (word UUID, or
// "theme:<id>:<index>") and applies the outcome to whichever pool it names.
func (s *WordService) ReportRef(ctx context.Context, ref string, outcome selector.Outcome) error {
	if rest, ok := strings.CutPrefix(ref, themeRefPrefix); ok {
		idStr, idxStr, found := strings.Cut(rest, ":")
		if !found {
			return domain.ErrItemNotFound
		}
		themeID, err := uuid.Parse(idStr)
		if err != nil {
			return domain.ErrItemNotFound
		}
		index, err := strconv.Atoi(idxStr)
		if err != nil {
			return domain.ErrItemNotFound
		}
		_, err = s.ReportThemeItem(ctx, themeID, index, outcome)
		return err
	}

	wordID, err := uuid.Parse(ref)
	if err != nil {
		return domain.ErrItemNotFound
	}
	_, err = s.Report(ctx, wordID, outcome)
	return err
}

// TopWords returns the heaviest active words, weight descending.
func (s *WordService) TopWords(ctx context.Context, limit int) ([]*domain.Word, error) {
	if limit <= 0 {
		limit = 10
	}
	return s.wordRepo.TopByWeight(ctx, limit)
}

// Stats aggregates weight statistics over the active word pool.
func (s *WordService) Stats(ctx context.Context) (selector.Summary, error) {
	words, err := s.wordRepo.ListActive(ctx, "")
	if err != nil {
		return selector.Summary{}, err
	}
	entries := make([]selector.Entry[*domain.Word], len(words))
	for i, w := range words {
		entries[i] = selector.Entry[*domain.Word]{Item: w, Weight: w.Weight}
	}
	return selector.Summarize(entries), nil
}

// AddWords bulk-inserts words with the default weight.
func (s *WordService) AddWords(ctx context.Context, category string, texts []string) ([]*domain.Word, error) {
	if category == "" {
		category = "general"
	}
	words := make([]*domain.Word, 0, len(texts))
	for _, text := range texts {
		if strings.TrimSpace(text) == "" {
			continue
		}
		words = append(words, &domain.Word{
			ID:       uuid.New(),
			Text:     strings.TrimSpace(text),
			Category: category,
			Weight:   domain.DefaultWeight,
			Active:   true,
		})
	}
	if len(words) == 0 {
		return nil, domain.ErrInvalidName
	}
	if err := s.wordRepo.CreateMany(ctx, words); err != nil {
		return nil, err
	}
	return words, nil
}

// ListWords returns the full word table, active or not.
func (s *WordService) ListWords(ctx context.Context) ([]*domain.Word, error) {
	return s.wordRepo.List(ctx)
}

// DeactivateWord removes a word from future draws without deleting its
// feedback history.
func (s *WordService) DeactivateWord(ctx context.Context, id uuid.UUID) error {
	err := s.wordRepo.Deactivate(ctx, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return domain.ErrWordNotFound
	}
	return err
}

// CreateTheme stores a new themed pool. Items get the default weight unless
// one is set.
func (s *WordService) CreateTheme(ctx context.Context, name string, labels []string) (*domain.ThemeMode, error) {
	if strings.TrimSpace(name) == "" {
		return nil, domain.ErrInvalidName
	}

	items := make([]domain.ThemeItem, 0, len(labels))
	for _, label := range labels {
		if strings.TrimSpace(label) == "" {
			continue
		}
		items = append(items, domain.ThemeItem{
			Label:  strings.TrimSpace(label),
			Weight: domain.DefaultWeight,
			Active: true,
		})
	}

	raw, err := json.Marshal(items)
	if err != nil {
		return nil, err
	}

	theme := &domain.ThemeMode{
		ID:     uuid.New(),
		Name:   strings.TrimSpace(name),
		Items:  raw,
		Active: true,
	}
	if err := s.themeRepo.Create(ctx, theme); err != nil {
		return nil, err
	}
	return theme, nil
}

// ListThemes returns all themed pools.
func (s *WordService) ListThemes(ctx context.Context) ([]*domain.ThemeMode, error) {
	return s.themeRepo.List(ctx)
}

func (s *WordService) getTheme(ctx context.Context, id uuid.UUID) (*domain.ThemeMode, error) {
	theme, err := s.themeRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.ErrThemeNotFound
		}
		return nil, err
	}
	return theme, nil
}

func themeItems(theme *domain.ThemeMode) ([]domain.ThemeItem, error) {
	var items []domain.ThemeItem
	if len(theme.Items) == 0 {
		return nil, nil
	}
	if err := json.Unmarshal(theme.Items, &items); err != nil {
		return nil, err
	}
	return items, nil
}
