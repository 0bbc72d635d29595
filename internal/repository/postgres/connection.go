package postgres

import (
	"github.com/nico/impostor-party-server/internal/domain"
	"github.com/nico/impostor-party-server/internal/repository"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewConnection(databaseURL string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, err
	}

	// Only content pools are durable; rooms live in process memory.
	err = db.AutoMigrate(
		&domain.Word{},
		&domain.ThemeMode{},
	)
	if err != nil {
		return nil, err
	}

	return db, nil
}

func NewRepositories(db *gorm.DB) *repository.Repositories {
	return &repository.Repositories{
		Word:  NewWordRepository(db),
		Theme: NewThemeRepository(db),
	}
}
