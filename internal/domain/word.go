package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// DefaultWeight is the starting weight for freshly added content.
const DefaultWeight = 100

// Word is a single secret word in the free-text pool. Draw probability is
// proportional to Weight, which feedback reports nudge over time.
type Word struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Text      string    `json:"text" gorm:"not null"`
	Category  string    `json:"category" gorm:"not null;default:'general';index"`
	Weight    int       `json:"weight" gorm:"not null;default:100"`
	Active    bool      `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ThemeMode is a themed content pool (e.g. "football players"). Its items
// live in a JSON array and are addressed by position, not by id.
type ThemeMode struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name      string         `json:"name" gorm:"uniqueIndex;not null"`
	Items     datatypes.JSON `json:"items" gorm:"not null;default:'[]'"`
	Active    bool           `json:"active" gorm:"not null;default:true"`
	CreatedAt time.Time      `json:"createdAt"`
	UpdatedAt time.Time      `json:"updatedAt"`
}

// ThemeItem is one entry inside a ThemeMode's Items array.
type ThemeItem struct {
	Label  string `json:"label"`
	Weight int    `json:"weight"`
	Active bool   `json:"active"`
}
