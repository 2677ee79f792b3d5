package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CardRecord struct - persisted card definition
type CardRecord struct {
	ID              *uuid.UUID `gorm:"type:uuid;primary_key;"`
	Position        int        `gorm:"type:integer;not null;index"`
	Name            string     `gorm:"type:varchar(100);not null;uniqueIndex"`
	MeaningUpright  string     `gorm:"type:TEXT"`
	MeaningReversed string     `gorm:"type:TEXT"`
	CreatedAt       *time.Time `gorm:"type:timestamp"`
	UpdatedAt       *time.Time `gorm:"type:timestamp"`
}

// TableName func
func (c *CardRecord) TableName() string {
	return "cards"
}

// BeforeCreate hook - generates UUID before creating
func (c *CardRecord) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID != nil {
		return nil
	}
	id, err := uuid.NewRandom() // v4
	if err != nil {
		return err
	}
	c.ID = &id
	return nil
}

// ToCard converts the record into a domain card
func (c *CardRecord) ToCard() Card {
	return Card{
		Name:            c.Name,
		MeaningUpright:  c.MeaningUpright,
		MeaningReversed: c.MeaningReversed,
	}
}

// NewCardRecord builds a record for a card at a dataset position
func NewCardRecord(position int, card Card) CardRecord {
	return CardRecord{
		Position:        position,
		Name:            card.Name,
		MeaningUpright:  card.MeaningUpright,
		MeaningReversed: card.MeaningReversed,
	}
}

// MigrateDatabase func - Auto-migrate database schema
func MigrateDatabase(db *gorm.DB) error {
	if db == nil {
		return ErrDataLoad
	}
	return db.AutoMigrate(&CardRecord{})
}
