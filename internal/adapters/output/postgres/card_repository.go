package postgres

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"tarot-reading/internal/domain"
	"tarot-reading/internal/ports/output"
)

var _ output.CardSource = (*CardRepository)(nil)

// CardRepository struct - Secondary/Driven adapter serving the card dataset from PostgreSQL
type CardRepository struct {
	dbGorm *gorm.DB
	seed   output.CardSource
}

// NewCardRepository migrates the cards table. When seed is not nil and the
// table is empty, LoadCards fills it from seed first.
func NewCardRepository(dbGorm *gorm.DB, seed output.CardSource) (*CardRepository, error) {
	logrus.Info("Migrate database ...")
	if err := domain.MigrateDatabase(dbGorm); err != nil {
		return nil, fmt.Errorf("%w: migrate cards: %w", domain.ErrDataLoad, err)
	}
	return &CardRepository{
		dbGorm: dbGorm,
		seed:   seed,
	}, nil
}

// LoadCards returns the cards ordered by dataset position
func (p *CardRepository) LoadCards(ctx context.Context) ([]domain.Card, error) {
	db := p.dbGorm.WithContext(ctx)

	if p.seed != nil {
		if err := p.seedIfEmpty(ctx, db); err != nil {
			return nil, err
		}
	}

	var records []domain.CardRecord
	if err := db.Order("position ASC").Find(&records).Error; err != nil {
		logrus.Errorln(err)
		return nil, fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
	}

	cards := make([]domain.Card, len(records))
	for i := range records {
		cards[i] = records[i].ToCard()
	}
	if _, err := domain.NewDeck(cards); err != nil {
		return nil, err
	}

	logrus.Infof("Loaded %d cards from postgres", len(cards))
	return cards, nil
}

func (p *CardRepository) seedIfEmpty(ctx context.Context, db *gorm.DB) error {
	var count int64
	if err := db.Model(&domain.CardRecord{}).Count(&count).Error; err != nil {
		return fmt.Errorf("%w: %w", domain.ErrDataLoad, err)
	}
	if count > 0 {
		return nil
	}

	cards, err := p.seed.LoadCards(ctx)
	if err != nil {
		return err
	}

	records := make([]domain.CardRecord, len(cards))
	for i, c := range cards {
		records[i] = domain.NewCardRecord(i, c)
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		return tx.CreateInBatches(&records, 100).Error
	})
	if err != nil {
		logrus.Errorln(err)
		return fmt.Errorf("%w: seed cards: %w", domain.ErrDataLoad, err)
	}

	logrus.Infof("Seeded %d cards into postgres", len(records))
	return nil
}
